package cmd

import (
	"context"
	"os"

	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/server"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var documentTypeCmd = &cobra.Command{
	Use:   "document-type",
	Short: "document type commands",
}

func init() {
	documentTypeCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	documentTypeCmd.AddCommand(createDocumentTypeCmd())
	documentTypeCmd.AddCommand(listDocumentTypesCmd())
}

func createDocumentTypeCmd() *cobra.Command {
	var label string

	var required = []string{"label"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a document type",
		Example: "metadata document-type create -l <label>",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkMissingFlags(cmd, required) {
				return nil
			}

			return withRuntime(func(ctx context.Context, r *server.Runtime) error {
				documentType := &model.DocumentType{Label: label}
				if err := r.Store.CreateDocumentType(ctx, documentType); err != nil {
					return err
				}

				logrus.Infof("document type created with id: %s", documentType.ID)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&label, "label", "l", "", "label of the document type (required)")

	return command
}

func listDocumentTypesCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "list",
		Short: "list document types",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(func(ctx context.Context, r *server.Runtime) error {
				documentTypes, err := r.Store.ListDocumentTypes(ctx)
				if err != nil {
					return err
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.SetHeader([]string{"ID", "Label"})
				for _, documentType := range documentTypes {
					table.Append([]string{documentType.ID, documentType.Label})
				}
				table.Render()

				return nil
			})
		},
	}

	return command
}
