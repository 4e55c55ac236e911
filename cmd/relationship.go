package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/emrgen/metadata/internal/form"
	"github.com/emrgen/metadata/internal/forms"
	"github.com/emrgen/metadata/internal/server"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var relationshipCmd = &cobra.Command{
	Use:   "relationship",
	Short: "document type and metadata type relationship commands",
}

func init() {
	relationshipCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	relationshipCmd.AddCommand(setRelationshipCmd())
	relationshipCmd.AddCommand(listRelationshipsCmd())
}

func setRelationshipCmd() *cobra.Command {
	var documentTypeRef string
	var metadataTypeRef string
	var relationshipType string

	var required = []string{"document-type", "metadata-type", "type"}

	command := &cobra.Command{
		Use:     "set",
		Short:   "set how a metadata type applies to a document type",
		Example: "metadata relationship set -d <document-type> -m <metadata-type> -t none|optional|required",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkMissingFlags(cmd, required) {
				return nil
			}
			if _, err := forms.ParseRelationshipType(relationshipType); err != nil {
				return err
			}

			return withRuntime(func(ctx context.Context, r *server.Runtime) error {
				documentType, err := findDocumentType(ctx, r.Store, documentTypeRef)
				if err != nil {
					return err
				}
				metadataType, err := findMetadataType(ctx, r.Store, metadataTypeRef)
				if err != nil {
					return err
				}

				set, err := r.Service.RelationshipForms(ctx, documentType.ID, actor())
				if err != nil {
					return err
				}

				// every other row keeps its current state
				data := set.ManagementData()
				for i, f := range set.Forms() {
					value := f.InitialType.String()
					if f.MetadataType.ID == metadataType.ID {
						value = relationshipType
					}
					data.Set(form.FormPrefix(forms.RelationshipPrefix, i)+"-"+forms.FieldRelationshipType, value)
				}

				err = r.Service.UpdateRelationships(ctx, set, data)
				if errors.Is(err, forms.ErrInvalidForm) {
					for i, errs := range set.Errors() {
						printErrors(fmt.Sprintf("form %d ", i), errs)
					}
				}
				if err != nil {
					return err
				}

				logrus.Infof("%s is %s for %s", metadataType.Name, relationshipType, documentType.Label)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&documentTypeRef, "document-type", "d", "", "document type id or label (required)")
	command.Flags().StringVarP(&metadataTypeRef, "metadata-type", "m", "", "metadata type id or name (required)")
	command.Flags().StringVarP(&relationshipType, "type", "t", "", "none, optional or required (required)")

	command.Flags().SortFlags = false

	return command
}

func listRelationshipsCmd() *cobra.Command {
	var documentTypeRef string
	var metadataTypeRef string

	command := &cobra.Command{
		Use:     "list",
		Short:   "list the relationships of a document type or a metadata type",
		Example: "metadata relationship list -d <document-type>\nmetadata relationship list -m <metadata-type>",
		RunE: func(cmd *cobra.Command, args []string) error {
			if documentTypeRef == "" && metadataTypeRef == "" {
				return errors.New("one of --document-type or --metadata-type is required")
			}

			return withRuntime(func(ctx context.Context, r *server.Runtime) error {
				var set *forms.RelationshipFormSet
				if documentTypeRef != "" {
					documentType, err := findDocumentType(ctx, r.Store, documentTypeRef)
					if err != nil {
						return err
					}
					set, err = r.Service.RelationshipForms(ctx, documentType.ID, actor())
					if err != nil {
						return err
					}
				} else {
					metadataType, err := findMetadataType(ctx, r.Store, metadataTypeRef)
					if err != nil {
						return err
					}
					set, err = r.Service.MetadataTypeRelationshipForms(ctx, metadataType.ID, actor())
					if err != nil {
						return err
					}
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.SetHeader([]string{"Label", "Relationship"})
				for _, f := range set.Forms() {
					label, _ := f.InitialValue(forms.FieldLabel).(string)
					table.Append([]string{label, f.InitialType.Label()})
				}
				table.Render()

				return nil
			})
		},
	}

	command.Flags().StringVarP(&documentTypeRef, "document-type", "d", "", "document type id or label")
	command.Flags().StringVarP(&metadataTypeRef, "metadata-type", "m", "", "metadata type id or name")

	return command
}
