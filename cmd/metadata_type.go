package cmd

import (
	"context"
	"errors"
	"net/url"
	"os"

	"github.com/emrgen/metadata/internal/forms"
	"github.com/emrgen/metadata/internal/server"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var metadataTypeCmd = &cobra.Command{
	Use:   "metadata-type",
	Short: "metadata type commands",
}

func init() {
	metadataTypeCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	metadataTypeCmd.AddCommand(saveMetadataTypeCmd())
	metadataTypeCmd.AddCommand(listMetadataTypesCmd())
}

func saveMetadataTypeCmd() *cobra.Command {
	var ref string
	values := make(map[string]*string)
	fields := []string{forms.FieldName, forms.FieldLabel, forms.FieldDefault, forms.FieldLookup, forms.FieldValidation, forms.FieldParser}

	command := &cobra.Command{
		Use:   "save",
		Short: "create or edit a metadata type",
		Long:  `create a metadata type, or edit the one given by --metadata-type; flags left out keep their current value`,
		Example: `metadata metadata-type save -n color -l Color --lookup '{{ colors }}'
metadata metadata-type save -m color --parser upper`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(func(ctx context.Context, r *server.Runtime) error {
				id := ""
				if ref != "" {
					metadataType, err := findMetadataType(ctx, r.Store, ref)
					if err != nil {
						return err
					}
					id = metadataType.ID
				}

				f, err := r.Service.MetadataTypeForm(ctx, id)
				if err != nil {
					return err
				}

				data := url.Values{}
				for _, field := range fields {
					if cmd.Flags().Changed(field) {
						data.Set(field, *values[field])
					} else if initial, ok := f.InitialValue(field).(string); ok {
						data.Set(field, initial)
					}
				}

				metadataType, f, err := r.Service.SaveMetadataType(ctx, id, data, actor())
				if errors.Is(err, forms.ErrInvalidForm) {
					printErrors("", f.Errors())
				}
				if err != nil {
					return err
				}

				logrus.Infof("metadata type saved with id: %s", metadataType.ID)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&ref, "metadata-type", "m", "", "id or name of the metadata type to edit")
	for _, field := range fields {
		values[field] = new(string)
	}
	command.Flags().StringVarP(values[forms.FieldName], forms.FieldName, "n", "", "internal name, letters, digits and underscores")
	command.Flags().StringVarP(values[forms.FieldLabel], forms.FieldLabel, "l", "", "label")
	command.Flags().StringVar(values[forms.FieldDefault], forms.FieldDefault, "", "default value template")
	command.Flags().StringVar(values[forms.FieldLookup], forms.FieldLookup, "", "lookup template, rendering comma separated choices")
	command.Flags().StringVar(values[forms.FieldValidation], forms.FieldValidation, "", "validator name")
	command.Flags().StringVar(values[forms.FieldParser], forms.FieldParser, "", "parser name")

	command.Flags().SortFlags = false

	return command
}

func listMetadataTypesCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "list",
		Short: "list metadata types",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(func(ctx context.Context, r *server.Runtime) error {
				metadataTypes, err := r.Store.ListMetadataTypes(ctx)
				if err != nil {
					return err
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.SetHeader([]string{"ID", "Name", "Label", "Default", "Lookup", "Validation", "Parser"})
				for _, mt := range metadataTypes {
					table.Append([]string{mt.ID, mt.Name, mt.Label, mt.Default, mt.Lookup, mt.Validation, mt.Parser})
				}
				table.Render()

				return nil
			})
		},
	}

	return command
}
