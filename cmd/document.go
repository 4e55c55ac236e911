package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/emrgen/metadata/internal/form"
	"github.com/emrgen/metadata/internal/forms"
	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/server"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "document commands",
}

var documentMetadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "document metadata commands",
}

func init() {
	documentCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	documentCmd.AddCommand(createDocumentCmd())
	documentCmd.AddCommand(documentMetadataCmd)

	documentMetadataCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	documentMetadataCmd.AddCommand(listDocumentMetadataCmd())
	documentMetadataCmd.AddCommand(editDocumentMetadataCmd())
	documentMetadataCmd.AddCommand(addDocumentMetadataCmd())
	documentMetadataCmd.AddCommand(removeDocumentMetadataCmd())
}

func createDocumentCmd() *cobra.Command {
	var documentTypeRef string
	var label string

	var required = []string{"document-type"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a document",
		Example: "metadata document create -d <document-type> -l <label>",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkMissingFlags(cmd, required) {
				return nil
			}

			return withRuntime(func(ctx context.Context, r *server.Runtime) error {
				documentType, err := findDocumentType(ctx, r.Store, documentTypeRef)
				if err != nil {
					return err
				}

				doc := &model.Document{DocumentTypeID: documentType.ID, Label: label}
				if err := r.Store.CreateDocument(ctx, doc); err != nil {
					return err
				}

				logrus.Infof("document created with id: %s", doc.ID)
				return nil
			})
		},
	}

	command.Flags().StringVarP(&documentTypeRef, "document-type", "d", "", "document type id or label (required)")
	command.Flags().StringVarP(&label, "label", "l", "", "label of the document")

	return command
}

func listDocumentMetadataCmd() *cobra.Command {
	var docID string

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:     "list",
		Short:   "list the metadata of a document",
		Example: "metadata document metadata list -i <doc-id>",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkMissingFlags(cmd, required) {
				return nil
			}

			return withRuntime(func(ctx context.Context, r *server.Runtime) error {
				doc, err := r.Store.GetDocument(ctx, docID)
				if err != nil {
					return err
				}
				printField("Document", doc.Label)
				printField("Type", doc.DocumentType.Label)

				set, err := r.Service.EditForms(ctx, docID)
				if err != nil {
					return err
				}

				table := tablewriter.NewWriter(os.Stdout)
				table.SetHeader([]string{"Name", "Value", "Choices"})
				for _, f := range set.Forms() {
					name, _ := f.InitialValue(forms.FieldMetadataTypeName).(string)
					value := initialString(f.Base(), forms.FieldValue)

					var choices []string
					for _, choice := range f.Field(forms.FieldValue).Choices {
						if choice.Value != "" {
							choices = append(choices, choice.Value)
						}
					}
					table.Append([]string{name, value, strings.Join(choices, ", ")})
				}
				table.Render()

				return nil
			})
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "i", "", "document id (required)")

	return command
}

// parseAssignments splits name=value pairs.
func parseAssignments(assignments []string) (map[string]string, error) {
	values := make(map[string]string, len(assignments))
	for _, assignment := range assignments {
		name, value, ok := strings.Cut(assignment, "=")
		if !ok {
			return nil, fmt.Errorf("invalid assignment %q, expected <name>=<value>", assignment)
		}
		values[strings.TrimSpace(name)] = value
	}
	return values, nil
}

func editDocumentMetadataCmd() *cobra.Command {
	var docID string
	var assignments []string

	var required = []string{"doc-id", "set"}

	command := &cobra.Command{
		Use:     "edit",
		Short:   "edit the metadata values of a document",
		Example: "metadata document metadata edit -i <doc-id> -s number=42 -s color=red",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkMissingFlags(cmd, required) {
				return nil
			}

			updates, err := parseAssignments(assignments)
			if err != nil {
				return err
			}

			return withRuntime(func(ctx context.Context, r *server.Runtime) error {
				set, err := r.Service.EditForms(ctx, docID)
				if err != nil {
					return err
				}

				seen := make(map[string]bool)
				data := set.ManagementData()
				for i, f := range set.Forms() {
					prefix := form.FormPrefix(forms.DocumentMetadataPrefix, i) + "-"
					data.Set(prefix+forms.FieldMetadataTypeID, f.MetadataType.ID)

					value, ok := updates[f.MetadataType.Name]
					if !ok {
						value = initialString(f.Base(), forms.FieldValue)
					} else {
						data.Set(prefix+forms.FieldUpdate, "on")
						seen[f.MetadataType.Name] = true
					}
					data.Set(prefix+forms.FieldValue, value)
				}

				for name := range updates {
					if !seen[name] {
						return fmt.Errorf("document has no metadata %q, add it first", name)
					}
				}

				set, err = r.Service.Edit(ctx, docID, data, actor())
				if errors.Is(err, forms.ErrInvalidForm) {
					for i, errs := range set.Errors() {
						printErrors(set.Forms()[i].MetadataType.Name+" ", errs)
					}
				}
				if err != nil {
					return err
				}

				logrus.Infof("updated %d metadata values", len(updates))
				return nil
			})
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "i", "", "document id (required)")
	command.Flags().StringArrayVarP(&assignments, "set", "s", nil, "<name>=<value> to store (required)")

	return command
}

func addDocumentMetadataCmd() *cobra.Command {
	var docIDs []string
	var metadataTypeRefs []string

	var required = []string{"doc-id", "metadata-type"}

	command := &cobra.Command{
		Use:     "add",
		Short:   "add metadata types to documents of one type",
		Example: "metadata document metadata add -i <doc-id> -i <doc-id> -m number -m color",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkMissingFlags(cmd, required) {
				return nil
			}

			return withRuntime(func(ctx context.Context, r *server.Runtime) error {
				data := make(map[string][]string)
				for _, ref := range metadataTypeRefs {
					metadataType, err := findMetadataType(ctx, r.Store, ref)
					if err != nil {
						return err
					}
					data[forms.FieldMetadataType] = append(data[forms.FieldMetadataType], metadataType.ID)
				}

				f, err := r.Service.Add(ctx, docIDs, data, actor())
				if errors.Is(err, forms.ErrInvalidForm) {
					printErrors("", f.Errors())
				}
				if err != nil {
					return err
				}

				logrus.Infof("added %d metadata types to %d documents", len(f.MetadataTypes()), len(docIDs))
				return nil
			})
		},
	}

	command.Flags().StringArrayVarP(&docIDs, "doc-id", "i", nil, "document id, repeatable (required)")
	command.Flags().StringArrayVarP(&metadataTypeRefs, "metadata-type", "m", nil, "metadata type id or name, repeatable (required)")

	return command
}

func removeDocumentMetadataCmd() *cobra.Command {
	var docID string
	var metadataTypeRefs []string

	var required = []string{"doc-id", "metadata-type"}

	command := &cobra.Command{
		Use:     "remove",
		Short:   "remove metadata from a document",
		Example: "metadata document metadata remove -i <doc-id> -m note",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checkMissingFlags(cmd, required) {
				return nil
			}

			return withRuntime(func(ctx context.Context, r *server.Runtime) error {
				remove := make(map[string]bool)
				for _, ref := range metadataTypeRefs {
					metadataType, err := findMetadataType(ctx, r.Store, ref)
					if err != nil {
						return err
					}
					remove[metadataType.ID] = true
				}

				set, err := r.Service.RemoveForms(ctx, docID)
				if err != nil {
					return err
				}

				data := set.ManagementData()
				for i, f := range set.Forms() {
					prefix := form.FormPrefix(forms.DocumentMetadataPrefix, i) + "-"
					data.Set(prefix+forms.FieldMetadataTypeID, f.MetadataType.ID)
					if remove[f.MetadataType.ID] {
						data.Set(prefix+forms.FieldUpdate, "on")
					}
				}

				if _, err := r.Service.Remove(ctx, docID, data, actor()); err != nil {
					return err
				}

				logrus.Infof("removed %d metadata values", len(remove))
				return nil
			})
		},
	}

	command.Flags().StringVarP(&docID, "doc-id", "i", "", "document id (required)")
	command.Flags().StringArrayVarP(&metadataTypeRefs, "metadata-type", "m", nil, "metadata type id or name, repeatable (required)")

	return command
}
