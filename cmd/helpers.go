package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/emrgen/metadata/internal/form"
	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/store"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func printField(label, value string) {
	color.Set(color.FgCyan)
	fmt.Print(label)
	color.Unset()
	fmt.Printf(": %s\n", value)
}

// printErrors prints form errors, one line per field.
func printErrors(prefix string, errs form.Errors) {
	for field, messages := range errs {
		color.Red("%s%s: %s\n", prefix, field, strings.Join(messages, " "))
	}
}

// initialString returns the initial value of a field as shown to the user.
func initialString(f *form.Form, name string) string {
	switch v := f.InitialValue(name).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// checkMissingFlags checks if the required flags are set and returns ok if they are set
func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if !cmd.Flag(required).Changed {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		color.Red("missing: %s\n", msg)
		if len(providedFlags) > 0 {
			provided := strings.Join(providedFlags, " ")
			color.Green("provide: %s\n", provided)
		}

		cmd.Println("")

		cmd.Usage()

		return true
	}

	return false
}

// findDocumentType accepts a document type id or label.
func findDocumentType(ctx context.Context, s store.DocumentTypeStore, ref string) (*model.DocumentType, error) {
	if _, err := uuid.Parse(ref); err == nil {
		documentType, err := s.GetDocumentType(ctx, ref)
		if !errors.Is(err, store.ErrNotFound) {
			return documentType, err
		}
	}

	documentType, err := s.GetDocumentTypeByLabel(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("document type %q: %w", ref, err)
	}
	return documentType, nil
}

// findMetadataType accepts a metadata type id or name.
func findMetadataType(ctx context.Context, s store.MetadataTypeStore, ref string) (*model.MetadataType, error) {
	if _, err := uuid.Parse(ref); err == nil {
		metadataType, err := s.GetMetadataType(ctx, ref)
		if !errors.Is(err, store.ErrNotFound) {
			return metadataType, err
		}
	}

	metadataType, err := s.GetMetadataTypeByName(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("metadata type %q: %w", ref, err)
	}
	return metadataType, nil
}
