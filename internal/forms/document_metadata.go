package forms

import (
	"context"
	"fmt"

	"github.com/emrgen/metadata/internal/form"
	"github.com/emrgen/metadata/internal/metadata"
	"github.com/emrgen/metadata/internal/model"
)

// Field names of the metadata value forms.
const (
	FieldMetadataTypeID   = "metadata_type_id"
	FieldMetadataTypeName = "metadata_type_name"
	FieldValue            = "value"
	FieldUpdate           = "update"
)

// DocumentMetadataPrefix is the prefix of the value and remove form sets.
const DocumentMetadataPrefix = "metadata"

// Resolver answers what the value forms need to know about a metadata type.
type Resolver interface {
	RequiredFor(ctx context.Context, metadataType *model.MetadataType, documentType *model.DocumentType) (bool, error)
	LookupValues(ctx context.Context, metadataType *model.MetadataType) ([]string, error)
	DefaultValue(ctx context.Context, metadataType *model.MetadataType) (string, error)
	ValidateValue(ctx context.Context, documentType *model.DocumentType, metadataType *model.MetadataType, value string) (string, error)
}

var _ Resolver = (*metadata.Resolver)(nil)

// DocumentMetadataInitial is what a value form is built from. Existing is
// the stored value of the document, if any.
type DocumentMetadataInitial struct {
	DocumentType *model.DocumentType
	MetadataType *model.MetadataType
	Existing     *model.DocumentMetadata
}

// DocumentMetadataForm edits the value of one metadata type of a document.
type DocumentMetadataForm struct {
	*form.Form
	DocumentType *model.DocumentType
	MetadataType *model.MetadataType
	Existing     *model.DocumentMetadata
	Required     bool

	resolver Resolver
}

func documentMetadataFields() []*form.Field {
	return []*form.Field{
		{Name: FieldMetadataTypeID, Label: "ID", Widget: form.WidgetHidden, Required: true},
		{Name: FieldMetadataTypeName, Label: "Name", Widget: form.WidgetText, ReadOnly: true},
		{Name: FieldValue, Label: "Value", Widget: form.WidgetText, Attrs: map[string]string{"class": "metadata-value"}},
		{Name: FieldUpdate, Label: "Update", Widget: form.WidgetCheckbox, Initial: true},
	}
}

// NewDocumentMetadataForm builds the value form of initial.MetadataType.
// Lookup and default template failures never fail construction, they turn
// the value field into a read only text showing the error.
func NewDocumentMetadataForm(ctx context.Context, resolver Resolver, initial DocumentMetadataInitial, prefix string) (*DocumentMetadataForm, error) {
	f := &DocumentMetadataForm{
		Form:         form.New(prefix, documentMetadataFields()...),
		DocumentType: initial.DocumentType,
		MetadataType: initial.MetadataType,
		Existing:     initial.Existing,
		resolver:     resolver,
	}
	f.SetClean(f.clean)

	metadataType := initial.MetadataType
	if metadataType == nil {
		return f, nil
	}

	required, err := resolver.RequiredFor(ctx, metadataType, initial.DocumentType)
	if err != nil {
		return nil, err
	}
	f.Required = required

	value := f.Field(FieldValue)
	name := metadataType.DisplayLabel()
	if required {
		value.Required = true
		name += " (Required)"
	} else {
		f.Field(FieldUpdate).Initial = false
	}

	f.Field(FieldMetadataTypeName).Initial = name
	f.Field(FieldMetadataTypeID).Initial = metadataType.ID

	if metadataType.Lookup != "" {
		choices, err := resolver.LookupValues(ctx, metadataType)
		if err != nil {
			value = &form.Field{
				Name:     FieldValue,
				Label:    value.Label,
				Widget:   form.WidgetText,
				Required: required,
				ReadOnly: true,
				Initial:  fmt.Sprintf("Lookup value error: %s", err),
			}
		} else {
			options := form.ChoicesOf(choices...)
			if !required {
				options = append([]form.Choice{form.EmptyChoice}, options...)
			}
			value = &form.Field{
				Name:     FieldValue,
				Label:    value.Label,
				Widget:   form.WidgetSelect,
				Required: required,
				Choices:  options,
				Attrs:    map[string]string{"class": "metadata-value"},
			}
		}
		f.SetField(value)
	}

	if metadataType.Default != "" {
		def, err := resolver.DefaultValue(ctx, metadataType)
		if err != nil {
			value.Initial = fmt.Sprintf("Default value error: %s", err)
			value.Widget = form.WidgetText
			value.ReadOnly = true
		} else {
			value.Initial = def
		}
	}

	if initial.Existing != nil {
		f.Initial[FieldValue] = initial.Existing.Value
	}

	return f, nil
}

func (f *DocumentMetadataForm) clean(ctx context.Context, cleaned map[string]any) error {
	if f.MetadataType == nil {
		return nil
	}

	value, ok := cleaned[FieldValue].(string)
	update, _ := cleaned[FieldUpdate].(bool)

	// a required type only needs a value when it has no previous one
	if f.Required && value == "" && !update {
		return form.NewValidationError("", fmt.Sprintf("\"%s\" is required for this document type.", f.MetadataType.DisplayLabel()))
	}

	if update && ok {
		out, err := f.resolver.ValidateValue(ctx, f.DocumentType, f.MetadataType, value)
		if err != nil {
			return form.NewValidationError(FieldValue, err.Error())
		}
		cleaned[FieldValue] = out
	}

	return nil
}

// Update reports whether the submitted value should be stored.
func (f *DocumentMetadataForm) Update() bool {
	return f.CleanedBool(FieldUpdate)
}

// Value returns the cleaned value, after the validators and parsers ran.
func (f *DocumentMetadataForm) Value() string {
	return f.CleanedString(FieldValue)
}

type DocumentMetadataFormSet = form.FormSet[*DocumentMetadataForm]

// NewDocumentMetadataFormSet builds one value form per initial entry.
func NewDocumentMetadataFormSet(ctx context.Context, resolver Resolver, initials []DocumentMetadataInitial) (*DocumentMetadataFormSet, error) {
	return form.NewFormSet(DocumentMetadataPrefix, len(initials), func(prefix string, i int) (*DocumentMetadataForm, error) {
		return NewDocumentMetadataForm(ctx, resolver, initials[i], prefix)
	})
}
