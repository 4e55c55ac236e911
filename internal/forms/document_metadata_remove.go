package forms

import (
	"context"

	"github.com/emrgen/metadata/internal/form"
)

// DocumentMetadataRemoveForm selects a metadata value of a document for
// removal. It has no value field and only runs the field level cleaning.
type DocumentMetadataRemoveForm struct {
	*DocumentMetadataForm
}

func NewDocumentMetadataRemoveForm(ctx context.Context, resolver Resolver, initial DocumentMetadataInitial, prefix string) (*DocumentMetadataRemoveForm, error) {
	f, err := NewDocumentMetadataForm(ctx, resolver, initial, prefix)
	if err != nil {
		return nil, err
	}

	f.RemoveField(FieldValue)
	f.SetField(&form.Field{
		Name:    FieldUpdate,
		Label:   "Remove",
		Widget:  form.WidgetCheckbox,
		Initial: false,
	})
	f.SetClean(nil)

	return &DocumentMetadataRemoveForm{DocumentMetadataForm: f}, nil
}

// Remove reports whether the value was selected for removal.
func (f *DocumentMetadataRemoveForm) Remove() bool {
	return f.CleanedBool(FieldUpdate)
}

type DocumentMetadataRemoveFormSet = form.FormSet[*DocumentMetadataRemoveForm]

func NewDocumentMetadataRemoveFormSet(ctx context.Context, resolver Resolver, initials []DocumentMetadataInitial) (*DocumentMetadataRemoveFormSet, error) {
	return form.NewFormSet(DocumentMetadataPrefix, len(initials), func(prefix string, i int) (*DocumentMetadataRemoveForm, error) {
		return NewDocumentMetadataRemoveForm(ctx, resolver, initials[i], prefix)
	})
}
