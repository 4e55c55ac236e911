package forms

import (
	"context"

	"github.com/emrgen/metadata/internal/form"
	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/store"
)

const FieldMetadataType = "metadata_type"

// DocumentMetadataAddForm picks metadata types to attach to a batch of
// documents of one document type.
type DocumentMetadataAddForm struct {
	*form.Form
	DocumentType *model.DocumentType

	metadataTypes []*model.MetadataType
}

// NewDocumentMetadataAddForm offers the metadata types of documentType, or
// the types of override when it is non nil. Without a document type nothing
// can be chosen.
func NewDocumentMetadataAddForm(ctx context.Context, metadataTypes store.MetadataTypeStore, documentType *model.DocumentType, override []*model.MetadataType) (*DocumentMetadataAddForm, error) {
	available := make([]*model.MetadataType, 0)
	if documentType != nil {
		if override != nil {
			available = override
		} else {
			var err error
			available, err = metadataTypes.ListMetadataTypesForDocumentType(ctx, documentType.ID)
			if err != nil {
				return nil, err
			}
		}
	}

	choices := make([]form.Choice, 0, len(available))
	for _, metadataType := range available {
		choices = append(choices, form.Choice{Value: metadataType.ID, Label: metadataType.DisplayLabel()})
	}

	f := form.New("", &form.Field{
		Name:     FieldMetadataType,
		Label:    "Metadata type",
		HelpText: "Metadata types to be added to the selected documents.",
		Widget:   form.WidgetSelectMultiple,
		Required: true,
		Choices:  choices,
		Attrs:    map[string]string{"class": "select2"},
	})

	return &DocumentMetadataAddForm{
		Form:          f,
		DocumentType:  documentType,
		metadataTypes: available,
	}, nil
}

// MetadataTypes returns the chosen metadata types in offered order.
func (f *DocumentMetadataAddForm) MetadataTypes() []*model.MetadataType {
	chosen := make(map[string]bool)
	for _, id := range f.CleanedStrings(FieldMetadataType) {
		chosen[id] = true
	}

	selected := make([]*model.MetadataType, 0, len(chosen))
	for _, metadataType := range f.metadataTypes {
		if chosen[metadataType.ID] {
			selected = append(selected, metadataType)
		}
	}
	return selected
}
