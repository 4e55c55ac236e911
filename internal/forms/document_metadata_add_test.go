package forms

import (
	"context"
	"net/url"
	"testing"

	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentMetadataAddForm(t *testing.T) {
	ctx := context.TODO()
	s := tester.TestStore(t)

	invoice := tester.DocumentType(t, s, "Invoice")
	number := tester.MetadataType(t, s, &model.MetadataType{Name: "number"})
	color := tester.MetadataType(t, s, &model.MetadataType{Name: "color"})
	other := tester.MetadataType(t, s, &model.MetadataType{Name: "other"})
	tester.Attach(t, s, invoice, number, true)
	tester.Attach(t, s, invoice, color, false)

	t.Run("choices of the document type", func(t *testing.T) {
		f, err := NewDocumentMetadataAddForm(ctx, s, invoice, nil)
		require.NoError(t, err)

		field := f.Field(FieldMetadataType)
		assert.ElementsMatch(t, []string{number.ID, color.ID}, field.ChoiceValues())
		assert.Equal(t, "Metadata types to be added to the selected documents.", field.HelpText)

		f.Bind(url.Values{FieldMetadataType: {color.ID}})
		require.True(t, f.IsValid(ctx))
		require.Len(t, f.MetadataTypes(), 1)
		assert.Equal(t, color.ID, f.MetadataTypes()[0].ID)

		f.Bind(url.Values{FieldMetadataType: {color.ID, other.ID}})
		assert.False(t, f.IsValid(ctx))
	})

	t.Run("without document type nothing is offered", func(t *testing.T) {
		f, err := NewDocumentMetadataAddForm(ctx, s, nil, []*model.MetadataType{other})
		require.NoError(t, err)
		assert.Empty(t, f.Field(FieldMetadataType).Choices)

		f.Bind(url.Values{FieldMetadataType: {other.ID}})
		assert.False(t, f.IsValid(ctx))
	})

	t.Run("override list", func(t *testing.T) {
		f, err := NewDocumentMetadataAddForm(ctx, s, invoice, []*model.MetadataType{other})
		require.NoError(t, err)
		assert.Equal(t, []string{other.ID}, f.Field(FieldMetadataType).ChoiceValues())

		f.Bind(url.Values{FieldMetadataType: {other.ID}})
		require.True(t, f.IsValid(ctx))
		assert.Equal(t, []*model.MetadataType{other}, f.MetadataTypes())
	})
}
