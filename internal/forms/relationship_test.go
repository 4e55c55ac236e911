package forms

import (
	"context"
	"net/url"
	"testing"

	"github.com/emrgen/metadata/internal/form"
	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/store"
	"github.com/emrgen/metadata/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationshipType(t *testing.T) {
	for _, rt := range []RelationshipType{RelationshipNone, RelationshipOptional, RelationshipRequired} {
		parsed, err := ParseRelationshipType(rt.String())
		require.NoError(t, err)
		assert.Equal(t, rt, parsed)
	}

	_, err := ParseRelationshipType("mandatory")
	assert.Error(t, err)

	assert.Equal(t, RelationshipNone, RelationshipTypeOf(nil))
	assert.Equal(t, RelationshipOptional, RelationshipTypeOf(&model.DocumentTypeMetadataType{}))
	assert.Equal(t, RelationshipRequired, RelationshipTypeOf(&model.DocumentTypeMetadataType{Required: true}))
}

func bindRelationship(f *RelationshipForm, rt string) {
	f.Bind(url.Values{f.Key(FieldRelationshipType): {rt}})
}

func TestRelationshipForm_Save(t *testing.T) {
	ctx := context.TODO()

	tests := []struct {
		name       string
		initial    RelationshipType
		chosen     string
		want       RelationshipType
		wantEvents []string
	}{
		{name: "none to optional", initial: RelationshipNone, chosen: "optional", want: RelationshipOptional, wantEvents: []string{model.VerbRelationshipCreated}},
		{name: "none to required", initial: RelationshipNone, chosen: "required", want: RelationshipRequired, wantEvents: []string{model.VerbRelationshipCreated}},
		{name: "optional to required", initial: RelationshipOptional, chosen: "required", want: RelationshipRequired, wantEvents: []string{model.VerbRelationshipCreated, model.VerbRelationshipEdited}},
		{name: "required to optional", initial: RelationshipRequired, chosen: "optional", want: RelationshipOptional, wantEvents: []string{model.VerbRelationshipCreated, model.VerbRelationshipEdited}},
		{name: "optional to none", initial: RelationshipOptional, chosen: "none", want: RelationshipNone, wantEvents: []string{model.VerbRelationshipCreated, model.VerbRelationshipDeleted}},
		{name: "unchanged", initial: RelationshipRequired, chosen: "required", want: RelationshipRequired, wantEvents: []string{model.VerbRelationshipCreated}},
		{name: "unchanged none", initial: RelationshipNone, chosen: "none", want: RelationshipNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tester.TestStore(t)
			invoice := tester.DocumentType(t, s, "Invoice")
			number := tester.MetadataType(t, s, &model.MetadataType{Name: "number", Label: "Invoice number"})

			var targetID string
			if tt.initial != RelationshipNone {
				targetID = tester.Attach(t, s, invoice, number, tt.initial == RelationshipRequired).ID
			}

			f, err := NewRelationshipForm(ctx, s, RelationshipInitial{
				DocumentType: invoice,
				MetadataType: number,
				MainModel:    MainModelDocumentType,
			}, tester.Actor, "r")
			require.NoError(t, err)
			assert.Equal(t, tt.initial, f.InitialType)
			assert.Equal(t, tt.initial.String(), f.InitialValue(FieldRelationshipType))
			assert.Equal(t, "Invoice number", f.InitialValue(FieldLabel))

			bindRelationship(f, tt.chosen)
			require.True(t, f.IsValid(ctx))
			require.NoError(t, f.Save(ctx))

			relationship, err := s.GetRelationship(ctx, invoice.ID, number.ID)
			if tt.want == RelationshipNone {
				assert.ErrorIs(t, err, store.ErrNotFound)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, RelationshipTypeOf(relationship))
			}

			if relationship != nil {
				targetID = relationship.ID
			}
			if targetID == "" {
				return
			}

			events, err := s.ListEvents(ctx, targetID)
			require.NoError(t, err)
			var verbs []string
			for _, event := range events {
				verbs = append(verbs, event.Verb)
				assert.Equal(t, tester.Actor.ID, event.ActorID)
			}
			assert.Equal(t, tt.wantEvents, verbs)
		})
	}
}

func TestRelationshipForm_Label(t *testing.T) {
	ctx := context.TODO()
	s := tester.TestStore(t)
	invoice := tester.DocumentType(t, s, "Invoice")
	number := tester.MetadataType(t, s, &model.MetadataType{Name: "number", Label: "Invoice number"})

	f, err := NewRelationshipForm(ctx, s, RelationshipInitial{
		DocumentType: invoice,
		MetadataType: number,
		MainModel:    MainModelMetadataType,
	}, tester.Actor, "r")
	require.NoError(t, err)
	assert.Equal(t, "Invoice", f.InitialValue(FieldLabel))
	assert.Equal(t, []string{"none", "optional", "required"}, f.Field(FieldRelationshipType).ChoiceValues())

	bindRelationship(f, "sometimes")
	assert.False(t, f.IsValid(ctx))
	assert.ErrorIs(t, f.Save(ctx), ErrInvalidForm)
}

func TestRelationshipForm_SaveNoneWithoutRow(t *testing.T) {
	ctx := context.TODO()
	s := tester.TestStore(t)
	invoice := tester.DocumentType(t, s, "Invoice")
	number := tester.MetadataType(t, s, &model.MetadataType{Name: "number"})
	relationship := tester.Attach(t, s, invoice, number, false)

	f, err := NewRelationshipForm(ctx, s, RelationshipInitial{DocumentType: invoice, MetadataType: number}, tester.Actor, "r")
	require.NoError(t, err)
	require.Equal(t, RelationshipOptional, f.InitialType)

	// removed behind the form's back
	require.NoError(t, s.DeleteRelationship(ctx, relationship, tester.Actor))

	bindRelationship(f, "none")
	require.True(t, f.IsValid(ctx))
	assert.ErrorIs(t, f.Save(ctx), ErrRelationshipNotFound)
}

func TestRelationshipFormSet_Save(t *testing.T) {
	ctx := context.TODO()
	s := tester.TestStore(t)
	invoice := tester.DocumentType(t, s, "Invoice")
	number := tester.MetadataType(t, s, &model.MetadataType{Name: "number"})
	color := tester.MetadataType(t, s, &model.MetadataType{Name: "color"})
	note := tester.MetadataType(t, s, &model.MetadataType{Name: "note"})
	noteRelationship := tester.Attach(t, s, invoice, note, false)

	initials := []RelationshipInitial{
		{DocumentType: invoice, MetadataType: number, MainModel: MainModelDocumentType},
		{DocumentType: invoice, MetadataType: color, MainModel: MainModelDocumentType},
		{DocumentType: invoice, MetadataType: note, MainModel: MainModelDocumentType},
	}

	bind := func(set *RelationshipFormSet, choices ...string) {
		data := set.ManagementData()
		for i, choice := range choices {
			data.Set(form.FormPrefix(RelationshipPrefix, i)+"-"+FieldRelationshipType, choice)
		}
		set.Bind(data)
	}

	t.Run("refuses sets that did not validate", func(t *testing.T) {
		set, err := NewRelationshipFormSet(ctx, s, initials, tester.Actor)
		require.NoError(t, err)
		assert.ErrorIs(t, set.Save(ctx), ErrInvalidForm, "unbound")

		data := set.ManagementData()
		data.Set(set.Prefix+"-"+form.TotalFormsKey, "7")
		set.Bind(data)
		assert.ErrorIs(t, set.Save(ctx), ErrInvalidForm, "tampered")

		_, err = s.GetRelationship(ctx, invoice.ID, number.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		set, err := NewRelationshipFormSet(ctx, s, initials, tester.Actor)
		require.NoError(t, err)

		require.NoError(t, s.DeleteRelationship(ctx, noteRelationship, tester.Actor))

		bind(set, "required", "optional", "none")
		require.True(t, set.IsValid(ctx))
		assert.ErrorIs(t, set.Save(ctx), ErrRelationshipNotFound)

		_, err = s.GetRelationship(ctx, invoice.ID, number.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.GetRelationship(ctx, invoice.ID, color.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("saves every form", func(t *testing.T) {
		set, err := NewRelationshipFormSet(ctx, s, initials, tester.Actor)
		require.NoError(t, err)

		bind(set, "required", "optional", "optional")
		require.True(t, set.IsValid(ctx))
		require.NoError(t, set.Save(ctx))

		required, err := s.IsRequired(ctx, invoice.ID, number.ID)
		require.NoError(t, err)
		assert.True(t, required)

		relationship, err := s.GetRelationship(ctx, invoice.ID, color.ID)
		require.NoError(t, err)
		assert.False(t, relationship.Required)

		relationship, err = s.GetRelationship(ctx, invoice.ID, note.ID)
		require.NoError(t, err)
		assert.False(t, relationship.Required)
	})
}
