package forms

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/emrgen/metadata/internal/lookup"
	"github.com/emrgen/metadata/internal/metadata"
	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataTypeForm(t *testing.T) {
	ctx := context.TODO()
	s := tester.TestStore(t)
	existing := tester.MetadataType(t, s, &model.MetadataType{Name: "number", Label: "Number"})

	registry := lookup.NewRegistry()
	registry.RegisterValue("colors", "Available colors", []string{"red"})
	evaluator := lookup.NewTemplateEvaluator(registry)
	pipeline := metadata.NewPipeline()

	tests := []struct {
		name       string
		instance   *model.MetadataType
		data       url.Values
		wantErrors map[string]string
	}{
		{
			name: "valid",
			data: url.Values{"name": {"color"}, "label": {"Color"}, "lookup": {"{{ colors|join:\",\" }}"}, "parser": {"upper"}},
		},
		{
			name:       "invalid identifier",
			data:       url.Values{"name": {"9 lives"}, "label": {"Lives"}},
			wantErrors: map[string]string{"name": "Enter a valid identifier"},
		},
		{
			name:       "duplicate name",
			data:       url.Values{"name": {"number"}, "label": {"Other"}},
			wantErrors: map[string]string{"name": "already exists"},
		},
		{
			name:     "own name on edit",
			instance: existing,
			data:     url.Values{"name": {"number"}, "label": {"Number of pages"}, "validation": {"integer"}},
		},
		{
			name:       "broken templates",
			data:       url.Values{"name": {"broken"}, "label": {"Broken"}, "default": {"{% if %}"}, "lookup": {"{{ colors|nope }}"}},
			wantErrors: map[string]string{"default": "Template error: ", "lookup": "Template error: "},
		},
		{
			name:       "unknown validator",
			data:       url.Values{"name": {"odd"}, "label": {"Odd"}, "validation": {"prime"}},
			wantErrors: map[string]string{"validation": "Select a valid choice."},
		},
		{
			name:       "missing label",
			data:       url.Values{"name": {"unlabeled"}},
			wantErrors: map[string]string{"label": "This field is required."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewMetadataTypeForm(s, evaluator, pipeline, registry, tt.instance)
			assert.Contains(t, f.Field(FieldLookup).HelpText, `{{ colors }} = "Available colors"`)

			f.Bind(tt.data)
			valid := f.IsValid(ctx)
			if len(tt.wantErrors) > 0 {
				require.False(t, valid)
				for field, want := range tt.wantErrors {
					got := f.Errors().Get(field)
					require.Len(t, got, 1, field)
					assert.True(t, strings.HasPrefix(got[0], want) || strings.Contains(got[0], want), got[0])
				}
				_, err := f.Save(ctx, tester.Actor)
				assert.ErrorIs(t, err, ErrInvalidForm)
				return
			}

			require.True(t, valid, f.Errors().Error())
			saved, err := f.Save(ctx, tester.Actor)
			require.NoError(t, err)

			got, err := s.GetMetadataTypeByName(ctx, tt.data.Get("name"))
			require.NoError(t, err)
			assert.Equal(t, saved.ID, got.ID)
			assert.Equal(t, tt.data.Get("label"), got.Label)
			assert.Equal(t, tt.data.Get("lookup"), got.Lookup)
			assert.Equal(t, tt.data.Get("validation"), got.Validation)
			assert.Equal(t, tt.data.Get("parser"), got.Parser)
		})
	}
}

func TestMetadataTypeForm_InitialFromInstance(t *testing.T) {
	instance := &model.MetadataType{ID: "id", Name: "number", Label: "Number", Validation: "integer"}
	f := NewMetadataTypeForm(nil, lookup.NewTemplateEvaluator(nil), metadata.NewPipeline(), nil, instance)

	assert.Equal(t, "number", f.InitialValue(FieldName))
	assert.Equal(t, "integer", f.InitialValue(FieldValidation))
	assert.Equal(t, "Enter a template to render. Must result in a comma delimited string.", f.Field(FieldLookup).HelpText)
}
