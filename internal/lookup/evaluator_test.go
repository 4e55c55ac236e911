package lookup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChoices(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: []string{}},
		{name: "simple", input: "red,green,blue", want: []string{"red", "green", "blue"}},
		{name: "blanks", input: " red , green ,, blue ", want: []string{"red", "green", "blue"}},
		{name: "quoted", input: `"Smith, John",Doe`, want: []string{"Smith, John", "Doe"}},
		{name: "multiline", input: "a,b\nc", want: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitChoices(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitChoices() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTemplateEvaluator_Choices(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterValue("departments", "Company departments", []string{"sales", "legal", "hr"})
	evaluator := NewTemplateEvaluator(registry)

	got, err := evaluator.Choices(context.TODO(), `{{ departments|join:"," }}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"sales", "legal", "hr"}, got)

	got, err = evaluator.Choices(context.TODO(), "draft,final")
	require.NoError(t, err)
	assert.Equal(t, []string{"draft", "final"}, got)
}

func TestTemplateEvaluator_Value(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterValue("company", "Company name", "Acme & Sons")
	evaluator := NewTemplateEvaluator(registry)

	got, err := evaluator.Value(context.TODO(), "  {{ company }} ")
	require.NoError(t, err)
	assert.Equal(t, "Acme & Sons", got)

	got, err = evaluator.Value(context.TODO(), "<b>bold</b>")
	require.NoError(t, err)
	assert.Equal(t, "bold", got)
}

func TestTemplateEvaluator_Errors(t *testing.T) {
	registry := NewRegistry()
	registry.Register("broken", "Always fails", func(context.Context) (any, error) {
		return nil, errors.New("backend down")
	})
	evaluator := NewTemplateEvaluator(registry)

	_, err := evaluator.Value(context.TODO(), "{{ value|no_such_filter }}")
	assert.Error(t, err)
	assert.Error(t, evaluator.Check("{{ value|no_such_filter }}"))
	assert.NoError(t, evaluator.Check("{{ value|upper }}"))

	_, err = evaluator.Choices(context.TODO(), "{{ broken }}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
}

func TestTemplateEvaluator_FailingEntryNotReferenced(t *testing.T) {
	registry := NewRegistry()
	registry.Register("document_types", "Document types", func(context.Context) (any, error) {
		return nil, errors.New("db down")
	})
	registry.RegisterValue("colors", "Colors", []string{"red", "green"})
	evaluator := NewTemplateEvaluator(registry)

	tests := []struct {
		name     string
		template string
		want     []string
		wantErr  string
	}{
		{name: "literal", template: "draft,final", want: []string{"draft", "final"}},
		{name: "other entry", template: `{{ colors|join:"," }}`, want: []string{"red", "green"}},
		{name: "failing entry", template: "{{ document_types }}", wantErr: "lookup document_types: db down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evaluator.Choices(context.TODO(), tt.template)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_ContextResolvesReferencedOnly(t *testing.T) {
	calls := 0
	registry := NewRegistry()
	registry.Register("metadata_types", "Metadata types", func(context.Context) (any, error) {
		calls++
		return "number", nil
	})

	values, err := registry.Context(context.TODO(), "a,b")
	require.NoError(t, err)
	assert.Empty(t, values)
	assert.Equal(t, 0, calls)

	values, err = registry.Context(context.TODO(), "{{ metadata_types|upper }}")
	require.NoError(t, err)
	assert.Equal(t, "number", values["metadata_types"])
	assert.Equal(t, 1, calls)
}

func TestJoinChoices(t *testing.T) {
	values := []string{"Invoice", "Smith, John", `Say "hi"`}

	joined := JoinChoices(values)
	assert.Equal(t, `Invoice,"Smith, John","Say ""hi"""`, joined)
	assert.Equal(t, "", JoinChoices(nil))

	registry := NewRegistry()
	registry.RegisterValue("document_types", "Document types", joined)
	got, err := NewTemplateEvaluator(registry).Choices(context.TODO(), "{{ document_types }}")
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestRegistry_HelpText(t *testing.T) {
	registry := NewRegistry()
	registry.RegisterValue("users", "Users", nil)
	registry.RegisterValue("groups", "Groups", nil)
	registry.RegisterValue("users", "All users", nil)

	assert.Equal(t, `{{ users }} = "All users", {{ groups }} = "Groups"`, registry.HelpText())
	assert.Len(t, registry.Entries(), 2)
}

type memoryCache struct {
	values map[string][]string
	sets   int
}

func (m *memoryCache) GetChoices(ctx context.Context, key string) ([]string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryCache) SetChoices(ctx context.Context, key string, choices []string, ttl time.Duration) error {
	m.sets++
	m.values[key] = choices
	return nil
}

type countingEvaluator struct {
	Evaluator
	calls int
}

func (c *countingEvaluator) Choices(ctx context.Context, template string) ([]string, error) {
	c.calls++
	return c.Evaluator.Choices(ctx, template)
}

func TestCachedEvaluator(t *testing.T) {
	next := &countingEvaluator{Evaluator: NewTemplateEvaluator(nil)}
	cache := &memoryCache{values: map[string][]string{}}
	evaluator := NewCachedEvaluator(next, cache, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := evaluator.Choices(context.TODO(), "a,b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got)
	}
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 1, cache.sets)

	_, err := evaluator.Refresh(context.TODO(), "a,b")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}
