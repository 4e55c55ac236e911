package lookup

import (
	"context"
	"encoding/csv"
	"errors"
	"html"
	"io"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

// Evaluator turns metadata type templates into values.
type Evaluator interface {
	// Choices evaluates a lookup template into the list of allowed values.
	Choices(ctx context.Context, template string) ([]string, error)
	// Value evaluates a default value template.
	Value(ctx context.Context, template string) (string, error)
	// Check reports whether the template parses.
	Check(template string) error
}

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

var _ Evaluator = (*TemplateEvaluator)(nil)

// TemplateEvaluator renders Django syntax templates with pongo2 against the
// variables of a Registry. Rendered output is reduced to plain text.
type TemplateEvaluator struct {
	registry *Registry
}

func NewTemplateEvaluator(registry *Registry) *TemplateEvaluator {
	if registry == nil {
		registry = NewRegistry()
	}

	return &TemplateEvaluator{registry: registry}
}

func (e *TemplateEvaluator) Registry() *Registry {
	return e.registry
}

func (e *TemplateEvaluator) Check(template string) error {
	_, err := pongo2.FromString(template)
	return err
}

func (e *TemplateEvaluator) Value(ctx context.Context, template string) (string, error) {
	tpl, err := pongo2.FromString(template)
	if err != nil {
		return "", err
	}

	values, err := e.registry.Context(ctx, template)
	if err != nil {
		return "", err
	}

	out, err := tpl.Execute(values)
	if err != nil {
		return "", err
	}

	text := html.UnescapeString(textSanitizer().Sanitize(out))
	return strings.TrimSpace(text), nil
}

func (e *TemplateEvaluator) Choices(ctx context.Context, template string) ([]string, error) {
	out, err := e.Value(ctx, template)
	if err != nil {
		return nil, err
	}

	return SplitChoices(out)
}

// JoinChoices renders values as a comma separated list that SplitChoices
// reads back, quoting values that contain commas or quotes.
func JoinChoices(values []string) string {
	var buf strings.Builder
	w := csv.NewWriter(&buf)
	// Write only fails when the underlying writer does
	_ = w.Write(values)
	w.Flush()

	return strings.TrimRight(buf.String(), "\r\n")
}

// SplitChoices splits a comma separated list. Double quotes group values
// containing commas; surrounding blanks and empty items are dropped.
func SplitChoices(s string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(s))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	choices := make([]string, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		for _, item := range record {
			if item = strings.TrimSpace(item); item != "" {
				choices = append(choices, item)
			}
		}
	}

	return choices, nil
}
