package form

import (
	"errors"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Widget string

const (
	WidgetHidden         Widget = "hidden"
	WidgetText           Widget = "text"
	WidgetCheckbox       Widget = "checkbox"
	WidgetSelect         Widget = "select"
	WidgetSelectMultiple Widget = "select_multiple"
	WidgetRadio          Widget = "radio"
)

type Choice struct {
	Value string
	Label string
}

// EmptyChoice is prepended to optional select fields.
var EmptyChoice = Choice{Value: "", Label: "------"}

// ChoicesOf pairs every value with itself as label.
func ChoicesOf(values ...string) []Choice {
	choices := make([]Choice, 0, len(values))
	for _, v := range values {
		choices = append(choices, Choice{Value: v, Label: v})
	}
	return choices
}

// Field describes one form input. A nil Choices means free input; a non nil
// Choices, even empty, restricts submitted values to its values.
type Field struct {
	Name     string
	Label    string
	HelpText string
	Widget   Widget
	Required bool
	ReadOnly bool
	Initial  any
	Choices  []Choice
	Attrs    map[string]string
}

func (f *Field) ChoiceValues() []string {
	values := make([]string, 0, len(f.Choices))
	for _, choice := range f.Choices {
		values = append(values, choice.Value)
	}
	return values
}

func (f *Field) SetAttr(key, value string) {
	if f.Attrs == nil {
		f.Attrs = make(map[string]string)
	}
	f.Attrs[key] = value
}

// clean converts the submitted values of the field into its cleaned value:
// bool for checkboxes, []string for multiple selects, string otherwise.
func (f *Field) clean(raw []string) (any, error) {
	required := validation.When(f.Required, validation.Required.Error(MsgRequired))

	switch f.Widget {
	case WidgetCheckbox:
		checked := parseBool(first(raw))
		if f.Required && !checked {
			return nil, errors.New(MsgRequired)
		}
		return checked, nil

	case WidgetSelectMultiple:
		values := make([]string, 0, len(raw))
		for _, v := range raw {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if err := validation.Validate(values, required); err != nil {
			return nil, err
		}

		allowed := mapset.NewSet(f.ChoiceValues()...)
		if !mapset.NewSet(values...).IsSubset(allowed) {
			for _, v := range values {
				if !allowed.Contains(v) {
					return nil, fmt.Errorf(MsgInvalidChoice, v)
				}
			}
		}
		return values, nil

	default:
		value := strings.TrimSpace(first(raw))
		if err := validation.Validate(value, required); err != nil {
			return nil, err
		}

		if f.Choices != nil && value != "" {
			allowed := make([]any, 0, len(f.Choices))
			for _, v := range f.ChoiceValues() {
				allowed = append(allowed, v)
			}
			rule := validation.In(allowed...).Error(fmt.Sprintf(MsgInvalidChoice, value))
			if err := validation.Validate(value, rule); err != nil {
				return nil, err
			}
		}
		return value, nil
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "0", "off":
		return false
	default:
		return true
	}
}
