package metadata

import (
	"fmt"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ValidatorFunc rejects a metadata value.
type ValidatorFunc func(value string) error

// ParserFunc rewrites a metadata value before it is stored.
type ParserFunc func(value string) (string, error)

// Named is a registered validator or parser, as offered in forms.
type Named struct {
	Name  string
	Label string
}

type validator struct {
	label string
	fn    ValidatorFunc
}

type parser struct {
	label string
	fn    ParserFunc
}

// Pipeline holds the validators and parsers metadata types refer to by name.
type Pipeline struct {
	validators map[string]validator
	parsers    map[string]parser
}

var (
	dateLayouts     = []string{"2006-01-02", "2006/01/02", "02/01/2006", "Jan 2, 2006", "2 Jan 2006", "January 2, 2006"}
	timeLayouts     = []string{"15:04:05", "15:04", "3:04PM", "3:04 PM"}
	dateTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04", "02/01/2006 15:04"}
)

// NewPipeline returns a pipeline with the built in validators and parsers.
func NewPipeline() *Pipeline {
	p := &Pipeline{
		validators: make(map[string]validator),
		parsers:    make(map[string]parser),
	}

	p.RegisterValidator("date", "Date", layoutValidator(dateLayouts, "Enter a valid date."))
	p.RegisterValidator("time", "Time", layoutValidator(timeLayouts, "Enter a valid time."))
	p.RegisterValidator("datetime", "Date and time", layoutValidator(dateTimeLayouts, "Enter a valid date/time."))
	p.RegisterValidator("integer", "Integer", ruleValidator(is.Int.Error("Enter a whole number.")))
	p.RegisterValidator("email", "Email", ruleValidator(is.EmailFormat.Error("Enter a valid email address.")))
	p.RegisterValidator("url", "URL", ruleValidator(is.URL.Error("Enter a valid URL.")))
	p.RegisterValidator("uuid", "UUID", ruleValidator(is.UUID.Error("Enter a valid UUID.")))
	p.RegisterValidator("alphanumeric", "Alphanumeric", ruleValidator(is.Alphanumeric.Error("Enter only letters and numbers.")))

	p.RegisterParser("date", "Date", layoutParser(dateLayouts, "2006-01-02"))
	p.RegisterParser("time", "Time", layoutParser(timeLayouts, "15:04:05"))
	p.RegisterParser("datetime", "Date and time", layoutParser(dateTimeLayouts, "2006-01-02T15:04:05"))
	p.RegisterParser("upper", "Upper case", stringParser(strings.ToUpper))
	p.RegisterParser("lower", "Lower case", stringParser(strings.ToLower))
	p.RegisterParser("trim", "Trim spaces", stringParser(strings.TrimSpace))

	return p
}

func (p *Pipeline) RegisterValidator(name, label string, fn ValidatorFunc) {
	p.validators[name] = validator{label: label, fn: fn}
}

func (p *Pipeline) RegisterParser(name, label string, fn ParserFunc) {
	p.parsers[name] = parser{label: label, fn: fn}
}

// Validators lists the registered validators sorted by name.
func (p *Pipeline) Validators() []Named {
	named := make([]Named, 0, len(p.validators))
	for name, v := range p.validators {
		named = append(named, Named{Name: name, Label: v.label})
	}
	sort.Slice(named, func(i, j int) bool { return named[i].Name < named[j].Name })
	return named
}

// Parsers lists the registered parsers sorted by name.
func (p *Pipeline) Parsers() []Named {
	named := make([]Named, 0, len(p.parsers))
	for name, v := range p.parsers {
		named = append(named, Named{Name: name, Label: v.label})
	}
	sort.Slice(named, func(i, j int) bool { return named[i].Name < named[j].Name })
	return named
}

func (p *Pipeline) Validate(name, value string) error {
	v, ok := p.validators[name]
	if !ok {
		return fmt.Errorf("unknown validator %q", name)
	}
	return v.fn(value)
}

func (p *Pipeline) Parse(name, value string) (string, error) {
	v, ok := p.parsers[name]
	if !ok {
		return "", fmt.Errorf("unknown parser %q", name)
	}
	return v.fn(value)
}

func ruleValidator(rule validation.Rule) ValidatorFunc {
	return func(value string) error {
		return validation.Validate(value, rule)
	}
}

func layoutValidator(layouts []string, message string) ValidatorFunc {
	return func(value string) error {
		for _, layout := range layouts {
			if validation.Validate(value, validation.Date(layout)) == nil {
				return nil
			}
		}
		return validation.NewError("validation_invalid_date", message)
	}
}

func layoutParser(layouts []string, output string) ParserFunc {
	return func(value string) (string, error) {
		if value == "" {
			return value, nil
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t.Format(output), nil
			}
		}
		return "", fmt.Errorf("unable to parse %q", value)
	}
}

func stringParser(fn func(string) string) ParserFunc {
	return func(value string) (string, error) {
		return fn(value), nil
	}
}
