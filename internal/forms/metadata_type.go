package forms

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/emrgen/metadata/internal/form"
	"github.com/emrgen/metadata/internal/lookup"
	"github.com/emrgen/metadata/internal/metadata"
	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/store"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	FieldName       = "name"
	FieldDefault    = "default"
	FieldLookup     = "lookup"
	FieldValidation = "validation"
	FieldParser     = "parser"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// TemplateChecker reports whether a template parses.
type TemplateChecker interface {
	Check(template string) error
}

// MetadataTypeForm creates or edits a metadata type.
type MetadataTypeForm struct {
	*form.Form
	// Instance is the edited metadata type, nil when creating one.
	Instance *model.MetadataType

	store     store.MetadataTypeStore
	templates TemplateChecker
}

func namedChoices(named []metadata.Named) []form.Choice {
	choices := []form.Choice{form.EmptyChoice}
	for _, n := range named {
		choices = append(choices, form.Choice{Value: n.Name, Label: n.Label})
	}
	return choices
}

func NewMetadataTypeForm(s store.MetadataTypeStore, templates TemplateChecker, pipeline *metadata.Pipeline, registry *lookup.Registry, instance *model.MetadataType) *MetadataTypeForm {
	lookupHelp := "Enter a template to render. Must result in a comma delimited string."
	if registry != nil {
		if vars := registry.HelpText(); vars != "" {
			lookupHelp += " Available template context variables: " + vars
		}
	}

	f := &MetadataTypeForm{
		Form: form.New("",
			&form.Field{
				Name:     FieldName,
				Label:    "Name",
				HelpText: "Name used by other apps to reference this metadata type. Letters, digits and underscores only.",
				Widget:   form.WidgetText,
				Required: true,
			},
			&form.Field{Name: FieldLabel, Label: "Label", Widget: form.WidgetText, Required: true},
			&form.Field{
				Name:     FieldDefault,
				Label:    "Default",
				HelpText: "Enter a template to render.",
				Widget:   form.WidgetText,
			},
			&form.Field{Name: FieldLookup, Label: "Lookup", HelpText: lookupHelp, Widget: form.WidgetText},
			&form.Field{
				Name:     FieldValidation,
				Label:    "Validation",
				HelpText: "The validator will reject data entry if the value entered does not conform to the expected format.",
				Widget:   form.WidgetSelect,
				Choices:  namedChoices(pipeline.Validators()),
			},
			&form.Field{
				Name:     FieldParser,
				Label:    "Parser",
				HelpText: "The parser will reformat the value entered to conform to the expected format.",
				Widget:   form.WidgetSelect,
				Choices:  namedChoices(pipeline.Parsers()),
			},
		),
		Instance:  instance,
		store:     s,
		templates: templates,
	}
	f.SetClean(f.clean)

	if instance != nil {
		f.Initial[FieldName] = instance.Name
		f.Initial[FieldLabel] = instance.Label
		f.Initial[FieldDefault] = instance.Default
		f.Initial[FieldLookup] = instance.Lookup
		f.Initial[FieldValidation] = instance.Validation
		f.Initial[FieldParser] = instance.Parser
	}

	return f
}

func (f *MetadataTypeForm) clean(ctx context.Context, cleaned map[string]any) error {
	errs := make(form.Errors)

	if name, ok := cleaned[FieldName].(string); ok && name != "" {
		rule := validation.Match(identifierPattern).Error("Enter a valid identifier: letters, digits and underscores, not starting with a digit.")
		if err := validation.Validate(name, rule); err != nil {
			errs.Add(FieldName, err.Error())
		} else if err := f.checkUnique(ctx, name); err != nil {
			var verr *form.ValidationError
			if !errors.As(err, &verr) {
				return err
			}
			errs.Add(verr.Field, verr.Message)
		}
	}

	for _, field := range []string{FieldDefault, FieldLookup} {
		template, _ := cleaned[field].(string)
		if template == "" {
			continue
		}
		if err := f.templates.Check(template); err != nil {
			errs.Add(field, fmt.Sprintf("Template error: %s", err))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (f *MetadataTypeForm) checkUnique(ctx context.Context, name string) error {
	existing, err := f.store.GetMetadataTypeByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if f.Instance != nil && existing.ID == f.Instance.ID {
		return nil
	}
	return form.NewValidationError(FieldName, "Metadata type with this Name already exists.")
}

// Save creates or updates the metadata type from the cleaned values.
func (f *MetadataTypeForm) Save(ctx context.Context, actor model.Actor) (*model.MetadataType, error) {
	if f.Cleaned() == nil || len(f.Errors()) > 0 {
		return nil, ErrInvalidForm
	}

	metadataType := f.Instance
	if metadataType == nil {
		metadataType = &model.MetadataType{}
	}
	metadataType.Name = f.CleanedString(FieldName)
	metadataType.Label = f.CleanedString(FieldLabel)
	metadataType.Default = f.CleanedString(FieldDefault)
	metadataType.Lookup = f.CleanedString(FieldLookup)
	metadataType.Validation = f.CleanedString(FieldValidation)
	metadataType.Parser = f.CleanedString(FieldParser)

	if err := f.store.SaveMetadataType(ctx, metadataType, actor); err != nil {
		return nil, err
	}

	f.Instance = metadataType
	return metadataType, nil
}
