package form

import (
	"context"
	"net/url"
)

// CleanFunc is the form level validation hook. It runs after every field
// was cleaned and may rewrite cleaned values in place.
type CleanFunc func(ctx context.Context, cleaned map[string]any) error

// Form is an ordered set of fields bound to submitted data.
type Form struct {
	Prefix string
	// Initial holds per form initial values; they take precedence over the
	// Initial of the field.
	Initial map[string]any

	fields  []*Field
	clean   CleanFunc
	data    url.Values
	bound   bool
	cleaned map[string]any
	errors  Errors
	checked bool
}

func New(prefix string, fields ...*Field) *Form {
	return &Form{
		Prefix:  prefix,
		Initial: make(map[string]any),
		fields:  fields,
	}
}

// Base makes *Form usable in a FormSet on its own.
func (f *Form) Base() *Form {
	return f
}

func (f *Form) SetClean(fn CleanFunc) {
	f.clean = fn
}

func (f *Form) Fields() []*Field {
	return f.fields
}

func (f *Form) Field(name string) *Field {
	for _, field := range f.fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}

// SetField replaces the field with the same name in place, or appends it.
func (f *Form) SetField(field *Field) {
	for i, existing := range f.fields {
		if existing.Name == field.Name {
			f.fields[i] = field
			return
		}
	}
	f.fields = append(f.fields, field)
}

func (f *Form) RemoveField(name string) {
	for i, field := range f.fields {
		if field.Name == name {
			f.fields = append(f.fields[:i], f.fields[i+1:]...)
			return
		}
	}
}

// Key returns the submitted data key of a field.
func (f *Form) Key(name string) string {
	if f.Prefix == "" {
		return name
	}
	return f.Prefix + "-" + name
}

// InitialValue returns the value a field renders with before submission.
func (f *Form) InitialValue(name string) any {
	if v, ok := f.Initial[name]; ok {
		return v
	}
	if field := f.Field(name); field != nil {
		return field.Initial
	}
	return nil
}

func (f *Form) Bind(data url.Values) {
	f.data = data
	f.bound = true
	f.checked = false
	f.cleaned = nil
	f.errors = nil
}

func (f *Form) IsBound() bool {
	return f.bound
}

// IsValid cleans the bound data once and reports whether it had no errors.
// An unbound form is never valid.
func (f *Form) IsValid(ctx context.Context) bool {
	if !f.bound {
		return false
	}
	f.fullClean(ctx)
	return len(f.errors) == 0
}

func (f *Form) fullClean(ctx context.Context) {
	if f.checked {
		return
	}
	f.checked = true
	f.cleaned = make(map[string]any)
	f.errors = make(Errors)

	for _, field := range f.fields {
		value, err := field.clean(f.data[f.Key(field.Name)])
		if err != nil {
			f.errors.Add(field.Name, err.Error())
			continue
		}
		f.cleaned[field.Name] = value
	}

	if f.clean != nil {
		if err := f.clean(ctx, f.cleaned); err != nil {
			f.errors.merge(err)
		}
	}
}

// Cleaned returns the cleaned values; nil before validation.
func (f *Form) Cleaned() map[string]any {
	return f.cleaned
}

// Errors returns the errors of the last IsValid call.
func (f *Form) Errors() Errors {
	return f.errors
}

func (f *Form) CleanedString(name string) string {
	v, _ := f.cleaned[name].(string)
	return v
}

func (f *Form) CleanedBool(name string) bool {
	v, _ := f.cleaned[name].(bool)
	return v
}

func (f *Form) CleanedStrings(name string) []string {
	v, _ := f.cleaned[name].([]string)
	return v
}
