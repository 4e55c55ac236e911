package form

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Management data keys, suffixed to the form set prefix.
const (
	TotalFormsKey   = "TOTAL_FORMS"
	InitialFormsKey = "INITIAL_FORMS"
	MinNumFormsKey  = "MIN_NUM_FORMS"
	MaxNumFormsKey  = "MAX_NUM_FORMS"

	DefaultMaxNum = 1000
)

// Former is implemented by every form type that embeds a *Form.
type Former interface {
	Base() *Form
}

// FormSet is an ordered batch of forms built from initial data. No extra
// blank forms are added, so a submission can only shrink the batch.
type FormSet[T Former] struct {
	Prefix string

	forms   []T
	active  int
	bound   bool
	errs    []string
	checked bool
	valid   bool
}

// FormPrefix returns the prefix of the i-th form of a set.
func FormPrefix(prefix string, i int) string {
	return fmt.Sprintf("%s-%d", prefix, i)
}

// NewFormSet builds n forms, handing each its prefixed name.
func NewFormSet[T Former](prefix string, n int, build func(prefix string, i int) (T, error)) (*FormSet[T], error) {
	if n > DefaultMaxNum {
		n = DefaultMaxNum
	}

	forms := make([]T, 0, n)
	for i := 0; i < n; i++ {
		f, err := build(FormPrefix(prefix, i), i)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}

	return &FormSet[T]{Prefix: prefix, forms: forms, active: n}, nil
}

func (s *FormSet[T]) key(name string) string {
	return s.Prefix + "-" + name
}

// Forms returns the forms taking part in validation.
func (s *FormSet[T]) Forms() []T {
	return s.forms[:s.active]
}

func (s *FormSet[T]) Len() int {
	return s.active
}

// ManagementData returns the management values to render with the set.
func (s *FormSet[T]) ManagementData() url.Values {
	return url.Values{
		s.key(TotalFormsKey):   {strconv.Itoa(len(s.forms))},
		s.key(InitialFormsKey): {strconv.Itoa(len(s.forms))},
		s.key(MinNumFormsKey):  {"0"},
		s.key(MaxNumFormsKey):  {strconv.Itoa(DefaultMaxNum)},
	}
}

// Bind binds data to the set and to each form it keeps.
func (s *FormSet[T]) Bind(data url.Values) {
	s.bound = true
	s.checked = false
	s.errs = nil
	s.active = len(s.forms)

	total, err := strconv.Atoi(data.Get(s.key(TotalFormsKey)))
	if err != nil || total < 0 || total > len(s.forms) {
		s.errs = append(s.errs, ErrManagementForm.Error())
		s.active = 0
		return
	}

	s.active = total
	for _, f := range s.Forms() {
		f.Base().Bind(data)
	}
}

func (s *FormSet[T]) IsBound() bool {
	return s.bound
}

// IsValid reports whether the management data is sound and every form is valid.
func (s *FormSet[T]) IsValid(ctx context.Context) bool {
	if !s.bound {
		return false
	}
	if s.checked {
		return s.valid
	}
	s.checked = true

	valid := len(s.errs) == 0
	for _, f := range s.Forms() {
		if !f.Base().IsValid(ctx) {
			valid = false
		}
	}
	s.valid = valid

	return valid
}

func (s *FormSet[T]) NonFormErrors() []string {
	return s.errs
}

// Errors returns the errors of every active form, in order.
func (s *FormSet[T]) Errors() []Errors {
	errs := make([]Errors, 0, s.active)
	for _, f := range s.Forms() {
		errs = append(errs, f.Base().Errors())
	}
	return errs
}
