package form

import (
	"errors"
	"sort"
	"strings"
)

// NonFieldErrors is the Errors key for messages not tied to one field.
const NonFieldErrors = "__all__"

const (
	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. %s is not one of the available choices."
)

var ErrManagementForm = errors.New("ManagementForm data is missing or has been tampered with")

// ValidationError is a validation failure for one field, or for the whole
// form when Field is empty.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Errors maps field names to their messages.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	if field == "" {
		field = NonFieldErrors
	}
	e[field] = append(e[field], message)
}

func (e Errors) Get(field string) []string {
	return e[field]
}

func (e Errors) NonField() []string {
	return e[NonFieldErrors]
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], " "))
	}
	return strings.Join(parts, "; ")
}

// merge records err under the field it names, or as a non field error.
func (e Errors) merge(err error) {
	var verr *ValidationError
	var errs Errors
	switch {
	case errors.As(err, &verr):
		e.Add(verr.Field, verr.Message)
	case errors.As(err, &errs):
		for field, messages := range errs {
			for _, message := range messages {
				e.Add(field, message)
			}
		}
	default:
		e.Add(NonFieldErrors, err.Error())
	}
}
