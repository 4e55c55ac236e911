package forms

import "errors"

var (
	// ErrInvalidForm is returned when saving a form that did not validate.
	ErrInvalidForm = errors.New("form is not valid")
	// ErrRelationshipNotFound is returned when removing a relationship that does not exist.
	ErrRelationshipNotFound = errors.New("relationship not found")
)
