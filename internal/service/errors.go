package service

import "errors"

var (
	// ErrNoDocuments is returned when a bulk operation gets no documents.
	ErrNoDocuments = errors.New("no documents selected")
	// ErrMixedDocumentTypes is returned when bulk editing documents of different types.
	ErrMixedDocumentTypes = errors.New("selected documents must be of the same type")
	// ErrRequiredMetadata is returned when removing metadata required by the document type.
	ErrRequiredMetadata = errors.New("metadata is required for the document type")
	// ErrMetadataTypeMismatch is returned when a submitted form names another metadata type.
	ErrMetadataTypeMismatch = errors.New("submitted metadata type does not match the form")
)
