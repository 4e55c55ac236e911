package store

import (
	"context"

	"github.com/emrgen/metadata/internal/model"
)

type Store interface {
	DocumentTypeStore
	MetadataTypeStore
	RelationshipStore
	DocumentStore
	DocumentMetadataStore
	EventStore
	// Transaction runs f inside a database transaction. Audit events written
	// by f are published only after the transaction commits.
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type DocumentTypeStore interface {
	// CreateDocumentType creates a new document type.
	CreateDocumentType(ctx context.Context, documentType *model.DocumentType) error
	// GetDocumentType retrieves a document type by ID.
	GetDocumentType(ctx context.Context, id string) (*model.DocumentType, error)
	// GetDocumentTypeByLabel retrieves a document type by its label.
	GetDocumentTypeByLabel(ctx context.Context, label string) (*model.DocumentType, error)
	// ListDocumentTypes retrieves all document types ordered by label.
	ListDocumentTypes(ctx context.Context) ([]*model.DocumentType, error)
}

type MetadataTypeStore interface {
	// GetMetadataType retrieves a metadata type by ID.
	GetMetadataType(ctx context.Context, id string) (*model.MetadataType, error)
	// GetMetadataTypeByName retrieves a metadata type by its internal name.
	GetMetadataTypeByName(ctx context.Context, name string) (*model.MetadataType, error)
	// ListMetadataTypes retrieves all metadata types ordered by label.
	ListMetadataTypes(ctx context.Context) ([]*model.MetadataType, error)
	// ListMetadataTypesForDocumentType retrieves the metadata types attached to a document type.
	ListMetadataTypesForDocumentType(ctx context.Context, documentTypeID string) ([]*model.MetadataType, error)
	// SaveMetadataType creates or updates a metadata type on behalf of actor.
	SaveMetadataType(ctx context.Context, metadataType *model.MetadataType, actor model.Actor) error
}

type RelationshipStore interface {
	// GetRelationship retrieves the relationship row of a document type and metadata type pair.
	GetRelationship(ctx context.Context, documentTypeID, metadataTypeID string) (*model.DocumentTypeMetadataType, error)
	// ListRelationships retrieves the relationships of a document type with their metadata types.
	ListRelationships(ctx context.Context, documentTypeID string) ([]*model.DocumentTypeMetadataType, error)
	// ListMetadataTypeRelationships retrieves the relationships of a metadata type with their document types.
	ListMetadataTypeRelationships(ctx context.Context, metadataTypeID string) ([]*model.DocumentTypeMetadataType, error)
	// IsRequired reports whether a required relationship exists for the pair.
	IsRequired(ctx context.Context, documentTypeID, metadataTypeID string) (bool, error)
	// SaveRelationship creates or updates a relationship on behalf of actor.
	SaveRelationship(ctx context.Context, relationship *model.DocumentTypeMetadataType, actor model.Actor) error
	// DeleteRelationship deletes a relationship on behalf of actor.
	DeleteRelationship(ctx context.Context, relationship *model.DocumentTypeMetadataType, actor model.Actor) error
}

type DocumentStore interface {
	// CreateDocument creates a new document.
	CreateDocument(ctx context.Context, doc *model.Document) error
	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	// ListDocumentsFromIDs retrieves a list of documents by IDs.
	ListDocumentsFromIDs(ctx context.Context, ids []string) ([]*model.Document, error)
}

type DocumentMetadataStore interface {
	// ListDocumentMetadata retrieves the metadata values of a document with their metadata types.
	ListDocumentMetadata(ctx context.Context, documentID string) ([]*model.DocumentMetadata, error)
	// GetDocumentMetadata retrieves one metadata value of a document.
	GetDocumentMetadata(ctx context.Context, documentID, metadataTypeID string) (*model.DocumentMetadata, error)
	// SaveDocumentMetadata creates or updates a metadata value on behalf of actor.
	SaveDocumentMetadata(ctx context.Context, metadata *model.DocumentMetadata, actor model.Actor) error
	// DeleteDocumentMetadata deletes a metadata value on behalf of actor.
	DeleteDocumentMetadata(ctx context.Context, metadata *model.DocumentMetadata, actor model.Actor) error
}

type EventStore interface {
	// ListEvents retrieves the audit events of a target, oldest first.
	ListEvents(ctx context.Context, targetID string) ([]*model.Event, error)
}
