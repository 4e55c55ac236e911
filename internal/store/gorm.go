package store

import (
	"context"

	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/queue"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Option func(*GormStore)

// WithEventQueue publishes every committed audit event to q.
func WithEventQueue(q queue.EventQueue) Option {
	return func(g *GormStore) {
		g.queue = q
	}
}

func NewGormStore(db *gorm.DB, opts ...Option) *GormStore {
	store := &GormStore{
		db:    db,
		queue: queue.NewNop(),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db    *gorm.DB
	queue queue.EventQueue
	// pending collects events written inside Transaction until commit.
	pending *[]*model.Event
}

func (g *GormStore) CreateDocumentType(ctx context.Context, documentType *model.DocumentType) error {
	return g.db.WithContext(ctx).Omit(clause.Associations).Create(documentType).Error
}

func (g *GormStore) GetDocumentType(ctx context.Context, id string) (*model.DocumentType, error) {
	var documentType model.DocumentType
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&documentType).Error
	if err != nil {
		return nil, translate(err)
	}
	return &documentType, nil
}

func (g *GormStore) GetDocumentTypeByLabel(ctx context.Context, label string) (*model.DocumentType, error) {
	var documentType model.DocumentType
	err := g.db.WithContext(ctx).Where("label = ?", label).First(&documentType).Error
	if err != nil {
		return nil, translate(err)
	}
	return &documentType, nil
}

func (g *GormStore) ListDocumentTypes(ctx context.Context) ([]*model.DocumentType, error) {
	var documentTypes []*model.DocumentType
	err := g.db.WithContext(ctx).Order("label").Find(&documentTypes).Error
	return documentTypes, err
}

func (g *GormStore) GetMetadataType(ctx context.Context, id string) (*model.MetadataType, error) {
	var metadataType model.MetadataType
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&metadataType).Error
	if err != nil {
		return nil, translate(err)
	}
	return &metadataType, nil
}

func (g *GormStore) GetMetadataTypeByName(ctx context.Context, name string) (*model.MetadataType, error) {
	var metadataType model.MetadataType
	err := g.db.WithContext(ctx).Where("name = ?", name).First(&metadataType).Error
	if err != nil {
		return nil, translate(err)
	}
	return &metadataType, nil
}

func (g *GormStore) ListMetadataTypes(ctx context.Context) ([]*model.MetadataType, error) {
	var metadataTypes []*model.MetadataType
	err := g.db.WithContext(ctx).Order("label").Find(&metadataTypes).Error
	return metadataTypes, err
}

func (g *GormStore) ListMetadataTypesForDocumentType(ctx context.Context, documentTypeID string) ([]*model.MetadataType, error) {
	var metadataTypes []*model.MetadataType
	err := g.db.WithContext(ctx).
		Joins("JOIN document_type_metadata_types r ON r.metadata_type_id = metadata_types.id").
		Where("r.document_type_id = ?", documentTypeID).
		Order("metadata_types.label").
		Find(&metadataTypes).Error
	return metadataTypes, err
}

func (g *GormStore) SaveMetadataType(ctx context.Context, metadataType *model.MetadataType, actor model.Actor) error {
	verb := model.VerbMetadataTypeEdited
	if metadataType.ID == "" {
		verb = model.VerbMetadataTypeCreated
	}

	return g.audited(ctx, actor, verb, metadataType.TableName(), func(tx *gorm.DB) (string, error) {
		err := tx.Omit(clause.Associations).Save(metadataType).Error
		return metadataType.ID, err
	})
}

func (g *GormStore) GetRelationship(ctx context.Context, documentTypeID, metadataTypeID string) (*model.DocumentTypeMetadataType, error) {
	var relationship model.DocumentTypeMetadataType
	err := g.db.WithContext(ctx).
		Where("document_type_id = ? AND metadata_type_id = ?", documentTypeID, metadataTypeID).
		First(&relationship).Error
	if err != nil {
		return nil, translate(err)
	}
	return &relationship, nil
}

func (g *GormStore) ListRelationships(ctx context.Context, documentTypeID string) ([]*model.DocumentTypeMetadataType, error) {
	var relationships []*model.DocumentTypeMetadataType
	err := g.db.WithContext(ctx).
		Preload("MetadataType").
		Where("document_type_id = ?", documentTypeID).
		Find(&relationships).Error
	return relationships, err
}

func (g *GormStore) ListMetadataTypeRelationships(ctx context.Context, metadataTypeID string) ([]*model.DocumentTypeMetadataType, error) {
	var relationships []*model.DocumentTypeMetadataType
	err := g.db.WithContext(ctx).
		Preload("DocumentType").
		Where("metadata_type_id = ?", metadataTypeID).
		Find(&relationships).Error
	return relationships, err
}

func (g *GormStore) IsRequired(ctx context.Context, documentTypeID, metadataTypeID string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.DocumentTypeMetadataType{}).
		Where("document_type_id = ? AND metadata_type_id = ? AND required = ?", documentTypeID, metadataTypeID, true).
		Count(&count).Error
	return count > 0, err
}

func (g *GormStore) SaveRelationship(ctx context.Context, relationship *model.DocumentTypeMetadataType, actor model.Actor) error {
	verb := model.VerbRelationshipEdited
	if relationship.ID == "" {
		verb = model.VerbRelationshipCreated
	}

	return g.audited(ctx, actor, verb, relationship.TableName(), func(tx *gorm.DB) (string, error) {
		err := tx.Omit(clause.Associations).Save(relationship).Error
		return relationship.ID, err
	})
}

func (g *GormStore) DeleteRelationship(ctx context.Context, relationship *model.DocumentTypeMetadataType, actor model.Actor) error {
	return g.audited(ctx, actor, model.VerbRelationshipDeleted, relationship.TableName(), func(tx *gorm.DB) (string, error) {
		res := tx.Where("id = ?", relationship.ID).Delete(&model.DocumentTypeMetadataType{})
		if res.Error != nil {
			return "", res.Error
		}
		if res.RowsAffected == 0 {
			return "", ErrNotFound
		}
		return relationship.ID, nil
	})
}

func (g *GormStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	return g.db.WithContext(ctx).Omit(clause.Associations).Create(doc).Error
}

func (g *GormStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	err := g.db.WithContext(ctx).Preload("DocumentType").Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func (g *GormStore) ListDocumentsFromIDs(ctx context.Context, ids []string) ([]*model.Document, error) {
	var docs []*model.Document
	err := g.db.WithContext(ctx).Preload("DocumentType").Where("id in (?)", ids).Find(&docs).Error
	return docs, err
}

func (g *GormStore) ListDocumentMetadata(ctx context.Context, documentID string) ([]*model.DocumentMetadata, error) {
	var values []*model.DocumentMetadata
	err := g.db.WithContext(ctx).
		Preload("MetadataType").
		Joins("JOIN metadata_types ON metadata_types.id = document_metadata.metadata_type_id").
		Where("document_metadata.document_id = ?", documentID).
		Order("metadata_types.label").
		Find(&values).Error
	return values, err
}

func (g *GormStore) GetDocumentMetadata(ctx context.Context, documentID, metadataTypeID string) (*model.DocumentMetadata, error) {
	var value model.DocumentMetadata
	err := g.db.WithContext(ctx).
		Preload("MetadataType").
		Where("document_id = ? AND metadata_type_id = ?", documentID, metadataTypeID).
		First(&value).Error
	if err != nil {
		return nil, translate(err)
	}
	return &value, nil
}

func (g *GormStore) SaveDocumentMetadata(ctx context.Context, metadata *model.DocumentMetadata, actor model.Actor) error {
	verb := model.VerbDocumentMetadataEdited
	if metadata.ID == "" {
		verb = model.VerbDocumentMetadataAdded
	}

	return g.audited(ctx, actor, verb, metadata.TableName(), func(tx *gorm.DB) (string, error) {
		err := tx.Omit(clause.Associations).Save(metadata).Error
		return metadata.ID, err
	})
}

func (g *GormStore) DeleteDocumentMetadata(ctx context.Context, metadata *model.DocumentMetadata, actor model.Actor) error {
	return g.audited(ctx, actor, model.VerbDocumentMetadataRemoved, metadata.TableName(), func(tx *gorm.DB) (string, error) {
		err := tx.Where("id = ?", metadata.ID).Delete(&model.DocumentMetadata{}).Error
		return metadata.ID, err
	})
}

func (g *GormStore) ListEvents(ctx context.Context, targetID string) ([]*model.Event, error) {
	var events []*model.Event
	err := g.db.WithContext(ctx).Where("target_id = ?", targetID).Order("created_at").Find(&events).Error
	return events, err
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	// a nested transaction hands its events to the outer one only when its
	// savepoint commits
	if g.pending != nil {
		nested := make([]*model.Event, 0)
		err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return f(&GormStore{db: tx, queue: g.queue, pending: &nested})
		})
		if err != nil {
			return err
		}

		*g.pending = append(*g.pending, nested...)
		return nil
	}

	pending := make([]*model.Event, 0)
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx, queue: g.queue, pending: &pending})
	})
	if err != nil {
		return err
	}

	g.publish(ctx, pending...)

	return nil
}

// audited runs write and the audit event insert in one transaction.
// write returns the id of the row it touched.
func (g *GormStore) audited(ctx context.Context, actor model.Actor, verb, targetType string, write func(tx *gorm.DB) (string, error)) error {
	var event *model.Event
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := write(tx)
		if err != nil {
			return translate(err)
		}

		event = model.NewEvent(actor, verb, targetType, id)
		return tx.Create(event).Error
	})
	if err != nil {
		return err
	}

	if g.pending != nil {
		*g.pending = append(*g.pending, event)
		return nil
	}

	g.publish(ctx, event)

	return nil
}

func (g *GormStore) publish(ctx context.Context, events ...*model.Event) {
	for _, event := range events {
		if err := g.queue.Publish(ctx, event); err != nil {
			logrus.WithFields(logrus.Fields{
				"verb":   event.Verb,
				"target": event.TargetID,
			}).Errorf("failed to publish audit event: %v", err)
		}
	}
}
