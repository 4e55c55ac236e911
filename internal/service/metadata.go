package service

import (
	"context"
	"fmt"
	"net/url"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/metadata/internal/forms"
	"github.com/emrgen/metadata/internal/lookup"
	"github.com/emrgen/metadata/internal/metadata"
	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/store"
	"github.com/sirupsen/logrus"
)

// NewMetadataService creates a new MetadataService.
func NewMetadataService(store store.Store, resolver *metadata.Resolver, registry *lookup.Registry) *MetadataService {
	return &MetadataService{
		store:    store,
		resolver: resolver,
		registry: registry,
	}
}

// MetadataService builds the metadata forms from stored rows and persists
// the submitted results.
type MetadataService struct {
	store    store.Store
	resolver *metadata.Resolver
	registry *lookup.Registry
}

// EditForms returns one value form per metadata value of the document.
func (m *MetadataService) EditForms(ctx context.Context, documentID string) (*forms.DocumentMetadataFormSet, error) {
	doc, initials, err := m.documentInitials(ctx, documentID)
	if err != nil {
		return nil, err
	}

	logrus.Debugf("building %d metadata forms for document %v", len(initials), doc.ID)
	return forms.NewDocumentMetadataFormSet(ctx, m.resolver, initials)
}

// Edit validates the submitted values and stores those marked for update.
// The returned set carries the validation errors.
func (m *MetadataService) Edit(ctx context.Context, documentID string, data url.Values, actor model.Actor) (*forms.DocumentMetadataFormSet, error) {
	set, err := m.EditForms(ctx, documentID)
	if err != nil {
		return nil, err
	}

	set.Bind(data)
	if !set.IsValid(ctx) {
		return set, forms.ErrInvalidForm
	}

	err = m.store.Transaction(ctx, func(tx store.Store) error {
		for _, f := range set.Forms() {
			if !f.Update() {
				continue
			}
			if f.CleanedString(forms.FieldMetadataTypeID) != f.MetadataType.ID {
				return ErrMetadataTypeMismatch
			}

			value := f.Existing
			if value == nil {
				value = &model.DocumentMetadata{DocumentID: documentID, MetadataTypeID: f.MetadataType.ID}
			}
			value.Value = f.Value()

			logrus.Infof("updating metadata %v of document %v", f.MetadataType.Name, documentID)
			if err := tx.SaveDocumentMetadata(ctx, value, actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return set, nil
}

// AddForm returns the form choosing metadata types to attach to documents.
func (m *MetadataService) AddForm(ctx context.Context, documentIDs []string) (*forms.DocumentMetadataAddForm, error) {
	docs, err := m.documents(ctx, documentIDs)
	if err != nil {
		return nil, err
	}

	return forms.NewDocumentMetadataAddForm(ctx, m.store, docs[0].DocumentType, nil)
}

// Add attaches the chosen metadata types to every document missing them.
// New values start from the default of the metadata type.
func (m *MetadataService) Add(ctx context.Context, documentIDs []string, data url.Values, actor model.Actor) (*forms.DocumentMetadataAddForm, error) {
	docs, err := m.documents(ctx, documentIDs)
	if err != nil {
		return nil, err
	}

	f, err := forms.NewDocumentMetadataAddForm(ctx, m.store, docs[0].DocumentType, nil)
	if err != nil {
		return nil, err
	}

	f.Bind(data)
	if !f.IsValid(ctx) {
		return f, forms.ErrInvalidForm
	}

	metadataTypes := f.MetadataTypes()
	defaults := make(map[string]string, len(metadataTypes))
	for _, metadataType := range metadataTypes {
		if metadataType.Default == "" {
			continue
		}
		def, err := m.resolver.DefaultValue(ctx, metadataType)
		if err != nil {
			logrus.Warnf("default value of %v: %v", metadataType.Name, err)
			continue
		}
		defaults[metadataType.ID] = def
	}

	err = m.store.Transaction(ctx, func(tx store.Store) error {
		for _, doc := range docs {
			values, err := tx.ListDocumentMetadata(ctx, doc.ID)
			if err != nil {
				return err
			}

			attached := mapset.NewSet[string]()
			for _, value := range values {
				attached.Add(value.MetadataTypeID)
			}

			for _, metadataType := range metadataTypes {
				if attached.Contains(metadataType.ID) {
					continue
				}

				value := &model.DocumentMetadata{
					DocumentID:     doc.ID,
					MetadataTypeID: metadataType.ID,
					Value:          defaults[metadataType.ID],
				}

				logrus.Infof("adding metadata %v to document %v", metadataType.Name, doc.ID)
				if err := tx.SaveDocumentMetadata(ctx, value, actor); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return f, nil
}

// RemoveForms returns one remove form per metadata value of the document.
func (m *MetadataService) RemoveForms(ctx context.Context, documentID string) (*forms.DocumentMetadataRemoveFormSet, error) {
	_, initials, err := m.documentInitials(ctx, documentID)
	if err != nil {
		return nil, err
	}

	return forms.NewDocumentMetadataRemoveFormSet(ctx, m.resolver, initials)
}

// Remove deletes the metadata values selected for removal. Nothing is
// removed when one of them is required by the document type.
func (m *MetadataService) Remove(ctx context.Context, documentID string, data url.Values, actor model.Actor) (*forms.DocumentMetadataRemoveFormSet, error) {
	set, err := m.RemoveForms(ctx, documentID)
	if err != nil {
		return nil, err
	}

	set.Bind(data)
	if !set.IsValid(ctx) {
		return set, forms.ErrInvalidForm
	}

	selected := make([]*forms.DocumentMetadataRemoveForm, 0)
	for _, f := range set.Forms() {
		if !f.Remove() {
			continue
		}
		if f.Required {
			return set, fmt.Errorf("%w: %s", ErrRequiredMetadata, f.MetadataType.DisplayLabel())
		}
		selected = append(selected, f)
	}

	err = m.store.Transaction(ctx, func(tx store.Store) error {
		for _, f := range selected {
			logrus.Infof("removing metadata %v from document %v", f.MetadataType.Name, documentID)
			if err := tx.DeleteDocumentMetadata(ctx, f.Existing, actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return set, nil
}

// RelationshipForms returns one relationship form per metadata type, listed
// from the document type.
func (m *MetadataService) RelationshipForms(ctx context.Context, documentTypeID string, actor model.Actor) (*forms.RelationshipFormSet, error) {
	documentType, err := m.store.GetDocumentType(ctx, documentTypeID)
	if err != nil {
		return nil, err
	}

	metadataTypes, err := m.store.ListMetadataTypes(ctx)
	if err != nil {
		return nil, err
	}

	initials := make([]forms.RelationshipInitial, 0, len(metadataTypes))
	for _, metadataType := range metadataTypes {
		initials = append(initials, forms.RelationshipInitial{
			DocumentType: documentType,
			MetadataType: metadataType,
			MainModel:    forms.MainModelDocumentType,
		})
	}

	return forms.NewRelationshipFormSet(ctx, m.store, initials, actor)
}

// MetadataTypeRelationshipForms returns one relationship form per document
// type, listed from the metadata type.
func (m *MetadataService) MetadataTypeRelationshipForms(ctx context.Context, metadataTypeID string, actor model.Actor) (*forms.RelationshipFormSet, error) {
	metadataType, err := m.store.GetMetadataType(ctx, metadataTypeID)
	if err != nil {
		return nil, err
	}

	documentTypes, err := m.store.ListDocumentTypes(ctx)
	if err != nil {
		return nil, err
	}

	initials := make([]forms.RelationshipInitial, 0, len(documentTypes))
	for _, documentType := range documentTypes {
		initials = append(initials, forms.RelationshipInitial{
			DocumentType: documentType,
			MetadataType: metadataType,
			MainModel:    forms.MainModelMetadataType,
		})
	}

	return forms.NewRelationshipFormSet(ctx, m.store, initials, actor)
}

// UpdateRelationships binds data to set and saves it when valid.
func (m *MetadataService) UpdateRelationships(ctx context.Context, set *forms.RelationshipFormSet, data url.Values) error {
	set.Bind(data)
	if !set.IsValid(ctx) {
		return forms.ErrInvalidForm
	}

	return set.Save(ctx)
}

// MetadataTypeForm returns the form editing the metadata type id, or
// creating one when id is empty.
func (m *MetadataService) MetadataTypeForm(ctx context.Context, id string) (*forms.MetadataTypeForm, error) {
	var instance *model.MetadataType
	if id != "" {
		var err error
		instance, err = m.store.GetMetadataType(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	return forms.NewMetadataTypeForm(m.store, m.resolver.Evaluator(), m.resolver.Pipeline(), m.registry, instance), nil
}

// SaveMetadataType creates or updates a metadata type from submitted data.
func (m *MetadataService) SaveMetadataType(ctx context.Context, id string, data url.Values, actor model.Actor) (*model.MetadataType, *forms.MetadataTypeForm, error) {
	f, err := m.MetadataTypeForm(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	f.Bind(data)
	if !f.IsValid(ctx) {
		return nil, f, forms.ErrInvalidForm
	}

	metadataType, err := f.Save(ctx, actor)
	if err != nil {
		return nil, f, err
	}

	return metadataType, f, nil
}

// RegisterLookups makes the stored document and metadata types available to
// lookup templates.
func (m *MetadataService) RegisterLookups(registry *lookup.Registry) {
	registry.Register("document_types", "Document type labels", func(ctx context.Context) (any, error) {
		documentTypes, err := m.store.ListDocumentTypes(ctx)
		if err != nil {
			return nil, err
		}

		labels := make([]string, 0, len(documentTypes))
		for _, documentType := range documentTypes {
			labels = append(labels, documentType.Label)
		}
		return lookup.JoinChoices(labels), nil
	})

	registry.Register("metadata_types", "Metadata type names", func(ctx context.Context) (any, error) {
		metadataTypes, err := m.store.ListMetadataTypes(ctx)
		if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(metadataTypes))
		for _, metadataType := range metadataTypes {
			names = append(names, metadataType.Name)
		}
		return lookup.JoinChoices(names), nil
	})
}

func (m *MetadataService) documentInitials(ctx context.Context, documentID string) (*model.Document, []forms.DocumentMetadataInitial, error) {
	doc, err := m.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}

	values, err := m.store.ListDocumentMetadata(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}

	initials := make([]forms.DocumentMetadataInitial, 0, len(values))
	for _, value := range values {
		initials = append(initials, forms.DocumentMetadataInitial{
			DocumentType: doc.DocumentType,
			MetadataType: value.MetadataType,
			Existing:     value,
		})
	}

	return doc, initials, nil
}

// documents loads the documents of a bulk operation, which must share one
// document type.
func (m *MetadataService) documents(ctx context.Context, documentIDs []string) ([]*model.Document, error) {
	if len(documentIDs) == 0 {
		return nil, ErrNoDocuments
	}

	docs, err := m.store.ListDocumentsFromIDs(ctx, documentIDs)
	if err != nil {
		return nil, err
	}
	if len(docs) != mapset.NewSet(documentIDs...).Cardinality() {
		return nil, fmt.Errorf("%w: found %d of %d documents", store.ErrNotFound, len(docs), len(documentIDs))
	}

	for _, doc := range docs[1:] {
		if doc.DocumentTypeID != docs[0].DocumentTypeID {
			return nil, ErrMixedDocumentTypes
		}
	}

	return docs, nil
}
