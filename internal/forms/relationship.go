package forms

import (
	"context"
	"errors"
	"fmt"

	"github.com/emrgen/metadata/internal/form"
	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/store"
)

const (
	FieldLabel            = "label"
	FieldRelationshipType = "relationship_type"
)

// RelationshipPrefix is the prefix of relationship form sets.
const RelationshipPrefix = "relationship"

// RelationshipType is how a metadata type applies to a document type.
type RelationshipType int

const (
	RelationshipNone RelationshipType = iota
	RelationshipOptional
	RelationshipRequired
)

var relationshipTypeNames = [...]string{
	RelationshipNone:     "none",
	RelationshipOptional: "optional",
	RelationshipRequired: "required",
}

var relationshipTypeLabels = [...]string{
	RelationshipNone:     "None",
	RelationshipOptional: "Optional",
	RelationshipRequired: "Required",
}

func (t RelationshipType) String() string {
	if t < 0 || int(t) >= len(relationshipTypeNames) {
		return fmt.Sprintf("RelationshipType(%d)", int(t))
	}
	return relationshipTypeNames[t]
}

func (t RelationshipType) Label() string {
	if t < 0 || int(t) >= len(relationshipTypeLabels) {
		return t.String()
	}
	return relationshipTypeLabels[t]
}

func ParseRelationshipType(s string) (RelationshipType, error) {
	for i, name := range relationshipTypeNames {
		if name == s {
			return RelationshipType(i), nil
		}
	}
	return RelationshipNone, fmt.Errorf("unknown relationship type %q", s)
}

// RelationshipTypeOf returns the state a stored row represents; nil is none.
func RelationshipTypeOf(relationship *model.DocumentTypeMetadataType) RelationshipType {
	switch {
	case relationship == nil:
		return RelationshipNone
	case relationship.Required:
		return RelationshipRequired
	default:
		return RelationshipOptional
	}
}

func relationshipChoices() []form.Choice {
	choices := make([]form.Choice, 0, len(relationshipTypeNames))
	for i := range relationshipTypeNames {
		t := RelationshipType(i)
		choices = append(choices, form.Choice{Value: t.String(), Label: t.Label()})
	}
	return choices
}

// MainModel names the side a relationship form set is listed from.
type MainModel string

const (
	MainModelDocumentType MainModel = "document_type"
	MainModelMetadataType MainModel = "metadata_type"
)

type RelationshipInitial struct {
	DocumentType *model.DocumentType
	MetadataType *model.MetadataType
	MainModel    MainModel
}

// RelationshipForm sets how one metadata type applies to one document type.
type RelationshipForm struct {
	*form.Form
	DocumentType *model.DocumentType
	MetadataType *model.MetadataType
	// InitialType is the stored state when the form was built.
	InitialType RelationshipType

	store store.RelationshipStore
	actor model.Actor
}

func NewRelationshipForm(ctx context.Context, relationships store.RelationshipStore, initial RelationshipInitial, actor model.Actor, prefix string) (*RelationshipForm, error) {
	label := initial.MetadataType.DisplayLabel()
	if initial.MainModel == MainModelMetadataType {
		label = initial.DocumentType.Label
	}

	relationship, err := relationships.GetRelationship(ctx, initial.DocumentType.ID, initial.MetadataType.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	initialType := RelationshipTypeOf(relationship)

	f := form.New(prefix,
		&form.Field{Name: FieldLabel, Label: "Label", Widget: form.WidgetText, ReadOnly: true, Initial: label},
		&form.Field{
			Name:     FieldRelationshipType,
			Label:    "Relationship",
			Widget:   form.WidgetRadio,
			Required: true,
			Choices:  relationshipChoices(),
			Initial:  initialType.String(),
		},
	)

	return &RelationshipForm{
		Form:         f,
		DocumentType: initial.DocumentType,
		MetadataType: initial.MetadataType,
		InitialType:  initialType,
		store:        relationships,
		actor:        actor,
	}, nil
}

// RelationshipType returns the submitted state.
func (f *RelationshipForm) RelationshipType() (RelationshipType, error) {
	return ParseRelationshipType(f.CleanedString(FieldRelationshipType))
}

// Save applies the submitted state when it differs from the initial one.
func (f *RelationshipForm) Save(ctx context.Context) error {
	return f.save(ctx, f.store)
}

type relationshipSaver func(ctx context.Context, s store.RelationshipStore, f *RelationshipForm, existing *model.DocumentTypeMetadataType) error

var relationshipSavers = [...]relationshipSaver{
	RelationshipNone:     saveRelationshipNone,
	RelationshipOptional: saveRelationshipRequired(false),
	RelationshipRequired: saveRelationshipRequired(true),
}

func (f *RelationshipForm) save(ctx context.Context, s store.RelationshipStore) error {
	if f.Cleaned() == nil || len(f.Errors()) > 0 {
		return ErrInvalidForm
	}

	chosen, err := f.RelationshipType()
	if err != nil {
		return err
	}
	if chosen == f.InitialType {
		return nil
	}

	existing, err := s.GetRelationship(ctx, f.DocumentType.ID, f.MetadataType.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	return relationshipSavers[chosen](ctx, s, f, existing)
}

func saveRelationshipNone(ctx context.Context, s store.RelationshipStore, f *RelationshipForm, existing *model.DocumentTypeMetadataType) error {
	if existing == nil {
		return ErrRelationshipNotFound
	}

	err := s.DeleteRelationship(ctx, existing, f.actor)
	if errors.Is(err, store.ErrNotFound) {
		return ErrRelationshipNotFound
	}
	return err
}

func saveRelationshipRequired(required bool) relationshipSaver {
	return func(ctx context.Context, s store.RelationshipStore, f *RelationshipForm, existing *model.DocumentTypeMetadataType) error {
		if existing == nil {
			existing = &model.DocumentTypeMetadataType{
				DocumentTypeID: f.DocumentType.ID,
				MetadataTypeID: f.MetadataType.ID,
			}
		}
		existing.Required = required

		return s.SaveRelationship(ctx, existing, f.actor)
	}
}

// RelationshipFormSet is a batch of relationship forms attributed to one actor.
type RelationshipFormSet struct {
	*form.FormSet[*RelationshipForm]

	store store.Store
}

func NewRelationshipFormSet(ctx context.Context, s store.Store, initials []RelationshipInitial, actor model.Actor) (*RelationshipFormSet, error) {
	set, err := form.NewFormSet(RelationshipPrefix, len(initials), func(prefix string, i int) (*RelationshipForm, error) {
		return NewRelationshipForm(ctx, s, initials[i], actor, prefix)
	})
	if err != nil {
		return nil, err
	}

	return &RelationshipFormSet{FormSet: set, store: s}, nil
}

// Save saves every form in one transaction. The set must be bound and valid.
func (s *RelationshipFormSet) Save(ctx context.Context) error {
	if !s.IsValid(ctx) {
		return ErrInvalidForm
	}

	return s.store.Transaction(ctx, func(tx store.Store) error {
		for _, f := range s.Forms() {
			if err := f.save(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
}
