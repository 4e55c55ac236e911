package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Audit verbs written for actor attributed mutations.
const (
	VerbRelationshipCreated     = "metadata.relationship.created"
	VerbRelationshipEdited      = "metadata.relationship.edited"
	VerbRelationshipDeleted     = "metadata.relationship.deleted"
	VerbDocumentMetadataAdded   = "metadata.document.added"
	VerbDocumentMetadataEdited  = "metadata.document.edited"
	VerbDocumentMetadataRemoved = "metadata.document.removed"
	VerbMetadataTypeCreated     = "metadata.type.created"
	VerbMetadataTypeEdited      = "metadata.type.edited"
)

// Actor is the user a mutation is attributed to.
type Actor struct {
	ID   string
	Name string
}

// Event is an audit trail entry.
type Event struct {
	ID         string `gorm:"primaryKey;uuid;not null"`
	ActorID    string `gorm:"index"`
	ActorName  string
	Verb       string `gorm:"not null;index"`
	TargetType string `gorm:"not null"`
	TargetID   string `gorm:"uuid;not null;index"`
	CreatedAt  time.Time
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	assignID(&e.ID)
	return nil
}

func (e *Event) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

// NewEvent builds an audit event for the target table row.
func NewEvent(actor Actor, verb, targetType, targetID string) *Event {
	return &Event{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Verb:       verb,
		TargetType: targetType,
		TargetID:   targetID,
	}
}
