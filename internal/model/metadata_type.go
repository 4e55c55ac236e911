package model

import (
	"time"

	"gorm.io/gorm"
)

// MetadataType is the schema level definition of a metadata field.
// Default and Lookup hold templates, Validation and Parser name entries of
// the value pipeline.
type MetadataType struct {
	ID         string `gorm:"primaryKey;uuid;not null"`
	Name       string `gorm:"uniqueIndex;not null"`
	Label      string `gorm:"not null"`
	Default    string
	Lookup     string
	Validation string
	Parser     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (MetadataType) TableName() string {
	return "metadata_types"
}

func (m *MetadataType) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}

// DisplayLabel returns the label, falling back to the internal name.
func (m *MetadataType) DisplayLabel() string {
	if m.Label != "" {
		return m.Label
	}

	return m.Name
}
