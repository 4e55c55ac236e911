package model

import (
	"time"

	"gorm.io/gorm"
)

// DocumentMetadata is the value of one metadata type on one document.
type DocumentMetadata struct {
	ID             string        `gorm:"primaryKey;uuid;not null"`
	DocumentID     string        `gorm:"uuid;not null;uniqueIndex:idx_document_metadata_type"`
	MetadataTypeID string        `gorm:"uuid;not null;uniqueIndex:idx_document_metadata_type"`
	MetadataType   *MetadataType `gorm:"foreignKey:MetadataTypeID;references:ID;constraint:OnDelete:CASCADE"`
	Value          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (DocumentMetadata) TableName() string {
	return "document_metadata"
}

func (d *DocumentMetadata) BeforeCreate(tx *gorm.DB) error {
	assignID(&d.ID)
	return nil
}
