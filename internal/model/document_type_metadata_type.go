package model

import (
	"time"

	"gorm.io/gorm"
)

// DocumentTypeMetadataType records that a metadata type applies to a
// document type. There is at most one row per pair.
type DocumentTypeMetadataType struct {
	ID             string        `gorm:"primaryKey;uuid;not null"`
	DocumentTypeID string        `gorm:"uuid;not null;uniqueIndex:idx_document_type_metadata_type"`
	MetadataTypeID string        `gorm:"uuid;not null;uniqueIndex:idx_document_type_metadata_type"`
	Required       bool          `gorm:"not null;default:false"`
	DocumentType   *DocumentType `gorm:"foreignKey:DocumentTypeID;references:ID"`
	MetadataType   *MetadataType `gorm:"foreignKey:MetadataTypeID;references:ID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (DocumentTypeMetadataType) TableName() string {
	return "document_type_metadata_types"
}

func (r *DocumentTypeMetadataType) BeforeCreate(tx *gorm.DB) error {
	assignID(&r.ID)
	return nil
}
