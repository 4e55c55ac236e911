package model

import (
	"time"

	"gorm.io/gorm"
)

// DocumentType classifies documents. Metadata types are attached to a
// document type, optionally as required.
type DocumentType struct {
	ID        string `gorm:"primaryKey;uuid;not null"`
	Label     string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (DocumentType) TableName() string {
	return "document_types"
}

func (d *DocumentType) BeforeCreate(tx *gorm.DB) error {
	assignID(&d.ID)
	return nil
}
