package model

import (
	"time"

	"gorm.io/gorm"
)

type Document struct {
	ID             string        `gorm:"primaryKey;uuid;not null"`
	DocumentTypeID string        `gorm:"uuid;not null;index"`
	DocumentType   *DocumentType `gorm:"foreignKey:DocumentTypeID;references:ID"`
	Label          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	assignID(&d.ID)
	return nil
}
