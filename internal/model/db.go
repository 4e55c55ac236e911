package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Migrate creates or updates every table used by the metadata module.
func Migrate(db *gorm.DB) error {
	models := []any{
		&DocumentType{},
		&MetadataType{},
		&DocumentTypeMetadataType{},
		&Document{},
		&DocumentMetadata{},
		&Event{},
	}

	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return err
		}
	}

	return nil
}

// assignID fills an empty primary key with a fresh uuid.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.New().String()
	}
}
