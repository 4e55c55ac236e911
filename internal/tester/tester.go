package tester

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/emrgen/metadata/internal/model"
	"github.com/emrgen/metadata/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Actor is the user test mutations are attributed to.
var Actor = model.Actor{ID: "11111111-1111-1111-1111-111111111111", Name: "tester"}

// TestDB opens a migrated sqlite database that lives as long as the test.
func TestDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "metadata.db")
	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := model.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// TestStore returns a GormStore over a fresh TestDB.
func TestStore(t testing.TB, opts ...store.Option) *store.GormStore {
	t.Helper()
	return store.NewGormStore(TestDB(t), opts...)
}

func DocumentType(t testing.TB, s store.Store, label string) *model.DocumentType {
	t.Helper()

	documentType := &model.DocumentType{Label: label}
	if err := s.CreateDocumentType(context.TODO(), documentType); err != nil {
		t.Fatalf("create document type: %v", err)
	}
	return documentType
}

func MetadataType(t testing.TB, s store.Store, metadataType *model.MetadataType) *model.MetadataType {
	t.Helper()

	if metadataType.Label == "" {
		metadataType.Label = metadataType.Name
	}
	if err := s.SaveMetadataType(context.TODO(), metadataType, Actor); err != nil {
		t.Fatalf("create metadata type: %v", err)
	}
	return metadataType
}

// Attach relates a metadata type to a document type.
func Attach(t testing.TB, s store.Store, documentType *model.DocumentType, metadataType *model.MetadataType, required bool) *model.DocumentTypeMetadataType {
	t.Helper()

	relationship := &model.DocumentTypeMetadataType{
		DocumentTypeID: documentType.ID,
		MetadataTypeID: metadataType.ID,
		Required:       required,
	}
	if err := s.SaveRelationship(context.TODO(), relationship, Actor); err != nil {
		t.Fatalf("attach metadata type: %v", err)
	}
	return relationship
}

func Document(t testing.TB, s store.Store, documentType *model.DocumentType, label string) *model.Document {
	t.Helper()

	doc := &model.Document{DocumentTypeID: documentType.ID, Label: label}
	if err := s.CreateDocument(context.TODO(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

func DocumentMetadata(t testing.TB, s store.Store, doc *model.Document, metadataType *model.MetadataType, value string) *model.DocumentMetadata {
	t.Helper()

	metadata := &model.DocumentMetadata{DocumentID: doc.ID, MetadataTypeID: metadataType.ID, Value: value}
	if err := s.SaveDocumentMetadata(context.TODO(), metadata, Actor); err != nil {
		t.Fatalf("create document metadata: %v", err)
	}
	metadata.MetadataType = metadataType
	return metadata
}
