package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/emrgen/metadata/internal/config"
	"github.com/emrgen/metadata/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuntime(t *testing.T) {
	ctx := context.TODO()

	cfg := config.NewDefaultConfig()
	cfg.DB.DSN = filepath.Join(t.TempDir(), "metadata.db")
	cfg.Lookup.Values = map[string]string{"departments": "sales, finance"}

	r, err := NewRuntime(ctx, cfg)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.Store.Migrate())
	assert.Nil(t, r.Cache)

	names := make([]string, 0)
	for _, entry := range r.Registry.Entries() {
		names = append(names, entry.Name)
	}
	assert.Equal(t, []string{"departments", "document_types", "metadata_types"}, names)

	metadataType := &model.MetadataType{Name: "department", Label: "Department", Lookup: "{{ departments }}"}
	require.NoError(t, r.Store.SaveMetadataType(ctx, metadataType, model.Actor{ID: "cli"}))

	choices, err := r.Resolver.LookupValues(ctx, metadataType)
	require.NoError(t, err)
	assert.Equal(t, []string{"sales", "finance"}, choices)

	assert.Error(t, r.Work(), "the worker needs the redis cache")
}
