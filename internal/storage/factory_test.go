package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/storage/badger"
	"github.com/ternarybob/barsi/internal/storage/file"
)

func TestNewDocumentStore(t *testing.T) {
	logger := arbor.NewLogger()

	s, err := NewDocumentStore(logger, &common.StorageConfig{Backend: "file", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &file.DocumentStore{}, s)

	s, err = NewDocumentStore(logger, &common.StorageConfig{Backend: "badger", Badger: common.BadgerConfig{InMemory: true}})
	require.NoError(t, err)
	assert.IsType(t, &badger.DocumentStorage{}, s)
	require.NoError(t, s.Save(context.Background(), "catalog", []byte(`{}`)))
	require.NoError(t, s.Close())

	_, err = NewDocumentStore(logger, &common.StorageConfig{Backend: "sqlite"})
	assert.Error(t, err)
}
