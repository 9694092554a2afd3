// Package storage selects the document store backend from config.
package storage

import (
	"fmt"
	"path/filepath"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/barsi/internal/common"
	"github.com/ternarybob/barsi/internal/interfaces"
	"github.com/ternarybob/barsi/internal/storage/badger"
	"github.com/ternarybob/barsi/internal/storage/file"
)

// NewDocumentStore creates the document store named by storage.backend.
func NewDocumentStore(logger arbor.ILogger, config *common.StorageConfig) (interfaces.DocumentStore, error) {
	switch config.Backend {
	case "", "file":
		return file.NewDocumentStore(config.Dir, logger)
	case "badger":
		badgerConfig := config.Badger
		if badgerConfig.Path == "" && !badgerConfig.InMemory {
			badgerConfig.Path = filepath.Join(config.Dir, "badger")
		}
		db, err := badger.NewBadgerDB(logger, &badgerConfig)
		if err != nil {
			return nil, err
		}
		return badger.NewDocumentStorage(db, logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (expected 'file' or 'badger')", config.Backend)
	}
}
