package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/barsi/internal/interfaces"
)

// storedDocument is the badgerhold record for one named JSON document.
type storedDocument struct {
	Name      string
	Data      []byte
	UpdatedAt time.Time
}

// DocumentStorage implements interfaces.DocumentStore on Badger
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

var _ interfaces.DocumentStore = (*DocumentStorage)(nil)

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) *DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

// Load returns the stored bytes for name.
func (s *DocumentStorage) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc storedDocument
	err := s.db.Store().Get(name, &doc)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, interfaces.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", name, err)
	}
	return doc.Data, nil
}

// Save replaces the document in a single transaction.
func (s *DocumentStorage) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("document name is required")
	}

	doc := storedDocument{
		Name:      name,
		Data:      data,
		UpdatedAt: time.Now(),
	}
	if err := s.db.Store().Upsert(name, &doc); err != nil {
		return fmt.Errorf("failed to save document %s: %w", name, err)
	}

	s.logger.Trace().Str("document", name).Int("bytes", len(data)).Msg("Document saved")
	return nil
}

// Close closes the database.
func (s *DocumentStorage) Close() error {
	return s.db.Close()
}
