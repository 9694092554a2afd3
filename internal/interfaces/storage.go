package interfaces

import (
	"context"
	"errors"
)

// ErrDocumentNotFound is returned when a named document has never been saved.
var ErrDocumentNotFound = errors.New("document not found")

// Document names used by the application.
const (
	DocumentCatalog   = "catalog"
	DocumentWatchlist = "watchlist"
	DocumentPortfolio = "portfolio"
)

// DocumentStore persists whole JSON documents by name.
// Save replaces the previous document atomically.
type DocumentStore interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Close() error
}
