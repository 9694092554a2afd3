// Package file stores named JSON documents as files in a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/barsi/internal/interfaces"
)

var validName = regexp.MustCompile(`^[a-z0-9_\-]+$`)

// legacyNames maps document names to the file names used by earlier releases.
var legacyNames = map[string]string{
	interfaces.DocumentCatalog: "stock_database.json",
}

// DocumentStore keeps each document in <dir>/<name>.json.
type DocumentStore struct {
	dir    string
	logger arbor.ILogger
	mu     sync.Mutex
}

var _ interfaces.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore creates the directory if needed.
func NewDocumentStore(dir string, logger arbor.ILogger) (*DocumentStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &DocumentStore{dir: dir, logger: logger}, nil
}

// Path returns the file that holds the named document.
func (s *DocumentStore) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads the document, falling back to its legacy file name.
func (s *DocumentStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("invalid document name %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		legacy, ok := legacyNames[name]
		if !ok {
			return nil, interfaces.ErrDocumentNotFound
		}
		data, err = os.ReadFile(filepath.Join(s.dir, legacy))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, interfaces.ErrDocumentNotFound
		}
		if err == nil {
			s.logger.Info().Str("document", name).Str("file", legacy).Msg("Loaded document from legacy file")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", name, err)
	}
	return data, nil
}

// Save writes to a temp file in the same directory and renames it over the old one.
func (s *DocumentStore) Save(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid document name %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write document %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync document %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close document %s: %w", name, err)
	}
	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		return fmt.Errorf("failed to replace document %s: %w", name, err)
	}

	s.logger.Trace().Str("document", name).Int("bytes", len(data)).Msg("Document saved")
	return nil
}

// Close is a no-op for the file store.
func (s *DocumentStore) Close() error {
	return nil
}
