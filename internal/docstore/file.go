package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gearbook/internal/registry"
)

// FileStore persists the document as a single JSON file on disk.
//
// Writes go to a temporary file in the same directory, are fsynced, and
// then atomically renamed over the target, so a reader never observes a
// partially written document. A missing file loads as an empty document.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed document store at path.
// The parent directory is created if it does not exist.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("docstore: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create directory: %w", ErrUnavailable, err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the filesystem path of the document file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the document from disk.
//
// A missing file is not an error: the catalogue starts empty. Bytes
// that do not parse yield ErrCorrupt; any other read failure yields
// ErrUnavailable.
func (s *FileStore) Load(ctx context.Context) (*registry.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &registry.Document{
				Devices: []registry.Device{},
				Users:   []registry.User{},
			}, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %w", ErrUnavailable, s.path, err)
	}

	var doc registry.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrCorrupt, s.path, err)
	}
	if doc.Devices == nil {
		doc.Devices = []registry.Device{}
	}
	if doc.Users == nil {
		doc.Users = []registry.User{}
	}

	return &doc, nil
}

// Save writes the full document to disk, replacing the previous
// artifact atomically.
func (s *FileStore) Save(ctx context.Context, doc *registry.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("docstore: encoding document: %w", err)
	}
	data = append(data, '\n')

	// Temp file in the target directory so the rename stays on one filesystem.
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".document-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", ErrUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: writing %s: %w", ErrUnavailable, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: syncing %s: %w", ErrUnavailable, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing %s: %w", ErrUnavailable, tmpName, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replacing %s: %w", ErrUnavailable, s.path, err)
	}

	return nil
}
