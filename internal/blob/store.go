package blob

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors for blob operations.
var (
	// ErrNotFound is returned when the key does not exist.
	ErrNotFound = errors.New("blob: not found")

	// ErrExists is returned when writing to a key that already exists.
	// Photos are write-once; a key is never overwritten.
	ErrExists = errors.New("blob: already exists")

	// ErrInvalidKey is returned when a key is empty or contains path
	// separators or traversal sequences.
	ErrInvalidKey = errors.New("blob: invalid key")
)

// Info describes a stored blob.
type Info struct {
	Key         string
	Size        int64
	ContentType string
}

// Store is the photo blob backend. Keys are flat, generated names;
// writes are create-only and reads are streams.
type Store interface {
	// Put stores the blob under key. Fails with ErrExists if the key is
	// already taken.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)

	// Open returns the blob's info and a reader over its content.
	// The caller must close the reader.
	Open(ctx context.Context, key string) (Info, io.ReadCloser, error)

	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// NewKey derives a fresh stored key for a device photo. The client's
// filename contributes only its extension; the rest is the device
// identifier plus a random component, so uploads can neither collide
// nor traverse.
func NewKey(identifier, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalFilename)))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		ext = ""
	}
	return identifier + "-" + uuid.New().String() + ext
}

// validateKey rejects keys that could escape the store's namespace.
func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if strings.Contains(key, "..") || strings.ContainsAny(key, "/\\") {
		return ErrInvalidKey
	}
	return nil
}
