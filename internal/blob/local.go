package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
)

// LocalStore keeps photo blobs as files under a root directory.
//
// Writes stream to a temp file in the root and are atomically renamed
// into place, so a concurrent reader never sees a partial photo. Keys
// are flat filenames; validateKey guarantees they cannot leave the root.
type LocalStore struct {
	root string
}

// NewLocalStore creates a filesystem-backed photo store rooted at path,
// creating the directory if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("blob: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Root returns the store's root directory.
func (s *LocalStore) Root() string {
	return s.root
}

// Put stores the blob under key, failing if the key already exists.
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error) {
	if err := validateKey(key); err != nil {
		return Info{}, err
	}
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}

	dataPath := filepath.Join(s.root, key)
	if _, err := os.Stat(dataPath); err == nil {
		return Info{}, fmt.Errorf("%w: %s", ErrExists, key)
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*.tmp")
	if err != nil {
		return Info{}, fmt.Errorf("blob: creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Info{}, fmt.Errorf("blob: writing %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return Info{}, fmt.Errorf("blob: syncing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return Info{}, fmt.Errorf("blob: closing %s: %w", key, err)
	}

	if err := os.Rename(tmpName, dataPath); err != nil {
		os.Remove(tmpName)
		return Info{}, fmt.Errorf("blob: storing %s: %w", key, err)
	}

	return Info{Key: key, Size: size, ContentType: contentType}, nil
}

// Open returns the blob's info and content stream.
func (s *LocalStore) Open(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return Info{}, nil, err
	}
	if err := ctx.Err(); err != nil {
		return Info{}, nil, err
	}

	dataPath := filepath.Join(s.root, key)
	file, err := os.Open(dataPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Info{}, nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return Info{}, nil, fmt.Errorf("blob: opening %s: %w", key, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return Info{}, nil, fmt.Errorf("blob: stat %s: %w", key, err)
	}

	info := Info{
		Key:         key,
		Size:        stat.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(key)),
	}
	return info, file, nil
}

// Delete removes the blob. Deleting a missing key is not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.root, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("blob: deleting %s: %w", key, err)
	}
	return nil
}
