package storage

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStore writes uploaded file contents to the local filesystem.
type BlobStore struct {
	rootDir string
}

// NewBlobStore creates a blob store rooted at the given directory
func NewBlobStore(rootDir string) (*BlobStore, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	return &BlobStore{rootDir: rootDir}, nil
}

// Save streams the reader to a new blob and returns its key and size. Keys
// fan out across 256 prefix directories so a single directory never holds
// every upload.
func (s *BlobStore) Save(r io.Reader, filename string) (string, int64, error) {
	key := newKey(filename)

	path := filepath.Join(s.rootDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create blob directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create blob: %w", err)
	}

	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to close blob: %w", err)
	}

	return key, size, nil
}

// Open returns the blob contents for a stored key.
func (s *BlobStore) Open(key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

// Remove deletes a blob. Removing an absent key is not an error.
func (s *BlobStore) Remove(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove blob: %w", err)
	}
	return nil
}

// resolve maps a key to its filesystem path, refusing keys that escape the
// root.
func (s *BlobStore) resolve(key string) (string, error) {
	path := filepath.Join(s.rootDir, filepath.FromSlash(key))
	if !strings.HasPrefix(path, filepath.Clean(s.rootDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid blob key: %s", key)
	}
	return path, nil
}

// newKey generates a storage key for an uploaded filename, keeping the
// original extension so downloads carry a usable suffix.
func newKey(filename string) string {
	id := uuid.NewString()
	sum := sha1.Sum([]byte(id))
	prefix := hex.EncodeToString(sum[:1])
	return prefix + "/" + id + strings.ToLower(filepath.Ext(filename))
}
