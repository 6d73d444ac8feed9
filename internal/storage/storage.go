// Package storage abstracts the blob backend behind a narrow interface so
// the upload gate and handlers can be tested against an in-memory fake.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned when no blob exists under the requested key.
var ErrNotFound = errors.New("blob not found")

// BlobStore writes and reads opaque blobs by key.
type BlobStore interface {
	Put(key string, data []byte) error
	Get(key string) ([]byte, error)
}

// DiskStore keeps blobs as files under a root directory. Keys may contain
// slashes; path traversal outside the root is rejected.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{root: root}, nil
}

func (d *DiskStore) path(key string) (string, error) {
	clean := filepath.Join(d.root, filepath.FromSlash(key))
	if !strings.HasPrefix(clean, filepath.Clean(d.root)+string(os.PathSeparator)) {
		return "", errors.New("invalid blob key")
	}
	return clean, nil
}

func (d *DiskStore) Put(key string, data []byte) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

func (d *DiskStore) Get(key string) ([]byte, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// MemoryStore is the in-memory BlobStore used in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Put(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.blobs[key] = cp
	return nil
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}
