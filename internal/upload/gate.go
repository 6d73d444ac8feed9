// Package upload implements admission control for binary uploads: a
// per-file ceiling, a global cumulative ceiling, collision-resistant key
// generation, and the accounting write that backs the usage counter.
package upload

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"voidspace/backend/internal/apperr"
	"voidspace/backend/internal/repository"
	"voidspace/backend/internal/storage"
)

const (
	// MaxFileSize is the per-file ceiling.
	MaxFileSize = 10 << 20 // 10 MiB

	// GlobalStorageLimit is the cumulative ceiling across all uploads.
	GlobalStorageLimit = 5 << 30 // 5 GiB
)

// Gate admits or rejects blobs before storage.
type Gate struct {
	uploads *repository.UploadRepository
	blobs   storage.BlobStore
}

func NewGate(uploads *repository.UploadRepository, blobs storage.BlobStore) *Gate {
	return &Gate{uploads: uploads, blobs: blobs}
}

// Usage is the current state of the global ceiling.
type Usage struct {
	Used        int64
	Limit       int64
	PercentUsed int
}

// Formatted renders a size in GB with two decimals, matching the usage
// endpoint payload.
func Formatted(bytes int64) string {
	return fmt.Sprintf("%.2fGB", float64(bytes)/(1<<30))
}

// Admit checks both ceilings, writes the blob under a fresh key, and
// records the accounting row. The quota check recomputes usage by summation
// with no reservation, so two concurrent admissions can jointly overshoot;
// the ceiling is a soft limit.
func (g *Gate) Admit(ctx context.Context, uploaderID uint, filename string, data []byte) (string, error) {
	size := int64(len(data))

	if size > MaxFileSize {
		return "", fmt.Errorf("%w (max 10MB)", apperr.ErrTooLarge)
	}

	used, err := g.uploads.TotalUsage(ctx)
	if err != nil {
		return "", err
	}
	if used+size > GlobalStorageLimit {
		return "", fmt.Errorf("storage limit reached (%s / 5GB used): %w",
			Formatted(used), apperr.ErrQuotaExceeded)
	}

	key := newKey(filename)
	if err := g.blobs.Put(key, data); err != nil {
		return "", err
	}
	if err := g.uploads.Record(ctx, uploaderID, key, size); err != nil {
		return "", err
	}
	return key, nil
}

// Usage reports current global usage against the ceiling.
func (g *Gate) Usage(ctx context.Context) (Usage, error) {
	used, err := g.uploads.TotalUsage(ctx)
	if err != nil {
		return Usage{}, err
	}
	return Usage{
		Used:        used,
		Limit:       GlobalStorageLimit,
		PercentUsed: int(used * 100 / GlobalStorageLimit),
	}, nil
}

// newKey builds a collision-resistant storage key: timestamp, random
// suffix, original extension.
func newKey(filename string) string {
	suffix := make([]byte, 6)
	_, _ = rand.Read(suffix)

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		ext = "bin"
	}

	return fmt.Sprintf("uploads/%d-%s.%s", time.Now().UnixMilli(), hex.EncodeToString(suffix), ext)
}
