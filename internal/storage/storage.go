package storage

import (
	"context"
	"errors"
	"time"

	"github.com/statico/quickrag/internal/dedup"
	"github.com/statico/quickrag/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// Store defines the interface for persisting and querying the index
type Store interface {
	// File record operations
	FileRecords(ctx context.Context) (map[string]time.Time, error)
	UpsertFileRecord(ctx context.Context, path string, modTime time.Time) error
	DeleteFileRecord(ctx context.Context, path string) error

	// Unit operations
	WriteUnits(ctx context.Context, units []types.IndexedUnit) error
	DeleteUnitsForPath(ctx context.Context, path string) error
	KnownFingerprints(ctx context.Context) (dedup.Set, error)

	// Status operations
	CountUnits(ctx context.Context) (int, error)
	CountFiles(ctx context.Context) (int, error)

	// Search operations
	Search(ctx context.Context, vector []float32, limit int) ([]SearchResult, error)

	// Database operations
	Close() error
}

// SearchResult represents a unit matched by vector similarity search
type SearchResult struct {
	Path      string
	StartLine int
	EndLine   int
	Content   string
	Score     float64
}
