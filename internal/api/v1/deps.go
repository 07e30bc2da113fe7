package v1

import (
	"context"
	"errors"

	"github.com/vmunix/reelarr/internal/catalog"
	"github.com/vmunix/reelarr/internal/importer"
)

// Importer defines the interface for running import batches.
type Importer interface {
	Run(ctx context.Context, req importer.Request) (*importer.BatchResult, error)
}

// CatalogStore defines the catalog operations the API needs.
type CatalogStore interface {
	Get(id int64) (*catalog.Record, error)
	List(f catalog.Filter) ([]*catalog.Record, int, error)
	Delete(id int64) error
}

// HistoryStore defines the history operations the API needs.
type HistoryStore interface {
	List(f catalog.HistoryFilter) ([]*catalog.HistoryEntry, error)
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Catalog CatalogStore
	History HistoryStore

	// Optional dependencies (nil if not configured)
	Importer Importer
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Catalog == nil {
		return errors.New("catalog store is required")
	}
	if d.History == nil {
		return errors.New("history store is required")
	}
	return nil
}
