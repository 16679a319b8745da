// Package codebook implements the query service over the stored codebooks,
// the variable search index, the cross-year catalog, and on-demand variable
// categorization.
package codebook

import (
	"context"
	"log/slog"

	"github.com/hrsdata/codebook-backend/internal/adapter/postgres/codebookstore"
	"github.com/hrsdata/codebook-backend/internal/catalog"
	"github.com/hrsdata/codebook-backend/internal/domain"
	"github.com/hrsdata/codebook-backend/internal/wave"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type codebookStore interface {
	Get(ctx context.Context, source domain.Source, year int) (*domain.Codebook, error)
	List(ctx context.Context, source *domain.Source, years []int) ([]*domain.Codebook, error)
	ListYears(ctx context.Context, source domain.Source) ([]int, error)
	SearchIndex(ctx context.Context, filter codebookstore.IndexFilter) ([]codebookstore.IndexRow, error)
}

type catalogStore interface {
	GetMapping(ctx context.Context, baseName string) (*catalog.TemporalMapping, error)
	ListBaseNames(ctx context.Context, limit, offset int) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// Service answers read queries for the HTTP layer.
type Service struct {
	codebooks codebookStore
	catalog   catalogStore
	registry  *wave.Registry
	log       *slog.Logger
}

// New creates the query service.
func New(codebooks codebookStore, cat catalogStore, registry *wave.Registry, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		codebooks: codebooks,
		catalog:   cat,
		registry:  registry,
		log:       log,
	}
}
