// Package rest exposes the query surface over HTTP: codebook lookup,
// variable index search, temporal catalog lookup, and categorization.
package rest

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/hrsdata/codebook-backend/internal/adapter/postgres/codebookstore"
	"github.com/hrsdata/codebook-backend/internal/catalog"
	"github.com/hrsdata/codebook-backend/internal/categorize"
	"github.com/hrsdata/codebook-backend/internal/config"
	"github.com/hrsdata/codebook-backend/internal/domain"
	svc "github.com/hrsdata/codebook-backend/internal/service/codebook"
)

// queryService is the slice of the codebook service the transport consumes.
type queryService interface {
	GetCodebook(ctx context.Context, source domain.Source, year int) (*domain.Codebook, error)
	ListYears(ctx context.Context, source domain.Source) ([]int, error)
	SearchVariables(ctx context.Context, filter codebookstore.IndexFilter) ([]codebookstore.IndexRow, error)
	TemporalLookup(ctx context.Context, name string) (*catalog.TemporalMapping, error)
	ListBaseNames(ctx context.Context, limit, offset int) ([]string, int, error)
	Categorize(ctx context.Context, filter svc.CategorizationFilter) (*categorize.Categorization, error)
}

// API registers the HTTP routes against a fiber router.
type API struct {
	svc queryService
	log *slog.Logger
}

// NewAPI creates the route set.
func NewAPI(service queryService, log *slog.Logger) *API {
	if log == nil {
		log = slog.Default()
	}
	return &API{svc: service, log: log}
}

// NewServer builds the fiber application with all routes registered.
func NewServer(cfg config.ServerConfig, service queryService, log *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	})

	NewAPI(service, log).Register(app)
	return app
}

// Register mounts all routes.
func (a *API) Register(router fiber.Router) {
	router.Get("/health", a.health)

	v1 := router.Group("/api/v1")
	v1.Get("/codebooks/:source/years", a.listYears)
	v1.Get("/codebooks/:source/:year", a.getCodebook)
	v1.Get("/variables", a.searchVariables)
	v1.Get("/catalog/variables/:name", a.temporalLookup)
	v1.Get("/catalog/base-names", a.listBaseNames)

	cat := v1.Group("/categorization")
	cat.Get("", a.categorization(fullView))
	cat.Get("/sections", a.categorization(sectionsView))
	cat.Get("/levels", a.categorization(levelsView))
	cat.Get("/types", a.categorization(typesView))
	cat.Get("/base-names", a.categorization(baseNamesView))
	cat.Get("/special", a.categorization(specialView))
}
