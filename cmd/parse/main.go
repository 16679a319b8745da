// Command parse runs the batch ingest: it walks the configured raw document
// directories, parses each year's codebook, and stores the results plus the
// rebuilt cross-year catalog.
//
// Flags:
//
//	--source         comma-separated document families
//	                 (hrs_core_codebook, hrs_exit_codebook, hrs_post_exit_codebook); empty = all
//	--year           comma-separated survey years or a range; empty = all configured
//	--dry-run        parse and report without writing to the database
//	--build-catalog  rebuild the cross-year catalog after parsing (default true)
//
// Exit codes: 0 = success, 1 = error, 2 = completed with per-file skips.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hrsdata/codebook-backend/internal/adapter/postgres"
	"github.com/hrsdata/codebook-backend/internal/adapter/postgres/catalogstore"
	"github.com/hrsdata/codebook-backend/internal/adapter/postgres/codebookstore"
	"github.com/hrsdata/codebook-backend/internal/app"
	"github.com/hrsdata/codebook-backend/internal/app/pipeline"
	"github.com/hrsdata/codebook-backend/internal/config"
	"github.com/hrsdata/codebook-backend/internal/domain"
	"github.com/hrsdata/codebook-backend/internal/wave"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	sourcesFlag := flag.String("source", "", "comma-separated document families (empty = all)")
	yearsFlag := flag.String("year", "", "survey years, comma list or range (empty = all configured)")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing")
	buildCatalog := flag.Bool("build-catalog", true, "rebuild the cross-year catalog after parsing")
	flag.Parse()
	if *configPath != "" {
		os.Setenv("CONFIG_PATH", *configPath)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	sources, err := parseSources(*sourcesFlag)
	if err != nil {
		logger.Error("bad --source", slog.String("error", err.Error()))
		os.Exit(1)
	}
	years, err := config.ParseYearRange(*yearsFlag)
	if err != nil {
		logger.Error("bad --year", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	registry := wave.NewRegistry()
	var p *pipeline.Pipeline
	if *dryRun {
		p = pipeline.New(cfg.Sources, registry, nil, nil, nil, logger)
	} else {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Error("connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		p = pipeline.New(cfg.Sources, registry,
			codebookstore.New(pool), catalogstore.New(pool),
			postgres.NewTxManager(pool), logger)
	}

	result, err := p.Run(ctx, pipeline.Options{
		Sources:      sources,
		Years:        years,
		DryRun:       *dryRun,
		BuildCatalog: *buildCatalog,
	})
	if err != nil {
		logger.Error("ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("ingest complete",
		slog.Int("discovered", result.Discovered),
		slog.Int("parsed", result.Parsed),
		slog.Int("skipped", result.Skipped),
		slog.Int("stored", result.Stored),
		slog.Int("variables", result.Variables),
		slog.Int("catalog_size", result.CatalogLen),
		slog.Duration("took", result.Duration),
	)
	if result.Skipped > 0 {
		os.Exit(2)
	}
}

func parseSources(raw string) ([]domain.Source, error) {
	if raw == "" {
		return nil, nil
	}
	var out []domain.Source
	for _, part := range strings.Split(raw, ",") {
		s := domain.Source(strings.TrimSpace(part))
		if !s.IsValid() {
			return nil, fmt.Errorf("unknown source %q: %w", part, domain.ErrValidation)
		}
		out = append(out, s)
	}
	return out, nil
}
