// Package pipeline drives batch ingest: discover codebook documents on
// disk, parse them in parallel, fold the cross-year catalog, and persist
// everything through the store layer. Per-document failures are skipped and
// logged; only infrastructure failures abort a run.
package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hrsdata/codebook-backend/internal/catalog"
	"github.com/hrsdata/codebook-backend/internal/config"
	"github.com/hrsdata/codebook-backend/internal/domain"
	"github.com/hrsdata/codebook-backend/internal/parse"
	"github.com/hrsdata/codebook-backend/internal/wave"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type codebookWriter interface {
	Upsert(ctx context.Context, cb *domain.Codebook) error
	ReplaceSections(ctx context.Context, cb *domain.Codebook) error
	ReplaceIndex(ctx context.Context, cb *domain.Codebook) error
}

type catalogWriter interface {
	Replace(ctx context.Context, c *catalog.Catalog) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Options controls one pipeline run.
type Options struct {
	// Sources to ingest; empty means all three document families.
	Sources []domain.Source

	// Years restricts ingest to these years; empty means all configured.
	Years []int

	// DryRun parses and reports but writes nothing.
	DryRun bool

	// BuildCatalog rebuilds and stores the cross-year catalog after parsing.
	BuildCatalog bool
}

// FileError records one skipped document.
type FileError struct {
	Batch Batch
	Err   error
}

// Result summarizes a pipeline run.
type Result struct {
	Discovered int
	Parsed     int
	Skipped    int
	Stored     int
	Variables  int
	CatalogLen int
	Duration   time.Duration

	Codebooks []*domain.Codebook
	Errors    []FileError
}

// Pipeline wires discovery, parsing, and persistence together.
type Pipeline struct {
	cfg       config.SourcesConfig
	registry  *wave.Registry
	parser    *parse.Dispatcher
	codebooks codebookWriter
	catalog   catalogWriter
	tx        txManager
	log       *slog.Logger
}

// New creates a pipeline. The store collaborators may be nil only for
// dry runs.
func New(cfg config.SourcesConfig, registry *wave.Registry, codebooks codebookWriter, cat catalogWriter, tx txManager, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		cfg:       cfg,
		registry:  registry,
		parser:    parse.NewDispatcher(registry),
		codebooks: codebooks,
		catalog:   cat,
		tx:        tx,
		log:       log,
	}
}

// Run executes discovery, parse, and store phases and returns the summary.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	sources := opts.Sources
	if len(sources) == 0 {
		sources = []domain.Source{domain.SourceCore, domain.SourceExit, domain.SourcePostExit}
	}

	batches, err := Discover(p.cfg, sources)
	if err != nil {
		return nil, err
	}
	batches = filterYears(batches, opts.Years)

	res := &Result{Discovered: len(batches)}
	p.log.Info("discovery complete", "batches", len(batches), "sources", len(sources))

	if err := p.parsePhase(ctx, batches, res); err != nil {
		return nil, err
	}

	for _, cb := range res.Codebooks {
		res.Variables += cb.TotalVariables
	}
	p.log.Info("parse complete",
		"parsed", res.Parsed,
		"skipped", res.Skipped,
		"variables", res.Variables)

	if !opts.DryRun {
		if err := p.storePhase(ctx, res); err != nil {
			return nil, err
		}
	}

	if opts.BuildCatalog {
		if err := p.catalogPhase(ctx, opts.DryRun, res); err != nil {
			return nil, err
		}
	}

	res.Duration = time.Since(start)
	return res, nil
}

// parsePhase fans the batches out over a bounded worker group. Each batch
// is independent (legacy years arrive pre-merged as one batch), so the only
// shared state is the guarded result slice.
func (p *Pipeline) parsePhase(ctx context.Context, batches []Batch, res *Result) error {
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.ParallelFiles)

	for _, b := range batches {
		b := b // per-iteration copy; required under the go 1.21 directive
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			cb, err := p.parseBatch(b)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Skip-and-log: a bad document must not sink the batch.
				p.log.Warn("skipping document", "batch", b.Key(), "error", err)
				res.Skipped++
				res.Errors = append(res.Errors, FileError{Batch: b, Err: err})
				return nil
			}
			res.Parsed++
			res.Codebooks = append(res.Codebooks, cb)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// Worker completion order is nondeterministic; restore (source, year).
	sort.Slice(res.Codebooks, func(i, j int) bool {
		a, b := res.Codebooks[i], res.Codebooks[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Year < b.Year
	})
	return nil
}

func (p *Pipeline) parseBatch(b Batch) (*domain.Codebook, error) {
	if legacyYear(b.Source, b.Year) {
		return p.parser.ParseYearFiles(b.Paths, b.Source, b.Year)
	}
	return p.parser.ParseFile(b.Paths[0], b.Source, b.Year)
}

// storePhase upserts each codebook with its section and index rows in one
// transaction per codebook.
func (p *Pipeline) storePhase(ctx context.Context, res *Result) error {
	for _, cb := range res.Codebooks {
		err := p.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := p.codebooks.Upsert(txCtx, cb); err != nil {
				return err
			}
			if err := p.codebooks.ReplaceSections(txCtx, cb); err != nil {
				return err
			}
			return p.codebooks.ReplaceIndex(txCtx, cb)
		})
		if err != nil {
			return err
		}
		res.Stored++
	}

	p.log.Info("store complete", "codebooks", res.Stored)
	return nil
}

// catalogPhase rebuilds the cross-year catalog from this run's codebooks.
func (p *Pipeline) catalogPhase(ctx context.Context, dryRun bool, res *Result) error {
	c := catalog.BuildCatalog(p.registry, res.Codebooks)
	res.CatalogLen = len(c.BaseVariables)

	if dryRun {
		p.log.Info("catalog built (dry run)", "base_names", res.CatalogLen)
		return nil
	}

	err := p.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return p.catalog.Replace(txCtx, c)
	})
	if err != nil {
		return err
	}

	p.log.Info("catalog stored", "base_names", res.CatalogLen)
	return nil
}

func filterYears(batches []Batch, years []int) []Batch {
	if len(years) == 0 {
		return batches
	}
	keep := make(map[int]bool, len(years))
	for _, y := range years {
		keep[y] = true
	}
	out := batches[:0]
	for _, b := range batches {
		if keep[b.Year] {
			out = append(out, b)
		}
	}
	return out
}
