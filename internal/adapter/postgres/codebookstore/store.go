// Package codebookstore persists parsed codebooks: one jsonb document per
// (source, year), one row per section keyed (source, year, code, level), and
// flat variables_index rows for name/description search.
package codebookstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hrsdata/codebook-backend/internal/adapter/postgres"
	"github.com/hrsdata/codebook-backend/internal/domain"
)

// Store provides codebook persistence backed by PostgreSQL.
type Store struct {
	db postgres.Querier
}

// New creates a new codebook store.
func New(db postgres.Querier) *Store {
	return &Store{db: db}
}

const upsertCodebookSQL = `
INSERT INTO codebooks (id, source, year, release_type, wave, document,
                       total_variables, total_sections, parsed_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (source, year) DO UPDATE SET
  release_type    = EXCLUDED.release_type,
  wave            = EXCLUDED.wave,
  document        = EXCLUDED.document,
  total_variables = EXCLUDED.total_variables,
  total_sections  = EXCLUDED.total_sections,
  parsed_at       = EXCLUDED.parsed_at,
  updated_at      = EXCLUDED.updated_at`

const getCodebookSQL = `
SELECT document FROM codebooks WHERE source = $1 AND year = $2`

const listYearsSQL = `
SELECT year FROM codebooks WHERE source = $1 ORDER BY year`

const deleteSectionsSQL = `
DELETE FROM codebook_sections WHERE source = $1 AND year = $2`

const insertSectionSQL = `
INSERT INTO codebook_sections (id, source, year, code, level, name, variable_count, document)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const deleteIndexSQL = `
DELETE FROM variables_index WHERE source = $1 AND year = $2`

const insertIndexSQL = `
INSERT INTO variables_index (id, source, year, name, section, level, type, description)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func codebookKey(source domain.Source, year int) string {
	return fmt.Sprintf("%s/%d", source, year)
}

// Upsert writes the full codebook document keyed by (source, year),
// replacing any previous parse of the same year.
func (s *Store) Upsert(ctx context.Context, cb *domain.Codebook) error {
	q := postgres.QuerierFromCtx(ctx, s.db)

	doc, err := json.Marshal(cb)
	if err != nil {
		return fmt.Errorf("marshal codebook %s: %w", codebookKey(cb.Source, cb.Year), err)
	}

	now := time.Now().UTC()
	_, err = q.Exec(ctx, upsertCodebookSQL,
		uuid.New(), string(cb.Source), cb.Year, cb.ReleaseType, cb.Wave, doc,
		cb.TotalVariables, cb.TotalSections, cb.ParsedAt, now)
	if err != nil {
		return postgres.MapError(err, "codebook", codebookKey(cb.Source, cb.Year))
	}

	return nil
}

// Get returns the codebook stored for (source, year).
// Returns domain.ErrNotFound if no parse has been stored.
func (s *Store) Get(ctx context.Context, source domain.Source, year int) (*domain.Codebook, error) {
	q := postgres.QuerierFromCtx(ctx, s.db)

	var doc []byte
	if err := q.QueryRow(ctx, getCodebookSQL, string(source), year).Scan(&doc); err != nil {
		return nil, postgres.MapError(err, "codebook", codebookKey(source, year))
	}

	var cb domain.Codebook
	if err := json.Unmarshal(doc, &cb); err != nil {
		return nil, fmt.Errorf("unmarshal codebook %s: %w", codebookKey(source, year), err)
	}

	return &cb, nil
}

// ListYears returns the years with a stored codebook for the given source,
// ascending.
func (s *Store) ListYears(ctx context.Context, source domain.Source) ([]int, error) {
	q := postgres.QuerierFromCtx(ctx, s.db)

	rows, err := q.Query(ctx, listYearsSQL, string(source))
	if err != nil {
		return nil, postgres.MapError(err, "codebook years", string(source))
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scan year: %w", err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate years: %w", err)
	}

	if years == nil {
		years = []int{}
	}

	return years, nil
}

// List returns the stored codebook documents matching the optional source
// and year restrictions, ordered by (source, year). Used by categorization,
// which folds over arbitrary codebook subsets.
func (s *Store) List(ctx context.Context, source *domain.Source, years []int) ([]*domain.Codebook, error) {
	q := postgres.QuerierFromCtx(ctx, s.db)

	sel := sq.Select("document").From("codebooks").
		PlaceholderFormat(sq.Dollar).
		OrderBy("source", "year")
	if source != nil {
		sel = sel.Where(sq.Eq{"source": string(*source)})
	}
	if len(years) > 0 {
		sel = sel.Where(sq.Eq{"year": years})
	}

	sql, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build codebook list query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "codebooks", "list")
	}
	defer rows.Close()

	var out []*domain.Codebook
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan codebook document: %w", err)
		}
		var cb domain.Codebook
		if err := json.Unmarshal(doc, &cb); err != nil {
			return nil, fmt.Errorf("unmarshal codebook document: %w", err)
		}
		out = append(out, &cb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate codebooks: %w", err)
	}

	if out == nil {
		out = []*domain.Codebook{}
	}

	return out, nil
}

// ReplaceSections replaces the per-section rows for the codebook's
// (source, year) with the codebook's current sections. Intended to run
// inside the same transaction as Upsert.
func (s *Store) ReplaceSections(ctx context.Context, cb *domain.Codebook) error {
	q := postgres.QuerierFromCtx(ctx, s.db)
	key := codebookKey(cb.Source, cb.Year)

	if _, err := q.Exec(ctx, deleteSectionsSQL, string(cb.Source), cb.Year); err != nil {
		return postgres.MapError(err, "codebook sections", key)
	}

	batch := &pgx.Batch{}
	for i := range cb.Sections {
		sec := &cb.Sections[i]
		doc, err := json.Marshal(sec)
		if err != nil {
			return fmt.Errorf("marshal section %s/%s: %w", key, sec.Code, err)
		}
		batch.Queue(insertSectionSQL,
			uuid.New(), string(cb.Source), cb.Year, sec.Code, string(sec.Level),
			sec.Name, sec.VariableCount, doc)
	}
	if batch.Len() == 0 {
		return nil
	}

	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for range cb.Sections {
		if _, err := br.Exec(); err != nil {
			return postgres.MapError(err, "codebook sections", key)
		}
	}

	return nil
}

// ReplaceIndex replaces the flat search-index rows for the codebook's
// (source, year) with the codebook's current variable list.
func (s *Store) ReplaceIndex(ctx context.Context, cb *domain.Codebook) error {
	q := postgres.QuerierFromCtx(ctx, s.db)
	key := codebookKey(cb.Source, cb.Year)

	if _, err := q.Exec(ctx, deleteIndexSQL, string(cb.Source), cb.Year); err != nil {
		return postgres.MapError(err, "variable index", key)
	}

	entries := cb.IndexEntries()
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(insertIndexSQL,
			uuid.New(), string(cb.Source), cb.Year, e.Name, e.Section,
			string(e.Level), string(e.Type), e.Description)
	}
	if batch.Len() == 0 {
		return nil
	}

	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for range entries {
		if _, err := br.Exec(); err != nil {
			return postgres.MapError(err, "variable index", key)
		}
	}

	return nil
}

// IndexRow is one variables_index row returned by SearchIndex.
type IndexRow struct {
	Source      string `db:"source" json:"source"`
	Year        int    `db:"year" json:"year"`
	Name        string `db:"name" json:"name"`
	Section     string `db:"section" json:"section"`
	Level       string `db:"level" json:"level"`
	Type        string `db:"type" json:"type"`
	Description string `db:"description" json:"description"`
}

// SearchIndex returns variable index rows matching the filter, ordered by
// (year, name).
func (s *Store) SearchIndex(ctx context.Context, filter IndexFilter) ([]IndexRow, error) {
	q := postgres.QuerierFromCtx(ctx, s.db)

	filter.normalize()
	sql, args, err := filter.buildQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build index query: %w", err)
	}

	var out []IndexRow
	if err := pgxscan.Select(ctx, q, &out, sql, args...); err != nil {
		return nil, postgres.MapError(err, "variable index", "search")
	}

	if out == nil {
		out = []IndexRow{}
	}

	return out, nil
}
