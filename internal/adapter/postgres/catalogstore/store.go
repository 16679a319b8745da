// Package catalogstore persists the cross-year catalog: one row per base
// name carrying the temporal-mapping document. The catalog is rebuilt
// wholesale per batch run, so writes replace the entire table contents.
package catalogstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hrsdata/codebook-backend/internal/adapter/postgres"
	"github.com/hrsdata/codebook-backend/internal/catalog"
)

// Store provides catalog persistence backed by PostgreSQL.
type Store struct {
	db postgres.Querier
}

// New creates a new catalog store.
func New(db postgres.Querier) *Store {
	return &Store{db: db}
}

const deleteMappingsSQL = `DELETE FROM catalog_mappings`

const insertMappingSQL = `
INSERT INTO catalog_mappings (base_name, document, first_year, last_year, updated_at)
VALUES ($1, $2, $3, $4, $5)`

const getMappingSQL = `
SELECT document FROM catalog_mappings WHERE base_name = $1`

const listBaseNamesSQL = `
SELECT base_name FROM catalog_mappings ORDER BY base_name LIMIT $1 OFFSET $2`

const countMappingsSQL = `SELECT count(*) FROM catalog_mappings`

// Replace swaps the stored catalog for the given one. Run it inside a
// transaction so readers never observe a half-written catalog.
func (s *Store) Replace(ctx context.Context, c *catalog.Catalog) error {
	q := postgres.QuerierFromCtx(ctx, s.db)

	if _, err := q.Exec(ctx, deleteMappingsSQL); err != nil {
		return postgres.MapError(err, "catalog", "replace")
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for base, m := range c.BaseVariables {
		doc, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal mapping %s: %w", base, err)
		}
		batch.Queue(insertMappingSQL, base, doc, m.FirstYear, m.LastYear, now)
	}
	if batch.Len() == 0 {
		return nil
	}

	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for range c.BaseVariables {
		if _, err := br.Exec(); err != nil {
			return postgres.MapError(err, "catalog", "replace")
		}
	}

	return nil
}

// GetMapping returns the temporal mapping stored for a base name.
// Returns domain.ErrNotFound when the base name is not in the catalog.
func (s *Store) GetMapping(ctx context.Context, baseName string) (*catalog.TemporalMapping, error) {
	q := postgres.QuerierFromCtx(ctx, s.db)

	var doc []byte
	if err := q.QueryRow(ctx, getMappingSQL, baseName).Scan(&doc); err != nil {
		return nil, postgres.MapError(err, "catalog mapping", baseName)
	}

	var m catalog.TemporalMapping
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("unmarshal mapping %s: %w", baseName, err)
	}

	return &m, nil
}

// ListBaseNames returns a page of catalogued base names, ordered.
func (s *Store) ListBaseNames(ctx context.Context, limit, offset int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	q := postgres.QuerierFromCtx(ctx, s.db)

	rows, err := q.Query(ctx, listBaseNamesSQL, limit, offset)
	if err != nil {
		return nil, postgres.MapError(err, "catalog", "list")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan base name: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate base names: %w", err)
	}

	if names == nil {
		names = []string{}
	}

	return names, nil
}

// Count returns the number of catalogued base names.
func (s *Store) Count(ctx context.Context) (int, error) {
	q := postgres.QuerierFromCtx(ctx, s.db)

	var count int
	if err := q.QueryRow(ctx, countMappingsSQL).Scan(&count); err != nil {
		return 0, postgres.MapError(err, "catalog", "count")
	}

	return count, nil
}
