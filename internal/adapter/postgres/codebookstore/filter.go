package codebookstore

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/hrsdata/codebook-backend/internal/domain"
)

// IndexFilter defines parameters for searching the flat variable index.
type IndexFilter struct {
	// Source restricts to one document family. nil means all sources.
	Source *domain.Source

	// Year restricts to one survey year.
	Year *int

	// Section restricts to one section code (exact match).
	Section *string

	// Level restricts to one measurement level (exact match).
	Level *domain.Level

	// Search performs case-insensitive substring match on name OR description.
	Search *string

	// Limit is the maximum number of rows to return. Default: 100, max: 1000.
	Limit int

	// Offset is the number of rows to skip.
	Offset int
}

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// normalize applies defaults and clamps values.
func (f *IndexFilter) normalize() {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// buildQuery assembles the filtered SELECT over variables_index.
func (f *IndexFilter) buildQuery() sq.SelectBuilder {
	q := sq.Select("source", "year", "name", "section", "level", "type", "description").
		From("variables_index").
		PlaceholderFormat(sq.Dollar)

	if f.Source != nil {
		q = q.Where(sq.Eq{"source": string(*f.Source)})
	}
	if f.Year != nil {
		q = q.Where(sq.Eq{"year": *f.Year})
	}
	if f.Section != nil {
		q = q.Where(sq.Eq{"section": *f.Section})
	}
	if f.Level != nil {
		q = q.Where(sq.Eq{"level": string(*f.Level)})
	}
	if f.Search != nil && *f.Search != "" {
		pattern := "%" + *f.Search + "%"
		q = q.Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"description": pattern},
		})
	}

	return q.OrderBy("year", "name").
		Limit(uint64(f.Limit)).
		Offset(uint64(f.Offset))
}
