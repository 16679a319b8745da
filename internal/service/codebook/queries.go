package codebook

import (
	"context"
	"fmt"

	"github.com/hrsdata/codebook-backend/internal/adapter/postgres/codebookstore"
	"github.com/hrsdata/codebook-backend/internal/catalog"
	"github.com/hrsdata/codebook-backend/internal/domain"
)

// GetCodebook returns the stored codebook for (source, year).
func (s *Service) GetCodebook(ctx context.Context, source domain.Source, year int) (*domain.Codebook, error) {
	if !source.IsValid() {
		return nil, fmt.Errorf("source %q: %w", source, domain.ErrValidation)
	}
	if !s.registry.IsValidYear(year) {
		return nil, fmt.Errorf("year %d: %w", year, domain.ErrValidation)
	}
	return s.codebooks.Get(ctx, source, year)
}

// ListYears returns the years with a stored codebook for a source.
func (s *Service) ListYears(ctx context.Context, source domain.Source) ([]int, error) {
	if !source.IsValid() {
		return nil, fmt.Errorf("source %q: %w", source, domain.ErrValidation)
	}
	return s.codebooks.ListYears(ctx, source)
}

// SearchVariables runs a filtered search over the flat variable index.
func (s *Service) SearchVariables(ctx context.Context, filter codebookstore.IndexFilter) ([]codebookstore.IndexRow, error) {
	if filter.Source != nil && !filter.Source.IsValid() {
		return nil, fmt.Errorf("source %q: %w", *filter.Source, domain.ErrValidation)
	}
	if filter.Level != nil && !filter.Level.IsValid() {
		return nil, fmt.Errorf("level %q: %w", *filter.Level, domain.ErrValidation)
	}
	return s.codebooks.SearchIndex(ctx, filter)
}

// TemporalLookup returns the cross-year mapping for a variable. The input
// may be a base name or a year-prefixed name; prefixed names are resolved
// to their base before lookup.
func (s *Service) TemporalLookup(ctx context.Context, name string) (*catalog.TemporalMapping, error) {
	if name == "" {
		return nil, fmt.Errorf("empty variable name: %w", domain.ErrValidation)
	}

	base := s.registry.ExtractBaseName(name)
	m, err := s.catalog.GetMapping(ctx, base)
	if err == nil || base == name {
		return m, err
	}
	// The stripped prefix may have been part of the real name (single-letter
	// prefixes collide with legitimate leading letters). Retry verbatim.
	return s.catalog.GetMapping(ctx, name)
}

// ListBaseNames returns a page of catalogued base names plus the total count.
func (s *Service) ListBaseNames(ctx context.Context, limit, offset int) ([]string, int, error) {
	names, err := s.catalog.ListBaseNames(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.catalog.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return names, total, nil
}
