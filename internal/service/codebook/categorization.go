package codebook

import (
	"context"
	"fmt"

	"github.com/hrsdata/codebook-backend/internal/categorize"
	"github.com/hrsdata/codebook-backend/internal/domain"
)

// CategorizationFilter narrows which stored codebooks feed a categorization
// run. Year takes precedence over Era when both are set.
type CategorizationFilter struct {
	Year   *int
	Source *domain.Source
	Era    *domain.Era
}

// Categorize fetches the matching codebooks and folds them into a fresh
// categorization. Returns domain.ErrNotFound when nothing matches.
func (s *Service) Categorize(ctx context.Context, filter CategorizationFilter) (*categorize.Categorization, error) {
	if filter.Source != nil && !filter.Source.IsValid() {
		return nil, fmt.Errorf("source %q: %w", *filter.Source, domain.ErrValidation)
	}
	if filter.Era != nil && !filter.Era.IsValid() {
		return nil, fmt.Errorf("era %q: %w", *filter.Era, domain.ErrValidation)
	}

	var years []int
	switch {
	case filter.Year != nil:
		years = []int{*filter.Year}
	case filter.Era != nil:
		for _, y := range s.registry.Years() {
			if domain.EraForYear(y) == *filter.Era {
				years = append(years, y)
			}
		}
	}

	codebooks, err := s.codebooks.List(ctx, filter.Source, years)
	if err != nil {
		return nil, err
	}
	if len(codebooks) == 0 {
		return nil, fmt.Errorf("no codebooks match the categorization filter: %w", domain.ErrNotFound)
	}

	s.log.Debug("categorizing codebooks",
		"count", len(codebooks),
		"years", len(years))

	return categorize.Build(s.registry, codebooks), nil
}
