// Package catalog folds parsed codebooks into the cross-year variable
// catalog: one temporal mapping per base name recording which years carry
// the variable and under which prefix.
package catalog

import (
	"sort"

	"github.com/hrsdata/codebook-backend/internal/domain"
	"github.com/hrsdata/codebook-backend/internal/wave"
)

// YearGap is an inclusive range of biennial steps a variable skipped.
type YearGap struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// TemporalMapping tracks one base name across survey years.
type TemporalMapping struct {
	BaseName     string         `json:"base_name"`
	YearPrefixes map[int]string `json:"year_prefixes"`
	Years        []int          `json:"years"` // sorted ascending
	FirstYear    int            `json:"first_year"`
	LastYear     int            `json:"last_year"`
	YearGaps     []YearGap      `json:"year_gaps,omitempty"`

	yearSet map[int]bool
}

// HasYear reports whether the base name appears in the given year. It works
// on both freshly built and deserialized mappings.
func (m *TemporalMapping) HasYear(year int) bool {
	if m.yearSet != nil {
		return m.yearSet[year]
	}
	for _, y := range m.Years {
		if y == year {
			return true
		}
	}
	return false
}

// NameForYear reconstructs the year-specific variable name, or "" when the
// variable does not appear that year.
func (m *TemporalMapping) NameForYear(year int) string {
	if p, ok := m.YearPrefixes[year]; ok {
		return p + m.BaseName
	}
	if m.HasYear(year) {
		return m.BaseName
	}
	return ""
}

// Catalog is the full cross-year view over a batch of codebooks. It is
// rebuilt wholesale on each batch run, never updated incrementally.
type Catalog struct {
	BaseVariables map[string]*TemporalMapping `json:"base_variables"`
	Years         []int                       `json:"years"` // sorted ascending

	// YearCodebooks indexes the folded codebooks; kept out of the
	// serialized form, which stores codebooks separately.
	YearCodebooks map[int]*domain.Codebook `json:"-"`
}

// Builder accumulates codebooks into a catalog.
type Builder struct {
	registry *wave.Registry
	catalog  *Catalog
	yearSet  map[int]bool
}

func NewBuilder(registry *wave.Registry) *Builder {
	return &Builder{
		registry: registry,
		catalog: &Catalog{
			BaseVariables: make(map[string]*TemporalMapping),
			YearCodebooks: make(map[int]*domain.Codebook),
		},
		yearSet: make(map[int]bool),
	}
}

// Add folds one codebook into the catalog under construction.
func (b *Builder) Add(cb *domain.Codebook) {
	year := cb.Year
	b.catalog.YearCodebooks[year] = cb
	b.yearSet[year] = true

	for i := range cb.Variables {
		name := cb.Variables[i].Name
		base := b.registry.ExtractBaseName(name)

		m, ok := b.catalog.BaseVariables[base]
		if !ok {
			m = &TemporalMapping{
				BaseName:     base,
				YearPrefixes: make(map[int]string),
				yearSet:      make(map[int]bool),
			}
			b.catalog.BaseVariables[base] = m
		}
		if !m.yearSet[year] {
			m.yearSet[year] = true
			if m.FirstYear == 0 || year < m.FirstYear {
				m.FirstYear = year
			}
			if year > m.LastYear {
				m.LastYear = year
			}
		}

		if p := b.registry.PrefixForYear(year); p != "" && p+base == name {
			m.YearPrefixes[year] = p
		} else if name != base {
			// The document used a prefix letter outside the canonical
			// table; record the literal difference.
			if len(name) > len(base) && name[len(name)-len(base):] == base {
				m.YearPrefixes[year] = name[:len(name)-len(base)]
			}
		}
	}
}

// Build finalizes and returns the catalog: sorted year lists and the
// non-biennial gaps per mapping.
func (b *Builder) Build() *Catalog {
	c := b.catalog
	c.Years = sortedYears(b.yearSet)
	for _, m := range c.BaseVariables {
		m.Years = sortedYears(m.yearSet)
		m.YearGaps = computeGaps(m.Years)
	}
	return c
}

// BuildCatalog folds a batch of codebooks in one call.
func BuildCatalog(registry *wave.Registry, codebooks []*domain.Codebook) *Catalog {
	b := NewBuilder(registry)
	for _, cb := range codebooks {
		b.Add(cb)
	}
	return b.Build()
}

// Merge unions partial catalogs built over disjoint codebook shards into one,
// recomputing the derived year lists and gaps. Inputs are not modified.
func Merge(parts ...*Catalog) *Catalog {
	merged := &Catalog{
		BaseVariables: make(map[string]*TemporalMapping),
		YearCodebooks: make(map[int]*domain.Codebook),
	}
	yearSet := make(map[int]bool)

	for _, part := range parts {
		if part == nil {
			continue
		}
		for _, y := range part.Years {
			yearSet[y] = true
		}
		for y, cb := range part.YearCodebooks {
			merged.YearCodebooks[y] = cb
		}
		for base, pm := range part.BaseVariables {
			m, ok := merged.BaseVariables[base]
			if !ok {
				m = &TemporalMapping{
					BaseName:     base,
					YearPrefixes: make(map[int]string),
					yearSet:      make(map[int]bool),
				}
				merged.BaseVariables[base] = m
			}
			for y, p := range pm.YearPrefixes {
				m.YearPrefixes[y] = p
			}
			for _, y := range pm.Years {
				m.yearSet[y] = true
			}
		}
	}

	merged.Years = sortedYears(yearSet)
	for _, m := range merged.BaseVariables {
		m.Years = sortedYears(m.yearSet)
		if len(m.Years) > 0 {
			m.FirstYear = m.Years[0]
			m.LastYear = m.Years[len(m.Years)-1]
		}
		m.YearGaps = computeGaps(m.Years)
	}
	return merged
}

// computeGaps emits an inclusive gap for every pair of consecutive years
// more than one biennial step apart.
func computeGaps(years []int) []YearGap {
	var gaps []YearGap
	for i := 0; i+1 < len(years); i++ {
		if years[i+1]-years[i] > wave.Step {
			gaps = append(gaps, YearGap{Start: years[i] + wave.Step, End: years[i+1] - wave.Step})
		}
	}
	return gaps
}

func sortedYears(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for y := range set {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}
