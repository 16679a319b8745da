// Package categorize buckets parsed variables along independent dimensions:
// section, level, type, base name, and a handful of boolean predicates. A
// categorization is a derived, disposable view rebuilt from whatever subset
// of codebooks the caller supplies; it is never authoritative state.
package categorize

import (
	"fmt"
	"sort"

	"github.com/hrsdata/codebook-backend/internal/domain"
	"github.com/hrsdata/codebook-backend/internal/wave"
)

// Category is one bucket of variables sharing a dimension value.
type Category struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	VariableNames []string `json:"variable_names"`
	Count         int      `json:"count"`
	Years         []int    `json:"years"`
	Sections      []string `json:"sections"`
	Levels        []string `json:"levels"`

	yearSet    map[int]bool
	sectionSet map[string]bool
	levelSet   map[string]bool
}

func newCategory(name, description string) *Category {
	return &Category{
		Name:        name,
		Description: description,
		yearSet:     make(map[int]bool),
		sectionSet:  make(map[string]bool),
		levelSet:    make(map[string]bool),
	}
}

func (c *Category) add(name string, year int, section string, level domain.Level) {
	c.VariableNames = append(c.VariableNames, name)
	c.Count++
	c.yearSet[year] = true
	if section != "" {
		c.sectionSet[section] = true
	}
	if level != "" {
		c.levelSet[string(level)] = true
	}
}

func (c *Category) finalize() {
	c.Years = make([]int, 0, len(c.yearSet))
	for y := range c.yearSet {
		c.Years = append(c.Years, y)
	}
	sort.Ints(c.Years)
	c.Sections = sortedStrings(c.sectionSet)
	c.Levels = sortedStrings(c.levelSet)
}

// SpecialCategories are the predicate-driven buckets every variable is
// tested against regardless of its dimension values.
type SpecialCategories struct {
	Identifiers       *Category `json:"identifiers"`
	Derived           *Category `json:"derived"`
	WithValueCodes    *Category `json:"with_value_codes"`
	WithoutValueCodes *Category `json:"without_value_codes"`
	YearPrefixed      *Category `json:"year_prefixed"`
	NoPrefix          *Category `json:"no_prefix"`
}

// Categorization is the complete bucketing of a batch of codebooks.
type Categorization struct {
	BySection  map[string]*Category `json:"by_section"`
	ByLevel    map[string]*Category `json:"by_level"`
	ByType     map[string]*Category `json:"by_type"`
	ByBaseName map[string]*Category `json:"by_base_name"`

	Special SpecialCategories `json:"special_categories"`

	TotalVariables int   `json:"total_variables"`
	TotalYears     int   `json:"total_years"`
	YearsCovered   []int `json:"years_covered"`

	yearSet map[int]bool
}

func newCategorization() *Categorization {
	return &Categorization{
		BySection:  make(map[string]*Category),
		ByLevel:    make(map[string]*Category),
		ByType:     make(map[string]*Category),
		ByBaseName: make(map[string]*Category),
		Special: SpecialCategories{
			Identifiers:       newCategory("identifiers", "Variables that serve as identifiers (HHID, PN, etc.)"),
			Derived:           newCategory("derived", "Derived/calculated variables"),
			WithValueCodes:    newCategory("with_value_codes", "Variables with discrete value codes"),
			WithoutValueCodes: newCategory("without_value_codes", "Variables without discrete value codes"),
			YearPrefixed:      newCategory("year_prefixed", "Variables with year-specific prefixes (R, Q, P, etc.)"),
			NoPrefix:          newCategory("no_prefix", "Variables without year prefixes"),
		},
		yearSet: make(map[int]bool),
	}
}

// Build categorizes every variable in the supplied codebooks. The run is
// stateless: any subset of codebooks (by year, source, or era) yields a
// self-contained result, and no I/O is performed.
func Build(registry *wave.Registry, codebooks []*domain.Codebook) *Categorization {
	cat := newCategorization()
	for _, cb := range codebooks {
		if cb == nil || cb.Year == 0 {
			continue
		}
		cat.yearSet[cb.Year] = true
		for i := range cb.Variables {
			cat.addVariable(registry, &cb.Variables[i], cb.Year)
			cat.TotalVariables++
		}
	}
	cat.finalize()
	return cat
}

func (cat *Categorization) addVariable(registry *wave.Registry, v *domain.Variable, year int) {
	if v.Section != "" {
		bucket(cat.BySection, v.Section,
			"section_"+v.Section, fmt.Sprintf("Variables in section %s", v.Section)).
			add(v.Name, year, v.Section, v.Level)
	}
	if v.Level != "" {
		bucket(cat.ByLevel, string(v.Level),
			"level_"+string(v.Level), fmt.Sprintf("Variables at %s level", v.Level)).
			add(v.Name, year, v.Section, v.Level)
	}
	if v.Type != "" {
		bucket(cat.ByType, string(v.Type),
			"type_"+string(v.Type), fmt.Sprintf("%s type variables", v.Type)).
			add(v.Name, year, v.Section, v.Level)
	}

	base := registry.ExtractBaseName(v.Name)
	bucket(cat.ByBaseName, base,
		"base_"+base, fmt.Sprintf("Variables with base name %s", base)).
		add(v.Name, year, v.Section, v.Level)

	if v.IsIdentifier {
		cat.Special.Identifiers.add(v.Name, year, v.Section, v.Level)
	}
	if v.IsDerived {
		cat.Special.Derived.add(v.Name, year, v.Section, v.Level)
	}
	if v.HasValueCodes {
		cat.Special.WithValueCodes.add(v.Name, year, v.Section, v.Level)
	} else {
		cat.Special.WithoutValueCodes.add(v.Name, year, v.Section, v.Level)
	}

	prefix := registry.PrefixForYear(year)
	if prefix != "" && len(v.Name) > len(prefix) && v.Name[:len(prefix)] == prefix {
		cat.Special.YearPrefixed.add(v.Name, year, v.Section, v.Level)
	} else {
		cat.Special.NoPrefix.add(v.Name, year, v.Section, v.Level)
	}
}

// Merge unions partial categorizations built over disjoint codebook shards:
// variable lists concatenate, dimension value sets union, and the derived
// totals are recomputed. Inputs are not modified.
func Merge(parts ...*Categorization) *Categorization {
	merged := newCategorization()
	for _, part := range parts {
		if part == nil {
			continue
		}
		merged.TotalVariables += part.TotalVariables
		for _, y := range part.YearsCovered {
			merged.yearSet[y] = true
		}
		for key, c := range part.BySection {
			mergeCategory(bucket(merged.BySection, key, c.Name, c.Description), c)
		}
		for key, c := range part.ByLevel {
			mergeCategory(bucket(merged.ByLevel, key, c.Name, c.Description), c)
		}
		for key, c := range part.ByType {
			mergeCategory(bucket(merged.ByType, key, c.Name, c.Description), c)
		}
		for key, c := range part.ByBaseName {
			mergeCategory(bucket(merged.ByBaseName, key, c.Name, c.Description), c)
		}
		mergeCategory(merged.Special.Identifiers, part.Special.Identifiers)
		mergeCategory(merged.Special.Derived, part.Special.Derived)
		mergeCategory(merged.Special.WithValueCodes, part.Special.WithValueCodes)
		mergeCategory(merged.Special.WithoutValueCodes, part.Special.WithoutValueCodes)
		mergeCategory(merged.Special.YearPrefixed, part.Special.YearPrefixed)
		mergeCategory(merged.Special.NoPrefix, part.Special.NoPrefix)
	}
	merged.finalize()
	return merged
}

func mergeCategory(dst, src *Category) {
	dst.VariableNames = append(dst.VariableNames, src.VariableNames...)
	dst.Count += src.Count
	for _, y := range src.Years {
		dst.yearSet[y] = true
	}
	for _, s := range src.Sections {
		dst.sectionSet[s] = true
	}
	for _, l := range src.Levels {
		dst.levelSet[l] = true
	}
}

func (cat *Categorization) finalize() {
	cat.YearsCovered = make([]int, 0, len(cat.yearSet))
	for y := range cat.yearSet {
		cat.YearsCovered = append(cat.YearsCovered, y)
	}
	sort.Ints(cat.YearsCovered)
	cat.TotalYears = len(cat.YearsCovered)

	for _, m := range []map[string]*Category{cat.BySection, cat.ByLevel, cat.ByType, cat.ByBaseName} {
		for _, c := range m {
			c.finalize()
		}
	}
	for _, c := range []*Category{
		cat.Special.Identifiers, cat.Special.Derived,
		cat.Special.WithValueCodes, cat.Special.WithoutValueCodes,
		cat.Special.YearPrefixed, cat.Special.NoPrefix,
	} {
		c.finalize()
	}
}

func bucket(m map[string]*Category, key, name, description string) *Category {
	c, ok := m[key]
	if !ok {
		c = newCategory(name, description)
		m[key] = c
	}
	return c
}

func sortedStrings(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
