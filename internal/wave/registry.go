// Package wave holds the year/prefix/wave algebra for the biennial HRS
// survey: which letter prefix each survey year uses in variable names, and
// how years map to sequential wave numbers.
package wave

import "sort"

const (
	// BaseYear is the first survey year (wave 1).
	BaseYear = 1992
	// Step is the biennial interval between waves.
	Step = 2
	// MaxWave is the latest administered wave (2022).
	MaxWave = 16
)

// yearPrefixes maps survey year to the variable-name prefix used that year.
// 1992 and 1994 used no prefix.
var yearPrefixes = map[int]string{
	1992: "",
	1994: "",
	1996: "E",
	1998: "F",
	2000: "G",
	2002: "H",
	2004: "I",
	2006: "J",
	2008: "K",
	2010: "L",
	2012: "M",
	2014: "N",
	2016: "P",
	2018: "Q",
	2020: "R",
	2022: "S",
}

// Registry is the immutable year↔prefix↔wave lookup table. Construct it
// once at startup and pass it to every component that needs it; it is safe
// for unlimited concurrent reads.
type Registry struct {
	prefixByYear map[int]string
	yearByPrefix map[string]int
	years        []int // valid survey years, descending
}

// NewRegistry builds the registry from the fixed biennial table.
func NewRegistry() *Registry {
	r := &Registry{
		prefixByYear: make(map[int]string, len(yearPrefixes)),
		yearByPrefix: make(map[string]int, len(yearPrefixes)),
	}
	for year, prefix := range yearPrefixes {
		r.prefixByYear[year] = prefix
		if prefix != "" {
			r.yearByPrefix[prefix] = year
		}
		r.years = append(r.years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(r.years)))
	return r
}

// Years returns all valid survey years, newest first.
func (r *Registry) Years() []int {
	out := make([]int, len(r.years))
	copy(out, r.years)
	return out
}

// IsValidYear reports whether year is one of the survey's biennial years.
func (r *Registry) IsValidYear(year int) bool {
	_, ok := r.prefixByYear[year]
	return ok
}

// PrefixForYear returns the variable-name prefix for a survey year, or ""
// for years with no prefix and for unknown years.
func (r *Registry) PrefixForYear(year int) string {
	return r.prefixByYear[year]
}

// YearForPrefix returns the survey year that used the given prefix.
func (r *Registry) YearForPrefix(prefix string) (int, bool) {
	year, ok := r.yearByPrefix[prefix]
	return year, ok
}

// WaveForYear returns the sequential wave number for a survey year.
// The formula (year-base)/2+1 is only trusted for years in the known set.
func (r *Registry) WaveForYear(year int) (int, bool) {
	if !r.IsValidYear(year) {
		return 0, false
	}
	return (year-BaseYear)/Step + 1, true
}

// YearForWave returns the survey year for a wave number. A formula result
// outside the known year set returns not-found rather than a fabricated year.
func (r *Registry) YearForWave(w int) (int, bool) {
	if w < 1 || w > MaxWave {
		return 0, false
	}
	year := BaseYear + (w-1)*Step
	if !r.IsValidYear(year) {
		return 0, false
	}
	return year, true
}
