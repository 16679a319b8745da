package domain

import (
	"sort"
	"time"
)

// Section is a named grouping of variables within a codebook. It is mutated
// incrementally while parsing (variables appended in document order) and
// frozen once the document is fully scanned.
type Section struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	Level         Level    `json:"level"`
	Year          int      `json:"year"`
	VariableCount int      `json:"variable_count"`
	Variables     []string `json:"variables"`
	FileSuffix    string   `json:"file_suffix,omitempty"`
}

// SectionKey distinguishes sections that share a code but differ in level.
// Exit/post-exit documents legitimately reuse one code at two levels.
type SectionKey struct {
	Code  string
	Level Level
}

// Codebook is the complete structured representation of one year's released
// variable documentation for one document source.
type Codebook struct {
	Source      Source `json:"source"`
	Year        int    `json:"year"`
	ReleaseType string `json:"release_type,omitempty"`
	Wave        *int   `json:"wave,omitempty"`

	Sections  []Section  `json:"sections"`
	Variables []Variable `json:"variables"`

	TotalVariables int     `json:"total_variables"`
	TotalSections  int     `json:"total_sections"`
	Levels         []Level `json:"levels"`

	Metadata map[string]string `json:"metadata,omitempty"`
	ParsedAt time.Time         `json:"parsed_at"`
}

// Finalize recomputes the derived fields (totals, per-section counts, and
// the observed level set) after parsing completes.
func (c *Codebook) Finalize() {
	c.TotalVariables = len(c.Variables)
	c.TotalSections = len(c.Sections)

	seen := make(map[Level]bool)
	for i := range c.Sections {
		c.Sections[i].VariableCount = len(c.Sections[i].Variables)
	}
	for _, v := range c.Variables {
		seen[v.Level] = true
	}
	c.Levels = c.Levels[:0]
	for l := range seen {
		c.Levels = append(c.Levels, l)
	}
	sort.Slice(c.Levels, func(i, j int) bool { return c.Levels[i] < c.Levels[j] })
}

// Section returns the section with the given code and level, or nil.
func (c *Codebook) Section(code string, level Level) *Section {
	for i := range c.Sections {
		if c.Sections[i].Code == code && c.Sections[i].Level == level {
			return &c.Sections[i]
		}
	}
	return nil
}

// VariableByName returns the variable with the given name, or nil.
func (c *Codebook) VariableByName(name string) *Variable {
	for i := range c.Variables {
		if c.Variables[i].Name == name {
			return &c.Variables[i]
		}
	}
	return nil
}

// VariableIndexEntry is the flat per-variable record stored alongside the
// full codebook document for fast name/description search.
type VariableIndexEntry struct {
	Name        string  `json:"name"`
	Section     string  `json:"section"`
	Level       Level   `json:"level"`
	Type        VarType `json:"type"`
	Description string  `json:"description"`
}

// IndexEntries derives the flat search index for this codebook.
func (c *Codebook) IndexEntries() []VariableIndexEntry {
	out := make([]VariableIndexEntry, 0, len(c.Variables))
	for _, v := range c.Variables {
		out = append(out, VariableIndexEntry{
			Name:        v.Name,
			Section:     v.Section,
			Level:       v.Level,
			Type:        v.Type,
			Description: v.Description,
		})
	}
	return out
}
