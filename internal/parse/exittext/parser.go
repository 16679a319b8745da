// Package exittext parses exit and post-exit codebook text files. The
// layout differs from core documents: the section header always carries a
// level, variable metadata arrives on one combined line, and section codes
// repeat across levels, so sections are keyed by (code, level).
package exittext

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hrsdata/codebook-backend/internal/domain"
	"github.com/hrsdata/codebook-backend/internal/parse/scan"
	"github.com/hrsdata/codebook-backend/internal/wave"
)

// Metadata in these documents can trail the variable line by several
// blank or prose lines.
const metadataWindow = 8

var (
	// Section PR: PRELOAD  (Respondent) — the level part is mandatory.
	reSection = regexp.MustCompile(`(?i)^section\s+([A-Z]+):\s+(.+?)\s+\((.+)\)\s*$`)

	// The combined metadata line carries all five fields at once.
	reMeta = regexp.MustCompile(`(?is).*Section:\s*([A-Z]+)\s+Level:\s*(.+?)\s+Type:\s*(\w+)\s+Width:\s*(\d+)\s+Decimals:\s*(\d+)`)

	// Value code: optional frequency, code with optional period, then at
	// least two spaces before the label.
	reValue = regexp.MustCompile(`^\s*(\d+)?\s*([^\s]+?)\.?\s{2,}(.+)$`)

	// Variable line, leading spaces allowed.
	reVarLine = regexp.MustCompile(`(?i)^\s*([A-Z0-9_]+)\s{2,}(.+)$`)

	// Any run of '=' terminates a block here, unlike the core layout.
	reSep = regexp.MustCompile(`^=+\s*$`)
)

type metadata struct {
	Section  string
	Level    domain.Level
	Type     domain.VarType
	Width    int
	Decimals int
}

// Stats summarizes one parse pass.
type Stats struct {
	Sections   int
	Variables  int
	ValueCodes int
}

// Parser parses exit and post-exit codebook text files.
type Parser struct {
	registry *wave.Registry
}

func NewParser(registry *wave.Registry) *Parser {
	return &Parser{registry: registry}
}

func (p *Parser) Parse(path string, source domain.Source, year int) (*domain.Codebook, Stats, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read codebook: %w", err)
	}
	cb, stats := p.ParseContent(string(content), source, year)
	cb.Metadata = map[string]string{
		"file_path": path,
		"file_name": filepath.Base(path),
	}
	return cb, stats, nil
}

func (p *Parser) ParseContent(content string, source domain.Source, year int) (*domain.Codebook, Stats) {
	cb := &domain.Codebook{
		Source:      source,
		Year:        year,
		ReleaseType: releaseType(content, source),
		ParsedAt:    time.Now(),
	}
	if w, ok := p.registry.WaveForYear(year); ok {
		cb.Wave = &w
	}

	sections := map[domain.SectionKey]int{}
	var (
		curSectionName string
		haveSection    bool
	)

	c := scan.NewCursor(content)
	var stats Stats
	for !c.EOF() {
		raw := c.Line()
		line := strings.TrimSpace(raw)

		if m := reSection.FindStringSubmatch(line); m != nil {
			code, name := m[1], strings.TrimSpace(m[2])
			level := parseLevel(m[3])
			curSectionName = name
			haveSection = true
			key := domain.SectionKey{Code: code, Level: level}
			if _, exists := sections[key]; !exists {
				sections[key] = len(cb.Sections)
				cb.Sections = append(cb.Sections, domain.Section{
					Code:  code,
					Name:  name,
					Level: level,
					Year:  year,
				})
				stats.Sections++
			}
			c.Advance()
			continue
		}

		vm := reVarLine.FindStringSubmatch(raw)
		if vm == nil || !haveSection {
			c.Advance()
			continue
		}
		name := strings.TrimSpace(vm[1])
		desc := strings.TrimSpace(vm[2])
		// Dash rows, ASSIGN text, and frequency-led value rows also fit
		// the variable shape.
		if strings.HasPrefix(name, "-") || strings.Contains(strings.ToUpper(line), "ASSIGN") || isDigits(name) {
			c.Advance()
			continue
		}

		metaIdx, ok := c.LookAhead(metadataWindow, func(l string) bool {
			return parseMetadata(l) != nil
		})
		if !ok {
			c.Advance()
			continue
		}
		md := parseMetadata(c.LineAt(metaIdx))

		if desc == "" {
			desc = name
		}
		v := domain.Variable{
			Name:         name,
			Year:         year,
			Section:      md.Section,
			Level:        md.Level,
			Description:  desc,
			Type:         md.Type,
			Width:        md.Width,
			Decimals:     md.Decimals,
			IsIdentifier: domain.IsIdentifierVariable(name, desc),
		}

		c.SetPos(metaIdx + 1)
		p.parseValueCodes(c, &v)
		v.HasValueCodes = len(v.ValueCodes) > 0
		stats.ValueCodes += len(v.ValueCodes)

		cb.Variables = append(cb.Variables, v)
		stats.Variables++

		// Attach by the metadata's (section, level), creating the section
		// when the variable outran its header.
		key := domain.SectionKey{Code: md.Section, Level: md.Level}
		idx, exists := sections[key]
		if !exists {
			secName := curSectionName
			if secName == "" {
				secName = md.Section
			}
			sections[key] = len(cb.Sections)
			cb.Sections = append(cb.Sections, domain.Section{
				Code:  md.Section,
				Name:  secName,
				Level: md.Level,
				Year:  year,
			})
			idx = sections[key]
			stats.Sections++
		}
		cb.Sections[idx].Variables = append(cb.Sections[idx].Variables, name)

		p.skipToNextBlock(c)
	}

	cb.Finalize()
	return cb, stats
}

// parseValueCodes consumes value-code lines after the metadata line,
// stopping at a separator, a section header, or the next variable line.
func (p *Parser) parseValueCodes(c *scan.Cursor, v *domain.Variable) {
	for !c.EOF() {
		raw := c.Line()
		line := strings.TrimSpace(raw)

		if reSep.MatchString(line) {
			return
		}
		if m := reSection.FindStringSubmatch(line); m != nil {
			return
		}
		if vm := reVarLine.FindStringSubmatch(raw); vm != nil &&
			!strings.HasPrefix(line, ".") && !isDigits(vm[1]) {
			return
		}
		if parseMetadata(raw) != nil {
			c.Advance()
			continue
		}
		if line == "" || strings.HasPrefix(line, ".") ||
			strings.HasPrefix(line, "Ref:") || strings.HasPrefix(line, "ASSIGN:") {
			if r, ok := scan.MatchRef(line); ok {
				v.References = append(v.References, r)
			}
			if a, ok := scan.MatchAssign(line); ok {
				v.Assignments = append(v.Assignments, a)
			}
			c.Advance()
			continue
		}

		m := reValue.FindStringSubmatch(raw)
		if m == nil {
			c.Advance()
			continue
		}
		var freq *int
		if m[1] != "" {
			if f, err := strconv.Atoi(m[1]); err == nil {
				freq = &f
			}
		}
		code := strings.TrimSpace(m[2])
		label := strings.TrimSpace(m[3])
		c.Advance()

		// Wrapped labels continue on unrecognized indented lines.
		for !c.EOF() {
			next := c.Line()
			nt := strings.TrimSpace(next)
			if nt == "" || reSep.MatchString(nt) {
				break
			}
			if reValue.MatchString(next) || reVarLine.MatchString(next) {
				break
			}
			if strings.HasPrefix(nt, "Ref:") || strings.HasPrefix(nt, "ASSIGN:") {
				break
			}
			if strings.HasPrefix(nt, "Section ") && strings.Contains(nt, ":") {
				break
			}
			label += " " + nt
			c.Advance()
		}
		v.ValueCodes = append(v.ValueCodes, domain.NewValueCode(code, freq, label))
	}
}

// skipToNextBlock advances past trailing content to the line after the
// block separator, or to the next variable line when no separator exists.
func (p *Parser) skipToNextBlock(c *scan.Cursor) {
	for !c.EOF() {
		line := strings.TrimSpace(c.Line())
		if reSep.MatchString(line) {
			c.Advance()
			return
		}
		if reVarLine.MatchString(c.Line()) && !strings.HasPrefix(line, "-") {
			return
		}
		c.Advance()
	}
}

// parseMetadata recognizes the combined metadata line; nil when the line
// does not carry all five fields.
func parseMetadata(line string) *metadata {
	m := reMeta.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	width, _ := strconv.Atoi(m[4])
	decimals, _ := strconv.Atoi(m[5])
	return &metadata{
		Section:  strings.TrimSpace(m[1]),
		Level:    parseLevel(m[2]),
		Type:     parseType(m[3]),
		Width:    width,
		Decimals: decimals,
	}
}

// parseLevel maps the exit documents' level strings. Child and household
// member rows have no counterpart in the core vocabulary and fold into
// Other.
func parseLevel(s string) domain.Level {
	ls := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(ls, "household") && !strings.Contains(ls, "child"):
		return domain.LevelHousehold
	case strings.Contains(ls, "respondent") || ls == "r":
		return domain.LevelRespondent
	case strings.Contains(ls, "child") || strings.Contains(ls, "member"):
		return domain.LevelOther
	}
	return domain.LevelRespondent
}

func parseType(s string) domain.VarType {
	ls := strings.ToLower(strings.TrimSpace(s))
	if strings.Contains(ls, "num") {
		return domain.TypeNumeric
	}
	return domain.TypeCharacter
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// releaseType derives the release designation for post-exit documents from
// the file header.
func releaseType(content string, source domain.Source) string {
	if source != domain.SourcePostExit {
		return ""
	}
	head := content
	if len(head) > 3000 {
		head = head[:3000]
	}
	if strings.Contains(head, "Post Exit") && strings.Contains(head, "Final") {
		return "Final Post Exit"
	}
	return ""
}
