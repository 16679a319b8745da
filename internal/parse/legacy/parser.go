// Package legacy parses the 1992 and 1994 core codebooks, which ship as one
// text file per section. 1992 identifies variables by bare numbers (stored
// as V<number>); 1994 uses names, sometimes duplicated on the line as
// "NAME  NAME  Description". Neither year carries metadata lines, so type is
// inferred from the name shape and width/decimals stay zero. The per-section
// files of one year merge into a single codebook.
package legacy

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/hrsdata/codebook-backend/internal/domain"
	"github.com/hrsdata/codebook-backend/internal/parse/scan"
	"github.com/hrsdata/codebook-backend/internal/wave"
)

const maxDescriptionLen = 500

var (
	reSectionHeader = regexp.MustCompile(`(?s)[Ss]ection\s+([A-Z0-9]+):\s*(.+?)(?:\s*_{5,}|$)`)
	reCoversheet    = regexp.MustCompile(`(?m)^\s*([A-Za-z][A-Za-z0-9 ]*):\s*(.+?)(?:\s*_{5,}|$)`)

	reNoise     = regexp.MustCompile(`(?i)^(?:VAR\s*#|_____|Variable\s+N\s+Mean|Code\s+Frequency)`)
	reRuleLine  = regexp.MustCompile(`^(?:_{10,}|\.{10,})`)
	reVar1992   = regexp.MustCompile(`^\s*(\d+)\s{2,}(.+)$`)
	reVar1994   = regexp.MustCompile(`^\s*([A-Z0-9]+)\s{2,}(.+)$`)
	reCodeTable = regexp.MustCompile(`^V\d+\s+Code`)
	reStatTable = regexp.MustCompile(`Variable\s+N\s+Mean`)
	reVarWord   = regexp.MustCompile(`Variable\s+`)
)

// Stats summarizes one merged parse pass.
type Stats struct {
	Files      int
	Sections   int
	Variables  int
	Duplicates int
	ValueCodes int
}

// Parser parses and merges the early per-section codebook files.
type Parser struct {
	registry *wave.Registry
}

func NewParser(registry *wave.Registry) *Parser {
	return &Parser{registry: registry}
}

// ParseFiles parses every per-section file of one survey year and merges the
// results into a single codebook. Files are visited in sorted path order;
// a variable name seen in an earlier file wins over later occurrences.
func (p *Parser) ParseFiles(paths []string, source domain.Source, year int) (*domain.Codebook, Stats, error) {
	cb := &domain.Codebook{
		Source:   source,
		Year:     year,
		ParsedAt: time.Now(),
	}
	if w, ok := p.registry.WaveForYear(year); ok {
		cb.Wave = &w
	}

	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	var stats Stats
	seen := make(map[string]bool)
	for _, path := range sorted {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, stats, fmt.Errorf("read codebook section file: %w", err)
		}
		section, vars := p.parseSectionFile(string(content), path, year)
		stats.Files++
		stats.Sections++
		for _, v := range vars {
			if seen[v.Name] {
				stats.Duplicates++
				continue
			}
			seen[v.Name] = true
			section.Variables = append(section.Variables, v.Name)
			cb.Variables = append(cb.Variables, v)
			stats.Variables++
			stats.ValueCodes += len(v.ValueCodes)
		}
		cb.Sections = append(cb.Sections, section)
	}

	cb.Metadata = map[string]string{
		"file_paths":   strings.Join(sorted, ";"),
		"early_format": "true",
	}
	cb.Finalize()
	return cb, stats, nil
}

// parseSectionFile parses one per-section file into its section and the
// variables it documents. The section's Variables list is left for the
// caller, which owns cross-file dedup.
func (p *Parser) parseSectionFile(content, path string, year int) (domain.Section, []domain.Variable) {
	code, name := sectionIdentity(content, path)
	section := domain.Section{
		Code:  code,
		Name:  name,
		Level: domain.LevelRespondent,
		Year:  year,
	}

	is1992 := year == 1992
	var vars []domain.Variable

	c := scan.NewCursor(content)
	for !c.EOF() {
		line := strings.TrimSpace(c.Line())
		if line == "" || reNoise.MatchString(line) {
			c.Advance()
			continue
		}
		varName, desc, ok := matchVariable(line, is1992)
		if !ok {
			c.Advance()
			continue
		}

		c.Advance()
		var codes []domain.ValueCode
		for !c.EOF() {
			next := strings.TrimSpace(c.Line())
			if next == "" {
				c.Advance()
				continue
			}
			if _, _, isVar := matchVariable(next, is1992); isVar {
				break
			}
			if reRuleLine.MatchString(next) {
				c.Advance()
				continue
			}
			if vc, ok := scan.MatchLegacyValueCode(next); ok && (vc.Code != "" || vc.Label != "") {
				codes = append(codes, domain.NewValueCode(vc.Code, vc.Frequency, vc.Label))
			}
			c.Advance()
		}

		if len(desc) > maxDescriptionLen {
			desc = desc[:maxDescriptionLen]
		}
		vt := domain.TypeCharacter
		if isNumberedName(varName) {
			vt = domain.TypeNumeric
		}
		vars = append(vars, domain.Variable{
			Name:          varName,
			Year:          year,
			Section:       code,
			Level:         domain.LevelRespondent,
			Description:   desc,
			Type:          vt,
			ValueCodes:    codes,
			HasValueCodes: len(codes) > 0,
			IsIdentifier:  domain.IsIdentifierVariable(varName, desc),
		})
	}

	return section, vars
}

// matchVariable recognizes a variable line in either early dialect,
// filtering out the frequency-table rows that share the same shape.
func matchVariable(line string, is1992 bool) (name, desc string, ok bool) {
	if is1992 {
		m := reVar1992.FindStringSubmatch(line)
		if m == nil {
			return "", "", false
		}
		d := strings.TrimSpace(m[2])
		if reCodeTable.MatchString(d) || reStatTable.MatchString(d) {
			return "", "", false
		}
		return "V" + m[1], d, true
	}

	m := reVar1994.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	name = m[1]
	rest := strings.TrimSpace(m[2])
	if isNumberedName(name) && (strings.Contains(rest, "Code") || strings.Contains(rest, "Frequency")) {
		return "", "", false
	}
	if strings.Contains(rest, "Code Frequency") || reVarWord.MatchString(rest) {
		return "", "", false
	}
	// Collapse the duplicated "NAME  NAME  Description" form.
	if fields := strings.SplitN(rest, " ", 2); len(fields) == 2 && strings.TrimSpace(fields[0]) == name {
		rest = strings.TrimSpace(fields[1])
	}
	return name, rest, true
}

// sectionIdentity derives the section code and name from the in-document
// header when present, else from the filename (05_A.txt -> A).
func sectionIdentity(content, path string) (code, name string) {
	stem := strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	code = stem
	if i := strings.IndexByte(stem, '_'); i >= 0 && i+1 < len(stem) {
		code = stem[i+1:]
	}

	head := content
	if len(head) > 2000 {
		head = head[:2000]
	}
	if m := reSectionHeader.FindStringSubmatch(head); m != nil {
		n := strings.Join(strings.Fields(m[2]), " ")
		return m[1], n
	}
	// 1994 coversheet files open with "Household: ..." style headers.
	cover := content
	if len(cover) > 1500 {
		cover = cover[:1500]
	}
	if m := reCoversheet.FindStringSubmatch(cover); m != nil {
		n := strings.TrimSpace(m[1]) + ": " + strings.Join(strings.Fields(m[2]), " ")
		if len(n) > 80 {
			n = n[:80]
		}
		return "CS", n
	}
	return code, "Section " + code
}

func isNumberedName(name string) bool {
	if len(name) < 2 || (name[0] != 'V' && name[0] != 'v') {
		return false
	}
	for i := 1; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return false
		}
	}
	return true
}
