// Package exithtml parses the table-formatted HTML exit codebooks of the
// early survey years. A streaming tag scanner folds td/th cell text into
// rows; a row whose first cell looks like a variable name starts a new
// variable, any other row becomes a value code of the current one. All
// variables land in a single synthetic "Exit" section at Respondent level.
package exithtml

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/hrsdata/codebook-backend/internal/domain"
	"github.com/hrsdata/codebook-backend/internal/parse/scan"
	"github.com/hrsdata/codebook-backend/internal/wave"
)

const maxDescriptionLen = 500

// fallbackSkip lists name-shaped tokens that are markup noise, not
// variables.
var fallbackSkip = map[string]bool{"HTML": true, "HTTP": true, "PDF": true, "DOC": true}

var reFallbackLine = regexp.MustCompile(`^\s*([A-Z][A-Z0-9_]{2,32})\s*[-–:]?\s+(.+)$`)

// Stats summarizes one parse pass.
type Stats struct {
	Variables  int
	ValueCodes int
	Fallback   bool
}

// Parser parses exit codebook HTML files.
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
	var stats Stats
	vars := extractTables(content)
	if len(vars) == 0 {
		vars = extractFallback(content)
		stats.Fallback = len(vars) > 0
	}

	cb := &domain.Codebook{
		Source:   source,
		Year:     year,
		ParsedAt: time.Now(),
	}
	if w, ok := p.registry.WaveForYear(year); ok {
		cb.Wave = &w
	}

	section := domain.Section{
		Code:  "EX",
		Name:  "Exit",
		Level: domain.LevelRespondent,
		Year:  year,
	}
	for i := range vars {
		v := &vars[i]
		v.Year = year
		v.Section = section.Code
		v.Level = domain.LevelRespondent
		if v.Description == "" {
			v.Description = v.Name
		}
		v.HasValueCodes = len(v.ValueCodes) > 0
		v.IsIdentifier = domain.IsIdentifierVariable(v.Name, v.Description)
		section.Variables = append(section.Variables, v.Name)
		stats.Variables++
		stats.ValueCodes += len(v.ValueCodes)
	}
	cb.Variables = vars
	cb.Sections = []domain.Section{section}
	cb.Finalize()
	return cb, stats
}

// extractTables streams the document's tags, accumulating cell text into
// row buffers and interpreting each completed row.
func extractTables(content string) []domain.Variable {
	var (
		vars     []domain.Variable
		rowCells []string
		cellBuf  []string
		inCell   bool
		skipTag  string
	)

	flushRow := func() {
		if len(rowCells) > 0 {
			processRow(rowCells, &vars)
			rowCells = nil
		}
	}

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			flushRow()
			return vars
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skipTag = string(name)
			case "td", "th":
				inCell = true
				cellBuf = nil
			case "tr", "table":
				flushRow()
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case skipTag:
				skipTag = ""
			case "td", "th":
				inCell = false
				rowCells = append(rowCells, strings.TrimSpace(strings.Join(cellBuf, " ")))
			case "tr", "table":
				flushRow()
			}
		case html.TextToken:
			if inCell && skipTag == "" {
				if t := strings.TrimSpace(string(z.Text())); t != "" {
					cellBuf = append(cellBuf, t)
				}
			}
		}
	}
}

// processRow appends either a new variable or a value code of the last one.
func processRow(cells []string, vars *[]domain.Variable) {
	if len(cells) < 2 {
		return
	}
	first := strings.TrimSpace(cells[0])
	if first == "" {
		return
	}

	if scan.IsNameToken(first) {
		desc := strings.TrimSpace(cells[1])
		v := domain.Variable{
			Name:        first,
			Description: desc,
			Type:        parseType(cellAt(cells, 2)),
		}
		if w := cellAt(cells, 3); w != "" {
			if n, err := strconv.Atoi(w); err == nil {
				v.Width = n
			}
		}
		*vars = append(*vars, v)
		return
	}

	if len(*vars) == 0 {
		return
	}
	code := first
	label := strings.TrimSpace(cells[1])
	var freq *int
	if f := strings.ReplaceAll(cellAt(cells, 2), ",", ""); f != "" {
		if n, err := strconv.Atoi(f); err == nil {
			freq = &n
		}
	}
	if code == "" && label == "" {
		return
	}
	cur := &(*vars)[len(*vars)-1]
	cur.ValueCodes = append(cur.ValueCodes, domain.NewValueCode(code, freq, label))
}

// extractFallback scans the flattened text for name/description pairs when
// the document carries no usable tables.
func extractFallback(content string) []domain.Variable {
	var vars []domain.Variable
	for _, line := range strings.Split(flatten(content), "\n") {
		m := reFallbackLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		if fallbackSkip[name] {
			continue
		}
		desc := strings.TrimSpace(m[2])
		if len(desc) > maxDescriptionLen {
			desc = desc[:maxDescriptionLen]
		}
		vars = append(vars, domain.Variable{
			Name:        name,
			Description: desc,
			Type:        domain.TypeCharacter,
		})
	}
	return vars
}

// flatten strips tags from the document, preserving line structure.
func flatten(content string) string {
	var b strings.Builder
	skipTag := ""
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skipTag = string(name)
			case "br", "p", "div", "tr":
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == skipTag {
				skipTag = ""
			}
		case html.TextToken:
			if skipTag == "" {
				b.Write(z.Text())
			}
		}
	}
}

func parseType(s string) domain.VarType {
	ls := strings.ToLower(strings.TrimSpace(s))
	if strings.Contains(ls, "num") || strings.Contains(ls, "int") || strings.Contains(ls, "float") {
		return domain.TypeNumeric
	}
	return domain.TypeCharacter
}

func cellAt(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}
