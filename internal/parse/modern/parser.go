// Package modern parses the single-file text codebook layout used by core
// releases from 1996 onward. One file covers the whole year: section
// headers, variable lines with a metadata line nearby, then value codes and
// cross-references until a separator.
package modern

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/hrsdata/codebook-backend/internal/domain"
	"github.com/hrsdata/codebook-backend/internal/parse/scan"
	"github.com/hrsdata/codebook-backend/internal/wave"
)

// metadataWindow bounds how far past a variable line the metadata line may
// sit. Documents from 2002/2004 put up to two blank lines in between.
const metadataWindow = 4

var reReleaseType = regexp.MustCompile(`(?m)HRS\s+\d{4}\s+(.+?)\s*$`)

// Stats summarizes one parse pass.
type Stats struct {
	Sections   int
	Variables  int
	ValueCodes int
}

// Parser parses modern core codebook files.
type Parser struct {
	registry *wave.Registry
}

func NewParser(registry *wave.Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse reads and parses one codebook file. A missing file is an I/O
// error, not a parse failure.
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

// ParseContent parses an in-memory document. A document that yields zero
// sections and zero variables is a valid empty codebook.
func (p *Parser) ParseContent(content string, source domain.Source, year int) (*domain.Codebook, Stats) {
	cb := &domain.Codebook{
		Source:      source,
		Year:        year,
		ReleaseType: extractReleaseType(content),
		ParsedAt:    time.Now(),
	}
	if w, ok := p.registry.WaveForYear(year); ok {
		cb.Wave = &w
	}

	sections := map[domain.SectionKey]int{} // key -> index into cb.Sections
	var (
		curSection string
		curLevel   domain.Level
	)

	c := scan.NewCursor(content)
	var stats Stats
	for !c.EOF() {
		line := strings.TrimSpace(c.Line())

		if hdr, ok := scan.MatchSectionHeader(line); ok {
			curSection = hdr.Code
			curLevel = scan.ParseLevel(hdr.LevelRaw)
			key := domain.SectionKey{Code: hdr.Code, Level: curLevel}
			if _, exists := sections[key]; !exists {
				sections[key] = len(cb.Sections)
				cb.Sections = append(cb.Sections, domain.Section{
					Code:  hdr.Code,
					Name:  hdr.Name,
					Level: curLevel,
					Year:  year,
				})
				stats.Sections++
			}
			c.Advance()
			continue
		}

		if curSection == "" {
			c.Advance()
			continue
		}

		name, desc, isVar := scan.MatchVariableLine(line)
		if !isVar {
			// Older years put the name alone; the description may be on
			// the next line with metadata after it.
			if n, ok := scan.MatchNameOnly(line); ok {
				name, desc, isVar = n, n, true
				if next, ok := c.Peek(1); ok {
					if _, isMeta := scan.MatchMetadata(next); !isMeta {
						if nn, ok := c.Peek(2); ok {
							if _, isMeta := scan.MatchMetadata(nn); isMeta && strings.TrimSpace(next) != "" {
								desc = strings.TrimSpace(next)
							}
						}
					}
				}
			}
		}
		if !isVar {
			c.Advance()
			continue
		}

		metaIdx, ok := c.LookAhead(metadataWindow, func(l string) bool {
			_, isMeta := scan.MatchMetadata(l)
			return isMeta
		})
		if !ok {
			// No metadata in the window: not a variable after all.
			c.Advance()
			continue
		}
		md, _ := scan.MatchMetadata(c.LineAt(metaIdx))

		v := domain.Variable{
			Name:        name,
			Year:        year,
			Section:     curSection,
			Level:       curLevel,
			Description: desc,
			Type:        md.Type,
			Width:       md.Width,
			Decimals:    md.Decimals,
		}
		if md.Section != "" {
			v.Section = md.Section
		}
		if md.HasLevel {
			v.Level = scan.ParseLevel(md.LevelRaw)
		}
		v.IsIdentifier = domain.IsIdentifierVariable(name, desc)

		c.SetPos(metaIdx + 1)
		p.parseTrailing(c, &v)
		v.HasValueCodes = len(v.ValueCodes) > 0
		stats.ValueCodes += len(v.ValueCodes)

		cb.Variables = append(cb.Variables, v)
		stats.Variables++

		secKey := domain.SectionKey{Code: curSection, Level: curLevel}
		idx, exists := sections[secKey]
		if !exists {
			// Metadata referenced a section without a header; attach to
			// the ambient one.
			sections[secKey] = len(cb.Sections)
			cb.Sections = append(cb.Sections, domain.Section{
				Code: curSection, Level: curLevel, Year: year,
			})
			idx = sections[secKey]
			stats.Sections++
		}
		cb.Sections[idx].Variables = append(cb.Sections[idx].Variables, name)
	}

	cb.Finalize()
	return cb, stats
}

// parseTrailing consumes value codes, assignments, references, and notes
// following a variable's metadata line. It stops at a separator, a section
// header, or the next variable line, leaving the cursor on the stop line.
func (p *Parser) parseTrailing(c *scan.Cursor, v *domain.Variable) {
	for !c.EOF() {
		raw := c.Line()
		line := strings.TrimSpace(raw)

		if scan.IsSeparator(line) {
			c.Advance()
			return
		}
		if _, ok := scan.MatchSectionHeader(line); ok {
			return
		}
		if a, ok := scan.MatchAssign(line); ok {
			v.Assignments = append(v.Assignments, a)
			c.Advance()
			continue
		}
		if r, ok := scan.MatchRef(line); ok {
			v.References = append(v.References, r)
			c.Advance()
			continue
		}
		if line == "*" {
			v.Notes = "*"
			c.Advance()
			continue
		}
		if vc, ok := scan.MatchValueCode(raw); ok {
			label := vc.Label
			// Multi-line labels continue until a blank line or the next
			// recognized construct.
			for {
				next, ok := c.Peek(1)
				if !ok {
					break
				}
				nt := strings.TrimSpace(next)
				if nt == "" || scan.IsSeparator(nt) || scan.IsNumberLed(next) {
					break
				}
				if nvc, isVC := scan.MatchValueCode(next); isVC && nvc.Strong() {
					break
				}
				if _, isAssign := scan.MatchAssign(nt); isAssign {
					break
				}
				if _, isRef := scan.MatchRef(nt); isRef {
					break
				}
				if _, isHdr := scan.MatchSectionHeader(nt); isHdr {
					break
				}
				if _, _, isVar := scan.MatchVariableLine(nt); isVar {
					break
				}
				label += " " + nt
				c.Advance()
			}
			v.ValueCodes = append(v.ValueCodes, domain.NewValueCode(vc.Code, vc.Frequency, label))
			c.Advance()
			continue
		}
		if _, _, isVar := scan.MatchVariableLine(line); isVar {
			return
		}
		c.Advance()
	}
}

// extractReleaseType pulls the release designation (e.g. "Final Release")
// from the document header.
func extractReleaseType(content string) string {
	head := content
	if len(head) > 500 {
		head = head[:500]
	}
	if m := reReleaseType.FindStringSubmatch(head); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
