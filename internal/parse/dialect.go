// Package parse routes codebook documents to the dialect parser that
// understands their layout and exposes a single entry point over the four
// dialect packages.
package parse

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hrsdata/codebook-backend/internal/domain"
)

// Dialect identifies one of the closed set of document grammars. Dispatch
// happens over this tag, never over file contents.
type Dialect int

const (
	// DialectModern is the single-file text layout used by core
	// codebooks from 1996 onward.
	DialectModern Dialect = iota
	// DialectLegacyMultiFile is the per-section multi-file text layout
	// used by the 1992 and 1994 core releases.
	DialectLegacyMultiFile
	// DialectExitText is the combined-metadata text layout used by exit
	// and post-exit codebooks.
	DialectExitText
	// DialectExitHTML is the table-based HTML layout used by early exit
	// codebooks.
	DialectExitHTML
)

func (d Dialect) String() string {
	switch d {
	case DialectModern:
		return "modern"
	case DialectLegacyMultiFile:
		return "legacy_multi_file"
	case DialectExitText:
		return "exit_text"
	case DialectExitHTML:
		return "exit_html"
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

// DialectFor selects the grammar for a document given its source, survey
// year, and file path. The extension decides between HTML and text for
// exit codebooks.
func DialectFor(source domain.Source, year int, path string) (Dialect, error) {
	switch source {
	case domain.SourceCore:
		if year == 1992 || year == 1994 {
			return DialectLegacyMultiFile, nil
		}
		return DialectModern, nil
	case domain.SourceExit:
		switch strings.ToLower(filepath.Ext(path)) {
		case ".html", ".htm":
			return DialectExitHTML, nil
		default:
			return DialectExitText, nil
		}
	case domain.SourcePostExit:
		return DialectExitText, nil
	}
	return 0, fmt.Errorf("source %q: %w", source, domain.ErrValidation)
}
