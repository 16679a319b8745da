package parse

import (
	"fmt"

	"github.com/hrsdata/codebook-backend/internal/domain"
	"github.com/hrsdata/codebook-backend/internal/parse/exithtml"
	"github.com/hrsdata/codebook-backend/internal/parse/exittext"
	"github.com/hrsdata/codebook-backend/internal/parse/legacy"
	"github.com/hrsdata/codebook-backend/internal/parse/modern"
	"github.com/hrsdata/codebook-backend/internal/wave"
)

// Dispatcher owns one parser per dialect and routes documents to them.
type Dispatcher struct {
	registry *wave.Registry
	modern   *modern.Parser
	legacy   *legacy.Parser
	exitText *exittext.Parser
	exitHTML *exithtml.Parser
}

func NewDispatcher(registry *wave.Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		modern:   modern.NewParser(registry),
		legacy:   legacy.NewParser(registry),
		exitText: exittext.NewParser(registry),
		exitHTML: exithtml.NewParser(registry),
	}
}

// ParseFile parses a single document. Year 0 means "infer from the path";
// inference failure is fatal for the document.
func (d *Dispatcher) ParseFile(path string, source domain.Source, year int) (*domain.Codebook, error) {
	if year == 0 {
		y, err := InferYear(path)
		if err != nil {
			return nil, err
		}
		year = y
	}
	dialect, err := DialectFor(source, year, path)
	if err != nil {
		return nil, err
	}
	switch dialect {
	case DialectModern:
		cb, _, err := d.modern.Parse(path, source, year)
		return cb, err
	case DialectLegacyMultiFile:
		cb, _, err := d.legacy.ParseFiles([]string{path}, source, year)
		return cb, err
	case DialectExitText:
		cb, _, err := d.exitText.Parse(path, source, year)
		return cb, err
	case DialectExitHTML:
		cb, _, err := d.exitHTML.Parse(path, source, year)
		return cb, err
	}
	return nil, fmt.Errorf("dialect %s: %w", dialect, domain.ErrValidation)
}

// ParseYearFiles merges one survey year's per-section files, the layout of
// the two earliest core releases.
func (d *Dispatcher) ParseYearFiles(paths []string, source domain.Source, year int) (*domain.Codebook, error) {
	cb, _, err := d.legacy.ParseFiles(paths, source, year)
	return cb, err
}
