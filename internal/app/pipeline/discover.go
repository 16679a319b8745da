package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hrsdata/codebook-backend/internal/config"
	"github.com/hrsdata/codebook-backend/internal/domain"
)

// Batch is one unit of parse work: the document file(s) backing a single
// (source, year) codebook. Legacy multi-file years carry many paths; every
// other dialect carries exactly one.
type Batch struct {
	Source domain.Source
	Year   int
	Paths  []string
}

// Key returns the batch identity for logs and error reports.
func (b Batch) Key() string {
	return fmt.Sprintf("%s/%d", b.Source, b.Year)
}

// legacyYear reports whether a core year is stored as per-section files.
func legacyYear(source domain.Source, year int) bool {
	return source == domain.SourceCore && (year == 1992 || year == 1994)
}

// Discover walks the configured data directory and returns the parse
// batches for the requested sources. Layout: <data_dir>/<source_dir>/<year>/
// with .txt (or .html for exit) documents inside. Year directories that do
// not exist are silently skipped — not every source covers every year.
func Discover(cfg config.SourcesConfig, sources []domain.Source) ([]Batch, error) {
	var batches []Batch

	for _, source := range sources {
		dir, years, err := sourceLayout(cfg, source)
		if err != nil {
			return nil, err
		}

		for _, year := range years {
			yearDir := filepath.Join(cfg.DataDir, dir, strconv.Itoa(year))
			paths, err := documentFiles(yearDir)
			if err != nil {
				return nil, fmt.Errorf("discover %s/%d: %w", source, year, err)
			}
			if len(paths) == 0 {
				continue
			}

			if !legacyYear(source, year) {
				// One document per year; extra files are alternates
				// (sorted order makes the pick deterministic).
				paths = paths[:1]
			}
			batches = append(batches, Batch{Source: source, Year: year, Paths: paths})
		}
	}

	return batches, nil
}

func sourceLayout(cfg config.SourcesConfig, source domain.Source) (dir string, years []int, err error) {
	switch source {
	case domain.SourceCore:
		return cfg.CoreDir, cfg.CoreYears, nil
	case domain.SourceExit:
		return cfg.ExitDir, cfg.ExitYears, nil
	case domain.SourcePostExit:
		return cfg.PostExitDir, cfg.PostExitRange, nil
	default:
		return "", nil, fmt.Errorf("source %q: %w", source, domain.ErrValidation)
	}
}

// documentFiles lists the codebook documents directly inside dir, sorted.
// A missing directory is not an error.
func documentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		switch ext {
		case ".txt", ".html", ".htm":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
