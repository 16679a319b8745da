package parse

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/hrsdata/codebook-backend/internal/domain"
)

var (
	reStemYear  = regexp.MustCompile(`(?i)(?:px|h|x)(\d{2,4})`)
	reAnyFourDg = regexp.MustCompile(`\d{4}`)
)

// InferYear determines the survey year a document belongs to from its file
// name, falling back to 4-digit path segments (release directories are
// commonly named after the year). Returns ErrYearUnknown when nothing in
// the path resolves to a plausible year.
//
// Two-digit suffixes are expanded around the century break: x95cb is 1995,
// px02cb is 2002.
func InferYear(path string) (int, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if m := reStemYear.FindStringSubmatch(stem); m != nil {
		if y, ok := expandYear(m[1]); ok {
			return y, nil
		}
	}
	if m := reAnyFourDg.FindString(stem); m != "" {
		if y, _ := strconv.Atoi(m); plausibleYear(y) {
			return y, nil
		}
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) != 4 {
			continue
		}
		if y, err := strconv.Atoi(part); err == nil && plausibleYear(y) {
			return y, nil
		}
	}
	return 0, fmt.Errorf("path %q: %w", path, domain.ErrYearUnknown)
}

func expandYear(digits string) (int, bool) {
	y, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	if len(digits) == 4 {
		return y, plausibleYear(y)
	}
	if len(digits) != 2 {
		return 0, false
	}
	if y >= 90 {
		y += 1900
	} else {
		y += 2000
	}
	return y, plausibleYear(y)
}

func plausibleYear(y int) bool { return y >= 1990 && y <= 2030 }
