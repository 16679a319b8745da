package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if err := c.Sources.validate(); err != nil {
		return fmt.Errorf("sources: %w", err)
	}

	return nil
}

func (s *SourcesConfig) validate() error {
	if s.ParallelFiles <= 0 {
		return fmt.Errorf("parallel_files must be > 0 (got %d)", s.ParallelFiles)
	}

	var err error
	if s.CoreYears, err = ParseYearRange(s.CoreYearsRaw); err != nil {
		return fmt.Errorf("core_years: %w", err)
	}
	if s.ExitYears, err = ParseYearRange(s.ExitYearsRaw); err != nil {
		return fmt.Errorf("exit_years: %w", err)
	}
	if s.PostExitRange, err = ParseYearRange(s.PostExitYears); err != nil {
		return fmt.Errorf("post_exit_years: %w", err)
	}

	return nil
}

// ParseYearRange parses a year list spec: either "1992-2022" (inclusive,
// biennial step) or a comma-separated list "1992,1994,1996". An empty
// string returns a nil slice.
func ParseYearRange(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if lo, hi, ok := strings.Cut(raw, "-"); ok {
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("invalid range start %q: %w", lo, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("invalid range end %q: %w", hi, err)
		}
		if end < start {
			return nil, fmt.Errorf("range end %d before start %d", end, start)
		}
		var years []int
		for y := start; y <= end; y += 2 {
			years = append(years, y)
		}
		return years, nil
	}

	parts := strings.Split(raw, ",")
	years := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		y, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q: %w", p, err)
		}
		years = append(years, y)
	}
	return years, nil
}
