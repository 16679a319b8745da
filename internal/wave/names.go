package wave

// ExtractBaseName strips a year prefix from a variable name to obtain its
// canonical base name. Known non-empty prefixes are tried newest-year-first;
// a prefix matches when it is a literal prefix of the name, leaves a
// non-empty remainder, and the remainder starts with an uppercase letter,
// digit, or underscore. If no prefix matches, the name is returned as-is.
//
// Because prefixes are single letters, a name that legitimately begins with
// one (e.g. a base name starting with "H") can have a spurious prefix
// stripped. That ambiguity is inherited from the published naming scheme
// and kept as-is for parity with existing catalogs.
func (r *Registry) ExtractBaseName(name string) string {
	for _, year := range r.years {
		prefix := r.prefixByYear[year]
		if prefix == "" || len(name) <= len(prefix) {
			continue
		}
		if name[:len(prefix)] != prefix {
			continue
		}
		rest := name[len(prefix):]
		if isBaseNameStart(rest[0]) {
			return rest
		}
	}
	return name
}

// ConstructVariableName prepends the year's prefix (possibly empty) to a
// base name.
func (r *Registry) ConstructVariableName(baseName string, year int) string {
	if prefix := r.PrefixForYear(year); prefix != "" {
		return prefix + baseName
	}
	return baseName
}

func isBaseNameStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}
