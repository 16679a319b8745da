package scan

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hrsdata/codebook-backend/internal/domain"
)

// Line grammar, one compiled rule per recognized shape. Each Match*
// function takes a raw line and reports whether the rule applies.
var (
	// Section A: Demographics (Respondent) — level part optional.
	reSectionHeader = regexp.MustCompile(`(?i)^section\s+([A-Z0-9]+):\s+(.+?)(?:\s+\((.+?)\))?\s*$`)

	// VARNAME  two-or-more spaces  description.
	reVariableLine = regexp.MustCompile(`^([A-Z0-9_]+)\s{2,}(.+)$`)

	// Variable name alone on a line.
	reNameOnly = regexp.MustCompile(`^([A-Z0-9_]+)\s*$`)

	reMetaSection  = regexp.MustCompile(`[Ss]ection:\s*([A-Z]+)`)
	reMetaLevel    = regexp.MustCompile(`Level:\s*([^T]+?)(?:\s+Type:|$)`)
	reMetaType     = regexp.MustCompile(`Type:\s*(\w+)`)
	reMetaWidth    = regexp.MustCompile(`Width:\s*(\d+)`)
	reMetaDecimals = regexp.MustCompile(`Decimals:\s*(\d+)`)

	// Optional frequency, code with optional trailing period, label.
	reValueFreqCodeLabel = regexp.MustCompile(`^\s*(\d+)?\s+([^\s.]+)(\.)?\s+(.+)$`)

	reNumberLed = regexp.MustCompile(`^\s*\d+\s+`)

	// Older documents anchor the code on a period and may put the
	// frequency after the code with no label at all.
	reLegacyFreqCodeLabel = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s*\.\s+(.+)$`)
	reLegacyCodeLabel     = regexp.MustCompile(`^\s*(\d+)\s*\.\s+(.+)$`)
	reLegacyWordLabel     = regexp.MustCompile(`^\s*([A-Za-z]+)\s*\.\s+(.+)$`)
	reLegacyCodeFreq      = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s*$`)

	reAssign = regexp.MustCompile(`(?i)^ASSIGN:\s*(.+)$`)
	reRef    = regexp.MustCompile(`(?i)^Ref:\s*(.+)$`)

	// Variable names referenced inside expressions: letter then digits.
	reRefVariable = regexp.MustCompile(`[A-Z]\d+[A-Z0-9_]*`)

	reSeparator = regexp.MustCompile(`^={10,}`)

	// Bare variable-name token (HTML cells, fallback extraction).
	reNameToken = regexp.MustCompile(`^[A-Z][A-Z0-9_]{1,32}$`)
)

// SectionHeader is a recognized "Section X: Name (Level)" line.
type SectionHeader struct {
	Code     string
	Name     string
	LevelRaw string // "" when the header has no level part
}

// MatchSectionHeader recognizes a section header line. The "section"
// keyword is matched case-insensitively.
func MatchSectionHeader(line string) (SectionHeader, bool) {
	m := reSectionHeader.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return SectionHeader{}, false
	}
	return SectionHeader{Code: m[1], Name: strings.TrimSpace(m[2]), LevelRaw: strings.TrimSpace(m[3])}, true
}

// MatchVariableLine recognizes "NAME  description" (two or more spaces
// between the leading token and the description).
func MatchVariableLine(line string) (name, description string, ok bool) {
	m := reVariableLine.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// MatchNameOnly recognizes a variable name alone on a line.
func MatchNameOnly(line string) (string, bool) {
	m := reNameOnly.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// Metadata is a parsed "Type:/Width:" metadata line. Section and Level are
// optional overrides of the ambient section context.
type Metadata struct {
	Section  string
	HasLevel bool
	LevelRaw string
	HasType  bool
	Type     domain.VarType
	Width    int
	Decimals int
}

// MatchMetadata recognizes a metadata line. A line qualifies only when it
// carries Type: or Width: — this is the discriminator that keeps value-code
// lines from being misread as metadata.
func MatchMetadata(line string) (Metadata, bool) {
	typeM := reMetaType.FindStringSubmatch(line)
	widthM := reMetaWidth.FindStringSubmatch(line)
	if typeM == nil && widthM == nil {
		return Metadata{}, false
	}

	var md Metadata
	if secM := reMetaSection.FindStringSubmatch(line); secM != nil {
		md.Section = secM[1]
	}
	if lvlM := reMetaLevel.FindStringSubmatch(line); lvlM != nil {
		md.HasLevel = true
		md.LevelRaw = strings.TrimSpace(lvlM[1])
	}
	if typeM != nil {
		md.HasType = true
		if strings.Contains(typeM[1], "Character") {
			md.Type = domain.TypeCharacter
		} else if strings.Contains(typeM[1], "Numeric") {
			md.Type = domain.TypeNumeric
		} else {
			md.Type = domain.TypeNumeric
		}
	} else {
		md.Type = domain.TypeCharacter
	}
	if widthM != nil {
		md.Width, _ = strconv.Atoi(widthM[1])
	}
	if decM := reMetaDecimals.FindStringSubmatch(line); decM != nil {
		md.Decimals, _ = strconv.Atoi(decM[1])
	}
	return md, true
}

// ValueCodeLine is a recognized value-code line before label continuation.
// Dotted records whether the code carried its terminating period; together
// with Frequency it separates genuine value-code lines from wrapped label
// text that happens to fit the loose token-token shape.
type ValueCodeLine struct {
	Frequency *int
	Code      string
	Label     string
	Dotted    bool
}

// Strong reports whether the line is unambiguously a value code: it carries
// a frequency or a period-terminated code. Label continuation stops at
// strong lines only.
func (v ValueCodeLine) Strong() bool { return v.Frequency != nil || v.Dotted }

// MatchValueCode recognizes "frequency  code.  label" and "code.  label".
// The line must be indented or carry a frequency, which keeps prose from
// qualifying.
func MatchValueCode(line string) (ValueCodeLine, bool) {
	m := reValueFreqCodeLabel.FindStringSubmatch(line)
	if m == nil {
		return ValueCodeLine{}, false
	}
	var freq *int
	if m[1] != "" {
		if f, err := strconv.Atoi(m[1]); err == nil {
			freq = &f
		}
	}
	return ValueCodeLine{Frequency: freq, Code: m[2], Label: strings.TrimSpace(m[4]), Dotted: m[3] != ""}, true
}

// IsNumberLed reports whether the line opens with an integer followed by
// whitespace, the shape of frequency-led rows.
func IsNumberLed(line string) bool { return reNumberLed.MatchString(strings.TrimSpace(line)) }

// MatchLegacyValueCode recognizes the older period-anchored value-code
// forms: "freq  code.  label", "code.  label", "Blank.  label", and the
// label-less "code  frequency".
func MatchLegacyValueCode(line string) (ValueCodeLine, bool) {
	if m := reLegacyFreqCodeLabel.FindStringSubmatch(line); m != nil {
		f, _ := strconv.Atoi(m[1])
		return ValueCodeLine{Frequency: &f, Code: m[2], Label: strings.TrimSpace(m[3]), Dotted: true}, true
	}
	if m := reLegacyCodeLabel.FindStringSubmatch(line); m != nil {
		return ValueCodeLine{Code: m[1], Label: strings.TrimSpace(m[2]), Dotted: true}, true
	}
	if m := reLegacyWordLabel.FindStringSubmatch(line); m != nil {
		return ValueCodeLine{Code: m[1], Label: strings.TrimSpace(m[2]), Dotted: true}, true
	}
	if m := reLegacyCodeFreq.FindStringSubmatch(line); m != nil {
		f, _ := strconv.Atoi(m[2])
		return ValueCodeLine{Frequency: &f, Code: m[1]}, true
	}
	return ValueCodeLine{}, false
}

// MatchAssign recognizes an "ASSIGN: expression" line and extracts the
// variable names referenced by the expression.
func MatchAssign(line string) (domain.Assignment, bool) {
	m := reAssign.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return domain.Assignment{}, false
	}
	expr := strings.TrimSpace(m[1])
	return domain.Assignment{
		Expression:         expr,
		ReferenceVariables: reRefVariable.FindAllString(expr, -1),
	}, true
}

// MatchRef recognizes a "Ref: ..." line, resolving a referenced variable
// name when one is present in the text.
func MatchRef(line string) (domain.Reference, bool) {
	m := reRef.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return domain.Reference{}, false
	}
	ref := domain.Reference{Reference: strings.TrimSpace(m[1])}
	if v := reRefVariable.FindString(ref.Reference); v != "" {
		ref.ReferencedVariable = v
	}
	return ref, true
}

// IsSeparator reports whether the line is a variable terminator: ten or
// more '=' characters.
func IsSeparator(line string) bool {
	return reSeparator.MatchString(strings.TrimSpace(line))
}

// IsNameToken reports whether a bare token looks like a variable name.
func IsNameToken(s string) bool {
	return reNameToken.MatchString(s)
}

// ParseLevel maps a free-form level string onto the closed level vocabulary
// by substring containment. Unrecognized strings default to Respondent.
func ParseLevel(s string) domain.Level {
	ls := strings.ToLower(strings.TrimSpace(s))
	switch {
	case ls == "":
		return domain.LevelRespondent
	case strings.Contains(ls, "to child"):
		return domain.LevelToChild
	case strings.Contains(ls, "from child"):
		return domain.LevelFromChild
	case strings.Contains(ls, "member") || strings.Contains(ls, "child"):
		return domain.LevelHHMemberChild
	case strings.Contains(ls, "household") || ls == "hh":
		return domain.LevelHousehold
	case strings.Contains(ls, "job"):
		return domain.LevelJobs
	case strings.Contains(ls, "pension"):
		return domain.LevelPension
	case strings.Contains(ls, "sibling"):
		return domain.LevelSiblings
	case strings.Contains(ls, "helper"):
		return domain.LevelHelper
	case strings.Contains(ls, "preload"):
		return domain.LevelPreload
	case strings.Contains(ls, "master"):
		return domain.LevelMasterCodes
	case strings.Contains(ls, "other"):
		return domain.LevelOther
	default:
		return domain.LevelRespondent
	}
}
