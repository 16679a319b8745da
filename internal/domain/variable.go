package domain

import "strings"

// ValueCode is one discrete coded value a variable can take.
// Immutable once parsed.
type ValueCode struct {
	Code      string `json:"code"`
	Frequency *int   `json:"frequency,omitempty"`
	Label     string `json:"label,omitempty"`
	IsMissing bool   `json:"is_missing"`
	IsRange   bool   `json:"is_range"`
}

// missingCodes is the small vocabulary of codes that mean "no data".
var missingCodes = map[string]bool{
	"blank":   true,
	"missing": true,
	"na":      true,
	"inap":    true,
	"dk":      true,
	"rf":      true,
}

// IsMissingCode reports whether a value code case-insensitively matches the
// missing-value vocabulary (Blank, Missing, NA, INAP, DK, RF).
func IsMissingCode(code string) bool {
	return missingCodes[strings.ToLower(code)]
}

// IsRangeCode reports whether a value code is a digits-digits range
// (e.g. "010003-959738").
func IsRangeCode(code string) bool {
	dash := strings.IndexByte(code, '-')
	if dash <= 0 || dash == len(code)-1 {
		return false
	}
	return isDigits(code[:dash]) && isDigits(code[dash+1:])
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NewValueCode builds a ValueCode, deriving IsMissing and IsRange from the code.
func NewValueCode(code string, frequency *int, label string) ValueCode {
	return ValueCode{
		Code:      code,
		Frequency: frequency,
		Label:     label,
		IsMissing: IsMissingCode(code),
		IsRange:   IsRangeCode(code),
	}
}

// Assignment is an ASSIGN: expression attached to a variable, with the
// variable names referenced by the expression.
type Assignment struct {
	Expression         string   `json:"expression"`
	ReferenceVariables []string `json:"reference_variables,omitempty"`
}

// Reference is a Ref: line attached to a variable, with the best-effort
// resolved variable name when one could be extracted.
type Reference struct {
	Reference          string `json:"reference"`
	ReferencedVariable string `json:"referenced_variable,omitempty"`
}

// Variable is one variable from a parsed codebook. Created once per parse
// pass and never mutated afterwards.
type Variable struct {
	Name        string  `json:"name"`
	Year        int     `json:"year"`
	Section     string  `json:"section"`
	Level       Level   `json:"level"`
	Description string  `json:"description"`
	Type        VarType `json:"type"`
	Width       int     `json:"width"`
	Decimals    int     `json:"decimals"`

	ValueCodes    []ValueCode `json:"value_codes,omitempty"`
	HasValueCodes bool        `json:"has_value_codes"`

	Assignments []Assignment `json:"assignments,omitempty"`
	References  []Reference  `json:"references,omitempty"`

	IsDerived    bool   `json:"is_derived"`
	IsIdentifier bool   `json:"is_identifier"`
	Notes        string `json:"notes,omitempty"`
}

// identifierKeywords mark a variable as an identifier when found in its
// name or description.
var identifierKeywords = []string{"IDENTIFICATION", "ID", "NUMBER", "HHID", "PN"}

// IsIdentifierVariable reports whether a variable name/description pair
// looks like a record identifier (HHID, PN, sub-household number, ...).
func IsIdentifierVariable(name, description string) bool {
	n := strings.ToUpper(name)
	d := strings.ToUpper(description)
	for _, kw := range identifierKeywords {
		if strings.Contains(n, kw) || strings.Contains(d, kw) {
			return true
		}
	}
	return false
}
