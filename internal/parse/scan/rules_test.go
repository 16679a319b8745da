package scan

import (
	"testing"

	"github.com/hrsdata/codebook-backend/internal/domain"
)

func TestMatchSectionHeader(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		want  SectionHeader
		match bool
	}{
		{
			name:  "with level",
			line:  "Section A: Coverscreen (Household)",
			want:  SectionHeader{Code: "A", Name: "Coverscreen", LevelRaw: "Household"},
			match: true,
		},
		{
			name:  "without level",
			line:  "Section PR: Preload",
			want:  SectionHeader{Code: "PR", Name: "Preload"},
			match: true,
		},
		{
			name:  "case insensitive keyword",
			line:  "SECTION B: Demographics (Respondent)",
			want:  SectionHeader{Code: "B", Name: "Demographics", LevelRaw: "Respondent"},
			match: true,
		},
		{
			name:  "numeric section code",
			line:  "Section 0: Identification Variables",
			want:  SectionHeader{Code: "0", Name: "Identification Variables"},
			match: true,
		},
		{name: "plain text", line: "This document describes sections.", match: false},
		{name: "missing colon", line: "Section A Coverscreen", match: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchSectionHeader(tt.line)
			if ok != tt.match {
				t.Fatalf("MatchSectionHeader(%q) ok = %v, want %v", tt.line, ok, tt.match)
			}
			if ok && got != tt.want {
				t.Errorf("MatchSectionHeader(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestMatchVariableLine(t *testing.T) {
	tests := []struct {
		line     string
		wantName string
		wantDesc string
		match    bool
	}{
		{"RSUBHH     2020 SUB-HOUSEHOLD IDENTIFICATION", "RSUBHH", "2020 SUB-HOUSEHOLD IDENTIFICATION", true},
		{"SA500  AMOUNT OF TRANSFER", "SA500", "AMOUNT OF TRANSFER", true},
		{"X060_R  EXIT STATUS", "X060_R", "EXIT STATUS", true},
		// single space does not qualify
		{"RSUBHH 2020 SUB-HOUSEHOLD", "", "", false},
		{"lowercase  not a variable", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		name, desc, ok := MatchVariableLine(tt.line)
		if ok != tt.match {
			t.Fatalf("MatchVariableLine(%q) ok = %v, want %v", tt.line, ok, tt.match)
		}
		if name != tt.wantName || desc != tt.wantDesc {
			t.Errorf("MatchVariableLine(%q) = (%q, %q), want (%q, %q)", tt.line, name, desc, tt.wantName, tt.wantDesc)
		}
	}
}

func TestMatchMetadata(t *testing.T) {
	t.Run("combined line", func(t *testing.T) {
		md, ok := MatchMetadata("Section: A    Level: Household       Type: Character  Width: 6  Decimals: 0")
		if !ok {
			t.Fatal("expected metadata match")
		}
		if md.Section != "A" {
			t.Errorf("Section = %q, want A", md.Section)
		}
		if !md.HasLevel || md.LevelRaw != "Household" {
			t.Errorf("LevelRaw = %q (has=%v), want Household", md.LevelRaw, md.HasLevel)
		}
		if md.Type != domain.TypeCharacter {
			t.Errorf("Type = %q, want Character", md.Type)
		}
		if md.Width != 6 || md.Decimals != 0 {
			t.Errorf("Width/Decimals = %d/%d, want 6/0", md.Width, md.Decimals)
		}
	})

	t.Run("type and width only", func(t *testing.T) {
		md, ok := MatchMetadata("         Type: Numeric     Width: 2")
		if !ok {
			t.Fatal("expected metadata match")
		}
		if md.Type != domain.TypeNumeric || md.Width != 2 {
			t.Errorf("got %+v", md)
		}
		if md.HasLevel {
			t.Error("HasLevel should be false")
		}
	})

	t.Run("width without type defaults to Character", func(t *testing.T) {
		md, ok := MatchMetadata("Width: 8")
		if !ok {
			t.Fatal("expected metadata match")
		}
		if md.HasType {
			t.Error("HasType should be false")
		}
		if md.Type != domain.TypeCharacter {
			t.Errorf("Type = %q, want Character default", md.Type)
		}
	})

	// The discriminator: lines with neither Type: nor Width: are not
	// metadata, even when they mention Section or Level.
	t.Run("requires type or width", func(t *testing.T) {
		if _, ok := MatchMetadata("Section: A  Level: Household"); ok {
			t.Error("line without Type:/Width: must not match")
		}
		if _, ok := MatchMetadata("    1.  YES"); ok {
			t.Error("value code line must not match metadata")
		}
	})
}

func TestMatchValueCode(t *testing.T) {
	intp := func(v int) *int { return &v }
	tests := []struct {
		name  string
		line  string
		want  ValueCodeLine
		match bool
	}{
		{
			name:  "frequency code label",
			line:  "       9012           1.  YES",
			want:  ValueCodeLine{Frequency: intp(9012), Code: "1", Label: "YES"},
			match: true,
		},
		{
			name:  "code label without frequency",
			line:  "         5.  NO OTHER RESIDENCE",
			want:  ValueCodeLine{Code: "5", Label: "NO OTHER RESIDENCE"},
			match: true,
		},
		{
			name:  "range code",
			line:  "  11490           010003-959738.  Household Identification Number",
			want:  ValueCodeLine{Frequency: intp(11490), Code: "010003-959738", Label: "Household Identification Number"},
			match: true,
		},
		{
			name:  "blank code",
			line:  "    404         Blank.  INAP (Inapplicable)",
			want:  ValueCodeLine{Frequency: intp(404), Code: "Blank", Label: "INAP (Inapplicable)"},
			match: true,
		},
		{
			name:  "bare code and label",
			line:  "  1  18-30",
			want:  ValueCodeLine{Code: "1", Label: "18-30"},
			match: true,
		},
		{name: "separator", line: "==============================", match: false},
		{name: "prose without leading space", line: "ASSIGN: X determined by Y", match: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchValueCode(tt.line)
			if ok != tt.match {
				t.Fatalf("MatchValueCode(%q) ok = %v, want %v", tt.line, ok, tt.match)
			}
			if !ok {
				return
			}
			if got.Code != tt.want.Code || got.Label != tt.want.Label {
				t.Errorf("got code=%q label=%q, want code=%q label=%q", got.Code, got.Label, tt.want.Code, tt.want.Label)
			}
			switch {
			case tt.want.Frequency == nil && got.Frequency != nil:
				t.Errorf("unexpected frequency %d", *got.Frequency)
			case tt.want.Frequency != nil && (got.Frequency == nil || *got.Frequency != *tt.want.Frequency):
				t.Errorf("frequency = %v, want %d", got.Frequency, *tt.want.Frequency)
			}
		})
	}
}

func TestMatchLegacyValueCode(t *testing.T) {
	intp := func(v int) *int { return &v }
	tests := []struct {
		name  string
		line  string
		want  ValueCodeLine
		match bool
	}{
		{
			name:  "frequency code label",
			line:  "  3178         1.   YES",
			want:  ValueCodeLine{Frequency: intp(3178), Code: "1", Label: "YES"},
			match: true,
		},
		{
			name:  "code label",
			line:  "        9999.   NA",
			want:  ValueCodeLine{Code: "9999", Label: "NA"},
			match: true,
		},
		{
			name:  "word code",
			line:  "        Blank.  Inapplicable",
			want:  ValueCodeLine{Code: "Blank", Label: "Inapplicable"},
			match: true,
		},
		{
			name:  "code then frequency no label",
			line:  "        1       3178",
			want:  ValueCodeLine{Frequency: intp(3178), Code: "1"},
			match: true,
		},
		{name: "no period no frequency pair", line: "  1  18-30  extra", match: false},
		{name: "prose", line: "See questionnaire for wording.", match: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchLegacyValueCode(tt.line)
			if ok != tt.match {
				t.Fatalf("MatchLegacyValueCode(%q) ok = %v, want %v", tt.line, ok, tt.match)
			}
			if !ok {
				return
			}
			if got.Code != tt.want.Code || got.Label != tt.want.Label {
				t.Errorf("got code=%q label=%q, want code=%q label=%q", got.Code, got.Label, tt.want.Code, tt.want.Label)
			}
			switch {
			case tt.want.Frequency == nil && got.Frequency != nil:
				t.Errorf("unexpected frequency %d", *got.Frequency)
			case tt.want.Frequency != nil && (got.Frequency == nil || *got.Frequency != *tt.want.Frequency):
				t.Errorf("frequency = %v, want %d", got.Frequency, *tt.want.Frequency)
			}
		})
	}
}

func TestMatchAssign(t *testing.T) {
	a, ok := MatchAssign("ASSIGN: RSUBHH determined by Q171 and Q172")
	if !ok {
		t.Fatal("expected assign match")
	}
	if a.Expression != "RSUBHH determined by Q171 and Q172" {
		t.Errorf("Expression = %q", a.Expression)
	}
	if len(a.ReferenceVariables) != 2 || a.ReferenceVariables[0] != "Q171" || a.ReferenceVariables[1] != "Q172" {
		t.Errorf("ReferenceVariables = %v, want [Q171 Q172]", a.ReferenceVariables)
	}

	if _, ok := MatchAssign("Ref: see Q171"); ok {
		t.Error("Ref line must not match assign")
	}
}

func TestMatchRef(t *testing.T) {
	r, ok := MatchRef("Ref: Derived from Q171")
	if !ok {
		t.Fatal("expected ref match")
	}
	if r.Reference != "Derived from Q171" || r.ReferencedVariable != "Q171" {
		t.Errorf("got %+v", r)
	}

	r, ok = MatchRef("Ref: SecJ.TransferToKids")
	if !ok {
		t.Fatal("expected ref match")
	}
	if r.ReferencedVariable != "" {
		t.Errorf("ReferencedVariable = %q, want empty", r.ReferencedVariable)
	}
}

func TestIsSeparator(t *testing.T) {
	if !IsSeparator("==========") {
		t.Error("ten equals should be a separator")
	}
	if !IsSeparator("   ================================================   ") {
		t.Error("padded separator should match")
	}
	if IsSeparator("=========") {
		t.Error("nine equals is not a separator")
	}
	if IsSeparator("== header ==") {
		t.Error("short runs are not separators")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Level
	}{
		{"Household", domain.LevelHousehold},
		{"HOUSEHOLD RECORD", domain.LevelHousehold},
		{"Respondent", domain.LevelRespondent},
		{"Jobs", domain.LevelJobs},
		{"Pension", domain.LevelPension},
		{"Siblings", domain.LevelSiblings},
		{"HH Member Child", domain.LevelHHMemberChild},
		{"To Child", domain.LevelToChild},
		{"From Child", domain.LevelFromChild},
		{"Helper", domain.LevelHelper},
		{"Preload", domain.LevelPreload},
		{"Master Codes", domain.LevelMasterCodes},
		{"Other", domain.LevelOther},
		{"", domain.LevelRespondent},
		{"Financial Unit", domain.LevelRespondent},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsNameToken(t *testing.T) {
	for _, good := range []string{"RSUBHH", "X060_R", "HHID", "SA500"} {
		if !IsNameToken(good) {
			t.Errorf("IsNameToken(%q) = false, want true", good)
		}
	}
	for _, bad := range []string{"R", "1ABC", "rsubhh", "YES, VOLUNTEERED", ""} {
		if IsNameToken(bad) {
			t.Errorf("IsNameToken(%q) = true, want false", bad)
		}
	}
}
