package modern

import (
	"testing"

	"github.com/hrsdata/codebook-backend/internal/domain"
	"github.com/hrsdata/codebook-backend/internal/wave"
)

const miniDoc = "Section A: Demographics (Respondent)\n" +
	"VAR1  Age in years\n" +
	"  Type: Numeric  Width: 2  Decimals: 0\n" +
	"  1  18-30\n" +
	"  2  31-50\n"

func TestParseContentMiniDocument(t *testing.T) {
	p := NewParser(wave.NewRegistry())
	cb, stats := p.ParseContent(miniDoc, domain.SourceCore, 2020)

	if cb.TotalSections != 1 {
		t.Fatalf("TotalSections = %d, want 1", cb.TotalSections)
	}
	sec := cb.Sections[0]
	if sec.Code != "A" || sec.Name != "Demographics" || sec.Level != domain.LevelRespondent {
		t.Errorf("section = %+v", sec)
	}
	if sec.VariableCount != 1 {
		t.Errorf("VariableCount = %d, want 1", sec.VariableCount)
	}

	if cb.TotalVariables != 1 {
		t.Fatalf("TotalVariables = %d, want 1", cb.TotalVariables)
	}
	v := cb.Variables[0]
	if v.Name != "VAR1" || v.Type != domain.TypeNumeric || v.Width != 2 {
		t.Errorf("variable = %+v", v)
	}
	if !v.HasValueCodes || len(v.ValueCodes) != 2 {
		t.Fatalf("value codes = %v", v.ValueCodes)
	}
	if v.ValueCodes[0].Code != "1" || v.ValueCodes[0].Label != "18-30" {
		t.Errorf("value code 0 = %+v", v.ValueCodes[0])
	}
	if v.ValueCodes[1].Code != "2" || v.ValueCodes[1].Label != "31-50" {
		t.Errorf("value code 1 = %+v", v.ValueCodes[1])
	}

	if cb.Wave == nil || *cb.Wave != 15 {
		t.Errorf("Wave = %v, want 15", cb.Wave)
	}
	if stats.Variables != 1 || stats.ValueCodes != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

const fullDoc = `HRS 2020 Final Release
Codebook

Section A: Coverscreen (Household)

RSUBHH     2020 SUB-HOUSEHOLD IDENTIFICATION NUMBER
           Section: A     Level: Household       Type: Character  Width: 1   Decimals: 0

           .................................................................................
           9012           0.  Original sample household
           2101           1.  Split household
                          5.  NO OTHER RESIDENCE
           ASSIGN: RSUBHH determined by Q171
==================================================================================
RA500      WHO ANSWERS FOR FAMILY
           Section: A     Level: Household       Type: Numeric   Width: 3   Decimals: 0

            404         Blank.  INAP (Inapplicable); partial interview
            100             1.  REGISTERED, VOLUNTEERED
                                TO ANSWER
           Ref: RA499
==================================================================================
Section B: Demographics (Respondent)

RB000      RESPONDENT WILLING TO ANSWER
           Section: B     Level: Respondent      Type: Numeric   Width: 1   Decimals: 0

           2100             1.  YES
            300             5.  NO
==================================================================================
`

func TestParseContentFullDocument(t *testing.T) {
	p := NewParser(wave.NewRegistry())
	cb, _ := p.ParseContent(fullDoc, domain.SourceCore, 2020)

	if cb.ReleaseType != "Final Release" {
		t.Errorf("ReleaseType = %q, want Final Release", cb.ReleaseType)
	}
	if cb.TotalSections != 2 {
		t.Fatalf("TotalSections = %d, want 2: %+v", cb.TotalSections, cb.Sections)
	}
	if cb.TotalVariables != 3 {
		t.Fatalf("TotalVariables = %d, want 3", cb.TotalVariables)
	}

	rsubhh := cb.VariableByName("RSUBHH")
	if rsubhh == nil {
		t.Fatal("RSUBHH not parsed")
	}
	if rsubhh.Level != domain.LevelHousehold || rsubhh.Type != domain.TypeCharacter {
		t.Errorf("RSUBHH = %+v", rsubhh)
	}
	if !rsubhh.IsIdentifier {
		t.Error("RSUBHH should be flagged as identifier")
	}
	if len(rsubhh.ValueCodes) != 3 {
		t.Fatalf("RSUBHH value codes = %+v", rsubhh.ValueCodes)
	}
	if len(rsubhh.Assignments) != 1 || rsubhh.Assignments[0].ReferenceVariables[0] != "Q171" {
		t.Errorf("RSUBHH assignments = %+v", rsubhh.Assignments)
	}

	ra500 := cb.VariableByName("RA500")
	if ra500 == nil {
		t.Fatal("RA500 not parsed")
	}
	if len(ra500.ValueCodes) != 2 {
		t.Fatalf("RA500 value codes = %+v", ra500.ValueCodes)
	}
	if !ra500.ValueCodes[0].IsMissing {
		t.Error("Blank code should be missing")
	}
	// Continuation line folded into the label.
	if ra500.ValueCodes[1].Label != "REGISTERED, VOLUNTEERED TO ANSWER" {
		t.Errorf("label = %q", ra500.ValueCodes[1].Label)
	}
	if len(ra500.References) != 1 || ra500.References[0].ReferencedVariable != "RA499" {
		t.Errorf("RA500 references = %+v", ra500.References)
	}

	// Levels observed across the document.
	wantLevels := map[domain.Level]bool{domain.LevelHousehold: true, domain.LevelRespondent: true}
	if len(cb.Levels) != len(wantLevels) {
		t.Errorf("Levels = %v", cb.Levels)
	}
	for _, l := range cb.Levels {
		if !wantLevels[l] {
			t.Errorf("unexpected level %q", l)
		}
	}
}

func TestParseContentIdempotent(t *testing.T) {
	p := NewParser(wave.NewRegistry())
	a, _ := p.ParseContent(fullDoc, domain.SourceCore, 2020)
	b, _ := p.ParseContent(fullDoc, domain.SourceCore, 2020)

	if a.TotalVariables != b.TotalVariables || a.TotalSections != b.TotalSections {
		t.Fatalf("totals differ: %d/%d vs %d/%d", a.TotalVariables, a.TotalSections, b.TotalVariables, b.TotalSections)
	}
	for i := range a.Sections {
		as, bs := a.Sections[i], b.Sections[i]
		if len(as.Variables) != len(bs.Variables) {
			t.Fatalf("section %s variable lists differ", as.Code)
		}
		for j := range as.Variables {
			if as.Variables[j] != bs.Variables[j] {
				t.Errorf("section %s variable %d: %q vs %q", as.Code, j, as.Variables[j], bs.Variables[j])
			}
		}
	}
}

func TestSectionCountsSumToTotal(t *testing.T) {
	p := NewParser(wave.NewRegistry())
	cb, _ := p.ParseContent(fullDoc, domain.SourceCore, 2020)

	sum := 0
	for _, s := range cb.Sections {
		sum += s.VariableCount
	}
	if sum != cb.TotalVariables {
		t.Errorf("sum of section counts = %d, TotalVariables = %d", sum, cb.TotalVariables)
	}
}

func TestParseContentEmptyDocument(t *testing.T) {
	p := NewParser(wave.NewRegistry())
	cb, stats := p.ParseContent("Preface text without any sections.\n", domain.SourceCore, 2006)
	if cb.TotalSections != 0 || cb.TotalVariables != 0 {
		t.Errorf("empty document produced %d sections, %d variables", cb.TotalSections, cb.TotalVariables)
	}
	if stats.Sections != 0 || stats.Variables != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestParseMissingFile(t *testing.T) {
	p := NewParser(wave.NewRegistry())
	if _, _, err := p.Parse("testdata/does-not-exist.txt", domain.SourceCore, 2020); err == nil {
		t.Fatal("expected error for missing file")
	}
}
