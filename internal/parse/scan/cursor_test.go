package scan

import "testing"

func TestCursorAdvance(t *testing.T) {
	c := NewCursor("one\r\ntwo\nthree")
	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	if c.Line() != "one" {
		t.Errorf("Line = %q, want one", c.Line())
	}
	c.Advance()
	if c.Line() != "two" {
		t.Errorf("Line = %q, want two", c.Line())
	}
	c.Advance()
	c.Advance()
	if !c.EOF() {
		t.Error("expected EOF after advancing past last line")
	}
	if c.Line() != "" {
		t.Errorf("Line at EOF = %q, want empty", c.Line())
	}
}

func TestCursorPeek(t *testing.T) {
	c := NewCursorLines([]string{"a", "b", "c"})
	if got, ok := c.Peek(2); !ok || got != "c" {
		t.Errorf("Peek(2) = %q, %v", got, ok)
	}
	if _, ok := c.Peek(3); ok {
		t.Error("Peek past end should report not ok")
	}
}

func TestCursorLookAhead(t *testing.T) {
	c := NewCursorLines([]string{"VAR1  Age", "", "", "  Type: Numeric  Width: 2", "next"})
	idx, ok := c.LookAhead(4, func(line string) bool {
		_, match := MatchMetadata(line)
		return match
	})
	if !ok || idx != 3 {
		t.Fatalf("LookAhead = (%d, %v), want (3, true)", idx, ok)
	}

	// Window excludes matches beyond the bound.
	c2 := NewCursorLines([]string{"VAR1  Age", "", "", "", "", "  Width: 2"})
	if _, ok := c2.LookAhead(4, func(line string) bool {
		_, match := MatchMetadata(line)
		return match
	}); ok {
		t.Error("match outside the window must not be found")
	}
}
