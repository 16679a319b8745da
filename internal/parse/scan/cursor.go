// Package scan holds the line-grammar primitives shared by the text
// codebook dialects: an explicit line cursor with bounded look-ahead, and
// one named rule function per recognized line shape.
package scan

import "strings"

// Cursor is an explicit position over the lines of a document. Parsers
// advance it one recognized construct at a time instead of threading index
// arithmetic through nested conditionals.
type Cursor struct {
	lines []string
	pos   int
}

// NewCursor splits a document into lines and positions the cursor at the top.
func NewCursor(text string) *Cursor {
	return &Cursor{lines: strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")}
}

// NewCursorLines wraps an already-split document.
func NewCursorLines(lines []string) *Cursor {
	return &Cursor{lines: lines}
}

// EOF reports whether the cursor has passed the last line.
func (c *Cursor) EOF() bool { return c.pos >= len(c.lines) }

// Line returns the current raw line ("" at EOF).
func (c *Cursor) Line() string {
	if c.EOF() {
		return ""
	}
	return c.lines[c.pos]
}

// Pos returns the current line index.
func (c *Cursor) Pos() int { return c.pos }

// LineAt returns the raw line at an absolute index ("" when out of range).
func (c *Cursor) LineAt(i int) string {
	if i < 0 || i >= len(c.lines) {
		return ""
	}
	return c.lines[i]
}

// Len returns the total number of lines.
func (c *Cursor) Len() int { return len(c.lines) }

// Advance moves to the next line.
func (c *Cursor) Advance() { c.pos++ }

// SetPos jumps the cursor to an absolute line index.
func (c *Cursor) SetPos(i int) { c.pos = i }

// Peek returns the line at the given offset from the current position.
func (c *Cursor) Peek(off int) (string, bool) {
	i := c.pos + off
	if i < 0 || i >= len(c.lines) {
		return "", false
	}
	return c.lines[i], true
}

// LookAhead scans up to max lines past the current position (skipping blank
// lines) for the first line where match returns true, and returns its
// absolute index.
func (c *Cursor) LookAhead(max int, match func(string) bool) (int, bool) {
	for off := 1; off <= max; off++ {
		line, ok := c.Peek(off)
		if !ok {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if match(line) {
			return c.pos + off, true
		}
	}
	return 0, false
}
