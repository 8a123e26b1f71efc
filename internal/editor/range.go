package editor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Position is a 1-based line/column location. Columns count runes.
type Position struct {
	Line   int `json:"lineNumber"`
	Column int `json:"column"`
}

// Before reports whether p sorts strictly before o.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// TextRange addresses a span of the document. The end position is exclusive.
// A nil *TextRange stands for the whole document wherever one is accepted.
type TextRange struct {
	StartLine   int `json:"startLineNumber"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLineNumber"`
	EndColumn   int `json:"endColumn"`
}

func (r TextRange) Start() Position { return Position{Line: r.StartLine, Column: r.StartColumn} }
func (r TextRange) End() Position   { return Position{Line: r.EndLine, Column: r.EndColumn} }

// IsEmpty reports a collapsed range (a caret rather than a selection).
func (r TextRange) IsEmpty() bool {
	return r.StartLine == r.EndLine && r.StartColumn == r.EndColumn
}

// Validate checks the ordering invariants that do not depend on a document.
func (r TextRange) Validate() error {
	if r.StartLine < 1 || r.EndLine < 1 {
		return fmt.Errorf("%w: line numbers must be >= 1 (got %d..%d)", ErrInvalidRange, r.StartLine, r.EndLine)
	}
	if r.StartColumn < 1 || r.EndColumn < 1 {
		return fmt.Errorf("%w: columns must be >= 1 (got %d..%d)", ErrInvalidRange, r.StartColumn, r.EndColumn)
	}
	if r.End().Before(r.Start()) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, r.Start(), r.End())
	}
	return nil
}

func (r TextRange) String() string {
	return fmt.Sprintf("%s-%s", r.Start(), r.End())
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SpanOf returns the range covered by text once it has been inserted at start.
func SpanOf(start Position, text string) TextRange {
	span := TextRange{StartLine: start.Line, StartColumn: start.Column}
	nl := strings.Count(text, "\n")
	if nl == 0 {
		span.EndLine = start.Line
		span.EndColumn = start.Column + utf8.RuneCountInString(text)
		return span
	}
	last := text[strings.LastIndexByte(text, '\n')+1:]
	span.EndLine = start.Line + nl
	span.EndColumn = utf8.RuneCountInString(last) + 1
	return span
}

// ParseRange reads the "L:C-L:C" notation produced by TextRange.String.
func ParseRange(s string) (TextRange, error) {
	var r TextRange
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d-%d:%d", &r.StartLine, &r.StartColumn, &r.EndLine, &r.EndColumn)
	if err != nil {
		return TextRange{}, fmt.Errorf("%w: parse %q: %v", ErrInvalidRange, s, err)
	}
	if err := r.Validate(); err != nil {
		return TextRange{}, err
	}
	return r, nil
}

// SelectionSnapshot is the target of a generation, copied at request time.
type SelectionSnapshot struct {
	Range *TextRange `json:"range,omitempty"`
	Text  string     `json:"text"`
}

// HasRange reports whether the snapshot targets a span rather than the whole document.
func (s SelectionSnapshot) HasRange() bool {
	return s.Range != nil
}
