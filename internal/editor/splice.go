package editor

import (
	"strings"
	"unicode/utf8"
)

// Splice rebuilds content with r replaced by text, working line by line.
// Columns past the end of a line clamp to the line end.
func Splice(content string, r TextRange, text string) string {
	lines := strings.Split(content, "\n")
	startIdx, endIdx := r.StartLine-1, r.EndLine-1

	var b strings.Builder
	b.Grow(len(content) + len(text))
	for i := 0; i < startIdx && i < len(lines); i++ {
		b.WriteString(lines[i])
		b.WriteByte('\n')
	}
	if startIdx < len(lines) {
		b.WriteString(runePrefix(lines[startIdx], r.StartColumn-1))
	}
	b.WriteString(text)
	if endIdx < len(lines) {
		b.WriteString(runeSuffix(lines[endIdx], r.EndColumn-1))
	}
	for i := endIdx + 1; i < len(lines); i++ {
		b.WriteByte('\n')
		b.WriteString(lines[i])
	}
	return b.String()
}

// ClampRange pulls each column of r back to at most one past the end of its
// line, so the range addresses text that exists in content.
func ClampRange(content string, r TextRange) TextRange {
	lines := strings.Split(content, "\n")
	clamp := func(line, col int) int {
		if line < 1 || line > len(lines) {
			return col
		}
		if limit := utf8.RuneCountInString(lines[line-1]) + 1; col > limit {
			return limit
		}
		return col
	}
	r.StartColumn = clamp(r.StartLine, r.StartColumn)
	r.EndColumn = clamp(r.EndLine, r.EndColumn)
	return r
}

// runePrefix returns the first n runes of s.
func runePrefix(s string, n int) string {
	return s[:byteIndex(s, n)]
}

// runeSuffix returns s without its first n runes.
func runeSuffix(s string, n int) string {
	return s[byteIndex(s, n):]
}

// byteIndex converts a rune count into a byte offset, clamped to [0, len(s)].
func byteIndex(s string, n int) int {
	if n <= 0 {
		return 0
	}
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}

// offsetOf converts p into a byte offset into content, clamping the column.
func offsetOf(content string, p Position) int {
	off := 0
	for line := 1; line < p.Line; line++ {
		nl := strings.IndexByte(content[off:], '\n')
		if nl < 0 {
			return len(content)
		}
		off += nl + 1
	}
	lineEnd := strings.IndexByte(content[off:], '\n')
	if lineEnd < 0 {
		lineEnd = len(content) - off
	}
	return off + byteIndex(content[off:off+lineEnd], p.Column-1)
}

// lineCount returns the number of lines in content; an empty document has one.
func lineCount(content string) int {
	return strings.Count(content, "\n") + 1
}
