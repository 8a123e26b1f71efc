package editor

import (
	"fmt"
	"sort"
	"sync"
)

type undoEntry struct {
	content   string
	selection *TextRange
}

// Buffer is an in-memory Host used by the desktop app and the CLI.
// It is safe for concurrent use; listeners run outside the lock.
type Buffer struct {
	mu        sync.Mutex
	content   string
	selection *TextRange
	undo      []undoEntry

	nextID             int
	selectionListeners map[int]func(*TextRange)
	contentListeners   map[int]func(string)
}

func NewBuffer(content string) *Buffer {
	return &Buffer{
		content:            content,
		selectionListeners: make(map[int]func(*TextRange)),
		contentListeners:   make(map[int]func(string)),
	}
}

func (b *Buffer) GetValue() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

// SetValue replaces the whole document. Like a widget's setValue it resets
// the undo stack and collapses the selection.
func (b *Buffer) SetValue(value string) {
	b.mu.Lock()
	b.content = value
	b.undo = nil
	hadSelection := b.selection != nil
	b.selection = nil
	b.mu.Unlock()

	b.notifyContent(value)
	if hadSelection {
		b.notifySelection(nil)
	}
}

func (b *Buffer) GetValueInRange(r TextRange) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	start := offsetOf(b.content, r.Start())
	end := offsetOf(b.content, r.End())
	if end < start {
		return ""
	}
	return b.content[start:end]
}

func (b *Buffer) GetLineCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return lineCount(b.content)
}

func (b *Buffer) GetSelection() *TextRange {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selection == nil {
		return nil
	}
	sel := *b.selection
	return &sel
}

// SetSelection moves the selection; nil clears it.
func (b *Buffer) SetSelection(sel *TextRange) error {
	var copied *TextRange
	if sel != nil {
		if err := sel.Validate(); err != nil {
			return err
		}
		c := *sel
		copied = &c
	}

	b.mu.Lock()
	if copied != nil && copied.EndLine > lineCount(b.content) {
		b.mu.Unlock()
		return fmt.Errorf("%w: line %d exceeds %d lines", ErrInvalidRange, copied.EndLine, lineCount(b.content))
	}
	b.selection = copied
	b.mu.Unlock()

	b.notifySelection(copied)
	return nil
}

func (b *Buffer) ExecuteEdits(source string, edits []EditOperation) bool {
	return b.applyEdits(edits, true) == nil
}

func (b *Buffer) PushEditOperations(edits []EditOperation) error {
	return b.applyEdits(edits, false)
}

// Undo reverts the most recent edit step and reports whether there was one.
func (b *Buffer) Undo() bool {
	b.mu.Lock()
	if len(b.undo) == 0 {
		b.mu.Unlock()
		return false
	}
	last := b.undo[len(b.undo)-1]
	b.undo = b.undo[:len(b.undo)-1]
	b.content = last.content
	b.selection = last.selection
	content, sel := b.content, b.selection
	b.mu.Unlock()

	b.notifyContent(content)
	b.notifySelection(sel)
	return true
}

// CanUndo reports whether Undo has anything to revert.
func (b *Buffer) CanUndo() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.undo) > 0
}

func (b *Buffer) OnSelectionChange(fn func(sel *TextRange)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.selectionListeners[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.selectionListeners, id)
		b.mu.Unlock()
	}
}

// OnContentChange registers fn for every document mutation.
func (b *Buffer) OnContentChange(fn func(content string)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.contentListeners[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.contentListeners, id)
		b.mu.Unlock()
	}
}

type resolvedEdit struct {
	start, end int
	op         EditOperation
}

func (b *Buffer) applyEdits(edits []EditOperation, moveMarkers bool) error {
	if len(edits) == 0 {
		return fmt.Errorf("%w: no edit operations", ErrEditApplication)
	}

	b.mu.Lock()
	lines := lineCount(b.content)
	resolved := make([]resolvedEdit, 0, len(edits))
	for _, op := range edits {
		if err := op.Range.Validate(); err != nil {
			b.mu.Unlock()
			return err
		}
		if op.Range.EndLine > lines {
			b.mu.Unlock()
			return fmt.Errorf("%w: line %d exceeds %d lines", ErrInvalidRange, op.Range.EndLine, lines)
		}
		resolved = append(resolved, resolvedEdit{
			start: offsetOf(b.content, op.Range.Start()),
			end:   offsetOf(b.content, op.Range.End()),
			op:    op,
		})
	}

	// apply back to front so earlier offsets stay valid
	sort.SliceStable(resolved, func(i, j int) bool { return resolved[i].start > resolved[j].start })
	for i := 1; i < len(resolved); i++ {
		if resolved[i].end > resolved[i-1].start {
			b.mu.Unlock()
			return fmt.Errorf("%w: overlapping edit operations", ErrEditApplication)
		}
	}

	b.undo = append(b.undo, undoEntry{content: b.content, selection: b.selection})
	content := b.content
	for _, e := range resolved {
		content = content[:e.start] + e.op.Text + content[e.end:]
	}
	b.content = content

	var moved *TextRange
	if moveMarkers {
		// the caret lands after the edit that starts last in the document
		last := resolved[0].op
		if last.ForceMoveMarkers {
			end := SpanOf(last.Range.Start(), last.Text).End()
			caret := TextRange{StartLine: end.Line, StartColumn: end.Column, EndLine: end.Line, EndColumn: end.Column}
			b.selection = &caret
			moved = &caret
		}
	}
	b.mu.Unlock()

	b.notifyContent(content)
	if moved != nil {
		b.notifySelection(moved)
	}
	return nil
}

func (b *Buffer) notifyContent(content string) {
	b.mu.Lock()
	fns := make([]func(string), 0, len(b.contentListeners))
	for _, fn := range b.contentListeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(content)
	}
}

func (b *Buffer) notifySelection(sel *TextRange) {
	b.mu.Lock()
	fns := make([]func(*TextRange), 0, len(b.selectionListeners))
	for _, fn := range b.selectionListeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		var copied *TextRange
		if sel != nil {
			c := *sel
			copied = &c
		}
		fn(copied)
	}
}
