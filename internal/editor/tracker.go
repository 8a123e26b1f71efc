package editor

import (
	"strings"
	"sync"
)

// Tracker remembers the last non-empty selection the host reported. A
// collapsed selection clears it; a whitespace-only one is ignored.
type Tracker struct {
	host Host

	mu       sync.Mutex
	last     *TextRange
	lastText string
	stop     func()
}

func NewTracker(host Host) *Tracker {
	t := &Tracker{host: host}
	t.stop = host.OnSelectionChange(t.onSelection)
	return t
}

func (t *Tracker) onSelection(sel *TextRange) {
	if sel == nil || sel.IsEmpty() {
		t.Clear()
		return
	}
	text := t.host.GetValueInRange(*sel)
	if strings.TrimSpace(text) == "" {
		return
	}
	c := *sel
	t.mu.Lock()
	t.last = &c
	t.lastText = text
	t.mu.Unlock()
}

// Capture returns the generation target: the live selection when there is
// one, else the remembered one, else a snapshot with a nil range.
func (t *Tracker) Capture() SelectionSnapshot {
	if live := t.host.GetSelection(); live != nil && !live.IsEmpty() {
		return SelectionSnapshot{Range: live, Text: t.host.GetValueInRange(*live)}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return SelectionSnapshot{}
	}
	c := *t.last
	return SelectionSnapshot{Range: &c, Text: t.lastText}
}

// Clear forgets the remembered selection.
func (t *Tracker) Clear() {
	t.mu.Lock()
	t.last = nil
	t.lastText = ""
	t.mu.Unlock()
}

// Close detaches the tracker from the host.
func (t *Tracker) Close() {
	if t.stop != nil {
		t.stop()
		t.stop = nil
	}
}
