package editor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyHost wraps a Buffer and can disable individual edit mechanisms.
type flakyHost struct {
	*Buffer
	failExecute bool
	panicPush   bool
	failPush    bool
	executeHits int
	pushHits    int
}

func (h *flakyHost) ExecuteEdits(source string, edits []EditOperation) bool {
	h.executeHits++
	if h.failExecute {
		return false
	}
	return h.Buffer.ExecuteEdits(source, edits)
}

func (h *flakyHost) PushEditOperations(edits []EditOperation) error {
	h.pushHits++
	if h.panicPush {
		panic("widget disposed")
	}
	if h.failPush {
		return errors.New("read only")
	}
	return h.Buffer.PushEditOperations(edits)
}

func rng(sl, sc, el, ec int) *TextRange {
	return &TextRange{StartLine: sl, StartColumn: sc, EndLine: el, EndColumn: ec}
}

func TestSplice_ReplacesWithinLine(t *testing.T) {
	got := Splice("line1\nline2\nline3", *rng(1, 1, 1, 6), "Hel")
	assert.Equal(t, "Hel\nline2\nline3", got)
}

func TestSplice_AcrossLines(t *testing.T) {
	got := Splice("abc\ndef\nghi", *rng(1, 2, 3, 2), "X")
	assert.Equal(t, "aXhi", got)
}

func TestSplice_ClampsColumns(t *testing.T) {
	got := Splice("ab\ncd", *rng(1, 10, 1, 12), "!")
	assert.Equal(t, "ab!\ncd", got)
}

func TestClampRange(t *testing.T) {
	assert.Equal(t, *rng(1, 3, 2, 3), ClampRange("ab\ncd", *rng(1, 10, 2, 12)))
	assert.Equal(t, *rng(1, 2, 1, 3), ClampRange("héllo", *rng(1, 2, 1, 3)))
	assert.Equal(t, *rng(1, 1, 1, 1), ClampRange("", *rng(1, 4, 1, 9)))
}

func TestSplice_CountsRunes(t *testing.T) {
	got := Splice("héllo", *rng(1, 2, 1, 3), "e")
	assert.Equal(t, "hello", got)
}

func TestSpanOf(t *testing.T) {
	assert.Equal(t, *rng(2, 3, 2, 6), SpanOf(Position{Line: 2, Column: 3}, "abc"))
	assert.Equal(t, *rng(1, 4, 3, 3), SpanOf(Position{Line: 1, Column: 4}, "x\ny\nzz"))
	assert.Equal(t, *rng(1, 1, 1, 1), SpanOf(Position{Line: 1, Column: 1}, ""))
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("1:1-2:5")
	require.NoError(t, err)
	assert.Equal(t, *rng(1, 1, 2, 5), r)

	_, err = ParseRange("3:1-1:1")
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = ParseRange("nonsense")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestBuffer_GetValueInRange(t *testing.T) {
	b := NewBuffer("line1\nline2\nline3")
	assert.Equal(t, "line1", b.GetValueInRange(*rng(1, 1, 1, 6)))
	assert.Equal(t, "1\nli", b.GetValueInRange(*rng(1, 5, 2, 3)))
	assert.Equal(t, 3, b.GetLineCount())
}

func TestBuffer_ExecuteEditsMovesCaretAndUndoes(t *testing.T) {
	b := NewBuffer("line1\nline2")
	ok := b.ExecuteEdits(EditSource, []EditOperation{{Range: *rng(1, 1, 1, 6), Text: "a\nbc", ForceMoveMarkers: true}})
	require.True(t, ok)
	assert.Equal(t, "a\nbc\nline2", b.GetValue())
	assert.Equal(t, rng(2, 3, 2, 3), b.GetSelection())

	require.True(t, b.Undo())
	assert.Equal(t, "line1\nline2", b.GetValue())
	assert.False(t, b.Undo())
}

func TestBuffer_SetValueResetsUndo(t *testing.T) {
	b := NewBuffer("x")
	require.NoError(t, b.PushEditOperations([]EditOperation{{Range: *rng(1, 1, 1, 2), Text: "y"}}))
	assert.True(t, b.CanUndo())
	b.SetValue("z")
	assert.False(t, b.CanUndo())
}

func TestBuffer_RejectsOutOfBoundsEdits(t *testing.T) {
	b := NewBuffer("one")
	assert.False(t, b.ExecuteEdits(EditSource, []EditOperation{{Range: *rng(2, 1, 2, 1), Text: "x"}}))
	err := b.PushEditOperations([]EditOperation{{Range: *rng(1, 1, 5, 1), Text: "x"}})
	assert.ErrorIs(t, err, ErrInvalidRange)
	assert.Equal(t, "one", b.GetValue())
}

func TestBuffer_ContentListener(t *testing.T) {
	b := NewBuffer("a")
	var seen []string
	stop := b.OnContentChange(func(c string) { seen = append(seen, c) })
	b.SetValue("b")
	stop()
	b.SetValue("c")
	assert.Equal(t, []string{"b"}, seen)
}

func TestApplier_NilRangeReplacesDocument(t *testing.T) {
	b := NewBuffer("old")
	s, err := NewApplier(b).Apply(nil, "new")
	require.NoError(t, err)
	assert.Equal(t, StrategyReplaceAll, s)
	assert.Equal(t, "new", b.GetValue())
}

func TestApplier_StreamingPrefixes(t *testing.T) {
	b := NewBuffer("line1\nline2\nline3")
	a := NewApplier(b)

	span := rng(1, 1, 1, 6)
	acc := ""
	for _, chunk := range []string{"Hel", "lo"} {
		acc += chunk
		s, err := a.Apply(span, acc)
		require.NoError(t, err)
		assert.Equal(t, StrategyExecuteEdits, s)
		next := SpanOf(span.Start(), acc)
		span = &next
	}
	assert.Equal(t, "Hello\nline2\nline3", b.GetValue())
}

func TestApplier_InvalidRanges(t *testing.T) {
	b := NewBuffer("a\nb")
	h := &flakyHost{Buffer: b}
	a := NewApplier(h)

	cases := []*TextRange{
		rng(0, 1, 1, 1),
		rng(1, 0, 1, 1),
		rng(1, 1, 1, 0),
		rng(2, 1, 1, 1),
		rng(1, 3, 1, 2),
		rng(1, 1, 3, 1),
	}
	for _, r := range cases {
		s, err := a.Apply(r, "x")
		assert.ErrorIs(t, err, ErrInvalidRange, "range %s", r)
		assert.Equal(t, StrategyNone, s)
	}
	assert.Zero(t, h.executeHits)
	assert.Equal(t, "a\nb", b.GetValue())
}

func TestApplier_FallsBackInOrder(t *testing.T) {
	h := &flakyHost{Buffer: NewBuffer("hello world"), failExecute: true}
	s, err := NewApplier(h).Apply(rng(1, 7, 1, 12), "there")
	require.NoError(t, err)
	assert.Equal(t, StrategyPushEdit, s)
	assert.Equal(t, "hello there", h.GetValue())

	h = &flakyHost{Buffer: NewBuffer("hello world"), failExecute: true, panicPush: true}
	s, err = NewApplier(h).Apply(rng(1, 7, 1, 12), "there")
	require.NoError(t, err)
	assert.Equal(t, StrategySplice, s)
	assert.Equal(t, "hello there", h.GetValue())
	assert.Equal(t, 1, h.pushHits)
}

func TestApplier_StrategiesAgree(t *testing.T) {
	docs := []string{"line1\nline2\nline3", "héllo\nwörld", "", "a\n\nb\n"}
	ranges := []*TextRange{rng(1, 1, 1, 1), rng(1, 2, 2, 3), rng(1, 1, 1, 99)}
	texts := []string{"", "X", "multi\nline\ntext"}

	for _, doc := range docs {
		for _, r := range ranges {
			for _, text := range texts {
				hosts := []*flakyHost{
					{Buffer: NewBuffer(doc)},
					{Buffer: NewBuffer(doc), failExecute: true},
					{Buffer: NewBuffer(doc), failExecute: true, failPush: true},
				}
				var results []string
				for _, h := range hosts {
					_, err := NewApplier(h).Apply(r, text)
					if err != nil {
						require.ErrorIs(t, err, ErrInvalidRange)
						results = append(results, "invalid")
						continue
					}
					results = append(results, h.GetValue())
				}
				assert.Equal(t, results[0], results[1], "doc=%q range=%s text=%q", doc, r, text)
				assert.Equal(t, results[0], results[2], "doc=%q range=%s text=%q", doc, r, text)
			}
		}
	}
}

type brokenHost struct{ *Buffer }

func (brokenHost) ExecuteEdits(string, []EditOperation) bool { return false }
func (brokenHost) PushEditOperations([]EditOperation) error  { return errors.New("nope") }
func (brokenHost) SetValue(string)                           { panic("disposed") }

func TestApplier_AllStrategiesFail(t *testing.T) {
	h := brokenHost{NewBuffer("abc")}
	s, err := NewApplier(h).Apply(rng(1, 1, 1, 2), "x")
	assert.ErrorIs(t, err, ErrEditApplication)
	assert.Equal(t, StrategyNone, s)
	assert.Equal(t, "abc", h.GetValue())
}

func TestTracker_RemembersLastSelection(t *testing.T) {
	b := NewBuffer("line1\nline2")
	tr := NewTracker(b)
	defer tr.Close()

	assert.Nil(t, tr.Capture().Range)

	require.NoError(t, b.SetSelection(rng(1, 1, 1, 6)))
	snap := tr.Capture()
	require.NotNil(t, snap.Range)
	assert.Equal(t, "line1", snap.Text)

	// a whitespace-only selection does not replace the remembered one
	require.NoError(t, b.SetSelection(rng(1, 6, 2, 1)))
	b.selection = nil
	snap = tr.Capture()
	require.NotNil(t, snap.Range)
	assert.Equal(t, "line1", snap.Text)

	// collapsing forgets it
	require.NoError(t, b.SetSelection(rng(2, 2, 2, 2)))
	assert.Nil(t, tr.Capture().Range)
}

func TestTracker_SnapshotIsACopy(t *testing.T) {
	b := NewBuffer("abc")
	tr := NewTracker(b)
	require.NoError(t, b.SetSelection(rng(1, 1, 1, 3)))
	snap := tr.Capture()
	require.NoError(t, b.SetSelection(rng(1, 2, 1, 4)))
	assert.Equal(t, rng(1, 1, 1, 3), snap.Range)

	tr.Clear()
	require.NoError(t, b.SetSelection(nil))
	assert.Nil(t, tr.Capture().Range)
}
