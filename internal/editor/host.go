package editor

import "errors"

var (
	// ErrInvalidRange reports a range that is malformed or outside the document.
	ErrInvalidRange = errors.New("invalid range")
	// ErrEditApplication reports that every edit strategy failed.
	ErrEditApplication = errors.New("failed to apply edit")
)

// EditOperation replaces Range with Text.
type EditOperation struct {
	Range            TextRange `json:"range"`
	Text             string    `json:"text"`
	ForceMoveMarkers bool      `json:"forceMoveMarkers,omitempty"`
}

// Host is the surface of the text widget the generation pipeline edits.
type Host interface {
	GetValue() string
	SetValue(value string)
	GetValueInRange(r TextRange) string
	GetLineCount() int
	GetSelection() *TextRange

	// ExecuteEdits applies edits as one undoable step and reports success.
	ExecuteEdits(source string, edits []EditOperation) bool
	// PushEditOperations applies edits onto the undo stack.
	PushEditOperations(edits []EditOperation) error

	// OnSelectionChange registers fn and returns a function that removes it.
	OnSelectionChange(fn func(sel *TextRange)) (unsubscribe func())
}
