package editor

import (
	"fmt"
	"log"
)

// Strategy names the mechanism that wrote an edit into the host.
type Strategy string

const (
	StrategyNone         Strategy = ""
	StrategyReplaceAll   Strategy = "replace-all"
	StrategyExecuteEdits Strategy = "execute-edits"
	StrategyPushEdit     Strategy = "push-edit-operations"
	StrategySplice       Strategy = "splice"
)

// EditSource tags edits written by generation so they group in undo history.
const EditSource = "ai-replace-selection"

// editStrategy writes text over r and reports success.
type editStrategy struct {
	name  Strategy
	apply func(h Host, r TextRange, text string) bool
}

var strategies = []editStrategy{
	{StrategyExecuteEdits, executeEdits},
	{StrategyPushEdit, pushEdit},
	{StrategySplice, splice},
}

// Applier writes text into a host, falling back through progressively more
// primitive mechanisms until one succeeds.
type Applier struct {
	host   Host
	logger *log.Logger
}

func NewApplier(host Host) *Applier {
	return &Applier{host: host}
}

// SetLogger enables debug output for strategy fallbacks.
func (a *Applier) SetLogger(l *log.Logger) {
	a.logger = l
}

// ValidateRange checks r against the host's current document.
func ValidateRange(h Host, r TextRange) error {
	if err := r.Validate(); err != nil {
		return err
	}
	lines := h.GetLineCount()
	if r.StartLine > lines || r.EndLine > lines {
		return fmt.Errorf("%w: range %s exceeds %d lines", ErrInvalidRange, r, lines)
	}
	return nil
}

// Apply replaces r with text. A nil range replaces the whole document.
func (a *Applier) Apply(r *TextRange, text string) (Strategy, error) {
	if r == nil {
		if err := safely(func() { a.host.SetValue(text) }); err != nil {
			return StrategyNone, fmt.Errorf("%w: %v", ErrEditApplication, err)
		}
		return StrategyReplaceAll, nil
	}

	target := *r
	if err := ValidateRange(a.host, target); err != nil {
		return StrategyNone, err
	}

	for _, s := range strategies {
		var ok bool
		err := safely(func() { ok = s.apply(a.host, target, text) })
		if err == nil && ok {
			return s.name, nil
		}
		a.debugf("editor: strategy %s failed for %s (err=%v)", s.name, target, err)
	}
	return StrategyNone, fmt.Errorf("%w: range %s", ErrEditApplication, target)
}

func (a *Applier) debugf(format string, args ...any) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}

func executeEdits(h Host, r TextRange, text string) bool {
	return h.ExecuteEdits(EditSource, []EditOperation{{Range: r, Text: text, ForceMoveMarkers: true}})
}

func pushEdit(h Host, r TextRange, text string) bool {
	return h.PushEditOperations([]EditOperation{{Range: r, Text: text}}) == nil
}

func splice(h Host, r TextRange, text string) bool {
	h.SetValue(Splice(h.GetValue(), r, text))
	return true
}

// safely runs fn, turning a panic into an error.
func safely(fn func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	fn()
	return nil
}
