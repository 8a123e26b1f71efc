package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"mdxpad/internal/config"
)

// Spinner wraps a terminal spinner for loading states.
type Spinner struct {
	s *spinner.Spinner
	w io.Writer
}

const spinnerColor = "cyan"

func NewSpinner(w io.Writer, msg string) *Spinner {
	return newSpinner(w, msg, spinnerColor)
}

// newSpinner keeps the default colour when colour is not one the spinner knows.
func newSpinner(w io.Writer, msg, colour string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = "  " + msg
	if err := s.Color(colour); err != nil {
		config.Debugf("cli: spinner colour %q: %v", colour, err)
	}
	return &Spinner{s: s, w: w}
}

func (sp *Spinner) Start() { sp.s.Start() }

func (sp *Spinner) Stop() { sp.s.Stop() }

// Update swaps the message shown next to the spinner.
func (sp *Spinner) Update(msg string) {
	sp.s.Lock()
	sp.s.Suffix = "  " + msg
	sp.s.Unlock()
}

// Success stops the spinner and prints a green check.
func (sp *Spinner) Success(msg string) {
	sp.s.Stop()
	color.New(color.FgGreen).Fprintf(sp.w, "  ✓ %s\n", msg)
}

// Fail stops the spinner and prints a red cross.
func (sp *Spinner) Fail(msg string) {
	sp.s.Stop()
	color.New(color.FgRed).Fprintf(sp.w, "  ✗ %s\n", msg)
}

// Warn stops the spinner and prints a yellow notice.
func (sp *Spinner) Warn(msg string) {
	sp.s.Stop()
	color.New(color.FgYellow).Fprintf(sp.w, "  ! %s\n", msg)
}

func heading(w io.Writer, format string, args ...any) {
	color.New(color.FgCyan, color.Bold).Fprintf(w, format, args...)
}

func dim(w io.Writer, format string, args ...any) {
	color.New(color.Faint).Fprintf(w, format, args...)
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "********"
	}
	return fmt.Sprintf("%s…%s", key[:4], key[len(key)-4:])
}
