package generation

import (
	"strings"

	"mdxpad/internal/editor"
)

// BuildPrompt combines the user's instruction with the text being replaced.
// Without a selection the instruction is used as is.
func BuildPrompt(instruction string, snap editor.SelectionSnapshot) string {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" || !snap.HasRange() || strings.TrimSpace(snap.Text) == "" {
		return instruction
	}
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nReplace the following MDX with an improved version that follows the instruction above:\n\n")
	b.WriteString(snap.Text)
	b.WriteString("\n\nImproved version:")
	return b.String()
}
