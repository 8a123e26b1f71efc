package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// PreviewService renders the Markdown layer of an MDX document to HTML.
// Components pass through as raw HTML; compiling them is the frontend's job.
type PreviewService struct {
	md goldmark.Markdown
}

func NewPreviewService() *PreviewService {
	return &PreviewService{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

func (s *PreviewService) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(StripESM(source)), &buf); err != nil {
		return "", fmt.Errorf("preview: render: %w", err)
	}
	return buf.String(), nil
}

// StripESM drops top-level MDX import/export lines outside fenced code.
func StripESM(source string) string {
	lines := strings.Split(source, "\n")
	out := lines[:0]
	fence := ""
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if fence == "" {
			if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
				fence = trimmed[:3]
			} else if strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "export ") {
				continue
			}
		} else if strings.HasPrefix(trimmed, fence) {
			fence = ""
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
