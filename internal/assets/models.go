package assets

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// ModelsData holds the raw JSON catalog of selectable models.
//
//go:embed models.json
var ModelsData []byte

// DefaultDocument is the welcome document shown on first launch.
//
//go:embed default.mdx
var DefaultDocument string

//go:embed templates/*.md
var templateFS embed.FS

// PromptTemplate is a built-in prompt template keyed by file name.
type PromptTemplate struct {
	Name    string
	Content string
}

// DefaultTemplates returns the built-in prompt templates sorted by name.
func DefaultTemplates() ([]PromptTemplate, error) {
	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	out := make([]PromptTemplate, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := templateFS.ReadFile(path.Join("templates", e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, PromptTemplate{
			Name:    strings.TrimSuffix(e.Name(), path.Ext(e.Name())),
			Content: strings.TrimSpace(string(data)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
