package unit_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdxpad/internal/services"
)

func TestStripESM(t *testing.T) {
	src := "import { Chart } from './chart'\nexport const meta = { title: 'x' }\n\n# Doc\n\n```js\nimport fs from 'fs'\n```\n\n  import indented stays\n"
	out := services.StripESM(src)

	assert.NotContains(t, out, "./chart")
	assert.NotContains(t, out, "export const meta")
	assert.Contains(t, out, "import fs from 'fs'")
	assert.Contains(t, out, "  import indented stays")
	assert.Contains(t, out, "# Doc")
}

func TestPreviewService_Render(t *testing.T) {
	svc := services.NewPreviewService()

	html, err := svc.Render("# Hello World\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n<Callout>hi</Callout>\n")
	require.NoError(t, err)
	assert.Contains(t, html, `<h1 id="hello-world">Hello World</h1>`)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<Callout>hi</Callout>")
}
