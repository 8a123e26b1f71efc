package assets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelsDataParses(t *testing.T) {
	var parsed struct {
		Providers []struct {
			ID     string `json:"id"`
			Models []struct {
				APIName string `json:"apiName"`
			} `json:"models"`
		} `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(ModelsData, &parsed))
	ids := make([]string, 0, len(parsed.Providers))
	for _, p := range parsed.Providers {
		ids = append(ids, p.ID)
		assert.NotEmpty(t, p.Models)
	}
	assert.Equal(t, []string{"gemini", "openrouter"}, ids)
}

func TestDefaultTemplates(t *testing.T) {
	list, err := DefaultTemplates()
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "expand", list[0].Name)
	for _, tmpl := range list {
		assert.NotEmpty(t, tmpl.Content)
	}
	assert.Contains(t, DefaultDocument, "# Welcome to mdxpad")
}
