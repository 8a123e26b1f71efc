package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdxpad/internal/models"
	"mdxpad/internal/repositories"
)

func TestInitMigratesFileDatabase(t *testing.T) {
	db, err := Init(Config{Path: filepath.Join(t.TempDir(), "mdxpad.db")})
	require.NoError(t, err)
	defer Close(db)

	for _, m := range []any{&models.AppSettings{}, &models.Template{}, &models.ModelSetting{}, &models.GenerationRecord{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestInitRequiresPath(t *testing.T) {
	_, err := Init(Config{})
	assert.Error(t, err)
}

func TestRepositoriesAgainstMemoryDatabase(t *testing.T) {
	db, err := Init(Config{Path: MemoryPath})
	require.NoError(t, err)
	defer Close(db)
	ctx := context.Background()

	settings := repositories.NewAppSettingsRepository(db)
	got, err := settings.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.Streaming)
	got.Streaming = false
	got.Theme = "dark"
	require.NoError(t, settings.Update(ctx, got))
	got, err = settings.Get(ctx)
	require.NoError(t, err)
	assert.False(t, got.Streaming)
	assert.Equal(t, "dark", got.Theme)

	modelSettings := repositories.NewModelSettingRepository(db)
	_, err = modelSettings.Upsert(ctx, "gemini|gemini-2.5-flash", "gemini", false)
	require.NoError(t, err)
	_, err = modelSettings.Upsert(ctx, "gemini|gemini-2.5-flash", "gemini", true)
	require.NoError(t, err)
	ms, err := modelSettings.GetByKey(ctx, "gemini|gemini-2.5-flash")
	require.NoError(t, err)
	require.NotNil(t, ms)
	assert.True(t, ms.Enabled)
	require.NoError(t, modelSettings.SetProviderEnabled(ctx, "gemini", false))
	ms, err = modelSettings.GetByKey(ctx, "gemini|gemini-2.5-flash")
	require.NoError(t, err)
	assert.False(t, ms.Enabled)
	missing, err := modelSettings.GetByKey(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	templates := repositories.NewTemplateRepository(db)
	require.NoError(t, templates.Create(ctx, &models.Template{Name: "shorten", Content: "Make it shorter"}))
	tmpl, err := templates.GetByName(ctx, "shorten")
	require.NoError(t, err)
	require.NotNil(t, tmpl)
	assert.Equal(t, "Make it shorter", tmpl.Content)
	assert.Error(t, templates.Create(ctx, &models.Template{Name: "shorten", Content: "dup"}))

	history := repositories.NewGenerationRecordRepository(db)
	require.NoError(t, history.Create(ctx, &models.GenerationRecord{SessionID: "a", Provider: "gemini", Model: "m", Prompt: "p", Target: "document", State: "requesting"}))
	require.NoError(t, history.Create(ctx, &models.GenerationRecord{SessionID: "b", Provider: "openrouter", Model: "m", Prompt: "p", Target: "selection", State: "requesting"}))
	require.NoError(t, history.Finish(ctx, "a", "completed", "execute-edits", "", 42))
	assert.Error(t, history.Finish(ctx, "zzz", "completed", "", "", 0))

	rec, err := history.GetBySessionID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "completed", rec.State)
	assert.Equal(t, 42, rec.OutputLength)
	assert.NotNil(t, rec.FinishedAt)

	list, err := history.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, "b", list[0].SessionID)

	require.NoError(t, history.DeleteAll(ctx))
	list, err = history.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
