package unit_tests

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdxpad/internal/models"
	"mdxpad/internal/services"
	"mdxpad/internal/tests/mocks"
)

// memoryTemplates backs a TemplateRepositoryMock with a name-indexed map.
func memoryTemplates() (*mocks.TemplateRepositoryMock, map[string]*models.Template) {
	store := map[string]*models.Template{}
	var nextID uint
	return &mocks.TemplateRepositoryMock{
		GetByNameFunc: func(ctx context.Context, name string) (*models.Template, error) {
			return store[name], nil
		},
		CreateFunc: func(ctx context.Context, tmpl *models.Template) error {
			nextID++
			tmpl.ID = nextID
			store[tmpl.Name] = tmpl
			return nil
		},
	}, store
}

func TestTemplateService_CreateTemplate_Success(t *testing.T) {
	mockRepo := &mocks.TemplateRepositoryMock{
		CreateFunc: func(ctx context.Context, tmpl *models.Template) error {
			tmpl.ID = 42
			return nil
		},
	}
	service := services.NewTemplateService(mockRepo)
	service.Startup(context.Background())

	result, err := service.CreateTemplate(&models.Template{Name: "  Tone  ", Content: "Be friendly."})
	require.NoError(t, err)
	assert.Equal(t, uint(42), result.ID)
	assert.Equal(t, "Tone", result.Name)
}

func TestTemplateService_CreateTemplate_Validation(t *testing.T) {
	called := false
	service := services.NewTemplateService(&mocks.TemplateRepositoryMock{
		CreateFunc: func(ctx context.Context, tmpl *models.Template) error {
			called = true
			return nil
		},
	})

	_, err := service.CreateTemplate(nil)
	assert.Error(t, err)
	_, err = service.CreateTemplate(&models.Template{Name: " ", Content: "x"})
	assert.Error(t, err)
	_, err = service.CreateTemplate(&models.Template{Name: "x", Content: "\n"})
	assert.Error(t, err)
	_, err = service.UpdateTemplate(&models.Template{ID: 1, Name: "", Content: "x"})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestTemplateService_CreateTemplate_Error(t *testing.T) {
	service := services.NewTemplateService(&mocks.TemplateRepositoryMock{
		CreateFunc: func(ctx context.Context, tmpl *models.Template) error {
			return assert.AnError
		},
	})

	result, err := service.CreateTemplate(&models.Template{Name: "Test", Content: "Content"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, result)
}

func TestTemplateService_GetAndList(t *testing.T) {
	service := services.NewTemplateService(&mocks.TemplateRepositoryMock{
		GetFunc: func(ctx context.Context, id uint) (*models.Template, error) {
			return &models.Template{ID: id, Name: "Test", Content: "Content"}, nil
		},
		GetAllFunc: func(ctx context.Context) ([]*models.Template, error) {
			return []*models.Template{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}}, nil
		},
	})

	tmpl, err := service.GetTemplate(7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), tmpl.ID)

	list, err := service.ListTemplates()
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestTemplateService_DeleteTemplate_Error(t *testing.T) {
	service := services.NewTemplateService(&mocks.TemplateRepositoryMock{
		DeleteFunc: func(ctx context.Context, id uint) error { return assert.AnError },
	})
	assert.ErrorIs(t, service.DeleteTemplate(3), assert.AnError)
}

func TestTemplateService_SeedDefaults_IsIdempotent(t *testing.T) {
	repo, store := memoryTemplates()
	service := services.NewTemplateService(repo)

	created, err := service.SeedDefaults()
	require.NoError(t, err)
	assert.Equal(t, 4, created)
	assert.Contains(t, store, "improve")
	assert.Equal(t, "Built-in", store["improve"].Description)

	created, err = service.SeedDefaults()
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestTemplateService_ImportDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tone.md"), []byte("Use a warm tone."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "docs.mdx"), []byte("Write reference docs."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blank.md"), []byte("   \n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "binary.md"), []byte{0x00, 0x01, 0x02}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	repo, store := memoryTemplates()
	service := services.NewTemplateService(repo)

	created, err := service.ImportDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, "Use a warm tone.", store["tone"].Content)
	assert.Equal(t, "Write reference docs.", store["docs"].Content)
	assert.NotContains(t, store, "blank")
	assert.NotContains(t, store, "binary")

	created, err = service.ImportDir(dir)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestTemplateService_ImportDir_Missing(t *testing.T) {
	service := services.NewTemplateService(&mocks.TemplateRepositoryMock{})
	_, err := service.ImportDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestTemplateService_Render(t *testing.T) {
	service := services.NewTemplateService(&mocks.TemplateRepositoryMock{
		GetFunc: func(ctx context.Context, id uint) (*models.Template, error) {
			if id == 1 {
				return &models.Template{ID: 1, Name: "t", Content: " Be brief. "}, nil
			}
			return nil, assert.AnError
		},
	})

	out, err := service.Render(1, " about cats ")
	require.NoError(t, err)
	assert.Equal(t, "Be brief.\n\nabout cats", out)

	out, err = service.Render(1, "")
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", out)

	_, err = service.Render(2, "x")
	assert.ErrorIs(t, err, assert.AnError)
}
