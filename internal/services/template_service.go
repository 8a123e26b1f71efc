package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yargevad/filepathx"

	"mdxpad/internal/assets"
	"mdxpad/internal/models"
	"mdxpad/internal/repositories"
	"mdxpad/internal/utils"
)

type TemplateService interface {
	GetTemplate(id uint) (*models.Template, error)
	ListTemplates() ([]*models.Template, error)
	CreateTemplate(t *models.Template) (*models.Template, error)
	UpdateTemplate(t *models.Template) (*models.Template, error)
	DeleteTemplate(id uint) error
	SeedDefaults() (int, error)
	ImportDir(dir string) (int, error)
	Render(id uint, instruction string) (string, error)
	Startup(ctx context.Context)
}

type templateService struct {
	repo repositories.TemplateRepository
	ctx  context.Context
}

func (s *templateService) Startup(ctx context.Context) {
	s.ctx = ctx
}

func NewTemplateService(repo repositories.TemplateRepository) TemplateService {
	return &templateService{repo: repo, ctx: context.Background()}
}

func (s *templateService) GetTemplate(id uint) (*models.Template, error) {
	tmpl, err := s.repo.Get(s.ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: get template %d: %w", id, err)
	}
	return tmpl, nil
}

func (s *templateService) ListTemplates() ([]*models.Template, error) {
	list, err := s.repo.GetAll(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("service: list templates: %w", err)
	}
	return list, nil
}

func (s *templateService) CreateTemplate(t *models.Template) (*models.Template, error) {
	if err := validateTemplate(t); err != nil {
		return nil, err
	}
	if err := s.repo.Create(s.ctx, t); err != nil {
		return nil, fmt.Errorf("service: create template: %w", err)
	}
	return t, nil
}

func (s *templateService) UpdateTemplate(t *models.Template) (*models.Template, error) {
	if err := validateTemplate(t); err != nil {
		return nil, err
	}
	if err := s.repo.Update(s.ctx, t); err != nil {
		return nil, fmt.Errorf("service: update template %d: %w", t.ID, err)
	}
	return t, nil
}

func (s *templateService) DeleteTemplate(id uint) error {
	if err := s.repo.Delete(s.ctx, id); err != nil {
		return fmt.Errorf("service: delete template %d: %w", id, err)
	}
	return nil
}

// SeedDefaults creates the built-in templates that do not exist yet.
func (s *templateService) SeedDefaults() (int, error) {
	defaults, err := assets.DefaultTemplates()
	if err != nil {
		return 0, fmt.Errorf("service: load default templates: %w", err)
	}
	created := 0
	for _, d := range defaults {
		ok, err := s.createIfMissing(d.Name, d.Content, "Built-in")
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// ImportDir creates a template from every .md and .mdx file under dir,
// named after the file. Existing names are left untouched.
func (s *templateService) ImportDir(dir string) (int, error) {
	if !utils.DirectoryExists(dir) {
		return 0, fmt.Errorf("service: import templates: %s is not a directory", dir)
	}
	var files []string
	for _, pattern := range []string{"**/*.md", "**/*.mdx"} {
		matches, err := filepathx.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return 0, fmt.Errorf("service: import templates: %w", err)
		}
		files = append(files, matches...)
	}

	created := 0
	for _, f := range files {
		if !utils.FileExists(f) {
			continue
		}
		content, err := utils.ReadTextFile(f)
		if err != nil {
			if errors.Is(err, utils.ErrBinaryFile) {
				continue
			}
			return created, fmt.Errorf("service: import template %s: %w", f, err)
		}
		name := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		ok, err := s.createIfMissing(name, content, "Imported from "+filepath.ToSlash(f))
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// Render prepends the template text to the user's instruction.
func (s *templateService) Render(id uint, instruction string) (string, error) {
	tmpl, err := s.GetTemplate(id)
	if err != nil {
		return "", err
	}
	body := strings.TrimSpace(tmpl.Content)
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return body, nil
	}
	if body == "" {
		return instruction, nil
	}
	return body + "\n\n" + instruction, nil
}

func (s *templateService) createIfMissing(name, content, description string) (bool, error) {
	content = strings.TrimSpace(content)
	if name == "" || content == "" {
		return false, nil
	}
	existing, err := s.repo.GetByName(s.ctx, name)
	if err != nil {
		return false, fmt.Errorf("service: lookup template %q: %w", name, err)
	}
	if existing != nil {
		return false, nil
	}
	t := &models.Template{Name: name, Description: description, Content: content}
	if err := s.repo.Create(s.ctx, t); err != nil {
		return false, fmt.Errorf("service: create template %q: %w", name, err)
	}
	return true, nil
}

func validateTemplate(t *models.Template) error {
	if t == nil {
		return errors.New("template is required")
	}
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return errors.New("template name is required")
	}
	if strings.TrimSpace(t.Content) == "" {
		return errors.New("template content is required")
	}
	return nil
}
