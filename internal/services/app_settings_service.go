package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mdxpad/internal/llm"
	"mdxpad/internal/models"
	"mdxpad/internal/repositories"
)

// AppSettingsUpdate carries the editable settings fields.
type AppSettingsUpdate struct {
	Theme           string `json:"theme"`
	DefaultProvider string `json:"defaultProvider"`
	DefaultModelKey string `json:"defaultModelKey"`
	Streaming       bool   `json:"streaming"`
}

type AppSettingsService interface {
	Get() (*models.AppSettings, error)
	Update(update AppSettingsUpdate) (*models.AppSettings, error)
	Startup(ctx context.Context)
}

type appSettingsService struct {
	appSettings repositories.AppSettingsRepository
	context     context.Context
}

func (s *appSettingsService) Startup(ctx context.Context) {
	s.context = ctx
}

func NewAppSettingsService(appSettings repositories.AppSettingsRepository) AppSettingsService {
	return &appSettingsService{appSettings: appSettings, context: context.Background()}
}

func (s *appSettingsService) Get() (*models.AppSettings, error) {
	return s.appSettings.Get(s.context)
}

func (s *appSettingsService) Update(update AppSettingsUpdate) (*models.AppSettings, error) {
	theme := strings.TrimSpace(update.Theme)
	if theme == "" {
		return nil, errors.New("theme is required")
	}
	if theme != "light" && theme != "dark" && theme != "system" {
		return nil, errors.New("theme must be 'light', 'dark', or 'system'")
	}
	provider, err := llm.ParseProviderKind(update.DefaultProvider)
	if err != nil {
		return nil, fmt.Errorf("default provider: %w", err)
	}
	modelKey := strings.TrimSpace(update.DefaultModelKey)
	if modelKey != "" {
		p, _, ok := ModelFromKey(modelKey)
		if !ok {
			return nil, fmt.Errorf("invalid model key %q", modelKey)
		}
		if p != string(provider) {
			return nil, fmt.Errorf("model %q does not belong to provider %s", modelKey, provider)
		}
	}

	current, err := s.appSettings.Get(s.context)
	if err != nil {
		return nil, err
	}

	current.Theme = theme
	current.DefaultProvider = string(provider)
	current.DefaultModelKey = modelKey
	current.Streaming = update.Streaming
	current.UpdatedAt = time.Now()

	if err := s.appSettings.Update(s.context, current); err != nil {
		return nil, err
	}

	return current, nil
}
