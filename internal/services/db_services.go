package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"mdxpad/internal/repositories"
)

// DbServices aggregates all domain services backed by the database.
type DbServices struct {
	AppSettings  AppSettingsService
	Templates    TemplateService
	ModelConfigs ModelConfigService
	History      GenerationHistoryService
}

// NewDbServices constructs the service container using repositories backed by db.
func NewDbServices(db *gorm.DB) *DbServices {
	return &DbServices{
		AppSettings:  NewAppSettingsService(repositories.NewAppSettingsRepository(db)),
		Templates:    NewTemplateService(repositories.NewTemplateRepository(db)),
		ModelConfigs: NewModelConfigService(repositories.NewModelSettingRepository(db)),
		History:      NewGenerationHistoryService(repositories.NewGenerationRecordRepository(db)),
	}
}

// StartDbServices hands ctx to every service, loads the model catalog and
// seeds the built-in prompt templates.
func (s *DbServices) StartDbServices(ctx context.Context) error {
	s.AppSettings.Startup(ctx)
	s.Templates.Startup(ctx)
	s.History.Startup(ctx)
	if err := s.ModelConfigs.Startup(ctx); err != nil {
		return fmt.Errorf("start model catalog: %w", err)
	}
	if _, err := s.Templates.SeedDefaults(); err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}
	return nil
}
