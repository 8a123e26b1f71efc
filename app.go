package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"mdxpad/internal/config"
	"mdxpad/internal/events"
	"mdxpad/internal/models"
	"mdxpad/internal/services"
)

// App struct
type App struct {
	ctx     context.Context
	cfg     *config.Config
	db      *services.DbServices
	editor  *services.EditorService
	dbClose func() error
}

// NewApp creates a new App application struct
func NewApp(cfg *config.Config, db *services.DbServices, editor *services.EditorService) *App {
	return &App{cfg: cfg, db: db, editor: editor}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	events.EnableRuntimeEmitter()

	if err := a.db.StartDbServices(ctx); err != nil {
		runtime.LogError(ctx, fmt.Sprintf("failed to start services: %v", err))
	}
	a.editor.Startup(ctx)
	runtime.LogInfo(ctx, fmt.Sprintf("mdxpad started (transport=%s, data=%s)", a.cfg.Transport, a.cfg.DataDir()))
}

// shutdown is called when the app is closing. Clean up resources here.
func (a *App) shutdown(ctx context.Context) {
	a.editor.Shutdown()

	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			runtime.LogError(ctx, fmt.Sprintf("failed to close database: %v", err))
		} else {
			runtime.LogInfo(ctx, "database closed")
		}
		a.dbClose = nil
	}
}

// GetAppSettings returns the current application settings
func (a *App) GetAppSettings() (*models.AppSettings, error) {
	return a.db.AppSettings.Get()
}

// UpdateAppSettings stores the settings and returns the saved row
func (a *App) UpdateAppSettings(update services.AppSettingsUpdate) (*models.AppSettings, error) {
	settings, err := a.db.AppSettings.Update(update)
	if err != nil {
		runtime.LogError(a.ctx, fmt.Sprintf("failed to update settings: %v", err))
		return nil, err
	}
	return settings, nil
}

// SelectTemplateDirectory opens a native directory picker dialog
func (a *App) SelectTemplateDirectory() (string, error) {
	return runtime.OpenDirectoryDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Select Template Directory",
	})
}

// ImportTemplates loads every Markdown file under dir as a prompt template
func (a *App) ImportTemplates(dir string) (int, error) {
	n, err := a.db.Templates.ImportDir(dir)
	if err != nil {
		events.Emit(a.ctx, events.Notify, events.NewError("Template import failed").WithDescription(err.Error()))
		return n, err
	}
	events.Emit(a.ctx, events.Notify, events.NewSuccess(fmt.Sprintf("Imported %d templates", n)))
	return n, nil
}

// GetConfig returns the active configuration for the settings screen
func (a *App) GetConfig() config.Config {
	return *a.cfg
}
