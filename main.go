package main

import (
	"context"
	"embed"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"gorm.io/gorm/logger"

	"mdxpad/internal/config"
	"mdxpad/internal/database"
	"mdxpad/internal/services"
	"mdxpad/internal/utils"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	if err := utils.LoadEnv(filepath.Join(config.GetConfigDir(), ".env")); err != nil {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	config.InitDebugLog(cfg.DataDir())
	if err := config.EnsureDir(cfg.DataDir()); err != nil {
		fmt.Fprintln(os.Stderr, "Error creating data directory:", err)
		os.Exit(1)
	}

	db, err := database.Init(database.Config{
		Path:     cfg.DatabasePath(),
		LogLevel: logger.Warn,
	})
	if err != nil {
		fmt.Println("Error opening database:", err)
		return
	}

	dbServices := services.NewDbServices(db)
	keyringService := services.NewKeyringService(cfg.Keyring)
	editorService := services.NewEditorService(services.EditorDeps{
		Resolve:   services.ProviderResolver(cfg),
		Keys:      keyringService,
		History:   dbServices.History,
		Templates: dbServices.Templates,
		Models:    dbServices.ModelConfigs,
		Logger:    config.DebugLog,
	})

	app := NewApp(cfg, dbServices, editorService)
	app.dbClose = func() error { return database.Close(db) }

	err = wails.Run(&options.App{
		Title:  "mdxpad",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Linux: &linux.Options{
			WindowIsTranslucent: false,
			WebviewGpuPolicy:    linux.WebviewGpuPolicyAlways,
			ProgramName:         "mdxpad",
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup: func(ctx context.Context) {
			app.startup(ctx)
		},
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
			editorService,
			dbServices.AppSettings,
			dbServices.Templates,
			dbServices.ModelConfigs,
			dbServices.History,
			keyringService,
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
