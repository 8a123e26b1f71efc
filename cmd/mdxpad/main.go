package main

import (
	"log"
	"os"
	"path/filepath"

	"mdxpad/internal/cli"
	"mdxpad/internal/config"
	"mdxpad/internal/utils"
)

func main() {
	if err := utils.LoadEnv(filepath.Join(config.GetConfigDir(), ".env")); err != nil {
		log.Printf("Warning: failed to load .env: %v", err)
	}
	os.Exit(cli.Execute())
}
