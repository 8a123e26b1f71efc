package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// FindProjectRoot walks up from the working directory to the first folder
// holding a go.mod or .env file.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		for _, marker := range []string{"go.mod", ".env"} {
			if FileExists(filepath.Join(dir, marker)) {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// LoadEnv loads the project .env and then each extra file. Missing files
// are skipped and variables already set in the environment win.
func LoadEnv(extra ...string) error {
	var paths []string
	if root, err := FindProjectRoot(); err == nil {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	paths = append(paths, extra...)

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}
