package utils

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// LoadEnv loads the project .env when present. A missing file is not an
// error; deployments set real environment variables instead.
func LoadEnv() error {
	root, err := FindProjectRoot()
	if err != nil {
		return godotenv.Load()
	}
	envPath := filepath.Join(root, ".env")
	if _, err := os.Stat(envPath); err != nil {
		return nil
	}
	return godotenv.Load(envPath)
}

// Getenv returns the value of key or fallback when unset.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
