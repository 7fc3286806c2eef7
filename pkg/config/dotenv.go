package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const dotEnvFile = ".env"

// LoadDotEnv loads .env files from each dir into the process environment.
// Files that do not exist are skipped, and variables already set in the
// environment win over file values.
func LoadDotEnv(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}

		path := filepath.Join(dir, dotEnvFile)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// APIKey reads the API key from the environment variable named in cfg.
func (c *Config) APIKey() string {
	if c.Dial.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Dial.APIKeyEnv)
}
