// Package config resolves where the database file lives. Precedence:
// the --db flag, then the FACTURO_DB environment variable (a .env file in
// the working directory is honored), then a fixed per-user default.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// EnvDBPath is the environment variable overriding the default database
// location.
const EnvDBPath = "FACTURO_DB"

const (
	defaultDirName = ".facturo"
	defaultDBName  = "facturo.db"
)

// LoadEnv loads a .env file from the working directory when one exists.
// A missing file is not an error.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Debug().Err(err).Msg("Failed to load .env file")
		}
		return
	}
	log.Debug().Msg("Loaded environment from .env")
}

// DatabasePath resolves the database file path. flagValue wins when
// non-empty, then the FACTURO_DB environment variable, then
// ~/.facturo/facturo.db.
func DatabasePath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv(EnvDBPath); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, defaultDirName, defaultDBName), nil
}
