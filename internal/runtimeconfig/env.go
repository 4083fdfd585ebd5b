package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment variable read by LoadEnv.
const EnvPrefix = "FOLIO_"

// LoadEnv overlays FOLIO_* environment variables on top of DefaultConfig.
// Dotenv files are loaded first; missing files are ignored and variables
// already present in the environment win.
func LoadEnv(dotenvFiles ...string) (Config, error) {
	for _, file := range dotenvFiles {
		if file == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load dotenv %s: %w", file, err)
		}
	}
	cfg := DefaultConfig()
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv overlays FOLIO_* variables onto target, keeping values for unset keys.
func ParseEnv(target *Config) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
