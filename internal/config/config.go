// Package config assembles runtime settings from defaults, an optional
// YAML file, and TUTOR_* environment overrides, in that precedence order.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/petasbytes/book-tutor/internal/provider"
)

// Config holds everything the tutor process needs to start.
type Config struct {
	// Model is the Anthropic model identifier.
	Model string `yaml:"model"`
	// TokenBudget caps the retained conversation window; <= 0 disables
	// eviction.
	TokenBudget int `yaml:"token_budget"`
	// AutoSaveEvery flushes history after this many appends.
	AutoSaveEvery int `yaml:"autosave_every"`
	// MaxToolRounds bounds model/tool alternations per user input.
	MaxToolRounds int `yaml:"max_tool_rounds"`
	// DBPath is the SQLite conversation store location.
	DBPath string `yaml:"db_path"`
	// BookPath points at the JSON book file to tutor from.
	BookPath string `yaml:"book_path"`
	// Environment selects logger behavior ("prod" or "dev").
	Environment string `yaml:"environment"`
}

func defaults() Config {
	return Config{
		Model:         provider.DefaultModel,
		TokenBudget:   60000,
		AutoSaveEvery: 4,
		MaxToolRounds: 8,
		DBPath:        "tutor.db",
		BookPath:      "book.json",
		Environment:   "dev",
	}
}

// Load builds the configuration. path may be empty; a missing file at a
// non-empty path is an error, since the caller asked for it explicitly.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Model = getEnv("TUTOR_MODEL", cfg.Model)
	cfg.DBPath = getEnv("TUTOR_DB_PATH", cfg.DBPath)
	cfg.BookPath = getEnv("TUTOR_BOOK_PATH", cfg.BookPath)
	cfg.Environment = getEnv("TUTOR_ENV", cfg.Environment)

	var err error
	if cfg.TokenBudget, err = getEnvInt("TUTOR_TOKEN_BUDGET", cfg.TokenBudget); err != nil {
		return Config{}, err
	}
	if cfg.AutoSaveEvery, err = getEnvInt("TUTOR_AUTOSAVE_EVERY", cfg.AutoSaveEvery); err != nil {
		return Config{}, err
	}
	if cfg.MaxToolRounds, err = getEnvInt("TUTOR_MAX_TOOL_ROUNDS", cfg.MaxToolRounds); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
