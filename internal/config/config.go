// Package config provides configuration management with support for
// environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Store  StoreConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// Store backends.
const (
	StoreBackendBadger = "badger"
	StoreBackendMongo  = "mongo"
)

// StoreConfig selects and configures the document store backend.
type StoreConfig struct {
	// Backend is "badger" (embedded) or "mongo" (remote).
	Backend string
	// BadgerPath is the database directory for the badger backend.
	BadgerPath string
	// MongoURI and MongoDatabase configure the mongo backend.
	MongoURI      string
	MongoDatabase string
}

// LoadConfig loads configuration with precedence:
// 1. Command-line flags (highest).
// 2. Environment variables.
// 3. .env file.
// 4. Defaults (lowest).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	storeBackend := flag.String("store-backend", "", "Document store backend (badger, mongo)")
	badgerPath := flag.String("badger-path", "", "Badger database directory")
	mongoURI := flag.String("mongo-uri", "", "MongoDB connection URI")
	mongoDatabase := flag.String("mongo-db", "", "MongoDB database name")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend:       getConfigValue(*storeBackend, "STORE_BACKEND", StoreBackendBadger),
			BadgerPath:    getConfigValue(*badgerPath, "BADGER_PATH", ""),
			MongoURI:      getConfigValue(*mongoURI, "MONGO_URI", "mongodb://localhost:27017"),
			MongoDatabase: getConfigValue(*mongoDatabase, "MONGO_DB", "notevault"),
		},
	}

	if err := cfg.expandBadgerPath(); err != nil {
		return nil, fmt.Errorf("invalid badger path: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Store.Backend {
	case StoreBackendBadger:
		if c.Store.BadgerPath == "" {
			return errors.New("badger path cannot be empty after expansion")
		}
	case StoreBackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo backend")
		}
		if c.Store.MongoDatabase == "" {
			return errors.New("MONGO_DB is required for the mongo backend")
		}
	default:
		return fmt.Errorf("invalid store backend: %s (must be badger or mongo)", c.Store.Backend)
	}
	return nil
}

// expandBadgerPath expands ~ and makes the path absolute, defaulting to
// ~/notevault/db.
func (c *Config) expandBadgerPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "notevault", "db")

	expanded, err := expandPath(c.Store.BadgerPath, defaultPath)
	if err != nil {
		return err
	}
	c.Store.BadgerPath = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute. If path is empty,
// the default is used as-is.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var,
// or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

// loadEnvFile reads KEY=VALUE pairs into the environment without
// overriding variables that are already set.
func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}
