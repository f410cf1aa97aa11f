// Package config loads ocm-mapper settings from defaults, an optional YAML
// file and OCM_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory when no
// path is given.
const DefaultFile = "ocm-mapper.yaml"

// Store kinds.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreNATS   = "nats"
)

var storeKinds = []string{StoreMemory, StoreSQLite, StoreNATS}

// Config is the complete ocm-mapper configuration.
type Config struct {
	Store StoreConfig `yaml:"store"`
	// Mappings are doublestar globs of mapping files.
	Mappings []string `yaml:"mappings" env:"OCM_MAPPINGS" envSeparator:","`
	LogLevel string   `yaml:"log_level" env:"OCM_LOG_LEVEL"`
}

// StoreConfig selects and configures the node store.
type StoreConfig struct {
	Kind       string `yaml:"kind" env:"OCM_STORE"`
	SQLitePath string `yaml:"sqlite_path" env:"OCM_SQLITE_PATH"`
	NATSURL    string `yaml:"nats_url" env:"OCM_NATS_URL"`
	Bucket     string `yaml:"bucket" env:"OCM_NATS_BUCKET"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Kind:       StoreMemory,
			SQLitePath: "ocm.db",
			NATSURL:    "nats://127.0.0.1:4222",
			Bucket:     "OCM_NODES",
		},
		Mappings: []string{"mappings/**/*.yaml"},
		LogLevel: "info",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case !slices.Contains(storeKinds, c.Store.Kind):
		errs = append(errs, fmt.Errorf("store.kind %q must be one of %s", c.Store.Kind, strings.Join(storeKinds, ", ")))
	case c.Store.Kind == StoreSQLite && c.Store.SQLitePath == "":
		errs = append(errs, errors.New("store.sqlite_path is required for the sqlite store"))
	case c.Store.Kind == StoreNATS && c.Store.NATSURL == "":
		errs = append(errs, errors.New("store.nats_url is required for the nats store"))
	case c.Store.Kind == StoreNATS && c.Store.Bucket == "":
		errs = append(errs, errors.New("store.bucket is required for the nats store"))
	}

	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}

	return level, nil
}

// LoadFromFile reads a YAML config file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	c := Default()
	if err := c.mergeFile(path); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	return nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
