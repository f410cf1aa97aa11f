package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Loader applies the configuration layers.
type Loader struct {
	logger  *slog.Logger
	environ map[string]string
}

// NewLoader creates a loader reading the process environment.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}

	return &Loader{logger: logger}
}

// WithEnviron replaces the process environment with environ.
func (l *Loader) WithEnviron(environ map[string]string) *Loader {
	l.environ = environ
	return l
}

// Load builds the configuration. An explicit path must exist; with an empty
// path DefaultFile is used if present.
func (l *Loader) Load(path string) (*Config, error) {
	c := Default()

	switch {
	case path != "":
		if err := c.mergeFile(path); err != nil {
			return nil, err
		}

		l.logger.Debug("loaded config file", slog.String("path", path))

	default:
		err := c.mergeFile(DefaultFile)

		switch {
		case err == nil:
			l.logger.Debug("loaded config file", slog.String("path", DefaultFile))
		case errors.Is(err, fs.ErrNotExist):
			l.logger.Debug("no config file found")
		default:
			return nil, err
		}
	}

	if err := l.parseEnv(c); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return c, nil
}

func (l *Loader) parseEnv(c *Config) error {
	opts := env.Options{}
	if l.environ != nil {
		opts.Environment = l.environ
	}

	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}
