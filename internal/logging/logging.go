// Package logging builds the zerolog logger used by the lazydi command.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	NoColor   bool   `yaml:"no_color"`
	Timestamp bool   `yaml:"timestamp"`
}

// ApplyDefaults fills in empty fields.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatConsole
	}
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch strings.ToLower(c.Format) {
	case FormatConsole, FormatJSON:
		return nil
	default:
		return fmt.Errorf("logging.format must be one of [%s %s] (got: %s)", FormatConsole, FormatJSON, c.Format)
	}
}

// New returns a logger writing to w. The level is applied to the returned
// logger only, never globally.
func New(cfg Config, w io.Writer) (zerolog.Logger, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return zerolog.Nop(), err
	}
	level, _ := zerolog.ParseLevel(strings.ToLower(cfg.Level))

	if strings.ToLower(cfg.Format) == FormatConsole {
		w = zerolog.ConsoleWriter{Out: w, NoColor: cfg.NoColor, TimeFormat: "15:04:05"}
	}

	zl := zerolog.New(w).Level(level)
	if cfg.Timestamp {
		zl = zl.With().Timestamp().Logger()
	}
	return zl, nil
}
