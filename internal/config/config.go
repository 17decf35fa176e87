// Package config loads quickwit's startup options from an optional YAML file
// and builds the logger they describe. The file is only ever read.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/metcalfc/quickwit/internal/session"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// WPM is the starting speed.
	WPM int `yaml:"wpm"`
	// LogFile receives JSON logs. Empty disables logging.
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`
	// StateDir holds the reading-position database.
	StateDir string `yaml:"state_dir"`
	// Resume restores the last position of a previously read file.
	Resume bool `yaml:"resume"`
	// ExcludeHeaders drops running page headers and footers from PDFs.
	ExcludeHeaders bool `yaml:"exclude_headers"`
}

func Default() Config {
	return Config{
		WPM:            session.DefaultWPM,
		LogLevel:       "info",
		Resume:         true,
		ExcludeHeaders: true,
	}
}

// DefaultPath returns XDG_CONFIG_HOME/quickwit/config.yaml or
// ~/.config/quickwit/config.yaml
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "quickwit", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "quickwit", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.WPM < session.MinWPM || c.WPM > session.MaxWPM {
		return fmt.Errorf("wpm %d out of range [%d, %d]", c.WPM, session.MinWPM, session.MaxWPM)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// NewLogger returns a production JSON logger writing to c.LogFile, or a
// no-op logger when no file is configured. Terminal output belongs to the UI.
func NewLogger(c Config) (*zap.Logger, error) {
	if c.LogFile == "" {
		return zap.NewNop(), nil
	}

	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{c.LogFile}
	zc.ErrorOutputPaths = []string{c.LogFile}
	return zc.Build()
}
