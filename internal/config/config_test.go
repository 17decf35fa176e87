package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		check   func(t *testing.T, c Config)
		wantErr string
	}{
		{
			name: "overrides",
			yaml: "wpm: 450\nlog_level: debug\nresume: false\nstate_dir: /tmp/qw\n",
			check: func(t *testing.T, c Config) {
				if c.WPM != 450 || c.LogLevel != "debug" || c.Resume || c.StateDir != "/tmp/qw" {
					t.Errorf("Load() = %+v", c)
				}
				if !c.ExcludeHeaders {
					t.Error("unset fields should keep their defaults")
				}
			},
		},
		{
			name:    "wpm too low",
			yaml:    "wpm: 0\n",
			wantErr: "wpm 0 out of range",
		},
		{
			name:    "bad level",
			yaml:    "log_level: loud\n",
			wantErr: "log_level",
		},
		{
			name:    "not yaml",
			yaml:    "wpm: [1, 2\n",
			wantErr: "failed to parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			cfg, err := Load(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Load() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	if got := DefaultPath(); got != filepath.Join("/tmp/xdg-config", "quickwit", "config.yaml") {
		t.Errorf("DefaultPath() = %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(Default())
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("discarded")

	cfg := Default()
	cfg.LogFile = filepath.Join(t.TempDir(), "logs", "quickwit.log")
	logger, err = NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("hello from test")
	logger.Sync()

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file = %q", data)
	}
}
