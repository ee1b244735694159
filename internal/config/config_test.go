package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Settings != DefaultSettings() {
		t.Fatalf("unexpected default settings: %+v", cfg.Settings)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Settings != DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", cfg.Settings)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("# empty\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ReconcileInterval != DefaultReconcileInterval {
		t.Fatalf("expected default reconcile interval, got %v", cfg.ReconcileInterval)
	}
}

func TestLoadFromPath_AllKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := strings.Join([]string{
		`active_color: "0xff89b4fa"`,
		`inactive_color: "#313244"`,
		`width: 6.5`,
		`style: square`,
		`log_level: debug`,
		`reconcile_interval: 30s`,
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Settings.ActiveColor != 0xff89b4fa {
		t.Fatalf("active_color = %v", cfg.Settings.ActiveColor)
	}
	if cfg.Settings.InactiveColor != 0xff313244 {
		t.Fatalf("inactive_color = %v", cfg.Settings.InactiveColor)
	}
	if cfg.Settings.Width != 6.5 {
		t.Fatalf("width = %v", cfg.Settings.Width)
	}
	if cfg.Settings.Style != StyleSquare {
		t.Fatalf("style = %v", cfg.Settings.Style)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("log_level = %v", cfg.LogLevel)
	}
	if cfg.ReconcileInterval != 30*time.Second {
		t.Fatalf("reconcile_interval = %v", cfg.ReconcileInterval)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("unknown_key: 1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"negative width": "width: -2\n",
		"infinite width": "width: .inf\n",
		"nan width":      "width: .nan\n",
		"short color":    "active_color: \"0xff\"\n",
		"bad style":      "style: wavy\n",
		"bad color":      "active_color: blue\n",
		"bad log level":  "log_level: loud\n",
		"bad interval":   "reconcile_interval: -5s\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := LoadFromPath(path); err == nil {
				t.Fatalf("expected error for %q", body)
			}
		})
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if !strings.HasSuffix(path, filepath.Join("borders", "config.yaml")) {
		t.Fatalf("DefaultConfigPath() = %q", path)
	}
}
