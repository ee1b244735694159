package config

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultReconcileInterval = 10 * time.Second

// Config is the effective daemon configuration.
type Config struct {
	Settings          Settings
	LogLevel          slog.Level
	ReconcileInterval time.Duration // 0 disables the reconciler
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Settings:          DefaultSettings(),
		LogLevel:          slog.LevelInfo,
		ReconcileInterval: DefaultReconcileInterval,
	}
}

// ValidationError reports an invalid value at a YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if w := c.Settings.Width; math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return &ValidationError{Path: "width", Err: fmt.Errorf("width must be a finite number >= 0")}
	}
	switch c.Settings.Style {
	case StyleRound, StyleSquare:
	default:
		return &ValidationError{Path: "style", Err: fmt.Errorf("style must be one of: round, square")}
	}
	if c.ReconcileInterval < 0 {
		return &ValidationError{Path: "reconcile_interval", Err: fmt.Errorf("reconcile_interval must be >= 0")}
	}
	return nil
}

// RawConfig mirrors the YAML file. Unset fields keep their defaults.
type RawConfig struct {
	ActiveColor       *Color         `yaml:"active_color,omitempty"`
	InactiveColor     *Color         `yaml:"inactive_color,omitempty"`
	Width             *float64       `yaml:"width,omitempty"`
	Style             *Style         `yaml:"style,omitempty"`
	LogLevel          string         `yaml:"log_level,omitempty"`
	ReconcileInterval *time.Duration `yaml:"reconcile_interval,omitempty"`
}

// Effective layers the raw file values over the defaults.
func (r RawConfig) Effective() (*Config, error) {
	cfg := DefaultConfig()
	if r.ActiveColor != nil {
		cfg.Settings.ActiveColor = *r.ActiveColor
	}
	if r.InactiveColor != nil {
		cfg.Settings.InactiveColor = *r.InactiveColor
	}
	if r.Width != nil {
		cfg.Settings.Width = *r.Width
	}
	if r.Style != nil {
		cfg.Settings.Style = *r.Style
	}
	if level := strings.TrimSpace(r.LogLevel); level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
		}
	}
	if r.ReconcileInterval != nil {
		cfg.ReconcileInterval = *r.ReconcileInterval
	}
	return cfg, nil
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

func (s *Style) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseStyle(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Style) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}
