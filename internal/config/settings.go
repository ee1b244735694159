package config

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a 32-bit color packed as 0xAARRGGBB.
type Color uint32

// RGBA returns the color components scaled to [0,1].
func (c Color) RGBA() (r, g, b, a float64) {
	return float64((c>>16)&0xff) / 255,
		float64((c>>8)&0xff) / 255,
		float64(c&0xff) / 255,
		float64((c>>24)&0xff) / 255
}

func (c Color) String() string {
	return fmt.Sprintf("0x%08x", uint32(c))
}

// ParseColor accepts 0xAARRGGBB with all eight digits, or #rrggbb (alpha
// forced to 0xff).
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		if len(s) != 10 {
			return 0, fmt.Errorf("invalid color %q: expected 8 hex digits", s)
		}
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid color %q: %w", s, err)
		}
		return Color(v), nil
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return 0, fmt.Errorf("invalid color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return Color(0xff<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)), nil
	default:
		return 0, fmt.Errorf("invalid color %q: expected 0xAARRGGBB or #rrggbb", s)
	}
}

// Style selects the corner shape of the stroked outline.
type Style byte

const (
	StyleRound  Style = 'r'
	StyleSquare Style = 's'
)

const roundRadius = 9.0

// Radius returns the corner radius used when stroking the outline.
func (s Style) Radius() float64 {
	if s == StyleSquare {
		return 0
	}
	return roundRadius
}

func (s Style) String() string {
	switch s {
	case StyleRound:
		return "round"
	case StyleSquare:
		return "square"
	default:
		return fmt.Sprintf("Style(%q)", byte(s))
	}
}

// ParseStyle accepts the long names used in the config file and the single
// character form used on the command line.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "round", "r":
		return StyleRound, nil
	case "square", "s":
		return StyleSquare, nil
	default:
		return 0, fmt.Errorf("invalid style %q: expected round or square", s)
	}
}

// Scope classifies which borders must redraw after a settings change.
type Scope uint8

const (
	ScopeNone     Scope = 0
	ScopeActive   Scope = 1 << 0
	ScopeInactive Scope = 1 << 1
	ScopeAll      Scope = 1 << 2
)

// Normalize collapses a combined scope to the single redraw it requires.
// ALL wins over everything; both colors together also mean ALL.
func (s Scope) Normalize() Scope {
	switch {
	case s&ScopeAll != 0:
		return ScopeAll
	case s&ScopeActive != 0 && s&ScopeInactive != 0:
		return ScopeAll
	case s&ScopeActive != 0:
		return ScopeActive
	case s&ScopeInactive != 0:
		return ScopeInactive
	default:
		return ScopeNone
	}
}

func (s Scope) String() string {
	switch s.Normalize() {
	case ScopeAll:
		return "ALL"
	case ScopeActive:
		return "ACTIVE"
	case ScopeInactive:
		return "INACTIVE"
	default:
		return "NONE"
	}
}

// Settings holds the stroke parameters shared by every border.
type Settings struct {
	ActiveColor   Color
	InactiveColor Color
	Width         float64
	Style         Style
}

// DefaultSettings returns the built-in stroke parameters.
func DefaultSettings() Settings {
	return Settings{
		ActiveColor:   0xffe1e3e4,
		InactiveColor: 0xff494d64,
		Width:         4.0,
		Style:         StyleRound,
	}
}

func (s Settings) String() string {
	return fmt.Sprintf("active_color=%s inactive_color=%s width=%g style=%s",
		s.ActiveColor, s.InactiveColor, s.Width, s.Style)
}

// StrokeColor picks the active or inactive color.
func (s *Settings) StrokeColor(focused bool) Color {
	if focused {
		return s.ActiveColor
	}
	return s.InactiveColor
}

// ApplyToken applies a single key=value token. It reports false, leaving s
// untouched, when the token is not recognized or its value does not parse.
func (s *Settings) ApplyToken(token string) (Scope, bool) {
	key, value, ok := strings.Cut(token, "=")
	if !ok {
		return ScopeNone, false
	}

	switch key {
	case "active_color", "inactive_color":
		if !strings.HasPrefix(value, "0x") && !strings.HasPrefix(value, "0X") {
			return ScopeNone, false
		}
		c, err := ParseColor(value)
		if err != nil {
			return ScopeNone, false
		}
		if key == "active_color" {
			s.ActiveColor = c
			return ScopeActive, true
		}
		s.InactiveColor = c
		return ScopeInactive, true

	case "width":
		w, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return ScopeNone, false
		}
		s.Width = w
		return ScopeAll, true

	case "style":
		if len(value) != 1 {
			return ScopeNone, false
		}
		style, err := ParseStyle(value)
		if err != nil {
			return ScopeNone, false
		}
		s.Style = style
		return ScopeAll, true
	}

	return ScopeNone, false
}

// Apply applies every token in order and returns the normalized scope.
// Unrecognized tokens are logged and skipped.
func (s *Settings) Apply(tokens []string, logger *slog.Logger) Scope {
	var scope Scope
	for _, token := range tokens {
		sc, ok := s.ApplyToken(token)
		if !ok {
			if logger != nil {
				logger.Warn("ignoring invalid setting", "token", token)
			}
			continue
		}
		scope |= sc
	}
	return scope.Normalize()
}

// SplitTokens separates tokens into those ApplyToken accepts and those it
// rejects, without modifying any live settings.
func SplitTokens(tokens []string) (recognized, rejected []string) {
	scratch := DefaultSettings()
	for _, token := range tokens {
		if _, ok := scratch.ApplyToken(token); ok {
			recognized = append(recognized, token)
		} else {
			rejected = append(rejected, token)
		}
	}
	return recognized, rejected
}
