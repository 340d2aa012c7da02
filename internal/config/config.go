// Package config loads and validates the bar configuration. Mandatory
// sections fail loudly at load time; malformed optional fields fall back to
// documented defaults with a warning.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Position places the bar on one edge of a display.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
	PositionLeft   Position = "left"
	PositionRight  Position = "right"
)

// Defaults for optional fields.
const (
	DefaultAerospacePath = "aerospace"
	DefaultBarSize       = 32
	DefaultDebounceMS    = 250
	DefaultClockFormat   = "Mon 2 Jan 15:04"
)

// DisplayRule overrides the bar size on displays whose name matches Pattern
// (an RE2 regular expression). Rules are evaluated in order, first match
// wins; loading guarantees a trailing catch-all.
type DisplayRule struct {
	Pattern string `yaml:"pattern"`
	Size    int    `yaml:"size"`
}

// SizeRule is a compiled DisplayRule.
type SizeRule struct {
	Pattern *regexp.Regexp
	Size    int
}

// BarConfig positions and sizes the overlay window.
type BarConfig struct {
	Position Position      `yaml:"position"`
	Size     int           `yaml:"size"`
	Displays []DisplayRule `yaml:"displays,omitempty"`
}

// Palette is the bar color scheme, "#RRGGBB" strings.
type Palette struct {
	Background string `yaml:"background"`
	Foreground string `yaml:"foreground"`
	Accent     string `yaml:"accent"`
	Warning    string `yaml:"warning"`
}

// Widget is one entry of the ordered display-widget list. Names come from a
// closed registry; arbitrary third-party widgets are not supported.
type Widget struct {
	Name   string            `yaml:"name"`
	Params map[string]string `yaml:"params,omitempty"`
}

// Config holds the application configuration.
type Config struct {
	AerospacePath    string    `yaml:"aerospace_path"`
	Bar              BarConfig `yaml:"bar"`
	DebounceMS       int       `yaml:"debounce_ms"`
	ModeCommand      string    `yaml:"mode_command,omitempty"`
	ShowWindowCount  *bool     `yaml:"show_window_count,omitempty"`
	HideOnFullscreen *bool     `yaml:"hide_on_fullscreen,omitempty"`
	Colors           Palette   `yaml:"colors"`
	Widgets          []Widget  `yaml:"widgets"`

	sizeRules []SizeRule
}

// DefaultConfig returns the built-in configuration used when no file exists.
func DefaultConfig() *Config {
	cfg := &Config{
		AerospacePath: DefaultAerospacePath,
		Bar: BarConfig{
			Position: PositionTop,
			Size:     DefaultBarSize,
		},
		DebounceMS: DefaultDebounceMS,
		Colors:     defaultPalette(),
		Widgets:    DefaultWidgets(),
	}
	if err := cfg.Validate(); err != nil {
		// Defaults are fixed at compile time; failing to validate them is a
		// programming error.
		panic(fmt.Sprintf("built-in defaults invalid: %v", err))
	}
	return cfg
}

func defaultPalette() Palette {
	return Palette{
		Background: "#1f2933",
		Foreground: "#f5f7fa",
		Accent:     "#3498db",
		Warning:    "#e67e22",
	}
}

// DefaultWidgets is the default ordered widget list.
func DefaultWidgets() []Widget {
	return []Widget{
		{Name: "workspaces"},
		{Name: "spacer"},
		{Name: "mode"},
		{Name: "audio"},
		{Name: "clock", Params: map[string]string{"format": DefaultClockFormat}},
	}
}

// GetShowWindowCount returns the effective toggle, defaulting to true.
func (c *Config) GetShowWindowCount() bool {
	if c.ShowWindowCount == nil {
		return true
	}
	return *c.ShowWindowCount
}

// GetHideOnFullscreen returns the effective toggle, defaulting to true.
func (c *Config) GetHideOnFullscreen() bool {
	if c.HideOnFullscreen == nil {
		return true
	}
	return *c.HideOnFullscreen
}

// DebounceInterval returns the configured debounce interval. The scheduler
// enforces its own floor on top of this.
func (c *Config) DebounceInterval() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// SizeRules returns the compiled per-display size rules, ending with the
// guaranteed catch-all. Only valid after Validate.
func (c *Config) SizeRules() []SizeRule {
	return c.sizeRules
}

// ResolveSize returns the bar size for a display name, first matching rule
// wins. The catch-all makes this total.
func (c *Config) ResolveSize(displayName string) int {
	for _, rule := range c.sizeRules {
		if rule.Pattern.MatchString(displayName) {
			return rule.Size
		}
	}
	return c.Bar.Size
}

// Validate checks mandatory sections and compiles derived state. Errors
// returned here are fatal at load time.
func (c *Config) Validate() error {
	switch c.Bar.Position {
	case PositionTop, PositionBottom, PositionLeft, PositionRight:
	default:
		return fmt.Errorf("bar.position: invalid value %q (want top, bottom, left or right)", c.Bar.Position)
	}
	if c.Bar.Size <= 0 {
		return fmt.Errorf("bar.size: must be positive, got %d", c.Bar.Size)
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms: must not be negative, got %d", c.DebounceMS)
	}

	rules := make([]SizeRule, 0, len(c.Bar.Displays)+1)
	for i, rule := range c.Bar.Displays {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("bar.displays[%d].pattern: %w", i, err)
		}
		if rule.Size <= 0 {
			return fmt.Errorf("bar.displays[%d].size: must be positive, got %d", i, rule.Size)
		}
		rules = append(rules, SizeRule{Pattern: re, Size: rule.Size})
	}
	// Mandatory catch-all so size resolution is total for any display name.
	rules = append(rules, SizeRule{Pattern: regexp.MustCompile(""), Size: c.Bar.Size})
	c.sizeRules = rules

	for i, w := range c.Widgets {
		if err := validateWidget(w); err != nil {
			return fmt.Errorf("widgets[%d]: %w", i, err)
		}
	}
	return nil
}

// widgetRegistry is the closed set of supported widgets and their accepted
// parameters.
var widgetRegistry = map[string]map[string]paramKind{
	"workspaces": {"padding": paramPadding},
	"mode":       {"padding": paramPadding},
	"audio":      {"padding": paramPadding},
	"clock":      {"padding": paramPadding, "format": paramString},
	"spacer":     {"width": paramInt},
}

type paramKind int

const (
	paramString paramKind = iota
	paramInt
	paramPadding
)

func validateWidget(w Widget) error {
	params, ok := widgetRegistry[w.Name]
	if !ok {
		return fmt.Errorf("unknown widget %q", w.Name)
	}
	for key, value := range w.Params {
		kind, ok := params[key]
		if !ok {
			return fmt.Errorf("widget %q: unknown parameter %q", w.Name, key)
		}
		switch kind {
		case paramInt:
			if _, err := strconv.Atoi(value); err != nil {
				return fmt.Errorf("widget %q: parameter %q: expected integer, got %q", w.Name, key, value)
			}
		case paramPadding:
			if err := validatePadding(value); err != nil {
				return fmt.Errorf("widget %q: %w", w.Name, err)
			}
		case paramString:
			// Free-form.
		}
	}
	return nil
}

// validatePadding accepts "N" or "N M" with non-negative integers.
func validatePadding(s string) error {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return fmt.Errorf("invalid padding %q (want \"N\" or \"N M\")", s)
	}
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid padding %q (want non-negative integers)", s)
		}
	}
	return nil
}

// colorPattern matches "#RRGGBB".
var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// normalizeColors replaces malformed palette entries with defaults and
// returns a warning per replacement. Colors are optional, never fatal.
func (c *Config) normalizeColors() []string {
	defaults := defaultPalette()
	var warnings []string
	fix := func(name string, value *string, fallback string) {
		if *value == "" {
			*value = fallback
			return
		}
		if !colorPattern.MatchString(*value) {
			warnings = append(warnings, fmt.Sprintf("colors.%s: invalid color %q, using %s", name, *value, fallback))
			*value = fallback
		}
	}
	fix("background", &c.Colors.Background, defaults.Background)
	fix("foreground", &c.Colors.Foreground, defaults.Foreground)
	fix("accent", &c.Colors.Accent, defaults.Accent)
	fix("warning", &c.Colors.Warning, defaults.Warning)
	return warnings
}
