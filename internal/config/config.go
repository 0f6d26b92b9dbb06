package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alnah/go-mdinline/internal/pipeline"
	"github.com/alnah/go-mdinline/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits for multi-tenant safety.
const (
	MaxFontFamilyLength = 50   // "pingfang-sc", "system-default"
	MaxLineHeightLength = 20   // "1.75", "28px"
	MaxThemeNameLength  = 64   // asset name, no extension
	MaxCodeStyleLength  = 50   // chroma style name
	MaxPathLength       = 4096 // PATH_MAX on Linux
	MaxURLLength        = 2048 // Browser limit
)

// Numeric ranges accepted for font settings, in px.
const (
	MinFontSize      = 8
	MaxFontSize      = 72
	MinLetterSpacing = -2
	MaxLetterSpacing = 10
)

// Log levels accepted in log.level.
const (
	LogLevelNone   = "none"
	LogLevelQuiet  = "quiet"
	LogLevelNormal = "normal"
	LogLevelDebug  = "debug"
)

// Config holds all configuration for HTML generation.
type Config struct {
	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`
	Font   FontConfig   `yaml:"font"`
	Theme  ThemeConfig  `yaml:"theme"`
	Code   CodeConfig   `yaml:"code"`
	Render RenderConfig `yaml:"render"`
	Log    LogConfig    `yaml:"log"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
	Standalone bool   `yaml:"standalone"` // Wrap fragments in a full HTML document
}

// FontConfig defines the typography forced onto the output.
type FontConfig struct {
	Family        string     `yaml:"family"`        // Key into the font family table
	Size          float64    `yaml:"size"`          // Base size in px (0 = no font styling)
	LineHeight    LineHeight `yaml:"lineHeight"`    // Ratio or CSS length (empty = derived)
	LetterSpacing float64    `yaml:"letterSpacing"` // px (0 = not set)
}

// ThemeConfig selects the color theme.
type ThemeConfig struct {
	Name     string `yaml:"name"`     // Theme name (default: "default")
	BasePath string `yaml:"basePath"` // Directory with themes/*.yaml (empty = embedded only)
}

// CodeConfig defines code block options.
type CodeConfig struct {
	Style string `yaml:"style"` // Chroma style overriding the theme's (empty = theme)
}

// RenderConfig defines pipeline switches.
type RenderConfig struct {
	Preview      bool   `yaml:"preview"`      // Skip font post-processing
	Reflow       bool   `yaml:"reflow"`       // Run the generic converter on the output
	ImageBaseURL string `yaml:"imageBaseURL"` // Base for relative image sources
}

// LogConfig defines logging options.
type LogConfig struct {
	Level string `yaml:"level"` // none, quiet, normal, debug (default: normal)
}

// LineHeight is a line-height setting written either as a YAML number
// (lineHeight: 1.6) or as a string (lineHeight: "28px").
type LineHeight string

// UnmarshalYAML accepts numbers and strings.
func (l *LineHeight) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*l = ""
	case string:
		*l = LineHeight(strings.TrimSpace(v))
	case float64:
		*l = LineHeight(strconv.FormatFloat(v, 'f', -1, 64))
	case uint64:
		*l = LineHeight(strconv.FormatUint(v, 10))
	case int64:
		*l = LineHeight(strconv.FormatInt(v, 10))
	case int:
		*l = LineHeight(strconv.Itoa(v))
	default:
		return fmt.Errorf("lineHeight: expected number or string, got %T", raw)
	}
	return nil
}

// Validate checks that the value is empty, a positive ratio, or a CSS length.
func (l LineHeight) Validate() error {
	s := strings.TrimSpace(string(l))
	if s == "" {
		return nil
	}
	if len(s) > MaxLineHeightLength {
		return fmt.Errorf("%w: font.lineHeight (%d chars, max %d)", ErrFieldTooLong, len(s), MaxLineHeightLength)
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n <= 0 || math.IsInf(n, 0) {
			return fmt.Errorf("%w: font.lineHeight must be positive, got %q", ErrInvalidValue, s)
		}
		return nil
	}
	if pipeline.IsCSSLength(strings.ToLower(s)) {
		return nil
	}
	return fmt.Errorf("%w: font.lineHeight %q is neither a number nor a CSS length", ErrInvalidValue, s)
}

// FontSettings converts the font section for the pipeline. It returns nil
// when no size is configured, which disables font post-processing.
func (f FontConfig) FontSettings() *pipeline.FontSettings {
	if f.Size == 0 {
		return nil
	}
	return &pipeline.FontSettings{
		Family:        f.Family,
		Size:          f.Size,
		LineHeight:    string(f.LineHeight),
		LetterSpacing: f.LetterSpacing,
	}
}

// Validate checks field lengths and ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually (e.g., API adapters, library users).
func (c *Config) Validate() error {
	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	// Validate font fields
	if err := validateFieldLength("font.family", c.Font.Family, MaxFontFamilyLength); err != nil {
		return err
	}
	if c.Font.Size != 0 && (math.IsNaN(c.Font.Size) || c.Font.Size < MinFontSize || c.Font.Size > MaxFontSize) {
		return fmt.Errorf("%w: font.size must be between %d and %d, got %v", ErrInvalidValue, MinFontSize, MaxFontSize, c.Font.Size)
	}
	if math.IsNaN(c.Font.LetterSpacing) || c.Font.LetterSpacing < MinLetterSpacing || c.Font.LetterSpacing > MaxLetterSpacing {
		return fmt.Errorf("%w: font.letterSpacing must be between %d and %d, got %v", ErrInvalidValue, MinLetterSpacing, MaxLetterSpacing, c.Font.LetterSpacing)
	}
	if err := c.Font.LineHeight.Validate(); err != nil {
		return err
	}

	// Validate theme and code fields
	if err := validateFieldLength("theme.name", c.Theme.Name, MaxThemeNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("theme.basePath", c.Theme.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("code.style", c.Code.Style, MaxCodeStyleLength); err != nil {
		return err
	}

	// Validate render fields
	if err := validateFieldLength("render.imageBaseURL", c.Render.ImageBaseURL, MaxURLLength); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Level) {
	case "", LogLevelNone, LogLevelQuiet, LogLevelNormal, LogLevelDebug:
		// valid
	default:
		return fmt.Errorf("%w: log.level %q (must be none, quiet, normal or debug)", ErrInvalidValue, c.Log.Level)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given:
// 16px system font, default theme, normal logging.
func DefaultConfig() *Config {
	return &Config{
		Input:  InputConfig{DefaultDir: ""},
		Output: OutputConfig{DefaultDir: ""},
		Font:   FontConfig{Family: pipeline.FallbackFontFamily, Size: 16},
		Theme:  ThemeConfig{Name: "default"},
		Code:   CodeConfig{Style: ""},
		Render: RenderConfig{},
		Log:    LogConfig{Level: LogLevelNormal},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFile(configPath, cfg, true); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, $XDG_CONFIG_HOME/go-mdinline/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	// Try current directory first (both extensions)
	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	// Try user config directory (both extensions)
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-mdinline", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
