package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-mdinline/internal/config"
)

// envPrefix namespaces the environment variables read by the CLI.
const envPrefix = "MDINLINE_"

// envConfig holds configuration from environment variables.
// Provides CI-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath   string  // MDINLINE_CONFIG: config file name or path
	Theme        string  // MDINLINE_THEME: theme name or path
	AssetPath    string  // MDINLINE_ASSET_PATH: custom theme directory
	CodeStyle    string  // MDINLINE_CODE_STYLE: chroma style
	InputDir     string  // MDINLINE_INPUT_DIR: default input directory
	OutputDir    string  // MDINLINE_OUTPUT_DIR: default output directory
	FontFamily   string  // MDINLINE_FONT_FAMILY: font family key
	FontSize     float64 // MDINLINE_FONT_SIZE: base size in px
	ImageBaseURL string  // MDINLINE_IMAGE_BASE_URL: base for relative images
	LogLevel     string  // MDINLINE_LOG_LEVEL: none, quiet, normal, debug
	Workers      int     // MDINLINE_WORKERS: parallel workers
}

// knownEnvVars lists valid MDINLINE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDINLINE_CONFIG":         true,
	"MDINLINE_THEME":          true,
	"MDINLINE_ASSET_PATH":     true,
	"MDINLINE_CODE_STYLE":     true,
	"MDINLINE_INPUT_DIR":      true,
	"MDINLINE_OUTPUT_DIR":     true,
	"MDINLINE_FONT_FAMILY":    true,
	"MDINLINE_FONT_SIZE":      true,
	"MDINLINE_IMAGE_BASE_URL": true,
	"MDINLINE_LOG_LEVEL":      true,
	"MDINLINE_WORKERS":        true,
}

// loadEnvConfig reads configuration from environment variables.
// Unparseable numbers are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:   os.Getenv("MDINLINE_CONFIG"),
		Theme:        os.Getenv("MDINLINE_THEME"),
		AssetPath:    os.Getenv("MDINLINE_ASSET_PATH"),
		CodeStyle:    os.Getenv("MDINLINE_CODE_STYLE"),
		InputDir:     os.Getenv("MDINLINE_INPUT_DIR"),
		OutputDir:    os.Getenv("MDINLINE_OUTPUT_DIR"),
		FontFamily:   os.Getenv("MDINLINE_FONT_FAMILY"),
		ImageBaseURL: os.Getenv("MDINLINE_IMAGE_BASE_URL"),
		LogLevel:     os.Getenv("MDINLINE_LOG_LEVEL"),
	}

	if size := os.Getenv("MDINLINE_FONT_SIZE"); size != "" {
		if s, err := strconv.ParseFloat(size, 64); err == nil && s > 0 {
			cfg.FontSize = s
		}
	}

	if workers := os.Getenv("MDINLINE_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars writes a warning for each unrecognized MDINLINE_* variable.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overlays set environment values onto cfg.
// Precedence is CLI flags > env vars > config file > defaults; flags are
// merged afterwards.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Theme != "" {
		cfg.Theme.Name = env.Theme
	}
	if env.AssetPath != "" {
		cfg.Theme.BasePath = env.AssetPath
	}
	if env.CodeStyle != "" {
		cfg.Code.Style = env.CodeStyle
	}
	if env.InputDir != "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.FontFamily != "" {
		cfg.Font.Family = env.FontFamily
	}
	if env.FontSize != 0 {
		cfg.Font.Size = env.FontSize
	}
	if env.ImageBaseURL != "" {
		cfg.Render.ImageBaseURL = env.ImageBaseURL
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
}
