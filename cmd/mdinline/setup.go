package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdinline"
	"github.com/alnah/go-mdinline/internal/assets"
	"github.com/alnah/go-mdinline/internal/config"
	"github.com/alnah/go-mdinline/internal/fileutil"
	"github.com/alnah/go-mdinline/internal/hints"
	"github.com/alnah/go-mdinline/internal/logging"
	"go.uber.org/zap"
)

// loadConfig loads the config named by --config, then MDINLINE_CONFIG.
// Without either, defaults are returned.
func loadConfig(common commonFlags, env *envConfig) (*config.Config, error) {
	name := common.config
	if name == "" {
		name = env.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(configSearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// configSearchPaths lists where a config name is looked up, for hints.
func configSearchPaths(name string) []string {
	if fileutil.IsFilePath(name) {
		return []string{name}
	}
	paths := []string{name + ".yaml", name + ".yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "go-mdinline", name+".yaml"))
	}
	return paths
}

// mergeThemeFlags applies theme flags given on the command line.
func mergeThemeFlags(f themeFlags, set map[string]bool, cfg *config.Config) {
	if set["theme"] {
		cfg.Theme.Name = f.name
	}
	if set["asset-path"] {
		cfg.Theme.BasePath = f.assetPath
	}
	if set["code-style"] {
		cfg.Code.Style = f.codeStyle
	}
}

// validateConfig validates the merged config, hinting on line-height errors.
func validateConfig(cfg *config.Config) error {
	if err := cfg.Font.LineHeight.Validate(); err != nil {
		return fmt.Errorf("%w%s", err, hints.ForLineHeight())
	}
	return cfg.Validate()
}

// newLogger builds the CLI logger. When the result goes to stdout, all
// log output moves to stderr so it never mixes with the HTML.
func newLogger(level string, resultOnStdout bool, env *Environment) (*zap.Logger, error) {
	out := env.Stdout
	if resultOnStdout {
		out = env.Stderr
	}
	log, err := logging.New("mdinline", level, out, env.Stderr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return log, nil
}

// newConverter builds a converter from the merged config.
// A theme containing a path separator is loaded from that file.
func newConverter(cfg *config.Config, log *zap.Logger) (*mdinline.Converter, error) {
	opts := []mdinline.Option{mdinline.WithLogger(log)}

	if fileutil.IsFilePath(cfg.Theme.Name) {
		path := cfg.Theme.Name
		if !fileutil.FileExists(path) {
			return nil, fmt.Errorf("%w: %s%s", mdinline.ErrThemeNotFound, path, hints.ForThemeNotFound(mdinline.ThemeNames()))
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		opts = append(opts,
			mdinline.WithAssetLoader(fileThemeLoader{path: path}),
			mdinline.WithTheme(name),
		)
	} else {
		opts = append(opts, mdinline.WithTheme(cfg.Theme.Name))
		if cfg.Theme.BasePath != "" {
			opts = append(opts, mdinline.WithAssetPath(cfg.Theme.BasePath))
		}
	}
	if cfg.Code.Style != "" {
		opts = append(opts, mdinline.WithCodeStyle(cfg.Code.Style))
	}

	conv, err := mdinline.NewConverter(opts...)
	switch {
	case err == nil:
		return conv, nil
	case errors.Is(err, mdinline.ErrThemeNotFound):
		return nil, fmt.Errorf("%w%s", err, hints.ForThemeNotFound(mdinline.ThemeNames()))
	case errors.Is(err, mdinline.ErrInvalidAssetPath):
		return nil, fmt.Errorf("%w%s", err, hints.ForAssetPath())
	default:
		return nil, err
	}
}

// fileThemeLoader serves a single theme file whatever name is asked for.
type fileThemeLoader struct {
	path string
}

func (l fileThemeLoader) LoadTheme(string) (*mdinline.Theme, error) {
	return assets.LoadThemeFile(l.path)
}

var _ mdinline.AssetLoader = fileThemeLoader{}

// fontFromConfig converts the font section. A zero size means no font
// styling, matching config.FontConfig.FontSettings.
func fontFromConfig(f config.FontConfig) *mdinline.Font {
	fs := f.FontSettings()
	if fs == nil {
		return nil
	}
	return &mdinline.Font{
		Family:        fs.Family,
		Size:          fs.Size,
		LineHeight:    fs.LineHeight,
		LetterSpacing: fs.LetterSpacing,
	}
}

// validateImageBase accepts an http(s) URL or an existing directory.
func validateImageBase(base string) error {
	if base == "" || fileutil.IsURL(base) {
		return nil
	}
	if info, err := os.Stat(base); err == nil && info.IsDir() {
		return nil
	}
	return fmt.Errorf("%w: %q is neither an http(s) URL nor a directory%s", ErrInvalidImageBase, base, hints.ForImageBaseURL())
}
