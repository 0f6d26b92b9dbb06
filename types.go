package mdinline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-mdinline/internal/pipeline"
)

// Font size bounds in px.
const (
	MinFontSize     = 8
	MaxFontSize     = 72
	DefaultFontSize = 16
)

// Letter spacing bounds in px.
const (
	MinLetterSpacing = -2
	MaxLetterSpacing = 10
)

// FallbackFontFamily is used for unknown font family keys.
const FallbackFontFamily = pipeline.FallbackFontFamily

// Font configures the typography forced onto the output.
type Font struct {
	Family        string  // key into the font family table, unknown keys fall back
	Size          float64 // base size in px
	LineHeight    string  // "" = derived from Size; a ratio ("1.6") or CSS length ("28px")
	LetterSpacing float64 // px, 0 = not set
}

// DefaultFont returns 16px text in the system font stack.
func DefaultFont() *Font {
	return &Font{
		Family: FallbackFontFamily,
		Size:   DefaultFontSize,
	}
}

// Validate checks that font settings are usable.
// Returns nil if f is nil (nil means no font styling).
// A line height that is neither a number nor a CSS length is accepted
// and later replaced by the default ratio.
func (f *Font) Validate() error {
	if f == nil {
		return nil
	}

	if math.IsNaN(f.Size) || f.Size < MinFontSize || f.Size > MaxFontSize {
		return fmt.Errorf("%w: %v (must be between %d and %d)", ErrInvalidFontSize, f.Size, MinFontSize, MaxFontSize)
	}

	if math.IsNaN(f.LetterSpacing) || f.LetterSpacing < MinLetterSpacing || f.LetterSpacing > MaxLetterSpacing {
		return fmt.Errorf("%w: %v (must be between %d and %d)", ErrInvalidLetterSpacing, f.LetterSpacing, MinLetterSpacing, MaxLetterSpacing)
	}

	if n, err := strconv.ParseFloat(strings.TrimSpace(f.LineHeight), 64); err == nil && (n <= 0 || math.IsInf(n, 0)) {
		return fmt.Errorf("%w: %q (must be positive)", ErrInvalidLineHeight, f.LineHeight)
	}

	return nil
}

// settings converts the public Font to pipeline settings, logging a
// substituted line height at debug level.
func (f *Font) settings(log *zap.Logger) *pipeline.FontSettings {
	if f == nil {
		return nil
	}
	fs := &pipeline.FontSettings{
		Family:        f.Family,
		Size:          f.Size,
		LineHeight:    f.LineHeight,
		LetterSpacing: f.LetterSpacing,
	}
	if lh := strings.TrimSpace(f.LineHeight); lh != "" {
		if _, err := strconv.ParseFloat(lh, 64); err != nil && !pipeline.IsCSSLength(lh) {
			log.Debug("line height not understood, using default",
				zap.String("lineHeight", f.LineHeight), zap.String("default", pipeline.DefaultLineHeight))
		}
	}
	return fs
}

// Input contains conversion parameters.
type Input struct {
	Markdown string // Markdown content (required)

	// Font forces typography onto every text element.
	// Nil leaves the renderer's sizes untouched.
	Font *Font

	// Preview returns the rendered HTML without font post-processing,
	// for display in a live preview that is already styled.
	Preview bool

	// Reflow runs the generic converter over the rendered HTML, removing
	// any remaining table and list tags.
	Reflow bool

	// ImageBaseURL resolves relative image sources (e.g. an image host).
	ImageBaseURL string

	// Standalone wraps the fragment in a minimal HTML5 document titled Title.
	Standalone bool
	Title      string
}

// ConvertResult holds the output of a conversion.
type ConvertResult struct {
	HTML []byte // inline-styled HTML, ready for pasting
	Text string // plain-text rendering of the same content
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	themeName string
	assetPath string
	codeStyle string
}

// WithLogger sets the logger. Nil discards output.
func WithLogger(log *zap.Logger) Option {
	return func(c *Converter) {
		c.log = log
	}
}

// WithTheme selects a theme by name from the asset loader.
func WithTheme(name string) Option {
	return func(c *Converter) {
		c.cfg.themeName = name
	}
}

// WithAssetPath loads themes from basePath/themes/{name}.yaml, falling
// back to the built-in themes.
func WithAssetPath(basePath string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = basePath
	}
}

// WithAssetLoader sets a custom theme source. It takes precedence over
// WithAssetPath.
func WithAssetLoader(loader AssetLoader) Option {
	return func(c *Converter) {
		c.publicAssetLoader = loader
	}
}

// WithCodeStyle overrides the theme's chroma style for code blocks.
func WithCodeStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.codeStyle = style
	}
}
