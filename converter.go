package mdinline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/alnah/go-mdinline/internal/assets"
	"github.com/alnah/go-mdinline/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
)

// Converter orchestrates the Markdown to inline-styled HTML pipeline.
// Create with NewConverter() and call Convert() as often as needed.
//
// A Converter holds no per-conversion state and is safe for concurrent use.
type Converter struct {
	cfg               converterConfig
	log               *zap.Logger
	assetLoader       assets.AssetLoader // internal loader
	publicAssetLoader AssetLoader        // public loader (from WithAssetLoader)
	theme             *Theme
	preprocessor      pipeline.MarkdownPreprocessor
	htmlConverter     pipeline.HTMLConverter
	reflower          *pipeline.Reflower
}

// publicToInternalAdapter wraps public AssetLoader to internal assets.AssetLoader.
type publicToInternalAdapter struct {
	pub AssetLoader
}

func (a *publicToInternalAdapter) LoadTheme(name string) (*pipeline.Theme, error) {
	return a.pub.LoadTheme(name)
}

// NewConverter creates a Converter with the default theme.
// Use options to customize behavior (e.g., WithTheme, WithAssetPath, WithLogger).
// Returns error if the theme cannot be loaded or is invalid.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		assetLoader:  assets.NewEmbeddedLoader(),
		preprocessor: &pipeline.CommonMarkPreprocessor{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.log == nil {
		c.log = zap.NewNop()
	}

	// Handle WithAssetPath: resolve to internal loader
	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.assetLoader = resolver
		c.log.Debug("asset path", zap.String("path", c.cfg.assetPath), zap.Bool("custom", resolver.HasCustomLoader()))
	}

	// Handle WithAssetLoader (public interface): wrap to internal interface
	if c.publicAssetLoader != nil {
		c.assetLoader = &publicToInternalAdapter{pub: c.publicAssetLoader}
	}

	if err := c.resolveTheme(); err != nil {
		return nil, err
	}

	// Injected by tests when already set
	if c.htmlConverter == nil {
		c.htmlConverter = pipeline.NewGoldmarkConverter(c.theme, c.log.Named("render"))
	}
	c.reflower = pipeline.NewReflower(c.theme)

	return c, nil
}

// resolveTheme loads the configured theme and applies the code style override.
// The loaded theme is copied so that loaders may return shared values.
func (c *Converter) resolveTheme() error {
	name := c.cfg.themeName
	if name == "" {
		name = DefaultTheme
	}

	loaded, err := c.assetLoader.LoadTheme(name)
	if err != nil {
		return fmt.Errorf("loading theme %q: %w", name, convertAssetError(err))
	}
	if loaded == nil {
		return fmt.Errorf("loading theme %q: %w", name, ErrThemeNotFound)
	}

	theme := *loaded
	theme.MarkerColors = append([]string(nil), loaded.MarkerColors...)
	theme.MergeDefaults()
	if style := strings.TrimSpace(c.cfg.codeStyle); style != "" {
		theme.CodeStyle = style
	}
	if err := theme.Validate(); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidTheme, name, err)
	}

	c.theme = &theme
	return nil
}

// Theme returns a copy of the active theme.
func (c *Converter) Theme() Theme {
	t := *c.theme
	t.MarkerColors = append([]string(nil), c.theme.MarkerColors...)
	return t
}

// Convert runs the full pipeline and returns the inline-styled HTML together
// with its plain-text rendering.
//
// Rendering and post-processing failures are logged and degrade the output
// instead of failing the call: only invalid input and context errors are
// returned. Recovers from internal panics to prevent crashes from propagating
// to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	// Preprocess markdown
	mdContent := c.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Convert to HTML
	htmlContent, err := c.htmlConverter.ToHTML(ctx, mdContent)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	// Convert highlight placeholders to <mark> tags.
	// This completes the ==text== feature started in preprocessing.
	htmlContent = pipeline.ConvertMarkPlaceholders(htmlContent, c.theme)

	// Resolve relative image sources against the image host
	if input.ImageBaseURL != "" {
		rewritten, err := pipeline.RewriteImageSources(htmlContent, input.ImageBaseURL)
		if err != nil {
			c.log.Warn("image sources left unchanged",
				zap.String("base", input.ImageBaseURL), zap.Error(err))
		} else {
			htmlContent = rewritten
		}
	}

	// Force typography (skipped in preview)
	htmlContent = pipeline.Process(htmlContent, pipeline.ProcessOptions{
		Font:      input.Font.settings(c.log),
		Preview:   input.Preview,
		TextColor: c.theme.Text,
	})

	if input.Reflow {
		reflowed, err := c.reflower.Reflow(htmlContent)
		if err != nil {
			c.log.Warn("reflow skipped", zap.Error(err))
		} else {
			htmlContent = reflowed
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	text, err := pipeline.PlainText(htmlContent)
	if err != nil {
		c.log.Warn("plain text extraction failed", zap.Error(err))
		text = ""
	}

	if input.Standalone {
		htmlContent = pipeline.WrapDocument(htmlContent, input.Title)
	}

	return &ConvertResult{
		HTML: []byte(htmlContent),
		Text: text,
	}, nil
}

// Reflow rewrites arbitrary HTML (e.g. pasted from another editor) into the
// markup the paste target keeps, using the converter's theme. With sanitize
// set, the input first goes through an allow-list sanitizer.
func (c *Converter) Reflow(ctx context.Context, htmlContent string, sanitize bool) (string, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return "", ErrEmptyHTML
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if sanitize {
		htmlContent = pipeline.SanitizeHTML(htmlContent)
	}
	out, err := c.reflower.Reflow(htmlContent)
	if err != nil {
		return "", fmt.Errorf("reflowing HTML: %w", err)
	}
	return out, nil
}

// PlainText extracts the text content of an HTML fragment: block boundaries
// become line breaks and whitespace runs collapse.
func PlainText(htmlContent string) (string, error) {
	return pipeline.PlainText(htmlContent)
}

// validateInput checks that required fields are present and valid.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// CLI users have their input validated earlier by Config.Validate() at config load time.
func (c *Converter) validateInput(input Input) error {
	if strings.TrimSpace(input.Markdown) == "" {
		return ErrEmptyMarkdown
	}
	return input.Font.Validate()
}
