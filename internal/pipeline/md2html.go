package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	"go.uber.org/zap"
)

// ErrHTMLConversion indicates HTML conversion failed.
// ToHTML never returns it; it is logged and carried in the placeholder.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// htmlTemplate wraps a fragment in a minimal HTML5 document.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to inline-styled HTML using goldmark.
// It holds no per-render state: every call builds its own parser, renderer
// and RenderContext, so one converter can serve concurrent callers.
type GoldmarkConverter struct {
	theme *Theme
	log   *zap.Logger
}

// NewGoldmarkConverter creates a converter for theme. A nil theme selects
// DefaultTheme, a nil logger discards output.
func NewGoldmarkConverter(theme *Theme, log *zap.Logger) *GoldmarkConverter {
	if theme == nil {
		theme = DefaultTheme()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GoldmarkConverter{theme: theme, log: log}
}

func (c *GoldmarkConverter) newMarkdown(rc *RenderContext) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			newHighlighting(c.theme, c.log.Named("highlight")),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			// No WithUnsafe: raw HTML in the source is omitted.
			renderer.WithNodeRenderers(
				util.Prioritized(newPlatformRenderer(rc, c.theme), nodeRendererPriority),
			),
		),
	)
}

// ToHTML converts Markdown content to an inline-styled HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
//
// Rendering failures do not surface as errors: they are logged and replaced
// by an escaped notice. Only context errors are returned.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	done := make(chan string, 1)

	go func() {
		out, err := c.render(content)
		if err != nil {
			c.log.Error("markdown rendering failed", zap.Error(err))
			out = c.failurePlaceholder(err)
		}
		done <- out
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case out := <-done:
		return out, nil
	}
}

// render runs one all-or-nothing conversion. Panics from the parser or a
// renderer are turned into ErrHTMLConversion.
func (c *GoldmarkConverter) render(content string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("%w: panic: %v", ErrHTMLConversion, r)
		}
	}()

	rc := NewRenderContext(c.theme)
	var buf bytes.Buffer
	if err := c.newMarkdown(rc).Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
	}
	return buf.String(), nil
}

func (c *GoldmarkConverter) failurePlaceholder(err error) string {
	return `<section style="margin:16px 0;padding:12px 16px;border-left:4px solid #e5484d;background:#fff5f5;color:#c53030;">` +
		escapeAttr(err.Error()) + "</section>\n"
}

// WrapDocument wraps an HTML fragment in a standalone HTML5 document.
func WrapDocument(fragment, title string) string {
	if title == "" {
		title = "Document"
	}
	return fmt.Sprintf(htmlTemplate, escapeAttr(title), fragment)
}
