package pipeline

import (
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/util"
	"go.uber.org/zap"
)

// newHighlighting builds the fenced code block extension.
// Chroma emits inline styles (no classes) since the paste target drops stylesheets.
// Code it cannot tokenize is written escaped inside the plain code markup.
func newHighlighting(theme *Theme, log *zap.Logger) goldmark.Extender {
	style := theme.CodeStyle
	if styles.Get(style) == styles.Fallback && style != styles.Fallback.Name {
		log.Debug("unknown code style, using fallback",
			zap.String("style", style), zap.String("fallback", styles.Fallback.Name))
		style = styles.Fallback.Name
	}

	return highlighting.NewHighlighting(
		highlighting.WithStyle(style),
		highlighting.WithGuessLanguage(false),
		highlighting.WithFormatOptions(
			chromahtml.WithClasses(false),
			chromahtml.TabWidth(4),
		),
		highlighting.WithWrapperRenderer(codeWrapper(theme, log)),
	)
}

// codeWrapper frames every fenced code block in the code card. When chroma
// could not highlight, the wrapper also provides the <pre><code> markup.
func codeWrapper(theme *Theme, log *zap.Logger) highlighting.WrapperRenderer {
	return func(w util.BufWriter, c highlighting.CodeBlockContext, entering bool) {
		lang, hasLang := c.Language()
		if entering {
			_, _ = w.WriteString(theme.codeCardOpen())
			if c.Highlighted() {
				return
			}
			if hasLang && len(lang) > 0 {
				log.Warn("syntax highlighting unavailable, rendering plain code",
					zap.ByteString("language", lang))
			}
			_, _ = w.WriteString(theme.plainCodeOpen(string(lang)))
			return
		}

		if !c.Highlighted() {
			_, _ = w.WriteString(theme.plainCodeClose())
		}
		_, _ = w.WriteString(theme.codeCardClose())
	}
}
