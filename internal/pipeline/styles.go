package pipeline

import (
	"fmt"
	"strings"
)

// Inline style fragments shared by the Markdown renderer and the re-flow
// converter. The paste target strips <style> blocks and classes, so every
// visual property must live in a style attribute.

// windowDotColors are the three decorative dots of a code card title bar.
var windowDotColors = [3]string{"#ff5f56", "#ffbd2e", "#27c93f"}

func (t *Theme) h1Style() string {
	return "text-align:center;font-size:24px;font-weight:bold;margin:32px 0 20px;color:" + t.Heading + ";"
}

func (t *Theme) h2Style() string {
	return "position:relative;display:flex;align-items:center;padding-left:14px;font-size:20px;font-weight:bold;margin:28px 0 16px;color:" + t.Heading + ";"
}

// h2BarStyle replaces a ::before pseudo-element, which inline styles cannot express.
func (t *Theme) h2BarStyle() string {
	return fmt.Sprintf("position:absolute;left:0;top:50%%;transform:translateY(-50%%);width:4px;height:1.1em;border-radius:2px;background:linear-gradient(180deg,%s,%s);", t.Accent, t.AccentEnd)
}

func (t *Theme) h3Style() string {
	return "font-size:18px;font-weight:bold;margin:24px 0 12px;color:" + t.Heading + ";"
}

func (t *Theme) hGenericStyle() string {
	return "font-size:16px;font-weight:bold;margin:20px 0 10px;color:" + t.Heading + ";"
}

func (t *Theme) paragraphStyle() string {
	return "margin:0 0 16px;color:" + t.Text + ";"
}

func (t *Theme) blockquoteStyle() string {
	return fmt.Sprintf("margin:16px 0;padding:10px 16px;border-left:4px solid %s;background:%s;color:%s;", t.QuoteBar, t.QuoteBack, t.Muted)
}

func (t *Theme) strongStyle() string {
	return "font-weight:bold;color:" + t.Strong + ";"
}

func (t *Theme) emphasisStyle() string {
	return "font-style:italic;color:" + t.Emphasis + ";"
}

func (t *Theme) strikeStyle() string {
	return "text-decoration:line-through;color:" + t.Muted + ";"
}

func (t *Theme) markStyle() string {
	return "background:" + t.Mark + ";color:inherit;padding:0 2px;border-radius:2px;"
}

func (t *Theme) linkStyle() string {
	return fmt.Sprintf("color:%s;text-decoration:none;border-bottom:1px solid %s;", t.Link, t.Link)
}

func (t *Theme) imageStyle() string {
	return "display:block;max-width:100%;height:auto;margin:16px auto;border-radius:4px;"
}

func (t *Theme) inlineCodeStyle() string {
	return fmt.Sprintf("font-family:%s;font-size:90%%;color:%s;background:%s;padding:2px 4px;margin:0 2px;border-radius:4px;", MonospaceFontStack, t.InlineCode, t.InlineBack)
}

func (t *Theme) hrStyle() string {
	return "border:0;border-top:1px solid " + t.Border + ";margin:24px 0;height:0;"
}

func (t *Theme) tableStyle() string {
	return "width:100%;border-collapse:collapse;margin:16px 0;font-size:14px;border:1px solid " + t.Border + ";"
}

func (t *Theme) tableHeadStyle() string {
	return "background:" + t.TableHead + ";"
}

func (t *Theme) tableCellStyle(header bool, align string) string {
	var sb strings.Builder
	sb.WriteString("border:1px solid " + t.Border + ";padding:8px 12px;")
	if header {
		sb.WriteString("font-weight:bold;background:" + t.TableHead + ";")
	}
	if align != "" {
		sb.WriteString("text-align:" + align + ";")
	}
	return sb.String()
}

// codeCardClass marks code cards so the re-flow converter does not frame
// them a second time.
const codeCardClass = "mdi-code"

// codeCardOpen starts a dark code card with the three window dots.
func (t *Theme) codeCardOpen() string {
	var sb strings.Builder
	sb.WriteString(`<section class="` + codeCardClass + `" style="margin:16px 0;border-radius:8px;overflow:hidden;background:`)
	sb.WriteString(t.CodeBack)
	sb.WriteString(`;box-shadow:0 2px 8px rgba(0,0,0,0.15);">`)
	sb.WriteString(`<section style="display:flex;align-items:center;gap:6px;height:28px;padding:0 12px;background:`)
	sb.WriteString(t.CodeTitle)
	sb.WriteString(`;">`)
	for _, c := range windowDotColors {
		sb.WriteString(`<span style="display:inline-block;width:12px;height:12px;border-radius:50%;background:`)
		sb.WriteString(c)
		sb.WriteString(`;"></span>`)
	}
	sb.WriteString(`</section>`)
	sb.WriteString(`<section style="padding:12px 16px;overflow-x:auto;">`)
	return sb.String()
}

// codeCardClose ends a card started by codeCardOpen.
func (t *Theme) codeCardClose() string {
	return "</section></section>\n"
}

func (t *Theme) plainPreStyle() string {
	return "margin:0;padding:0;background:transparent;"
}

func (t *Theme) plainCodeStyle() string {
	return fmt.Sprintf("display:block;font-family:%s;font-size:13px;line-height:1.6;color:%s;white-space:pre;", MonospaceFontStack, t.CodeText)
}

// plainCodeOpen and plainCodeClose frame unhighlighted code inside a card.
func (t *Theme) plainCodeOpen(language string) string {
	var sb strings.Builder
	sb.WriteString(`<pre style="`)
	sb.WriteString(t.plainPreStyle())
	sb.WriteString(`"><code`)
	if language != "" {
		sb.WriteString(` class="language-`)
		sb.WriteString(escapeAttr(language))
		sb.WriteString(`"`)
	}
	sb.WriteString(` style="`)
	sb.WriteString(t.plainCodeStyle())
	sb.WriteString(`">`)
	return sb.String()
}

func (t *Theme) plainCodeClose() string {
	return "</code></pre>"
}

// listItemStyle positions an item so wrapped lines align with the text start.
func listItemStyle(indent int) string {
	return fmt.Sprintf("position:relative;margin:4px 0;padding-left:%dpx;", indent)
}

func listMarkerStyle(layout ItemLayout) string {
	return fmt.Sprintf("position:absolute;left:%dpx;top:0;width:%dpx;text-align:right;color:%s;font-weight:bold;", layout.MarkerX, ListMarkerWidth, layout.Color)
}

func listStyle() string {
	return "margin:8px 0 16px;padding:0;"
}
