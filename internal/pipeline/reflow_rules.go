package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// reflowRule maps the elements matched by a selector to platform markup.
type reflowRule struct {
	match  cascadia.Selector
	render func(r *Reflower, sb *strings.Builder, s *goquery.Selection)
}

// reflowRules is evaluated in order and the first match wins. Class rules
// come before tag rules: a <div class="warning"> is a banner, not a container.
var reflowRules []reflowRule

func init() {
	reflowRules = []reflowRule{
		// Classes
		{cascadia.MustCompile("." + codeCardClass), renderCodeCard},
		{cascadia.MustCompile(".info"), banner("#1890ff", "#e6f4ff")},
		{cascadia.MustCompile(".warning"), banner("#faad14", "#fffbe6")},
		{cascadia.MustCompile(".error"), banner("#ff4d4f", "#fff1f0")},
		{cascadia.MustCompile(".success"), banner("#52c41a", "#f6ffed")},
		{cascadia.MustCompile(".image-group"), renderImageGroup},
		{cascadia.MustCompile(".text-center"), aligned("center")},
		{cascadia.MustCompile(".text-right"), aligned("right")},
		// Highlighter output (div.highlight > pre) falls through to the pre rule.
		{cascadia.MustCompile(".highlight:not(:has(pre))"), renderHighlight},
		{cascadia.MustCompile(".footnote, .footnotes"), renderFootnotes},

		// Dropped with their content
		{cascadia.MustCompile("script, style, link, meta, template, noscript, head, title"), renderNothing},

		// Already inline-styled containers, typically our own rendered output.
		{cascadia.MustCompile("section[style], span[style], span[" + wrapperMarker + "]"), renderStyled},

		// Tags
		{cascadia.MustCompile("h1, h2, h3, h4, h5, h6"), renderHeading},
		{cascadia.MustCompile("p"), renderParagraph},
		{cascadia.MustCompile("blockquote"), renderBlockquote},
		{cascadia.MustCompile("pre"), renderTerminal},
		{cascadia.MustCompile("code, kbd, samp, tt"), renderInlineCode},
		{cascadia.MustCompile("ul, ol"), renderList},
		{cascadia.MustCompile("table"), renderTable},
		{cascadia.MustCompile("a"), renderAnchor},
		{cascadia.MustCompile("img"), renderImage},
		{cascadia.MustCompile("strong, b"), inline("strong", func(t *Theme) string { return t.strongStyle() })},
		{cascadia.MustCompile("em, i, cite"), inline("em", func(t *Theme) string { return t.emphasisStyle() })},
		{cascadia.MustCompile("del, s, strike"), inline("del", func(t *Theme) string { return t.strikeStyle() })},
		{cascadia.MustCompile("mark"), inline("mark", func(t *Theme) string { return t.markStyle() })},
		{cascadia.MustCompile("u, ins"), inline("span", func(*Theme) string { return "text-decoration:underline;" })},
		{cascadia.MustCompile("sup, sub"), renderKeepTag},
		{cascadia.MustCompile("hr"), renderRule},
		{cascadia.MustCompile("br"), renderBreak},
		{cascadia.MustCompile("input[type=checkbox]"), renderCheckbox},
		{cascadia.MustCompile("figcaption"), renderCaption},
		{cascadia.MustCompile("div, section, article, header, footer, main, aside, nav, figure, details, summary, dl, dd, dt, address"), renderContainer},
	}
}

// ---------------------------------------------------------------------------
// Class rules
// ---------------------------------------------------------------------------

func banner(bar, background string) func(*Reflower, *strings.Builder, *goquery.Selection) {
	return func(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
		fmt.Fprintf(sb, `<section style="margin:16px 0;padding:12px 16px;border-left:4px solid %s;background:%s;border-radius:4px;color:%s;">`, bar, background, r.theme.Text)
		sb.WriteString(r.inner(s))
		sb.WriteString("</section>")
	}
}

func aligned(align string) func(*Reflower, *strings.Builder, *goquery.Selection) {
	return func(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
		sb.WriteString(`<section style="text-align:` + align + `;">`)
		sb.WriteString(r.inner(s))
		sb.WriteString("</section>")
	}
}

func renderImageGroup(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	sb.WriteString(`<section style="display:flex;flex-wrap:wrap;justify-content:center;gap:8px;margin:16px 0;">`)
	s.Find("img").Each(func(_ int, img *goquery.Selection) {
		sb.WriteString(`<section style="flex:1;min-width:0;">`)
		renderImage(r, sb, img)
		sb.WriteString("</section>")
	})
	sb.WriteString("</section>")
}

func renderHighlight(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	sb.WriteString(`<span style="` + r.theme.markStyle() + `">`)
	sb.WriteString(r.inner(s))
	sb.WriteString("</span>")
}

func renderFootnotes(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	fmt.Fprintf(sb, `<section style="margin-top:24px;padding-top:12px;border-top:1px solid %s;font-size:13px;color:%s;">`, r.theme.Border, r.theme.Muted)
	sb.WriteString(r.inner(s))
	sb.WriteString("</section>")
}

// renderCodeCard reframes the code of a rendered card; a card that holds
// no <pre> is already in terminal form and is kept as is.
func renderCodeCard(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	if pre := s.Find("pre").First(); pre.Length() > 0 {
		renderTerminal(r, sb, pre)
		return
	}
	if out, err := goquery.OuterHtml(s); err == nil {
		sb.WriteString(out)
	}
}

func renderNothing(*Reflower, *strings.Builder, *goquery.Selection) {}

// ---------------------------------------------------------------------------
// Blocks
// ---------------------------------------------------------------------------

// Headings, paragraphs and quotes start from the theme style; declarations
// already on the element win, so post-processed typography survives.
func renderHeading(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	tag := goquery.NodeName(s)
	var style string
	switch tag {
	case "h1":
		style = r.theme.h1Style()
	case "h2":
		style = r.theme.h2Style()
	case "h3":
		style = r.theme.h3Style()
	default:
		style = r.theme.hGenericStyle()
	}
	fmt.Fprintf(sb, `<%s style="%s">`, tag, mergedStyle(style, s))
	if tag == "h2" && s.Find("span["+barMarker+"]").Length() == 0 {
		sb.WriteString(`<span ` + barMarker + `="" style="` + r.theme.h2BarStyle() + `"></span>`)
	}
	sb.WriteString(r.inner(s))
	fmt.Fprintf(sb, "</%s>", tag)
}

func renderParagraph(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	inner := r.inner(s)
	if strings.TrimSpace(inner) == "" {
		return
	}
	sb.WriteString(`<p style="` + mergedStyle(r.theme.paragraphStyle(), s) + `">`)
	sb.WriteString(inner)
	sb.WriteString("</p>")
}

func renderBlockquote(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	sb.WriteString(`<section style="` + mergedStyle(r.theme.blockquoteStyle(), s) + `">`)
	sb.WriteString(r.inner(s))
	sb.WriteString("</section>")
}

// mergedStyle layers the style attribute of s over base, escaped for an attribute.
func mergedStyle(base string, s *goquery.Selection) string {
	d := parseStyle(base)
	if own, ok := s.Attr("style"); ok {
		d.Merge(parseStyle(own))
	}
	return html.EscapeString(d.String())
}

// renderStyled re-emits an inline-styled element with its style and the
// data-mdi markers that later post-processing passes look for.
func renderStyled(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	tag := goquery.NodeName(s)
	sb.WriteString("<" + tag)
	for _, a := range s.Nodes[0].Attr {
		if a.Namespace == "" && (a.Key == containerMarker || strings.HasPrefix(a.Key, containerMarker+"-")) {
			fmt.Fprintf(sb, ` %s="%s"`, a.Key, html.EscapeString(a.Val))
		}
	}
	if style, ok := s.Attr("style"); ok {
		fmt.Fprintf(sb, ` style="%s"`, html.EscapeString(style))
	}
	sb.WriteString(">")
	sb.WriteString(r.inner(s))
	fmt.Fprintf(sb, "</%s>", tag)
}

func renderContainer(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	inner := r.inner(s)
	if strings.TrimSpace(inner) == "" {
		return
	}
	sb.WriteString("<section>")
	sb.WriteString(inner)
	sb.WriteString("</section>")
}

func renderCaption(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	fmt.Fprintf(sb, `<p style="margin:4px 0 16px;text-align:center;font-size:13px;color:%s;">`, r.theme.Muted)
	sb.WriteString(r.inner(s))
	sb.WriteString("</p>")
}

func renderRule(r *Reflower, sb *strings.Builder, _ *goquery.Selection) {
	sb.WriteString(`<hr style="` + r.theme.hrStyle() + `"/>`)
}

func renderBreak(_ *Reflower, sb *strings.Builder, _ *goquery.Selection) {
	sb.WriteString("<br/>")
}

// renderTerminal draws a code block as a terminal card. Each source line
// becomes its own span separated by <br/>, with leading whitespace made
// non-breaking, because the paste target may drop white-space:pre.
// Markup inside the block (highlighter spans, <code>) is reduced to text.
func renderTerminal(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	code := strings.TrimRight(s.Text(), "\n")
	lines := strings.Split(code, "\n")

	sb.WriteString(r.theme.codeCardOpen())
	fmt.Fprintf(sb, `<section style="font-family:%s;font-size:13px;line-height:1.6;color:%s;white-space:nowrap;">`, MonospaceFontStack, r.theme.CodeText)
	for i, line := range lines {
		if i > 0 {
			sb.WriteString("<br/>")
		}
		sb.WriteString("<span>")
		sb.WriteString(terminalLine(line))
		sb.WriteString("</span>")
	}
	sb.WriteString("</section>")
	sb.WriteString(r.theme.codeCardClose())
}

// terminalLine escapes a code line and turns its indentation into &nbsp;.
// Tabs count as four spaces.
func terminalLine(line string) string {
	body := strings.TrimLeft(line, " \t")
	indent := 0
	for _, ch := range line[:len(line)-len(body)] {
		if ch == '\t' {
			indent += 4
		} else {
			indent++
		}
	}
	return strings.Repeat("&nbsp;", indent) + html.EscapeString(strings.TrimRight(body, "\r"))
}

// ---------------------------------------------------------------------------
// Lists
// ---------------------------------------------------------------------------

// renderList emits one paragraph per item with a hanging indent and an
// inline marker. Numbering is positional. Lists nested in an item follow
// that item as separate paragraphs.
func renderList(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	ordered := goquery.NodeName(s) == "ol"
	color := r.theme.markerColor(0)

	s.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		marker := "•"
		if ordered {
			marker = strconv.Itoa(i+1) + "."
		}

		var content, nested strings.Builder
		r.convertListItem(&content, &nested, li)

		fmt.Fprintf(sb, `<p style="margin:4px 0;padding-left:1.6em;text-indent:-1.6em;color:%s;">`, r.theme.Text)
		fmt.Fprintf(sb, `<span style="display:inline-block;width:1.6em;text-indent:0;color:%s;font-weight:bold;">%s</span>`, color, marker)
		sb.WriteString(strings.TrimSpace(content.String()))
		sb.WriteString("</p>")
		sb.WriteString(nested.String())
	})
}

// convertListItem splits an item into its inline content and its nested
// lists. Paragraphs inside loose items are unwrapped and joined with <br/>
// since the item itself becomes a <p>.
func (r *Reflower) convertListItem(content, nested *strings.Builder, li *goquery.Selection) {
	paragraphs := 0
	li.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "ul", "ol":
			renderList(r, nested, c)
		case "p":
			if paragraphs > 0 {
				content.WriteString("<br/>")
			}
			paragraphs++
			content.WriteString(r.inner(c))
		default:
			r.convertNode(content, c, false)
		}
	})
}

// ---------------------------------------------------------------------------
// Tables
// ---------------------------------------------------------------------------

// renderTable flattens a table into a section per row and a flex section
// per cell. Header rows (inside <thead> or made only of <th>) get the
// header background and bold text.
func renderTable(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	if caption := s.ChildrenFiltered("caption"); caption.Length() > 0 {
		renderCaption(r, sb, caption.First())
	}

	fmt.Fprintf(sb, `<section style="margin:16px 0;border:1px solid %s;border-radius:4px;overflow:hidden;font-size:14px;">`, r.theme.Border)
	for _, row := range tableRows(s) {
		header := isHeaderRow(row)
		rowStyle := "display:flex;border-bottom:1px solid " + r.theme.Border + ";"
		if header {
			rowStyle += "background:" + r.theme.TableHead + ";font-weight:bold;"
		}
		sb.WriteString(`<section style="` + rowStyle + `">`)
		row.ChildrenFiltered("td, th").Each(func(i int, cell *goquery.Selection) {
			cellStyle := fmt.Sprintf("flex:%d;min-width:0;padding:8px 12px;", cellSpan(cell))
			if i > 0 {
				cellStyle += "border-left:1px solid " + r.theme.Border + ";"
			}
			if align, ok := cell.Attr("align"); ok && align != "" {
				cellStyle += "text-align:" + html.EscapeString(align) + ";"
			}
			sb.WriteString(`<section style="` + cellStyle + `">`)
			sb.WriteString(strings.TrimSpace(r.inner(cell)))
			sb.WriteString("</section>")
		})
		sb.WriteString("</section>")
	}
	sb.WriteString("</section>")
}

// tableRows returns the rows of a table in document order, without
// descending into nested tables.
func tableRows(table *goquery.Selection) []*goquery.Selection {
	var rows []*goquery.Selection
	table.Children().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "tr":
			rows = append(rows, c)
		case "thead", "tbody", "tfoot":
			c.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
				rows = append(rows, tr)
			})
		}
	})
	return rows
}

func isHeaderRow(row *goquery.Selection) bool {
	if goquery.NodeName(row.Parent()) == "thead" {
		return true
	}
	cells := row.ChildrenFiltered("td, th")
	return cells.Length() > 0 && cells.Length() == cells.Filter("th").Length()
}

func cellSpan(cell *goquery.Selection) int {
	if v, ok := cell.Attr("colspan"); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 1 {
			return n
		}
	}
	return 1
}

// ---------------------------------------------------------------------------
// Inlines
// ---------------------------------------------------------------------------

func inline(tag string, style func(*Theme) string) func(*Reflower, *strings.Builder, *goquery.Selection) {
	return func(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
		fmt.Fprintf(sb, `<%s style="%s">`, tag, style(r.theme))
		sb.WriteString(r.inner(s))
		fmt.Fprintf(sb, "</%s>", tag)
	}
}

func renderKeepTag(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	tag := goquery.NodeName(s)
	sb.WriteString("<" + tag + ">")
	sb.WriteString(r.inner(s))
	sb.WriteString("</" + tag + ">")
}

// renderInlineCode handles code outside <pre>; code blocks never reach it
// because the pre rule consumes their subtree.
func renderInlineCode(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	sb.WriteString(`<code style="` + r.theme.inlineCodeStyle() + `">`)
	sb.WriteString(html.EscapeString(s.Text()))
	sb.WriteString("</code>")
}

func renderAnchor(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	href, _ := s.Attr("href")
	if isUnsafeHref(href) {
		sb.WriteString(r.inner(s))
		return
	}
	fmt.Fprintf(sb, `<a href="%s" target="_blank" style="%s">`, html.EscapeString(href), r.theme.linkStyle())
	sb.WriteString(r.inner(s))
	sb.WriteString("</a>")
}

func renderImage(r *Reflower, sb *strings.Builder, s *goquery.Selection) {
	src, _ := s.Attr("src")
	if src == "" || isUnsafeHref(src) {
		return
	}
	alt, _ := s.Attr("alt")
	fmt.Fprintf(sb, `<img src="%s" alt="%s" style="%s"/>`, html.EscapeString(src), html.EscapeString(alt), r.theme.imageStyle())
}

func renderCheckbox(_ *Reflower, sb *strings.Builder, s *goquery.Selection) {
	if _, checked := s.Attr("checked"); checked {
		sb.WriteString("☑ ")
		return
	}
	sb.WriteString("☐ ")
}

// isUnsafeHref reports script-bearing URLs.
func isUnsafeHref(href string) bool {
	lower := strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "vbscript:")
}
