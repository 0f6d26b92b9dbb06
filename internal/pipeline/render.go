package pipeline

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// nodeRendererPriority places platformRenderer ahead of goldmark's HTML
// renderer (1000), the GFM table renderer (500) and highlighting (200).
const nodeRendererPriority = 100

// platformRenderer renders Markdown nodes as inline-styled HTML.
// Fenced code blocks are left to the highlighting extension.
type platformRenderer struct {
	rc    *RenderContext
	theme *Theme

	// items mirrors open list items so nested lists can be flattened:
	// an item's section is closed before a nested list starts and, when
	// content follows the nested list, reopened without a marker.
	items []itemFrame
}

type itemFrame struct {
	indent int
	open   bool
}

func newPlatformRenderer(rc *RenderContext, theme *Theme) *platformRenderer {
	return &platformRenderer{rc: rc, theme: theme}
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *platformRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindHeading, r.renderHeading)
	reg.Register(ast.KindParagraph, r.renderParagraph)
	reg.Register(ast.KindBlockquote, r.renderBlockquote)
	reg.Register(ast.KindList, r.renderList)
	reg.Register(ast.KindListItem, r.renderListItem)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
	reg.Register(ast.KindThematicBreak, r.renderThematicBreak)
	reg.Register(ast.KindCodeSpan, r.renderCodeSpan)
	reg.Register(ast.KindEmphasis, r.renderEmphasis)
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindAutoLink, r.renderAutoLink)
	reg.Register(ast.KindImage, r.renderImage)
	reg.Register(east.KindTable, r.renderTable)
	reg.Register(east.KindTableHeader, r.renderTableHeader)
	reg.Register(east.KindTableRow, r.renderTableRow)
	reg.Register(east.KindTableCell, r.renderTableCell)
	reg.Register(east.KindStrikethrough, r.renderStrikethrough)
}

// ---------------------------------------------------------------------------
// Blocks
// ---------------------------------------------------------------------------

func (r *platformRenderer) renderHeading(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Heading)
	tag := fmt.Sprintf("h%d", n.Level)

	if !entering {
		_, _ = fmt.Fprintf(w, "</%s>\n", tag)
		return ast.WalkContinue, nil
	}

	var style string
	switch n.Level {
	case 1:
		style = r.theme.h1Style()
	case 2:
		style = r.theme.h2Style()
	case 3:
		style = r.theme.h3Style()
	default:
		style = r.theme.hGenericStyle()
	}

	_, _ = w.WriteString("<" + tag)
	if id, ok := n.AttributeString("id"); ok {
		_, _ = w.WriteString(` id="`)
		_, _ = w.Write(util.EscapeHTML(attrBytes(id)))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(` style="` + style + `">`)
	if n.Level == 2 {
		_, _ = w.WriteString(`<span ` + barMarker + `="" style="` + r.theme.h2BarStyle() + `"></span>`)
	}
	return ast.WalkContinue, nil
}

func (r *platformRenderer) renderParagraph(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</p>\n")
		return ast.WalkContinue, nil
	}
	style := r.theme.paragraphStyle()
	if n.Parent() != nil && n.Parent().Kind() == ast.KindListItem {
		style = "margin:0 0 8px;color:" + r.theme.Text + ";"
	}
	_, _ = w.WriteString(`<p style="` + style + `">`)
	return ast.WalkContinue, nil
}

func (r *platformRenderer) renderBlockquote(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<blockquote style="` + r.theme.blockquoteStyle() + `">` + "\n")
	} else {
		_, _ = w.WriteString("</blockquote>\n")
	}
	return ast.WalkContinue, nil
}

func (r *platformRenderer) renderThematicBreak(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<hr style="` + r.theme.hrStyle() + `"/>` + "\n")
	}
	return ast.WalkContinue, nil
}

// renderCodeBlock handles indented code, which carries no language.
func (r *platformRenderer) renderCodeBlock(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(r.theme.codeCardOpen())
	_, _ = w.WriteString(r.theme.plainCodeOpen(""))
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(line.Value(source)))
	}
	_, _ = w.WriteString(r.theme.plainCodeClose())
	_, _ = w.WriteString(r.theme.codeCardClose())
	return ast.WalkSkipChildren, nil
}

// ---------------------------------------------------------------------------
// Lists
// ---------------------------------------------------------------------------

func (r *platformRenderer) renderList(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.List)
	nested := n.Parent() != nil && n.Parent().Kind() == ast.KindListItem

	if entering {
		if nested {
			r.closeCurrentItem(w)
		}
		kind := Unordered
		if n.IsOrdered() {
			kind = Ordered
		}
		r.rc.OpenList(kind, n.Start)
		if r.rc.Depth() == 1 {
			_, _ = w.WriteString(`<section style="` + listStyle() + `">` + "\n")
		}
		return ast.WalkContinue, nil
	}

	r.rc.CloseList()
	if r.rc.Depth() == 0 {
		_, _ = w.WriteString("</section>\n")
		return ast.WalkContinue, nil
	}
	if nested && n.NextSibling() != nil {
		r.reopenCurrentItem(w)
	}
	return ast.WalkContinue, nil
}

func (r *platformRenderer) renderListItem(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		layout := r.rc.OpenItem()
		r.items = append(r.items, itemFrame{indent: layout.Indent, open: true})
		_, _ = w.WriteString(`<section ` + itemMarker + `="" style="` + listItemStyle(layout.Indent) + `">`)
		_, _ = w.WriteString(`<span ` + bulletMarker + `="" style="` + listMarkerStyle(layout) + `">` + layout.Marker + `</span>`)
		return ast.WalkContinue, nil
	}

	if len(r.items) == 0 {
		return ast.WalkContinue, nil
	}
	top := r.items[len(r.items)-1]
	r.items = r.items[:len(r.items)-1]
	if top.open {
		_, _ = w.WriteString("</section>\n")
	}
	return ast.WalkContinue, nil
}

func (r *platformRenderer) closeCurrentItem(w util.BufWriter) {
	if len(r.items) == 0 {
		return
	}
	top := &r.items[len(r.items)-1]
	if top.open {
		_, _ = w.WriteString("</section>\n")
		top.open = false
	}
}

func (r *platformRenderer) reopenCurrentItem(w util.BufWriter) {
	if len(r.items) == 0 {
		return
	}
	top := &r.items[len(r.items)-1]
	if !top.open {
		_, _ = w.WriteString(`<section ` + itemMarker + `="" style="` + listItemStyle(top.indent) + `">`)
		top.open = true
	}
}

// ---------------------------------------------------------------------------
// Tables
// ---------------------------------------------------------------------------

func (r *platformRenderer) renderTable(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<table style="` + r.theme.tableStyle() + `">` + "\n")
	} else {
		_, _ = w.WriteString("</table>\n")
	}
	return ast.WalkContinue, nil
}

func (r *platformRenderer) renderTableHeader(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<thead style="` + r.theme.tableHeadStyle() + `">` + "\n<tr>\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("</tr>\n</thead>\n")
	if n.NextSibling() != nil {
		_, _ = w.WriteString("<tbody>\n")
	}
	return ast.WalkContinue, nil
}

func (r *platformRenderer) renderTableRow(w util.BufWriter, _ []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<tr>\n")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString("</tr>\n")
	if n.Parent().LastChild() == n {
		_, _ = w.WriteString("</tbody>\n")
	}
	return ast.WalkContinue, nil
}

func (r *platformRenderer) renderTableCell(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*east.TableCell)
	header := n.Parent() != nil && n.Parent().Kind() == east.KindTableHeader
	tag := "td"
	if header {
		tag = "th"
	}

	if !entering {
		_, _ = fmt.Fprintf(w, "</%s>\n", tag)
		return ast.WalkContinue, nil
	}

	align := ""
	if n.Alignment != east.AlignNone {
		align = n.Alignment.String()
	}
	_, _ = fmt.Fprintf(w, `<%s style="%s">`, tag, r.theme.tableCellStyle(header, align))
	return ast.WalkContinue, nil
}

// ---------------------------------------------------------------------------
// Inlines
// ---------------------------------------------------------------------------

func (r *platformRenderer) renderCodeSpan(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<code style="` + r.theme.inlineCodeStyle() + `">`)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			value := t.Segment.Value(source)
			if bytes.HasSuffix(value, []byte("\n")) {
				_, _ = w.Write(util.EscapeHTML(value[:len(value)-1]))
				_ = w.WriteByte(' ')
				continue
			}
			_, _ = w.Write(util.EscapeHTML(value))
		case *ast.String:
			_, _ = w.Write(util.EscapeHTML(t.Value))
		}
	}
	_, _ = w.WriteString("</code>")
	return ast.WalkSkipChildren, nil
}

func (r *platformRenderer) renderEmphasis(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Emphasis)
	tag, style := "em", r.theme.emphasisStyle()
	if n.Level == 2 {
		tag, style = "strong", r.theme.strongStyle()
	}
	if entering {
		_, _ = fmt.Fprintf(w, `<%s style="%s">`, tag, style)
	} else {
		_, _ = fmt.Fprintf(w, "</%s>", tag)
	}
	return ast.WalkContinue, nil
}

func (r *platformRenderer) renderStrikethrough(w util.BufWriter, _ []byte, _ ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString(`<del style="` + r.theme.strikeStyle() + `">`)
	} else {
		_, _ = w.WriteString("</del>")
	}
	return ast.WalkContinue, nil
}

func (r *platformRenderer) renderLink(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	r.writeAnchorOpen(w, n.Destination, n.Title, n)
	return ast.WalkContinue, nil
}

func (r *platformRenderer) renderAutoLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.AutoLink)
	if !entering {
		return ast.WalkContinue, nil
	}
	url := n.URL(source)
	label := n.Label(source)
	if n.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(bytes.ToLower(url), []byte("mailto:")) {
		url = append([]byte("mailto:"), url...)
	}
	r.writeAnchorOpen(w, url, nil, n)
	_, _ = w.Write(util.EscapeHTML(label))
	_, _ = w.WriteString("</a>")
	return ast.WalkContinue, nil
}

// writeAnchorOpen writes <a> with target forced to a new window. The default
// link style is added only when the node carries no style attribute.
func (r *platformRenderer) writeAnchorOpen(w util.BufWriter, dest, title []byte, n ast.Node) {
	_, _ = w.WriteString(`<a href="`)
	if !html.IsDangerousURL(dest) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(dest, true)))
	}
	_ = w.WriteByte('"')
	if len(title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(title))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(` target="_blank"`)
	if style, ok := n.AttributeString("style"); ok {
		_, _ = w.WriteString(` style="`)
		_, _ = w.Write(util.EscapeHTML(attrBytes(style)))
		_ = w.WriteByte('"')
	} else {
		_, _ = w.WriteString(` style="` + r.theme.linkStyle() + `"`)
	}
	_ = w.WriteByte('>')
}

func (r *platformRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	_, _ = w.WriteString(`<img src="`)
	if !html.IsDangerousURL(n.Destination) {
		_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	}
	_, _ = w.WriteString(`" alt="`)
	_, _ = w.Write(util.EscapeHTML(nodeText(n, source)))
	_ = w.WriteByte('"')
	if len(n.Title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(` style="` + r.theme.imageStyle() + `"/>`)
	return ast.WalkSkipChildren, nil
}

// nodeText concatenates the text of n's descendants.
func nodeText(n ast.Node, source []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.Write(nodeText(c, source))
		}
	}
	return buf.Bytes()
}

// attrBytes converts a goldmark attribute value to bytes.
func attrBytes(v any) []byte {
	switch t := v.(type) {
	case []byte:
		return t
	case string:
		return []byte(t)
	default:
		return []byte(fmt.Sprint(t))
	}
}
