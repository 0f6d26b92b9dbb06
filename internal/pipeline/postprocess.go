package pipeline

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Marker attributes identify markup inserted by the post-processor so a
// second pass can find it again instead of nesting another copy.
const (
	wrapperMarker   = "data-mdi-lh"
	containerMarker = "data-mdi"
)

// Renderer markers. List items are sections, so the post-processor finds
// them by attribute; the item marker span and the h2 bar are not content.
const (
	itemMarker   = "data-mdi-item"
	bulletMarker = "data-mdi-marker"
	barMarker    = "data-mdi-bar"
)

// defaultAnchorStyle is applied to links that arrive without any style.
const defaultAnchorStyle = "color:#576b95;text-decoration:none;"

// postBlockTags receive the full font declaration set and the wrapper span.
var postBlockTags = map[string]bool{
	"p": true, "li": true, "blockquote": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// postInlineTags receive line-height and letter-spacing only.
var postInlineTags = map[string]bool{
	"span": true, "strong": true, "b": true, "em": true, "i": true,
	"a": true, "code": true, "del": true, "s": true, "mark": true, "u": true,
}

// ProcessOptions controls Process.
type ProcessOptions struct {
	Font *FontSettings

	// Preview leaves the document untouched; the live preview is already styled.
	Preview bool

	// TextColor is the base text color of the outer containers.
	// Empty selects the default theme text color.
	TextColor string
}

// typography is FontSettings resolved to CSS values.
type typography struct {
	base          float64
	family        string
	size          string
	lineHeight    string
	letterSpacing string // empty when not set
}

func newTypography(fs FontSettings) typography {
	t := typography{
		base:       fs.Size,
		family:     ResolveFontFamily(fs.Family),
		size:       px(fs.Size),
		lineHeight: ResolveLineHeight(fs),
	}
	if fs.LetterSpacing != 0 {
		t.letterSpacing = px(fs.LetterSpacing)
	}
	return t
}

// ApplyInlineStyles forces the font settings onto every text-bearing element.
//
// Existing declarations of the same properties are replaced in place, so
// applying the same settings twice yields the same output as applying them
// once. A nil or invalid fs, or HTML that cannot be parsed, returns the input
// unchanged.
func ApplyInlineStyles(htmlContent string, fs *FontSettings) string {
	if !fs.Valid() {
		return htmlContent
	}
	doc, err := parseFragment(htmlContent)
	if err != nil {
		return htmlContent
	}

	newTypography(*fs).applyTree(doc)

	out, err := renderChildren(doc)
	if err != nil {
		return htmlContent
	}
	return out
}

// Process applies the font settings and wraps the document in an outer and
// inner container carrying the base typography.
//
// In preview mode the input is returned as is, byte for byte. A document
// already wrapped by a previous Process call keeps its containers; they are
// restyled rather than nested again.
func Process(htmlContent string, opts ProcessOptions) string {
	if opts.Preview || !opts.Font.Valid() {
		return htmlContent
	}
	doc, err := parseFragment(htmlContent)
	if err != nil {
		return htmlContent
	}

	color := opts.TextColor
	if color == "" {
		color = DefaultTheme().Text
	}
	t := newTypography(*opts.Font)

	outer, inner := findContainers(doc)
	if outer == nil {
		t.applyTree(doc)
		outer, inner = newContainers()
		moveChildren(doc, inner)
		outer.AppendChild(inner)
		doc.AppendChild(outer)
	} else {
		t.applyTree(inner)
	}
	t.styleContainer(outer, color, "outer")
	t.styleContainer(inner, color, "inner")

	out, err := renderChildren(doc)
	if err != nil {
		return htmlContent
	}
	return out
}

// applyTree styles n and its descendants. <pre> subtrees keep their own styling.
func (t typography) applyTree(n *html.Node) {
	if n.Type == html.ElementNode {
		if n.DataAtom == atom.Pre {
			return
		}
		switch {
		case postBlockTags[n.Data] || hasAttr(n, itemMarker):
			t.styleBlock(n)
			t.wrapContent(n)
		case postInlineTags[n.Data]:
			if n.DataAtom == atom.A {
				normalizeAnchor(n)
			}
			t.styleInline(n)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		t.applyTree(c)
	}
}

func (t typography) styleBlock(n *html.Node) {
	style, _ := getAttr(n, "style")
	d := parseStyle(style)

	d.Set("font-family", t.family)
	if isHeading(n.Data) {
		d.Set("font-size", px(float64(HeadingSize(n.Data, t.base))))
	} else {
		d.Set("font-size", t.size)
	}
	t.setSpacing(d)

	setAttr(n, "style", d.String())
}

func (t typography) styleInline(n *html.Node) {
	style, _ := getAttr(n, "style")
	d := parseStyle(style)
	t.setSpacing(d)
	setAttr(n, "style", d.String())
}

func (t typography) setSpacing(d *styleDecls) {
	d.Set("line-height", t.lineHeight)
	if t.letterSpacing != "" {
		d.Set("letter-spacing", t.letterSpacing)
	}
}

// wrapContent moves the children of a block into a marker span that pins
// line-height. A list item's marker span stays outside the wrapper. Nothing
// happens when the content is already wrapped, is empty, or holds a block
// element, since a span cannot contain one.
func (t typography) wrapContent(n *html.Node) {
	start := n.FirstChild
	first := firstMeaningfulChild(n)
	if first != nil && hasAttr(first, bulletMarker) {
		start = first.NextSibling
		first = nextMeaningfulSibling(first)
	}
	if first == nil || hasAttr(first, wrapperMarker) {
		return
	}
	for c := start; c != nil; c = c.NextSibling {
		if isBlockElement(c) {
			return
		}
	}

	span := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Span,
		Data:     "span",
		Attr:     []html.Attribute{{Key: wrapperMarker, Val: ""}},
	}
	for c := start; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		span.AppendChild(c)
		c = next
	}
	n.AppendChild(span)
}

func (t typography) styleContainer(n *html.Node, color, role string) {
	style, _ := getAttr(n, "style")
	d := parseStyle(style)
	d.Set("font-family", t.family)
	d.Set("font-size", t.size)
	d.Set("line-height", t.lineHeight)
	if t.letterSpacing != "" {
		d.Set("letter-spacing", t.letterSpacing)
	} else {
		d.Delete("letter-spacing")
	}
	d.Set("color", color)
	if role == "outer" {
		d.SetDefault("word-break", "break-word")
		d.SetDefault("text-align", "left")
	}
	setAttr(n, "style", d.String())
}

// normalizeAnchor forces links to open externally and gives unstyled
// links the default color.
func normalizeAnchor(n *html.Node) {
	setAttr(n, "target", "_blank")
	if _, ok := getAttr(n, "style"); !ok {
		setAttr(n, "style", defaultAnchorStyle)
	}
}

// findContainers returns the outer and inner containers of a document
// previously wrapped by Process, or nils.
func findContainers(doc *html.Node) (outer, inner *html.Node) {
	first := firstMeaningfulChild(doc)
	if first == nil || first.Type != html.ElementNode || first.DataAtom != atom.Section {
		return nil, nil
	}
	if role, _ := getAttr(first, containerMarker); role != "outer" {
		return nil, nil
	}
	// Anything after the outer container means the document was edited.
	for c := first.NextSibling; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode || (c.Type == html.TextNode && !isBlank(c.Data)) {
			return nil, nil
		}
	}
	in := firstMeaningfulChild(first)
	if in == nil || in.Type != html.ElementNode || in.DataAtom != atom.Section {
		return nil, nil
	}
	if role, _ := getAttr(in, containerMarker); role != "inner" {
		return nil, nil
	}
	return first, in
}

func newContainers() (outer, inner *html.Node) {
	outer = &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Section,
		Data:     "section",
		Attr:     []html.Attribute{{Key: containerMarker, Val: "outer"}},
	}
	inner = &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Section,
		Data:     "section",
		Attr:     []html.Attribute{{Key: containerMarker, Val: "inner"}},
	}
	return outer, inner
}

// moveChildren reparents every child of from onto to, in order.
func moveChildren(from, to *html.Node) {
	for c := from.FirstChild; c != nil; {
		next := c.NextSibling
		from.RemoveChild(c)
		to.AppendChild(c)
		c = next
	}
}

func isHeading(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}
