package pipeline

import "strconv"

// ListKind distinguishes ordered from unordered lists.
type ListKind int

const (
	Unordered ListKind = iota
	Ordered
)

// Indentation and marker geometry for rendered list items, in px.
const (
	ListIndentBase  = 24
	ListIndentStep  = 20
	ListMarkerWidth = 20
	ListMarkerGap   = 4
)

// unorderedGlyphs are bullet markers by depth; deeper levels reuse the last one.
var unorderedGlyphs = []string{"•", "◦", "▪"}

// ItemLayout is everything needed to render one list item.
type ItemLayout struct {
	Depth   int // zero-based nesting depth
	Kind    ListKind
	Number  int    // ordinal, only meaningful for Ordered
	Indent  int    // left padding of the item content, px
	Marker  string // rendered marker text ("3." or a bullet glyph)
	Color   string
	MarkerX int // left offset of the marker box, px
}

// RenderContext tracks list nesting for a single render call.
// It is not safe for concurrent use; build one per render.
type RenderContext struct {
	nestingLevel    int
	orderedCounters []int
	typeStack       []ListKind
	theme           *Theme
}

// NewRenderContext returns an empty context using theme for marker colors.
func NewRenderContext(theme *Theme) *RenderContext {
	if theme == nil {
		theme = DefaultTheme()
	}
	return &RenderContext{theme: theme}
}

// Reset clears all list state.
func (rc *RenderContext) Reset() {
	rc.nestingLevel = 0
	rc.orderedCounters = rc.orderedCounters[:0]
	rc.typeStack = rc.typeStack[:0]
}

// Depth returns the current nesting level (number of open lists).
func (rc *RenderContext) Depth() int {
	return rc.nestingLevel
}

// OpenList pushes a list. Ordered lists (re)initialize the counter for their
// depth so the first item gets start.
func (rc *RenderContext) OpenList(kind ListKind, start int) {
	rc.typeStack = append(rc.typeStack, kind)
	rc.nestingLevel++

	if kind != Ordered {
		return
	}
	depth := rc.nestingLevel - 1
	for len(rc.orderedCounters) <= depth {
		rc.orderedCounters = append(rc.orderedCounters, 0)
	}
	if start < 0 {
		start = 1
	}
	rc.orderedCounters[depth] = start - 1
}

// CloseList pops the innermost list. Unbalanced closes are ignored.
// Counters of deeper levels are left as is; OpenList reinitializes them.
func (rc *RenderContext) CloseList() {
	if rc.nestingLevel == 0 || len(rc.typeStack) == 0 {
		return
	}
	rc.typeStack = rc.typeStack[:len(rc.typeStack)-1]
	rc.nestingLevel--
}

// currentKind returns the innermost list kind, Unordered when no list is open.
func (rc *RenderContext) currentKind() ListKind {
	if len(rc.typeStack) == 0 {
		return Unordered
	}
	return rc.typeStack[len(rc.typeStack)-1]
}

// OpenItem advances the counter of the innermost ordered list and computes
// the item layout.
func (rc *RenderContext) OpenItem() ItemLayout {
	depth := rc.nestingLevel - 1
	if depth < 0 {
		depth = 0
	}

	layout := ItemLayout{
		Depth:  depth,
		Kind:   rc.currentKind(),
		Indent: ItemIndent(depth),
		Color:  rc.theme.markerColor(depth),
	}
	layout.MarkerX = layout.Indent - ListMarkerWidth - ListMarkerGap

	if layout.Kind == Ordered {
		for len(rc.orderedCounters) <= depth {
			rc.orderedCounters = append(rc.orderedCounters, 0)
		}
		rc.orderedCounters[depth]++
		layout.Number = rc.orderedCounters[depth]
		layout.Marker = strconv.Itoa(layout.Number) + "."
		return layout
	}

	glyph := unorderedGlyphs[len(unorderedGlyphs)-1]
	if depth < len(unorderedGlyphs) {
		glyph = unorderedGlyphs[depth]
	}
	layout.Marker = glyph
	return layout
}

// ItemIndent returns the content indentation for a zero-based depth.
func ItemIndent(depth int) int {
	if depth <= 0 {
		return ListIndentBase
	}
	return ListIndentBase + depth*ListIndentStep
}
