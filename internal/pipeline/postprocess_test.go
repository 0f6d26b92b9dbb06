package pipeline

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func fontAt(size float64) *FontSettings {
	return &FontSettings{Family: "pingfang-sc", Size: size}
}

func styleOf(t *testing.T, html, selector string) string {
	t.Helper()

	style, ok := parseDoc(t, html).Find(selector).First().Attr("style")
	if !ok {
		t.Fatalf("no style on %q in %s", selector, html)
	}
	return style
}

// ---------------------------------------------------------------------------
// TestApplyInlineStyles_Idempotent - Line-Height Normalization
// ---------------------------------------------------------------------------

func TestApplyInlineStyles_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := map[string]string{
		"rendered markdown": renderMarkdown(t, "# T\n\nsome **bold** text and [a link](https://e.com)\n\n- one\n- two\n\n> quote\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"),
		"existing line-height": `<p style="line-height: 3; color: red">x</p><span style="line-height:9px">y</span>`,
		"rgba value":           `<p style="background: rgba(0, 0, 0, 0.1); line-height: 1">x</p>`,
		"bare inline text":     `hello <em>world</em>`,
	}

	fonts := []*FontSettings{
		fontAt(16),
		{Family: "georgia", Size: 14, LineHeight: "28px", LetterSpacing: 0.5},
		{Family: "nope", Size: 20, LineHeight: "loose"},
	}

	for name, input := range inputs {
		for _, fs := range fonts {
			once := ApplyInlineStyles(input, fs)
			twice := ApplyInlineStyles(once, fs)
			if once != twice {
				t.Errorf("%s with %+v: second pass changed output\nonce:  %s\ntwice: %s", name, *fs, once, twice)
			}
		}
	}
}

func TestApplyInlineStyles_ReplacesLineHeight(t *testing.T) {
	t.Parallel()

	got := ApplyInlineStyles(`<p style="color:red;line-height:3;margin:0">x</p>`, fontAt(16))
	style := styleOf(t, got, "p")

	if n := strings.Count(style, "line-height"); n != 1 {
		t.Fatalf("style has %d line-height declarations, want 1: %q", n, style)
	}
	if !strings.HasPrefix(style, "color:red;line-height:1.6;margin:0;") {
		t.Errorf("line-height should be replaced in place, got %q", style)
	}
}

// ---------------------------------------------------------------------------
// TestApplyInlineStyles_Typography - Sizes, Families, Spacing
// ---------------------------------------------------------------------------

func TestApplyInlineStyles_HeadingSizes(t *testing.T) {
	t.Parallel()

	got := ApplyInlineStyles(`<h1>a</h1><h2>b</h2><h3>c</h3><h4>d</h4><p>e</p>`, fontAt(16))

	tests := []struct {
		selector string
		want     string
	}{
		{"h1", "font-size:35px"},
		{"h2", "font-size:24px"},
		{"h3", "font-size:21px"},
		{"h4", "font-size:16px"},
		{"p", "font-size:16px"},
	}
	for _, tt := range tests {
		if style := styleOf(t, got, tt.selector); !strings.Contains(style, tt.want) {
			t.Errorf("%s style = %q, want %q", tt.selector, style, tt.want)
		}
	}
}

func TestApplyInlineStyles_FontFamilyFallback(t *testing.T) {
	t.Parallel()

	got := ApplyInlineStyles(`<p>x</p>`, &FontSettings{Family: "not-a-real-key", Size: 16})
	style := styleOf(t, got, "p")

	if !strings.Contains(style, "font-family:"+FontFamilies[FallbackFontFamily]) {
		t.Errorf("style = %q, want fallback family", style)
	}
	if strings.Contains(style, "font-family:;") || strings.Contains(style, "undefined") {
		t.Errorf("style has an empty family: %q", style)
	}
}

func TestApplyInlineStyles_InlineTags(t *testing.T) {
	t.Parallel()

	fs := &FontSettings{Family: "helvetica", Size: 15, LetterSpacing: 0.5}
	got := ApplyInlineStyles(`<p>a <strong>b</strong> <code>c</code></p>`, fs)

	for _, sel := range []string{"strong", "code"} {
		style := styleOf(t, got, sel)
		if !strings.Contains(style, "line-height:1.6") || !strings.Contains(style, "letter-spacing:0.5px") {
			t.Errorf("%s style = %q, want line-height and letter-spacing", sel, style)
		}
		if strings.Contains(style, "font-family") {
			t.Errorf("%s should keep its own family, got %q", sel, style)
		}
	}
}

func TestApplyInlineStyles_PreUntouched(t *testing.T) {
	t.Parallel()

	pre := `<pre style="margin:0;"><code><span style="color:#f00;">x</span>` + "\n" + `  y</code></pre>`
	got := ApplyInlineStyles(`<p>a</p>`+pre, fontAt(16))

	if !strings.Contains(got, pre) {
		t.Errorf("pre subtree changed:\n%s", got)
	}
}

func TestApplyInlineStyles_Anchors(t *testing.T) {
	t.Parallel()

	got := ApplyInlineStyles(`<p><a href="/a">a</a> <a href="/b" target="_self" style="color:red">b</a></p>`, fontAt(16))
	doc := parseDoc(t, got)

	first := doc.Find("a").Eq(0)
	if target, _ := first.Attr("target"); target != "_blank" {
		t.Errorf("first target = %q", target)
	}
	if style, _ := first.Attr("style"); !strings.HasPrefix(style, defaultAnchorStyle) {
		t.Errorf("unstyled link should get the default style, got %q", style)
	}

	second := doc.Find("a").Eq(1)
	if target, _ := second.Attr("target"); target != "_blank" {
		t.Errorf("second target = %q, want overwritten", target)
	}
	if style, _ := second.Attr("style"); !strings.HasPrefix(style, "color:red;") || strings.Contains(style, "#576b95") {
		t.Errorf("styled link should keep its style, got %q", style)
	}
}

func TestApplyInlineStyles_InvalidSettings(t *testing.T) {
	t.Parallel()

	in := `<p style="x">unchanged</p>`
	for name, fs := range map[string]*FontSettings{
		"nil":       nil,
		"zero size": {Family: "georgia"},
		"negative":  {Size: -4},
	} {
		if got := ApplyInlineStyles(in, fs); got != in {
			t.Errorf("%s: got %q, want input unchanged", name, got)
		}
	}
}

// ---------------------------------------------------------------------------
// TestApplyInlineStyles_Wrapper - Defensive Line-Height Span
// ---------------------------------------------------------------------------

func TestApplyInlineStyles_Wrapper(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		html        string
		selector    string
		wantWrapped bool
	}{
		{name: "paragraph text", html: `<p>text <b>x</b></p>`, selector: "p", wantWrapped: true},
		{name: "heading", html: `<h2>title</h2>`, selector: "h2", wantWrapped: true},
		{name: "leading comment skipped", html: `<p><!-- c --> text</p>`, selector: "p", wantWrapped: true},
		{name: "block child not wrapped", html: `<blockquote><p>x</p></blockquote>`, selector: "blockquote", wantWrapped: false},
		{name: "leading whitespace then block", html: "<li>\n  <p>x</p></li>", selector: "li", wantWrapped: false},
		{name: "empty element", html: `<p></p>`, selector: "p", wantWrapped: false},
		{name: "list item after marker", html: `<section data-mdi-item="" style="margin:0"><span data-mdi-marker="">1.</span>a</section>`, selector: "section", wantWrapped: true},
		{name: "marker only", html: `<section data-mdi-item=""><span data-mdi-marker="">•</span></section>`, selector: "section", wantWrapped: false},
		{name: "text then nested block", html: `<li>text<ul><li>y</li></ul></li>`, selector: "li", wantWrapped: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ApplyInlineStyles(tt.html, fontAt(16))
			el := parseDoc(t, got).Find(tt.selector).First()
			wrapped := el.ChildrenFiltered("span[" + wrapperMarker + "]").Length()

			if tt.wantWrapped && wrapped != 1 {
				t.Errorf("want one wrapper span, got %d: %s", wrapped, got)
			}
			if !tt.wantWrapped && wrapped != 0 {
				t.Errorf("want no wrapper span, got %d: %s", wrapped, got)
			}
		})
	}
}

func TestApplyInlineStyles_WrapperNotRepeated(t *testing.T) {
	t.Parallel()

	out := `<p>a</p><h1>b</h1>`
	for i := 0; i < 3; i++ {
		out = ApplyInlineStyles(out, fontAt(16))
	}

	doc := parseDoc(t, out)
	if n := doc.Find("span[" + wrapperMarker + "]").Length(); n != 2 {
		t.Errorf("got %d wrapper spans after three passes, want 2: %s", n, out)
	}
	if n := doc.Find("span[" + wrapperMarker + "] span[" + wrapperMarker + "]").Length(); n != 0 {
		t.Errorf("wrappers nested %d times", n)
	}
}

// ---------------------------------------------------------------------------
// TestProcess - Document Containers and Preview Mode
// ---------------------------------------------------------------------------

func TestProcess_PreviewBypass(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`<p>x</p>`,
		"  <P STYLE='a'>unbalanced <b>markup\n",
		renderMarkdown(t, "# a\n\n1. b\n"),
		"",
	}
	for _, in := range inputs {
		got := Process(in, ProcessOptions{Font: fontAt(16), Preview: true})
		if got != in {
			t.Errorf("preview changed input %q to %q", in, got)
		}
	}
}

func TestProcess_Containers(t *testing.T) {
	t.Parallel()

	fs := &FontSettings{Family: "georgia", Size: 17, LetterSpacing: 1}
	got := Process(`<p>a</p><p>b</p>`, ProcessOptions{Font: fs, TextColor: "#222222"})
	doc := parseDoc(t, got)

	outer := doc.Find(`section[data-mdi="outer"]`)
	if outer.Length() != 1 {
		t.Fatalf("want one outer container, got %d: %s", outer.Length(), got)
	}
	inner := outer.ChildrenFiltered(`section[data-mdi="inner"]`)
	if inner.Length() != 1 {
		t.Fatalf("want one inner container, got %d", inner.Length())
	}
	if inner.ChildrenFiltered("p").Length() != 2 {
		t.Errorf("paragraphs should live inside the inner container")
	}

	for _, sel := range []*goquery.Selection{outer, inner} {
		style, _ := sel.Attr("style")
		for _, want := range []string{
			"font-family:" + FontFamilies["georgia"],
			"font-size:17px",
			"line-height:1.6",
			"letter-spacing:1px",
			"color:#222222",
		} {
			if !strings.Contains(style, want) {
				t.Errorf("container style %q missing %q", style, want)
			}
		}
	}
}

func TestProcess_RestylesInsteadOfNesting(t *testing.T) {
	t.Parallel()

	once := Process(`<p>a</p>`, ProcessOptions{Font: fontAt(16)})
	twice := Process(once, ProcessOptions{Font: fontAt(16)})
	if once != twice {
		t.Errorf("reprocessing with the same settings changed output\nonce:  %s\ntwice: %s", once, twice)
	}

	bigger := Process(once, ProcessOptions{Font: fontAt(20)})
	doc := parseDoc(t, bigger)
	if n := doc.Find(`section[data-mdi="outer"]`).Length(); n != 1 {
		t.Fatalf("got %d outer containers, want 1", n)
	}
	if style, _ := doc.Find(`section[data-mdi="outer"]`).Attr("style"); !strings.Contains(style, "font-size:20px") || !strings.Contains(style, "line-height:1.5") {
		t.Errorf("outer container not restyled: %q", style)
	}
	if style, _ := doc.Find("p").Attr("style"); !strings.Contains(style, "font-size:20px") {
		t.Errorf("paragraph not restyled: %q", style)
	}
}

func TestProcess_ListItems(t *testing.T) {
	t.Parallel()

	fs := &FontSettings{Family: "georgia", Size: 16, LineHeight: "1.8"}
	got := Process(renderMarkdown(t, "- a\n- b\n"), ProcessOptions{Font: fs})
	doc := parseDoc(t, got)

	items := doc.Find("section[" + itemMarker + "]")
	if items.Length() != 2 {
		t.Fatalf("got %d item sections, want 2: %s", items.Length(), got)
	}
	items.Each(func(i int, item *goquery.Selection) {
		style, _ := item.Attr("style")
		for _, want := range []string{"font-family:" + FontFamilies["georgia"], "font-size:16px", "line-height:1.8"} {
			if !strings.Contains(style, want) {
				t.Errorf("item %d style %q missing %q", i, style, want)
			}
		}

		wrapper := item.ChildrenFiltered("span[" + wrapperMarker + "]")
		if wrapper.Length() != 1 {
			t.Fatalf("item %d: want one wrapper span, got %d: %s", i, wrapper.Length(), got)
		}
		if text := wrapper.Text(); text != []string{"a", "b"}[i] {
			t.Errorf("item %d wrapper text = %q", i, text)
		}
		if wrapper.Find("span[" + bulletMarker + "]").Length() != 0 {
			t.Errorf("item %d: marker moved inside the wrapper", i)
		}
	})
}

func TestProcess_NoFont(t *testing.T) {
	t.Parallel()

	in := `<p>x</p>`
	if got := Process(in, ProcessOptions{}); got != in {
		t.Errorf("Process without font = %q, want input", got)
	}
}
