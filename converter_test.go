package mdinline

// Notes:
// - Tests Converter with the real pipeline; a mock HTMLConverter covers
//   panic recovery and context handling
// - Internal test option withHTMLConverter enables dependency injection
// - Font validation tests cover every Input.Font field

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alnah/go-mdinline/internal/pipeline"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

type mockHTMLConverter struct {
	output string
	err    error
	panic  bool
}

func (m *mockHTMLConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if m.panic {
		panic("renderer exploded")
	}
	if m.err != nil {
		return "", m.err
	}
	return m.output, nil
}

type mockAssetLoader struct {
	theme *Theme
	err   error
	names []string
}

func (m *mockAssetLoader) LoadTheme(name string) (*Theme, error) {
	m.names = append(m.names, name)
	if m.err != nil {
		return nil, m.err
	}
	return m.theme, nil
}

func withHTMLConverter(hc pipeline.HTMLConverter) Option {
	return func(c *Converter) {
		c.htmlConverter = hc
	}
}

func newTestConverter(t *testing.T, opts ...Option) *Converter {
	t.Helper()
	conv, err := NewConverter(opts...)
	if err != nil {
		t.Fatalf("NewConverter() unexpected error: %v", err)
	}
	return conv
}

func convert(t *testing.T, conv *Converter, input Input) *ConvertResult {
	t.Helper()
	result, err := conv.Convert(context.Background(), input)
	if err != nil {
		t.Fatalf("Convert() unexpected error: %v", err)
	}
	return result
}

// ---------------------------------------------------------------------------
// NewConverter
// ---------------------------------------------------------------------------

func TestNewConverter_Defaults(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	theme := conv.Theme()
	if theme.Name != DefaultTheme {
		t.Errorf("Theme().Name = %q, want %q", theme.Name, DefaultTheme)
	}
	if theme.CodeStyle == "" {
		t.Error("Theme().CodeStyle should be set")
	}
}

func TestWithTheme(t *testing.T) {
	t.Parallel()

	t.Run("built-in theme", func(t *testing.T) {
		t.Parallel()

		conv := newTestConverter(t, WithTheme("ocean"))
		if got := conv.Theme(); got.Name != "ocean" || got.CodeStyle != "nord" {
			t.Errorf("Theme() = %q/%q, want ocean/nord", got.Name, got.CodeStyle)
		}
	})

	t.Run("unknown theme returns ErrThemeNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := NewConverter(WithTheme("does-not-exist"))
		if !errors.Is(err, ErrThemeNotFound) {
			t.Errorf("NewConverter() error = %v, want ErrThemeNotFound", err)
		}
	})
}

func TestWithCodeStyle(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, WithTheme("ocean"), WithCodeStyle("github"))
	if got := conv.Theme().CodeStyle; got != "github" {
		t.Errorf("CodeStyle = %q, want %q", got, "github")
	}
}

func TestWithAssetPath(t *testing.T) {
	t.Parallel()

	t.Run("invalid path returns ErrInvalidAssetPath", func(t *testing.T) {
		t.Parallel()

		_, err := NewConverter(WithAssetPath(filepath.Join(t.TempDir(), "missing")))
		if !errors.Is(err, ErrInvalidAssetPath) {
			t.Errorf("NewConverter() error = %v, want ErrInvalidAssetPath", err)
		}
	})

	t.Run("loads custom theme from filesystem", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeThemeFile(t, dir, "brand", "text: \"#101010\"\naccent: \"#ff6600\"\n")

		conv := newTestConverter(t, WithAssetPath(dir), WithTheme("brand"))
		theme := conv.Theme()
		if theme.Text != "#101010" || theme.Accent != "#ff6600" {
			t.Errorf("custom colors not loaded: text=%q accent=%q", theme.Text, theme.Accent)
		}
		if theme.Link != pipeline.DefaultTheme().Link {
			t.Errorf("missing colors should come from default, Link = %q", theme.Link)
		}
	})

	t.Run("falls back to built-in theme", func(t *testing.T) {
		t.Parallel()

		conv := newTestConverter(t, WithAssetPath(t.TempDir()), WithTheme("ink"))
		if got := conv.Theme().Name; got != "ink" {
			t.Errorf("Theme().Name = %q, want %q", got, "ink")
		}
	})

	t.Run("bad color returns ErrInvalidTheme and ErrInvalidColor", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeThemeFile(t, dir, "broken", "text: \"red;x\"\n")

		_, err := NewConverter(WithAssetPath(dir), WithTheme("broken"))
		if !errors.Is(err, ErrInvalidTheme) {
			t.Errorf("error = %v, want ErrInvalidTheme", err)
		}
		if !errors.Is(err, ErrInvalidColor) {
			t.Errorf("error = %v, want ErrInvalidColor", err)
		}
	})
}

func writeThemeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	themes := filepath.Join(dir, "themes")
	if err := os.MkdirAll(themes, 0o755); err != nil {
		t.Fatalf("setup mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(themes, name+".yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("setup write: %v", err)
	}
}

func TestWithAssetLoader(t *testing.T) {
	t.Parallel()

	t.Run("custom loader used", func(t *testing.T) {
		t.Parallel()

		loader := &mockAssetLoader{theme: &Theme{Name: "mock", Text: "#111111"}}
		conv := newTestConverter(t, WithAssetLoader(loader), WithTheme("mock"))

		if len(loader.names) != 1 || loader.names[0] != "mock" {
			t.Errorf("loader called with %v, want [mock]", loader.names)
		}
		result := convert(t, conv, Input{Markdown: "hello", Font: DefaultFont()})
		if !strings.Contains(string(result.HTML), "color:#111111") {
			t.Errorf("container should use loader text color:\n%s", result.HTML)
		}
	})

	t.Run("loader does not share mutations", func(t *testing.T) {
		t.Parallel()

		shared := &Theme{Name: "shared"}
		newTestConverter(t, WithAssetLoader(&mockAssetLoader{theme: shared}), WithCodeStyle("github"))
		if shared.CodeStyle != "" || shared.Text != "" {
			t.Errorf("loader theme mutated: %+v", shared)
		}
	})

	t.Run("loader error surfaces", func(t *testing.T) {
		t.Parallel()

		loader := &mockAssetLoader{err: ErrThemeNotFound}
		_, err := NewConverter(WithAssetLoader(loader))
		if !errors.Is(err, ErrThemeNotFound) {
			t.Errorf("error = %v, want ErrThemeNotFound", err)
		}
	})

	t.Run("nil theme returns ErrThemeNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := NewConverter(WithAssetLoader(&mockAssetLoader{}))
		if !errors.Is(err, ErrThemeNotFound) {
			t.Errorf("error = %v, want ErrThemeNotFound", err)
		}
	})
}

// ---------------------------------------------------------------------------
// Convert
// ---------------------------------------------------------------------------

func TestConvert_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{name: "empty markdown", input: Input{}, wantErr: ErrEmptyMarkdown},
		{name: "blank markdown", input: Input{Markdown: " \n\t"}, wantErr: ErrEmptyMarkdown},
		{name: "font size too small", input: Input{Markdown: "x", Font: &Font{Size: 4}}, wantErr: ErrInvalidFontSize},
		{name: "font size too large", input: Input{Markdown: "x", Font: &Font{Size: 100}}, wantErr: ErrInvalidFontSize},
		{name: "font size NaN", input: Input{Markdown: "x", Font: &Font{Size: math.NaN()}}, wantErr: ErrInvalidFontSize},
		{name: "letter spacing", input: Input{Markdown: "x", Font: &Font{Size: 16, LetterSpacing: 20}}, wantErr: ErrInvalidLetterSpacing},
		{name: "zero line height", input: Input{Markdown: "x", Font: &Font{Size: 16, LineHeight: "0"}}, wantErr: ErrInvalidLineHeight},
		{name: "negative line height", input: Input{Markdown: "x", Font: &Font{Size: 16, LineHeight: "-1.5"}}, wantErr: ErrInvalidLineHeight},
	}

	conv := newTestConverter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := conv.Convert(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Convert() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConvert_FontApplied(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	result := convert(t, conv, Input{
		Markdown: "# Title\n\nBody text.\n",
		Font:     &Font{Family: "not-a-real-key", Size: 16},
	})
	html := string(result.HTML)

	for _, want := range []string{
		`data-mdi="outer"`,
		`data-mdi="inner"`,
		"font-size:35px",
		"font-size:16px",
		"line-height:1.6",
		pipeline.FontFamilies[FallbackFontFamily],
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q:\n%s", want, html)
		}
	}
}

func TestConvert_PreviewSkipsFonts(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	md := "# Title\n\n- a\n- b\n"

	preview := convert(t, conv, Input{Markdown: md, Font: DefaultFont(), Preview: true})
	plain := convert(t, conv, Input{Markdown: md})

	if string(preview.HTML) != string(plain.HTML) {
		t.Errorf("preview output should equal unstyled render\npreview: %s\nplain:   %s", preview.HTML, plain.HTML)
	}
	if strings.Contains(string(preview.HTML), "data-mdi") {
		t.Error("preview output should not be wrapped")
	}
}

func TestConvert_Highlight(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, WithTheme("ocean"))
	result := convert(t, conv, Input{Markdown: "some ==marked== text"})
	html := string(result.HTML)

	if !strings.Contains(html, "<mark") || !strings.Contains(html, "#c7f0ff") {
		t.Errorf("highlight should use theme mark color:\n%s", html)
	}
	if strings.ContainsAny(html, pipeline.MarkStartPlaceholder+pipeline.MarkEndPlaceholder) {
		t.Error("placeholders left in output")
	}
}

func TestConvert_ImageBaseURL(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	result := convert(t, conv, Input{
		Markdown:     "![chart](img/chart.png)\n\n![abs](https://other.example.com/x.png)\n",
		ImageBaseURL: "https://cdn.example.com/post",
	})
	html := string(result.HTML)

	if !strings.Contains(html, `src="https://cdn.example.com/post/img/chart.png"`) {
		t.Errorf("relative source not rewritten:\n%s", html)
	}
	if !strings.Contains(html, `src="https://other.example.com/x.png"`) {
		t.Errorf("absolute source changed:\n%s", html)
	}
}

func TestConvert_Reflow(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	md := "| a | b |\n|---|---|\n| 1 | 2 |\n\n- one\n- two\n"
	result := convert(t, conv, Input{Markdown: md, Font: DefaultFont(), Reflow: true})
	html := string(result.HTML)

	for _, tag := range []string{"<table", "<tr", "<td", "<th", "<ul", "<ol", "<li"} {
		if strings.Contains(html, tag) {
			t.Errorf("reflowed output contains %s:\n%s", tag, html)
		}
	}
	for _, want := range []string{"one", "two", ">1<", ">2<"} {
		if !strings.Contains(html, want) {
			t.Errorf("reflowed output lost %q:\n%s", want, html)
		}
	}
}

func TestConvert_ReflowKeepsTypography(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	md := "# Title\n\n## Sub\n\ntext\n\n- a\n- b\n"
	result := convert(t, conv, Input{Markdown: md, Font: &Font{Family: "x", Size: 16}, Reflow: true})
	out := string(result.HTML)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	stack := pipeline.FontFamilies[FallbackFontFamily]

	h1, _ := doc.Find("h1").Attr("style")
	if !strings.Contains(h1, "font-size:35px") || !strings.Contains(h1, "font-family:"+stack) {
		t.Errorf("h1 lost its post-processed typography: %q", h1)
	}
	h2, _ := doc.Find("h2").Attr("style")
	if !strings.Contains(h2, "font-size:24px") {
		t.Errorf("h2 style = %q, want font-size:24px", h2)
	}
	if n := strings.Count(out, "linear-gradient"); n != 1 {
		t.Errorf("got %d h2 bars, want 1:\n%s", n, out)
	}
	p, _ := doc.Find("p").First().Attr("style")
	if !strings.Contains(p, "font-size:16px") {
		t.Errorf("paragraph style = %q, want font-size:16px", p)
	}
	if n := doc.Find("span[data-mdi-lh] span[data-mdi-lh]").Length(); n != 0 {
		t.Errorf("wrapper spans nested %d times:\n%s", n, out)
	}
}

func TestConvert_Text(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	result := convert(t, conv, Input{Markdown: "# Title\n\nHello **world**\n", Font: DefaultFont()})

	if !strings.Contains(result.Text, "Title") || !strings.Contains(result.Text, "Hello world") {
		t.Errorf("Text = %q", result.Text)
	}
	if strings.Contains(result.Text, "<") {
		t.Errorf("Text contains markup: %q", result.Text)
	}
}

func TestConvert_Standalone(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	result := convert(t, conv, Input{Markdown: "body", Standalone: true, Title: "Notes & Ideas"})
	html := string(result.HTML)

	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Errorf("standalone output should start with doctype:\n%s", html)
	}
	if !strings.Contains(html, "<title>Notes &amp; Ideas</title>") {
		t.Errorf("title not escaped into head:\n%s", html)
	}
	if strings.Contains(result.Text, "Notes") {
		t.Errorf("Text should come from the fragment only: %q", result.Text)
	}
}

func TestConvert_ListNumberingAcrossCalls(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	md := "1. a\n2. b\n3. c\n"

	first := convert(t, conv, Input{Markdown: md})
	second := convert(t, conv, Input{Markdown: md})
	if string(first.HTML) != string(second.HTML) {
		t.Error("render state leaked between calls")
	}
}

func TestConvert_Concurrent(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)
	input := Input{Markdown: "1. a\n   - b\n     1. c\n2. d\n\n```go\nx := 1\n```\n", Font: DefaultFont()}
	want := string(convert(t, conv, input).HTML)

	var wg sync.WaitGroup
	errs := make(chan string, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := conv.Convert(context.Background(), input)
			if err != nil {
				errs <- err.Error()
				return
			}
			if string(result.HTML) != want {
				errs <- "output differs under concurrency"
			}
		}()
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}

func TestConvert_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conv := newTestConverter(t)
	_, err := conv.Convert(ctx, Input{Markdown: "# x"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Convert() error = %v, want context.Canceled", err)
	}
}

func TestConvert_HTMLConverterError(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, withHTMLConverter(&mockHTMLConverter{err: context.DeadlineExceeded}))
	_, err := conv.Convert(context.Background(), Input{Markdown: "x"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Convert() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestConvert_RecoversPanic(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t, withHTMLConverter(&mockHTMLConverter{panic: true}))
	_, err := conv.Convert(context.Background(), Input{Markdown: "x"})
	if err == nil || !strings.Contains(err.Error(), "internal error") {
		t.Errorf("Convert() error = %v, want internal error", err)
	}
}

func TestConvert_LogsUnknownLineHeight(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	conv := newTestConverter(t, WithLogger(zap.New(core)))

	result := convert(t, conv, Input{Markdown: "x", Font: &Font{Size: 16, LineHeight: "loose"}})
	if !strings.Contains(string(result.HTML), "line-height:1.6") {
		t.Errorf("unknown line height should fall back to 1.6:\n%s", result.HTML)
	}
	if n := logs.FilterMessage("line height not understood, using default").Len(); n != 1 {
		t.Errorf("debug entries = %d, want 1", n)
	}
}

func TestConvert_LogsHighlightFallback(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	conv := newTestConverter(t, WithLogger(zap.New(core)))

	result := convert(t, conv, Input{Markdown: "```nosuchlang\na < b\n```\n"})
	if !strings.Contains(string(result.HTML), "a &lt; b") {
		t.Errorf("fallback should escape code:\n%s", result.HTML)
	}
	if logs.Len() == 0 {
		t.Error("expected a warning for the unknown language")
	}
}

// ---------------------------------------------------------------------------
// Reflow and PlainText
// ---------------------------------------------------------------------------

func TestConverter_Reflow(t *testing.T) {
	t.Parallel()

	conv := newTestConverter(t)

	t.Run("empty input returns ErrEmptyHTML", func(t *testing.T) {
		t.Parallel()

		if _, err := conv.Reflow(context.Background(), "  ", false); !errors.Is(err, ErrEmptyHTML) {
			t.Errorf("Reflow() error = %v, want ErrEmptyHTML", err)
		}
	})

	t.Run("list tags removed", func(t *testing.T) {
		t.Parallel()

		got, err := conv.Reflow(context.Background(), "<ul><li>a</li><li>b</li></ul>", false)
		if err != nil {
			t.Fatalf("Reflow() unexpected error: %v", err)
		}
		if strings.Contains(got, "<li") || strings.Contains(got, "<ul") {
			t.Errorf("list tags left:\n%s", got)
		}
	})

	t.Run("sanitize strips handlers", func(t *testing.T) {
		t.Parallel()

		got, err := conv.Reflow(context.Background(), `<p onclick="steal()">hi</p><script>x()</script>`, true)
		if err != nil {
			t.Fatalf("Reflow() unexpected error: %v", err)
		}
		if strings.Contains(got, "onclick") || strings.Contains(got, "x()") {
			t.Errorf("unsafe content left:\n%s", got)
		}
		if !strings.Contains(got, "hi") {
			t.Errorf("text lost:\n%s", got)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := conv.Reflow(ctx, "<p>x</p>", false); !errors.Is(err, context.Canceled) {
			t.Errorf("Reflow() error = %v, want context.Canceled", err)
		}
	})
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	got, err := PlainText("<h1>A</h1><p>b<br>c</p>")
	if err != nil {
		t.Fatalf("PlainText() unexpected error: %v", err)
	}
	if got != "A\n\nb\nc" {
		t.Errorf("PlainText() = %q, want %q", got, "A\n\nb\nc")
	}
}

// ---------------------------------------------------------------------------
// Font
// ---------------------------------------------------------------------------

func TestFont_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		font    *Font
		wantErr error
	}{
		{name: "nil", font: nil},
		{name: "default", font: DefaultFont()},
		{name: "bounds", font: &Font{Size: MaxFontSize, LetterSpacing: MinLetterSpacing}},
		{name: "css length", font: &Font{Size: 16, LineHeight: "28px"}},
		{name: "unknown word accepted", font: &Font{Size: 16, LineHeight: "loose"}},
		{name: "size zero", font: &Font{}, wantErr: ErrInvalidFontSize},
		{name: "infinite line height", font: &Font{Size: 16, LineHeight: "+Inf"}, wantErr: ErrInvalidLineHeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.font.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
