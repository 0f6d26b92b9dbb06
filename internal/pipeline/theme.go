package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidColor indicates a theme color is not a recognized CSS color.
var ErrInvalidColor = errors.New("invalid color")

// Theme holds the palette used by the renderer and the re-flow converter.
type Theme struct {
	Name string `yaml:"name"`

	Text       string `yaml:"text"`
	Heading    string `yaml:"heading"`
	Accent     string `yaml:"accent"`
	AccentEnd  string `yaml:"accentEnd"` // second stop of the h2 gradient bar
	Link       string `yaml:"link"`
	Strong     string `yaml:"strong"`
	Emphasis   string `yaml:"emphasis"`
	Muted      string `yaml:"muted"`
	Border     string `yaml:"border"`
	Mark       string `yaml:"mark"`
	QuoteBar   string `yaml:"quoteBar"`
	QuoteBack  string `yaml:"quoteBackground"`
	TableHead  string `yaml:"tableHeader"`
	InlineCode string `yaml:"inlineCode"`
	InlineBack string `yaml:"inlineCodeBackground"`
	CodeBack   string `yaml:"codeBackground"`
	CodeText   string `yaml:"codeText"`
	CodeTitle  string `yaml:"codeTitleBar"`

	// CodeStyle is a chroma style name used for syntax highlighting.
	CodeStyle string `yaml:"codeStyle"`

	// MarkerColors cycle by list depth.
	MarkerColors []string `yaml:"markerColors"`
}

// DefaultTheme returns the built-in palette.
func DefaultTheme() *Theme {
	return &Theme{
		Name:         "default",
		Text:         "#333333",
		Heading:      "#1f2328",
		Accent:       "#3b82f6",
		AccentEnd:    "#8b5cf6",
		Link:         "#576b95",
		Strong:       "#1f2328",
		Emphasis:     "#555555",
		Muted:        "#888888",
		Border:       "#dfe2e5",
		Mark:         "#fff3a3",
		QuoteBar:     "#d0d7de",
		QuoteBack:    "#f6f8fa",
		TableHead:    "#f3f4f6",
		InlineCode:   "#d14",
		InlineBack:   "#fff5f5",
		CodeBack:     "#282c34",
		CodeText:     "#abb2bf",
		CodeTitle:    "#21252b",
		CodeStyle:    "monokai",
		MarkerColors: []string{"#3b82f6", "#8b5cf6", "#10b981"},
	}
}

// MergeDefaults fills empty fields from DefaultTheme.
func (t *Theme) MergeDefaults() {
	d := DefaultTheme()
	fill := func(dst *string, src string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = src
		}
	}
	fill(&t.Name, d.Name)
	fill(&t.Text, d.Text)
	fill(&t.Heading, d.Heading)
	fill(&t.Accent, d.Accent)
	fill(&t.AccentEnd, d.AccentEnd)
	fill(&t.Link, d.Link)
	fill(&t.Strong, d.Strong)
	fill(&t.Emphasis, d.Emphasis)
	fill(&t.Muted, d.Muted)
	fill(&t.Border, d.Border)
	fill(&t.Mark, d.Mark)
	fill(&t.QuoteBar, d.QuoteBar)
	fill(&t.QuoteBack, d.QuoteBack)
	fill(&t.TableHead, d.TableHead)
	fill(&t.InlineCode, d.InlineCode)
	fill(&t.InlineBack, d.InlineBack)
	fill(&t.CodeBack, d.CodeBack)
	fill(&t.CodeText, d.CodeText)
	fill(&t.CodeTitle, d.CodeTitle)
	fill(&t.CodeStyle, d.CodeStyle)
	if len(t.MarkerColors) == 0 {
		t.MarkerColors = d.MarkerColors
	}
}

// Validate checks every color field.
func (t *Theme) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"text", t.Text},
		{"heading", t.Heading},
		{"accent", t.Accent},
		{"accentEnd", t.AccentEnd},
		{"link", t.Link},
		{"strong", t.Strong},
		{"emphasis", t.Emphasis},
		{"muted", t.Muted},
		{"border", t.Border},
		{"mark", t.Mark},
		{"quoteBar", t.QuoteBar},
		{"quoteBackground", t.QuoteBack},
		{"tableHeader", t.TableHead},
		{"inlineCode", t.InlineCode},
		{"inlineCodeBackground", t.InlineBack},
		{"codeBackground", t.CodeBack},
		{"codeText", t.CodeText},
		{"codeTitleBar", t.CodeTitle},
	}
	for _, f := range fields {
		if !IsValidColor(f.value) {
			return fmt.Errorf("%w: %s = %q", ErrInvalidColor, f.name, f.value)
		}
	}
	for i, c := range t.MarkerColors {
		if !IsValidColor(c) {
			return fmt.Errorf("%w: markerColors[%d] = %q", ErrInvalidColor, i, c)
		}
	}
	return nil
}

// markerColor returns the marker color for a zero-based list depth, cycling.
func (t *Theme) markerColor(depth int) string {
	if len(t.MarkerColors) == 0 {
		return t.Accent
	}
	return t.MarkerColors[depth%len(t.MarkerColors)]
}

var (
	hexColorPattern   = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColorPattern  = regexp.MustCompile(`^(rgb|rgba|hsl|hsla)\(\s*[-0-9.%]+\s*,\s*[-0-9.%]+\s*,\s*[-0-9.%]+\s*(,\s*[0-9.%]+\s*)?\)$`)
	namedColorPattern = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
)

// IsValidColor accepts hex, rgb[a]()/hsl[a]() and plain color keywords.
// The value must not contain characters that could escape a style attribute.
func IsValidColor(c string) bool {
	c = strings.TrimSpace(c)
	if c == "" {
		return false
	}
	return hexColorPattern.MatchString(c) ||
		funcColorPattern.MatchString(strings.ToLower(c)) ||
		namedColorPattern.MatchString(c)
}
