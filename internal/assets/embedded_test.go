package assets

import (
	"testing"

	"github.com/alnah/go-mdinline/internal/pipeline"
)

func TestEmbeddedLoader_AllThemesValid(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()
	for _, name := range loader.ThemeNames() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			theme, err := loader.LoadTheme(name)
			if err != nil {
				t.Fatalf("LoadTheme(%q) error = %v", name, err)
			}
			if err := theme.Validate(); err != nil {
				t.Errorf("theme %q invalid: %v", name, err)
			}
			if theme.CodeStyle == "" {
				t.Errorf("theme %q has no code style", name)
			}
			if len(theme.MarkerColors) == 0 {
				t.Errorf("theme %q has no marker colors", name)
			}
		})
	}
}

func TestEmbeddedLoader_DefaultMatchesBuiltin(t *testing.T) {
	t.Parallel()

	got, err := NewEmbeddedLoader().LoadTheme(DefaultThemeName)
	if err != nil {
		t.Fatalf("LoadTheme() error = %v", err)
	}
	want := pipeline.DefaultTheme()

	pairs := []struct {
		field    string
		got, exp string
	}{
		{"Text", got.Text, want.Text},
		{"Link", got.Link, want.Link},
		{"Accent", got.Accent, want.Accent},
		{"CodeBack", got.CodeBack, want.CodeBack},
		{"CodeStyle", got.CodeStyle, want.CodeStyle},
	}
	for _, p := range pairs {
		if p.got != p.exp {
			t.Errorf("%s = %q, want %q", p.field, p.got, p.exp)
		}
	}
	if len(got.MarkerColors) != len(want.MarkerColors) {
		t.Errorf("MarkerColors = %v, want %v", got.MarkerColors, want.MarkerColors)
	}
}

func TestEmbeddedLoader_ReturnsFreshCopies(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()
	a, err := loader.LoadTheme("ocean")
	if err != nil {
		t.Fatalf("LoadTheme() error = %v", err)
	}
	a.Text = "#000000"

	b, err := loader.LoadTheme("ocean")
	if err != nil {
		t.Fatalf("LoadTheme() error = %v", err)
	}
	if b.Text == "#000000" {
		t.Error("mutating a loaded theme leaked into the next load")
	}
}

func TestEmbeddedLoader_ImplementsAssetLoader(t *testing.T) {
	t.Parallel()

	var _ AssetLoader = (*EmbeddedLoader)(nil)
}
