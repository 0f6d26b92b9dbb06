package assets

import "github.com/alnah/go-mdinline/internal/pipeline"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadTheme loads a built-in theme by name using the default embedded loader.
// Returns ErrThemeNotFound if the theme does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadTheme(name string) (*pipeline.Theme, error) {
	return defaultLoader.LoadTheme(name)
}

// ThemeNames lists the built-in themes.
func ThemeNames() []string {
	return defaultLoader.ThemeNames()
}
