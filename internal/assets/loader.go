package assets

import "github.com/alnah/go-mdinline/internal/pipeline"

// DefaultThemeName is the name of the built-in theme.
const DefaultThemeName = "default"

// AssetLoader defines the contract for loading themes.
// Implementations may load from embedded assets, filesystem, or anywhere
// else a YAML palette can come from.
type AssetLoader interface {
	// LoadTheme loads a theme by name (without .yaml extension).
	// The returned theme has defaults merged in and has been validated.
	// Returns ErrThemeNotFound if the theme doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	// Returns ErrInvalidTheme if the file is malformed.
	LoadTheme(name string) (*pipeline.Theme, error)
}
