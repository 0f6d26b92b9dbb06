package mdinline

import (
	"errors"

	"github.com/alnah/go-mdinline/internal/assets"
	"github.com/alnah/go-mdinline/internal/pipeline"
)

// DefaultTheme is the name of the built-in theme.
const DefaultTheme = assets.DefaultThemeName

// Theme is a color palette plus a chroma code style. Every inline style the
// converter emits draws its colors from the active theme.
type Theme = pipeline.Theme

// AssetLoader defines the contract for loading themes.
// Implementations may load from filesystem, embedded assets, a database, etc.
//
// The library provides NewAssetLoader() for filesystem-based loading with
// fallback to embedded defaults. Implement this interface for custom backends.
type AssetLoader interface {
	// LoadTheme loads a theme by name (without extension).
	// Returns ErrThemeNotFound if the theme doesn't exist.
	LoadTheme(name string) (*Theme, error)
}

// NewAssetLoader creates an AssetLoader for the given base path.
// If basePath is empty, returns a loader using only embedded themes.
// If basePath is set, basePath/themes/{name}.yaml takes precedence with
// fallback to embedded.
//
// Returns ErrInvalidAssetPath if basePath is set but not a valid, readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// ThemeNames lists the built-in themes.
func ThemeNames() []string {
	return assets.ThemeNames()
}

// assetLoaderAdapter wraps internal AssetResolver to return public errors.
type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *assetLoaderAdapter) LoadTheme(name string) (*Theme, error) {
	theme, err := a.resolver.LoadTheme(name)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return theme, nil
}

// convertAssetError maps internal asset errors to public errors.
func convertAssetError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, assets.ErrThemeNotFound):
		return wrapError(ErrThemeNotFound, err)
	case errors.Is(err, assets.ErrInvalidTheme):
		return wrapError(ErrInvalidTheme, err)
	case errors.Is(err, assets.ErrInvalidBasePath):
		return wrapError(ErrInvalidAssetPath, err)
	case errors.Is(err, assets.ErrPathTraversal):
		return wrapError(ErrInvalidAssetPath, err)
	case errors.Is(err, assets.ErrInvalidAssetName):
		return wrapError(ErrThemeNotFound, err) // Invalid name means not found
	default:
		return err
	}
}

// wrapError creates a new error that wraps the original with a public sentinel.
// The resulting error preserves the original message via Error() and supports
// errors.Is() matching against the public sentinel.
func wrapError(sentinel, original error) error {
	return &wrappedAssetError{sentinel: sentinel, original: original}
}

type wrappedAssetError struct {
	sentinel error
	original error
}

func (e *wrappedAssetError) Error() string {
	return e.original.Error()
}

// Unwrap exposes the public sentinel first, then the cause, so that a
// theme rejected for its colors also matches ErrInvalidColor.
func (e *wrappedAssetError) Unwrap() []error {
	return []error{e.sentinel, e.original}
}
