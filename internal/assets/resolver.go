package assets

import (
	"errors"

	"github.com/alnah/go-mdinline/internal/pipeline"
)

// AssetResolver combines custom and embedded loaders with fallback logic.
// When a custom loader is configured, it tries custom first, then falls back
// to embedded if the theme is not found in the custom location.
type AssetResolver struct {
	custom   AssetLoader // nil if no custom path configured
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver.
// If customBasePath is empty, only embedded assets are used.
// If customBasePath is set, custom assets take precedence with fallback to embedded.
// Returns error if customBasePath is set but invalid.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadTheme loads a theme, trying the custom loader first if available.
func (r *AssetResolver) LoadTheme(name string) (*pipeline.Theme, error) {
	// If no custom loader, use embedded directly
	if r.custom == nil {
		return r.embedded.LoadTheme(name)
	}

	theme, err := r.custom.LoadTheme(name)
	if err == nil {
		return theme, nil
	}

	// Only fall back for "not found" errors: a broken custom theme must
	// surface instead of being silently replaced by the built-in one.
	if !errors.Is(err, ErrThemeNotFound) {
		return nil, err
	}

	return r.embedded.LoadTheme(name)
}

// HasCustomLoader returns true if a custom asset loader is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
