package assets

import (
	"fmt"
	"strings"

	"github.com/alnah/go-mdinline/internal/pipeline"
	"github.com/alnah/go-mdinline/internal/yamlutil"
)

// ValidateAssetName checks that an asset name is safe for use as a filename.
// Returns ErrInvalidAssetName if the name is empty or contains path separators,
// dots (which could allow extension manipulation), or traversal characters.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

// parseTheme decodes a YAML palette, fills missing fields from the default
// theme and validates every color.
func parseTheme(name string, data []byte) (*pipeline.Theme, error) {
	var theme pipeline.Theme
	if err := yamlutil.UnmarshalStrict(data, &theme); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTheme, name, err)
	}
	if strings.TrimSpace(theme.Name) == "" {
		theme.Name = name
	}
	theme.MergeDefaults()
	if err := theme.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidTheme, name, err)
	}
	return &theme, nil
}
