// Package assets provides the color themes used to style generated HTML.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in themes)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// EmbeddedLoader provides the built-in themes (default, ocean, ink)
// embedded at compile time.
//
// FilesystemLoader allows users to provide custom themes from a directory,
// with path traversal protection and symlink resolution.
//
// AssetResolver is the loader used by the converter. It tries the custom
// FilesystemLoader first, falling back to EmbeddedLoader if the theme is
// not found. A custom directory can therefore override one built-in theme
// and still use the others.
//
// # Directory Structure
//
//	{basePath}/
//	└── themes/
//	    └── {name}.yaml          # Theme palette (e.g., brand.yaml)
//
// Every palette field is optional; missing fields take the default theme's
// value. Unknown fields are rejected.
//
// # Security
//
// Theme names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
// Colors are validated so a theme cannot break out of a style attribute.
package assets
