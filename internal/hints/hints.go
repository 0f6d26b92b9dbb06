// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
)

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains go-mdinline/) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, "go-mdinline") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForThemeNotFound returns hints for theme not found errors.
func ForThemeNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForAssetPath returns hints for an unusable --asset-path directory.
func ForAssetPath() string {
	return format("the directory must exist and hold themes/<name>.yaml")
}

// ForLineHeight returns hints for rejected line-height values.
func ForLineHeight() string {
	return format("use a unitless ratio like 1.6 or a CSS length like 28px")
}

// ForImageBaseURL returns hints for rejected image base URLs.
func ForImageBaseURL() string {
	return format("use an absolute http(s) URL, e.g. https://cdn.example.com/post/")
}

// ForNoInput returns hints when no Markdown input was given.
func ForNoInput() string {
	return formatHints([]string{"pass a .md file or a directory", "use - to read stdin"})
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
