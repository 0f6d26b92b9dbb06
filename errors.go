package mdinline

import (
	"errors"

	"github.com/alnah/go-mdinline/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown = errors.New("markdown content cannot be empty")
	ErrEmptyHTML     = errors.New("HTML content cannot be empty")

	// Font settings validation errors.
	ErrInvalidFontSize      = errors.New("invalid font size")
	ErrInvalidLetterSpacing = errors.New("invalid letter spacing")
	ErrInvalidLineHeight    = errors.New("invalid line height")

	// Theme and asset errors.
	ErrThemeNotFound    = errors.New("theme not found")
	ErrInvalidTheme     = errors.New("invalid theme")
	ErrInvalidAssetPath = errors.New("invalid asset path")

	// ErrInvalidColor is matched by errors.Is for any theme color rejected
	// during validation.
	ErrInvalidColor = pipeline.ErrInvalidColor
)
