package main

import (
	"errors"
	"os"

	"github.com/alnah/go-mdinline"
	"github.com/alnah/go-mdinline/internal/config"
	"github.com/alnah/go-mdinline/internal/logging"
)

// Exit codes for the mdinline CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, mdinline.ErrEmptyMarkdown) ||
		errors.Is(err, mdinline.ErrEmptyHTML) ||
		errors.Is(err, mdinline.ErrInvalidFontSize) ||
		errors.Is(err, mdinline.ErrInvalidLetterSpacing) ||
		errors.Is(err, mdinline.ErrInvalidLineHeight) ||
		errors.Is(err, mdinline.ErrThemeNotFound) ||
		errors.Is(err, mdinline.ErrInvalidTheme) ||
		errors.Is(err, mdinline.ErrInvalidAssetPath) ||
		errors.Is(err, mdinline.ErrInvalidColor) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidImageBase) ||
		errors.Is(err, ErrStdoutMultiple) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}
