package main

import (
	"errors"
	"os"

	"github.com/alnah/go-docmerge"
	"github.com/alnah/go-docmerge/internal/analyze"
	"github.com/alnah/go-docmerge/internal/config"
	"github.com/alnah/go-docmerge/internal/tabular"
)

// Exit codes for the docmerge CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Successful run
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or validation
	ExitIO       = 3 // Unreadable input, merge or workspace failure
	ExitRenderer = 4 // LibreOffice missing or failing
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Renderer errors (exit 4)
	if errors.Is(err, docmerge.ErrConversion) {
		return ExitRenderer
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, docmerge.ErrDataSource) ||
		errors.Is(err, docmerge.ErrTemplateRead) ||
		errors.Is(err, docmerge.ErrOutputDir) ||
		errors.Is(err, docmerge.ErrRender) ||
		errors.Is(err, docmerge.ErrMerge) ||
		errors.Is(err, docmerge.ErrWorkspace) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrFieldRange) ||
		errors.Is(err, tabular.ErrInvalidDelimiter) ||
		errors.Is(err, analyze.ErrTemplateType) ||
		errors.Is(err, docmerge.ErrTemplateType) ||
		errors.Is(err, docmerge.ErrEmptyMapping) ||
		errors.Is(err, docmerge.ErrInvalidMapping) ||
		errors.Is(err, docmerge.ErrInvalidChunkSize) ||
		errors.Is(err, docmerge.ErrMissingOutput) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidTimeout) {
		return ExitUsage
	}

	// Remaining input errors, e.g. no records (exit 3)
	if errors.Is(err, docmerge.ErrInput) {
		return ExitIO
	}

	return ExitGeneral
}
