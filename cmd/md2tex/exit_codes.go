package main

import (
	"errors"
	"os"

	md2tex "github.com/hwdocs/go-md2tex"
	"github.com/hwdocs/go-md2tex/internal/config"
	"github.com/hwdocs/go-md2tex/internal/latex"
)

// Exit codes for md2tex CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // All datasheets generated
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, template or metadata
	ExitIO      = 3 // File not found, permission denied
	ExitCompile = 4 // LaTeX engine errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Compile errors (exit 4)
	if errors.Is(err, latex.ErrEngineNotFound) ||
		errors.Is(err, latex.ErrCompileFailed) ||
		errors.Is(err, latex.ErrCompileTimeout) ||
		errors.Is(err, latex.ErrPDFMissing) ||
		errors.Is(err, latex.ErrPDFTooSmall) {
		return ExitCompile
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, md2tex.ErrEmptyTemplate) ||
		errors.Is(err, md2tex.ErrTemplateStructure) ||
		errors.Is(err, md2tex.ErrTemplateNotFound) ||
		errors.Is(err, md2tex.ErrStyleNotFound) ||
		errors.Is(err, md2tex.ErrInvalidAssetPath) ||
		errors.Is(err, md2tex.ErrInvalidLanguage) ||
		errors.Is(err, md2tex.ErrMetadataParse) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrTooManyArgs) ||
		errors.Is(err, ErrUnknownLanguage) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, md2tex.ErrMetadataNotFound) ||
		errors.Is(err, latex.ErrTeXNotFound) ||
		errors.Is(err, ErrReadContent) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoLanguages) {
		return ExitIO
	}

	return ExitGeneral
}
