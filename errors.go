package md2tex

import (
	"errors"

	"github.com/hwdocs/go-md2tex/internal/binder"
	"github.com/hwdocs/go-md2tex/internal/metadata"
)

// Sentinel errors for library operations.
var (
	ErrEmptyTemplate    = errors.New("template cannot be empty")
	ErrInvalidLanguage  = errors.New("invalid language code")
	ErrInvalidAssetPath = errors.New("invalid asset path")
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateStructure reports unbalanced or too deeply nested
	// conditionals in a template.
	ErrTemplateStructure = binder.ErrTemplateStructure

	// Metadata loading errors.
	ErrMetadataNotFound = metadata.ErrMetadataNotFound
	ErrMetadataParse    = metadata.ErrMetadataParse
)
