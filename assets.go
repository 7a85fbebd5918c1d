package md2tex

import (
	"errors"

	"github.com/hwdocs/go-md2tex/internal/assets"
)

// Asset name constants for the built-in template and style.
const (
	// DefaultTemplate is the name of the built-in datasheet skeleton.
	DefaultTemplate = assets.DefaultTemplateName

	// DefaultStyle is the name of the built-in preview stylesheet.
	DefaultStyle = assets.DefaultStyleName
)

// AssetLoader defines the contract for loading templates and styles.
// Implementations may load from filesystem, embedded assets, a database, etc.
//
// The library provides NewAssetLoader() for filesystem-based loading with
// fallback to embedded defaults. Implement this interface for custom backends.
type AssetLoader interface {
	// LoadStyle loads a preview stylesheet by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads a LaTeX skeleton by name (without .tex extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)
}

// NewAssetLoader creates an AssetLoader for the given base path.
// If basePath is empty, returns a loader using only embedded assets.
// If basePath is set, custom assets take precedence with fallback to embedded.
//
// The basePath directory should contain:
//   - styles/{name}.css for preview styles
//   - templates/{name}.tex for LaTeX skeletons
//
// Returns ErrInvalidAssetPath if basePath is set but not a valid, readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// ReadTemplateFile reads a LaTeX skeleton from an explicit path.
func ReadTemplateFile(path string) (string, error) {
	content, err := assets.ReadTemplateFile(path)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

// assetLoaderAdapter wraps internal AssetResolver to return public errors.
type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	content, err := a.resolver.LoadStyle(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

func (a *assetLoaderAdapter) LoadTemplate(name string) (string, error) {
	content, err := a.resolver.LoadTemplate(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

// convertAssetError maps internal asset errors to public errors.
func convertAssetError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, assets.ErrStyleNotFound):
		return wrapError(ErrStyleNotFound, err)
	case errors.Is(err, assets.ErrTemplateNotFound):
		return wrapError(ErrTemplateNotFound, err)
	case errors.Is(err, assets.ErrInvalidBasePath):
		return wrapError(ErrInvalidAssetPath, err)
	case errors.Is(err, assets.ErrPathTraversal):
		return wrapError(ErrInvalidAssetPath, err)
	case errors.Is(err, assets.ErrInvalidAssetName):
		return wrapError(ErrTemplateNotFound, err)
	default:
		return err
	}
}

// wrapError creates a new error that wraps the original with a public sentinel.
// The resulting error preserves the original message via Error() and supports
// errors.Is() matching against the public sentinel via Unwrap().
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

// Unwrap returns the public sentinel for errors.Is() matching.
func (e *wrappedAssetError) Unwrap() error {
	return e.sentinel
}
