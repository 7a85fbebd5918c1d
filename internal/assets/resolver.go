package assets

import (
	"errors"
)

// AssetResolver combines custom and embedded loaders. When a custom loader
// is configured it is tried first, and the embedded assets serve any name
// the project does not override.
type AssetResolver struct {
	custom   AssetLoader // nil if no custom path configured
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver.
// If customBasePath is empty, only embedded assets are used.
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

// LoadStyle loads a stylesheet, custom first.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.loadWithFallback(func(loader AssetLoader) (string, error) {
		return loader.LoadStyle(name)
	})
}

// LoadTemplate loads a LaTeX skeleton, custom first.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.loadWithFallback(func(loader AssetLoader) (string, error) {
		return loader.LoadTemplate(name)
	})
}

// loadWithFallback falls back to embedded assets on not-found errors only;
// validation and I/O errors from the custom loader are returned as is.
func (r *AssetResolver) loadWithFallback(loadFn func(AssetLoader) (string, error)) (string, error) {
	if r.custom == nil {
		return loadFn(r.embedded)
	}

	content, err := loadFn(r.custom)
	if err == nil {
		return content, nil
	}
	if !isNotFoundError(err) {
		return "", err
	}
	return loadFn(r.embedded)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) || errors.Is(err, ErrTemplateNotFound)
}

// HasCustomLoader returns true if a custom asset loader is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
