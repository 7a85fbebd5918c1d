package assets

import (
	"embed"
	"fmt"
)

//go:embed styles/*.css
var styles embed.FS

//go:embed templates/*.tex
var templates embed.FS

// EmbeddedLoader loads assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads an embedded stylesheet by name.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

// LoadTemplate loads an embedded LaTeX skeleton by name.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	content, err := templates.ReadFile("templates/" + name + ".tex")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return string(content), nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
