package assets

// AssetLoader defines the contract for loading templates and styles by name.
type AssetLoader interface {
	// LoadStyle loads a preview stylesheet by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads a LaTeX skeleton by name (without .tex extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)
}

// DefaultTemplateName is the built-in datasheet skeleton.
const DefaultTemplateName = "datasheet"

// DefaultStyleName is the built-in preview stylesheet.
const DefaultStyleName = "preview"
