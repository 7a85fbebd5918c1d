package assets

// defaultLoader serves the embedded assets for the package-level helpers.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads an embedded preview stylesheet by name.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads an embedded LaTeX skeleton by name.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}
