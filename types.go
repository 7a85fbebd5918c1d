package md2tex

import (
	"fmt"
	"strings"

	"github.com/hwdocs/go-md2tex/internal/metadata"
	"github.com/hwdocs/go-md2tex/internal/pipeline"
)

// Metadata is the ordered key/value data of one language variant, read from
// metadata.yaml. Nested mappings are reachable with dotted keys such as
// "hardware_license.type".
type Metadata = metadata.Map

// ParseMetadata decodes YAML metadata. Empty input yields empty Metadata.
func ParseMetadata(data []byte) (*Metadata, error) {
	return metadata.Parse(data)
}

// LoadMetadata reads and decodes a metadata.yaml file.
func LoadMetadata(path string) (*Metadata, error) {
	return metadata.Load(path)
}

// MetadataFromMap builds Metadata from a Go map, keys in sorted order.
func MetadataFromMap(values map[string]any) *Metadata {
	return metadata.FromMap(values)
}

// CodeStyle selects the LaTeX environment for fenced code blocks.
type CodeStyle = pipeline.CodeStyle

// Code block styles.
const (
	CodeVerbatim = pipeline.CodeVerbatim
	CodeListings = pipeline.CodeListings
)

// Input contains the data for one language variant.
type Input struct {
	Markdown string    // content.md (may be empty)
	Metadata *Metadata // nil means no metadata; defaults apply

	// Language is the directory code ("en", "es"). It prefixes copied
	// image names and selects <out>/<lang>/ images.
	Language string

	// SourceDir holds resources/ with the shared images.
	// OutputDir is where the .tex is written and the engine runs.
	// Figures are left unresolved when OutputDir is empty.
	SourceDir string
	OutputDir string

	// Logo is the file name of a logo already copied into OutputDir.
	// It sets the "logo" key unless the metadata has one.
	Logo string

	// Preview also renders the Markdown as a standalone HTML page.
	Preview bool
}

// Validate checks the fields that end up in file names.
func (in *Input) Validate() error {
	if in.Language == "" {
		return nil
	}
	if strings.ContainsAny(in.Language, `/\.`) || strings.TrimSpace(in.Language) != in.Language {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, in.Language)
	}
	return nil
}

// ConvertResult contains the output of a conversion.
type ConvertResult struct {
	LaTeX    string   // bound document
	Body     string   // converted Markdown only
	HTML     string   // preview page, empty unless Input.Preview
	Warnings []string // missing figures, failed copies
}

// AssetStore is the filesystem view used to find and copy figures.
type AssetStore = pipeline.AssetStore
