package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hwdocs/go-md2tex/internal/fileutil"
	"github.com/hwdocs/go-md2tex/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// DefaultName is the config name searched when --config is not given.
const DefaultName = "md2tex"

// appDir is the directory under the user config dir holding named configs.
const appDir = "go-md2tex"

// Field length limits.
const (
	MaxPathLength     = 4096
	MaxNameLength     = 100 // template and style names
	MaxCaptionLength  = 200
	MaxDefaultLength  = 500 // value of a metadata default
	MaxLanguageLength = 16  // "en", "es", "pt-BR"
	MaxLanguages      = 64
	MaxPasses         = 5
)

// Config holds all configuration for datasheet generation.
type Config struct {
	Input      InputConfig       `yaml:"input"`
	Output     OutputConfig      `yaml:"output"`
	Images     ImagesConfig      `yaml:"images"`
	Assets     AssetsConfig      `yaml:"assets"`
	Template   TemplateConfig    `yaml:"template"`
	LaTeX      LaTeXConfig       `yaml:"latex"`
	Conversion ConversionConfig  `yaml:"conversion"`
	Preview    PreviewConfig     `yaml:"preview"`
	Defaults   map[string]string `yaml:"defaults"`  // metadata fallbacks, override built-ins
	Languages  []string          `yaml:"languages"` // empty = every language directory found
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // base dir holding <lang>/content.md (empty = cwd)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = <base>/docs
}

// ImagesConfig defines where figures are found.
type ImagesConfig struct {
	Dir string `yaml:"dir"` // empty = <base>/images
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // holds templates/ and styles/ overrides; empty = embedded
}

// TemplateConfig selects the LaTeX skeleton.
type TemplateConfig struct {
	Path string `yaml:"path"` // explicit file, wins over name
	Name string `yaml:"name"` // asset name (default: datasheet)
}

// LaTeXConfig defines PDF compilation options.
type LaTeXConfig struct {
	Compile bool   `yaml:"compile"`
	Engine  string `yaml:"engine"`  // "pdflatex", "xelatex", "lualatex" (default: pdflatex)
	Passes  int    `yaml:"passes"`  // 1-5 (default: 3)
	Timeout string `yaml:"timeout"` // Go duration per document (default: 2m)
}

// ConversionConfig tunes the Markdown to LaTeX stages.
type ConversionConfig struct {
	CodeStyle        string   `yaml:"codeStyle"` // "verbatim" or "listings"
	HeadingLabels    bool     `yaml:"headingLabels"`
	PageBreakControl bool     `yaml:"pageBreakControl"`
	TableCaption     string   `yaml:"tableCaption"`
	EscapeMetadata   *bool    `yaml:"escapeMetadata"`   // nil = true
	TitleFromHeading bool     `yaml:"titleFromHeading"` // first H1 when metadata has no title
	RawKeys          []string `yaml:"rawKeys"`          // metadata keys that already hold LaTeX
}

// PreviewConfig defines the HTML review copy.
type PreviewConfig struct {
	Enabled bool   `yaml:"enabled"`
	Style   string `yaml:"style"` // asset name (default: preview)
}

// EscapesMetadata reports whether metadata values are LaTeX-escaped.
func (c ConversionConfig) EscapesMetadata() bool {
	return c.EscapeMetadata == nil || *c.EscapeMetadata
}

// TimeoutDuration parses Timeout. An empty value returns zero.
func (c LaTeXConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: latex.timeout: %v", ErrInvalidValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: latex.timeout: must be positive, got %s", ErrInvalidValue, c.Timeout)
	}
	return d, nil
}

// Validate checks field lengths and enumerations.
// Called automatically by LoadConfig, but available for callers
// who construct Config manually.
func (c *Config) Validate() error {
	paths := []struct{ field, value string }{
		{"input.defaultDir", c.Input.DefaultDir},
		{"output.defaultDir", c.Output.DefaultDir},
		{"images.dir", c.Images.Dir},
		{"assets.basePath", c.Assets.BasePath},
		{"template.path", c.Template.Path},
	}
	for _, p := range paths {
		if err := validateFieldLength(p.field, p.value, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("template.name", c.Template.Name, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("preview.style", c.Preview.Style, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("conversion.tableCaption", c.Conversion.TableCaption, MaxCaptionLength); err != nil {
		return err
	}

	if err := validateEnum("latex.engine", c.LaTeX.Engine, "pdflatex", "xelatex", "lualatex"); err != nil {
		return err
	}
	if err := validateEnum("conversion.codeStyle", c.Conversion.CodeStyle, "verbatim", "listings"); err != nil {
		return err
	}
	if c.LaTeX.Passes != 0 && (c.LaTeX.Passes < 1 || c.LaTeX.Passes > MaxPasses) {
		return fmt.Errorf("%w: latex.passes: must be between 1 and %d, got %d", ErrInvalidValue, MaxPasses, c.LaTeX.Passes)
	}
	if _, err := c.LaTeX.TimeoutDuration(); err != nil {
		return err
	}

	for key, value := range c.Defaults {
		if err := validateFieldLength("defaults."+key, value, MaxDefaultLength); err != nil {
			return err
		}
	}

	if len(c.Languages) > MaxLanguages {
		return fmt.Errorf("%w: languages: %d entries (max %d)", ErrInvalidValue, len(c.Languages), MaxLanguages)
	}
	for i, lang := range c.Languages {
		field := fmt.Sprintf("languages[%d]", i)
		if lang == "" || strings.ContainsAny(lang, `/\.`) {
			return fmt.Errorf("%w: %s: %q is not a directory name", ErrInvalidValue, field, lang)
		}
		if err := validateFieldLength(field, lang, MaxLanguageLength); err != nil {
			return err
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateEnum accepts the empty string (meaning default) or one of allowed,
// compared case-insensitively.
func validateEnum(fieldName, value string, allowed ...string) error {
	if value == "" {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s: %q (must be one of %s)", ErrInvalidValue, fieldName, value, strings.Join(allowed, ", "))
}

// DefaultConfig returns a neutral configuration: no compilation, no
// preview, built-in template and defaults.
func DefaultConfig() *Config {
	return &Config{
		LaTeX:    LaTeXConfig{Compile: false},
		Preview:  PreviewConfig{Enabled: false},
		Defaults: map[string]string{},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if cfg.Defaults == nil {
		cfg.Defaults = map[string]string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads the md2tex config from the standard locations when one
// exists. No config file is not an error: the neutral config is returned.
func LoadDefault() (*Config, error) {
	cfg, err := LoadConfig(DefaultName)
	if errors.Is(err, ErrConfigNotFound) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// SearchPaths lists where a config name is looked up, in order:
// current directory then ~/.config/go-md2tex/, .yaml before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, appDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing path from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
