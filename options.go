package md2tex

import (
	"maps"
	"time"

	"github.com/hwdocs/go-md2tex/internal/pipeline"
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	codeStyle        CodeStyle
	headings         pipeline.HeadingOptions
	tableCaption     string
	defaults         map[string]string
	rawKeys          []string
	escapeMetadata   bool
	titleFromHeading bool
	template         string // skeleton content, empty = load from assets
	previewStyle     string // CSS content, empty = load from assets
	highlightStyle   string
	now              func() time.Time
}

// WithCodeStyle selects verbatim or listings for fenced code blocks.
func WithCodeStyle(style CodeStyle) Option {
	return func(c *Converter) {
		c.cfg.codeStyle = style
	}
}

// WithHeadingLabels adds \label{sec:...} after section commands.
func WithHeadingLabels(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.headings.Labels = enabled
	}
}

// WithPageBreakControl keeps headings with their first paragraph and starts
// each top-level section on a new page.
func WithPageBreakControl(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.headings.PageBreaks = enabled
	}
}

// WithTableCaption sets the caption used when a table has no caption marker.
func WithTableCaption(caption string) Option {
	return func(c *Converter) {
		c.cfg.tableCaption = caption
	}
}

// WithDefaults overrides the fallback values for missing metadata keys.
// Values may use date keywords such as "today" or "today:MMMM D, YYYY".
func WithDefaults(defaults map[string]string) Option {
	return func(c *Converter) {
		if c.cfg.defaults == nil {
			c.cfg.defaults = make(map[string]string, len(defaults))
		}
		maps.Copy(c.cfg.defaults, defaults)
	}
}

// WithRawKeys lists metadata keys inserted without LaTeX escaping,
// for values that already hold LaTeX. The logo file name is always raw.
func WithRawKeys(keys ...string) Option {
	return func(c *Converter) {
		c.cfg.rawKeys = append(c.cfg.rawKeys, keys...)
	}
}

// WithMetadataEscaping turns LaTeX escaping of metadata values on or off.
// It is on by default.
func WithMetadataEscaping(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.escapeMetadata = enabled
	}
}

// WithTitleFromHeading uses the first level-1 heading as the title when the
// metadata has none.
func WithTitleFromHeading(enabled bool) Option {
	return func(c *Converter) {
		c.cfg.titleFromHeading = enabled
	}
}

// WithTemplate sets the LaTeX skeleton content.
func WithTemplate(skeleton string) Option {
	return func(c *Converter) {
		c.cfg.template = skeleton
	}
}

// WithAssetLoader loads the template and preview style from loader instead
// of the embedded assets.
func WithAssetLoader(loader AssetLoader) Option {
	return func(c *Converter) {
		c.loader = loader
	}
}

// WithPreviewStyle sets the preview stylesheet content.
func WithPreviewStyle(css string) Option {
	return func(c *Converter) {
		c.cfg.previewStyle = css
	}
}

// WithHighlightStyle sets the chroma style used for preview code blocks.
func WithHighlightStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.highlightStyle = style
	}
}

// WithAssetStore replaces the filesystem used to resolve and copy figures.
func WithAssetStore(store AssetStore) Option {
	return func(c *Converter) {
		c.store = store
	}
}

// WithClock sets the time source for date defaults.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.cfg.now = now
	}
}
