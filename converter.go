package md2tex

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hwdocs/go-md2tex/internal/assets"
	"github.com/hwdocs/go-md2tex/internal/binder"
	"github.com/hwdocs/go-md2tex/internal/dateutil"
	"github.com/hwdocs/go-md2tex/internal/metadata"
	"github.com/hwdocs/go-md2tex/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.SourcePreprocessor)(nil)
	_ pipeline.AssetStore           = assets.DirStore{}
	_ AssetLoader                   = (*assetLoaderAdapter)(nil)
)

// Metadata keys the converter fills in.
const (
	keyTitle = "title"
	keyDate  = "date"
	keyLogo  = "logo"
)

// Converter turns one language variant into a LaTeX document.
// Create with NewConverter(). A Converter is safe for concurrent use.
type Converter struct {
	cfg        converterConfig
	loader     AssetLoader
	store      AssetStore
	skeleton   string
	previewCSS string
	preview    *pipeline.PreviewRenderer
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithCodeStyle, WithTemplate).
// Returns error if the template cannot be loaded or has unbalanced
// conditionals.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			codeStyle:      CodeVerbatim,
			escapeMetadata: true,
			rawKeys:        []string{keyLogo},
			now:            time.Now,
		},
		store: assets.DirStore{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.loader == nil {
		loader, err := NewAssetLoader("")
		if err != nil {
			return nil, err
		}
		c.loader = loader
	}

	if err := c.resolveTemplate(); err != nil {
		return nil, err
	}
	if err := c.resolvePreviewStyle(); err != nil {
		return nil, err
	}

	// Invalid date keywords in defaults fail here rather than per document.
	if _, err := binder.Defaults(c.cfg.now(), c.cfg.defaults); err != nil {
		return nil, fmt.Errorf("resolving defaults: %w", err)
	}

	c.preview = pipeline.NewPreviewRenderer(c.cfg.highlightStyle)
	return c, nil
}

// Convert runs the pipeline for one language variant and binds the result
// into the template. The context is checked between stages.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := c.cfg.now()
	meta, err := c.prepareMetadata(input, now)
	if err != nil {
		return nil, err
	}

	resolver := c.imageResolver(input)

	body, err := pipeline.ConvertBody(ctx, input.Markdown, input.Language, pipeline.Options{
		CodeStyle:    c.cfg.codeStyle,
		Headings:     c.cfg.headings,
		TableCaption: c.cfg.tableCaption,
		Images:       resolver,
	})
	if err != nil {
		return nil, fmt.Errorf("converting body: %w", err)
	}

	defaults, err := binder.Defaults(now, c.cfg.defaults)
	if err != nil {
		return nil, fmt.Errorf("resolving defaults: %w", err)
	}
	bindOpts := binder.Options{Defaults: defaults, RawKeys: c.cfg.rawKeys}
	if c.cfg.escapeMetadata {
		bindOpts.Escape = pipeline.Escape
	}

	latex, err := binder.Bind(c.skeleton, meta.With(binder.BodyKey, body.Body), bindOpts)
	if err != nil {
		return nil, fmt.Errorf("binding template: %w", err)
	}

	res := &ConvertResult{
		LaTeX:    latex,
		Body:     body.Body,
		Warnings: body.Warnings,
	}

	if input.Preview {
		title := defaults[keyTitle]
		if v, ok := meta.Get(keyTitle); ok {
			title = metadata.Format(v)
		}
		res.HTML, err = c.renderPreview(ctx, input, resolver, title)
		if err != nil {
			return nil, err
		}
	}

	return res, nil
}

// prepareMetadata resolves date keywords and fills the title and logo keys.
// The caller's Metadata is not modified.
func (c *Converter) prepareMetadata(input Input, now time.Time) (*Metadata, error) {
	meta := input.Metadata
	if meta == nil {
		meta = metadata.New()
	}

	if v, ok := meta.Get(keyDate); ok {
		if s, isString := v.(string); isString {
			resolved, err := dateutil.Resolve(s, now)
			if err != nil {
				return nil, fmt.Errorf("metadata date: %w", err)
			}
			meta = meta.With(keyDate, resolved)
		}
	}

	if c.cfg.titleFromHeading {
		if _, ok := meta.Get(keyTitle); !ok {
			if h := pipeline.FirstHeading(input.Markdown); h != "" {
				meta = meta.With(keyTitle, h)
			}
		}
	}

	if input.Logo != "" {
		if _, ok := meta.Get(keyLogo); !ok {
			meta = meta.With(keyLogo, input.Logo)
		}
	}

	return meta, nil
}

func (c *Converter) imageResolver(input Input) *pipeline.ImageResolver {
	if input.OutputDir == "" || c.store == nil {
		return nil
	}
	return &pipeline.ImageResolver{
		Store:     c.store,
		OutputDir: input.OutputDir,
		SourceDir: input.SourceDir,
	}
}

func (c *Converter) renderPreview(ctx context.Context, input Input, resolver *pipeline.ImageResolver, title string) (string, error) {
	page, err := c.preview.Render(ctx, input.Markdown, title)
	if err != nil {
		return "", fmt.Errorf("rendering preview: %w", err)
	}
	page, err = pipeline.RewriteImageSources(page, resolver, input.Language)
	if err != nil {
		return "", fmt.Errorf("rewriting preview images: %w", err)
	}
	return pipeline.InjectCSS(page, c.previewCSS), nil
}

// resolveTemplate loads the default skeleton unless one was given, then
// checks its conditional structure once for all documents.
func (c *Converter) resolveTemplate() error {
	if c.cfg.template == "" {
		skeleton, err := c.loader.LoadTemplate(DefaultTemplate)
		if err != nil {
			return fmt.Errorf("loading template: %w", err)
		}
		c.cfg.template = skeleton
	}
	if strings.TrimSpace(c.cfg.template) == "" {
		return ErrEmptyTemplate
	}
	if err := binder.Validate(c.cfg.template); err != nil {
		return err
	}
	c.skeleton = c.cfg.template
	return nil
}

func (c *Converter) resolvePreviewStyle() error {
	if c.cfg.previewStyle != "" {
		c.previewCSS = c.cfg.previewStyle
		return nil
	}
	css, err := c.loader.LoadStyle(DefaultStyle)
	if err != nil {
		return fmt.Errorf("loading preview style: %w", err)
	}
	c.previewCSS = css
	return nil
}

// Placeholders lists the placeholder keys used by the converter's template.
func (c *Converter) Placeholders() []string {
	return binder.Placeholders(c.skeleton)
}
