package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// Options configures one body conversion.
type Options struct {
	CodeStyle    CodeStyle
	Headings     HeadingOptions
	TableCaption string
	// Images resolves figure references. Nil leaves every image unresolved.
	Images *ImageResolver
}

// Report collects non-fatal problems found while converting.
type Report struct {
	mu       sync.Mutex
	warnings []string
}

func (r *Report) warnf(format string, args ...any) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Warnings returns a copy of the collected warnings.
func (r *Report) Warnings() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}

// Stage is one named rewrite of the document buffer.
type Stage struct {
	Name  string
	Apply func(Document) Document
}

// Stages returns the stage list for a document in execution order.
func Stages(opts Options, lang string, report *Report) []Stage {
	style := opts.CodeStyle
	if style == "" {
		style = CodeVerbatim
	}
	return []Stage{
		{Name: "protect", Apply: protectStage(style)},
		{Name: "headers", Apply: headerStage(opts.Headings)},
		{Name: "images", Apply: imageStage(opts.Images, lang, report)},
		{Name: "tables", Apply: tableStage(opts.TableCaption)},
		{Name: "lists", Apply: listStage},
		{Name: "inline", Apply: inlineStage},
		{Name: "escape", Apply: escapeStage},
	}
}

// Result is the converted LaTeX body and the warnings raised on the way.
type Result struct {
	Body     string
	Warnings []string
}

// ConvertBody runs every stage over markdown for the given language.
// Cancellation is checked between stages; a stage either completes or the
// conversion fails as a whole.
func ConvertBody(ctx context.Context, markdown, lang string, opts Options) (*Result, error) {
	pre := &SourcePreprocessor{}
	markdown = pre.PreprocessMarkdown(ctx, markdown)

	report := &Report{}
	doc := NewDocument(markdown)
	for _, stage := range Stages(opts, lang, report) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		doc = stage.Apply(doc)
	}

	return &Result{Body: doc.String(), Warnings: report.Warnings()}, nil
}
