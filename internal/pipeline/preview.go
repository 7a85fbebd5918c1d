package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates the preview could not be rendered.
var ErrHTMLConversion = errors.New("HTML preview conversion failed")

// previewTemplate wraps Goldmark's fragment output in a complete HTML5 document.
const previewTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// DefaultHighlightStyle is the chroma style used for preview code blocks.
const DefaultHighlightStyle = "github"

// PreviewRenderer renders content.md as a standalone HTML page, used to
// review a language variant before typesetting.
type PreviewRenderer struct {
	md goldmark.Markdown
}

// NewPreviewRenderer creates a renderer with GFM tables and chroma
// highlighting. Colors are inlined so the page needs no extra stylesheet.
func NewPreviewRenderer(style string) *PreviewRenderer {
	if style == "" {
		style = DefaultHighlightStyle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
		),
	)
	return &PreviewRenderer{md: md}
}

// Render converts Markdown into an HTML document titled title.
// Goldmark has no context support, so conversion runs in a goroutine and
// the caller stops waiting on cancellation.
func (p *PreviewRenderer) Render(ctx context.Context, markdown, title string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := p.md.Convert([]byte(markdown), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: fmt.Sprintf(previewTemplate, html.EscapeString(title), buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// InjectCSS inserts a <style> block before </head>, after <body>, or at the
// start of the document, whichever is found first.
func InjectCSS(htmlContent, css string) string {
	if css == "" {
		return htmlContent
	}

	style := "<style>" + sanitizeCSS(css) + "</style>"
	lower := strings.ToLower(htmlContent)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return htmlContent[:idx] + style + htmlContent[idx:]
	}
	if idx := strings.Index(lower, "<body"); idx != -1 {
		if end := strings.Index(htmlContent[idx:], ">"); end != -1 {
			pos := idx + end + 1
			return htmlContent[:pos] + style + htmlContent[pos:]
		}
	}
	return style + htmlContent
}

// sanitizeCSS escapes "</" so the stylesheet cannot close its <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
