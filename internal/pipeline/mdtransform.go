package pipeline

import (
	"context"
	"regexp"
	"strings"
)

var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)
)

const byteOrderMark = "\uFEFF"

// MarkdownPreprocessor defines the contract for source preparation before
// the stages run.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// SourcePreprocessor normalizes raw content.md bytes.
type SourcePreprocessor struct{}

// PreprocessMarkdown strips a leading byte order mark and normalizes line endings.
// Blank lines are kept as authored since they end tables and lists.
func (p *SourcePreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}

	content = strings.TrimPrefix(content, byteOrderMark)
	content = normalizeLineEndings(content)
	return content
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
