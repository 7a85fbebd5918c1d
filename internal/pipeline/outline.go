package pipeline

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is one entry of the document outline.
type Heading struct {
	Level int
	Text  string
}

// Outline lists the ATX and setext headings of markdown in document order.
// Headings inside fenced code are not reported.
func Outline(markdown string) []Heading {
	source := []byte(markdown)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var headings []Heading
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		headings = append(headings, Heading{Level: h.Level, Text: strings.TrimSpace(inlineText(h, source))})
		return ast.WalkSkipChildren, nil
	})
	return headings
}

// FirstHeading returns the text of the first level-1 heading, or "".
func FirstHeading(markdown string) string {
	for _, h := range Outline(markdown) {
		if h.Level == 1 {
			return h.Text
		}
	}
	return ""
}

func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		default:
			b.WriteString(inlineText(c, source))
		}
	}
	return b.String()
}
