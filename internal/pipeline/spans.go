package pipeline

import "strings"

// SpanKind classifies a piece of the document buffer.
type SpanKind int

const (
	// Prose is author text. It is the only kind the escaper rewrites.
	Prose SpanKind = iota
	// Markup is LaTeX emitted by a stage or authored in the source.
	Markup
	// Code is verbatim code, emitted byte for byte.
	Code
)

// String returns the kind name.
func (k SpanKind) String() string {
	switch k {
	case Prose:
		return "prose"
	case Markup:
		return "markup"
	case Code:
		return "code"
	default:
		return "unknown"
	}
}

// Span is a run of text with a single kind.
// Arg marks prose placed inside a command argument (section titles,
// captions, link text), where \verb is not allowed.
type Span struct {
	Kind SpanKind
	Text string
	Arg  bool
}

// Document is the buffer threaded through the pipeline stages.
type Document []Span

// NewDocument wraps raw Markdown as a single prose span.
func NewDocument(markdown string) Document {
	if markdown == "" {
		return Document{}
	}
	return Document{{Kind: Prose, Text: markdown}}
}

// String concatenates all span texts.
func (d Document) String() string {
	var b strings.Builder
	for _, s := range d {
		b.WriteString(s.Text)
	}
	return b.String()
}

// compact drops empty spans and merges neighbours of the same kind.
func (d Document) compact() Document {
	out := make(Document, 0, len(d))
	for _, s := range d {
		if s.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Kind == s.Kind && out[n-1].Arg == s.Arg {
			out[n-1].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}

func prose(text string) Span        { return Span{Kind: Prose, Text: text} }
func argProse(text string) Span     { return Span{Kind: Prose, Text: text, Arg: true} }
func markup(text string) Span       { return Span{Kind: Markup, Text: text} }
func code(text string) Span         { return Span{Kind: Code, Text: text} }
func withArg(s Span, arg bool) Span { s.Arg = arg; return s }

// line is one source line as the spans that make it up, newline excluded.
type line []Span

// text concatenates the span texts of the line.
func (l line) text() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.Text)
	}
	return b.String()
}

// isProse reports whether every span is body prose.
func (l line) isProse() bool {
	for _, s := range l {
		if s.Kind != Prose || s.Arg {
			return false
		}
	}
	return true
}

// isBlank reports whether the line holds only whitespace prose.
func (l line) isBlank() bool {
	return l.isProse() && strings.TrimSpace(l.text()) == ""
}

// leadingProse returns the first span when it is body prose.
func (l line) leadingProse() (string, bool) {
	if len(l) == 0 || l[0].Kind != Prose || l[0].Arg {
		return "", false
	}
	return l[0].Text, true
}

// splitLines cuts the document at every newline, including newlines inside
// markup and code spans. joinLines(splitLines(d)).String() == d.String().
func splitLines(d Document) []line {
	lines := []line{{}}
	for _, s := range d {
		parts := strings.Split(s.Text, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, line{})
			}
			if part != "" {
				cur := len(lines) - 1
				lines[cur] = append(lines[cur], Span{Kind: s.Kind, Text: part, Arg: s.Arg})
			}
		}
	}
	return lines
}

// joinLines reassembles lines with newline separators.
func joinLines(lines []line) Document {
	out := make(Document, 0, len(lines)*2)
	for i, l := range lines {
		if i > 0 {
			out = append(out, prose("\n"))
		}
		out = append(out, l...)
	}
	return out.compact()
}

// mapProse applies fn to every prose span and splices in the result.
// When includeArgs is false, argument prose is skipped.
func mapProse(d Document, includeArgs bool, fn func(Span) []Span) Document {
	out := make(Document, 0, len(d))
	for _, s := range d {
		if s.Kind != Prose || (s.Arg && !includeArgs) {
			out = append(out, s)
			continue
		}
		out = append(out, fn(s)...)
	}
	return out.compact()
}
