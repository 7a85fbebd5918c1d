package pipeline

import (
	"strings"
	"unicode"
)

// headingLevels maps a Markdown prefix onto its sectioning command.
// Longest prefix first so "## " is never read as "# ".
var headingLevels = []struct {
	prefix  string
	command string
	label   string
}{
	{"#### ", `\paragraph`, ""},
	{"### ", `\subsubsection`, "subsubsec:"},
	{"## ", `\subsection`, "subsec:"},
	{"# ", `\section`, "sec:"},
}

// HeadingOptions controls the extras emitted around sectioning commands.
type HeadingOptions struct {
	// Labels adds \label{sec:slug} after sections down to subsubsections.
	Labels bool
	// PageBreaks keeps headings with their content and starts every section
	// after the first on a fresh page.
	PageBreaks bool
}

func headerStage(opts HeadingOptions) func(Document) Document {
	return func(doc Document) Document {
		lines := splitLines(doc)
		out := make([]line, 0, len(lines))
		for _, l := range lines {
			heading, ok := translateHeading(l, opts)
			if !ok {
				out = append(out, l)
				continue
			}
			if opts.PageBreaks && heading.command == `\section` && len(out) > 0 {
				out = append(out, line{markup(`\vfill`)}, line{markup(`\pagebreak`)})
			}
			out = append(out, heading.lines...)
		}
		return joinLines(out)
	}
}

type translated struct {
	command string
	lines   []line
}

func translateHeading(l line, opts HeadingOptions) (translated, bool) {
	if len(l) != 1 {
		return translated{}, false
	}
	text, ok := l.leadingProse()
	if !ok {
		return translated{}, false
	}
	for _, lvl := range headingLevels {
		if !strings.HasPrefix(text, lvl.prefix) {
			continue
		}
		title := strings.TrimSpace(text[len(lvl.prefix):])
		out := []line{{markup(lvl.command + "{"), argProse(title), markup("}")}}
		if opts.Labels && lvl.label != "" {
			if slug := slugify(title); slug != "" {
				out = append(out, line{markup(`\label{` + lvl.label + slug + "}")})
			}
		}
		if opts.PageBreaks && (lvl.command == `\section` || lvl.command == `\subsection`) {
			out = append(out, line{markup(`\nopagebreak[4]`)})
		}
		return translated{command: lvl.command, lines: out}, true
	}
	return translated{}, false
}

// slugify lowercases title and joins its letter and digit runs with '-'.
func slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
