package pipeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	inlineCodePattern = regexp.MustCompile("`([^`\n]+)`")
	linkPattern       = regexp.MustCompile(`\[([^\]\n]+)\]\(([^)\s]+)\)`)
)

// verbDelimiters are tried in order; the first one absent from the code
// content closes the \verb command.
const verbDelimiters = `|!+=@;:/'"^~`

var urlReplacer = strings.NewReplacer(`%`, `\%`, `#`, `\#`)

// emphasis is one delimiter pair handled by the inline stage.
type emphasis struct {
	pattern *regexp.Regexp
	command string
	// wordBound requires non-alphanumeric neighbours outside the delimiters,
	// so snake_case identifiers stay intact.
	wordBound bool
}

// Emphasis content may hold whole code spans, delimiters included.
var emphases = []emphasis{
	{regexp.MustCompile("\\*\\*((?:`[^`\n]+`|[^\n])+?)\\*\\*"), `\textbf`, false},
	{regexp.MustCompile("__((?:`[^`\n]+`|[^\n])+?)__"), `\textbf`, true},
	{regexp.MustCompile("\\*((?:`[^`\n]+`|[^*\n])+?)\\*"), `\textit`, false},
	{regexp.MustCompile("_((?:`[^`\n]+`|[^_\n])+?)_"), `\textit`, true},
}

// inlineStage converts code last so links and emphasis can wrap it. Their
// matches must not start or end inside a code span.
func inlineStage(doc Document) Document {
	doc = mapProse(doc, true, links)
	for _, e := range emphases {
		doc = mapProse(doc, true, e.apply)
	}
	return mapProse(doc, true, inlineCode)
}

func inlineCode(s Span) []Span {
	return replaceMatches(s, inlineCodePattern, func(text string, m []int) ([]Span, bool) {
		content := text[m[2]:m[3]]
		if s.Arg {
			return []Span{markup(`\texttt{` + Escape(content) + "}")}, true
		}
		delim := strings.IndexFunc(verbDelimiters, func(r rune) bool {
			return !strings.ContainsRune(content, r)
		})
		if delim < 0 {
			return []Span{markup(`\texttt{` + Escape(content) + "}")}, true
		}
		d := verbDelimiters[delim : delim+1]
		return []Span{code(`\verb` + d + content + d)}, true
	})
}

func links(s Span) []Span {
	return replaceMatches(s, linkPattern, func(text string, m []int) ([]Span, bool) {
		if crossesCode(text, m) {
			return nil, false
		}
		label, url := text[m[2]:m[3]], text[m[4]:m[5]]
		return []Span{
			markup(`\href{` + urlReplacer.Replace(url) + "}{"),
			argProse(label),
			markup("}"),
		}, true
	})
}

func (e emphasis) apply(s Span) []Span {
	return replaceMatches(s, e.pattern, func(text string, m []int) ([]Span, bool) {
		inner := text[m[2]:m[3]]
		if crossesCode(text, m) || strings.TrimSpace(inner) != inner {
			return nil, false
		}
		if e.wordBound && (alnumBefore(text, m[0]) || alnumAfter(text, m[1])) {
			return nil, false
		}
		return []Span{
			markup(e.command + "{"),
			argProse(inner),
			markup("}"),
		}, true
	})
}

// replaceMatches scans s for pattern and splices in the spans returned by
// fn. When fn rejects a match the scan resumes one byte after its start,
// so a later valid match overlapping the rejected one is still found.
func replaceMatches(s Span, pattern *regexp.Regexp, fn func(text string, m []int) ([]Span, bool)) []Span {
	text := s.Text
	var out []Span
	last, pos := 0, 0
	for pos < len(text) {
		loc := pattern.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}
		spans, ok := fn(text, loc)
		if !ok {
			pos = loc[0] + 1
			continue
		}
		out = append(out, withArg(prose(text[last:loc[0]]), s.Arg))
		out = append(out, spans...)
		last, pos = loc[1], loc[1]
	}
	if out == nil {
		return []Span{s}
	}
	return append(out, withArg(prose(text[last:]), s.Arg))
}

// crossesCode reports whether the match m starts or ends inside a code span.
func crossesCode(text string, m []int) bool {
	for _, c := range inlineCodePattern.FindAllStringIndex(text, -1) {
		if (m[0] >= c[0] && m[0] < c[1]) || (m[1] > c[0] && m[1] <= c[1]) {
			return true
		}
	}
	return false
}

func alnumBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func alnumAfter(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
