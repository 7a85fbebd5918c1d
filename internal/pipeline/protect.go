package pipeline

import (
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// CodeStyle selects the environment used for fenced code blocks.
type CodeStyle string

const (
	CodeVerbatim CodeStyle = "verbatim"
	CodeListings CodeStyle = "listings"
)

const fenceMarker = "```"

var (
	// A line holding nothing but LaTeX commands, such as \newpage or \vspace{1cm}.
	// Lines with a % are left to the escaper.
	commandOnlyLine = regexp.MustCompile(`^\s*(?:\\[a-zA-Z]+\*?(?:\[[^\]\n%]*\])*(?:\{[^{}\n%]*\})*\s*)+$`)

	envBegin = regexp.MustCompile(`^\s*\\begin\{([a-zA-Z*]+)\}`)
)

// listingsLanguages maps lowercase chroma lexer names onto listings languages.
var listingsLanguages = map[string]string{
	"arduino":       "C++",
	"bash":          "bash",
	"c":             "C",
	"c++":           "C++",
	"cmake":         "make",
	"fortran":       "Fortran",
	"gas":           "Assembler",
	"html":          "HTML",
	"java":          "Java",
	"lua":           "Lua",
	"makefile":      "make",
	"matlab":        "Matlab",
	"nasm":          "Assembler",
	"octave":        "Octave",
	"perl":          "Perl",
	"python":        "Python",
	"python 2":      "Python",
	"ruby":          "Ruby",
	"sql":           "SQL",
	"systemverilog": "Verilog",
	"tex":           "TeX",
	"vhdl":          "VHDL",
	"verilog":       "Verilog",
	"xml":           "XML",
}

// listingsLanguage resolves a fence tag through chroma's lexer registry,
// so aliases like "py", "sh" or "cpp" land on the same listings language.
func listingsLanguage(tag string) string {
	if tag == "" {
		return ""
	}
	lexer := lexers.Get(tag)
	if lexer == nil {
		return ""
	}
	return listingsLanguages[strings.ToLower(lexer.Config().Name)]
}

// protectStage turns fenced code into code spans and authored LaTeX into
// markup spans before any Markdown rule can see them.
func protectStage(style CodeStyle) func(Document) Document {
	return func(doc Document) Document {
		lines := splitLines(doc)
		out := make([]line, 0, len(lines))

		for i := 0; i < len(lines); {
			l := lines[i]
			if !l.isProse() {
				out = append(out, l)
				i++
				continue
			}
			text := l.text()

			if tag, ok := fenceOpening(text); ok {
				if end := fenceClosing(lines, i+1); end >= 0 {
					out = append(out, line{code(fencedBlock(style, tag, lines[i+1:end]))})
					i = end + 1
					continue
				}
			}

			if m := envBegin.FindStringSubmatch(text); m != nil {
				if end := environmentEnd(lines, i, m[1]); end >= 0 {
					for _, inner := range lines[i : end+1] {
						out = append(out, line{markup(inner.text())})
					}
					i = end + 1
					continue
				}
			}

			if commandOnlyLine.MatchString(text) {
				out = append(out, line{markup(text)})
				i++
				continue
			}

			out = append(out, l)
			i++
		}
		return joinLines(out)
	}
}

// fenceOpening reports whether text opens a fenced block and returns its tag.
func fenceOpening(text string) (string, bool) {
	trimmed := strings.TrimLeft(text, " ")
	if !strings.HasPrefix(trimmed, fenceMarker) {
		return "", false
	}
	tag := strings.TrimSpace(strings.TrimPrefix(trimmed, fenceMarker))
	if strings.Contains(tag, "`") {
		return "", false
	}
	return tag, true
}

// fenceClosing returns the index of the closing fence at or after from, or -1.
func fenceClosing(lines []line, from int) int {
	for j := from; j < len(lines); j++ {
		if strings.TrimSpace(lines[j].text()) == fenceMarker {
			return j
		}
	}
	return -1
}

// environmentEnd returns the line index holding the \end matching the
// \begin{name} on line start, or -1 when the environment is never closed.
func environmentEnd(lines []line, start int, name string) int {
	begin := `\begin{` + name + `}`
	end := `\end{` + name + `}`
	depth := 0
	for j := start; j < len(lines); j++ {
		text := lines[j].text()
		depth += strings.Count(text, begin)
		depth -= strings.Count(text, end)
		if depth <= 0 {
			return j
		}
	}
	return -1
}

func fencedBlock(style CodeStyle, tag string, content []line) string {
	var b strings.Builder
	if style == CodeListings {
		b.WriteString(`\begin{lstlisting}`)
		if lang := listingsLanguage(tag); lang != "" {
			b.WriteString("[language=" + lang + "]")
		}
	} else {
		b.WriteString(`\begin{verbatim}`)
	}
	b.WriteByte('\n')
	for _, l := range content {
		b.WriteString(l.text())
		b.WriteByte('\n')
	}
	if style == CodeListings {
		b.WriteString(`\end{lstlisting}`)
	} else {
		b.WriteString(`\end{verbatim}`)
	}
	return b.String()
}
