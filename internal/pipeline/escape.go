package pipeline

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// reservedChars are the LaTeX special characters and their text-mode forms.
var reservedChars = map[byte]string{
	'\\': `\textbackslash{}`,
	'{':  `\{`,
	'}':  `\}`,
	'$':  `\$`,
	'&':  `\&`,
	'%':  `\%`,
	'#':  `\#`,
	'^':  `\textasciicircum{}`,
	'_':  `\_`,
	'~':  `\textasciitilde{}`,
}

// escapedChar matches an already escaped reserved character, \\ or a
// control space.
var escapedChar = regexp.MustCompile(`^\\[{}$&%#^_~\\ ]`)

// commandName matches a control word and its optional star.
var commandName = regexp.MustCompile(`^\\([a-zA-Z]+)\*?`)

// optionalArg matches one [..] argument, copied verbatim.
var optionalArg = regexp.MustCompile(`^\[[^\]\n]*\]`)

// knownCommands lists the LaTeX commands authors may write in prose. The
// value is how many leading brace arguments are identifiers or paths and
// are kept verbatim; later arguments are escaped as text. Any other
// backslash is literal text.
var knownCommands = map[string]int{
	// text styles
	"textbf": 0, "textit": 0, "emph": 0, "texttt": 0, "textsc": 0,
	"textsf": 0, "textrm": 0, "textsl": 0, "underline": 0,
	"textsuperscript": 0, "textsubscript": 0, "textcolor": 1,
	"footnote": 0, "mbox": 0, "hbox": 0, "bfseries": 0, "itshape": 0,
	"tiny": 0, "footnotesize": 0, "small": 0, "normalsize": 0,
	"large": 0, "Large": 0, "LARGE": 0, "huge": 0, "Huge": 0,
	// references
	"label": 1, "ref": 1, "pageref": 1, "eqref": 1, "autoref": 1,
	"cite": 1, "url": 1, "href": 1, "hyperref": 0, "includegraphics": 1,
	// symbols and logos
	"textdegree": 0, "textregistered": 0, "texttrademark": 0,
	"textcopyright": 0, "copyright": 0, "textbackslash": 0,
	"textasciitilde": 0, "textasciicircum": 0, "textbar": 0,
	"textless": 0, "textgreater": 0, "textbullet": 0, "textendash": 0,
	"textemdash": 0, "ldots": 0, "dots": 0, "LaTeX": 0, "TeX": 0,
	"today": 0, "checkmark": 0,
	// spacing and breaks
	"newline": 0, "linebreak": 0, "pagebreak": 0, "newpage": 0,
	"noindent": 0, "par": 0, "quad": 0, "qquad": 0, "hfill": 0,
	"vfill": 0, "smallskip": 0, "medskip": 0, "bigskip": 0,
	"vspace": 0, "hspace": 0, "centering": 0,
	// siunitx
	"SI": 0, "si": 0, "num": 0, "ohm": 0, "volt": 0, "ampere": 0,
	"watt": 0, "hertz": 0, "farad": 0, "henry": 0, "second": 0,
	"celsius": 0, "degreeCelsius": 0, "milli": 0, "micro": 0,
	"nano": 0, "pico": 0, "kilo": 0, "mega": 0, "giga": 0,
}

// symbols maps Unicode characters common in datasheets onto LaTeX.
var symbols = map[rune]string{
	'Ω': `$\Omega$`,
	'°': `\textdegree{}`,
	'±': `$\pm$`,
	'µ': `$\mu$`,
	'≤': `$\leq$`,
	'≥': `$\geq$`,
	'×': `$\times$`,
	'÷': `$\div$`,
	'√': `$\sqrt{}$`,
	'∞': `$\infty$`,
	'α': `$\alpha$`,
	'β': `$\beta$`,
	'γ': `$\gamma$`,
	'δ': `$\delta$`,
	'ε': `$\varepsilon$`,
	'θ': `$\theta$`,
	'λ': `$\lambda$`,
	'μ': `$\mu$`,
	'π': `$\pi$`,
	'σ': `$\sigma$`,
	'τ': `$\tau$`,
	'φ': `$\phi$`,
	'ω': `$\omega$`,
	'²': `$^2$`,
	'³': `$^3$`,
	'½': `$\frac{1}{2}$`,
	'¼': `$\frac{1}{4}$`,
	'¾': `$\frac{3}{4}$`,
}

// emoji maps section emoji onto words; the rest are dropped.
var emoji = map[rune]string{
	'⚙': "Technical Specifications",
	'🔌': "Pinout",
	'📏': "Dimensions",
	'📃': "Topology",
	'🚀': "",
	'✅': "",
	'❌': "",
	'📊': "",
	'🧪': "",
	'📄': "",
	'📚': "",
	'🎯': "",
	'⚡': "",
	'🔧': "",
	'📦': "",
	'🌐': "",
	'💡': "",
	'🔥': "",
	'⭐': "",
	'🎉': "",
	'\uFE0F': "",
}

// Escape renders prose for LaTeX text mode. Already escaped characters and
// known commands pass through; the text arguments of those commands are
// escaped in turn.
func Escape(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/8)

	for i := 0; i < len(text); {
		c := text[i]
		if c == '\\' {
			if loc := escapedChar.FindStringIndex(text[i:]); loc != nil {
				b.WriteString(text[i : i+loc[1]])
				i += loc[1]
				continue
			}
			if n, ok := writeCommand(&b, text[i:]); ok {
				i += n
				continue
			}
		}
		if repl, ok := reservedChars[c]; ok {
			b.WriteString(repl)
			i++
			continue
		}
		if c < utf8.RuneSelf {
			b.WriteByte(c)
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(text[i:])
		if repl, ok := symbols[r]; ok {
			b.WriteString(repl)
		} else if repl, ok := emoji[r]; ok {
			b.WriteString(repl)
		} else {
			b.WriteString(text[i : i+size])
		}
		i += size
	}
	return b.String()
}

// writeCommand copies a known command at the start of text with its
// arguments and returns the bytes consumed. It reports false for unknown
// control words.
func writeCommand(b *strings.Builder, text string) (int, bool) {
	m := commandName.FindStringSubmatchIndex(text)
	if m == nil {
		return 0, false
	}
	raw, ok := knownCommands[text[m[2]:m[3]]]
	if !ok {
		return 0, false
	}

	b.WriteString(text[:m[1]])
	i, arg := m[1], 0
	for i < len(text) {
		if loc := optionalArg.FindStringIndex(text[i:]); loc != nil {
			b.WriteString(text[i : i+loc[1]])
			i += loc[1]
			continue
		}
		end := closingBrace(text, i)
		if end < 0 {
			break
		}
		inner := text[i+1 : end]
		if arg >= raw {
			inner = Escape(inner)
		}
		b.WriteString("{" + inner + "}")
		i = end + 1
		arg++
	}
	return i, true
}

// closingBrace returns the index of the brace closing the group opened at
// text[open], or -1 when text[open] is not '{' or the group is unbalanced.
// Escaped braces do not count and a group never spans lines.
func closingBrace(text string, open int) int {
	if open >= len(text) || text[open] != '{' {
		return -1
	}
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '\n':
			return -1
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// escapeStage rewrites every prose span, argument prose included, into markup.
func escapeStage(doc Document) Document {
	out := make(Document, 0, len(doc))
	for _, s := range doc {
		if s.Kind == Prose {
			out = append(out, markup(Escape(s.Text)))
			continue
		}
		out = append(out, s)
	}
	return out.compact()
}
