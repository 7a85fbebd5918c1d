package pipeline

import (
	"strings"
	"testing"
)

func runStage(stage func(Document) Document, input string) string {
	return stage(NewDocument(input)).String()
}

func TestProtectStage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		style CodeStyle
		input string
		want  string
	}{
		{
			name:  "fenced block becomes verbatim",
			style: CodeVerbatim,
			input: "before\n```\n# not a header\nx = a_b % 2\n```\nafter",
			want:  "before\n\\begin{verbatim}\n# not a header\nx = a_b % 2\n\\end{verbatim}\nafter",
		},
		{
			name:  "empty fenced block",
			style: CodeVerbatim,
			input: "```\n```",
			want:  "\\begin{verbatim}\n\\end{verbatim}",
		},
		{
			name:  "listings with known language",
			style: CodeListings,
			input: "```python\nprint('hi')\n```",
			want:  "\\begin{lstlisting}[language=Python]\nprint('hi')\n\\end{lstlisting}",
		},
		{
			name:  "listings resolves alias through lexer registry",
			style: CodeListings,
			input: "```cpp\nint main() {}\n```",
			want:  "\\begin{lstlisting}[language=C++]\nint main() {}\n\\end{lstlisting}",
		},
		{
			name:  "listings with unknown language",
			style: CodeListings,
			input: "```nosuchlanguage\nx\n```",
			want:  "\\begin{lstlisting}\nx\n\\end{lstlisting}",
		},
		{
			name:  "unterminated fence stays prose",
			style: CodeVerbatim,
			input: "```\ncode without end",
			want:  "```\ncode without end",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := runStage(protectStage(tt.style), tt.input)
			if got != tt.want {
				t.Errorf("protect(%q) =\n%q\nwant\n%q", tt.input, got, tt.want)
			}
		})
	}
}

func TestProtectStage_Kinds(t *testing.T) {
	t.Parallel()

	doc := protectStage(CodeVerbatim)(NewDocument("```\nx\n```\n\\newpage\n\\begin{tabular}{cc}\na & b \\\\\n\\end{tabular}\nplain 5%"))

	var kinds []SpanKind
	for _, s := range doc {
		if strings.TrimSpace(s.Text) != "" {
			kinds = append(kinds, s.Kind)
		}
	}
	if len(kinds) == 0 || kinds[0] != Code {
		t.Fatalf("first span kind = %v, want code", kinds)
	}

	escaped := escapeStage(doc).String()
	if !strings.Contains(escaped, "a & b \\\\") {
		t.Errorf("authored tabular row was rewritten: %q", escaped)
	}
	if !strings.Contains(escaped, "\\newpage") {
		t.Errorf("command line was rewritten: %q", escaped)
	}
	if !strings.Contains(escaped, "plain 5\\%") {
		t.Errorf("prose after environment not escaped: %q", escaped)
	}
}

func TestHeaderStage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		opts  HeadingOptions
		input string
		want  string
	}{
		{
			name:  "all levels",
			input: "# One\n## Two\n### Three\n#### Four",
			want:  "\\section{One}\n\\subsection{Two}\n\\subsubsection{Three}\n\\paragraph{Four}",
		},
		{
			name:  "title is trimmed",
			input: "#   Spaced Title   ",
			want:  "\\section{Spaced Title}",
		},
		{
			name:  "hash without space is not a header",
			input: "#hashtag\n##nope",
			want:  "#hashtag\n##nope",
		},
		{
			name:  "indented hash is not a header",
			input: " # indented",
			want:  " # indented",
		},
		{
			name:  "five hashes are not a header",
			input: "##### deep",
			want:  "##### deep",
		},
		{
			name:  "labels",
			opts:  HeadingOptions{Labels: true},
			input: "# Power Supply\n## I/O Pins\n#### Notes",
			want:  "\\section{Power Supply}\n\\label{sec:power-supply}\n\\subsection{I/O Pins}\n\\label{subsec:i-o-pins}\n\\paragraph{Notes}",
		},
		{
			name:  "page breaks",
			opts:  HeadingOptions{PageBreaks: true},
			input: "# A\ntext\n## B\n# C",
			want:  "\\section{A}\n\\nopagebreak[4]\ntext\n\\subsection{B}\n\\nopagebreak[4]\n\\vfill\n\\pagebreak\n\\section{C}\n\\nopagebreak[4]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := runStage(headerStage(tt.opts), tt.input)
			if got != tt.want {
				t.Errorf("headers(%q) =\n%q\nwant\n%q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHeaderStage_TitleIsArgument(t *testing.T) {
	t.Parallel()

	doc := headerStage(HeadingOptions{})(NewDocument("# Title"))
	for _, s := range doc {
		if s.Kind == Prose && s.Text == "Title" && !s.Arg {
			t.Errorf("title span should carry Arg")
		}
	}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"Power Supply", "power-supply"},
		{"  Pin-out (v2)  ", "pin-out-v2"},
		{"50% Duty_Cycle", "50-duty-cycle"},
		{"Ω", ""},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTableStage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:  "basic table",
			input: "| Pin | Function |\n|-----|----------|\n| 1 | VCC |\n| 2 | GND |",
			wantContains: []string{
				"\\begin{table}[H]",
				"\\begin{tabular}{|c|c|}",
				"  Pin & Function \\\\\n\\hline\n",
				"  1 & VCC \\\\\n",
				"  2 & GND \\\\\n",
				"\\caption{Technical Specifications}",
				"\\end{table}",
			},
		},
		{
			name:         "wide table left aligned",
			input:        "| a | b | c | d |\n|---|---|---|---|\n| 1 | 2 | 3 | 4 |",
			wantContains: []string{"\\begin{tabular}{|l|l|l|l|}"},
		},
		{
			name:         "caption marker consumed",
			input:        "**Table 1: Pin Map**\n\n| A | B |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"\\caption{Pin Map}"},
			wantExcludes: []string{"**Table 1"},
		},
		{
			name:         "spanish caption marker",
			input:        "**Tabla 2: Pines**\n| A | B |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"\\caption{Pines}"},
			wantExcludes: []string{"**Tabla"},
		},
		{
			name:         "caption marker too far back",
			input:        "**Table 1: Far**\none\ntwo\nthree\n| A | B |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"\\caption{Technical Specifications}", "**Table 1: Far**"},
		},
		{
			name:         "blank line inside run tolerated",
			input:        "| A | B |\n|---|---|\n| 1 | 2 |\n\n| 3 | 4 |\nafter",
			wantContains: []string{"  3 & 4 \\\\\n", "\\end{table}\nafter"},
		},
		{
			name:         "trailing blank line ends the run",
			input:        "| A | B |\n|---|---|\n| 1 | 2 |\n\ntext",
			wantContains: []string{"\\end{table}\n\ntext"},
		},
		{
			name:         "interior empty cell kept",
			input:        "| A | B | C |\n|---|---|---|\n| 1 |  | 3 |",
			wantContains: []string{"  1 &  & 3 \\\\\n"},
		},
		{
			name:         "all-empty row skipped",
			input:        "| A | B |\n|---|---|\n| | |\n| 1 | 2 |",
			wantContains: []string{"\\hline\n  1 & 2 \\\\\n\\hline\n\\end{tabular}"},
		},
		{
			name:         "long row truncated",
			input:        "| A | B |\n|---|---|\n| 1 | 2 | 3 |",
			wantContains: []string{"  1 & 2 \\\\\n"},
			wantExcludes: []string{"& 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := runStage(tableStage(""), tt.input)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q\ngot:\n%s", want, got)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("output should not contain %q\ngot:\n%s", exclude, got)
				}
			}
		})
	}
}

func TestTableStage_Passthrough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"two lines only", "| A | B |\n|---|---|"},
		{"single pipe line", "a | b\nplain"},
		{"no data rows", "| A | B |\n|---|---|\n| | |"},
		{"no header cells", "| | |\n|---|---|\n| 1 | 2 |"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := runStage(tableStage(""), tt.input)
			if got != tt.input {
				t.Errorf("tables(%q) = %q, want passthrough", tt.input, got)
			}
		})
	}
}

func TestTableStage_CustomDefaultCaption(t *testing.T) {
	t.Parallel()

	got := runStage(tableStage("Características"), "| A | B |\n|---|---|\n| 1 | 2 |")
	if !strings.Contains(got, "\\caption{Características}") {
		t.Errorf("default caption not used: %q", got)
	}
}

func TestTableStage_RowWidthInvariant(t *testing.T) {
	t.Parallel()

	input := "| A | B | C |\n|---|---|---|\n| 1 |\n| 1 | 2 |\n| 1 | 2 | 3 | 4 | 5 |\n| x | y | z |"
	got := runStage(tableStage(""), input)

	var rows int
	for _, l := range strings.Split(got, "\n") {
		if !strings.HasPrefix(l, "  ") {
			continue
		}
		rows++
		if n := strings.Count(l, " & ") + 1; n != 3 {
			t.Errorf("row %q has %d cells, want 3", l, n)
		}
	}
	if rows != 5 {
		t.Errorf("got %d rows including header, want 5", rows)
	}
}

func TestTableStage_PipesInsideCells(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		row  string
		want []string
	}{
		{"pipe inside code", "| `x|y` | z |", []string{"`x|y`", "z"}},
		{"escaped pipe", `| a \| b | z |`, []string{"a | b", "z"}},
		{"double backtick code", "| ``a|`b`` | z |", []string{"``a|`b``", "z"}},
		{"unclosed backtick", "| `x | y |", []string{"`x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := splitRow(tt.row)
			if strings.Join(got, "\x00") != strings.Join(tt.want, "\x00") {
				t.Errorf("splitRow(%q) = %q, want %q", tt.row, got, tt.want)
			}

			input := "| A | B |\n|---|---|\n" + tt.row
			out := runStage(tableStage(""), input)
			for _, l := range strings.Split(out, "\n") {
				if !strings.HasPrefix(l, "  ") {
					continue
				}
				if n := strings.Count(l, " & ") + 1; n != 2 {
					t.Errorf("row %q has %d cells, want 2", l, n)
				}
			}
		})
	}
}

func TestListStage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "unordered",
			input: "- one\n* two",
			want:  "\\begin{itemize}\n\\item one\n\\item two\n\\end{itemize}",
		},
		{
			name:  "ordered",
			input: "1. one\n10. ten",
			want:  "\\begin{enumerate}\n\\item one\n\\item ten\n\\end{enumerate}",
		},
		{
			name:  "mixed run splits into two environments",
			input: "- a\n- b\n1. c\n2. d\ntext",
			want:  "\\begin{itemize}\n\\item a\n\\item b\n\\end{itemize}\n\\begin{enumerate}\n\\item c\n\\item d\n\\end{enumerate}\ntext",
		},
		{
			name:  "blank line closes the list",
			input: "- a\n\n- b",
			want:  "\\begin{itemize}\n\\item a\n\\end{itemize}\n\n\\begin{itemize}\n\\item b\n\\end{itemize}",
		},
		{
			name:  "indented items and trimmed text",
			input: "  - padded   ",
			want:  "\\begin{itemize}\n\\item padded\n\\end{itemize}",
		},
		{
			name:  "bold line is not a bullet",
			input: "**Note** text",
			want:  "**Note** text",
		},
		{
			name:  "number without dot-space is not a list",
			input: "3.3V supply",
			want:  "3.3V supply",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := runStage(listStage, tt.input)
			if got != tt.want {
				t.Errorf("lists(%q) =\n%q\nwant\n%q", tt.input, got, tt.want)
			}
		})
	}
}

func TestListStage_IgnoresCodeAndMarkup(t *testing.T) {
	t.Parallel()

	doc := Document{code("- inside code"), prose("\n"), markup("1. markup")}
	got := listStage(doc).String()
	if got != "- inside code\n1. markup" {
		t.Errorf("lists touched non-prose lines: %q", got)
	}
}

func TestInlineStage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bold stars", "a **b** c", "a \\textbf{b} c"},
		{"bold underscores", "a __b__ c", "a \\textbf{b} c"},
		{"italic star", "a *b* c", "a \\textit{b} c"},
		{"italic underscore", "a _b_ c", "a \\textit{b} c"},
		{"nested italic in bold", "**a *b* c**", "\\textbf{a \\textit{b} c}"},
		{"snake case untouched", "GPIO_PIN_5 and my_var_name", "GPIO_PIN_5 and my_var_name"},
		{"spaced stars are not emphasis", "2 * 3 * 4", "2 * 3 * 4"},
		{"inline code uses verb", "call `x%y` now", "call \\verb|x%y| now"},
		{"verb delimiter avoids content", "`a|b`", "\\verb!a|b!"},
		{"emphasis markers in code untouched", "`**x**`", "\\verb|**x**|"},
		{"link", "[Docs](https://x.io/a%20b#sec)", "\\href{https://x.io/a\\%20b\\#sec}{Docs}"},
		{"link url keeps underscores", "[x](http://a.io/my_file_name)", "\\href{http://a.io/my_file_name}{x}"},
		{"bold link text", "[**x**](u)", "\\href{u}{\\textbf{x}}"},
		{"code inside bold", "**a `b` c**", "\\textbf{a \\texttt{b} c}"},
		{"code with stars inside italic", "*see `p*q`*", "\\textit{see \\texttt{p*q}}"},
		{"bold ending inside code is not emphasis", "**a `b** c`", "**a \\verb|b** c|"},
		{"code inside link text", "[`cfg`](u)", "\\href{u}{\\texttt{cfg}}"},
		{"link syntax in code untouched", "`[a](b)`", "\\verb|[a](b)|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := runStage(inlineStage, tt.input)
			if got != tt.want {
				t.Errorf("inline(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestInlineStage_CodeInArgument(t *testing.T) {
	t.Parallel()

	doc := Document{markup("\\section{"), argProse("Use `a_b`"), markup("}")}
	got := inlineStage(doc).String()
	want := "\\section{Use \\texttt{a\\_b}}"
	if got != want {
		t.Errorf("inline in argument = %q, want %q", got, want)
	}
}

func TestEscape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Hello world", "Hello world"},
		{"percent", "50% duty", "50\\% duty"},
		{"all reserved", "{}$&#^_~", "\\{\\}\\$\\&\\#\\textasciicircum{}\\_\\textasciitilde{}"},
		{"lone backslash", "a \\", "a \\textbackslash{}"},
		{"already escaped", "\\% and \\& and \\_", "\\% and \\& and \\_"},
		{"line break", "a \\\\ b", "a \\\\ b"},
		{"authored command", "\\textbf{x} 5%", "\\textbf{x} 5\\%"},
		{"command with options", "\\includegraphics[width=2cm]{a.png}", "\\includegraphics[width=2cm]{a.png}"},
		{"command argument escaped", "\\textbf{50% max}", "\\textbf{50\\% max}"},
		{"underscore in argument", "\\emph{GPIO_5}", "\\emph{GPIO\\_5}"},
		{"nested commands", "\\textbf{a \\emph{b_c}}", "\\textbf{a \\emph{b\\_c}}"},
		{"escaped brace in argument", "\\textbf{a \\} b}", "\\textbf{a \\} b}"},
		{"reference kept verbatim", "see \\ref{fig:pin_out}", "see \\ref{fig:pin_out}"},
		{"href url raw and text escaped", "\\href{http://a.io/x_y}{50% off}", "\\href{http://a.io/x_y}{50\\% off}"},
		{"unbalanced argument", "\\textbf{50% max", "\\textbf\\{50\\% max"},
		{"windows path", "C:\\Program Files\\Tool.", "C:\\textbackslash{}Program Files\\textbackslash{}Tool."},
		{"unknown command is text", "\\foo{x}", "\\textbackslash{}foo\\{x\\}"},
		{"symbols", "10 kΩ ±5% at 25°C", "10 k$\\Omega$ $\\pm$5\\% at 25\\textdegree{}C"},
		{"greek and fractions", "α½²", "$\\alpha$$\\frac{1}{2}$$^2$"},
		{"micro sign and mu", "µs μs", "$\\mu$s $\\mu$s"},
		{"emoji words", "⚙️ Specs 🔌 🚀", "Technical Specifications Specs Pinout "},
		{"utf8 passthrough", "Résumé 日本", "Résumé 日本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Escape(tt.input); got != tt.want {
				t.Errorf("Escape(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEscape_IdempotentWithoutReservedChars(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "plain text", "Rev. 1.0 (2024)", "a-b, c; d: e! f? g"}
	for _, in := range inputs {
		once := Escape(in)
		if once != in {
			t.Errorf("Escape(%q) = %q, want unchanged", in, once)
		}
		if twice := Escape(once); twice != once {
			t.Errorf("Escape not stable on %q: %q", once, twice)
		}
	}
}

func TestEscapeStage_OnlyProse(t *testing.T) {
	t.Parallel()

	doc := Document{prose("5%"), markup("\\begin{x}%"), code("\\verb|_|"), argProse("a_b")}
	got := escapeStage(doc).String()
	want := "5\\%\\begin{x}%\\verb|_|a\\_b"
	if got != want {
		t.Errorf("escape = %q, want %q", got, want)
	}
}
