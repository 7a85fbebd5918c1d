package pipeline

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
)

func convert(t *testing.T, markdown string, opts Options) *Result {
	t.Helper()

	res, err := ConvertBody(context.Background(), markdown, "en", opts)
	if err != nil {
		t.Fatalf("ConvertBody() unexpected error: %v", err)
	}
	return res
}

func TestStages_Order(t *testing.T) {
	t.Parallel()

	want := []string{"protect", "headers", "images", "tables", "lists", "inline", "escape"}
	stages := Stages(Options{}, "en", &Report{})
	if len(stages) != len(want) {
		t.Fatalf("got %d stages, want %d", len(stages), len(want))
	}
	for i, s := range stages {
		if s.Name != want[i] {
			t.Errorf("stage %d = %q, want %q", i, s.Name, want[i])
		}
	}
}

func TestConvertBody_HeadingBoldItalicPercent(t *testing.T) {
	t.Parallel()

	res := convert(t, "# Title\n\nSome **bold** and *italic* text with a 50% value.", Options{})
	want := "\\section{Title}\n\nSome \\textbf{bold} and \\textit{italic} text with a 50\\% value."
	if res.Body != want {
		t.Errorf("Body =\n%q\nwant\n%q", res.Body, want)
	}
}

func TestConvertBody_ShortRowPadded(t *testing.T) {
	t.Parallel()

	md := "| Parameter | Value |\n|---|---|\n| Voltage | 3.3V |\n| Current |\n| Power | 1W |"
	res := convert(t, md, Options{})

	for _, want := range []string{
		"  Voltage & 3.3V \\\\\n",
		"  Current &  \\\\\n",
		"  Power & 1W \\\\\n",
		"\\begin{tabular}{|c|c|}",
	} {
		if !strings.Contains(res.Body, want) {
			t.Errorf("Body missing %q\ngot:\n%s", want, res.Body)
		}
	}
}

func TestConvertBody_PinoutFigure(t *testing.T) {
	t.Parallel()

	opts := Options{Images: testResolver(newFakeStore("/out/resources/pinout.png"))}
	res := convert(t, "![Pinout Diagram](resources/pinout.png)", opts)

	if !strings.Contains(res.Body, `\includegraphics[width=0.9\textwidth]{resources/pinout.png}`) {
		t.Errorf("figure width rule not applied:\n%s", res.Body)
	}
	if !strings.Contains(res.Body, `\caption{Pinout Diagram}`) {
		t.Errorf("caption missing:\n%s", res.Body)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestConvertBody_MissingImageWarns(t *testing.T) {
	t.Parallel()

	res := convert(t, "![Board](board_x.png)", Options{Images: testResolver(newFakeStore())})
	if res.Body != "[Image not found: board\\_x.png]" {
		t.Errorf("Body = %q", res.Body)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("warnings = %v, want 1", res.Warnings)
	}
}

func TestConvertBody_CodeRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		content string
	}{
		{
			name:    "fenced",
			input:   "```c\n#define PIN_5 (1 << 5) // 100% {ok} & $x ~y^z\n# comment\n- not a list\n| a | b |\n```",
			content: "#define PIN_5 (1 << 5) // 100% {ok} & $x ~y^z\n# comment\n- not a list\n| a | b |",
		},
		{
			name:    "inline",
			input:   "Set `REG_A |= 0x1F; // 50%` before use.",
			content: "REG_A |= 0x1F; // 50%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := convert(t, tt.input, Options{})
			if !strings.Contains(res.Body, tt.content) {
				t.Errorf("code content altered:\n%s", res.Body)
			}
		})
	}
}

func TestConvertBody_MixedListRun(t *testing.T) {
	t.Parallel()

	res := convert(t, "- alpha\n- beta\n1. first\n2. second", Options{})
	want := "\\begin{itemize}\n\\item alpha\n\\item beta\n\\end{itemize}\n\\begin{enumerate}\n\\item first\n\\item second\n\\end{enumerate}"
	if res.Body != want {
		t.Errorf("Body =\n%q\nwant\n%q", res.Body, want)
	}
}

func TestConvertBody_TableCellAmpersand(t *testing.T) {
	t.Parallel()

	res := convert(t, "| Name | Note |\n|---|---|\n| R&D | 5% |", Options{})
	if !strings.Contains(res.Body, "  R\\&D & 5\\% \\\\\n") {
		t.Errorf("cell not escaped or separator broken:\n%s", res.Body)
	}
}

func TestConvertBody_NoDoubleEscape(t *testing.T) {
	t.Parallel()

	res := convert(t, "Already \\% escaped and \\textbf{bold} here, 10% new.", Options{})
	want := "Already \\% escaped and \\textbf{bold} here, 10\\% new."
	if res.Body != want {
		t.Errorf("Body = %q, want %q", res.Body, want)
	}
}

func TestConvertBody_AuthoredCommandArguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "commands inside prose",
			input: "Duty cycle \\textbf{50% max} and \\emph{GPIO_5}.",
			want:  "Duty cycle \\textbf{50\\% max} and \\emph{GPIO\\_5}.",
		},
		{
			name:  "command-only line with percent",
			input: "\\textbf{50% max}",
			want:  "\\textbf{50\\% max}",
		},
		{
			name:  "command-only line without percent",
			input: "\\vspace{1cm}",
			want:  "\\vspace{1cm}",
		},
		{
			name:  "windows path",
			input: "Install to C:\\Program Files\\Tool.",
			want:  "Install to C:\\textbackslash{}Program Files\\textbackslash{}Tool.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := convert(t, tt.input, Options{})
			if res.Body != tt.want {
				t.Errorf("Body = %q, want %q", res.Body, tt.want)
			}
		})
	}
}

// bareReserved finds a reserved character not preceded by a backslash,
// ignoring the braces and dollars that emitted commands legitimately use.
var bareReserved = regexp.MustCompile(`(^|[^\\])[%#&_~^]`)

func TestConvertBody_NoBareReservedInProse(t *testing.T) {
	t.Parallel()

	md := "# Specs & Limits_2\n\nUse 100% of #1 at ~5V ^2 with a_b & c.\n\n| Key | Value |\n|---|---|\n| a_b | 1 & 2 |\n\n- item 50%\n1. step #3\n\n[link_text](http://x.io/a_b)"
	res := convert(t, md, Options{})

	for _, l := range strings.Split(res.Body, "\n") {
		check := strings.ReplaceAll(l, " & ", " ")
		check = strings.ReplaceAll(check, "\\href{http://x.io/a_b}", "")
		if m := bareReserved.FindString(check); m != "" {
			t.Errorf("bare reserved character %q in line %q", m, l)
		}
	}
}

func TestConvertBody_Options(t *testing.T) {
	t.Parallel()

	opts := Options{
		CodeStyle:    CodeListings,
		Headings:     HeadingOptions{Labels: true},
		TableCaption: "Especificaciones",
	}
	res := convert(t, "# Intro\n```py\nx = 1\n```\n| A | B |\n|---|---|\n| 1 | 2 |", opts)

	for _, want := range []string{
		"\\label{sec:intro}",
		"\\begin{lstlisting}[language=",
		"\\caption{Especificaciones}",
	} {
		if !strings.Contains(res.Body, want) {
			t.Errorf("Body missing %q\ngot:\n%s", want, res.Body)
		}
	}
}

func TestConvertBody_NormalizesLineEndings(t *testing.T) {
	t.Parallel()

	res := convert(t, "\uFEFF# A\r\n- b\r\n", Options{})
	want := "\\section{A}\n\\begin{itemize}\n\\item b\n\\end{itemize}\n"
	if res.Body != want {
		t.Errorf("Body = %q, want %q", res.Body, want)
	}
}

func TestConvertBody_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ConvertBody(ctx, "# x", "en", Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestConvertBody_TableCellWithCodePipe(t *testing.T) {
	t.Parallel()

	res := convert(t, "| Flag | Meaning |\n|---|---|\n| `a|b` | either |", Options{})
	if !strings.Contains(res.Body, "  \\verb!a|b! & either \\\\\n") {
		t.Errorf("code cell split or mangled: %q", res.Body)
	}
}
