package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"
)

// Help text width bounds.
const (
	defaultHelpWidth = 80
	minHelpWidth     = 40
	maxHelpWidth     = 100
)

// helpWidth returns the wrap width for w: the terminal width when w is a
// terminal, else $COLUMNS, else defaultHelpWidth.
func helpWidth(w io.Writer) int {
	width := defaultHelpWidth
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			width = cols
		}
	} else if value := os.Getenv("COLUMNS"); value != "" {
		if cols, err := strconv.Atoi(value); err == nil && cols > 0 {
			width = cols
		}
	}
	return min(max(width, minHelpWidth), maxHelpWidth)
}

// printParagraph writes text wrapped to the help width and indented by pad.
func printParagraph(w io.Writer, text string, pad uint) {
	wrapped := wordwrap.String(text, helpWidth(w)-int(pad))
	fmt.Fprintln(w, indent.String(wrapped, pad))
}

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2tex <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate   Generate LaTeX datasheets from per-language Markdown")
	fmt.Fprintln(w, "  doctor     Check the LaTeX engine and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2tex help <command>' for details on a specific command.")
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2tex generate [dir] [flags]")
	fmt.Fprintln(w)
	printParagraph(w, "Convert <dir>/<lang>/content.md with <dir>/<lang>/metadata.yaml "+
		"into <output>/datasheet_<lang>.tex for every language directory, "+
		"optionally compiling each one to PDF.", 0)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	printParagraph(w, "dir    Base directory (default: config input.defaultDir, else the current directory)", 2)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory (default: <dir>/docs)")
	fmt.Fprintln(w, "  -l, --lang <code>         Language to generate, repeatable (default: all)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --preview             Write an HTML preview next to each .tex")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Assets:")
	fmt.Fprintln(w, "      --template <s>        Template name or .tex path")
	fmt.Fprintln(w, "                            (default: <dir>/template.tex, else built-in)")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory with templates/ and styles/")
	fmt.Fprintln(w, "      --images <dir>        Shared images (default: <dir>/images)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "      --code-style <s>      Fenced code: verbatim, listings")
	fmt.Fprintln(w, "      --heading-labels      Add \\label{sec:...} to headings")
	fmt.Fprintln(w, "      --page-breaks         Start top-level sections on a new page")
	fmt.Fprintln(w, "      --table-caption <s>   Caption for tables without a caption line")
	fmt.Fprintln(w, "      --title-from-heading  Use the first H1 when metadata has no title")
	fmt.Fprintln(w, "      --no-escape-metadata  Insert metadata values as raw LaTeX")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PDF:")
	fmt.Fprintln(w, "      --compile             Compile each datasheet to PDF")
	fmt.Fprintln(w, "      --no-compile          Write .tex only")
	fmt.Fprintln(w, "      --engine <s>          pdflatex, xelatex, lualatex (default: pdflatex)")
	fmt.Fprintln(w, "      --passes <n>          Engine runs per document (1-5, default: 3)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Compile timeout per document (default: 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	printParagraph(w, "MD2TEX_CONFIG, MD2TEX_INPUT_DIR, MD2TEX_OUTPUT_DIR, MD2TEX_IMAGES_DIR, "+
		"MD2TEX_TEMPLATE, MD2TEX_ENGINE, MD2TEX_LATEX_BIN, MD2TEX_TIMEOUT, MD2TEX_WORKERS. "+
		"Flags win over environment, environment over the config file.", 2)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2tex doctor [--json]")
	fmt.Fprintln(w)
	printParagraph(w, "Check that the LaTeX engine can be found and that the temp "+
		"directory is writable. Exits 1 when a check fails.", 0)
}
