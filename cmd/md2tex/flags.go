package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// latexFlags holds PDF compilation flags.
type latexFlags struct {
	compile   bool
	noCompile bool
	engine    string
	passes    int
}

// conversionFlags holds Markdown to LaTeX stage flags.
type conversionFlags struct {
	codeStyle        string
	headingLabels    bool
	pageBreaks       bool
	tableCaption     string
	titleFromHeading bool
	noEscapeMetadata bool
}

// assetFlags holds template, asset and image location flags.
type assetFlags struct {
	template  string // name or path of the LaTeX skeleton
	assetPath string // override asset directory
	images    string // shared images directory
}

// generateFlags holds all flags for the generate command.
type generateFlags struct {
	common     commonFlags
	output     string
	workers    int
	timeout    string
	languages  []string
	preview    bool
	latex      latexFlags
	conversion conversionFlags
	assets     assetFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addLaTeXFlags adds compilation flags to a FlagSet.
func addLaTeXFlags(fs *flag.FlagSet, f *latexFlags) {
	fs.BoolVar(&f.compile, "compile", false, "compile each datasheet to PDF")
	fs.BoolVar(&f.noCompile, "no-compile", false, "write .tex only, even if config enables compilation")
	fs.StringVar(&f.engine, "engine", "", "LaTeX engine: pdflatex, xelatex, lualatex")
	fs.IntVar(&f.passes, "passes", 0, "engine runs per document (1-5, default: 3)")
}

// addConversionFlags adds stage flags to a FlagSet.
func addConversionFlags(fs *flag.FlagSet, f *conversionFlags) {
	fs.StringVar(&f.codeStyle, "code-style", "", "fenced code: verbatim, listings")
	fs.BoolVar(&f.headingLabels, "heading-labels", false, "add \\label{sec:...} to headings")
	fs.BoolVar(&f.pageBreaks, "page-breaks", false, "start sections on a new page")
	fs.StringVar(&f.tableCaption, "table-caption", "", "caption for tables without a caption line")
	fs.BoolVar(&f.titleFromHeading, "title-from-heading", false, "use the first H1 when metadata has no title")
	fs.BoolVar(&f.noEscapeMetadata, "no-escape-metadata", false, "insert metadata values as raw LaTeX")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.template, "template", "", "template name or .tex file path")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.StringVar(&f.images, "images", "", "shared images directory (default: <dir>/images)")
}

// parseGenerateFlags parses generate command flags and returns positional args.
// Usage and parse errors are written to w.
func parseGenerateFlags(args []string, w io.Writer) (*generateFlags, []string, error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(w)
	f := &generateFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output directory (default: <dir>/docs)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "compile timeout per document (e.g., 30s, 2m)")
	fs.StringSliceVarP(&f.languages, "lang", "l", nil, "languages to generate (repeatable, default: all)")
	fs.BoolVar(&f.preview, "preview", false, "write an HTML preview next to each .tex")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addLaTeXFlags(fs, &f.latex)
	addConversionFlags(fs, &f.conversion)
	addAssetFlags(fs, &f.assets)

	fs.Usage = func() { printGenerateUsage(w) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
