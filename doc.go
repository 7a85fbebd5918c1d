// Package md2tex converts Markdown hardware documentation into LaTeX
// datasheets.
//
// # Quick Start
//
// Create a converter and convert one language variant:
//
//	conv, err := md2tex.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	meta, err := md2tex.LoadMetadata("hw/en/metadata.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, md2tex.Input{
//	    Markdown:  content,
//	    Metadata:  meta,
//	    Language:  "en",
//	    SourceDir: "hw",
//	    OutputDir: "hw/docs",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("hw/docs/datasheet_en.tex", []byte(result.LaTeX), 0644)
//
// The result holds the bound document (result.LaTeX), the converted body
// alone (result.Body) and the warnings raised on the way, such as figures
// that could not be found.
//
// # Conversion Pipeline
//
// The body goes through these stages, in order:
//
//  1. Fenced code and authored LaTeX are set aside untouched
//  2. Headings become \section, \subsection, \subsubsection, \paragraph
//  3. Images are resolved against the asset tree and become figures
//  4. Pipe tables become tabular environments with captions
//  5. Bullet and numbered lists become itemize and enumerate
//  6. Inline code, links, bold and italic are converted
//  7. LaTeX special characters left in the text are escaped
//
// The body is then bound into the template skeleton together with the
// metadata, resolving $if(key)$...$else$...$endif$ blocks and $key$
// placeholders. Missing keys fall back to the built-in cover defaults.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := md2tex.NewConverter(
//	    md2tex.WithCodeStyle(md2tex.CodeListings),
//	    md2tex.WithHeadingLabels(true),
//	    md2tex.WithTemplate(skeleton),
//	    md2tex.WithDefaults(map[string]string{"organization": "ACME"}),
//	)
//
// A Converter holds no per-document state and is safe for concurrent use.
//
// # Custom Assets
//
// Override the built-in template and preview stylesheet using AssetLoader:
//
//	loader, err := md2tex.NewAssetLoader("/path/to/assets")
//	conv, err := md2tex.NewConverter(md2tex.WithAssetLoader(loader))
//
// Asset directory structure:
//
//	assets/
//	├── styles/
//	│   └── preview.css
//	└── templates/
//	    └── datasheet.tex
//
// # PDF Output
//
// The library writes LaTeX only. The md2tex command compiles it with
// pdflatex when one is installed.
package md2tex
