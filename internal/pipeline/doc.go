// Package pipeline implements the Markdown-to-LaTeX body conversion.
//
// The document travels through the stages as a sequence of typed spans:
// prose (author text), markup (LaTeX already emitted) and code (verbatim).
// Each stage rewrites prose spans only, so LaTeX produced by an earlier
// stage is never touched by a later one. Stage order:
//
//   - protect: fenced code blocks and authored LaTeX become code/markup
//   - headers: # to #### become sectioning commands
//   - images: ![alt](path) becomes a figure, resolved against the asset tree
//   - tables: pipe tables become tabular floats
//   - lists: - / * / 1. runs become itemize and enumerate
//   - inline: code, links, bold and italic
//   - escape: LaTeX reserved characters and Unicode symbols in prose
//
// The package also renders an HTML preview of the same Markdown with
// Goldmark, used for reviewing content before typesetting.
package pipeline
