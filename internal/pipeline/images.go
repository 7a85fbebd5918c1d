package pipeline

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ErrImageNotFound is returned when no search location holds the image.
var ErrImageNotFound = errors.New("image not found")

// ErrImageCopy is returned when a source asset exists but cannot be copied
// into the output directory.
var ErrImageCopy = errors.New("image copy failed")

var imagePattern = regexp.MustCompile(`!\[([^\]\n]*)\]\(([^)\n]+)\)`)

// minPartialStem is the shortest candidate stem accepted as a partial match.
const minPartialStem = 3

// AssetStore is the filesystem view the resolver needs.
type AssetStore interface {
	Exists(path string) bool
	List(dir string) ([]string, error)
	Copy(src, dst string) error
}

// ImageResolver locates image references against the asset tree.
// Returned references are slash-separated and relative to OutputDir,
// the directory the LaTeX engine runs in.
type ImageResolver struct {
	Store     AssetStore
	OutputDir string
	SourceDir string
}

// Resolve finds ref for the given language. Search order, first hit wins:
// <out>/<lang>/<ref>, <out>/resources (exact then partial), <out>/<clean>,
// then <src>/resources (exact then partial) which is copied next to the
// output as <lang>_<name>.
func (r *ImageResolver) Resolve(ref, lang string) (string, error) {
	if r == nil || r.Store == nil {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, ref)
	}
	ref = filepath.ToSlash(strings.TrimSpace(ref))
	if ref == "" || strings.Contains(ref, "..") || path.IsAbs(ref) || filepath.IsAbs(ref) {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, ref)
	}
	clean := cleanImagePath(ref)

	if lang != "" && r.Store.Exists(r.outPath(lang, ref)) {
		return path.Join(lang, ref), nil
	}

	if r.Store.Exists(r.outPath("resources", clean)) {
		return path.Join("resources", clean), nil
	}
	if name, ok := r.partialMatch(r.outPath("resources"), clean); ok {
		return path.Join("resources", name), nil
	}

	if r.Store.Exists(r.outPath(clean)) {
		return clean, nil
	}

	srcDir := filepath.Join(r.SourceDir, "resources")
	src, name := "", ""
	if candidate := filepath.Join(srcDir, filepath.FromSlash(clean)); r.Store.Exists(candidate) {
		src, name = candidate, path.Base(clean)
	} else if match, ok := r.partialMatch(srcDir, clean); ok {
		src, name = filepath.Join(srcDir, match), match
	}
	if src == "" {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, ref)
	}

	dest := name
	if lang != "" {
		dest = lang + "_" + name
	}
	if err := r.Store.Copy(src, filepath.Join(r.OutputDir, dest)); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrImageCopy, ref, err)
	}
	return dest, nil
}

func (r *ImageResolver) outPath(parts ...string) string {
	elems := make([]string, 0, len(parts)+1)
	elems = append(elems, r.OutputDir)
	for _, p := range parts {
		elems = append(elems, filepath.FromSlash(p))
	}
	return filepath.Join(elems...)
}

// partialMatch scans dir in sorted order for a case-insensitive partial
// match: the candidate contains clean, or clean contains the candidate stem.
func (r *ImageResolver) partialMatch(dir, clean string) (string, bool) {
	names, err := r.Store.List(dir)
	if err != nil || len(names) == 0 {
		return "", false
	}
	names = append([]string(nil), names...)
	sort.Strings(names)

	want := strings.ToLower(clean)
	wantBase := strings.ToLower(path.Base(clean))
	for _, name := range names {
		lower := strings.ToLower(name)
		if strings.Contains(lower, wantBase) {
			return name, true
		}
		stem := strings.TrimSuffix(lower, path.Ext(lower))
		if len(stem) >= minPartialStem && strings.Contains(want, stem) {
			return name, true
		}
	}
	return "", false
}

// cleanImagePath drops leading "./", "resources/" and "images/" components.
func cleanImagePath(ref string) string {
	for {
		switch {
		case strings.HasPrefix(ref, "./"):
			ref = ref[2:]
		case strings.HasPrefix(ref, "resources/"):
			ref = ref[len("resources/"):]
		case strings.HasPrefix(ref, "images/"):
			ref = ref[len("images/"):]
		default:
			return ref
		}
	}
}

// figureWidths is matched in order against the lowercase destination name.
var figureWidths = []struct {
	keywords []string
	width    string
}{
	{[]string{"pinout", "pin_out", "diagram"}, `0.9\textwidth`},
	{[]string{"dimension", "size", "physical"}, `0.6\textwidth`},
	{[]string{"schematic", "circuit"}, `\textwidth`},
	{[]string{"block", "topology"}, `0.7\textwidth`},
}

const defaultFigureWidth = `0.8\textwidth`

// FigureWidth picks the includegraphics width for an image file name.
func FigureWidth(name string) string {
	lower := strings.ToLower(path.Base(filepath.ToSlash(name)))
	for _, rule := range figureWidths {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.width
			}
		}
	}
	return defaultFigureWidth
}

var figureLabelReplacer = strings.NewReplacer(".", "-", "_", "-", "/", "-")

// FigureLabel derives the \label key for a resolved image reference.
func FigureLabel(ref string) string {
	return "fig:" + figureLabelReplacer.Replace(ref)
}

func imageStage(resolver *ImageResolver, lang string, report *Report) func(Document) Document {
	return func(doc Document) Document {
		return mapProse(doc, false, func(s Span) []Span {
			matches := imagePattern.FindAllStringSubmatchIndex(s.Text, -1)
			if matches == nil {
				return []Span{s}
			}
			out := make([]Span, 0, len(matches)*4+1)
			last := 0
			for _, m := range matches {
				out = append(out, prose(s.Text[last:m[0]]))
				alt, ref := s.Text[m[2]:m[3]], s.Text[m[4]:m[5]]

				dest, err := resolver.Resolve(ref, lang)
				if err != nil {
					report.warnf("%v", err)
					out = append(out, prose("[Image not found: "+ref+"]"))
				} else {
					out = append(out, figure(alt, dest)...)
				}
				last = m[1]
			}
			out = append(out, prose(s.Text[last:]))
			return out
		})
	}
}

func figure(alt, dest string) []Span {
	return []Span{
		markup("\n\\begin{figure}[H]\n\\centering\n" +
			`\includegraphics[width=` + FigureWidth(dest) + "]{" + dest + "}\n" +
			`\caption{`),
		argProse(alt),
		markup("}\n" + `\label{` + FigureLabel(dest) + "}\n" + `\end{figure}` + "\n"),
	}
}
