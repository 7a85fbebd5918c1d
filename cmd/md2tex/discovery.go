package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	md2tex "github.com/hwdocs/go-md2tex"
	"github.com/hwdocs/go-md2tex/internal/fileutil"
)

// Source file names inside each language directory.
const (
	contentFile  = "content.md"
	metadataFile = "metadata.yaml"
)

// LanguageJob is one language variant to generate.
type LanguageJob struct {
	Language     string
	ContentPath  string
	MetadataPath string
	TeXPath      string
}

// discoverLanguages returns the sorted names of the directories under base
// that hold a content.md. Hidden directories are skipped. A missing
// metadata.yaml is reported per language at conversion time.
func discoverLanguages(base string) ([]string, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoInput, err)
	}

	var langs []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if fileutil.FileExists(filepath.Join(base, e.Name(), contentFile)) {
			langs = append(langs, e.Name())
		}
	}
	sort.Strings(langs)
	return langs, nil
}

// selectLanguages filters found by wanted, keeping the order of found.
// Empty wanted selects everything. A wanted language that was not found is
// an error so typos do not silently produce nothing.
func selectLanguages(found, wanted []string) ([]string, error) {
	if len(wanted) == 0 {
		return found, nil
	}
	for _, w := range wanted {
		if !slices.Contains(found, w) {
			return nil, fmt.Errorf("%w: %q (found: %s)", ErrUnknownLanguage, w, strings.Join(found, ", "))
		}
	}
	var selected []string
	for _, lang := range found {
		if slices.Contains(wanted, lang) {
			selected = append(selected, lang)
		}
	}
	return selected, nil
}

// buildJobs maps languages to their source files and output path.
func buildJobs(base, outDir string, langs []string) []LanguageJob {
	jobs := make([]LanguageJob, 0, len(langs))
	for _, lang := range langs {
		jobs = append(jobs, LanguageJob{
			Language:     lang,
			ContentPath:  filepath.Join(base, lang, contentFile),
			MetadataPath: filepath.Join(base, lang, metadataFile),
			TeXPath:      texOutputPath(outDir, lang),
		})
	}
	return jobs
}

// texOutputPath returns <out>/datasheet_<lang>.tex.
func texOutputPath(outDir, lang string) string {
	return filepath.Join(outDir, "datasheet_"+lang+".tex")
}

// htmlOutputPath converts a .tex output path to .html.
func htmlOutputPath(texPath string) string {
	return strings.TrimSuffix(texPath, filepath.Ext(texPath)) + ".html"
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > md2tex.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, md2tex.MaxPoolSize)
	}
	return nil
}
