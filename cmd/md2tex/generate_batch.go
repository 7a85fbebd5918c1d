package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	md2tex "github.com/hwdocs/go-md2tex"
	"github.com/hwdocs/go-md2tex/internal/fileutil"
	"github.com/hwdocs/go-md2tex/internal/hints"
	"github.com/hwdocs/go-md2tex/internal/latex"
)

// CLIConverter is the interface for the conversion service.
type CLIConverter interface {
	Convert(ctx context.Context, input md2tex.Input) (*md2tex.ConvertResult, error)
}

// PDFCompiler builds a PDF next to a .tex file.
type PDFCompiler interface {
	Compile(ctx context.Context, texPath string) (*latex.Result, error)
}

// Compile-time interface implementation checks.
var (
	_ CLIConverter = (*md2tex.Converter)(nil)
	_ PDFCompiler  = (*latex.Compiler)(nil)
)

// generateParams groups parameters shared across the batch.
type generateParams struct {
	converter CLIConverter
	compiler  PDFCompiler // nil = .tex only
	engine    string
	outDir    string
	imagesDir string
	logo      string
	preview   bool
}

// ConversionResult holds the outcome of one language.
type ConversionResult struct {
	Language   string
	InputPath  string
	OutputPath string // .tex
	HTMLPath   string
	PDFPath    string
	PDFSize    int64
	Warnings   []string
	Hint       string
	Err        error
	Duration   time.Duration
}

// generateBatch processes languages concurrently with at most workers
// documents in flight.
func generateBatch(ctx context.Context, workers int, jobs []LanguageJob, params *generateParams) []ConversionResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := max(min(workers, len(jobs)), 1)

	results := make([]ConversionResult, len(jobs))
	var wg sync.WaitGroup
	queue := make(chan int, len(jobs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						Language:  jobs[idx].Language,
						InputPath: jobs[idx].ContentPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = generateFile(ctx, jobs[idx], params)
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

// generateFile converts one language and returns the result.
func generateFile(ctx context.Context, job LanguageJob, params *generateParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		Language:   job.Language,
		InputPath:  job.ContentPath,
		OutputPath: job.TeXPath,
	}
	fail := func(err error) ConversionResult {
		result.Err = err
		result.Hint = hintFor(err)
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(job.ContentPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrReadContent, err))
	}

	meta, err := md2tex.LoadMetadata(job.MetadataPath)
	if err != nil {
		return fail(err)
	}

	convResult, err := params.converter.Convert(ctx, md2tex.Input{
		Markdown:  string(content),
		Metadata:  meta,
		Language:  job.Language,
		SourceDir: params.imagesDir,
		OutputDir: params.outDir,
		Logo:      params.logo,
		Preview:   params.preview,
	})
	if err != nil {
		return fail(err)
	}
	result.Warnings = convResult.Warnings

	if err := fileutil.WriteFileAtomic(job.TeXPath, []byte(convResult.LaTeX), filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrWriteOutput, err))
	}

	if params.preview {
		htmlPath := htmlOutputPath(job.TeXPath)
		if err := fileutil.WriteFileAtomic(htmlPath, []byte(convResult.HTML), filePermissions); err != nil {
			return fail(fmt.Errorf("%w: %v", ErrWriteOutput, err))
		}
		result.HTMLPath = htmlPath
	}

	if params.compiler != nil {
		pdf, err := params.compiler.Compile(ctx, job.TeXPath)
		if err != nil {
			result = fail(err)
			result.Hint = compileHint(err, params.engine, job.TeXPath)
			return result
		}
		result.PDFPath = pdf.PDFPath
		result.PDFSize = pdf.Size
	}

	result.Duration = time.Since(start)
	return result
}

// compileHint points at the likely fix for a failed build.
func compileHint(err error, engine, texPath string) string {
	switch {
	case errors.Is(err, latex.ErrEngineNotFound):
		return hints.ForCompilerMissing(engine)
	case errors.Is(err, latex.ErrCompileTimeout):
		return hints.ForTimeout()
	case errors.Is(err, context.Canceled):
		return ""
	default:
		return hints.ForCompileFailed(latex.LogPath(texPath))
	}
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs conversion results using the provided writers.
// Returns the number of failed languages.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, r.Hint)
			continue
		}

		if quiet {
			continue
		}

		for _, w := range r.Warnings {
			fmt.Fprintf(env.Stderr, "warning: %s: %s\n", r.Language, w)
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
		if r.HTMLPath != "" {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.HTMLPath)
		}
		if r.PDFPath != "" {
			fmt.Fprintf(env.Stdout, "Created %s (%d KB)\n", r.PDFPath, r.PDFSize/1024)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
