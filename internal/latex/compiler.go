// Package latex compiles generated datasheets to PDF with a LaTeX engine.
package latex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Sentinel errors for compilation failures.
var (
	ErrEmptyPath      = errors.New("tex path cannot be empty")
	ErrInvalidTeXPath = errors.New("tex path must end in .tex")
	ErrTeXNotFound    = errors.New("tex file not found")
	ErrEngineNotFound = errors.New("LaTeX engine not found")
	ErrCompileFailed  = errors.New("LaTeX compilation failed")
	ErrCompileTimeout = errors.New("LaTeX compilation timed out")
	ErrPDFMissing     = errors.New("PDF not produced")
	ErrPDFTooSmall    = errors.New("PDF output too small")
)

// Compilation defaults.
const (
	DefaultEngine  = "pdflatex"
	DefaultPasses  = 3 // cross-references and page totals settle on the third run
	DefaultTimeout = 2 * time.Minute
	MinPDFSize     = 1000
)

// fatalMarker in engine stdout means the run aborted even with nonstopmode.
const fatalMarker = "Fatal error"

// logTail is how much engine output a failure carries.
const logTail = 800

// auxExtensions are removed after a successful build.
var auxExtensions = []string{".aux", ".out", ".toc", ".lof", ".lot"}

// Compiler runs a LaTeX engine over a .tex file in its own directory.
type Compiler struct {
	Runner  CommandRunner
	Engine  string
	Passes  int
	Timeout time.Duration
}

// NewCompiler creates a Compiler with a real command runner and defaults.
func NewCompiler() *Compiler {
	return &Compiler{
		Runner:  &ExecRunner{},
		Engine:  DefaultEngine,
		Passes:  DefaultPasses,
		Timeout: DefaultTimeout,
	}
}

// Result describes a successful build.
type Result struct {
	PDFPath string
	Size    int64
	// Output is the engine stdout of the last pass.
	Output string
}

// Compile builds the PDF next to texPath. The engine runs Passes times with
// -interaction=nonstopmode; a non-zero exit alone is not fatal, since LaTeX
// reports recoverable errors that way. The build fails when a pass prints a
// fatal error or the PDF is missing or smaller than MinPDFSize. Auxiliary
// files are removed after a successful build.
func (c *Compiler) Compile(ctx context.Context, texPath string) (*Result, error) {
	if err := validateTeXPath(texPath); err != nil {
		return nil, err
	}

	engine, passes, timeout := c.settings()
	dir := filepath.Dir(texPath)
	name := filepath.Base(texPath)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout string
	for pass := 1; pass <= passes; pass++ {
		out, stderr, err := c.Runner.Run(ctx, dir, engine, "-interaction=nonstopmode", name)
		stdout = out
		if err := runError(ctx, engine, pass, err, stderr); err != nil {
			return nil, err
		}
		if strings.Contains(out, fatalMarker) {
			return nil, fmt.Errorf("%w: pass %d: %s", ErrCompileFailed, pass, tail(out))
		}
	}

	pdfPath := strings.TrimSuffix(texPath, filepath.Ext(texPath)) + ".pdf"
	info, err := os.Stat(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrPDFMissing, pdfPath, tail(stdout))
	}
	if info.Size() <= MinPDFSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrPDFTooSmall, pdfPath, info.Size())
	}

	CleanAux(texPath)

	return &Result{PDFPath: pdfPath, Size: info.Size(), Output: stdout}, nil
}

func (c *Compiler) settings() (engine string, passes int, timeout time.Duration) {
	engine, passes, timeout = c.Engine, c.Passes, c.Timeout
	if engine == "" {
		engine = DefaultEngine
	}
	if passes <= 0 {
		passes = DefaultPasses
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return engine, passes, timeout
}

// runError classifies a runner error. Exit failures return nil.
func runError(ctx context.Context, engine string, pass int, err error, stderr string) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: pass %d", ErrCompileTimeout, pass)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrEngineNotFound, engine)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return fmt.Errorf("%w: pass %d: %s: %w", ErrCompileFailed, pass, strings.TrimSpace(stderr), err)
}

// CleanAux removes the auxiliary files LaTeX leaves next to texPath.
// Missing files are ignored.
func CleanAux(texPath string) {
	stem := strings.TrimSuffix(texPath, filepath.Ext(texPath))
	for _, ext := range auxExtensions {
		_ = os.Remove(stem + ext)
	}
}

// LogPath returns the engine log written next to texPath.
func LogPath(texPath string) string {
	return strings.TrimSuffix(texPath, filepath.Ext(texPath)) + ".log"
}

func validateTeXPath(texPath string) error {
	if texPath == "" {
		return ErrEmptyPath
	}
	if !strings.EqualFold(filepath.Ext(texPath), ".tex") {
		return fmt.Errorf("%w: %s", ErrInvalidTeXPath, texPath)
	}
	info, err := os.Stat(texPath)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrTeXNotFound, texPath)
	}
	return nil
}

func tail(s string) string {
	if len(s) <= logTail {
		return strings.TrimSpace(s)
	}
	return "..." + strings.TrimSpace(s[len(s)-logTail:])
}
