package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	md2tex "github.com/hwdocs/go-md2tex"
	"github.com/hwdocs/go-md2tex/internal/assets"
	"github.com/hwdocs/go-md2tex/internal/config"
	"github.com/hwdocs/go-md2tex/internal/fileutil"
	"github.com/hwdocs/go-md2tex/internal/hints"
	"github.com/hwdocs/go-md2tex/internal/latex"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("input directory not found")
	ErrNoLanguages        = errors.New("no language directories found")
	ErrUnknownLanguage    = errors.New("language directory not found")
	ErrReadContent        = errors.New("failed to read content.md")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrTooManyArgs        = errors.New("too many arguments")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Locations relative to the base directory.
const (
	defaultOutputDir = "docs"
	defaultImagesDir = "images"
	localTemplate    = "template.tex"
)

// runGenerate orchestrates the generation of every selected language.
func runGenerate(ctx context.Context, positionalArgs []string, flags *generateFlags, env *Environment) error {
	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}
	if len(positionalArgs) > 1 {
		return fmt.Errorf("%w: expected one base directory, got %d", ErrTooManyArgs, len(positionalArgs))
	}

	// Load configuration: flag > env > injected > md2tex.yaml > defaults
	envCfg := loadEnvConfig()
	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath, env.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyEnvConfig(envCfg, cfg)

	// Merge CLI flags into config (CLI wins)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	timeout, err := resolveTimeoutWithEnv(flags.timeout, envCfg.Timeout, cfg.LaTeX.Timeout)
	if err != nil {
		return err
	}

	base, err := resolveBaseDir(positionalArgs, cfg)
	if err != nil {
		return err
	}
	outDir := resolveOutputDir(base, cfg)
	imagesDir := resolveImagesDir(base, cfg)

	found, err := discoverLanguages(base)
	if err != nil {
		return err
	}
	langs, err := selectLanguages(found, cfg.Languages)
	if err != nil {
		return err
	}
	if len(langs) == 0 {
		return fmt.Errorf("%w in %s%s", ErrNoLanguages, base, hints.ForNoLanguages(base))
	}

	if err := os.MkdirAll(outDir, dirPermissions); err != nil {
		return fmt.Errorf("%w: creating output directory: %w", ErrWriteOutput, err)
	}

	// The logo is shared by every language, copy it once
	logo, err := assets.CopyLogo(imagesDir, outDir)
	if err != nil && !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "warning: %v\n", err)
	}

	converter, err := buildConverter(base, cfg, env)
	if err != nil {
		return err
	}

	params := &generateParams{
		converter: converter,
		outDir:    outDir,
		imagesDir: imagesDir,
		logo:      logo,
		preview:   cfg.Preview.Enabled,
	}
	if cfg.LaTeX.Compile {
		compiler := buildCompiler(cfg, envCfg, timeout, env)
		params.compiler = compiler
		params.engine = compiler.Engine
	}

	workers := flags.workers
	if workers == 0 {
		workers = min(envCfg.Workers, md2tex.MaxPoolSize)
	}
	poolSize := md2tex.ResolvePoolSize(workers)
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Generating %s with %d worker(s)\n", strings.Join(langs, ", "), poolSize)
	}

	results := generateBatch(ctx, poolSize, buildJobs(base, outDir, langs), params)

	failedCount := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return newBatchError(results, failedCount)
	}

	return nil
}

// loadConfig picks the config source. An injected config is copied so
// merging flags never leaks between runs.
func loadConfig(flagPath, envPath string, preset *config.Config) (*config.Config, error) {
	switch {
	case flagPath != "":
		return config.LoadConfig(flagPath)
	case envPath != "":
		return config.LoadConfig(envPath)
	case preset != nil:
		cfg := *preset
		cfg.Defaults = maps.Clone(preset.Defaults)
		cfg.Languages = slices.Clone(preset.Languages)
		if cfg.Defaults == nil {
			cfg.Defaults = map[string]string{}
		}
		return &cfg, nil
	default:
		return config.LoadDefault()
	}
}

// mergeFlags applies CLI flags to config. Boolean flags only switch
// features on, except --no-compile and --no-escape-metadata.
func mergeFlags(flags *generateFlags, cfg *config.Config) {
	if flags.output != "" {
		cfg.Output.DefaultDir = flags.output
	}
	if flags.assets.images != "" {
		cfg.Images.Dir = flags.assets.images
	}
	if flags.assets.assetPath != "" {
		cfg.Assets.BasePath = flags.assets.assetPath
	}
	if flags.assets.template != "" {
		setTemplate(cfg, flags.assets.template)
	}
	if len(flags.languages) > 0 {
		cfg.Languages = flags.languages
	}
	if flags.preview {
		cfg.Preview.Enabled = true
	}

	// LaTeX
	if flags.latex.compile {
		cfg.LaTeX.Compile = true
	}
	if flags.latex.noCompile {
		cfg.LaTeX.Compile = false
	}
	if flags.latex.engine != "" {
		cfg.LaTeX.Engine = flags.latex.engine
	}
	if flags.latex.passes != 0 {
		cfg.LaTeX.Passes = flags.latex.passes
	}

	// Conversion
	if flags.conversion.codeStyle != "" {
		cfg.Conversion.CodeStyle = flags.conversion.codeStyle
	}
	if flags.conversion.headingLabels {
		cfg.Conversion.HeadingLabels = true
	}
	if flags.conversion.pageBreaks {
		cfg.Conversion.PageBreakControl = true
	}
	if flags.conversion.tableCaption != "" {
		cfg.Conversion.TableCaption = flags.conversion.tableCaption
	}
	if flags.conversion.titleFromHeading {
		cfg.Conversion.TitleFromHeading = true
	}
	if flags.conversion.noEscapeMetadata {
		escape := false
		cfg.Conversion.EscapeMetadata = &escape
	}
}

// setTemplate stores value as a template path when it looks like a file,
// otherwise as an asset name.
func setTemplate(cfg *config.Config, value string) {
	if fileutil.IsFilePath(value) || strings.EqualFold(filepath.Ext(value), ".tex") {
		cfg.Template.Path, cfg.Template.Name = value, ""
		return
	}
	cfg.Template.Name, cfg.Template.Path = value, ""
}

// resolveTimeoutWithEnv returns the compile timeout.
// Priority: flag > env > config. Zero means the compiler default.
func resolveTimeoutWithEnv(flagValue string, envValue time.Duration, configValue string) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, flagValue, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidTimeout, flagValue)
		}
		return d, nil
	}
	if envValue > 0 {
		return envValue, nil
	}
	return config.LaTeXConfig{Timeout: configValue}.TimeoutDuration()
}

// resolveBaseDir returns the directory holding the language directories.
// Priority: argument > config input.defaultDir > current directory.
func resolveBaseDir(args []string, cfg *config.Config) (string, error) {
	base := "."
	switch {
	case len(args) == 1:
		base = args[0]
	case cfg.Input.DefaultDir != "":
		base = cfg.Input.DefaultDir
	}

	if !fileutil.DirExists(base) {
		return "", fmt.Errorf("%w: %s", ErrNoInput, base)
	}
	return base, nil
}

// resolveOutputDir returns config output.defaultDir or <base>/docs.
func resolveOutputDir(base string, cfg *config.Config) string {
	if cfg.Output.DefaultDir != "" {
		return cfg.Output.DefaultDir
	}
	return filepath.Join(base, defaultOutputDir)
}

// resolveImagesDir returns config images.dir or <base>/images.
func resolveImagesDir(base string, cfg *config.Config) string {
	if cfg.Images.Dir != "" {
		return cfg.Images.Dir
	}
	return filepath.Join(base, defaultImagesDir)
}

// buildConverter translates config into converter options.
func buildConverter(base string, cfg *config.Config, env *Environment) (*md2tex.Converter, error) {
	loader := env.AssetLoader
	if cfg.Assets.BasePath != "" || loader == nil {
		var err error
		loader, err = md2tex.NewAssetLoader(cfg.Assets.BasePath)
		if err != nil {
			return nil, err
		}
	}

	opts := []md2tex.Option{
		md2tex.WithAssetLoader(loader),
		md2tex.WithHeadingLabels(cfg.Conversion.HeadingLabels),
		md2tex.WithPageBreakControl(cfg.Conversion.PageBreakControl),
		md2tex.WithMetadataEscaping(cfg.Conversion.EscapesMetadata()),
		md2tex.WithTitleFromHeading(cfg.Conversion.TitleFromHeading),
	}
	if env.Now != nil {
		opts = append(opts, md2tex.WithClock(env.Now))
	}
	if cfg.Conversion.CodeStyle != "" {
		opts = append(opts, md2tex.WithCodeStyle(md2tex.CodeStyle(strings.ToLower(cfg.Conversion.CodeStyle))))
	}
	if cfg.Conversion.TableCaption != "" {
		opts = append(opts, md2tex.WithTableCaption(cfg.Conversion.TableCaption))
	}
	if len(cfg.Conversion.RawKeys) > 0 {
		opts = append(opts, md2tex.WithRawKeys(cfg.Conversion.RawKeys...))
	}
	if len(cfg.Defaults) > 0 {
		opts = append(opts, md2tex.WithDefaults(cfg.Defaults))
	}

	skeleton, err := resolveTemplate(base, cfg, loader)
	if err != nil {
		return nil, err
	}
	if skeleton != "" {
		opts = append(opts, md2tex.WithTemplate(skeleton))
	}

	if cfg.Preview.Style != "" {
		css, err := loader.LoadStyle(cfg.Preview.Style)
		if err != nil {
			return nil, fmt.Errorf("loading preview style: %w", err)
		}
		opts = append(opts, md2tex.WithPreviewStyle(css))
	}

	return md2tex.NewConverter(opts...)
}

// resolveTemplate returns the skeleton content, or "" for the built-in one.
// Priority: template.path > template.name > <base>/template.tex.
func resolveTemplate(base string, cfg *config.Config, loader md2tex.AssetLoader) (string, error) {
	switch {
	case cfg.Template.Path != "":
		return md2tex.ReadTemplateFile(cfg.Template.Path)
	case cfg.Template.Name != "":
		return loader.LoadTemplate(cfg.Template.Name)
	}

	local := filepath.Join(base, localTemplate)
	if fileutil.FileExists(local) {
		return md2tex.ReadTemplateFile(local)
	}
	return "", nil
}

// buildCompiler configures the LaTeX engine. MD2TEX_LATEX_BIN replaces the
// engine binary.
func buildCompiler(cfg *config.Config, envCfg *envConfig, timeout time.Duration, env *Environment) *latex.Compiler {
	engine := strings.ToLower(cfg.LaTeX.Engine)
	if envCfg.EngineBin != "" {
		engine = envCfg.EngineBin
	}
	if engine == "" {
		engine = latex.DefaultEngine
	}

	runner := env.Runner
	if runner == nil {
		runner = &latex.ExecRunner{}
	}

	return &latex.Compiler{
		Runner:  runner,
		Engine:  engine,
		Passes:  cfg.LaTeX.Passes,
		Timeout: timeout,
	}
}

// hintFor returns an actionable hint for a run-level error, or "".
func hintFor(err error) string {
	var batch *batchError
	switch {
	case errors.As(err, &batch):
		return ""
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(config.DefaultName))
	case errors.Is(err, md2tex.ErrTemplateNotFound):
		return hints.ForTemplateNotFound([]string{md2tex.DefaultTemplate})
	case errors.Is(err, md2tex.ErrTemplateStructure):
		return hints.ForTemplateStructure()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, md2tex.ErrMetadataParse), errors.Is(err, md2tex.ErrMetadataNotFound):
		return hints.ForMetadata()
	}
	return ""
}

// batchError reports failed languages. It unwraps to the first failure so
// the exit code follows its cause.
type batchError struct {
	failed int
	total  int
	first  error
}

func newBatchError(results []ConversionResult, failed int) *batchError {
	e := &batchError{failed: failed, total: len(results)}
	for _, r := range results {
		if r.Err != nil {
			e.first = r.Err
			break
		}
	}
	return e
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d datasheet(s) failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error {
	return e.first
}
