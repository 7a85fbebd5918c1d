package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hwdocs/go-md2tex/internal/config"
	"github.com/hwdocs/go-md2tex/internal/hints"
)

// envPrefix marks the variables md2tex reads.
const envPrefix = "MD2TEX_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MD2TEX_CONFIG: config file name or path
	InputDir   string        // MD2TEX_INPUT_DIR: default base directory
	OutputDir  string        // MD2TEX_OUTPUT_DIR: default output directory
	ImagesDir  string        // MD2TEX_IMAGES_DIR: shared images directory
	Template   string        // MD2TEX_TEMPLATE: template name or path
	Engine     string        // MD2TEX_ENGINE: pdflatex, xelatex, lualatex
	EngineBin  string        // MD2TEX_LATEX_BIN: engine binary, wins over Engine
	Timeout    time.Duration // MD2TEX_TIMEOUT: compile timeout per document
	Workers    int           // MD2TEX_WORKERS: parallel workers
}

// knownEnvVars lists valid MD2TEX_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MD2TEX_CONFIG":     true,
	"MD2TEX_INPUT_DIR":  true,
	"MD2TEX_OUTPUT_DIR": true,
	"MD2TEX_IMAGES_DIR": true,
	"MD2TEX_TEMPLATE":   true,
	"MD2TEX_ENGINE":     true,
	hints.EngineEnv:     true,
	"MD2TEX_TIMEOUT":    true,
	"MD2TEX_WORKERS":    true,
	"MD2TEX_CONTAINER":  true,
}

// loadEnvConfig reads configuration from environment variables.
// Returns a struct with all recognized MD2TEX_* values.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("MD2TEX_CONFIG"),
		InputDir:   os.Getenv("MD2TEX_INPUT_DIR"),
		OutputDir:  os.Getenv("MD2TEX_OUTPUT_DIR"),
		ImagesDir:  os.Getenv("MD2TEX_IMAGES_DIR"),
		Template:   os.Getenv("MD2TEX_TEMPLATE"),
		Engine:     os.Getenv("MD2TEX_ENGINE"),
		EngineBin:  os.Getenv(hints.EngineEnv),
	}

	// Parse duration for timeout
	if timeout := os.Getenv("MD2TEX_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	// Parse int for workers
	if workers := os.Getenv("MD2TEX_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MD2TEX_* variables.
// Helps catch typos like MD2TEX_OUTPUTDIR instead of MD2TEX_OUTPUT_DIR.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.InputDir != "" && cfg.Input.DefaultDir == "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.ImagesDir != "" && cfg.Images.Dir == "" {
		cfg.Images.Dir = env.ImagesDir
	}
	if env.Template != "" && cfg.Template.Path == "" && cfg.Template.Name == "" {
		setTemplate(cfg, env.Template)
	}
	if env.Engine != "" && cfg.LaTeX.Engine == "" {
		cfg.LaTeX.Engine = env.Engine
	}
}
