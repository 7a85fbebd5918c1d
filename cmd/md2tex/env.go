package main

import (
	"io"
	"os"
	"time"

	md2tex "github.com/hwdocs/go-md2tex"
	"github.com/hwdocs/go-md2tex/internal/config"
	"github.com/hwdocs/go-md2tex/internal/latex"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration, asset loading and the engine runner.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	AssetLoader md2tex.AssetLoader // nil = embedded assets
	Config      *config.Config     // nil = load md2tex.yaml from the standard locations
	Runner      latex.CommandRunner
}

// DefaultEnv returns production environment with embedded assets and a
// real LaTeX engine runner.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Runner: &latex.ExecRunner{},
	}
}
