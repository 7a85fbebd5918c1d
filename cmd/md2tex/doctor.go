package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hwdocs/go-md2tex/internal/hints"
	"github.com/hwdocs/go-md2tex/internal/latex"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Engine   engineInfo `json:"engine"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// engineInfo holds LaTeX engine detection results.
type engineInfo struct {
	Name    string `json:"name"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	EngineBin     string `json:"latex_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// optionalEngines are reported as warnings when missing.
var optionalEngines = []string{"xelatex", "lualatex"}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		}
	}

	result := runDoctor(lookupEngine)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// lookupFunc resolves an engine name or path to an executable.
type lookupFunc func(name string) (string, error)

// lookupEngine finds name on PATH, or checks it directly when it is a path.
func lookupEngine(name string) (string, error) {
	return exec.LookPath(name)
}

// runDoctor performs all diagnostic checks.
func runDoctor(lookup lookupFunc) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			EngineBin: os.Getenv(hints.EngineEnv),
		},
	}

	checkEngine(result, lookup)
	checkEnvironment(result)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkEngine detects the engine used by generate --compile.
func checkEngine(result *doctorResult, lookup lookupFunc) {
	name := result.Env.EngineBin
	if name == "" {
		name = latex.DefaultEngine
	}
	result.Engine.Name = name

	path, err := lookup(name)
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s not found. Install a TeX distribution or set %s", name, hints.EngineEnv))
		return
	}

	result.Engine.Found = true
	result.Engine.Path = path

	// Get version by running <engine> --version
	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- engine resolved by LookPath
	if err == nil {
		result.Engine.Version = firstLine(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get %s version: %v", name, err))
	}

	if result.Env.EngineBin != "" {
		return
	}
	for _, engine := range optionalEngines {
		if _, err := lookup(engine); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s not found (needed only with --engine %s)", engine, engine))
		}
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	// Detect container (multi-signal approach)
	result.Env.Container, result.Env.ContainerHint = isContainer()

	// Detect CI environments
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && !result.Engine.Found {
		result.Warnings = append(result.Warnings,
			"Container/CI detected without a LaTeX engine. Install texlive-latex-extra")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	// Explicit override (highest priority)
	if os.Getenv("MD2TEX_CONTAINER") == "1" {
		return true, "MD2TEX_CONTAINER=1"
	}
	// Docker
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	// Check temp directory is writable
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "md2tex-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "md2tex doctor")
	fmt.Fprintln(w)

	// Engine section
	fmt.Fprintln(w, "LaTeX engine")
	if r.Engine.Found {
		fmt.Fprintf(w, "  [OK] %s found at %s\n", r.Engine.Name, r.Engine.Path)
		if r.Engine.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Engine.Version)
		}
		if r.Env.EngineBin != "" {
			fmt.Fprintf(w, "  [OK] Override: %s=%s\n", hints.EngineEnv, r.Env.EngineBin)
		}
	} else {
		fmt.Fprintf(w, "  [ERROR] %s not found\n", r.Engine.Name)
	}
	fmt.Fprintln(w)

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	// System section
	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to generate and compile")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
