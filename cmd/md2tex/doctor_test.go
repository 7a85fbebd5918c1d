package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/hwdocs/go-md2tex/internal/hints"
)

// lookupOnly resolves the listed engines to path and fails for the rest.
func lookupOnly(path string, found ...string) lookupFunc {
	return func(name string) (string, error) {
		for _, f := range found {
			if f == name {
				return path, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

// fakeEngine writes an executable that prints a version banner.
func fakeEngine(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine")
	}
	path := filepath.Join(t.TempDir(), "pdflatex")
	script := "#!/bin/sh\necho 'pdfTeX 3.141592653-2.6-1.40.26 (TeX Live 2024)'\necho 'kpathsea version 6.4.0'\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil { // #nosec G306 -- test executable
		t.Fatal(err)
	}
	return path
}

func TestRunDoctor_EngineMissing(t *testing.T) {
	t.Setenv(hints.EngineEnv, "")

	result := runDoctor(lookupOnly(""))

	if result.Status != "errors" {
		t.Errorf("Status = %q, want errors", result.Status)
	}
	if result.Engine.Found || result.Engine.Name != "pdflatex" {
		t.Errorf("Engine = %+v", result.Engine)
	}
	if len(result.Errors) == 0 || !strings.Contains(result.Errors[0], "pdflatex not found") {
		t.Errorf("Errors = %v", result.Errors)
	}
}

func TestRunDoctor_Ready(t *testing.T) {
	t.Setenv(hints.EngineEnv, "")
	engine := fakeEngine(t)

	result := runDoctor(lookupOnly(engine, "pdflatex", "xelatex", "lualatex"))

	if result.Status != "ready" {
		t.Errorf("Status = %q, want ready (warnings %v, errors %v)", result.Status, result.Warnings, result.Errors)
	}
	if result.Engine.Path != engine {
		t.Errorf("Engine.Path = %q, want %q", result.Engine.Path, engine)
	}
	if !strings.HasPrefix(result.Engine.Version, "pdfTeX 3.14") {
		t.Errorf("Engine.Version = %q", result.Engine.Version)
	}
	if !result.System.TempWritable {
		t.Error("temp dir should be writable")
	}
}

func TestRunDoctor_OptionalEnginesWarn(t *testing.T) {
	t.Setenv(hints.EngineEnv, "")
	engine := fakeEngine(t)

	result := runDoctor(lookupOnly(engine, "pdflatex"))

	if result.Status != "warnings" {
		t.Errorf("Status = %q, want warnings", result.Status)
	}
	joined := strings.Join(result.Warnings, "\n")
	for _, name := range optionalEngines {
		if !strings.Contains(joined, name+" not found (needed only with --engine "+name+")") {
			t.Errorf("missing warning for %s in %v", name, result.Warnings)
		}
	}
}

func TestRunDoctor_EngineOverride(t *testing.T) {
	engine := fakeEngine(t)
	t.Setenv(hints.EngineEnv, engine)

	var looked []string
	result := runDoctor(func(name string) (string, error) {
		looked = append(looked, name)
		return name, nil
	})

	if result.Engine.Name != engine || result.Env.EngineBin != engine {
		t.Errorf("Engine = %+v, Env.EngineBin = %q", result.Engine, result.Env.EngineBin)
	}
	if len(looked) != 1 {
		t.Errorf("override should skip optional engines, looked up %v", looked)
	}
}

func TestIsContainer(t *testing.T) {
	orig := hints.IsInContainer
	t.Cleanup(func() { hints.IsInContainer = orig })

	tests := []struct {
		name     string
		env      map[string]string
		docker   bool
		want     bool
		wantHint string
	}{
		{"explicit override", map[string]string{"MD2TEX_CONTAINER": "1"}, false, true, "MD2TEX_CONTAINER=1"},
		{"dockerenv", nil, true, true, "/.dockerenv"},
		{"podman", map[string]string{"container": "podman"}, false, true, "container=podman"},
		{"kubernetes", map[string]string{"KUBERNETES_SERVICE_HOST": "10.0.0.1"}, false, true, "KUBERNETES_SERVICE_HOST"},
		{"bare host", nil, false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, name := range []string{"MD2TEX_CONTAINER", "container", "KUBERNETES_SERVICE_HOST"} {
				t.Setenv(name, tt.env[name])
			}
			docker := tt.docker
			hints.IsInContainer = func() bool { return docker }

			got, hint := isContainer()
			if got != tt.want || hint != tt.wantHint {
				t.Errorf("isContainer() = (%v, %q), want (%v, %q)", got, hint, tt.want, tt.wantHint)
			}
		})
	}
}

func TestCheckEnvironment_CIWithoutEngine(t *testing.T) {
	t.Setenv("CI", "true")

	result := &doctorResult{}
	checkEnvironment(result)

	if !result.Env.CI {
		t.Error("CI should be detected")
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "texlive-latex-extra") {
		t.Errorf("Warnings = %v", result.Warnings)
	}
}

func TestFirstLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"pdfTeX 3.14\nkpathsea\n", "pdfTeX 3.14"},
		{"\n  XeTeX 3.14  \r\nmore", "XeTeX 3.14"},
	}
	for _, tt := range tests {
		if got := firstLine(tt.in); got != tt.want {
			t.Errorf("firstLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *doctorResult
		want   []string
	}{
		{
			name: "ready",
			result: &doctorResult{
				Status: "ready",
				Engine: engineInfo{Name: "pdflatex", Found: true, Path: "/usr/bin/pdflatex", Version: "pdfTeX 3.14"},
				Env:    envInfo{OS: "linux", Arch: "amd64", Container: true, ContainerHint: "/.dockerenv"},
				System: systemInfo{TempWritable: true},
			},
			want: []string{
				"[OK] pdflatex found at /usr/bin/pdflatex",
				"[OK] Version: pdfTeX 3.14",
				"[OK] Platform: linux/amd64",
				"[OK] Container: detected (/.dockerenv)",
				"[OK] Temp directory: writable",
				"Status: Ready to generate and compile",
			},
		},
		{
			name: "errors",
			result: &doctorResult{
				Status:   "errors",
				Engine:   engineInfo{Name: "pdflatex"},
				Env:      envInfo{OS: "linux", Arch: "arm64", CI: true},
				Warnings: []string{"xelatex not found"},
				Errors:   []string{"pdflatex not found"},
			},
			want: []string{
				"[ERROR] pdflatex not found",
				"[OK] CI: detected",
				"[ERROR] Temp directory: not writable",
				"[WARN] xelatex not found",
				"Status: Not ready (see errors above)",
			},
		},
		{
			name: "override",
			result: &doctorResult{
				Status: "warnings",
				Engine: engineInfo{Name: "/opt/xelatex", Found: true, Path: "/opt/xelatex"},
				Env:    envInfo{EngineBin: "/opt/xelatex"},
			},
			want: []string{"[OK] Override: MD2TEX_LATEX_BIN=/opt/xelatex", "Status: Ready with warnings"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			printDoctorResult(&buf, tt.result)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestRunDoctorCmd_JSON(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	env := &Environment{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	code := runDoctorCmd([]string{"--json"}, env)

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout.String())
	}
	wantCode := ExitSuccess
	if result.Status == "errors" {
		wantCode = ExitGeneral
	}
	if code != wantCode {
		t.Errorf("exit code = %d for status %q", code, result.Status)
	}
	if result.Env.OS != runtime.GOOS {
		t.Errorf("Env.OS = %q, want %q", result.Env.OS, runtime.GOOS)
	}
}
