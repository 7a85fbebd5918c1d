// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/hwdocs/go-md2tex/internal/fileutil"
)

// EngineEnv names the variable that overrides the LaTeX engine binary.
const EngineEnv = "MD2TEX_LATEX_BIN"

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForCompilerMissing returns hints for a LaTeX engine that cannot be started.
// Detects CI/Docker environment and suggests a TeX distribution package.
func ForCompilerMissing(engine string) string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""

	if inCI || IsInContainer() {
		hints = append(hints, "install texlive-latex-extra in the image")
	} else if engine != "" {
		hints = append(hints, "install a TeX distribution providing "+engine)
	}

	if os.Getenv(EngineEnv) == "" {
		hints = append(hints, "set "+EngineEnv+" to use a custom engine binary")
	}

	hints = append(hints, "or pass --no-compile to write .tex only")
	return formatHints(hints)
}

// ForCompileFailed returns a hint pointing at the LaTeX log.
func ForCompileFailed(logPath string) string {
	if logPath == "" {
		return format("rerun with --verbose to see the engine output")
	}
	return format("see " + logPath)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large datasheets, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-md2tex/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-md2tex") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForMetadata returns hints for an unreadable metadata.yaml.
func ForMetadata() string {
	return format("metadata.yaml must be a YAML mapping, e.g. title: \"ESP32 DevKit\"")
}

// ForTemplateNotFound returns hints for template not found errors.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return format("use --template /path/to/template.tex")
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForTemplateStructure returns hints for unbalanced template conditionals.
func ForTemplateStructure() string {
	return format("every $if(key)$ needs a matching $endif$; $else$ is optional")
}

// ForNoLanguages returns hints when discovery finds nothing to convert.
func ForNoLanguages(base string) string {
	return format("expected " + base + "/<lang>/content.md and " + base + "/<lang>/metadata.yaml")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
