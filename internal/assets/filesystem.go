package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hwdocs/go-md2tex/internal/yamlutil"
)

// FilesystemLoader loads assets from a project directory on disk.
type FilesystemLoader struct {
	basePath string
}

// NewFilesystemLoader creates a FilesystemLoader for the given base path.
// Returns ErrInvalidBasePath if the path is not a valid, readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	// Containment checks compare resolved paths.
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}
	if _, err := os.ReadDir(absPath); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	return &FilesystemLoader{basePath: absPath}, nil
}

// LoadStyle loads {basePath}/styles/{name}.css.
func (f *FilesystemLoader) LoadStyle(name string) (string, error) {
	return f.load("styles", name, ".css", ErrStyleNotFound)
}

// LoadTemplate loads {basePath}/templates/{name}.tex.
func (f *FilesystemLoader) LoadTemplate(name string) (string, error) {
	return f.load("templates", name, ".tex", ErrTemplateNotFound)
}

func (f *FilesystemLoader) load(dir, name, ext string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	filePath := filepath.Join(f.basePath, dir, name+ext)
	if err := f.verifyPathContainment(filePath); err != nil {
		return "", err
	}

	content, err := os.ReadFile(filePath) // #nosec G304 -- path validated above
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", notFound, name)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(content), nil
}

// verifyPathContainment ensures the resolved file path is within basePath,
// following symlinks so a link cannot point outside it.
func (f *FilesystemLoader) verifyPathContainment(filePath string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}
	if realPath, err := filepath.EvalSymlinks(absFilePath); err == nil {
		absFilePath = realPath
	}

	if !strings.HasPrefix(absFilePath, f.basePath+string(filepath.Separator)) {
		return fmt.Errorf("%w: path escapes base directory", ErrPathTraversal)
	}
	return nil
}

// ReadTemplateFile reads a LaTeX skeleton given by path.
// Files larger than the YAML input bound are refused, matching metadata.
func ReadTemplateFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrTemplateNotFound, path)
	}
	if info.Size() > int64(yamlutil.MaxInputSize) {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrAssetRead, path, yamlutil.MaxInputSize)
	}

	content, err := os.ReadFile(path) // #nosec G304 -- user-provided template path
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(content), nil
}

// Compile-time interface check.
var _ AssetLoader = (*FilesystemLoader)(nil)
