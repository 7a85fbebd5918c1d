package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hwdocs/go-md2tex/internal/fileutil"
)

// logoNames are probed in order in the images directory.
var logoNames = []string{"logo.png", "logo.jpg", "logo.jpeg"}

// DirStore answers figure resolution queries against the real filesystem.
type DirStore struct{}

// Exists reports whether path is a regular file.
func (DirStore) Exists(path string) bool {
	return fileutil.FileExists(path)
}

// List returns the sorted names of the regular files in dir.
// A missing directory lists as empty.
func (DirStore) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Copy copies src to dst.
func (DirStore) Copy(src, dst string) error {
	if err := fileutil.CopyFile(src, dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAssetCopy, filepath.Base(src), err)
	}
	return nil
}

// CopyLogo copies the first logo found in imagesDir into outDir and
// returns its file name. An absent logo returns "" and no error.
func CopyLogo(imagesDir, outDir string) (string, error) {
	for _, name := range logoNames {
		src := filepath.Join(imagesDir, name)
		if !fileutil.FileExists(src) {
			continue
		}
		if err := fileutil.CopyFile(src, filepath.Join(outDir, name)); err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrAssetCopy, name, err)
		}
		return name, nil
	}
	return "", nil
}
