package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName checks that a template or style name is a bare file stem:
// not empty, no path separators, no dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, `/\.`) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
