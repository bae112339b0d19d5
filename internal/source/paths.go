package source

import (
	"path/filepath"
	"strings"
)

// NormalizePath is the form artifact paths are keyed by: cleaned, with
// forward slashes.
func NormalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// relativeTo returns target relative to base, or the absolute target when
// it lies outside base.
func relativeTo(target, base string) (string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return NormalizePath(absTarget), nil
	}
	return NormalizePath(rel), nil
}
