package core

import (
	"path/filepath"
	"strings"
)

// NormalizePath cleans a vault-relative path: forward slashes, no leading "./".
func NormalizePath(path string) string {
	clean := filepath.ToSlash(filepath.Clean(path))
	return strings.TrimPrefix(clean, "./")
}

// TitleOf returns the note title for a vault path: the basename without .md.
func TitleOf(path string) string {
	base := filepath.Base(filepath.FromSlash(path))
	if strings.HasSuffix(strings.ToLower(base), ".md") {
		return base[:len(base)-3]
	}
	return base
}

// isMarkdown reports whether name has a .md extension (any case).
func isMarkdown(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".md")
}

// parentDirPrefix returns the parent directory of a vault path with a
// trailing slash. Root-level notes give "/".
func parentDirPrefix(path string) string {
	p := NormalizePath(path)
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "/"
	}
	return p[:i] + "/"
}
