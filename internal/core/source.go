package core

import (
	"os"
	"path/filepath"
	"strings"
)

// TitleSource yields every known note as a (title, path) pair.
type TitleSource interface {
	Documents() ([]Document, error)
}

// VaultSource lists notes by walking the vault directory.
type VaultSource struct {
	Root string
}

// Documents walks Root for .md files, skipping hidden directories and the
// index data directory. Paths are sorted by the walk (lexical order).
func (s VaultSource) Documents() ([]Document, error) {
	files, err := collectMarkdownFiles(s.Root)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, len(files))
	for i, f := range files {
		docs[i] = Document{Title: TitleOf(f), Path: f}
	}
	return docs, nil
}

// OpenSource returns the index when one has been built, else a vault walk.
func OpenSource(vaultPath string) TitleSource {
	if IndexExists(vaultPath) {
		return IndexSource{Root: vaultPath}
	}
	return VaultSource{Root: vaultPath}
}

func collectMarkdownFiles(vaultPath string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(vaultPath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != vaultPath && (d.Name() == dataDirName || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if isMarkdown(d.Name()) {
			rel, err := filepath.Rel(vaultPath, path)
			if err != nil {
				return err
			}
			files = append(files, NormalizePath(rel))
		}
		return nil
	})
	return files, err
}
