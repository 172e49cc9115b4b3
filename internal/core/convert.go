package core

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	lerrors "github.com/ryotapoi/mdlinkify/internal/errors"
)

// engine bundles the catalog and classifier built from one config snapshot.
type engine struct {
	catalog    *TitleCatalog
	classifier *BoundaryClassifier
}

func newEngine(source TitleSource, cfg Config) (*engine, error) {
	docs, err := source.Documents()
	if err != nil {
		return nil, err
	}
	names, folders := cfg.Exclusions()
	catalog := NewTitleCatalog()
	catalog.Rebuild(docs, names, folders)
	return &engine{
		catalog:    catalog,
		classifier: NewBoundaryClassifier(cfg.NonBoundaryScripts),
	}, nil
}

func (e *engine) scan(text, currentTitle string) []string {
	return ScanTitles(text, e.catalog, currentTitle, e.classifier)
}

func (e *engine) plan(text, currentTitle string) []Edit {
	return PlanEdits(text, e.scan(text, currentTitle), e.classifier)
}

// ScanOptions selects the note to scan.
type ScanOptions struct {
	File string // vault-relative path
}

// ScanResult lists the titles mentioned in a note.
type ScanResult struct {
	File  string
	Title string
	Hits  []string
}

// Scan reports which catalog titles a note mentions outside existing links.
func Scan(vaultPath string, cfg Config, opts ScanOptions) (*ScanResult, error) {
	rel, err := resolveNote(vaultPath, opts.File)
	if err != nil {
		return nil, err
	}
	eng, err := newEngine(OpenSource(vaultPath), cfg)
	if err != nil {
		return nil, err
	}
	buf, err := OpenFileBuffer(filepath.Join(vaultPath, rel))
	if err != nil {
		return nil, err
	}
	title := TitleOf(rel)
	return &ScanResult{File: rel, Title: title, Hits: eng.scan(buf.Text(), title)}, nil
}

// ConvertOptions controls the convert operation.
type ConvertOptions struct {
	Files  []string // limit to these notes; empty = every note not excluded
	DryRun bool
}

// Conversion is one mention turned into a link.
type Conversion struct {
	File  string
	Title string
	Line  int // zero-based
	Col   int // zero-based, in characters
}

// ConvertResult reports the outcome of the convert operation.
type ConvertResult struct {
	Converted []Conversion
	Files     []string // notes that changed (or would change)
}

type pendingRewrite struct {
	rel  string
	buf  *FileBuffer
	plan []Edit
}

// Convert links every title mention in the selected notes. All notes are
// planned before any is written; if a write fails, notes already written are
// restored and the error is returned.
func Convert(vaultPath string, cfg Config, opts ConvertOptions) (*ConvertResult, error) {
	targets, err := convertTargets(vaultPath, cfg, opts.Files)
	if err != nil {
		return nil, err
	}
	eng, err := newEngine(OpenSource(vaultPath), cfg)
	if err != nil {
		return nil, err
	}

	result := &ConvertResult{}
	var pending []pendingRewrite
	for _, rel := range targets {
		buf, err := OpenFileBuffer(filepath.Join(vaultPath, rel))
		if err != nil {
			return nil, err
		}
		plan := eng.plan(buf.Text(), TitleOf(rel))
		if len(plan) == 0 {
			continue
		}
		for _, e := range plan {
			pos := buf.OffsetToPosition(e.Start)
			result.Converted = append(result.Converted, Conversion{
				File:  rel,
				Title: e.Title,
				Line:  pos.Line,
				Col:   pos.Column,
			})
		}
		result.Files = append(result.Files, rel)
		pending = append(pending, pendingRewrite{rel: rel, buf: buf, plan: plan})
		log.Debug().Str("file", rel).Int("edits", len(plan)).Msg("planned links")
	}

	if opts.DryRun || len(pending) == 0 {
		return result, nil
	}

	if err := applyPending(vaultPath, pending); err != nil {
		return nil, err
	}
	return result, nil
}

// applyPending writes every planned rewrite in order. If one fails, the notes
// already written are restored to their planned-against content.
func applyPending(vaultPath string, pending []pendingRewrite) error {
	var written []rewriteBackup
	for _, p := range pending {
		backup := rewriteBackup{path: p.rel, content: []byte(p.buf.Text()), perm: p.buf.perm}
		if err := Rewrite(p.buf, p.plan); err != nil {
			log.Warn().Err(err).Str("file", p.rel).Int("restored", len(written)).Msg("convert rolled back")
			restoreBackups(vaultPath, written)
			return err
		}
		written = append(written, backup)
	}
	return nil
}

// convertTargets returns the notes to convert, sorted. Explicit files must
// exist; the default set skips excluded notes.
func convertTargets(vaultPath string, cfg Config, files []string) ([]string, error) {
	if len(files) > 0 {
		seen := make(map[string]bool, len(files))
		var out []string
		for _, f := range files {
			rel, err := resolveNote(vaultPath, f)
			if err != nil {
				return nil, err
			}
			if !seen[rel] {
				seen[rel] = true
				out = append(out, rel)
			}
		}
		sort.Strings(out)
		return out, nil
	}

	all, err := collectMarkdownFiles(vaultPath)
	if err != nil {
		return nil, err
	}
	names, folders := cfg.Exclusions()
	excludedName := make(map[string]bool, len(names))
	for _, n := range names {
		excludedName[n] = true
	}
	var out []string
	for _, rel := range all {
		if excludedName[TitleOf(rel)] || inExcludedFolder(rel, folders) {
			continue
		}
		out = append(out, rel)
	}
	sort.Strings(out)
	return out, nil
}

// resolveNote normalizes a vault-relative note path and checks it exists.
func resolveNote(vaultPath, file string) (string, error) {
	rel := NormalizePath(file)
	if !isMarkdown(rel) || strings.HasPrefix(rel, "../") {
		return "", lerrors.FileNotFound(file)
	}
	info, err := os.Stat(filepath.Join(vaultPath, rel))
	if err != nil || info.IsDir() {
		return "", lerrors.FileNotFound(file)
	}
	return rel, nil
}
