package core

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	lerrors "github.com/ryotapoi/mdlinkify/internal/errors"
)

// BuildIndex walks the vault and writes the title index. The new index is
// written to a temp file and renamed over the old one. Returns the number of
// notes indexed.
func BuildIndex(vaultPath string) (int, error) {
	if _, err := ensureDataDir(vaultPath); err != nil {
		return 0, err
	}
	files, err := collectMarkdownFiles(vaultPath)
	if err != nil {
		return 0, err
	}

	tmpPath := dbPath(vaultPath) + ".tmp"
	_ = os.Remove(tmpPath)
	defer os.Remove(tmpPath)

	db, err := openDBAt(tmpPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := initSchema(db); err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, rel := range files {
		info, err := os.Stat(filepath.Join(vaultPath, rel))
		if err != nil {
			return 0, err
		}
		if err := upsertTitle(tx, rel, TitleOf(rel), info.ModTime().Unix()); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	if err := db.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmpPath, dbPath(vaultPath)); err != nil {
		return 0, err
	}
	return len(files), nil
}

// IndexSource reads documents from the title index.
type IndexSource struct {
	Root string
}

// Documents returns indexed notes ordered by path. The index is first
// synced with the notes on disk.
func (s IndexSource) Documents() ([]Document, error) {
	db, err := openIndex(s.Root)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := syncIndex(db, s.Root); err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT title, path FROM titles ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Title, &d.Path); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// syncIndex brings the index in line with the vault: notes created since the
// last build are inserted, vanished notes are removed and notes whose mtime
// changed are re-stamped.
func syncIndex(db *sql.DB, vaultPath string) error {
	files, err := collectMarkdownFiles(vaultPath)
	if err != nil {
		return err
	}

	indexed, err := indexedMtimes(db)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var added, updated, removed int
	for _, rel := range files {
		info, err := os.Stat(filepath.Join(vaultPath, rel))
		if err != nil {
			continue
		}
		mtime := info.ModTime().Unix()
		old, ok := indexed[rel]
		delete(indexed, rel)
		if ok && old == mtime {
			continue
		}
		if err := upsertTitle(tx, rel, TitleOf(rel), mtime); err != nil {
			return err
		}
		if ok {
			updated++
		} else {
			added++
		}
	}
	for rel := range indexed {
		if _, err := tx.Exec(`DELETE FROM titles WHERE path = ?`, rel); err != nil {
			return err
		}
		removed++
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	if added+updated+removed > 0 {
		log.Debug().Int("added", added).Int("updated", updated).Int("removed", removed).Msg("index synced")
	}
	return nil
}

// indexedMtimes returns the mtime of every indexed path.
func indexedMtimes(db *sql.DB) (map[string]int64, error) {
	rows, err := db.Query(`SELECT path, mtime FROM titles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var path string
		var mtime sql.NullInt64
		if err := rows.Scan(&path, &mtime); err != nil {
			return nil, err
		}
		out[path] = mtime.Int64
	}
	return out, rows.Err()
}

// RenameIndexed moves an index row from oldPath to newPath. An unknown
// oldPath inserts newPath, matching TitleCatalog.Renamed.
func RenameIndexed(vaultPath, oldPath, newPath string) error {
	db, err := openIndex(vaultPath)
	if err != nil {
		return err
	}
	defer db.Close()

	oldPath, newPath = NormalizePath(oldPath), NormalizePath(newPath)
	var mtime int64
	if info, err := os.Stat(filepath.Join(vaultPath, newPath)); err == nil {
		mtime = info.ModTime().Unix()
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM titles WHERE path = ?`, oldPath); err != nil {
		return err
	}
	if err := upsertTitle(tx, newPath, TitleOf(newPath), mtime); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteIndexed removes path from the index. Unknown paths are ignored.
func DeleteIndexed(vaultPath, path string) error {
	db, err := openIndex(vaultPath)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(`DELETE FROM titles WHERE path = ?`, NormalizePath(path))
	return err
}

// StatsOptions controls which fields to return.
type StatsOptions struct {
	Fields []string // nil/empty = all
}

// StatsResult contains title index statistics.
type StatsResult struct {
	TitlesTotal     int
	TitlesExcluded  int
	TitlesDuplicate int // titles shared by more than one path
}

var validStatsFields = map[string]bool{
	"titles_total":     true,
	"titles_excluded":  true,
	"titles_duplicate": true,
}

// IndexStats reports counts for the indexed vault under cfg's exclusions.
func IndexStats(vaultPath string, cfg Config, opts StatsOptions) (*StatsResult, error) {
	for _, f := range opts.Fields {
		if !validStatsFields[f] {
			return nil, fmt.Errorf("unknown stats field: %s", f)
		}
	}

	db, err := openIndex(vaultPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := syncIndex(db, vaultPath); err != nil {
		return nil, err
	}

	result := &StatsResult{}

	if isFieldActive("titles_total", opts.Fields) {
		if err := db.QueryRow(`SELECT COUNT(*) FROM titles`).Scan(&result.TitlesTotal); err != nil {
			return nil, err
		}
	}

	if isFieldActive("titles_duplicate", opts.Fields) {
		err := db.QueryRow(`SELECT COUNT(*) FROM (SELECT title FROM titles GROUP BY title HAVING COUNT(*) > 1)`).Scan(&result.TitlesDuplicate)
		if err != nil {
			return nil, err
		}
	}

	if isFieldActive("titles_excluded", opts.Fields) {
		docs, err := IndexSource{Root: vaultPath}.Documents()
		if err != nil {
			return nil, err
		}
		names, folders := cfg.Exclusions()
		catalog := NewTitleCatalog()
		catalog.Rebuild(docs, names, folders)
		result.TitlesExcluded = len(docs) - catalog.Len()
	}

	return result, nil
}

// IndexExists reports whether BuildIndex has been run for the vault.
func IndexExists(vaultPath string) bool {
	_, err := os.Stat(dbPath(vaultPath))
	return err == nil
}

func openIndex(vaultPath string) (*sql.DB, error) {
	dbp := dbPath(vaultPath)
	if _, err := os.Stat(dbp); os.IsNotExist(err) {
		return nil, lerrors.IndexNotFound(vaultPath)
	}
	return openDBAt(dbp)
}

// isFieldActive returns true if the field is requested (or if fields is empty, meaning all).
func isFieldActive(field string, fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
