package core

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	dataDirName = ".mdlinkify"
	dbFileName  = "index.sqlite"
)

func dbPath(vaultPath string) string {
	return filepath.Join(vaultPath, dataDirName, dbFileName)
}

func ensureDataDir(vaultPath string) (string, error) {
	dir := filepath.Join(vaultPath, dataDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func openDBAt(path string) (*sql.DB, error) {
	return sql.Open("sqlite", fmt.Sprintf("file:%s", path))
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS titles (
			id    INTEGER PRIMARY KEY,
			path  TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			mtime INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_titles_title ON titles(title);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// dbExecer is satisfied by *sql.DB and *sql.Tx.
type dbExecer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsertTitle(db dbExecer, path, title string, mtime int64) error {
	_, err := db.Exec(
		`INSERT INTO titles (path, title, mtime)
		 VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   title=excluded.title,
		   mtime=excluded.mtime`,
		path, title, mtime,
	)
	return err
}
