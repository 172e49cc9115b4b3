package core

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	lerrors "github.com/ryotapoi/mdlinkify/internal/errors"
)

// writeVault creates files (vault-relative path -> content) under a new temp dir.
func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func readNote(t *testing.T, vault, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(vault, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func docPaths(docs []Document) []string {
	var out []string
	for _, d := range docs {
		out = append(out, d.Path)
	}
	return out
}

// indexedPaths reads the index rows as stored, without syncing.
func indexedPaths(t *testing.T, vault string) []string {
	t.Helper()
	db, err := openIndex(vault)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT path FROM titles ORDER BY path`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			t.Fatal(err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestVaultSource_SkipsHiddenAndNonMarkdown(t *testing.T) {
	vault := writeVault(t, map[string]string{
		"A.md":             "",
		"sub/B.md":         "",
		".obsidian/C.md":   "",
		"image.png":        "",
		"sub/.hidden/D.md": "",
	})
	docs, err := VaultSource{Root: vault}.Documents()
	if err != nil {
		t.Fatal(err)
	}
	want := []Document{{Title: "A", Path: "A.md"}, {Title: "B", Path: "sub/B.md"}}
	if !reflect.DeepEqual(docs, want) {
		t.Errorf("Documents() = %+v, want %+v", docs, want)
	}
}

func TestBuildIndex(t *testing.T) {
	vault := writeVault(t, map[string]string{
		"A.md":     "",
		"sub/B.md": "",
	})
	n, err := BuildIndex(vault)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("indexed %d notes, want 2", n)
	}
	if _, err := os.Stat(dbPath(vault) + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp index left behind")
	}

	docs, err := IndexSource{Root: vault}.Documents()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"A.md", "sub/B.md"}; !reflect.DeepEqual(docPaths(docs), want) {
		t.Errorf("paths = %v, want %v", docPaths(docs), want)
	}
	if _, ok := OpenSource(vault).(IndexSource); !ok {
		t.Error("OpenSource should prefer the index")
	}
}

func TestBuildIndex_Rebuild(t *testing.T) {
	vault := writeVault(t, map[string]string{"A.md": ""})
	if _, err := BuildIndex(vault); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(vault, "A.md")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(vault, "B.md"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := BuildIndex(vault); err != nil {
		t.Fatal(err)
	}
	docs, err := IndexSource{Root: vault}.Documents()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"B.md"}; !reflect.DeepEqual(docPaths(docs), want) {
		t.Errorf("paths = %v, want %v", docPaths(docs), want)
	}
}

func TestIndexSource_NotBuilt(t *testing.T) {
	vault := t.TempDir()
	_, err := IndexSource{Root: vault}.Documents()
	if !lerrors.HasCode(err, lerrors.ErrIndexNotFound) {
		t.Fatalf("err = %v, want INDEX_NOT_FOUND", err)
	}
	if _, ok := OpenSource(vault).(VaultSource); !ok {
		t.Error("OpenSource should fall back to a vault walk")
	}
}

func TestRenameAndDeleteIndexed(t *testing.T) {
	vault := writeVault(t, map[string]string{"A.md": "", "B.md": ""})
	if _, err := BuildIndex(vault); err != nil {
		t.Fatal(err)
	}

	if err := RenameIndexed(vault, "A.md", "Renamed.md"); err != nil {
		t.Fatal(err)
	}
	if err := DeleteIndexed(vault, "B.md"); err != nil {
		t.Fatal(err)
	}
	if err := DeleteIndexed(vault, "Missing.md"); err != nil {
		t.Fatal(err)
	}

	if got, want := indexedPaths(t, vault), []string{"Renamed.md"}; !reflect.DeepEqual(got, want) {
		t.Errorf("indexed paths = %v, want %v", got, want)
	}
}

func TestRenameIndexed_UnknownOldInserts(t *testing.T) {
	vault := writeVault(t, map[string]string{"A.md": ""})
	if _, err := BuildIndex(vault); err != nil {
		t.Fatal(err)
	}
	if err := RenameIndexed(vault, "Ghost.md", "New.md"); err != nil {
		t.Fatal(err)
	}
	if got, want := indexedPaths(t, vault), []string{"A.md", "New.md"}; !reflect.DeepEqual(got, want) {
		t.Errorf("indexed paths = %v, want %v", got, want)
	}
}

func TestIndexSource_SyncsWithDisk(t *testing.T) {
	vault := writeVault(t, map[string]string{"A.md": "", "B.md": ""})
	if _, err := BuildIndex(vault); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(vault, "B.md")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(vault, "C.md"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	docs, err := IndexSource{Root: vault}.Documents()
	if err != nil {
		t.Fatal(err)
	}
	want := []Document{{Title: "A", Path: "A.md"}, {Title: "C", Path: "C.md"}}
	if !reflect.DeepEqual(docs, want) {
		t.Errorf("Documents() = %+v, want %+v", docs, want)
	}
	if got := indexedPaths(t, vault); !reflect.DeepEqual(got, []string{"A.md", "C.md"}) {
		t.Errorf("indexed paths = %v, want [A.md C.md]", got)
	}
}

func TestIndexSource_RestampsChangedMtime(t *testing.T) {
	vault := writeVault(t, map[string]string{"A.md": ""})
	if _, err := BuildIndex(vault); err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(filepath.Join(vault, "A.md"), later, later); err != nil {
		t.Fatal(err)
	}

	if _, err := (IndexSource{Root: vault}).Documents(); err != nil {
		t.Fatal(err)
	}

	db, err := openIndex(vault)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	mtimes, err := indexedMtimes(db)
	if err != nil {
		t.Fatal(err)
	}
	if mtimes["A.md"] != later.Unix() {
		t.Errorf("mtime = %d, want %d", mtimes["A.md"], later.Unix())
	}
}

func TestIndexStats_CountsNotesAddedAfterBuild(t *testing.T) {
	vault := writeVault(t, map[string]string{"A.md": ""})
	if _, err := BuildIndex(vault); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(vault, "B.md"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := IndexStats(vault, DefaultConfig(), StatsOptions{Fields: []string{"titles_total"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.TitlesTotal != 2 {
		t.Errorf("titles_total = %d, want 2", res.TitlesTotal)
	}
}

func TestIndexStats(t *testing.T) {
	vault := writeVault(t, map[string]string{
		"A.md":              "",
		"Daily.md":          "",
		"x/Dup.md":          "",
		"y/Dup.md":          "",
		"templates/Tmpl.md": "",
	})
	if _, err := BuildIndex(vault); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.Excludes = []string{"Daily", "templates/"}

	res, err := IndexStats(vault, cfg, StatsOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.TitlesTotal != 5 || res.TitlesExcluded != 2 || res.TitlesDuplicate != 1 {
		t.Errorf("stats = %+v, want total=5 excluded=2 duplicate=1", res)
	}

	res, err = IndexStats(vault, cfg, StatsOptions{Fields: []string{"titles_total"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.TitlesTotal != 5 || res.TitlesExcluded != 0 {
		t.Errorf("stats = %+v, want only titles_total", res)
	}

	if _, err := IndexStats(vault, cfg, StatsOptions{Fields: []string{"bogus"}}); err == nil {
		t.Error("expected error for unknown field")
	}
}
