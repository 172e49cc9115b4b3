package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryotapoi/mdlinkify/internal/core"
)

type shown struct {
	title string
	hits  []string
}

type recordingPresenter struct {
	mu    sync.Mutex
	calls []shown
}

func (p *recordingPresenter) ShowMatches(title string, hits []string, _ bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, shown{title, hits})
}

func (p *recordingPresenter) all() []shown {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]shown(nil), p.calls...)
}

type fixture struct {
	vault     string
	session   *core.Session
	presenter *recordingPresenter
	watcher   *Watcher
}

func newFixture(t *testing.T, files map[string]string, opts Options) *fixture {
	t.Helper()
	vault := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(vault, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	p := &recordingPresenter{}
	s, err := core.NewSession(core.SessionOptions{
		Config:    core.DefaultConfig(),
		Source:    core.VaultSource{Root: vault},
		Presenter: p,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	opts.Vault = vault
	opts.Session = s
	opts.Logger = zerolog.Nop()
	w, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	return &fixture{vault: vault, session: s, presenter: p, watcher: w}
}

func (f *fixture) event(rel string, op fsnotify.Op) {
	f.watcher.handleEvent(fsnotify.Event{Name: filepath.Join(f.vault, filepath.FromSlash(rel)), Op: op})
}

func TestWrite_ScansNote(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Alpha.md": "",
		"Note.md":  "mentions Alpha",
	}, Options{})

	f.event("Note.md", fsnotify.Write)

	calls := f.presenter.all()
	require.Len(t, calls, 1)
	assert.Equal(t, "Note", calls[0].title)
	assert.Equal(t, []string{"Alpha"}, calls[0].hits)
}

func TestRenamePairedWithCreate(t *testing.T) {
	f := newFixture(t, map[string]string{"Alpha.md": ""}, Options{})

	require.NoError(t, os.Rename(filepath.Join(f.vault, "Alpha.md"), filepath.Join(f.vault, "Omega.md")))
	f.event("Alpha.md", fsnotify.Rename)
	f.event("Omega.md", fsnotify.Create)

	assert.True(t, f.session.Known("Omega"))
	assert.False(t, f.session.Known("Alpha"))
	assert.Equal(t, []string{"Omega"}, f.session.Titles())
}

func TestRenameUnpairedExpires(t *testing.T) {
	f := newFixture(t, map[string]string{"Alpha.md": "", "Beta.md": ""}, Options{RenameWindow: 20 * time.Millisecond})

	require.NoError(t, os.Remove(filepath.Join(f.vault, "Alpha.md")))
	f.event("Alpha.md", fsnotify.Rename)

	require.Eventually(t, func() bool { return !f.session.Known("Alpha") }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, f.session.Known("Beta"))
}

func TestSecondRenameFlushesFirst(t *testing.T) {
	f := newFixture(t, map[string]string{"Alpha.md": "", "Beta.md": ""}, Options{RenameWindow: time.Hour})

	f.event("Alpha.md", fsnotify.Rename)
	f.event("Beta.md", fsnotify.Rename)

	assert.False(t, f.session.Known("Alpha"))
	assert.True(t, f.session.Known("Beta"))
}

func TestRemove(t *testing.T) {
	f := newFixture(t, map[string]string{"Alpha.md": "", "Beta.md": ""}, Options{})

	require.NoError(t, os.Remove(filepath.Join(f.vault, "Alpha.md")))
	f.event("Alpha.md", fsnotify.Remove)

	assert.Equal(t, []string{"Beta"}, f.session.Titles())
}

func TestCreate_NewAndKnown(t *testing.T) {
	f := newFixture(t, map[string]string{"Alpha.md": ""}, Options{})

	require.NoError(t, os.WriteFile(filepath.Join(f.vault, "Gamma.md"), []byte("Alpha"), 0o644))
	f.event("Gamma.md", fsnotify.Create)
	f.event("Alpha.md", fsnotify.Create)

	assert.Equal(t, []string{"Alpha", "Gamma"}, f.session.Titles())
	calls := f.presenter.all()
	require.Len(t, calls, 2)
	assert.Equal(t, shown{"Gamma", []string{"Alpha"}}, calls[0])
	assert.Equal(t, "Alpha", calls[1].title)
}

func TestCreate_Directory(t *testing.T) {
	f := newFixture(t, nil, Options{})

	dir := filepath.Join(f.vault, "new", "deep")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	f.event("new", fsnotify.Create)

	assert.Contains(t, f.watcher.WatchList(), dir)
}

func TestIgnoredPaths(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Alpha.md":        "",
		".obsidian/x.md":  "Alpha",
		"notes/image.png": "",
	}, Options{})

	f.event(".obsidian/x.md", fsnotify.Write)
	f.event("notes/image.png", fsnotify.Write)
	f.event("Alpha.md.tmp", fsnotify.Rename)

	assert.Empty(t, f.presenter.all())
	assert.Equal(t, []string{"Alpha"}, f.session.Titles())
}

func TestIndexFollowsEvents(t *testing.T) {
	f := newFixture(t, map[string]string{"Alpha.md": "", "Beta.md": ""}, Options{})
	_, err := core.BuildIndex(f.vault)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(f.vault, "Alpha.md")))
	f.event("Alpha.md", fsnotify.Remove)
	require.NoError(t, os.Rename(filepath.Join(f.vault, "Beta.md"), filepath.Join(f.vault, "Omega.md")))
	f.event("Beta.md", fsnotify.Rename)
	f.event("Omega.md", fsnotify.Create)

	docs, err := core.IndexSource{Root: f.vault}.Documents()
	require.NoError(t, err)
	assert.Equal(t, []core.Document{{Title: "Omega", Path: "Omega.md"}}, docs)
}

func TestConfigReload(t *testing.T) {
	reloaded := core.DefaultConfig()
	reloaded.Excludes = []string{"Alpha"}
	f := newFixture(t, map[string]string{"Alpha.md": "", "Beta.md": ""}, Options{
		ReloadConfig: func() (core.Config, error) { return reloaded, nil },
	})

	f.event("mdlinkify.yaml", fsnotify.Write)

	assert.Equal(t, []string{"Beta"}, f.session.Titles())
}

func TestHidden(t *testing.T) {
	assert.True(t, hidden(".obsidian/x.md"))
	assert.True(t, hidden("notes/.trash/x.md"))
	assert.True(t, hidden("../outside.md"))
	assert.False(t, hidden("notes/x.md"))
}
