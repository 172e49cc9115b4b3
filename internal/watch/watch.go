// Package watch feeds filesystem changes in a vault to a core.Session.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ryotapoi/mdlinkify/internal/core"
)

// DefaultRenameWindow is how long a Rename event waits for the Create that
// carries the note's new name before it is treated as a delete.
const DefaultRenameWindow = 250 * time.Millisecond

const configFileName = "mdlinkify.yaml"

// Options configures a Watcher.
type Options struct {
	Vault   string
	Session *core.Session
	Logger  zerolog.Logger

	// ReloadConfig is called when mdlinkify.yaml changes. Nil ignores
	// config changes.
	ReloadConfig func() (core.Config, error)

	RenameWindow time.Duration // zero means DefaultRenameWindow
}

// Watcher maps fsnotify events to session and index updates:
// Write → TextChanged, Remove → Deleted, Rename then Create → Renamed,
// Create alone → Added (or TextChanged if the title is already known).
type Watcher struct {
	vault   string
	session *core.Session
	log     zerolog.Logger
	reload  func() (core.Config, error)
	window  time.Duration
	fs      *fsnotify.Watcher

	mu      sync.Mutex
	pending string // vault-relative path of an unpaired Rename
	timer   *time.Timer
}

// New creates a watcher over every non-hidden directory of the vault.
func New(opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		vault:   opts.Vault,
		session: opts.Session,
		log:     opts.Logger,
		reload:  opts.ReloadConfig,
		window:  opts.RenameWindow,
		fs:      fsw,
	}
	if w.window <= 0 {
		w.window = DefaultRenameWindow
	}
	if err := w.addDirs(opts.Vault); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("add directories to watcher: %w", err)
	}
	return w, nil
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

// Close stops the watcher and drops any unpaired rename.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = ""
	w.mu.Unlock()
	return w.fs.Close()
}

// WatchList returns the watched directories.
func (w *Watcher) WatchList() []string {
	return w.fs.WatchList()
}

// addDirs recursively adds directories to the watcher, skipping hidden dirs.
func (w *Watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != w.vault {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	rel, err := filepath.Rel(w.vault, event.Name)
	if err != nil {
		w.log.Warn().Err(err).Str("path", event.Name).Msg("event outside vault")
		return
	}
	rel = core.NormalizePath(rel)
	if hidden(rel) {
		return
	}

	if rel == configFileName {
		if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
			w.reloadConfig()
		}
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirs(event.Name); err != nil {
				w.log.Warn().Err(err).Str("dir", rel).Msg("failed to watch directory")
			}
			return
		}
	}

	if !strings.HasSuffix(strings.ToLower(rel), ".md") {
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		w.created(rel)
	case event.Has(fsnotify.Write):
		w.textChanged(rel)
	case event.Has(fsnotify.Remove):
		w.removed(rel)
	case event.Has(fsnotify.Rename):
		w.renamed(rel)
	}
}

func (w *Watcher) created(rel string) {
	w.mu.Lock()
	old := w.pending
	w.pending = ""
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	title := core.TitleOf(rel)
	switch {
	case old != "":
		w.session.Renamed(title, core.TitleOf(old))
		w.updateIndex(func() error { return core.RenameIndexed(w.vault, old, rel) })
		w.log.Info().Str("old", old).Str("file", rel).Msg("note renamed")
	case w.session.Known(title):
		// atomic saves replace the file, which shows up as a Create
		w.textChanged(rel)
		return
	default:
		w.session.Added(rel)
		w.updateIndex(func() error { return core.RenameIndexed(w.vault, "", rel) })
		w.log.Info().Str("file", rel).Msg("note added")
	}
	w.textChanged(rel)
}

func (w *Watcher) renamed(rel string) {
	w.mu.Lock()
	prev := w.pending
	w.pending = rel
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.window, func() { w.expire(rel) })
	w.mu.Unlock()

	if prev != "" {
		w.removed(prev)
	}
}

// expire treats an unpaired rename as a delete (the note left the vault).
func (w *Watcher) expire(rel string) {
	w.mu.Lock()
	if w.pending != rel {
		w.mu.Unlock()
		return
	}
	w.pending = ""
	w.timer = nil
	w.mu.Unlock()
	w.removed(rel)
}

func (w *Watcher) removed(rel string) {
	w.session.Deleted(core.TitleOf(rel))
	w.updateIndex(func() error { return core.DeleteIndexed(w.vault, rel) })
	w.log.Info().Str("file", rel).Msg("note removed")
}

func (w *Watcher) textChanged(rel string) {
	buf, err := core.OpenFileBuffer(filepath.Join(w.vault, filepath.FromSlash(rel)))
	if err != nil {
		w.log.Debug().Err(err).Str("file", rel).Msg("skip unreadable note")
		return
	}
	w.session.TextChanged(core.TitleOf(rel), buf)
}

func (w *Watcher) reloadConfig() {
	if w.reload == nil {
		return
	}
	cfg, err := w.reload()
	if err != nil {
		w.log.Warn().Err(err).Msg("config not reloaded")
		return
	}
	if err := w.session.SetConfig(cfg); err != nil {
		w.log.Warn().Err(err).Msg("config not applied")
		return
	}
	w.log.Info().Msg("config reloaded")
}

func (w *Watcher) updateIndex(fn func() error) {
	if !core.IndexExists(w.vault) {
		return
	}
	if err := fn(); err != nil {
		w.log.Warn().Err(err).Msg("index update failed")
	}
}

// hidden reports whether any path element starts with a dot.
func hidden(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
