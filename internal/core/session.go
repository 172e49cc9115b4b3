package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Presenter displays the titles found in the current note. It is called
// outside the session lock and may call back into the session.
type Presenter interface {
	ShowMatches(title string, hits []string, showDetails bool)
}

// AutoConvertResult describes one debounced conversion.
type AutoConvertResult struct {
	Title string
	Edits int
	Err   error
}

// SessionOptions configures a Session.
type SessionOptions struct {
	Config    Config
	Source    TitleSource
	Presenter Presenter       // optional
	Logger    *zerolog.Logger // optional; nil disables logging

	// OnAutoConvert is called after every debounced conversion attempt.
	OnAutoConvert func(AutoConvertResult)
}

// Session holds the live state of one editing session: the catalog, the
// note being edited, its last scan and the pending auto-convert timer.
// All methods are safe to call from concurrent event handlers; they are
// serialized on one lock.
type Session struct {
	mu         sync.Mutex
	cfg        Config
	source     TitleSource
	catalog    *TitleCatalog
	classifier *BoundaryClassifier
	presenter  Presenter
	log        zerolog.Logger
	onAuto     func(AutoConvertResult)

	current string
	buf     Buffer
	hits    []string

	timer    *time.Timer
	timerGen uint64
}

// NewSession validates the config and loads the catalog from the source.
func NewSession(opts SessionOptions) (*Session, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	s := &Session{
		cfg:        opts.Config,
		source:     opts.Source,
		catalog:    NewTitleCatalog(),
		classifier: NewBoundaryClassifier(opts.Config.NonBoundaryScripts),
		presenter:  opts.Presenter,
		log:        logger,
		onAuto:     opts.OnAutoConvert,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rebuilds the catalog from the source.
func (s *Session) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked()
}

func (s *Session) reloadLocked() error {
	docs, err := s.source.Documents()
	if err != nil {
		return err
	}
	names, folders := s.cfg.Exclusions()
	s.catalog.Rebuild(docs, names, folders)
	s.log.Debug().Int("titles", s.catalog.Len()).Msg("catalog rebuilt")
	return nil
}

// Renamed applies a note rename to the catalog.
func (s *Session) Renamed(newName, oldName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog.Renamed(newName, oldName)
	s.log.Debug().Str("old", oldName).Str("new", newName).Msg("title renamed")
}

// Deleted removes a note's title from the catalog.
func (s *Session) Deleted(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog.Deleted(name)
	s.log.Debug().Str("title", name).Msg("title deleted")
}

// Added appends the title of a newly created note unless it is already
// known or excluded by the current config.
func (s *Session) Added(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	title := TitleOf(path)
	if s.catalog.Contains(title) || s.excludedLocked(path) {
		return
	}
	s.catalog.Add(title)
	s.log.Debug().Str("title", title).Msg("title added")
}

// Known reports whether title is in the catalog.
func (s *Session) Known(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Contains(title)
}

// Titles returns the catalog in matching order.
func (s *Session) Titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Titles()
}

// Hits returns the result of the last scan.
func (s *Session) Hits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.hits...)
}

// TextChanged makes buf the current note, rescans it and, when auto-convert
// is on, re-arms the debounce timer. The new scan replaces the previous one.
func (s *Session) TextChanged(title string, buf Buffer) {
	s.mu.Lock()
	s.current = title
	s.buf = buf
	s.rescanLocked()
	if s.cfg.AutoConvert {
		s.armLocked()
	}
	title, hits, show := s.current, append([]string(nil), s.hits...), s.cfg.ShowDetails
	s.mu.Unlock()

	s.present(title, hits, show)
}

// Convert links the last scan's hits in the current buffer. Positions are
// derived again from the buffer's text. Returns the number of edits applied.
func (s *Session) Convert() (int, error) {
	s.mu.Lock()
	n, err := s.convertLocked()
	title, hits, show := s.current, append([]string(nil), s.hits...), s.cfg.ShowDetails
	s.mu.Unlock()

	if err == nil && n > 0 {
		s.present(title, hits, show)
	}
	return n, err
}

// SetConfig swaps the configuration, rebuilds the catalog and rescans the
// current note.
func (s *Session) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.classifier = NewBoundaryClassifier(cfg.NonBoundaryScripts)
	if !cfg.AutoConvert {
		s.stopTimerLocked()
	}
	if err := s.reloadLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.rescanLocked()
	title, hits, show := s.current, append([]string(nil), s.hits...), s.cfg.ShowDetails
	hasBuf := s.buf != nil
	s.mu.Unlock()

	if hasBuf {
		s.present(title, hits, show)
	}
	return nil
}

// Close cancels any pending auto-convert.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
}

func (s *Session) excludedLocked(path string) bool {
	names, folders := s.cfg.Exclusions()
	title := TitleOf(path)
	for _, n := range names {
		if n == title {
			return true
		}
	}
	return inExcludedFolder(NormalizePath(path), folders)
}

func (s *Session) rescanLocked() {
	if s.buf == nil {
		s.hits = nil
		return
	}
	s.hits = ScanTitles(s.buf.Text(), s.catalog, s.current, s.classifier)
}

func (s *Session) convertLocked() (int, error) {
	if s.buf == nil || len(s.hits) == 0 {
		return 0, nil
	}
	plan := PlanEdits(s.buf.Text(), s.hits, s.classifier)
	if err := Rewrite(s.buf, plan); err != nil {
		s.log.Warn().Err(err).Str("title", s.current).Msg("conversion failed")
		return 0, err
	}
	s.log.Info().Str("title", s.current).Int("edits", len(plan)).Msg("converted mentions to links")
	s.rescanLocked()
	return len(plan), nil
}

// armLocked cancels any pending timer and starts a new one. A timer that
// already fired but lost the race for the lock sees a newer generation and
// does nothing.
func (s *Session) armLocked() {
	s.stopTimerLocked()
	s.timerGen++
	gen := s.timerGen
	s.timer = time.AfterFunc(s.cfg.Delay(), func() { s.fire(gen) })
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
}

func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.timerGen || !s.cfg.AutoConvert {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	n, err := s.convertLocked()
	res := AutoConvertResult{Title: s.current, Edits: n, Err: err}
	title, hits, show := s.current, append([]string(nil), s.hits...), s.cfg.ShowDetails
	s.mu.Unlock()

	if err == nil && n > 0 {
		s.present(title, hits, show)
	}
	if s.onAuto != nil {
		s.onAuto(res)
	}
}

func (s *Session) present(title string, hits []string, show bool) {
	if s.presenter != nil {
		s.presenter.ShowMatches(title, hits, show)
	}
}
