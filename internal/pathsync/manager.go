// Package pathsync keeps path references in target files in step with the
// filesystem.
//
// A Manager loads every target file, indexes the path entries that fall under
// a watch root, marks entries absent or present as watch events arrive, and
// rewrites every owning file when a rename is propagated explicitly.
package pathsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/chaser/internal/apperr"
	"github.com/starford/chaser/internal/ignore"
	"github.com/starford/chaser/internal/models"
	"github.com/starford/chaser/internal/pathindex"
	"github.com/starford/chaser/internal/storage"
	"github.com/starford/chaser/internal/targetfile"
	"github.com/starford/chaser/internal/watcher"
)

// State is the lifecycle stage of a Manager.
type State int

const (
	Uninitialized State = iota
	Loaded
	Monitoring
	Stopped
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Monitoring:
		return "monitoring"
	case Stopped:
		return "stopped"
	default:
		return "uninitialized"
	}
}

// Notifier observes path changes, e.g. to push them to clients.
type Notifier interface {
	PublishPathEvent(kind, path string)
}

// Recorder keeps a journal of propagated renames.
type Recorder interface {
	Record(ctx context.Context, rec models.RenameRecord) error
}

// Manager owns the target files and the path index. Every method may be
// called from any goroutine.
type Manager struct {
	targets   []string
	roots     []string
	recursive bool
	patterns  []string
	matcher   *ignore.Matcher
	match     targetfile.Predicate
	store     storage.Provider
	logger    *slog.Logger
	notifier  Notifier
	recorder  Recorder

	// opMu serialises Refresh, SyncPathChange and StartMonitoring. The
	// event worker never takes it.
	opMu sync.Mutex

	// mu guards everything below. It is never held across file I/O.
	mu      sync.Mutex
	state   State
	files   []*targetfile.TargetFile
	tracked []int
	index   *pathindex.Index
	watcher *watcher.Watcher

	wg sync.WaitGroup
}

// New loads every target file (creating missing ones from a skeleton) and
// indexes the entries rooted under roots. Any load failure aborts.
func New(targets, roots []string, opts ...Option) (*Manager, error) {
	m := &Manager{
		targets:   append([]string(nil), targets...),
		roots:     append([]string(nil), roots...),
		recursive: true,
		match:     targetfile.LooksLikePath,
		store:     storage.NewFS(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.matcher == nil && len(m.patterns) > 0 {
		m.matcher = ignore.NewMatcher(ignore.MatcherOptions{Patterns: m.patterns})
	}

	snap, err := m.load()
	if err != nil {
		return nil, err
	}
	m.files, m.tracked, m.index = snap.files, snap.tracked, snap.index
	m.state = Loaded

	m.logger.Info("sync: tracking paths",
		slog.Int("paths", snap.index.Len()),
		slog.Int("targets", len(snap.files)))
	return m, nil
}

type snapshot struct {
	files   []*targetfile.TargetFile
	tracked []int
	index   *pathindex.Index
}

// load reads every target file from disk into a fresh snapshot.
func (m *Manager) load() (*snapshot, error) {
	snap := &snapshot{
		files:   make([]*targetfile.TargetFile, 0, len(m.targets)),
		tracked: make([]int, 0, len(m.targets)),
		index:   pathindex.New(),
	}

	for i, loc := range m.targets {
		tf, err := targetfile.Open(loc, targetfile.WithPredicate(m.match), targetfile.WithStorage(m.store))
		if err != nil {
			m.logger.Error("sync: load target failed", slog.String("path", loc), slog.String("error", err.Error()))
			return nil, fmt.Errorf("sync: load %s: %w", loc, err)
		}
		created, err := tf.EnsureExists()
		if err != nil {
			return nil, fmt.Errorf("sync: load %s: %w", loc, err)
		}
		if created {
			m.logger.Info("sync: target file created", slog.String("path", loc), slog.String("format", tf.Format.String()))
		}

		tracked := 0
		for _, e := range tf.Entries {
			if !pathindex.UnderAny(e.Path, m.roots) {
				continue
			}
			snap.index.Add(e.Path, e.Exists, i)
			tracked++
		}
		if skipped := len(tf.Entries) - tracked; skipped > 0 {
			m.logger.Warn("sync: entries outside watch roots",
				slog.String("path", loc),
				slog.Int("skipped", skipped))
		}
		m.logger.Debug("sync: target loaded",
			slog.String("path", loc),
			slog.Int("entries", len(tf.Entries)),
			slog.Int("tracked", tracked))

		snap.files = append(snap.files, tf)
		snap.tracked = append(snap.tracked, tracked)
	}
	return snap, nil
}

// State returns the lifecycle stage.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ignored reports whether path would be filtered out of watch events.
func (m *Manager) Ignored(path string) bool {
	return m.matcher.ShouldIgnore(path)
}

// StartMonitoring registers the watches and starts the single worker that
// applies events in arrival order.
func (m *Manager) StartMonitoring() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	switch m.State() {
	case Monitoring:
		return fmt.Errorf("sync: %w", apperr.ErrAlreadyRunning)
	case Stopped:
		return errors.New("sync: manager is stopped")
	}

	w, err := watcher.New(m.roots, watcher.Options{
		Recursive: m.recursive,
		Ignore:    m.matcher,
		Logger:    m.logger,
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.state == Stopped {
		m.mu.Unlock()
		_ = w.Close()
		return errors.New("sync: manager is stopped")
	}
	m.watcher = w
	m.state = Monitoring
	m.mu.Unlock()

	m.wg.Add(1)
	go m.work(w.Events())

	m.logger.Info("sync: monitoring started",
		slog.Int("roots", len(w.Roots())),
		slog.Bool("recursive", m.recursive))
	return nil
}

// Close stops monitoring and waits for the worker to exit. It is safe to
// call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.state == Stopped {
		m.mu.Unlock()
		return nil
	}
	wasMonitoring := m.state == Monitoring
	w := m.watcher
	m.watcher = nil
	m.state = Stopped
	m.mu.Unlock()

	var err error
	if w != nil {
		err = w.Close()
	}
	m.wg.Wait()

	if wasMonitoring {
		m.logger.Info("sync: monitoring stopped")
	}
	return err
}

// Refresh reloads every target file and rebuilds the index from scratch,
// dropping tombstones. On failure the current state is kept.
func (m *Manager) Refresh() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	snap, err := m.load()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.files, m.tracked, m.index = snap.files, snap.tracked, snap.index
	m.mu.Unlock()

	m.logger.Info("sync: refreshed",
		slog.Int("paths", snap.index.Len()),
		slog.Int("targets", len(snap.files)))
	return nil
}

// Status lists every tracked path with its existence and owning files.
func (m *Manager) Status() []models.PathStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := m.index.All()
	out := make([]models.PathStatus, 0, len(all))
	for _, mp := range all {
		names := make([]string, 0, len(mp.Owners))
		for _, o := range mp.Owners {
			if o < len(m.files) {
				names = append(names, m.files[o].Name())
			}
		}
		out = append(out, models.PathStatus{
			Path:    mp.CurrentPath,
			Exists:  mp.Exists,
			Targets: names,
		})
	}
	return out
}

// Targets lists the loaded target files.
func (m *Manager) Targets() []models.TargetStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.TargetStatus, 0, len(m.files))
	for i, tf := range m.files {
		out = append(out, models.TargetStatus{
			Location: tf.Location,
			Format:   tf.Format.String(),
			Entries:  len(tf.Entries),
			Tracked:  m.tracked[i],
		})
	}
	return out
}

// Entries returns a copy of the entries of the target file at location.
func (m *Manager) Entries(location string) ([]targetfile.PathEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tf := range m.files {
		if tf.Location == location {
			return append([]targetfile.PathEntry(nil), tf.Entries...), nil
		}
	}
	return nil, fmt.Errorf("sync: target %s: %w", location, apperr.ErrNotFound)
}

// Roots lists the watch roots with their current existence.
func (m *Manager) Roots() []models.RootStatus {
	out := make([]models.RootStatus, 0, len(m.roots))
	for _, r := range m.roots {
		out = append(out, models.RootStatus{Path: r, Exists: m.store.Exists(r)})
	}
	return out
}
