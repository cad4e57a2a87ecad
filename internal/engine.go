package internal

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/chaser/internal/history"
	"github.com/starford/chaser/internal/pathsync"
	"github.com/starford/chaser/internal/syncservice"
	"github.com/starford/chaser/internal/targetfile"
)

var errConfigRequired = errors.New("config is required")

// Engine bundles the sync manager with its journal and service layer.
type Engine struct {
	Manager *pathsync.Manager
	Service *syncservice.Service
	journal *history.DB
}

// OpenEngine expands the configured targets, opens the journal when one is
// configured, and loads the sync manager. notifier may be nil.
func OpenEngine(cfg *Config, logger *slog.Logger, notifier pathsync.Notifier) (*Engine, error) {
	targets, err := targetfile.Expand(cfg.Sync.Targets)
	if err != nil {
		return nil, fmt.Errorf("expand targets: %w", err)
	}

	opts := []pathsync.Option{
		pathsync.WithLogger(logger),
		pathsync.WithRecursive(cfg.Sync.Recursive),
		pathsync.WithIgnoreMatcher(cfg.Sync.Matcher()),
	}
	if notifier != nil {
		opts = append(opts, pathsync.WithNotifier(notifier))
	}

	e := &Engine{}
	var journal history.Journal
	if cfg.History.Enabled() {
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("init history: %w", err)
		}
		e.journal = db
		journal = db
		opts = append(opts, pathsync.WithRecorder(db))
	}

	mgr, err := pathsync.New(targets, cfg.Sync.WatchPaths, opts...)
	if err != nil {
		e.closeJournal()
		return nil, err
	}
	e.Manager = mgr
	e.Service = syncservice.NewService(mgr, journal)
	return e, nil
}

// Close stops the manager and closes the journal.
func (e *Engine) Close() error {
	err := e.Manager.Close()
	return errors.Join(err, e.closeJournal())
}

func (e *Engine) closeJournal() error {
	if e.journal == nil {
		return nil
	}
	return e.journal.Close()
}
