// Package watcher turns fsnotify notifications for a set of roots into an
// ordered stream of Create, Remove and Modify events.
package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/chaser/internal/apperr"
	"github.com/starford/chaser/internal/ignore"
)

// Options configures a Watcher.
type Options struct {
	// Recursive registers every directory below each root and follows
	// directories created later.
	Recursive bool
	// Ignore drops matching events and prunes matching directories. May be nil.
	Ignore *ignore.Matcher
	Logger *slog.Logger
}

// Watcher delivers filesystem events in arrival order.
type Watcher struct {
	fsw       *fsnotify.Watcher
	recursive bool
	ignore    *ignore.Matcher
	logger    *slog.Logger
	roots     []string

	q    *queue
	out  chan Event
	done chan struct{}

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New registers watches on every existing root and starts delivering events.
// Roots that do not exist are logged and skipped. Failing to register an
// existing root is an ErrWatchSetup error.
func New(roots []string, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w: %w", apperr.ErrWatchSetup, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		fsw:       fsw,
		recursive: opts.Recursive,
		ignore:    opts.Ignore,
		logger:    logger,
		q:         newQueue(),
		out:       make(chan Event),
		done:      make(chan struct{}),
	}

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			logger.Warn("watcher: root does not exist", slog.String("path", root))
			continue
		}
		if err := w.register(root, false); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watcher: %w: %s: %w", apperr.ErrWatchSetup, root, err)
		}
		w.roots = append(w.roots, root)
		logger.Info("watcher: watching", slog.String("path", root), slog.Bool("recursive", w.recursive))
	}

	w.wg.Add(2)
	go w.run()
	go w.pump()

	return w, nil
}

// Events returns the ordered event stream. It is closed after Close.
func (w *Watcher) Events() <-chan Event {
	return w.out
}

// Roots returns the roots that were registered.
func (w *Watcher) Roots() []string {
	return append([]string(nil), w.roots...)
}

// Close stops watching and closes the event stream. Undelivered events are
// dropped.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
		close(w.done)
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	defer w.q.close()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher: error", slog.String("error", err.Error()))
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) pump() {
	defer w.wg.Done()
	defer close(w.out)

	for {
		ev, ok, closed := w.q.next()
		if !ok {
			if closed {
				return
			}
			select {
			case <-w.q.notify:
				continue
			case <-w.done:
				return
			}
		}
		select {
		case w.out <- ev:
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := ev.Name

	if filepath.Base(path) == ".gitignore" && w.ignore != nil {
		w.ignore.Reload()
	}

	if w.ignore.ShouldIgnoreEvent([]string{path}) {
		return
	}

	kind := kindOf(ev.Op)
	w.q.push(Event{Kind: kind, Paths: []string{path}})

	if kind != Create || !w.recursive {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || w.ignore.ShouldIgnoreDir(path) {
		return
	}
	if err := w.register(path, true); err != nil {
		w.logger.Warn("watcher: add new dir failed",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: watching new dir", slog.String("path", path))
}

// register adds root (and, when recursive, every directory below it) to the
// fsnotify watcher. With announce set, entries found below root are queued
// as Create events, since they arrived before their directory was watched.
func (w *Watcher) register(root string, announce bool) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !w.recursive || !info.IsDir() {
		return w.fsw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.logger.Warn("watcher: skip unreadable entry", slog.String("path", path), slog.String("error", err.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path != root {
			if d.IsDir() && w.ignore.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			if announce && !w.ignore.ShouldIgnore(path) {
				w.q.push(Event{Kind: Create, Paths: []string{path}})
			}
		}
		if !d.IsDir() {
			return nil
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			if path == root {
				return addErr
			}
			if errors.Is(addErr, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			w.logger.Warn("watcher: add dir failed", slog.String("path", path), slog.String("error", addErr.Error()))
		}
		return nil
	})
}
