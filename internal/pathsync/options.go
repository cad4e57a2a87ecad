package pathsync

import (
	"log/slog"

	"github.com/starford/chaser/internal/ignore"
	"github.com/starford/chaser/internal/storage"
	"github.com/starford/chaser/internal/targetfile"
)

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithPredicate replaces the path-likeness test used when loading targets.
func WithPredicate(p targetfile.Predicate) Option {
	return func(m *Manager) {
		if p != nil {
			m.match = p
		}
	}
}

// WithIgnorePatterns filters watch events with the given patterns. It is
// ignored when WithIgnoreMatcher is also given.
func WithIgnorePatterns(patterns []string) Option {
	return func(m *Manager) {
		m.patterns = append([]string(nil), patterns...)
	}
}

// WithIgnoreMatcher filters watch events and prunes directories.
func WithIgnoreMatcher(im *ignore.Matcher) Option {
	return func(m *Manager) {
		m.matcher = im
	}
}

// WithRecursive selects recursive (default) or root-only watching.
func WithRecursive(recursive bool) Option {
	return func(m *Manager) {
		m.recursive = recursive
	}
}

// WithNotifier receives path events.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) {
		m.notifier = n
	}
}

// WithRecorder journals successful renames.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		m.recorder = r
	}
}

// WithStorage replaces the file system provider for target files.
func WithStorage(s storage.Provider) Option {
	return func(m *Manager) {
		if s != nil {
			m.store = s
		}
	}
}
