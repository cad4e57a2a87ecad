package pathsync

import (
	"fmt"
	"log/slog"

	"github.com/starford/chaser/internal/models"
	"github.com/starford/chaser/internal/watcher"
)

// work applies events one at a time until the stream closes. A failing
// event is logged and skipped.
func (m *Manager) work(events <-chan watcher.Event) {
	defer m.wg.Done()
	for ev := range events {
		if err := m.safeHandle(ev); err != nil {
			m.logger.Error("sync: event handling failed",
				slog.String("kind", ev.Kind.String()),
				slog.Any("paths", ev.Paths),
				slog.String("error", err.Error()))
		}
	}
}

func (m *Manager) safeHandle(ev watcher.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return m.handleEvent(ev)
}

func (m *Manager) handleEvent(ev watcher.Event) error {
	switch ev.Kind {
	case watcher.Create:
		for _, p := range ev.Paths {
			m.pathCreated(p)
		}
	case watcher.Remove:
		for _, p := range ev.Paths {
			m.pathRemoved(p)
		}
	case watcher.Modify, watcher.Other:
		// Renames are only propagated through SyncPathChange.
	default:
		return fmt.Errorf("unknown event kind %d", ev.Kind)
	}
	return nil
}

// pathCreated marks every absent mapping for path as present again.
func (m *Manager) pathCreated(path string) {
	var restored []string

	m.mu.Lock()
	for _, mp := range m.index.Match(path) {
		if mp.Exists {
			continue
		}
		mp.Exists = true
		for _, o := range mp.Owners {
			if o < len(m.files) {
				m.files[o].MarkRestored(mp.CurrentPath)
			}
		}
		restored = append(restored, mp.CurrentPath)
	}
	m.mu.Unlock()

	for _, p := range restored {
		m.logger.Info("sync: path restored", slog.String("path", p))
		m.notify(models.EventRestored, p)
	}
}

// pathRemoved marks the mapping for path as absent. The mapping stays in
// the index so a later Create can restore it.
func (m *Manager) pathRemoved(path string) {
	var deleted []string

	m.mu.Lock()
	for _, mp := range m.index.Match(path) {
		mp.Exists = false
		for _, o := range mp.Owners {
			if o < len(m.files) {
				m.files[o].MarkDeleted(mp.CurrentPath)
			}
		}
		deleted = append(deleted, mp.CurrentPath)
	}
	m.mu.Unlock()

	for _, p := range deleted {
		m.logger.Info("sync: path deleted, tracking continues", slog.String("path", p))
		m.notify(models.EventDeleted, p)
	}
}

func (m *Manager) notify(kind, path string) {
	if m.notifier != nil {
		m.notifier.PublishPathEvent(kind, path)
	}
}
