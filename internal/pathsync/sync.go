package pathsync

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/starford/chaser/internal/models"
	"github.com/starford/chaser/internal/pathindex"
)

// SyncPathChange propagates the rename of old to new. Every tracked path
// equal to old or below it is rewritten in each owning target file and
// re-keyed in the index. An untracked old path is not an error: the result
// reports Found=false and nothing changes.
//
// Files are rewritten without holding the state lock. If a write fails the
// renames completed so far are kept and the error is returned.
func (m *Manager) SyncPathChange(ctx context.Context, oldPath, newPath string) (models.SyncResult, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	res := models.SyncResult{OldPath: oldPath, NewPath: newPath, Files: []string{}}

	m.mu.Lock()
	snap := m.index.Clone()
	files := m.files
	m.mu.Unlock()

	if oldPath == newPath {
		_, res.Found = snap.Get(oldPath)
		return res, nil
	}

	moves := snap.Collect(oldPath, newPath)
	if len(moves) == 0 {
		m.logger.Info("sync: path not tracked", slog.String("old", oldPath))
		return res, nil
	}
	res.Found = true

	m.logger.Info("sync: propagating rename",
		slog.String("old", oldPath),
		slog.String("new", newPath),
		slog.Int("mappings", len(moves)))

	// One substitution set per owning file, applied in a single pass.
	subs := make(map[int]map[string]string)
	var owners []int
	exists := make(map[string]bool, len(moves))
	for _, mv := range moves {
		for _, o := range mv.Owners {
			if subs[o] == nil {
				subs[o] = make(map[string]string)
				owners = append(owners, o)
			}
			subs[o][mv.OldKey] = mv.NewKey
		}
		exists[mv.NewKey] = m.store.Exists(mv.NewKey)
	}
	slices.Sort(owners)

	rewritten := make(map[int]bool, len(owners))
	var rewriteErr error
	for _, o := range owners {
		if err := ctx.Err(); err != nil {
			rewriteErr = err
			break
		}
		tf := files[o]
		ok, err := tf.RewriteAll(subs[o])
		if err != nil {
			rewriteErr = fmt.Errorf("sync: update %s: %w", tf.Location, err)
			break
		}
		rewritten[o] = true
		if ok && !slices.Contains(res.Files, tf.Location) {
			res.Files = append(res.Files, tf.Location)
			m.logger.Info("sync: target file updated", slog.String("path", tf.Location))
		}
	}

	done := make([]pathindex.Move, 0, len(moves))
	for _, mv := range moves {
		if allRewritten(mv.Owners, rewritten) {
			done = append(done, mv)
		}
	}

	m.mu.Lock()
	for _, o := range owners {
		if rewritten[o] && o < len(m.files) {
			m.files[o].RenameAll(subs[o], exists)
		}
	}
	m.index.RekeyAll(done, exists)
	m.mu.Unlock()
	res.Mappings = len(done)

	for _, mv := range done {
		m.notify(models.EventRenamed, mv.NewKey)
	}
	if rewriteErr != nil {
		return res, rewriteErr
	}

	if m.recorder != nil {
		rec := models.RenameRecord{
			OldPath:   oldPath,
			NewPath:   newPath,
			Mappings:  res.Mappings,
			Files:     res.Files,
			CreatedAt: time.Now().UTC(),
		}
		if err := m.recorder.Record(ctx, rec); err != nil {
			m.logger.Warn("sync: journal rename failed", slog.String("error", err.Error()))
		}
	}
	return res, nil
}

func allRewritten(owners []int, rewritten map[int]bool) bool {
	for _, o := range owners {
		if !rewritten[o] {
			return false
		}
	}
	return true
}
