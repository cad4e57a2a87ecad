// Package syncservice is the domain layer shared by the HTTP API and the MCP
// server. It validates requests and fans them out to the sync manager and the
// rename journal.
package syncservice

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/chaser/internal/apperr"
	"github.com/starford/chaser/internal/history"
	"github.com/starford/chaser/internal/models"
	"github.com/starford/chaser/internal/pathsync"
	"github.com/starford/chaser/internal/targetfile"
)

// RenameRequest asks for a path change to be propagated.
type RenameRequest struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Validate checks that both paths are present.
func (r *RenameRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Old, validation.Required),
		validation.Field(&r.New, validation.Required),
	)
}

// Service coordinates the sync manager and the rename journal.
type Service struct {
	mgr     *pathsync.Manager
	journal history.Journal
}

// NewService creates a new sync service. journal may be nil.
func NewService(mgr *pathsync.Manager, journal history.Journal) *Service {
	return &Service{mgr: mgr, journal: journal}
}

// Status returns the engine state, roots, targets and tracked paths.
func (s *Service) Status(_ context.Context) models.Overview {
	return models.Overview{
		State:   s.mgr.State().String(),
		Roots:   nonNilSlice(s.mgr.Roots()),
		Targets: nonNilSlice(s.mgr.Targets()),
		Paths:   nonNilSlice(s.mgr.Status()),
	}
}

// Targets lists the loaded target files.
func (s *Service) Targets(_ context.Context) []models.TargetStatus {
	return nonNilSlice(s.mgr.Targets())
}

// Entries returns the entries of one target file.
func (s *Service) Entries(_ context.Context, location string) ([]targetfile.PathEntry, error) {
	entries, err := s.mgr.Entries(location)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(entries), nil
}

// SyncPathChange validates req and propagates the rename.
func (s *Service) SyncPathChange(ctx context.Context, req RenameRequest) (models.SyncResult, error) {
	if err := req.Validate(); err != nil {
		return models.SyncResult{}, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return s.mgr.SyncPathChange(ctx, req.Old, req.New)
}

// Refresh reloads every target file and returns the new snapshot.
func (s *Service) Refresh(ctx context.Context) (models.Overview, error) {
	if err := s.mgr.Refresh(); err != nil {
		return models.Overview{}, err
	}
	return s.Status(ctx), nil
}

// History returns the most recent journaled renames.
func (s *Service) History(ctx context.Context, limit int) ([]models.RenameRecord, error) {
	if s.journal == nil {
		return []models.RenameRecord{}, nil
	}
	return s.journal.Recent(ctx, limit)
}

// CheckIgnore reports whether path would be dropped from watch events.
func (s *Service) CheckIgnore(_ context.Context, path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("%w: path is required", apperr.ErrInvalidInput)
	}
	return s.mgr.Ignored(path), nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
