package api

import (
	"github.com/starford/chaser/internal/models"
	"github.com/starford/chaser/internal/syncservice"
	"github.com/starford/chaser/internal/targetfile"
)

// SyncRequest is the request body for propagating a rename.
type SyncRequest = syncservice.RenameRequest

// StatusResponse is the engine snapshot.
type StatusResponse = models.Overview

// SyncResponse is the outcome of a rename propagation.
type SyncResponse = models.SyncResult

// TargetListResponse wraps the loaded target files.
type TargetListResponse struct {
	Targets []models.TargetStatus `json:"targets" validate:"required"`
}

// EntryListResponse wraps the entries of one target file.
type EntryListResponse struct {
	Location string                 `json:"location" example:"/home/me/links.json" validate:"required"`
	Entries  []targetfile.PathEntry `json:"entries" validate:"required"`
}

// HistoryResponse wraps journaled renames, newest first.
type HistoryResponse struct {
	Renames []models.RenameRecord `json:"renames" validate:"required"`
}

// IgnoreResponse reports whether a path is filtered from watch events.
type IgnoreResponse struct {
	Path    string `json:"path" example:"/work/build/out.log" validate:"required"`
	Ignored bool   `json:"ignored"`
}
