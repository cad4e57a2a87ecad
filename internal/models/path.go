// Package models defines the shared types exposed by the sync engine.
package models

import "time"

// Path event kinds published to observers.
const (
	EventDeleted  = "deleted"
	EventRestored = "restored"
	EventRenamed  = "renamed"
)

// PathStatus describes one tracked path.
type PathStatus struct {
	Path    string   `json:"path"`
	Exists  bool     `json:"exists"`
	Targets []string `json:"targets"`
}

// TargetStatus describes one loaded target file.
type TargetStatus struct {
	Location string `json:"location"`
	Format   string `json:"format"`
	Entries  int    `json:"entries"`
	// Tracked counts the entries that fall under a watch root.
	Tracked int `json:"tracked"`
}

// RootStatus describes one watch root.
type RootStatus struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// SyncResult is the outcome of a rename propagation.
type SyncResult struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
	Found   bool   `json:"found"`
	// Mappings is the number of index entries that were re-keyed.
	Mappings int `json:"mappings"`
	// Files lists the target files whose content changed.
	Files []string `json:"files"`
}

// RenameRecord is a journaled rename propagation.
type RenameRecord struct {
	ID        int64     `json:"id"`
	OldPath   string    `json:"old_path"`
	NewPath   string    `json:"new_path"`
	Mappings  int       `json:"mappings"`
	Files     []string  `json:"files"`
	CreatedAt time.Time `json:"created_at"`
}

// Overview is a point-in-time snapshot of the engine.
type Overview struct {
	State   string         `json:"state"`
	Roots   []RootStatus   `json:"roots"`
	Targets []TargetStatus `json:"targets"`
	Paths   []PathStatus   `json:"paths"`
}
