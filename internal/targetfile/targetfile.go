// Package targetfile reads and rewrites the structured files that hold path
// references: JSON lists, YAML mappings, TOML tables and CSV rows.
package targetfile

import (
	"fmt"
	"path/filepath"

	"github.com/starford/chaser/internal/apperr"
	"github.com/starford/chaser/internal/checksum"
	"github.com/starford/chaser/internal/storage"
)

// PathEntry is one path-like value found in a target file.
type PathEntry struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	// LastKnownPath is the value Path held before the most recent rename.
	LastKnownPath string `json:"last_known_path,omitempty"`
}

// TargetFile couples a file location with its format and extracted entries.
// Location and Format never change after Open; Entries are mutated by the
// owner under its own synchronisation.
type TargetFile struct {
	Location string
	Format   Format
	Entries  []PathEntry

	store storage.Provider
	match Predicate
}

// Option customises a TargetFile.
type Option func(*TargetFile)

// WithPredicate replaces the path-likeness test.
func WithPredicate(p Predicate) Option {
	return func(t *TargetFile) {
		if p != nil {
			t.match = p
		}
	}
}

// WithStorage replaces the file system provider.
func WithStorage(s storage.Provider) Option {
	return func(t *TargetFile) {
		if s != nil {
			t.store = s
		}
	}
}

// Open detects the format of location and loads its entries. An absent
// file yields a TargetFile without entries.
func Open(location string, opts ...Option) (*TargetFile, error) {
	format, err := FormatFromPath(location)
	if err != nil {
		return nil, err
	}
	t := &TargetFile{
		Location: location,
		Format:   format,
		store:    storage.NewFS(),
		match:    LooksLikePath,
	}
	for _, opt := range opts {
		opt(t)
	}
	entries, err := load(t.store, location, format, t.match)
	if err != nil {
		return nil, err
	}
	t.Entries = entries
	return t, nil
}

// Load extracts the path entries of a file using the default predicate and
// the local file system.
func Load(location string, format Format) ([]PathEntry, error) {
	return load(storage.NewFS(), location, format, LooksLikePath)
}

func load(store storage.Provider, location string, format Format, match Predicate) ([]PathEntry, error) {
	if !store.Exists(location) {
		return []PathEntry{}, nil
	}
	data, err := store.Read(location)
	if err != nil {
		return nil, fmt.Errorf("targetfile: %w: %w", apperr.ErrIO, err)
	}

	var values []string
	if format == Rows {
		values, err = csvFields(data)
	} else {
		var tree any
		tree, err = codecFor(format).decode(data)
		if err == nil {
			values = collect(tree, match)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("targetfile: parse %s: %w: %w", location, apperr.ErrParse, err)
	}

	entries := make([]PathEntry, 0, len(values))
	for _, v := range values {
		if format == Rows && !match(v) {
			continue
		}
		entries = append(entries, PathEntry{Path: v, Exists: store.Exists(v)})
	}
	return entries, nil
}

// Name is the display name of the file.
func (t *TargetFile) Name() string {
	return filepath.Base(t.Location)
}

// Reload re-reads the entries from disk.
func (t *TargetFile) Reload() error {
	entries, err := load(t.store, t.Location, t.Format, t.match)
	if err != nil {
		return err
	}
	t.Entries = entries
	return nil
}

// EnsureExists writes the format skeleton when nothing is at the location.
// It reports whether the file was created.
func (t *TargetFile) EnsureExists() (bool, error) {
	created, err := t.store.Create(t.Location, t.Format.Skeleton())
	if err != nil {
		return false, fmt.Errorf("targetfile: create %s: %w: %w", t.Location, apperr.ErrIO, err)
	}
	return created, nil
}

// UpdatePath renames old to new: entry metadata first, then the file.
func (t *TargetFile) UpdatePath(oldPath, newPath string) error {
	t.Rename(oldPath, newPath, t.store.Exists(newPath))
	_, err := t.Rewrite(oldPath, newPath)
	return err
}

// Rename updates the metadata of every entry whose path is old. It performs
// no I/O; exists is the observed state of new.
func (t *TargetFile) Rename(oldPath, newPath string, exists bool) int {
	return t.RenameAll(map[string]string{oldPath: newPath}, map[string]bool{newPath: exists})
}

// RenameAll updates the metadata of every entry whose path is a key of subs.
// Each entry is renamed at most once. exists holds the observed state of the
// new paths.
func (t *TargetFile) RenameAll(subs map[string]string, exists map[string]bool) int {
	n := 0
	for i := range t.Entries {
		newPath, ok := subs[t.Entries[i].Path]
		if !ok || newPath == t.Entries[i].Path {
			continue
		}
		t.Entries[i].LastKnownPath = t.Entries[i].Path
		t.Entries[i].Path = newPath
		t.Entries[i].Exists = exists[newPath]
		n++
	}
	return n
}

// Rewrite replaces every value exactly equal to old with new in the file on
// disk and reports whether the file changed.
func (t *TargetFile) Rewrite(oldPath, newPath string) (bool, error) {
	return t.RewriteAll(map[string]string{oldPath: newPath})
}

// RewriteAll replaces, in a single pass, every value that is a key of subs
// with its value, and reports whether the file changed. A value produced by
// one substitution is never substituted again. It only reads Location and
// Format, so it may run without the owner's lock. An absent file is left
// alone.
func (t *TargetFile) RewriteAll(subs map[string]string) (bool, error) {
	subs = withoutIdentity(subs)
	if len(subs) == 0 || !t.store.Exists(t.Location) {
		return false, nil
	}
	data, err := t.store.Read(t.Location)
	if err != nil {
		return false, fmt.Errorf("targetfile: %w: %w", apperr.ErrIO, err)
	}

	var out []byte
	var n int
	if t.Format == Rows {
		out, n = csvRewrite(data, subs)
	} else {
		c := codecFor(t.Format)
		tree, err := c.decode(data)
		if err != nil {
			return false, fmt.Errorf("targetfile: parse %s: %w: %w", t.Location, apperr.ErrParse, err)
		}
		tree, n = replace(tree, subs)
		if n > 0 {
			out, err = c.encode(tree)
			if err != nil {
				return false, fmt.Errorf("targetfile: encode %s: %w: %w", t.Location, apperr.ErrParse, err)
			}
		}
	}
	if n == 0 || checksum.Same(data, out) {
		return false, nil
	}

	if err := t.store.Write(t.Location, out); err != nil {
		return false, fmt.Errorf("targetfile: %w: %w", apperr.ErrIO, err)
	}
	return true, nil
}

func withoutIdentity(subs map[string]string) map[string]string {
	out := make(map[string]string, len(subs))
	for k, v := range subs {
		if k != v {
			out[k] = v
		}
	}
	return out
}

// MarkDeleted flags every entry for path as absent.
func (t *TargetFile) MarkDeleted(path string) {
	t.setExists(path, false)
}

// MarkRestored flags every entry for path as present.
func (t *TargetFile) MarkRestored(path string) {
	t.setExists(path, true)
}

func (t *TargetFile) setExists(path string, exists bool) {
	for i := range t.Entries {
		if t.Entries[i].Path == path {
			t.Entries[i].Exists = exists
		}
	}
}
