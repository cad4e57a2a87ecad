// Package pathindex tracks path references by their current value.
//
// An Index is not safe for concurrent use; callers guard it.
package pathindex

import (
	"path/filepath"
	"sort"
	"strings"
)

// Mapping is the bookkeeping kept for one tracked path.
type Mapping struct {
	OriginalPath string
	CurrentPath  string
	Exists       bool
	// Owners lists target file positions in insertion order, without
	// duplicates.
	Owners []int
}

func (m *Mapping) addOwner(owner int) {
	for _, o := range m.Owners {
		if o == owner {
			return
		}
	}
	m.Owners = append(m.Owners, owner)
}

// Index maps a current path to its Mapping. The key always equals the
// mapping's CurrentPath.
type Index struct {
	mappings map[string]*Mapping
}

// New returns an empty Index.
func New() *Index {
	return &Index{mappings: make(map[string]*Mapping)}
}

// Add records that owner references path. A path already tracked gains the
// owner; otherwise a new Mapping is created with the given existence.
func (ix *Index) Add(path string, exists bool, owner int) {
	if m, ok := ix.mappings[path]; ok {
		m.addOwner(owner)
		return
	}
	ix.mappings[path] = &Mapping{
		OriginalPath: path,
		CurrentPath:  path,
		Exists:       exists,
		Owners:       []int{owner},
	}
}

// Get returns the mapping stored under key.
func (ix *Index) Get(key string) (*Mapping, bool) {
	m, ok := ix.mappings[key]
	return m, ok
}

// Len returns the number of tracked paths.
func (ix *Index) Len() int {
	return len(ix.mappings)
}

// Keys returns every key in sorted order.
func (ix *Index) Keys() []string {
	keys := make([]string, 0, len(ix.mappings))
	for k := range ix.mappings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns every mapping ordered by key.
func (ix *Index) All() []*Mapping {
	out := make([]*Mapping, 0, len(ix.mappings))
	for _, k := range ix.Keys() {
		out = append(out, ix.mappings[k])
	}
	return out
}

// Clone returns a deep copy of the index.
func (ix *Index) Clone() *Index {
	out := &Index{mappings: make(map[string]*Mapping, len(ix.mappings))}
	for k, m := range ix.mappings {
		cp := *m
		cp.Owners = append([]int(nil), m.Owners...)
		out.mappings[k] = &cp
	}
	return out
}

// Match returns the mappings that refer to path. The exact key wins; when
// there is none, mappings whose key resolves to the same absolute path are
// returned instead, so that absolute event paths find relative entries.
func (ix *Index) Match(path string) []*Mapping {
	if m, ok := ix.mappings[path]; ok {
		return []*Mapping{m}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	var out []*Mapping
	for _, k := range ix.Keys() {
		if ka, err := filepath.Abs(k); err == nil && ka == abs {
			out = append(out, ix.mappings[k])
		}
	}
	return out
}

// Move describes one key change produced by a rename.
type Move struct {
	OldKey string
	NewKey string
	Owners []int
}

// Collect finds the mappings affected by renaming old to new: the exact key
// and every key that has old as a proper path prefix, compared textually or
// after resolving symlinks. The result is ordered by old key.
func (ix *Index) Collect(oldPath, newPath string) []Move {
	canonOld := Canonical(oldPath)
	var moves []Move
	for _, k := range ix.Keys() {
		newKey, ok := Substitute(k, oldPath, canonOld, newPath)
		if !ok {
			continue
		}
		m := ix.mappings[k]
		moves = append(moves, Move{
			OldKey: k,
			NewKey: newKey,
			Owners: append([]int(nil), m.Owners...),
		})
	}
	return moves
}

// Rekey moves the mapping under oldKey to newKey and sets its existence.
// When newKey is already tracked the owners are merged into that mapping.
func (ix *Index) Rekey(oldKey, newKey string, exists bool) {
	ix.RekeyAll([]Move{{OldKey: oldKey, NewKey: newKey}}, map[string]bool{newKey: exists})
}

// RekeyAll applies moves as one step: every moved mapping is detached before
// any is re-inserted, so a move whose new key is another move's old key does
// not collide with it. exists holds the observed state of each new key. A new
// key held by a mapping that is not moving absorbs the owners of the moved one.
func (ix *Index) RekeyAll(moves []Move, exists map[string]bool) {
	detached := make([]*Mapping, len(moves))
	for i, mv := range moves {
		if m, ok := ix.mappings[mv.OldKey]; ok {
			detached[i] = m
			delete(ix.mappings, mv.OldKey)
		}
	}
	for i, mv := range moves {
		m := detached[i]
		if m == nil {
			continue
		}
		if dst, ok := ix.mappings[mv.NewKey]; ok {
			for _, o := range m.Owners {
				dst.addOwner(o)
			}
			dst.Exists = exists[mv.NewKey]
			continue
		}
		m.CurrentPath = mv.NewKey
		m.Exists = exists[mv.NewKey]
		ix.mappings[mv.NewKey] = m
	}
}

// Substitute computes the key that results from renaming old to new. The
// second result is false when key is neither old nor below it. A key that
// equals old only after cleaning or resolving (a trailing separator, a
// relative spelling) is renamed to new itself. canonOld is Canonical(old),
// passed in so callers can resolve it once.
func Substitute(key, oldPath, canonOld, newPath string) (string, bool) {
	if key == oldPath {
		return newPath, true
	}
	if oldPath == "" {
		return "", false
	}

	// Textual prefix keeps the remainder byte for byte.
	for _, sep := range []string{"/", string(filepath.Separator)} {
		prefix := strings.TrimSuffix(oldPath, sep) + sep
		if strings.HasPrefix(key, prefix) {
			return joinRest(newPath, key[len(prefix):]), true
		}
	}

	// Lexical: compare cleaned components.
	if rest, ok := relUnder(filepath.Clean(key), filepath.Clean(oldPath)); ok {
		return joinRest(newPath, rest), true
	}

	// Canonical: resolve both sides.
	if rest, ok := relUnder(Canonical(key), canonOld); ok {
		return joinRest(newPath, rest), true
	}
	return "", false
}

func joinRest(base, rest string) string {
	sep := string(filepath.Separator)
	if rest == "" {
		return trimSeparator(base)
	}
	if strings.HasSuffix(base, "/") || strings.HasSuffix(base, sep) {
		return base + rest
	}
	if strings.Contains(base, "/") && !strings.Contains(base, sep) {
		sep = "/"
	}
	return base + sep + rest
}

// trimSeparator drops trailing separators, keeping a lone root.
func trimSeparator(p string) string {
	for len(p) > 1 && (strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(filepath.Separator))) {
		p = p[:len(p)-1]
	}
	return p
}

// relUnder returns the remainder of path below root when root is an
// ancestor of (or equal to) path, comparing whole components.
func relUnder(path, root string) (string, bool) {
	if path == root {
		return "", true
	}
	sep := string(filepath.Separator)
	prefix := root
	if !strings.HasSuffix(prefix, sep) {
		prefix += sep
	}
	if strings.HasPrefix(path, prefix) {
		return path[len(prefix):], true
	}
	return "", false
}

// Canonical resolves path to an absolute, symlink-free form. Paths that do
// not exist fall back to their cleaned absolute form.
func Canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// Under reports whether path is rooted at root, lexically or canonically.
// A path equal to the root counts.
func Under(path, root string) bool {
	if _, ok := relUnder(filepath.Clean(path), filepath.Clean(root)); ok {
		return true
	}
	_, ok := relUnder(Canonical(path), Canonical(root))
	return ok
}

// UnderAny reports whether path is rooted at any of roots.
func UnderAny(path string, roots []string) bool {
	for _, r := range roots {
		if Under(path, r) {
			return true
		}
	}
	return false
}
