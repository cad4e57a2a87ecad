// Package ignore decides which filesystem events and directories are skipped.
//
// Patterns come in three shapes, chosen by their text:
//   - containing "**": every "/**" is stripped and the rest must occur in the path;
//   - starting with "*.": the path must end with the text after "*.";
//   - anything else: the pattern must occur in the path verbatim.
//
// Matching is case-sensitive and patterns are OR'd.
package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	gitignore "github.com/denormal/go-gitignore"
)

// ShouldIgnore reports whether path matches any of patterns.
func ShouldIgnore(path string, patterns []string) bool {
	for _, p := range patterns {
		if matches(path, p) {
			return true
		}
	}
	return false
}

// ShouldIgnoreEvent reports whether any path of an event matches. An event
// without paths is never ignored.
func ShouldIgnoreEvent(paths []string, patterns []string) bool {
	for _, p := range paths {
		if ShouldIgnore(p, patterns) {
			return true
		}
	}
	return false
}

func matches(path, pattern string) bool {
	switch {
	case strings.Contains(pattern, "**"):
		return strings.Contains(path, strings.ReplaceAll(pattern, "/**", ""))
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(path, pattern[2:])
	default:
		return strings.Contains(path, pattern)
	}
}

// Matcher combines the configured patterns with optional .gitignore rules of
// each watch root. Thread-safe: Reload and SetPatterns take the write lock.
type Matcher struct {
	mu         sync.RWMutex
	patterns   []string
	roots      []string
	gitignores map[string]gitignore.GitIgnore
}

// MatcherOptions configures a Matcher.
type MatcherOptions struct {
	Patterns []string
	// Roots whose .gitignore files are consulted when RespectGitignore is set.
	Roots            []string
	RespectGitignore bool
}

// NewMatcher creates a Matcher.
func NewMatcher(opts MatcherOptions) *Matcher {
	m := &Matcher{
		patterns: append([]string(nil), opts.Patterns...),
	}
	if opts.RespectGitignore {
		m.roots = append([]string(nil), opts.Roots...)
		m.gitignores = loadAll(m.roots)
	}
	return m
}

// Patterns returns a copy of the configured patterns.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.patterns...)
}

// SetPatterns replaces the configured patterns.
func (m *Matcher) SetPatterns(patterns []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append([]string(nil), patterns...)
}

// ShouldIgnore applies the configured patterns to path. A nil Matcher
// ignores nothing.
func (m *Matcher) ShouldIgnore(path string) bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ShouldIgnore(path, m.patterns)
}

// ShouldIgnoreEvent applies the configured patterns to every path of an event.
func (m *Matcher) ShouldIgnoreEvent(paths []string) bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ShouldIgnoreEvent(paths, m.patterns)
}

// ShouldIgnoreDir reports whether a directory should be skipped while
// registering recursive watches. Besides the patterns it honours the
// .gitignore of the root the directory lives under.
func (m *Matcher) ShouldIgnoreDir(dir string) bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if ShouldIgnore(dir, m.patterns) {
		return true
	}
	if len(m.gitignores) == 0 {
		return false
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	for root, gi := range m.gitignores {
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		if match := gi.Relative(filepath.ToSlash(rel), true); match != nil && match.Ignore() {
			return true
		}
	}
	return false
}

// Reload re-reads the .gitignore files of every root.
func (m *Matcher) Reload() {
	m.mu.RLock()
	roots := m.roots
	m.mu.RUnlock()
	if len(roots) == 0 {
		return
	}

	loaded := loadAll(roots)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitignores = loaded
}

func loadAll(roots []string) map[string]gitignore.GitIgnore {
	out := make(map[string]gitignore.GitIgnore, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if gi := loadIgnoreFile(filepath.Join(abs, ".gitignore"), abs); gi != nil {
			out[abs] = gi
		}
	}
	return out
}

func loadIgnoreFile(filePath, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()
	return gitignore.New(f, baseDir, nil)
}
