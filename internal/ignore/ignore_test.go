package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

var defaultPatterns = []string{"*.tmp", "*.log", ".git/**", "target/**"}

func TestShouldIgnore_Patterns(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/project/notes.tmp", true},
		{"/project/build.log", true},
		{"/project/.git/config", true},
		{"/project/target/debug/app", true},
		{"/project/src/main.go", false},
		{"/project/src/Main.TMP", false},
		{"/project/targets/x", true}, // substring match after stripping "/**"
	}
	for _, tt := range tests {
		if got := ShouldIgnore(tt.path, defaultPatterns); got != tt.want {
			t.Errorf("ShouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestShouldIgnore_EmptyPatterns(t *testing.T) {
	if ShouldIgnore("/any/path.tmp", nil) {
		t.Error("empty pattern list must not ignore")
	}
}

func TestShouldIgnore_ExtensionPatternIsSuffix(t *testing.T) {
	// "*.tmp" only checks the suffix, so "xtmp" without a dot matches too.
	if !ShouldIgnore("/a/xtmp", []string{"*.tmp"}) {
		t.Error("suffix match expected")
	}
	if ShouldIgnore("/a/file.tmp.bak", []string{"*.tmp"}) {
		t.Error("suffix must be at the end")
	}
}

func TestShouldIgnore_DoubleStarStripped(t *testing.T) {
	if !ShouldIgnore("/repo/node_modules/a/b.js", []string{"node_modules/**"}) {
		t.Error("node_modules/** should match paths containing node_modules")
	}
	if !ShouldIgnore("/repo/a/vendor/b", []string{"**/vendor/**"}) {
		t.Error("**/vendor/** should reduce to **/vendor and still match")
	}
}

func TestShouldIgnore_PlainSubstring(t *testing.T) {
	if !ShouldIgnore("/home/u/cache/file", []string{"cache"}) {
		t.Error("plain pattern should match as substring")
	}
}

func TestShouldIgnoreEvent(t *testing.T) {
	if ShouldIgnoreEvent(nil, defaultPatterns) {
		t.Error("event without paths must not be ignored")
	}
	if !ShouldIgnoreEvent([]string{"/a/ok.txt", "/a/x.log"}, defaultPatterns) {
		t.Error("any matching path should ignore the event")
	}
	if ShouldIgnoreEvent([]string{"/a/ok.txt"}, defaultPatterns) {
		t.Error("no path matches")
	}
}

func TestMatcher_NilIgnoresNothing(t *testing.T) {
	var m *Matcher
	if m.ShouldIgnore("/a/b.tmp") || m.ShouldIgnoreDir("/a") || m.ShouldIgnoreEvent([]string{"/a.log"}) {
		t.Error("nil matcher must ignore nothing")
	}
}

func TestMatcher_SetPatterns(t *testing.T) {
	m := NewMatcher(MatcherOptions{Patterns: []string{"*.tmp"}})
	if !m.ShouldIgnore("/a/b.tmp") {
		t.Fatal("expected *.tmp to be ignored")
	}
	m.SetPatterns([]string{"*.bak"})
	if m.ShouldIgnore("/a/b.tmp") {
		t.Error("old pattern still active")
	}
	if got := m.Patterns(); len(got) != 1 || got[0] != "*.bak" {
		t.Errorf("Patterns() = %v", got)
	}
}

func TestMatcher_GitignoreDirs(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewMatcher(MatcherOptions{Roots: []string{root}, RespectGitignore: true})
	if !m.ShouldIgnoreDir(filepath.Join(root, "build")) {
		t.Error("build/ should be skipped via .gitignore")
	}
	if m.ShouldIgnoreDir(filepath.Join(root, "src")) {
		t.Error("src should not be skipped")
	}
	if m.ShouldIgnoreDir(root) {
		t.Error("root itself is never skipped")
	}
}

func TestMatcher_GitignoreDisabled(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewMatcher(MatcherOptions{Roots: []string{root}})
	if m.ShouldIgnoreDir(filepath.Join(root, "build")) {
		t.Error(".gitignore must be ignored when RespectGitignore is false")
	}
}

func TestMatcher_Reload(t *testing.T) {
	root := t.TempDir()
	m := NewMatcher(MatcherOptions{Roots: []string{root}, RespectGitignore: true})
	if m.ShouldIgnoreDir(filepath.Join(root, "out")) {
		t.Fatal("nothing ignored before .gitignore exists")
	}
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("out/\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m.Reload()
	if !m.ShouldIgnoreDir(filepath.Join(root, "out")) {
		t.Error("out/ should be ignored after Reload")
	}
}
