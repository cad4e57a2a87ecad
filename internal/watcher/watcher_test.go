package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/chaser/internal/ignore"
	"github.com/starford/chaser/internal/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	done   chan struct{}
}

func record(w *Watcher) *recorder {
	r := &recorder{done: make(chan struct{})}
	go func() {
		defer close(r.done)
		for ev := range w.Events() {
			r.mu.Lock()
			r.events = append(r.events, ev)
			r.mu.Unlock()
		}
	}()
	return r
}

func (r *recorder) has(kind Kind, path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.Kind == kind && len(ev.Paths) == 1 && ev.Paths[0] == path {
			return true
		}
	}
	return false
}

func (r *recorder) seen(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		for _, p := range ev.Paths {
			if p == path {
				return true
			}
		}
	}
	return false
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want Kind
	}{
		{fsnotify.Create, Create},
		{fsnotify.Remove, Remove},
		{fsnotify.Write, Modify},
		{fsnotify.Rename, Modify},
		{fsnotify.Chmod, Other},
		{fsnotify.Create | fsnotify.Write, Create},
	}
	for _, tt := range tests {
		if got := kindOf(tt.op); got != tt.want {
			t.Errorf("kindOf(%v) = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestQueue_FIFO(t *testing.T) {
	q := newQueue()
	for _, p := range []string{"a", "b", "c"} {
		q.push(Event{Kind: Create, Paths: []string{p}})
	}
	if q.len() != 3 {
		t.Fatalf("len = %d", q.len())
	}
	for _, want := range []string{"a", "b", "c"} {
		ev, ok, _ := q.next()
		if !ok || ev.Paths[0] != want {
			t.Fatalf("next = %+v, %v; want %s", ev, ok, want)
		}
	}
	if _, ok, closed := q.next(); ok || closed {
		t.Error("empty open queue should report !ok, !closed")
	}
	q.close()
	q.push(Event{Kind: Create})
	if _, ok, closed := q.next(); ok || !closed {
		t.Error("closed queue should drop pushes and report closed")
	}
}

func TestWatcher_CreateAndRemove(t *testing.T) {
	root := testutil.WatchRoot(t)
	w, err := New([]string{root}, Options{Recursive: true, Logger: testutil.Logger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	r := record(w)

	file := filepath.Join(root, "a.txt")
	testutil.WriteFile(t, file, "x")
	testutil.Eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return r.has(Create, file)
	}, "create event not delivered")

	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}
	testutil.Eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return r.has(Remove, file)
	}, "remove event not delivered")
}

func TestWatcher_IgnoredPathsDropped(t *testing.T) {
	root := testutil.WatchRoot(t)
	m := ignore.NewMatcher(ignore.MatcherOptions{Patterns: []string{"*.tmp"}})
	w, err := New([]string{root}, Options{Recursive: true, Ignore: m, Logger: testutil.Logger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	r := record(w)

	ignored := filepath.Join(root, "scratch.tmp")
	kept := filepath.Join(root, "kept.txt")
	testutil.WriteFile(t, ignored, "x")
	testutil.WriteFile(t, kept, "x")

	testutil.Eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return r.has(Create, kept)
	}, "kept file not reported")
	if r.seen(ignored) {
		t.Error("ignored file was reported")
	}
}

func TestWatcher_RecursiveFollowsNewDirs(t *testing.T) {
	root := testutil.WatchRoot(t)
	w, err := New([]string{root}, Options{Recursive: true, Logger: testutil.Logger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	r := record(w)

	dir := filepath.Join(root, "sub")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	testutil.Eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return r.has(Create, dir)
	}, "directory create not reported")

	nested := filepath.Join(dir, "n.txt")
	testutil.Eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_ = os.WriteFile(nested, []byte("x"), 0o644)
		return r.seen(nested)
	}, "file in new directory not reported")
}

func TestWatcher_NonRecursiveIgnoresSubdirs(t *testing.T) {
	root := testutil.WatchRoot(t)
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New([]string{root}, Options{Logger: testutil.Logger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	r := record(w)

	deep := filepath.Join(sub, "deep.txt")
	top := filepath.Join(root, "top.txt")
	testutil.WriteFile(t, deep, "x")
	testutil.WriteFile(t, top, "x")

	testutil.Eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return r.has(Create, top)
	}, "top-level create not reported")
	if r.seen(deep) {
		t.Error("nested file reported without recursion")
	}
}

func TestWatcher_MissingRootSkipped(t *testing.T) {
	root := testutil.WatchRoot(t)
	missing := filepath.Join(root, "does-not-exist")

	w, err := New([]string{missing, root}, Options{Logger: testutil.Logger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	roots := w.Roots()
	if len(roots) != 1 || roots[0] != root {
		t.Errorf("Roots = %v", roots)
	}
}

func TestWatcher_CloseEndsStream(t *testing.T) {
	root := testutil.WatchRoot(t)
	w, err := New([]string{root}, Options{Logger: testutil.Logger()})
	if err != nil {
		t.Fatal(err)
	}
	r := record(w)
	if err := w.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		t.Fatalf("Close: %v", err)
	}
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("event stream not closed")
	}
	// Second Close is a no-op.
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
