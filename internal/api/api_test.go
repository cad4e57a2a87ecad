package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/chaser/internal/history"
	"github.com/starford/chaser/internal/pathsync"
	"github.com/starford/chaser/internal/sse"
	"github.com/starford/chaser/internal/syncservice"
	"github.com/starford/chaser/internal/testutil"
)

type testEnv struct {
	router http.Handler
	root   string
	target string
}

// newTestEnv sets up a watch root, one JSON target file, a journal and a
// router. A non-empty token turns on token auth.
func newTestEnv(t *testing.T, token string, sseHandler http.Handler) testEnv {
	t.Helper()

	root := testutil.WatchRoot(t)
	target := filepath.Join(t.TempDir(), "links.json")
	testutil.WriteFile(t, filepath.Join(root, "a.txt"), "x")
	testutil.WriteFile(t, target, `["`+filepath.Join(root, "a.txt")+`", "`+filepath.Join(root, "dir", "b.txt")+`"]`)

	db, err := history.Open(testutil.TempDBPath(t))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mgr, err := pathsync.New([]string{target}, []string{root},
		pathsync.WithLogger(testutil.Logger()),
		pathsync.WithRecorder(db),
		pathsync.WithIgnorePatterns([]string{"*.log"}),
	)
	if err != nil {
		t.Fatalf("pathsync.New: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })

	svc := syncservice.NewService(mgr, db)
	return testEnv{
		router: NewRouter(svc, token != "", token, sseHandler),
		root:   root,
		target: target,
	}
}

func do(t *testing.T, h http.Handler, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestStatusEndpoint(t *testing.T) {
	env := newTestEnv(t, "", nil)

	w := do(t, env.router, http.MethodGet, "/status", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.State != "loaded" {
		t.Errorf("state = %q", resp.State)
	}
	if len(resp.Paths) != 2 {
		t.Fatalf("paths = %+v", resp.Paths)
	}
	if resp.Paths[0].Path != filepath.Join(env.root, "a.txt") || !resp.Paths[0].Exists {
		t.Errorf("first path = %+v", resp.Paths[0])
	}
	if resp.Paths[1].Exists {
		t.Errorf("missing path reported present: %+v", resp.Paths[1])
	}
}

func TestTargetsEndpoint(t *testing.T) {
	env := newTestEnv(t, "", nil)

	w := do(t, env.router, http.MethodGet, "/targets", nil, "")
	var resp TargetListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Targets) != 1 || resp.Targets[0].Format != "json" || resp.Targets[0].Entries != 2 {
		t.Errorf("targets = %+v", resp.Targets)
	}
}

func TestEntriesEndpoint(t *testing.T) {
	env := newTestEnv(t, "", nil)

	w := do(t, env.router, http.MethodGet, "/targets/entries?location="+url.QueryEscape(env.target), nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("entries = %d, body = %s", w.Code, w.Body.String())
	}
	var resp EntryListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Entries) != 2 {
		t.Errorf("entries = %+v", resp.Entries)
	}

	w = do(t, env.router, http.MethodGet, "/targets/entries?location=/nope.json", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown target = %d, want 404", w.Code)
	}
	w = do(t, env.router, http.MethodGet, "/targets/entries", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing location = %d, want 400", w.Code)
	}
}

func TestSyncEndpoint(t *testing.T) {
	env := newTestEnv(t, "", nil)
	oldDir := filepath.Join(env.root, "dir")
	newDir := filepath.Join(env.root, "moved")

	w := do(t, env.router, http.MethodPost, "/sync", SyncRequest{Old: oldDir, New: newDir}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("sync = %d, body = %s", w.Code, w.Body.String())
	}
	var res SyncResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if !res.Found || res.Mappings != 1 || len(res.Files) != 1 {
		t.Errorf("result = %+v", res)
	}

	got := testutil.ReadFile(t, env.target)
	if !bytes.Contains([]byte(got), []byte(filepath.Join(newDir, "b.txt"))) {
		t.Errorf("target not rewritten:\n%s", got)
	}

	w = do(t, env.router, http.MethodGet, "/history", nil, "")
	var hist HistoryResponse
	_ = json.Unmarshal(w.Body.Bytes(), &hist)
	if len(hist.Renames) != 1 || hist.Renames[0].OldPath != oldDir {
		t.Errorf("history = %+v", hist.Renames)
	}
}

func TestSyncEndpoint_NotTracked(t *testing.T) {
	env := newTestEnv(t, "", nil)

	w := do(t, env.router, http.MethodPost, "/sync", SyncRequest{Old: "/elsewhere/x", New: "/elsewhere/y"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("sync = %d", w.Code)
	}
	var res SyncResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Found {
		t.Error("untracked path reported found")
	}
}

func TestSyncEndpoint_BadRequest(t *testing.T) {
	env := newTestEnv(t, "", nil)

	w := do(t, env.router, http.MethodPost, "/sync", SyncRequest{Old: "/x"}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing new = %d, want 400", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/sync", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid json = %d, want 400", rec.Code)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	env := newTestEnv(t, "", nil)

	testutil.WriteFile(t, env.target, `["`+filepath.Join(env.root, "a.txt")+`"]`)
	w := do(t, env.router, http.MethodPost, "/refresh", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("refresh = %d", w.Code)
	}
	var resp StatusResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Paths) != 1 {
		t.Errorf("paths after refresh = %+v", resp.Paths)
	}

	testutil.WriteFile(t, env.target, `[`)
	w = do(t, env.router, http.MethodPost, "/refresh", nil, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("broken target = %d, want 422", w.Code)
	}
}

func TestIgnoreEndpoint(t *testing.T) {
	env := newTestEnv(t, "", nil)

	w := do(t, env.router, http.MethodGet, "/ignore?path=/w/debug.log", nil, "")
	var resp IgnoreResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Ignored {
		t.Errorf("resp = %+v, want ignored", resp)
	}

	w = do(t, env.router, http.MethodGet, "/ignore", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing path = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	env := newTestEnv(t, "secret123", nil)

	w := do(t, env.router, http.MethodGet, "/status", nil, "secret123")
	if w.Code != http.StatusOK {
		t.Errorf("authed status = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	env := newTestEnv(t, "secret123", nil)

	w := do(t, env.router, http.MethodGet, "/status", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	env := newTestEnv(t, "secret123", nil)

	w := do(t, env.router, http.MethodPost, "/refresh", nil, "wrong")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	env := newTestEnv(t, "", nil)

	w := do(t, env.router, http.MethodGet, "/targets", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint auth tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	broker := sse.NewBroker(time.Second)
	defer broker.Close()
	env := newTestEnv(t, "secret", broker)

	w := do(t, env.router, http.MethodGet, "/events", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	broker := sse.NewBroker(time.Second)
	defer broker.Close()
	env := newTestEnv(t, "tok", broker)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
}

func TestSSEEvents_NotMounted(t *testing.T) {
	env := newTestEnv(t, "", nil)

	w := do(t, env.router, http.MethodGet, "/events", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("events without broker = %d, want 404", w.Code)
	}
}
