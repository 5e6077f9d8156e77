package serverapp

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/boopathiraja455/Voice-task-manager/internal/config"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.DataDir = t.TempDir()

	h, err := NewHandler(Options{
		Config: cfg,
		Logger: log.New(io.Discard, "", 0),
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h
}

func TestNewHandler_RequiresConfig(t *testing.T) {
	_, err := NewHandler(Options{})
	if err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["ok"] != true || body["service"] != serviceName {
		t.Fatalf("body = %v", body)
	}
}

func TestReadyz(t *testing.T) {
	cfg := config.Default()
	dataDir := t.TempDir()
	cfg.Storage.DataDir = dataDir

	h, err := NewHandler(Options{Config: cfg, Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rr.Code)
	}

	// Removing the data directory flips readiness.
	if err := os.RemoveAll(dataDir); err != nil {
		t.Fatalf("remove data dir: %v", err)
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %d, want 503", rr.Code)
	}
}

func TestRouting_TaskLifecycle(t *testing.T) {
	h := newTestServer(t)

	// Create through the real mux.
	body := strings.NewReader(`{"description": "integration check", "due_date": "2024-03-08T09:00:00"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got %d (body %s)", rr.Code, rr.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Fetch it back by id.
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/tasks/"+created.ID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("get: got %d", rr.Code)
	}

	// Complete it.
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/tasks/"+created.ID+"/complete", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("complete: got %d (body %s)", rr.Code, rr.Body.String())
	}
}

func TestRouting_ExactPathsBeatPrefix(t *testing.T) {
	h := newTestServer(t)

	// These must hit their dedicated handlers, not the {id} route.
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/tasks/export", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("export: got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); !strings.HasPrefix(got, "attachment") {
		t.Fatalf("export Content-Disposition = %q", got)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/tasks/calendar.ics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("calendar: got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "text/calendar; charset=utf-8" {
		t.Fatalf("calendar Content-Type = %q", got)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/announcements/summary", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("announcements: got %d", rr.Code)
	}
}

func TestMiddleware_RequestIDAndCORS(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected X-Request-Id header")
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("Allow-Origin = %q", got)
	}
}

func TestDataDirFallsBackToConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.DataDir = filepath.Join(t.TempDir(), "from-config")

	if _, err := NewHandler(Options{Config: cfg, Logger: log.New(io.Discard, "", 0)}); err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	if _, err := os.Stat(cfg.Storage.DataDir); err != nil {
		t.Fatalf("data dir not created: %v", err)
	}
}
