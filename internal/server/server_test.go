package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stegus64/plucklogviz/internal/hub"
	"github.com/stegus64/plucklogviz/internal/model"
)

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServerBeforeFirstBuild(t *testing.T) {
	s := New(hub.New(), "pluck.log", ":0")

	if w := get(t, s, "/"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before first build, got %d", w.Code)
	}
	if w := get(t, s, "/api/timeline.json"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before first build, got %d", w.Code)
	}
	// Health stays green; the condition is visible in the fields.
	if w := get(t, s, "/healthz"); w.Code != http.StatusOK {
		t.Errorf("expected 200 from healthz, got %d", w.Code)
	}
}

func TestServerServesDocument(t *testing.T) {
	s := New(hub.New(), "pluck.log", ":0")
	tl := &model.Timeline{Title: "nightly", Summary: model.Summary{Chunks: 3}}
	s.Update([]byte("<!doctype html><title>nightly</title>"), tl)

	w := get(t, s, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "nightly") {
		t.Errorf("expected the document body, got %q", w.Body.String())
	}
}

func TestServerServesPayload(t *testing.T) {
	s := New(hub.New(), "pluck.log", ":0")
	s.Update([]byte("doc"), &model.Timeline{Title: "nightly", Summary: model.Summary{Chunks: 3}})

	w := get(t, s, "/api/timeline.json")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var tl model.Timeline
	if err := json.Unmarshal(w.Body.Bytes(), &tl); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if tl.Title != "nightly" || tl.Summary.Chunks != 3 {
		t.Errorf("unexpected payload %+v", tl)
	}
}

func TestServerHealthz(t *testing.T) {
	s := New(hub.New(), "pluck.log", ":0")
	s.Update([]byte("doc"), &model.Timeline{})
	s.Update([]byte("doc2"), &model.Timeline{})

	w := get(t, s, "/healthz")
	var health struct {
		Status    string `json:"status"`
		Source    string `json:"source"`
		Rebuilds  int64  `json:"rebuilds"`
		LastError string `json:"last_error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("healthz is not valid JSON: %v", err)
	}
	if health.Status != "ok" || health.Source != "pluck.log" {
		t.Errorf("unexpected health %+v", health)
	}
	if health.Rebuilds != 2 {
		t.Errorf("expected 2 rebuilds, got %d", health.Rebuilds)
	}
}

func TestServerKeepsLastGoodDocument(t *testing.T) {
	s := New(hub.New(), "pluck.log", ":0")
	s.Update([]byte("good"), &model.Timeline{})
	s.Fail(errNoEntries{})

	if w := get(t, s, "/"); w.Body.String() != "good" {
		t.Errorf("expected the last good document, got %q", w.Body.String())
	}

	w := get(t, s, "/healthz")
	if !strings.Contains(w.Body.String(), "nothing to draw") {
		t.Errorf("expected the failure surfaced in healthz, got %q", w.Body.String())
	}
}

type errNoEntries struct{}

func (errNoEntries) Error() string { return "nothing to draw" }
