package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestManifest(t *testing.T) {
	rec := httptest.NewRecorder()
	Manifest(rec, httptest.NewRequest(http.MethodGet, "/manifest.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("manifest is not JSON: %v", err)
	}
	if m["short_name"] != "Strays" {
		t.Fatalf("short_name = %v", m["short_name"])
	}
}

func TestServiceWorker(t *testing.T) {
	rec := httptest.NewRecorder()
	ServiceWorker(rec, httptest.NewRequest(http.MethodGet, "/sw.js", nil))
	if got := rec.Header().Get("Content-Type"); got != "application/javascript" {
		t.Fatalf("content type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "addEventListener('fetch'") {
		t.Fatal("service worker body missing fetch handler")
	}
}
