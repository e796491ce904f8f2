package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSenderHandlerServesRenderedScript(t *testing.T) {
	h := NewSenderHandler(true, "http://localhost:4101/__current_import_map", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/__collagejs-import-map-sender.js", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/javascript" {
		t.Fatalf("content type %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "var IS_ROOT = true;") {
		t.Fatal("is-root literal not substituted")
	}
	if !strings.Contains(body, "http://localhost:4101/__current_import_map") {
		t.Fatal("endpoint not substituted")
	}
}

func TestSenderHandlerCachesRender(t *testing.T) {
	h := NewSenderHandler(false, "http://localhost:4101/__current_import_map", nil)
	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/s.js", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/s.js", nil))

	if first.Body.String() != second.Body.String() {
		t.Fatal("cached render must be byte-identical")
	}
	if !strings.Contains(first.Body.String(), "var IS_ROOT = false;") {
		t.Fatal("dependent instances render IS_ROOT = false")
	}
}

func TestSenderHandlerUnavailable(t *testing.T) {
	h := NewSenderHandler(true, "", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s.js", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Sender script unavailable") {
		t.Fatalf("body %q", w.Body.String())
	}
}
