package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"collage/internal/gateway/importmap"
	"collage/internal/gateway/latch"
)

func newReceiver(allow []string) (*ImportMapHandler, *importmap.Store, *latch.Latch) {
	store := importmap.NewStore()
	gate := latch.New()
	return NewImportMapHandler(store, gate, allow, nil, nil), store, gate
}

func postMap(h http.Handler, origin, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/__current_import_map", strings.NewReader(body))
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestPostValidMapStoresAndSignals(t *testing.T) {
	h, store, gate := newReceiver(nil)

	w := postMap(h, "http://localhost:5555", `{"imports":{"@x":"http://localhost:4101/x.js"},"scopes":{}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Imports int  `json:"imports"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, 1, resp.Imports)

	require.True(t, gate.Signaled())
	got, ok := store.Resolve("@x")
	require.True(t, ok)
	require.Equal(t, "http://localhost:4101/x.js", got)
}

func TestPostFromDisallowedOrigin(t *testing.T) {
	h, store, gate := newReceiver(nil)

	w := postMap(h, "http://evil.example", `{"imports":{"@x":"http://y/"},"scopes":{}}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"error":"Origin not allowed"}`, w.Body.String())

	require.False(t, gate.Signaled())
	_, ok := store.Resolve("@x")
	require.False(t, ok, "rejected POST must not mutate the store")
}

func TestPostAllowListedOrigin(t *testing.T) {
	h, _, gate := newReceiver([]string{"team.internal"})
	w := postMap(h, "http://shell.team.internal:4100", `{"imports":{},"scopes":{}}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, gate.Signaled())
}

func TestPostFallsBackToReferer(t *testing.T) {
	h, _, gate := newReceiver(nil)
	r := httptest.NewRequest(http.MethodPost, "/__current_import_map", strings.NewReader(`{"imports":{},"scopes":{}}`))
	r.Header.Set("Referer", "http://127.0.0.1:5555/index.html")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, gate.Signaled())
}

func TestPostMalformedShape(t *testing.T) {
	h, store, gate := newReceiver(nil)

	for _, body := range []string{
		`{"imports":{}}`,
		`{"imports":{},"scopes":{},"extra":1}`,
		`not json`,
	} {
		w := postMap(h, "http://localhost:5555", body)
		require.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		require.JSONEq(t, `{"error":"Invalid import map data"}`, w.Body.String())
	}

	require.False(t, gate.Signaled())
	require.Empty(t, store.Current().Imports)
}

func TestPostAcceptsUntypedTargets(t *testing.T) {
	h, _, gate := newReceiver(nil)

	w := postMap(h, "http://localhost:5555", `{"imports":{"@x":42},"scopes":{}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Imports int  `json:"imports"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, 0, resp.Imports, "the unusable entry is dropped, not rejected")
	require.True(t, gate.Signaled())
}

func TestMethodNotAllowed(t *testing.T) {
	h, _, _ := newReceiver(nil)
	r := httptest.NewRequest(http.MethodDelete, "/__current_import_map", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, "POST, OPTIONS", w.Header().Get("Allow"))
	require.JSONEq(t, `{"error":"Method not allowed"}`, w.Body.String())
}

func TestOptionsPreflight(t *testing.T) {
	h, _, gate := newReceiver(nil)
	r := httptest.NewRequest(http.MethodOptions, "/__current_import_map", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
	require.False(t, gate.Signaled(), "preflight must not touch the gate")
}

func TestRepostReplacesWholeMap(t *testing.T) {
	h, store, _ := newReceiver(nil)
	postMap(h, "http://localhost:5555", `{"imports":{"@a":"1","@b":"2"},"scopes":{}}`)
	postMap(h, "http://localhost:5555", `{"imports":{"@c":"3"},"scopes":{}}`)

	_, ok := store.Resolve("@a")
	require.False(t, ok, "replacement is full, not a merge")
	got, ok := store.Resolve("@c")
	require.True(t, ok)
	require.Equal(t, "3", got)
}

func TestOriginAllowed(t *testing.T) {
	require.True(t, originAllowed("http://localhost:5555", nil))
	require.True(t, originAllowed("http://127.0.0.1:3000", nil))
	require.True(t, originAllowed("http://[::1]:3000", nil))
	require.False(t, originAllowed("http://evil.example", nil))
	require.False(t, originAllowed("", nil))
	require.True(t, originAllowed("https://dev.team.internal", []string{"team.internal"}))
}
