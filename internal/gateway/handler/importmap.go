package handler

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"collage/internal/gateway/importmap"
	"collage/internal/gateway/latch"
)

// ImportMapHandler receives the browser-posted import map on one fixed path.
// A valid POST replaces the stored map in full and signals the readiness
// gate; signaling happens strictly after the replace so released requests
// always observe the new map.
type ImportMapHandler struct {
	store          *importmap.Store
	gate           *latch.Latch
	allowedOrigins []string
	events         *EventHub
	log            *zap.Logger
}

func NewImportMapHandler(store *importmap.Store, gate *latch.Latch, allowedOrigins []string, events *EventHub, log *zap.Logger) *ImportMapHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImportMapHandler{
		store:          store,
		gate:           gate,
		allowedOrigins: allowedOrigins,
		events:         events,
		log:            log,
	}
}

func (h *ImportMapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		if w.Header().Get("Access-Control-Allow-Origin") == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "Method not allowed"})
	}
}

func (h *ImportMapHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		origin = strings.TrimSpace(r.Header.Get("Referer"))
	}
	if !originAllowed(origin, h.allowedOrigins) {
		h.log.Warn("import map sender rejected", zap.String("origin", origin))
		writeJSON(w, http.StatusForbidden, map[string]any{"error": "Origin not allowed"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid import map data"})
		return
	}
	m, err := importmap.Parse(body)
	if err != nil {
		h.log.Warn("import map payload invalid", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid import map data"})
		return
	}

	h.store.Replace(m)
	h.gate.Signal()
	if h.events != nil {
		h.events.Broadcast(Event{Type: "importmap", Imports: len(m.Imports), Scopes: len(m.Scopes)})
	}

	h.log.Info("import map received",
		zap.String("origin", origin),
		zap.Int("imports", len(m.Imports)),
		zap.Int("scopes", len(m.Scopes)))
	for _, e := range m.Imports {
		h.log.Debug("import map entry", zap.String("specifier", e.Specifier), zap.String("target", e.Target))
	}
	for _, s := range m.Scopes {
		h.log.Debug("import map scope", zap.String("prefix", s.Prefix), zap.Int("entries", len(s.Imports)))
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "imports": len(m.Imports)})
}

// originAllowed accepts loopback senders unconditionally and anything on the
// configured allow-list by substring containment.
func originAllowed(origin string, allow []string) bool {
	if origin == "" {
		return false
	}
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	for _, a := range allow {
		if a != "" && strings.Contains(origin, a) {
			return true
		}
	}
	return false
}
