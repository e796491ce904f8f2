package handler

import (
	"io"
	"net/http"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"collage/internal/gateway/inject"
)

// SenderHandler serves the import-map sender script with its placeholders
// substituted. Only root/shell instances route to it. Rendered scripts are
// cached; the substitution pair never changes within a session but the cache
// keeps re-renders off the request path.
type SenderHandler struct {
	isRoot   bool
	endpoint string
	cache    *lru.Cache[string, string]
	log      *zap.Logger
}

func NewSenderHandler(isRoot bool, endpoint string, log *zap.Logger) *SenderHandler {
	if log == nil {
		log = zap.NewNop()
	}
	cache, _ := lru.New[string, string](8)
	return &SenderHandler{isRoot: isRoot, endpoint: endpoint, cache: cache, log: log}
}

func (h *SenderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strconv.FormatBool(h.isRoot) + "|" + h.endpoint
	script, ok := h.cache.Get(key)
	if !ok {
		rendered, err := inject.RenderSender(h.isRoot, h.endpoint)
		if err != nil {
			h.log.Error("sender script unavailable", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Sender script unavailable"})
			return
		}
		h.cache.Add(key, rendered)
		script = rendered
	}

	w.Header().Set("Content-Type", "application/javascript")
	_, _ = io.WriteString(w, script)
}
