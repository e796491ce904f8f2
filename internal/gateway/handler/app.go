package handler

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// TransformFunc rewrites the source of one served file. It reports whether a
// rewrite happened; the gateway limits it to the client runtime path.
type TransformFunc func(path, source string) (string, bool)

// AppHandler serves the application files of the dev server. The client
// runtime goes through the transform so the sender script runs ahead of the
// rest of the bootstrap; everything else is plain static file serving.
type AppHandler struct {
	root       string
	clientPath string
	transform  TransformFunc
	files      http.Handler
	log        *zap.Logger
}

func NewAppHandler(root, clientPath string, transform TransformFunc, log *zap.Logger) *AppHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AppHandler{
		root:       root,
		clientPath: clientPath,
		transform:  transform,
		files:      http.FileServer(http.Dir(root)),
		log:        log,
	}
}

func (h *AppHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.transform != nil && r.URL.Path == h.clientPath {
		rel := filepath.FromSlash(strings.TrimPrefix(h.clientPath, "/"))
		src, err := os.ReadFile(filepath.Join(h.root, rel))
		if err != nil {
			h.log.Error("client runtime unreadable", zap.String("path", h.clientPath), zap.Error(err))
			http.NotFound(w, r)
			return
		}
		out, _ := h.transform(r.URL.Path, string(src))
		w.Header().Set("Content-Type", "application/javascript")
		_, _ = io.WriteString(w, out)
		return
	}
	h.files.ServeHTTP(w, r)
}
