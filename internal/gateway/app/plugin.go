package app

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"go.uber.org/zap"

	"collage/internal/gateway/bundler"
	"collage/internal/gateway/handler"
	"collage/internal/gateway/inject"
)

// bundler.Plugin implementation. The surrounding bundler drives these hooks;
// the HTTP side of the gateway never calls them.

func (a *App) Name() string {
	return "collage-import-map-gateway"
}

// ResolveID marks bare specifiers (and configured build-time externals) as
// external so the browser's import map resolves them. The resolved URL is
// diagnostic only: a specifier with no mapping entry is still externalized.
func (a *App) ResolveID(specifier, importer string) (bundler.ResolveResult, bool) {
	if !a.isBare(specifier) && !a.isExternal(specifier, importer, false) {
		return bundler.ResolveResult{}, false
	}

	resolved, ok := a.store.Resolve(specifier)
	if ok {
		a.log.Debug("externalizing specifier",
			zap.String("specifier", specifier),
			zap.String("resolved", resolved),
			zap.String("importer", importer))
	} else {
		a.log.Debug("externalizing specifier, no mapping entry yet",
			zap.String("specifier", specifier),
			zap.String("importer", importer))
	}

	a.record.Add(specifier, resolved)
	a.events.Broadcast(handler.Event{Type: "externalized", Specifier: specifier, Resolved: resolved})

	return bundler.ResolveResult{ID: specifier, External: true}, true
}

// Transform injects the sender script into the dev client bootstrap. Any
// other path passes through untouched.
func (a *App) Transform(path, source string) (string, bool) {
	if path != a.cfg.ClientRuntimePath {
		return source, false
	}

	sum := sha256.Sum256([]byte(source))
	key := hex.EncodeToString(sum[:])
	if cached, ok := a.transforms.Get(key); ok {
		return cached, true
	}

	senderSrc, err := inject.RenderSender(a.cfg.Root, a.endpoint)
	if err != nil {
		a.log.Error("sender injection skipped", zap.Error(err))
		return source, false
	}
	out := inject.Sender(source, senderSrc)
	a.transforms.Add(key, out)
	return out, true
}

func (a *App) Middleware(next http.Handler) http.Handler {
	return a.admission.Wrap(next)
}
