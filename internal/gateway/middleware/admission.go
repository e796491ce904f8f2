package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"collage/internal/gateway/latch"
)

// Admission gates module requests on the readiness latch until a sender has
// posted the import map. Blocking is fail-open: a request that waits out the
// timeout proceeds anyway, because serving a module resolved without the map
// beats hanging the browser.
type Admission struct {
	gate    *latch.Latch
	timeout time.Duration
	dev     bool

	// exceptions are served without waiting: the document itself, the dev
	// client runtime, and on root instances the sender script, which would
	// otherwise deadlock against its own gate.
	exceptions map[string]struct{}

	log *zap.Logger
}

type AdmissionOptions struct {
	Dev               bool
	Root              bool
	Timeout           time.Duration
	ClientRuntimePath string
	SenderPath        string
}

func NewAdmission(gate *latch.Latch, opts AdmissionOptions, log *zap.Logger) *Admission {
	if log == nil {
		log = zap.NewNop()
	}
	exceptions := map[string]struct{}{
		"/":           {},
		"/index.html": {},
	}
	if opts.ClientRuntimePath != "" {
		exceptions[opts.ClientRuntimePath] = struct{}{}
	}
	if opts.Root && opts.SenderPath != "" {
		exceptions[opts.SenderPath] = struct{}{}
	}
	return &Admission{
		gate:       gate,
		timeout:    opts.Timeout,
		dev:        opts.Dev,
		exceptions: exceptions,
		log:        log,
	}
}

// ShouldBlock reports whether the request must wait on the gate before being
// served.
func (a *Admission) ShouldBlock(r *http.Request) bool {
	if !a.dev {
		return false
	}
	if r.Method != http.MethodGet {
		return false
	}
	if a.gate.Signaled() {
		return false
	}
	if _, ok := a.exceptions[r.URL.Path]; ok {
		return false
	}
	return true
}

// Wrap installs the filter in front of next. The gate wait is the only
// suspension point; a timeout logs a warning and falls through to next.
func (a *Admission) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.ShouldBlock(r) {
			if !a.gate.Wait(r.Context(), a.timeout) {
				a.log.Warn("import map still missing, serving module anyway",
					zap.String("path", r.URL.Path),
					zap.Duration("waited", a.timeout))
			}
		}
		next.ServeHTTP(w, r)
	})
}
