package middleware

import (
	"net/http"
	"strings"
)

// CORS applies permissive headers to every response and answers preflights
// itself, except for paths in passOptions: those handlers own their
// preflight (the mapping receiver answers its own OPTIONS).
func CORS(next http.Handler, passOptions ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Origin, Referer")
		if r.Method == http.MethodOptions {
			for _, p := range passOptions {
				if r.URL.Path == p {
					next.ServeHTTP(w, r)
					return
				}
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}
