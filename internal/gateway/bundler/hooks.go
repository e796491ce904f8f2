// Package bundler names the hook surface a bundler integration consumes
// from the gateway. The bundler itself lives outside this repository; these
// types pin the contract it calls into.
package bundler

import "net/http"

// ResolveResult is what the resolve hook reports for one specifier.
type ResolveResult struct {
	ID       string
	External bool
}

// Plugin is the gateway seen from the bundler's side.
type Plugin interface {
	Name() string

	// ResolveID is consulted for every specifier met during module
	// resolution. A true second return means the result applies; external
	// specifiers are left to the browser's import map.
	ResolveID(specifier, importer string) (ResolveResult, bool)

	// Transform rewrites served source text. The gateway only ever rewrites
	// the dev client bootstrap file.
	Transform(path, source string) (string, bool)

	// Middleware installs the admission filter in front of the module
	// request pipeline.
	Middleware(next http.Handler) http.Handler
}
