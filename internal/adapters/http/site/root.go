// Package site handles the embedded documentation site.
package site

import (
	"context"
	"errors"
	"net/http"
)

// Error constants
var (
	ErrGenerate = errors.New("docs site generation failed")
	ErrServe    = errors.New("docs site serve failed")
)

// Register attaches the embedded documentation site routes to mux.
// The site lives under /docs/ so the API owns the rest of the path
// space.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("/docs/", http.StripPrefix("/docs/", files))
	mux.Handle("/docs", http.RedirectHandler("/docs/", http.StatusMovedPermanently))
}
