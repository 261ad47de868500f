// Package site serves the embedded browser front end of the wizard.
package site

import (
	"context"
	"net/http"
)

// Register attaches the front end routes to mux. Only the index and its
// assets are served; everything else is left to other handlers.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("GET /{$}", files)
	for _, asset := range []string{"/app.js", "/app.css"} {
		mux.Handle("GET "+asset, files)
	}
}
