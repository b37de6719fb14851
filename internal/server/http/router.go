package httpserver

import "net/http"

// NewMux assembles the full route table: the JSON API under /api/ plus
// the static board UIs.
func NewMux(h *Handler, webDir, mobileDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/", h)
	RegisterStaticRoutes(mux, webDir, mobileDir)
	return mux
}
