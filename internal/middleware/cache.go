package middleware

import (
	"net/http"
	"strings"
)

// NoStore forbids caching of API responses. Survey results, response links
// and chat transcripts must never land in a shared cache; static assets
// outside /api/ are left to the file server's own headers.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}
		next.ServeHTTP(w, r)
	})
}
