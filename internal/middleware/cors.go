package middleware

import (
	"net/http"

	"github.com/teampulse-app/teampulse/internal/utils"
)

// CORS allows the dashboard frontend to call the API from another origin.
// TEAMPULSE_CORS_ORIGIN restricts the allowed origin; unset it stays open,
// which is acceptable because respondent endpoints carry no cookies and
// admin endpoints require a bearer token.
func CORS(next http.Handler) http.Handler {
	origin := utils.Env("CORS_ORIGIN", "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
