package api

import (
	"net/http"
	"strings"

	"github.com/teampulse-app/teampulse/internal/services"
)

// /api/respond/{token} — anonymous, token-scoped form flow.
func (rt *Router) handleRespond(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/api/respond/")
	if token == "" || strings.Contains(token, "/") {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		view, err := rt.responses.SurveyByToken(token)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	case http.MethodPost:
		var req struct {
			Answers []services.AnswerSubmit `json:"answers"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		result, err := rt.responses.Submit(token, req.Answers)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":                  "complete",
			"completion_time_seconds": result.CompletionSeconds,
		})
	default:
		methodNotAllowed(w)
	}
}
