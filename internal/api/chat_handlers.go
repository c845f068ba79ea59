package api

import (
	"net/http"
	"strings"

	"github.com/teampulse-app/teampulse/internal/services"
)

// POST /api/chat/start — {token} exchanges a response link for a session.
func (rt *Router) handleChatStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Token string `json:"token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := rt.chat.Start(r.Context(), req.Token)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// /api/chat/{sessionToken} and its sub-resources.
func (rt *Router) handleChatScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/chat/")
	parts := strings.SplitN(rest, "/", 2)
	token := parts[0]
	if token == "" {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		view, err := rt.chat.Conversation(token)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	switch parts[1] {
	case "message":
		rt.handleChatMessage(w, r, token)
	case "confirm-rating":
		rt.handleConfirmRating(w, r, token)
	case "complete":
		rt.handleChatComplete(w, token)
	default:
		http.NotFound(w, r)
	}
}

func (rt *Router) handleChatMessage(w http.ResponseWriter, r *http.Request, token string) {
	var req struct {
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := rt.chat.SendMessage(r.Context(), token, req.Content)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) handleConfirmRating(w http.ResponseWriter, r *http.Request, token string) {
	var req struct {
		Dimension     string `json:"dimension"`
		Confirmed     bool   `json:"confirmed"`
		AdjustedScore *int   `json:"adjusted_score"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	dim, ok := services.ParseDimension(req.Dimension)
	if !ok {
		writeErr(w, services.NewInvalidError("unknown dimension"))
		return
	}
	result, err := rt.chat.ConfirmRating(token, dim, req.Confirmed, req.AdjustedScore)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) handleChatComplete(w http.ResponseWriter, token string) {
	result, err := rt.chat.Complete(token)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
