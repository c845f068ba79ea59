package api

import (
	"net/http"
)

// POST /api/auth/register — {email, password, workspace_name}
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Email         string `json:"email"`
		Password      string `json:"password"`
		WorkspaceName string `json:"workspace_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password, req.WorkspaceName)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":        res.Token,
		"workspace_id": res.WorkspaceID,
		"user_id":      res.UserID,
	})
}

// POST /api/auth/login — {email, password}
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":        res.Token,
		"workspace_id": res.WorkspaceID,
		"user_id":      res.UserID,
	})
}
