package api

import (
	"net/http"
	"strings"

	"github.com/teampulse-app/teampulse/internal/middleware"
	"github.com/teampulse-app/teampulse/internal/services"
)

// GET /api/occupations
func (rt *Router) handleOccupations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	occupations, err := rt.teams.Occupations()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, occupations)
}

// GET|POST /api/teams
func (rt *Router) handleTeams(w http.ResponseWriter, r *http.Request) {
	wid, _ := middleware.WorkspaceIDFromContext(r.Context())
	switch r.Method {
	case http.MethodGet:
		teams, err := rt.teams.List(wid)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, teams)
	case http.MethodPost:
		var req services.TeamCreate
		if !decodeJSON(w, r, &req) {
			return
		}
		req.WorkspaceID = wid
		team, err := rt.teams.Create(req)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, team)
	default:
		methodNotAllowed(w)
	}
}

// GET /api/teams/{id}
func (rt *Router) handleTeamScoped(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/teams/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	team, err := rt.teams.Get(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}
