package api

import (
	"net/http"
	"strings"

	"github.com/teampulse-app/teampulse/internal/middleware"
	"github.com/teampulse-app/teampulse/internal/services"
)

// GET|POST /api/surveys
func (rt *Router) handleSurveys(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		status := services.SurveyStatus(r.URL.Query().Get("status"))
		teamID := r.URL.Query().Get("team_id")
		surveys, err := rt.surveys.List(status, teamID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, surveys)
	case http.MethodPost:
		var req struct {
			TeamID       string `json:"team_id"`
			OccupationID string `json:"occupation_id"`
			Name         string `json:"name"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		wid, _ := middleware.WorkspaceIDFromContext(r.Context())
		sv, err := rt.surveys.Create(services.SurveyCreate{
			WorkspaceID:  wid,
			TeamID:       req.TeamID,
			OccupationID: req.OccupationID,
			Name:         req.Name,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sv)
	default:
		methodNotAllowed(w)
	}
}

// /api/surveys/{id} and its sub-resources.
func (rt *Router) handleSurveyScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/surveys/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}
	if len(parts) == 1 {
		rt.handleSurveyItem(w, r, id)
		return
	}
	switch parts[1] {
	case "generate-questions":
		rt.handleGenerateQuestions(w, r, id)
	case "activate":
		rt.handleActivate(w, r, id)
	case "close":
		rt.handleClose(w, r, id)
	case "clone":
		rt.handleClone(w, r, id)
	case "link":
		rt.handleLink(w, r, id)
	case "questions":
		rt.handleQuestions(w, r, id)
	case "stats":
		rt.handleStats(w, r, id)
	case "results":
		rt.handleResults(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (rt *Router) handleSurveyItem(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		sv, err := rt.surveys.Get(id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sv)
	case http.MethodPut:
		var req struct {
			Name   string `json:"name"`
			TeamID string `json:"team_id"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		sv, err := rt.surveys.Update(id, req.Name, req.TeamID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sv)
	case http.MethodDelete:
		if err := rt.surveys.Delete(id); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		methodNotAllowed(w)
	}
}

// POST /api/surveys/{id}/generate-questions
func (rt *Router) handleGenerateQuestions(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		UseTaskSpecific bool `json:"use_task_specific"`
		MaxQuestions    int  `json:"max_questions"`
	}
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}
	questions, err := rt.surveys.GenerateQuestions(id, req.UseTaskSpecific, req.MaxQuestions)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"survey_id": id, "questions": questions})
}

// POST /api/surveys/{id}/activate
func (rt *Router) handleActivate(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	sv, err := rt.surveys.Activate(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sv)
}

// POST /api/surveys/{id}/close
func (rt *Router) handleClose(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	sv, err := rt.surveys.Close(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sv)
}

// POST /api/surveys/{id}/clone
func (rt *Router) handleClone(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}
	sv, err := rt.surveys.Clone(id, req.Name)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sv)
}

// POST /api/surveys/{id}/link — mints a fresh single-use response link.
func (rt *Router) handleLink(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	resp, err := rt.surveys.GenerateResponseLink(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"survey_id": id, "token": resp.Token})
}

// GET /api/surveys/{id}/questions
func (rt *Router) handleQuestions(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	questions, err := rt.surveys.Questions(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// GET /api/surveys/{id}/stats
func (rt *Router) handleStats(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	stats, err := rt.surveys.Stats(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /api/surveys/{id}/results — privacy-gated metric readback. Below the
// threshold the payload carries counts only; scores stay withheld.
func (rt *Router) handleResults(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	result, err := rt.metrics.SurveyResults(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if !result.MeetsPrivacyThreshold {
		writeJSON(w, http.StatusOK, map[string]any{
			"survey_id":               id,
			"respondent_count":        result.RespondentCount,
			"meets_privacy_threshold": false,
			"responses_needed":        services.ResponsesNeeded(result.RespondentCount),
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}
