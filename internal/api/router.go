package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/teampulse-app/teampulse/internal/middleware"
	"github.com/teampulse-app/teampulse/internal/services"
)

// Router wires the domain services to HTTP. Admin endpoints (teams, survey
// lifecycle) sit behind JWT auth; respondent endpoints are token-scoped and
// anonymous.
type Router struct {
	store     Store
	auth      *services.AuthService
	teams     *services.TeamService
	surveys   *services.SurveyService
	responses *services.ResponseService
	chat      *services.ChatService
	metrics   *services.MetricsService
	version   string
}

func NewRouter(store Store, extractor services.RatingExtractor, signer services.TokenSigner, version string) *Router {
	rt := &Router{
		store:     store,
		auth:      services.NewAuthService(store, signer),
		teams:     services.NewTeamService(store),
		surveys:   services.NewSurveyService(store),
		responses: services.NewResponseService(store),
		chat:      services.NewChatService(store, extractor),
		metrics:   services.NewMetricsService(store),
		version:   version,
	}
	recalc := func(surveyID string) {
		if _, err := rt.metrics.Compute(surveyID); err != nil {
			log.Printf("metrics: recalculate survey %s: %v", surveyID, err)
		}
	}
	rt.surveys.SetCloseHook(recalc)
	rt.chat.SetCompleteHook(recalc)
	return rt
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", rt.handleRegister) // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)       // POST

	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }
	mux.Handle("/api/occupations", authed(rt.handleOccupations)) // GET
	mux.Handle("/api/teams", authed(rt.handleTeams))             // GET, POST
	mux.Handle("/api/teams/", authed(rt.handleTeamScoped))       // GET /api/teams/{id}
	mux.Handle("/api/surveys", authed(rt.handleSurveys))         // GET, POST
	mux.Handle("/api/surveys/", authed(rt.handleSurveyScoped))   // item + sub-resources

	mux.HandleFunc("/api/respond/", rt.handleRespond) // GET, POST /api/respond/{token}
	mux.HandleFunc("/api/chat/start", rt.handleChatStart)
	mux.HandleFunc("/api/chat/", rt.handleChatScoped)

	mux.HandleFunc("/health", rt.handleHealth)
	mux.HandleFunc("/version", rt.handleVersion)
}

// SeedOccupations populates the default occupation set on first boot.
func (rt *Router) SeedOccupations() error { return rt.teams.SeedOccupations() }

func (rt *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (rt *Router) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"version": rt.version})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body", "code": services.ErrorInvalid})
		return false
	}
	return true
}

// writeErr maps the service error taxonomy onto HTTP statuses. Consumed
// response links answer 409 with an already_submitted marker so clients can
// show a completion acknowledgment instead of an error page.
func writeErr(w http.ResponseWriter, err error) {
	se, ok := services.AsServiceError(err)
	if !ok {
		log.Printf("api: internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
		return
	}
	status := http.StatusInternalServerError
	switch se.Code {
	case services.ErrorInvalid:
		status = http.StatusBadRequest
	case services.ErrorUnauthorized:
		status = http.StatusUnauthorized
	case services.ErrorForbidden:
		status = http.StatusForbidden
	case services.ErrorNotFound:
		status = http.StatusNotFound
	case services.ErrorConflict, services.ErrorAlreadySubmitted, services.ErrorPrecondition:
		status = http.StatusConflict
	case services.ErrorBadGateway:
		status = http.StatusBadGateway
	}
	body := map[string]any{"error": se.Message, "code": se.Code}
	if se.Code == services.ErrorAlreadySubmitted {
		body["status"] = "already_submitted"
	}
	writeJSON(w, status, body)
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
