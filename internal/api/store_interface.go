package api

import "github.com/teampulse-app/teampulse/internal/services"

// Store is the union of every persistence surface the services need. The
// in-memory implementation backs tests and local runs; the sqlite store in
// internal/db implements the same interface for real deployments.
type Store interface {
	AddTeam(t *services.Team) error
	GetTeam(id string) (*services.Team, error)
	ListTeams(workspaceID string) ([]*services.Team, error)

	AddOccupation(o *services.Occupation) error
	GetOccupation(id string) (*services.Occupation, error)
	ListOccupations() ([]*services.Occupation, error)

	AddSurvey(s *services.Survey) error
	GetSurvey(id string) (*services.Survey, error)
	UpdateSurvey(s *services.Survey) error
	DeleteSurvey(id string) error
	ListSurveys(status services.SurveyStatus, teamID string) ([]*services.Survey, error)

	ReplaceQuestions(surveyID string, qs []*services.Question) error
	ListQuestions(surveyID string) ([]*services.Question, error)

	AddResponse(r *services.Response) error
	GetResponse(id string) (*services.Response, error)
	GetResponseByToken(token string) (*services.Response, error)
	UpdateResponse(r *services.Response) error
	ListResponsesBySurvey(surveyID string) ([]*services.Response, error)

	ListAnswersByResponse(responseID string) ([]*services.Answer, error)
	ReplaceAnswers(responseID string, answers []*services.Answer) error

	AddChatSession(cs *services.ChatSession) error
	GetChatSessionByToken(token string) (*services.ChatSession, error)
	GetChatSessionByResponse(responseID string) (*services.ChatSession, error)
	UpdateChatSession(cs *services.ChatSession) error

	AddChatMessage(m *services.ChatMessage) error
	ListChatMessages(sessionID string) ([]*services.ChatMessage, error)

	AddExtractedRating(r *services.ExtractedRating) error
	UpdateExtractedRating(r *services.ExtractedRating) error
	ListExtractedRatings(sessionID string) ([]*services.ExtractedRating, error)

	AddMetricResult(mr *services.MetricResult) error
	LatestMetricResultBySurvey(surveyID string) (*services.MetricResult, error)
	LatestMetricResultForTeam(teamID, excludeSurveyID string) (*services.MetricResult, error)

	AddWorkspace(w *services.Workspace) error
	AddUser(u *services.User) error
	FindUserByEmail(email string) (*services.User, error)
}

// Every service-facing store interface must stay a subset of Store.
var (
	_ services.TeamStore     = Store(nil)
	_ services.SurveyStore   = Store(nil)
	_ services.ResponseStore = Store(nil)
	_ services.ChatStore     = Store(nil)
	_ services.MetricsStore  = Store(nil)
	_ services.AuthStore     = Store(nil)

	_ Store = (*memoryStore)(nil)
)
