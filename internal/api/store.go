package api

import (
	"sort"
	"strings"
	"sync"

	"github.com/teampulse-app/teampulse/internal/services"
)

type memoryStore struct {
	mu                sync.RWMutex
	teams             map[string]*services.Team
	occupations       map[string]*services.Occupation
	surveys           map[string]*services.Survey
	questionsBySurvey map[string][]*services.Question
	responses         map[string]*services.Response
	responsesByToken  map[string]*services.Response
	answersByResponse map[string][]*services.Answer
	sessions          map[string]*services.ChatSession
	sessionsByToken   map[string]*services.ChatSession
	sessionByResponse map[string]*services.ChatSession
	messagesBySession map[string][]*services.ChatMessage
	ratingsBySession  map[string][]*services.ExtractedRating
	metricResults     []*services.MetricResult
	workspaces        map[string]*services.Workspace
	usersByEmail      map[string]*services.User
}

func NewMemoryStore() Store { return newMemoryStore() }

func newMemoryStore() *memoryStore {
	return &memoryStore{
		teams:             map[string]*services.Team{},
		occupations:       map[string]*services.Occupation{},
		surveys:           map[string]*services.Survey{},
		questionsBySurvey: map[string][]*services.Question{},
		responses:         map[string]*services.Response{},
		responsesByToken:  map[string]*services.Response{},
		answersByResponse: map[string][]*services.Answer{},
		sessions:          map[string]*services.ChatSession{},
		sessionsByToken:   map[string]*services.ChatSession{},
		sessionByResponse: map[string]*services.ChatSession{},
		messagesBySession: map[string][]*services.ChatMessage{},
		ratingsBySession:  map[string][]*services.ExtractedRating{},
		workspaces:        map[string]*services.Workspace{},
		usersByEmail:      map[string]*services.User{},
	}
}

func (s *memoryStore) AddTeam(t *services.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[t.ID] = t
	return nil
}

func (s *memoryStore) GetTeam(id string) (*services.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teams[id], nil
}

func (s *memoryStore) ListTeams(workspaceID string) ([]*services.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.Team{}
	for _, t := range s.teams {
		if workspaceID == "" || t.WorkspaceID == workspaceID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) AddOccupation(o *services.Occupation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.occupations[o.ID] = o
	return nil
}

func (s *memoryStore) GetOccupation(id string) (*services.Occupation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.occupations[id], nil
}

func (s *memoryStore) ListOccupations() ([]*services.Occupation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.Occupation{}
	for _, o := range s.occupations {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memoryStore) AddSurvey(sv *services.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surveys[sv.ID] = sv
	return nil
}

func (s *memoryStore) GetSurvey(id string) (*services.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.surveys[id], nil
}

func (s *memoryStore) UpdateSurvey(sv *services.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.surveys[sv.ID] = sv
	return nil
}

func (s *memoryStore) DeleteSurvey(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.surveys, id)
	delete(s.questionsBySurvey, id)
	return nil
}

func (s *memoryStore) ListSurveys(status services.SurveyStatus, teamID string) ([]*services.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.Survey{}
	for _, sv := range s.surveys {
		if status != "" && sv.Status != status {
			continue
		}
		if teamID != "" && sv.TeamID != teamID {
			continue
		}
		out = append(out, sv)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memoryStore) ReplaceQuestions(surveyID string, qs []*services.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questionsBySurvey[surveyID] = append([]*services.Question(nil), qs...)
	return nil
}

func (s *memoryStore) ListQuestions(surveyID string) ([]*services.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]*services.Question(nil), s.questionsBySurvey[surveyID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *memoryStore) AddResponse(r *services.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[r.ID] = r
	s.responsesByToken[r.Token] = r
	return nil
}

func (s *memoryStore) GetResponse(id string) (*services.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.responses[id], nil
}

func (s *memoryStore) GetResponseByToken(token string) (*services.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.responsesByToken[token], nil
}

func (s *memoryStore) UpdateResponse(r *services.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[r.ID] = r
	s.responsesByToken[r.Token] = r
	return nil
}

func (s *memoryStore) ListResponsesBySurvey(surveyID string) ([]*services.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*services.Response{}
	for _, r := range s.responses {
		if r.SurveyID == surveyID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) ListAnswersByResponse(responseID string) ([]*services.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*services.Answer(nil), s.answersByResponse[responseID]...), nil
}

func (s *memoryStore) ReplaceAnswers(responseID string, answers []*services.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answersByResponse[responseID] = append([]*services.Answer(nil), answers...)
	return nil
}

func (s *memoryStore) AddChatSession(cs *services.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[cs.ID] = cs
	s.sessionsByToken[cs.Token] = cs
	s.sessionByResponse[cs.ResponseID] = cs
	return nil
}

func (s *memoryStore) GetChatSessionByToken(token string) (*services.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionsByToken[token], nil
}

func (s *memoryStore) GetChatSessionByResponse(responseID string) (*services.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionByResponse[responseID], nil
}

func (s *memoryStore) UpdateChatSession(cs *services.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[cs.ID] = cs
	s.sessionsByToken[cs.Token] = cs
	s.sessionByResponse[cs.ResponseID] = cs
	return nil
}

func (s *memoryStore) AddChatMessage(m *services.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messagesBySession[m.SessionID] = append(s.messagesBySession[m.SessionID], m)
	return nil
}

func (s *memoryStore) ListChatMessages(sessionID string) ([]*services.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]*services.ChatMessage(nil), s.messagesBySession[sessionID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (s *memoryStore) AddExtractedRating(r *services.ExtractedRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratingsBySession[r.SessionID] = append(s.ratingsBySession[r.SessionID], r)
	return nil
}

func (s *memoryStore) UpdateExtractedRating(r *services.ExtractedRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.ratingsBySession[r.SessionID] {
		if existing.ID == r.ID {
			s.ratingsBySession[r.SessionID][i] = r
			return nil
		}
	}
	return services.NewNotFoundError("extracted rating not found")
}

func (s *memoryStore) ListExtractedRatings(sessionID string) ([]*services.ExtractedRating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*services.ExtractedRating(nil), s.ratingsBySession[sessionID]...), nil
}

func (s *memoryStore) AddMetricResult(mr *services.MetricResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metricResults = append(s.metricResults, mr)
	return nil
}

func (s *memoryStore) LatestMetricResultBySurvey(surveyID string) (*services.MetricResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *services.MetricResult
	for _, mr := range s.metricResults {
		if mr.SurveyID != surveyID {
			continue
		}
		if latest == nil || mr.CalculatedAt.After(latest.CalculatedAt) {
			latest = mr
		}
	}
	return latest, nil
}

func (s *memoryStore) LatestMetricResultForTeam(teamID, excludeSurveyID string) (*services.MetricResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *services.MetricResult
	for _, mr := range s.metricResults {
		if mr.TeamID != teamID || mr.SurveyID == excludeSurveyID || !mr.MeetsPrivacyThreshold {
			continue
		}
		if latest == nil || mr.CalculatedAt.After(latest.CalculatedAt) {
			latest = mr
		}
	}
	return latest, nil
}

func (s *memoryStore) AddWorkspace(w *services.Workspace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[w.ID] = w
	return nil
}

func (s *memoryStore) AddUser(u *services.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersByEmail[strings.ToLower(u.Email)] = u
	return nil
}

func (s *memoryStore) FindUserByEmail(email string) (*services.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersByEmail[strings.ToLower(email)], nil
}
