package services

import (
	"sort"
	"strings"
)

// stubStore is a plain in-memory store shared by the service tests. It
// satisfies every per-service store interface.
type stubStore struct {
	teams             map[string]*Team
	occupations       map[string]*Occupation
	surveys           map[string]*Survey
	questionsBySurvey map[string][]*Question
	responses         map[string]*Response
	answersByResponse map[string][]*Answer
	sessions          map[string]*ChatSession
	messagesBySession map[string][]*ChatMessage
	ratingsBySession  map[string][]*ExtractedRating
	metricResults     []*MetricResult
	workspaces        map[string]*Workspace
	users             map[string]*User

	failNext error
}

func newStubStore() *stubStore {
	return &stubStore{
		teams:             map[string]*Team{},
		occupations:       map[string]*Occupation{},
		surveys:           map[string]*Survey{},
		questionsBySurvey: map[string][]*Question{},
		responses:         map[string]*Response{},
		answersByResponse: map[string][]*Answer{},
		sessions:          map[string]*ChatSession{},
		messagesBySession: map[string][]*ChatMessage{},
		ratingsBySession:  map[string][]*ExtractedRating{},
		workspaces:        map[string]*Workspace{},
		users:             map[string]*User{},
	}
}

func (s *stubStore) err() error {
	e := s.failNext
	s.failNext = nil
	return e
}

func (s *stubStore) AddTeam(t *Team) error { s.teams[t.ID] = t; return nil }

func (s *stubStore) GetTeam(id string) (*Team, error) { return s.teams[id], s.err() }

func (s *stubStore) ListTeams(workspaceID string) ([]*Team, error) {
	out := []*Team{}
	for _, t := range s.teams {
		if workspaceID == "" || t.WorkspaceID == workspaceID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubStore) AddOccupation(o *Occupation) error { s.occupations[o.ID] = o; return nil }

func (s *stubStore) GetOccupation(id string) (*Occupation, error) { return s.occupations[id], nil }

func (s *stubStore) ListOccupations() ([]*Occupation, error) {
	out := []*Occupation{}
	for _, o := range s.occupations {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *stubStore) AddSurvey(sv *Survey) error    { s.surveys[sv.ID] = sv; return nil }
func (s *stubStore) GetSurvey(id string) (*Survey, error) { return s.surveys[id], s.err() }
func (s *stubStore) UpdateSurvey(sv *Survey) error { s.surveys[sv.ID] = sv; return nil }

func (s *stubStore) DeleteSurvey(id string) error {
	delete(s.surveys, id)
	delete(s.questionsBySurvey, id)
	return nil
}

func (s *stubStore) ListSurveys(status SurveyStatus, teamID string) ([]*Survey, error) {
	out := []*Survey{}
	for _, sv := range s.surveys {
		if status != "" && sv.Status != status {
			continue
		}
		if teamID != "" && sv.TeamID != teamID {
			continue
		}
		out = append(out, sv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubStore) ReplaceQuestions(surveyID string, qs []*Question) error {
	s.questionsBySurvey[surveyID] = append([]*Question(nil), qs...)
	return nil
}

func (s *stubStore) ListQuestions(surveyID string) ([]*Question, error) {
	return append([]*Question(nil), s.questionsBySurvey[surveyID]...), nil
}

func (s *stubStore) AddResponse(r *Response) error { s.responses[r.ID] = r; return nil }

func (s *stubStore) GetResponse(id string) (*Response, error) { return s.responses[id], nil }

func (s *stubStore) GetResponseByToken(token string) (*Response, error) {
	for _, r := range s.responses {
		if r.Token == token {
			return r, nil
		}
	}
	return nil, nil
}

func (s *stubStore) UpdateResponse(r *Response) error { s.responses[r.ID] = r; return nil }

func (s *stubStore) ListResponsesBySurvey(surveyID string) ([]*Response, error) {
	out := []*Response{}
	for _, r := range s.responses {
		if r.SurveyID == surveyID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubStore) ListAnswersByResponse(responseID string) ([]*Answer, error) {
	return append([]*Answer(nil), s.answersByResponse[responseID]...), nil
}

func (s *stubStore) ReplaceAnswers(responseID string, answers []*Answer) error {
	s.answersByResponse[responseID] = append([]*Answer(nil), answers...)
	return nil
}

func (s *stubStore) AddChatSession(cs *ChatSession) error { s.sessions[cs.ID] = cs; return nil }

func (s *stubStore) GetChatSessionByToken(token string) (*ChatSession, error) {
	for _, cs := range s.sessions {
		if cs.Token == token {
			return cs, nil
		}
	}
	return nil, nil
}

func (s *stubStore) GetChatSessionByResponse(responseID string) (*ChatSession, error) {
	for _, cs := range s.sessions {
		if cs.ResponseID == responseID {
			return cs, nil
		}
	}
	return nil, nil
}

func (s *stubStore) UpdateChatSession(cs *ChatSession) error { s.sessions[cs.ID] = cs; return nil }

func (s *stubStore) AddChatMessage(m *ChatMessage) error {
	s.messagesBySession[m.SessionID] = append(s.messagesBySession[m.SessionID], m)
	return nil
}

func (s *stubStore) ListChatMessages(sessionID string) ([]*ChatMessage, error) {
	out := append([]*ChatMessage(nil), s.messagesBySession[sessionID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (s *stubStore) AddExtractedRating(r *ExtractedRating) error {
	s.ratingsBySession[r.SessionID] = append(s.ratingsBySession[r.SessionID], r)
	return nil
}

func (s *stubStore) UpdateExtractedRating(r *ExtractedRating) error {
	for i, existing := range s.ratingsBySession[r.SessionID] {
		if existing.ID == r.ID {
			s.ratingsBySession[r.SessionID][i] = r
			return nil
		}
	}
	return NewNotFoundError("extracted rating not found")
}

func (s *stubStore) ListExtractedRatings(sessionID string) ([]*ExtractedRating, error) {
	return append([]*ExtractedRating(nil), s.ratingsBySession[sessionID]...), nil
}

func (s *stubStore) AddMetricResult(mr *MetricResult) error {
	s.metricResults = append(s.metricResults, mr)
	return nil
}

func (s *stubStore) LatestMetricResultBySurvey(surveyID string) (*MetricResult, error) {
	var latest *MetricResult
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

func (s *stubStore) LatestMetricResultForTeam(teamID, excludeSurveyID string) (*MetricResult, error) {
	var latest *MetricResult
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

func (s *stubStore) AddWorkspace(w *Workspace) error { s.workspaces[w.ID] = w; return nil }

func (s *stubStore) AddUser(u *User) error {
	s.users[strings.ToLower(u.Email)] = u
	return nil
}

func (s *stubStore) FindUserByEmail(email string) (*User, error) {
	return s.users[strings.ToLower(email)], nil
}

var (
	_ TeamStore     = (*stubStore)(nil)
	_ SurveyStore   = (*stubStore)(nil)
	_ ResponseStore = (*stubStore)(nil)
	_ ChatStore     = (*stubStore)(nil)
	_ MetricsStore  = (*stubStore)(nil)
	_ AuthStore     = (*stubStore)(nil)
)
