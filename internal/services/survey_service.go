package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SurveyStore abstracts persistence for the survey lifecycle manager.
type SurveyStore interface {
	GetTeam(id string) (*Team, error)
	GetOccupation(id string) (*Occupation, error)
	AddSurvey(s *Survey) error
	GetSurvey(id string) (*Survey, error)
	UpdateSurvey(s *Survey) error
	DeleteSurvey(id string) error
	ListSurveys(status SurveyStatus, teamID string) ([]*Survey, error)
	ReplaceQuestions(surveyID string, qs []*Question) error
	ListQuestions(surveyID string) ([]*Question, error)
	AddResponse(r *Response) error
	ListResponsesBySurvey(surveyID string) ([]*Response, error)
}

// SurveyService drives the draft -> active -> closed lifecycle. Every
// transition is validated before any mutation; violations surface as typed
// precondition errors and are never retried internally.
type SurveyService struct {
	store SurveyStore
	now   func() time.Time
	idGen func() string
	// onClose is invoked after a survey transitions to closed, to kick off
	// result computation with whatever responses exist at that moment.
	onClose func(surveyID string)
}

func NewSurveyService(store SurveyStore) *SurveyService {
	return &SurveyService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: uuid.NewString,
	}
}

// SetCloseHook registers the metric recalculation side effect fired on Close.
func (s *SurveyService) SetCloseHook(fn func(surveyID string)) { s.onClose = fn }

type SurveyCreate struct {
	WorkspaceID  string
	TeamID       string
	OccupationID string
	Name         string
}

func (s *SurveyService) Create(in SurveyCreate) (*Survey, error) {
	if strings.TrimSpace(in.TeamID) == "" {
		return nil, NewInvalidError("team_id is required")
	}
	team, err := s.store.GetTeam(in.TeamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, NewInvalidError("team not found")
	}
	occupationID := in.OccupationID
	if occupationID == "" {
		occupationID = team.OccupationID
	}
	if occ, err := s.store.GetOccupation(occupationID); err != nil {
		return nil, err
	} else if occ == nil {
		return nil, NewInvalidError("occupation not found")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = team.Name + " experience survey"
	}
	sv := &Survey{
		ID:           s.idGen(),
		WorkspaceID:  in.WorkspaceID,
		TeamID:       in.TeamID,
		OccupationID: occupationID,
		Name:         name,
		Status:       SurveyDraft,
		CreatedAt:    s.now(),
	}
	if err := s.store.AddSurvey(sv); err != nil {
		return nil, err
	}
	return sv, nil
}

func (s *SurveyService) Get(id string) (*Survey, error) {
	sv, err := s.store.GetSurvey(id)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, NewNotFoundError("survey not found")
	}
	return sv, nil
}

func (s *SurveyService) List(status SurveyStatus, teamID string) ([]*Survey, error) {
	return s.store.ListSurveys(status, teamID)
}

func (s *SurveyService) Questions(surveyID string) ([]*Question, error) {
	if _, err := s.Get(surveyID); err != nil {
		return nil, err
	}
	return s.store.ListQuestions(surveyID)
}

// Update replaces name and team while the survey is still a draft.
func (s *SurveyService) Update(id, name, teamID string) (*Survey, error) {
	sv, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sv.Status != SurveyDraft {
		return nil, NewPreconditionError("only draft surveys can be updated")
	}
	if strings.TrimSpace(name) != "" {
		sv.Name = strings.TrimSpace(name)
	}
	if teamID != "" && teamID != sv.TeamID {
		team, err := s.store.GetTeam(teamID)
		if err != nil {
			return nil, err
		}
		if team == nil {
			return nil, NewInvalidError("team not found")
		}
		sv.TeamID = teamID
	}
	if err := s.store.UpdateSurvey(sv); err != nil {
		return nil, err
	}
	return sv, nil
}

// Delete removes a draft survey. Active and closed surveys are never
// deleted, only closed.
func (s *SurveyService) Delete(id string) error {
	sv, err := s.Get(id)
	if err != nil {
		return err
	}
	if sv.Status != SurveyDraft {
		return NewPreconditionError("only draft surveys can be deleted")
	}
	return s.store.DeleteSurvey(id)
}

// GenerateQuestions populates the question list from the static bank.
// Draft-only; regenerating replaces the existing set (idempotent).
func (s *SurveyService) GenerateQuestions(surveyID string, useTaskSpecific bool, maxQuestions int) ([]*Question, error) {
	sv, err := s.Get(surveyID)
	if err != nil {
		return nil, err
	}
	if sv.Status != SurveyDraft {
		return nil, NewPreconditionError("questions can only be generated while the survey is a draft")
	}
	templates := buildQuestionSet(useTaskSpecific, maxQuestions)
	questions := make([]*Question, 0, len(templates))
	for i, tpl := range templates {
		questions = append(questions, &Question{
			ID:        s.idGen(),
			SurveyID:  surveyID,
			Dimension: tpl.Dimension,
			Text:      tpl.Text,
			Type:      tpl.Type,
			Metrics:   tpl.Metrics,
			LowLabel:  tpl.LowLabel,
			HighLabel: tpl.HighLabel,
			Order:     i,
			Required:  true,
		})
	}
	if err := s.store.ReplaceQuestions(surveyID, questions); err != nil {
		return nil, err
	}
	sv.EstimatedMinutes = EstimateCompletionMinutes(len(questions))
	if err := s.store.UpdateSurvey(sv); err != nil {
		return nil, err
	}
	return questions, nil
}

// Activate transitions draft -> active. The question list is frozen from
// this point on.
func (s *SurveyService) Activate(surveyID string) (*Survey, error) {
	sv, err := s.Get(surveyID)
	if err != nil {
		return nil, err
	}
	if sv.Status != SurveyDraft {
		return nil, NewPreconditionError("only draft surveys can be activated")
	}
	questions, err := s.store.ListQuestions(surveyID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, NewPreconditionError("survey has no questions")
	}
	sv.Status = SurveyActive
	if err := s.store.UpdateSurvey(sv); err != nil {
		return nil, err
	}
	return sv, nil
}

// Close transitions active -> closed (terminal) and fires the metric
// recalculation hook with whatever responses exist at that moment.
func (s *SurveyService) Close(surveyID string) (*Survey, error) {
	sv, err := s.Get(surveyID)
	if err != nil {
		return nil, err
	}
	if sv.Status != SurveyActive {
		return nil, NewPreconditionError("only active surveys can be closed")
	}
	now := s.now()
	sv.Status = SurveyClosed
	sv.ClosedAt = &now
	if err := s.store.UpdateSurvey(sv); err != nil {
		return nil, err
	}
	if s.onClose != nil {
		s.onClose(surveyID)
	}
	return sv, nil
}

// Clone creates a fresh draft copying the source's question set, regardless
// of source status. Responses are never copied.
func (s *SurveyService) Clone(surveyID, newName string) (*Survey, error) {
	src, err := s.Get(surveyID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(newName)
	if name == "" {
		name = src.Name + " (copy)"
	}
	clone := &Survey{
		ID:               s.idGen(),
		WorkspaceID:      src.WorkspaceID,
		TeamID:           src.TeamID,
		OccupationID:     src.OccupationID,
		Name:             name,
		Status:           SurveyDraft,
		EstimatedMinutes: src.EstimatedMinutes,
		CreatedAt:        s.now(),
	}
	if err := s.store.AddSurvey(clone); err != nil {
		return nil, err
	}
	srcQuestions, err := s.store.ListQuestions(surveyID)
	if err != nil {
		return nil, err
	}
	copied := make([]*Question, 0, len(srcQuestions))
	for _, q := range srcQuestions {
		cq := *q
		cq.ID = s.idGen()
		cq.SurveyID = clone.ID
		copied = append(copied, &cq)
	}
	if err := s.store.ReplaceQuestions(clone.ID, copied); err != nil {
		return nil, err
	}
	return clone, nil
}

// GenerateResponseLink mints a fresh single-use token. Repeated calls yield
// multiple independently valid links.
func (s *SurveyService) GenerateResponseLink(surveyID string) (*Response, error) {
	sv, err := s.Get(surveyID)
	if err != nil {
		return nil, err
	}
	if sv.Status != SurveyActive {
		return nil, NewPreconditionError("survey is not active")
	}
	r := &Response{
		ID:        s.idGen(),
		SurveyID:  surveyID,
		Token:     s.idGen(),
		StartedAt: s.now(),
	}
	if err := s.store.AddResponse(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Stats recomputes the response projection on every call; reading it has no
// side effects.
func (s *SurveyService) Stats(surveyID string) (*SurveyStats, error) {
	if _, err := s.Get(surveyID); err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponsesBySurvey(surveyID)
	if err != nil {
		return nil, err
	}
	stats := &SurveyStats{SurveyID: surveyID, TotalResponses: len(responses)}
	var totalSeconds int
	for _, r := range responses {
		if r.Complete {
			stats.CompleteResponses++
			totalSeconds += r.CompletionSeconds
		}
	}
	stats.MeetsPrivacyThreshold = MeetsPrivacyThreshold(stats.CompleteResponses)
	if stats.CompleteResponses > 0 {
		avg := float64(totalSeconds) / float64(stats.CompleteResponses)
		stats.AverageSeconds = &avg
	}
	return stats, nil
}
