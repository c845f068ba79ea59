package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ResponseStore abstracts persistence for the structured-form modality.
type ResponseStore interface {
	GetResponseByToken(token string) (*Response, error)
	UpdateResponse(r *Response) error
	GetSurvey(id string) (*Survey, error)
	ListQuestions(surveyID string) ([]*Question, error)
	ListAnswersByResponse(responseID string) ([]*Answer, error)
	ReplaceAnswers(responseID string, answers []*Answer) error
}

// ResponseService handles the anonymous form flow: resolving a response
// link to its survey and accepting a complete submission.
type ResponseService struct {
	store ResponseStore
	now   func() time.Time
	idGen func() string
}

func NewResponseService(store ResponseStore) *ResponseService {
	return &ResponseService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: uuid.NewString,
	}
}

// SurveyView is what a respondent sees when opening a response link. It
// drives modality selection and resume detection on the client.
type SurveyView struct {
	SurveyID         string            `json:"survey_id"`
	SurveyName       string            `json:"survey_name"`
	EstimatedMinutes int               `json:"estimated_completion_minutes"`
	Questions        []*Question       `json:"questions"`
	ExistingAnswers  []*ExistingAnswer `json:"existing_answers"`
}

type ExistingAnswer struct {
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`
}

// SurveyByToken resolves a response link. Consumed tokens are distinguished
// from invalid ones so clients can show a completion acknowledgment.
func (s *ResponseService) SurveyByToken(token string) (*SurveyView, error) {
	resp, err := s.store.GetResponseByToken(token)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, NewNotFoundError("invalid response token")
	}
	sv, err := s.store.GetSurvey(resp.SurveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, NewNotFoundError("survey not found")
	}
	if resp.Complete {
		return nil, NewAlreadySubmittedError("response already submitted")
	}
	if sv.Status != SurveyActive {
		return nil, NewPreconditionError("survey is not accepting responses")
	}
	questions, err := s.store.ListQuestions(sv.ID)
	if err != nil {
		return nil, err
	}
	answers, err := s.store.ListAnswersByResponse(resp.ID)
	if err != nil {
		return nil, err
	}
	existing := make([]*ExistingAnswer, 0, len(answers))
	for _, a := range answers {
		existing = append(existing, &ExistingAnswer{QuestionID: a.QuestionID, Value: a.Value})
	}
	return &SurveyView{
		SurveyID:         sv.ID,
		SurveyName:       sv.Name,
		EstimatedMinutes: sv.EstimatedMinutes,
		Questions:        questions,
		ExistingAnswers:  existing,
	}, nil
}

type AnswerSubmit struct {
	QuestionID string `json:"question_id"`
	Value      string `json:"value"`
	Comment    string `json:"comment,omitempty"`
}

type SubmitResult struct {
	CompletionSeconds int `json:"completion_time_seconds"`
}

// Submit stores a complete form submission and consumes the response link.
// All validation happens before any answers are written.
func (s *ResponseService) Submit(token string, answers []AnswerSubmit) (*SubmitResult, error) {
	resp, err := s.store.GetResponseByToken(token)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, NewNotFoundError("invalid response token")
	}
	if resp.Complete {
		return nil, NewAlreadySubmittedError("response already submitted")
	}
	sv, err := s.store.GetSurvey(resp.SurveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, NewNotFoundError("survey not found")
	}
	if sv.Status != SurveyActive {
		return nil, NewPreconditionError("survey is not accepting responses")
	}
	questions, err := s.store.ListQuestions(sv.ID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*Question, len(questions))
	required := map[string]bool{}
	for _, q := range questions {
		byID[q.ID] = q
		if q.Required {
			required[q.ID] = true
		}
	}
	stored := make([]*Answer, 0, len(answers))
	for _, in := range answers {
		q, ok := byID[in.QuestionID]
		if !ok {
			return nil, NewInvalidError("unknown question: " + in.QuestionID)
		}
		if strings.TrimSpace(in.Value) == "" {
			return nil, NewInvalidError("empty answer for question: " + in.QuestionID)
		}
		delete(required, in.QuestionID)
		stored = append(stored, &Answer{
			ID:           s.idGen(),
			ResponseID:   resp.ID,
			QuestionID:   in.QuestionID,
			Value:        in.Value,
			NumericValue: normalizeAnswerValue(in.Value, q.Type),
			Comment:      in.Comment,
		})
	}
	if len(required) > 0 {
		return nil, NewInvalidError("missing answers for required questions")
	}
	if err := s.store.ReplaceAnswers(resp.ID, stored); err != nil {
		return nil, err
	}
	now := s.now()
	resp.Complete = true
	resp.SubmittedAt = &now
	resp.CompletionSeconds = int(now.Sub(resp.StartedAt).Seconds())
	if err := s.store.UpdateResponse(resp); err != nil {
		return nil, err
	}
	return &SubmitResult{CompletionSeconds: resp.CompletionSeconds}, nil
}

// normalizeAnswerValue maps a raw answer onto the shared 0-100 scale:
// Likert 1-5 becomes score*20, percentage sliders pass through clamped,
// free text carries no numeric value.
func normalizeAnswerValue(value string, qt QuestionType) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	switch qt {
	case QuestionLikert5:
		return ClampScore(n) * scoreScale
	case QuestionSlider:
		if n < 0 {
			return 0
		}
		if n > 100 {
			return 100
		}
		return n
	default:
		return 0
	}
}
