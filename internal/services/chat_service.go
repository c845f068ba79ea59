package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatStore abstracts persistence for the chat session state machine.
type ChatStore interface {
	GetResponseByToken(token string) (*Response, error)
	GetResponse(id string) (*Response, error)
	UpdateResponse(r *Response) error
	GetSurvey(id string) (*Survey, error)
	GetOccupation(id string) (*Occupation, error)
	AddChatSession(cs *ChatSession) error
	GetChatSessionByToken(token string) (*ChatSession, error)
	GetChatSessionByResponse(responseID string) (*ChatSession, error)
	UpdateChatSession(cs *ChatSession) error
	AddChatMessage(m *ChatMessage) error
	ListChatMessages(sessionID string) ([]*ChatMessage, error)
	AddExtractedRating(r *ExtractedRating) error
	UpdateExtractedRating(r *ExtractedRating) error
	ListExtractedRatings(sessionID string) ([]*ExtractedRating, error)
}

// ChatService drives a respondent's conversational interview:
// collecting -> rating_confirmation (once per dimension) -> completed.
// Inference is delegated to the RatingExtractor; finalizing a provisional
// score is delegated to FinalizeRating. All transitions for one session are
// strictly sequential; sessions for different respondents are independent.
type ChatService struct {
	store     ChatStore
	extractor RatingExtractor
	now       func() time.Time
	idGen     func() string
	// onComplete fires metric recalculation after a session completes.
	// Failures there never block completion.
	onComplete func(surveyID string)
}

func NewChatService(store ChatStore, extractor RatingExtractor) *ChatService {
	if extractor == nil {
		extractor = StaticExtractor{}
	}
	return &ChatService{
		store:     store,
		extractor: extractor,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     uuid.NewString,
	}
}

// SetCompleteHook registers the metric recalculation side effect.
func (s *ChatService) SetCompleteHook(fn func(surveyID string)) { s.onComplete = fn }

type StartResult struct {
	Session        *ChatSession `json:"session"`
	OpeningMessage *ChatMessage `json:"opening_message"`
}

// Start exchanges a single-use response link for a chat session. Re-issuing
// Start with the same link returns the existing session unchanged, so a
// respondent who lost the page can resume.
func (s *ChatService) Start(ctx context.Context, linkToken string) (*StartResult, error) {
	resp, err := s.store.GetResponseByToken(linkToken)
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
	if existing, err := s.store.GetChatSessionByResponse(resp.ID); err != nil {
		return nil, err
	} else if existing != nil {
		msgs, err := s.store.ListChatMessages(existing.ID)
		if err != nil {
			return nil, err
		}
		result := &StartResult{Session: existing}
		if len(msgs) > 0 {
			result.OpeningMessage = msgs[0]
		}
		return result, nil
	}

	occupationName := "knowledge worker"
	if occ, err := s.store.GetOccupation(sv.OccupationID); err != nil {
		return nil, err
	} else if occ != nil {
		occupationName = occ.Name
	}

	session := &ChatSession{
		ID:         s.idGen(),
		SurveyID:   sv.ID,
		ResponseID: resp.ID,
		Token:      s.idGen(),
		Status:     SessionCollecting,
		Covered:    NewCoverage(),
		StartedAt:  s.now(),
	}
	if err := s.store.AddChatSession(session); err != nil {
		return nil, err
	}

	content, err := s.extractor.Opening(ctx, occupationName)
	if err != nil || strings.TrimSpace(content) == "" {
		content, _ = StaticExtractor{}.Opening(ctx, occupationName)
	}
	opening := &ChatMessage{
		ID:        s.idGen(),
		SessionID: session.ID,
		Role:      RoleAssistant,
		Content:   content,
		Sequence:  0,
		CreatedAt: s.now(),
	}
	if err := s.store.AddChatMessage(opening); err != nil {
		return nil, err
	}
	return &StartResult{Session: session, OpeningMessage: opening}, nil
}

type MessageResult struct {
	UserMessage      *ChatMessage       `json:"user_message"`
	AssistantMessage *ChatMessage       `json:"assistant_message"`
	Status           SessionStatus      `json:"session_status"`
	CurrentDimension Dimension          `json:"current_dimension,omitempty"`
	Covered          map[Dimension]bool `json:"dimensions_covered"`
	Pending          *PendingRating     `json:"pending_rating_confirmation,omitempty"`
}

// SendMessage appends a user turn and produces the assistant's reply. When
// the extractor infers a rating for an uncovered dimension, the session
// moves to rating_confirmation; an inferred rating for a dimension that is
// already covered is dropped and the session stays in collecting.
func (s *ChatService) SendMessage(ctx context.Context, sessionToken, content string) (*MessageResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewInvalidError("message content is required")
	}
	session, err := s.sessionByToken(sessionToken)
	if err != nil {
		return nil, err
	}
	switch session.Status {
	case SessionCompleted:
		return nil, NewPreconditionError("session is completed")
	case SessionConfirmation:
		return nil, NewPreconditionError("a rating is awaiting confirmation")
	}

	history, err := s.store.ListChatMessages(session.ID)
	if err != nil {
		return nil, err
	}
	covered := make([]Dimension, 0, DimensionCount())
	for _, d := range AllDimensions() {
		if session.Covered[d] {
			covered = append(covered, d)
		}
	}

	// The extractor runs before anything is persisted: a transient backend
	// failure surfaces as bad_gateway with no state change, so the caller
	// can safely re-issue the same message.
	reply, err := s.extractor.Reply(ctx, history, covered, content)
	if err != nil {
		if IsCode(err, ErrorBadGateway) {
			return nil, err
		}
		return nil, NewBadGatewayError("assistant is temporarily unavailable")
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		reply = &ExtractorReply{Content: FallbackReply}
	}

	userMsg := &ChatMessage{
		ID:               s.idGen(),
		SessionID:        session.ID,
		Role:             RoleUser,
		Content:          content,
		DimensionContext: session.CurrentDimension,
		Sequence:         len(history),
		CreatedAt:        s.now(),
	}
	if err := s.store.AddChatMessage(userMsg); err != nil {
		return nil, err
	}

	dimensionContext := session.CurrentDimension
	if inferred := reply.Inferred; inferred != nil {
		if _, ok := ParseDimension(string(inferred.Dimension)); ok && !session.Covered[inferred.Dimension] {
			score := ClampScore(inferred.Score)
			rating := &ExtractedRating{
				ID:          s.idGen(),
				SessionID:   session.ID,
				Dimension:   inferred.Dimension,
				AIScore:     score,
				AIReasoning: inferred.Reasoning,
				CreatedAt:   s.now(),
			}
			if err := s.store.AddExtractedRating(rating); err != nil {
				return nil, err
			}
			session.Status = SessionConfirmation
			session.CurrentDimension = inferred.Dimension
			session.Pending = &PendingRating{
				Dimension: inferred.Dimension,
				Score:     score,
				Reasoning: inferred.Reasoning,
			}
			dimensionContext = inferred.Dimension
		}
	}

	assistantMsg := &ChatMessage{
		ID:               s.idGen(),
		SessionID:        session.ID,
		Role:             RoleAssistant,
		Content:          reply.Content,
		DimensionContext: dimensionContext,
		Sequence:         len(history) + 1,
		CreatedAt:        s.now(),
	}
	if err := s.store.AddChatMessage(assistantMsg); err != nil {
		return nil, err
	}
	if err := s.store.UpdateChatSession(session); err != nil {
		return nil, err
	}
	return &MessageResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Status:           session.Status,
		CurrentDimension: session.CurrentDimension,
		Covered:          session.Covered,
		Pending:          session.Pending,
	}, nil
}

type ConfirmResult struct {
	Rating           *ExtractedRating `json:"rating"`
	NextDimension    *Dimension       `json:"next_dimension,omitempty"`
	AllConfirmed     bool             `json:"all_confirmed"`
	AssistantMessage *ChatMessage     `json:"assistant_message,omitempty"`
}

// ConfirmRating finalizes the pending provisional rating for the current
// dimension. With dimensions left to discuss it returns the next one and
// reopens free-form input; once every dimension is covered it signals
// all_confirmed and waits for an explicit Complete.
func (s *ChatService) ConfirmRating(sessionToken string, dimension Dimension, confirmed bool, adjustedScore *int) (*ConfirmResult, error) {
	session, err := s.sessionByToken(sessionToken)
	if err != nil {
		return nil, err
	}
	if session.Status != SessionConfirmation || session.Pending == nil {
		return nil, NewPreconditionError("no rating is pending confirmation")
	}
	if dimension != session.Pending.Dimension {
		return nil, NewPreconditionError(fmt.Sprintf("dimension %q is not awaiting confirmation", dimension))
	}

	finalized, err := FinalizeRating(session.Pending, confirmed, adjustedScore)
	if err != nil {
		return nil, err
	}
	stored, err := s.ratingFor(session.ID, dimension)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewPreconditionError("no extracted rating exists for this dimension")
	}
	if stored.UserConfirmed {
		return nil, NewPreconditionError("rating is already finalized")
	}
	stored.UserConfirmed = true
	stored.AdjustedScore = finalized.AdjustedScore
	stored.FinalScore = finalized.FinalScore
	if err := s.store.UpdateExtractedRating(stored); err != nil {
		return nil, err
	}

	session.Covered[dimension] = true
	session.Pending = nil
	result := &ConfirmResult{Rating: stored}

	if next, ok := NextUncovered(session.Covered); ok {
		session.Status = SessionCollecting
		session.CurrentDimension = next
		msgs, err := s.store.ListChatMessages(session.ID)
		if err != nil {
			return nil, err
		}
		prompt := &ChatMessage{
			ID:               s.idGen(),
			SessionID:        session.ID,
			Role:             RoleAssistant,
			Content:          nextTopicPrompt(next),
			DimensionContext: next,
			Sequence:         len(msgs),
			CreatedAt:        s.now(),
		}
		if err := s.store.AddChatMessage(prompt); err != nil {
			return nil, err
		}
		result.NextDimension = &next
		result.AssistantMessage = prompt
	} else {
		session.CurrentDimension = ""
		result.AllConfirmed = true
	}
	if err := s.store.UpdateChatSession(session); err != nil {
		return nil, err
	}
	return result, nil
}

type CompleteResult struct {
	Session          *ChatSession       `json:"session"`
	ExtractedRatings []*ExtractedRating `json:"extracted_ratings"`
	MetricsTriggered bool               `json:"metrics_calculated"`
}

// Complete freezes the session and consumes the underlying response link.
// Valid only once every registry dimension has a finalized rating; calling
// it on an already completed session returns the frozen state unchanged.
func (s *ChatService) Complete(sessionToken string) (*CompleteResult, error) {
	session, err := s.sessionByToken(sessionToken)
	if err != nil {
		return nil, err
	}
	ratings, err := s.store.ListExtractedRatings(session.ID)
	if err != nil {
		return nil, err
	}
	if session.Status == SessionCompleted {
		return &CompleteResult{Session: session, ExtractedRatings: ratings, MetricsTriggered: true}, nil
	}

	remaining := 0
	confirmedByDim := map[Dimension]bool{}
	for _, r := range ratings {
		if r.UserConfirmed {
			confirmedByDim[r.Dimension] = true
		}
	}
	for _, d := range AllDimensions() {
		if !session.Covered[d] || !confirmedByDim[d] {
			remaining++
		}
	}
	if remaining > 0 {
		return nil, NewPreconditionError(fmt.Sprintf("%d dimensions still need confirmation", remaining))
	}

	resp, err := s.store.GetResponse(session.ResponseID)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, NewNotFoundError("response not found")
	}
	now := s.now()
	resp.Complete = true
	resp.SubmittedAt = &now
	resp.CompletionSeconds = int(now.Sub(session.StartedAt).Seconds())
	if err := s.store.UpdateResponse(resp); err != nil {
		return nil, err
	}

	session.Status = SessionCompleted
	session.CompletedAt = &now
	if err := s.store.UpdateChatSession(session); err != nil {
		return nil, err
	}

	triggered := false
	if s.onComplete != nil {
		s.onComplete(session.SurveyID)
		triggered = true
	}
	return &CompleteResult{Session: session, ExtractedRatings: ratings, MetricsTriggered: triggered}, nil
}

type ConversationView struct {
	Session          *ChatSession       `json:"session"`
	Messages         []*ChatMessage     `json:"messages"`
	ExtractedRatings []*ExtractedRating `json:"extracted_ratings"`
}

// Conversation returns the session with its ordered transcript and ratings.
func (s *ChatService) Conversation(sessionToken string) (*ConversationView, error) {
	session, err := s.sessionByToken(sessionToken)
	if err != nil {
		return nil, err
	}
	msgs, err := s.store.ListChatMessages(session.ID)
	if err != nil {
		return nil, err
	}
	ratings, err := s.store.ListExtractedRatings(session.ID)
	if err != nil {
		return nil, err
	}
	return &ConversationView{Session: session, Messages: msgs, ExtractedRatings: ratings}, nil
}

func (s *ChatService) sessionByToken(token string) (*ChatSession, error) {
	session, err := s.store.GetChatSessionByToken(token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, NewNotFoundError("chat session not found")
	}
	return session, nil
}

func (s *ChatService) ratingFor(sessionID string, dimension Dimension) (*ExtractedRating, error) {
	ratings, err := s.store.ListExtractedRatings(sessionID)
	if err != nil {
		return nil, err
	}
	for _, r := range ratings {
		if r.Dimension == dimension {
			return r, nil
		}
	}
	return nil, nil
}

func nextTopicPrompt(d Dimension) string {
	info, ok := InfoFor(d)
	if !ok || len(info.ProbingTopics) == 0 {
		return "Thanks for confirming. Let's keep going - what else stands out about your work experience?"
	}
	return fmt.Sprintf("Thanks for confirming. Next I'd like to hear about %s. %s",
		strings.ToLower(info.Name), info.ProbingTopics[0])
}
