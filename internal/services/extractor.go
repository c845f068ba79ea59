package services

import (
	"context"
	"fmt"
	"strings"
)

// InferredRating is the extractor's provisional judgement for one dimension.
// Scores are on the respondent-facing 1-5 scale.
type InferredRating struct {
	Dimension Dimension
	Score     float64
	Reasoning string
}

// ExtractorReply is one assistant turn: reply text plus, optionally, an
// inferred rating the session should put up for confirmation.
type ExtractorReply struct {
	Content  string
	Inferred *InferredRating
}

// RatingExtractor produces assistant turns for the chat interview. The
// inference algorithm itself is opaque to the session state machine; it only
// consumes the dimension, score, and reasoning the extractor surfaces.
type RatingExtractor interface {
	Opening(ctx context.Context, occupationName string) (string, error)
	Reply(ctx context.Context, history []*ChatMessage, covered []Dimension, userContent string) (*ExtractorReply, error)
}

// StaticExtractor is the deterministic fallback used when no model backend
// is configured, and per-turn when the backend fails. It detects the
// discussed dimension by keyword and scores it neutrally.
type StaticExtractor struct{}

var dimensionKeywords = map[Dimension][]string{
	DimensionClarity: {"requirements", "unclear", "objectives", "expectations", "understand", "definition"},
	DimensionTooling: {"tools", "software", "systems", "technology", "equipment", "applications"},
	DimensionProcess: {"process", "workflow", "procedure", "steps", "bureaucracy", "approval"},
	DimensionRework:  {"redo", "rework", "revision", "mistake", "error", "fix"},
	DimensionDelay:   {"wait", "delay", "block", "stuck", "pending", "queue", "slow"},
	DimensionSafety:  {"comfortable", "safe", "fear", "concern", "speak up", "admit", "help"},
}

func (StaticExtractor) Opening(_ context.Context, occupationName string) (string, error) {
	if occupationName == "" {
		occupationName = "knowledge worker"
	}
	return fmt.Sprintf(
		"Hi! Thanks for taking the time to chat with me today. I'm here to learn about "+
			"your work experience as a %s - what's working well and what could be better. "+
			"This usually takes about 10-15 minutes, and your responses are completely "+
			"anonymous. To start, can you tell me a bit about your typical work day or any "+
			"recent challenges you've faced?", occupationName), nil
}

func (StaticExtractor) Reply(_ context.Context, _ []*ChatMessage, covered []Dimension, userContent string) (*ExtractorReply, error) {
	dim, ok := DetectDimension(userContent)
	if !ok {
		return &ExtractorReply{Content: FallbackReply}, nil
	}
	for _, c := range covered {
		if c == dim {
			return &ExtractorReply{Content: FallbackReply}, nil
		}
	}
	info, _ := InfoFor(dim)
	return &ExtractorReply{
		Content: fmt.Sprintf(
			"Based on what you shared about %s, I'd estimate around 3 out of 5. "+
				"Does that feel right, or would you rate it differently?",
			strings.ToLower(info.Name)),
		Inferred: &InferredRating{
			Dimension: dim,
			Score:     3,
			Reasoning: "Neutral estimate from keyword match; model backend unavailable.",
		},
	}, nil
}

// FallbackReply keeps the conversation moving when no rating can be inferred.
const FallbackReply = "Thank you for sharing that. Can you tell me more about " +
	"the challenges you face in your day-to-day work?"

// DetectDimension finds the first registry dimension whose keywords appear
// in the text. Registry order makes the match deterministic.
func DetectDimension(text string) (Dimension, bool) {
	lowered := strings.ToLower(text)
	for _, d := range AllDimensions() {
		for _, kw := range dimensionKeywords[d] {
			if strings.Contains(lowered, kw) {
				return d, true
			}
		}
	}
	return "", false
}
