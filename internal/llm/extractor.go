// Package llm implements the chat interview's rating extractor on top of
// the OpenAI chat-completion API. The session state machine only sees the
// services.RatingExtractor interface; everything model-specific stays here.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/teampulse-app/teampulse/internal/services"
)

const defaultModel = openai.GPT4oMini

type Extractor struct {
	client *openai.Client
	model  string
}

var _ services.RatingExtractor = (*Extractor)(nil)

func New(apiKey, model string) *Extractor {
	if model == "" {
		model = defaultModel
	}
	return &Extractor{client: openai.NewClient(apiKey), model: model}
}

func (e *Extractor) Opening(ctx context.Context, occupationName string) (string, error) {
	return e.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: openingPrompt(occupationName)},
	}, 0.7)
}

func (e *Extractor) Reply(ctx context.Context, history []*services.ChatMessage, covered []services.Dimension, userContent string) (*services.ExtractorReply, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleSystem, Content: systemPrompt,
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == services.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser, Content: userContent,
	})

	content, err := e.complete(ctx, messages, 0.7)
	if err != nil {
		return nil, services.NewBadGatewayError("model backend unavailable")
	}

	reply := &services.ExtractorReply{Content: content}
	if len(covered) < services.DimensionCount() {
		inferred, err := e.extract(ctx, history, covered, userContent)
		if err != nil {
			// A failed extraction pass spoils nothing; the reply stands
			// and the dimension can be rated on a later turn.
			log.Printf("llm: rating extraction failed: %v", err)
		} else {
			reply.Inferred = inferred
		}
	}
	return reply, nil
}

func (e *Extractor) extract(ctx context.Context, history []*services.ChatMessage, covered []services.Dimension, userContent string) (*services.InferredRating, error) {
	transcript := formatTranscript(history, userContent)
	content, err := e.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: extractionPrompt(transcript, covered)},
	}, 0)
	if err != nil {
		return nil, err
	}
	return parseInferred(content)
}

func (e *Extractor) complete(ctx context.Context, messages []openai.ChatCompletionMessage, temperature float32) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func parseInferred(raw string) (*services.InferredRating, error) {
	var payload struct {
		Dimension *string `json:"dimension"`
		Score     float64 `json:"score"`
		Reasoning string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return nil, fmt.Errorf("parse extraction: %w", err)
	}
	if payload.Dimension == nil || *payload.Dimension == "" {
		return nil, nil
	}
	dim, ok := services.ParseDimension(*payload.Dimension)
	if !ok {
		return nil, fmt.Errorf("parse extraction: unknown dimension %q", *payload.Dimension)
	}
	return &services.InferredRating{
		Dimension: dim,
		Score:     services.ClampScore(payload.Score),
		Reasoning: payload.Reasoning,
	}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
