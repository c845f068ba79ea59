package llm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/teampulse-app/teampulse/internal/services"
)

func TestParseInferred(t *testing.T) {
	inferred, err := parseInferred(`{"dimension": "tooling", "score": 4, "reasoning": "tools work well"}`)
	if err != nil {
		t.Fatalf("parseInferred returned error: %v", err)
	}
	if inferred.Dimension != services.DimensionTooling || inferred.Score != 4 {
		t.Fatalf("inferred = %+v", inferred)
	}
	if inferred.Reasoning != "tools work well" {
		t.Fatalf("reasoning = %q", inferred.Reasoning)
	}
}

func TestParseInferredNullDimension(t *testing.T) {
	inferred, err := parseInferred(`{"dimension": null}`)
	if err != nil {
		t.Fatalf("parseInferred returned error: %v", err)
	}
	if inferred != nil {
		t.Fatalf("inferred = %+v, want nil for a null dimension", inferred)
	}
}

func TestParseInferredClampsScore(t *testing.T) {
	inferred, err := parseInferred(`{"dimension": "safety", "score": 11}`)
	if err != nil {
		t.Fatalf("parseInferred returned error: %v", err)
	}
	if inferred.Score != 5 {
		t.Fatalf("score = %v, want clamped 5", inferred.Score)
	}
}

func TestParseInferredRejectsBadInput(t *testing.T) {
	if _, err := parseInferred(`not json at all`); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
	if _, err := parseInferred(`{"dimension": "velocity", "score": 3}`); err == nil {
		t.Fatalf("expected error for an unknown dimension")
	}
}

func TestParseInferredStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"dimension\": \"clarity\", \"score\": 2, \"reasoning\": \"vague specs\"}\n```"
	inferred, err := parseInferred(raw)
	if err != nil {
		t.Fatalf("parseInferred returned error: %v", err)
	}
	if inferred.Dimension != services.DimensionClarity || inferred.Score != 2 {
		t.Fatalf("inferred = %+v", inferred)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, c := range cases {
		if got := stripFences(c.in); got != c.want {
			t.Fatalf("stripFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractionPromptListsOnlyUncoveredDimensions(t *testing.T) {
	covered := []services.Dimension{services.DimensionClarity, services.DimensionTooling}
	prompt := extractionPrompt("Participant: hi\n", covered)

	if strings.Contains(prompt, "- clarity:") || strings.Contains(prompt, "- tooling:") {
		t.Fatalf("prompt lists covered dimensions")
	}
	for _, d := range []services.Dimension{services.DimensionProcess, services.DimensionSafety} {
		if !strings.Contains(prompt, fmt.Sprintf("- %s:", d)) {
			t.Fatalf("prompt missing uncovered dimension %s", d)
		}
	}
}

func TestFormatTranscript(t *testing.T) {
	history := []*services.ChatMessage{
		{Role: services.RoleAssistant, Content: "How is work going?"},
		{Role: services.RoleUser, Content: "Busy week."},
	}

	got := formatTranscript(history, "Lots of waiting on reviews.")
	want := "Assistant: How is work going?\nParticipant: Busy week.\nParticipant: Lots of waiting on reviews.\n"
	if got != want {
		t.Fatalf("transcript = %q, want %q", got, want)
	}
}

func TestFormatTranscriptTruncatesHistory(t *testing.T) {
	var history []*services.ChatMessage
	for i := 0; i < 30; i++ {
		history = append(history, &services.ChatMessage{
			Role: services.RoleUser, Content: fmt.Sprintf("message %d", i),
		})
	}

	got := formatTranscript(history, "latest")
	if strings.Contains(got, "message 9\n") {
		t.Fatalf("transcript kept messages beyond the window")
	}
	if !strings.Contains(got, "message 10\n") || !strings.Contains(got, "message 29\n") {
		t.Fatalf("transcript dropped messages inside the window: %q", got)
	}
}
