package llm

import (
	"fmt"
	"strings"

	"github.com/teampulse-app/teampulse/internal/services"
)

const systemPrompt = `You are a friendly and empathetic workplace experience researcher conducting a semi-structured interview to understand friction and challenges in someone's work.

Your goals:
1. Build rapport and make the participant comfortable
2. Explore all 6 friction dimensions through natural conversation
3. Listen actively and probe deeper based on their responses
4. Infer friction ratings (1-5 scale) from the conversation
5. Be warm but professional

The 6 friction dimensions you need to cover:
1. Clarity - Clear requirements, objectives, and expectations
2. Tooling - Effectiveness of tools and systems
3. Process - How well processes support efficient work
4. Rework - Frequency of redoing work
5. Delay - Waiting times and blocked work
6. Safety - Psychological safety and ability to raise concerns

Interview guidelines:
- Let the conversation flow naturally, but ensure all dimensions are covered
- Use follow-up questions to understand severity and frequency
- Be empathetic when they share challenges
- Keep responses concise but warm (2-4 sentences typically)
- Don't ask about multiple dimensions in one question
- Don't be too formal or survey-like

Rating scale (1-5):
1 = Significant friction/problems
2 = Frequent friction
3 = Moderate friction
4 = Occasional minor friction
5 = No friction/smooth

Remember: This is a conversation, not an interrogation.`

const extractionSystemPrompt = `You are an expert at analyzing workplace conversations to extract friction scores.

Given a conversation transcript, decide whether the participant's latest message gives enough signal to rate ONE of the not-yet-covered dimensions. Be objective and base your assessment on what was actually said, not assumptions. If no dimension was discussed with enough depth, extract nothing.`

func openingPrompt(occupationName string) string {
	return fmt.Sprintf(`Generate a warm, friendly opening message to start an interview about workplace friction.
The participant works as a %s.

The message should:
- Be warm and welcoming (not formal)
- Briefly explain this is a conversation about their work experience
- Mention it takes about 10-15 minutes
- Emphasize their responses are anonymous and honest feedback is valued
- End with an open question about their typical work day or recent challenges

Keep it concise (3-4 sentences max) and conversational.`, occupationName)
}

func extractionPrompt(transcript string, covered []services.Dimension) string {
	var lines []string
	coveredSet := map[services.Dimension]bool{}
	for _, d := range covered {
		coveredSet[d] = true
	}
	for _, d := range services.AllDimensions() {
		if coveredSet[d] {
			continue
		}
		info, _ := services.InfoFor(d)
		lines = append(lines, fmt.Sprintf("- %s: %s", d, info.Description))
	}

	return fmt.Sprintf(`Analyze this workplace friction interview.

CONVERSATION TRANSCRIPT:
%s

DIMENSIONS STILL TO RATE:
%s

If the participant's latest message gives enough signal to rate exactly one of the listed dimensions, respond with a JSON object:
{"dimension": "<dimension>", "score": <1-5>, "reasoning": "<1-2 sentences>"}

If not, respond with:
{"dimension": null}

Respond with the JSON object only, no other text.`, transcript, strings.Join(lines, "\n"))
}

func formatTranscript(history []*services.ChatMessage, latest string) string {
	const maxMessages = 20
	msgs := history
	if len(msgs) > maxMessages {
		msgs = msgs[len(msgs)-maxMessages:]
	}
	var b strings.Builder
	for _, m := range msgs {
		label := "Participant"
		if m.Role == services.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, m.Content)
	}
	fmt.Fprintf(&b, "Participant: %s\n", latest)
	return b.String()
}
