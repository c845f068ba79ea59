package services

// Respondent-facing scores live on a 1-5 scale; persisted final scores are
// rescaled to 0-100 so they share a numeric space with the other survey
// metrics.
const (
	minScore = 1
	maxScore = 5
	// scoreScale maps a 1-5 score onto 0-100.
	scoreScale = 20
)

// FinalizeRating resolves a pending AI-inferred rating into a finalized
// ExtractedRating. When the respondent confirms, the final score derives
// from the raw inferred score without rounding; when they reject,
// adjustedScore (integer 1-5) overrides it. The function is pure: given the
// same pending rating and inputs it always produces the same result.
func FinalizeRating(pending *PendingRating, confirmed bool, adjustedScore *int) (*ExtractedRating, error) {
	if pending == nil {
		return nil, NewPreconditionError("no rating is pending confirmation")
	}
	rating := &ExtractedRating{
		Dimension:     pending.Dimension,
		AIScore:       pending.Score,
		AIReasoning:   pending.Reasoning,
		UserConfirmed: true,
	}
	if confirmed {
		rating.FinalScore = pending.Score * scoreScale
		return rating, nil
	}
	if adjustedScore == nil {
		return nil, NewInvalidError("adjusted_score is required when rejecting a rating")
	}
	if *adjustedScore < minScore || *adjustedScore > maxScore {
		return nil, NewInvalidError("adjusted_score must be between 1 and 5")
	}
	adjusted := *adjustedScore
	rating.AdjustedScore = &adjusted
	rating.FinalScore = float64(adjusted) * scoreScale
	return rating, nil
}

// ClampScore bounds an inferred score to the valid 1-5 range. Extractor
// output is untrusted; everything downstream assumes the range holds.
func ClampScore(score float64) float64 {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
