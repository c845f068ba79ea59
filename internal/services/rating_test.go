package services

import "testing"

func TestFinalizeRatingConfirmed(t *testing.T) {
	pending := &PendingRating{Dimension: DimensionClarity, Score: 3.5, Reasoning: "mixed signals"}

	rating, err := FinalizeRating(pending, true, nil)
	if err != nil {
		t.Fatalf("FinalizeRating returned error: %v", err)
	}
	if rating.FinalScore != 70 {
		t.Fatalf("final score = %v, want 70 (raw 3.5 rescaled, not rounded)", rating.FinalScore)
	}
	if !rating.UserConfirmed || rating.AdjustedScore != nil {
		t.Fatalf("rating = %+v, want confirmed with no adjustment", rating)
	}
	if rating.AIScore != 3.5 || rating.AIReasoning != "mixed signals" {
		t.Fatalf("inferred fields not preserved: %+v", rating)
	}
}

func TestFinalizeRatingRejected(t *testing.T) {
	pending := &PendingRating{Dimension: DimensionSafety, Score: 4}
	adjusted := 2

	rating, err := FinalizeRating(pending, false, &adjusted)
	if err != nil {
		t.Fatalf("FinalizeRating returned error: %v", err)
	}
	if rating.FinalScore != 40 {
		t.Fatalf("final score = %v, want 40", rating.FinalScore)
	}
	if rating.AdjustedScore == nil || *rating.AdjustedScore != 2 {
		t.Fatalf("adjusted score = %v, want 2", rating.AdjustedScore)
	}
	if rating.AIScore != 4 {
		t.Fatalf("ai score = %v, want the original 4 preserved", rating.AIScore)
	}
}

func TestFinalizeRatingRejectedRequiresAdjustment(t *testing.T) {
	pending := &PendingRating{Dimension: DimensionSafety, Score: 4}

	if _, err := FinalizeRating(pending, false, nil); !IsCode(err, ErrorInvalid) {
		t.Fatalf("err = %v, want invalid", err)
	}
}

func TestFinalizeRatingAdjustmentRange(t *testing.T) {
	pending := &PendingRating{Dimension: DimensionSafety, Score: 4}
	for _, bad := range []int{0, 6, -1} {
		v := bad
		if _, err := FinalizeRating(pending, false, &v); !IsCode(err, ErrorInvalid) {
			t.Fatalf("adjusted %d: err = %v, want invalid", bad, err)
		}
	}
	for _, good := range []int{1, 5} {
		v := good
		rating, err := FinalizeRating(pending, false, &v)
		if err != nil {
			t.Fatalf("adjusted %d: error %v", good, err)
		}
		if rating.FinalScore != float64(good)*20 {
			t.Fatalf("adjusted %d: final score = %v", good, rating.FinalScore)
		}
	}
}

func TestFinalizeRatingNilPending(t *testing.T) {
	if _, err := FinalizeRating(nil, true, nil); !IsCode(err, ErrorPrecondition) {
		t.Fatalf("err = %v, want precondition_failed", err)
	}
}

func TestClampScore(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 1},
		{1, 1},
		{3.2, 3.2},
		{5, 5},
		{7.5, 5},
	}
	for _, c := range cases {
		if got := ClampScore(c.in); got != c.want {
			t.Fatalf("ClampScore(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
