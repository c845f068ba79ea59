package services

import "testing"

func TestBuildQuestionSetCoversAllDimensions(t *testing.T) {
	set := buildQuestionSet(false, 0)
	if len(set) == 0 || len(set) > defaultMaxQuestions {
		t.Fatalf("got %d questions, want 1..%d", len(set), defaultMaxQuestions)
	}
	byDim := map[Dimension]int{}
	for _, tpl := range set {
		byDim[tpl.Dimension]++
	}
	for _, d := range AllDimensions() {
		if byDim[d] == 0 {
			t.Fatalf("no question for dimension %s", d)
		}
	}
}

func TestBuildQuestionSetCoresComeFirst(t *testing.T) {
	set := buildQuestionSet(false, 0)
	coreCount := 0
	for _, tpl := range set {
		if tpl.Core {
			coreCount++
		}
	}
	for i := 0; i < coreCount; i++ {
		if !set[i].Core {
			t.Fatalf("question %d is not a core question but precedes one", i)
		}
	}
}

func TestBuildQuestionSetRespectsCap(t *testing.T) {
	set := buildQuestionSet(false, 12)
	if len(set) != 12 {
		t.Fatalf("got %d questions, want 12", len(set))
	}
}

func TestBuildQuestionSetTaskSpecific(t *testing.T) {
	base := buildQuestionSet(false, 0)
	withTask := buildQuestionSet(true, defaultMaxQuestions+10)
	if len(withTask) <= len(base) {
		t.Fatalf("task-specific set has %d questions, base has %d", len(withTask), len(base))
	}
	found := false
	for _, tpl := range withTask {
		if tpl.Text == taskSpecificTemplates[0].Text {
			found = true
		}
	}
	if !found {
		t.Fatalf("task-specific question missing from the set")
	}
}

func TestBuildQuestionSetIncludesPortfolioSliders(t *testing.T) {
	sliders := 0
	for _, tpl := range buildQuestionSet(false, 0) {
		if tpl.Type == QuestionSlider {
			sliders++
		}
	}
	if sliders < 2 {
		t.Fatalf("got %d slider questions, want at least 2", sliders)
	}
}

func TestEstimateCompletionMinutes(t *testing.T) {
	if got := EstimateCompletionMinutes(0); got != 1 {
		t.Fatalf("EstimateCompletionMinutes(0) = %d, want 1", got)
	}
	if got := EstimateCompletionMinutes(18); got != 8 {
		t.Fatalf("EstimateCompletionMinutes(18) = %d, want 8", got)
	}
}
