package services

import (
	"fmt"
	"testing"
	"time"
)

func newMetricsFixture(t *testing.T) (*MetricsService, *stubStore) {
	t.Helper()
	store := newStubStore()
	store.teams["tm1"] = &Team{ID: "tm1", Name: "Platform"}
	store.surveys["sv1"] = &Survey{ID: "sv1", TeamID: "tm1", Status: SurveyClosed}

	svc := NewMetricsService(store)
	svc.now = func() time.Time { return time.Unix(5000, 0).UTC() }
	seq := 0
	svc.idGen = func() string {
		seq++
		return fmt.Sprintf("mr-%d", seq)
	}
	return svc, store
}

func seedCompletedResponses(store *stubStore, n int) {
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("r%d", i)
		store.responses[id] = &Response{
			ID: id, SurveyID: "sv1", Token: "tk-" + id, Complete: true,
		}
	}
}

func TestComputeWithholdsScoresBelowThreshold(t *testing.T) {
	svc, store := newMetricsFixture(t)
	seedCompletedResponses(store, MinRespondentsForDisplay-1)

	result, err := svc.Compute("sv1")
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if result.MeetsPrivacyThreshold {
		t.Fatalf("threshold reported met with %d respondents", result.RespondentCount)
	}
	if result.RespondentCount != MinRespondentsForDisplay-1 {
		t.Fatalf("respondent count = %d", result.RespondentCount)
	}
	if result.FlowScore != nil || result.FrictionScore != nil || result.SafetyScore != nil || result.PortfolioScore != nil {
		t.Fatalf("scores disclosed below threshold: %+v", result)
	}
	if result.FlowBreakdown != nil || result.SafetyBreakdown != nil {
		t.Fatalf("breakdowns disclosed below threshold")
	}
	if len(store.metricResults) != 1 {
		t.Fatalf("stored %d results, want 1", len(store.metricResults))
	}
}

func TestComputeDisclosesScoresAtThreshold(t *testing.T) {
	svc, store := newMetricsFixture(t)
	store.questionsBySurvey["sv1"] = []*Question{
		{ID: "q1", SurveyID: "sv1", Dimension: DimensionClarity, Text: "How much planned work gets done?",
			Type: QuestionLikert5, Metrics: []MetricType{MetricFlow}},
	}
	seedCompletedResponses(store, MinRespondentsForDisplay)
	for i := 0; i < MinRespondentsForDisplay; i++ {
		rid := fmt.Sprintf("r%d", i)
		store.answersByResponse[rid] = []*Answer{
			{ID: "a" + rid, ResponseID: rid, QuestionID: "q1", Value: "4", NumericValue: 80},
		}
	}

	result, err := svc.Compute("sv1")
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if !result.MeetsPrivacyThreshold {
		t.Fatalf("threshold not met at %d respondents", result.RespondentCount)
	}
	if result.FlowScore == nil {
		t.Fatalf("flow score missing")
	}
	// throughput 80, delivery and unblocked fall back to 50.
	if want := 80*0.40 + 50*0.35 + 50*0.25; *result.FlowScore != round1(want) {
		t.Fatalf("flow score = %v, want %v", *result.FlowScore, round1(want))
	}
	if got := result.FlowBreakdown["throughput"]; got != 80 {
		t.Fatalf("throughput component = %v, want 80", got)
	}
	if result.Trend != TrendStable {
		t.Fatalf("trend = %q with no previous result, want stable", result.Trend)
	}
}

func TestComputeUsesConfirmedChatRatingsOnly(t *testing.T) {
	svc, store := newMetricsFixture(t)
	seedCompletedResponses(store, MinRespondentsForDisplay)
	store.sessions["cs1"] = &ChatSession{ID: "cs1", SurveyID: "sv1", ResponseID: "r0", Token: "chat-1"}
	store.ratingsBySession["cs1"] = []*ExtractedRating{
		{ID: "er1", SessionID: "cs1", Dimension: DimensionSafety, AIScore: 4, UserConfirmed: true, FinalScore: 80},
		{ID: "er2", SessionID: "cs1", Dimension: DimensionClarity, AIScore: 2, FinalScore: 40}, // never confirmed
	}

	result, err := svc.Compute("sv1")
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	if got := result.SafetyBreakdown["psychological_safety"]; got != 80 {
		t.Fatalf("psychological safety component = %v, want 80 from the confirmed rating", got)
	}
	// The unconfirmed clarity rating would have shifted the rework component
	// off its 50 fallback.
	if got := result.FrictionBreakdown["rework_from_unclear"]; got != 50 {
		t.Fatalf("rework component = %v, want untouched fallback 50", got)
	}
}

func TestComputeSurveyNotFound(t *testing.T) {
	svc, _ := newMetricsFixture(t)

	if _, err := svc.Compute("ghost"); !IsCode(err, ErrorNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestSurveyResultsReturnsStoredResult(t *testing.T) {
	svc, store := newMetricsFixture(t)
	seedCompletedResponses(store, 2)

	first, err := svc.Compute("sv1")
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	got, err := svc.SurveyResults("sv1")
	if err != nil {
		t.Fatalf("SurveyResults returned error: %v", err)
	}
	if got.ID != first.ID {
		t.Fatalf("SurveyResults recomputed instead of returning the stored result")
	}
	if len(store.metricResults) != 1 {
		t.Fatalf("stored %d results, want 1", len(store.metricResults))
	}
}

func TestSurveyResultsComputesOnDemand(t *testing.T) {
	svc, store := newMetricsFixture(t)
	seedCompletedResponses(store, 2)

	got, err := svc.SurveyResults("sv1")
	if err != nil {
		t.Fatalf("SurveyResults returned error: %v", err)
	}
	if got.RespondentCount != 2 {
		t.Fatalf("respondent count = %d, want 2", got.RespondentCount)
	}
	if len(store.metricResults) != 1 {
		t.Fatalf("on-demand compute did not store a result")
	}
}

func TestComputeFrictionRouting(t *testing.T) {
	samples := []sample{
		{value: 80, dimension: DimensionDelay, text: "How quickly can you get decisions?"},
		{value: 60, dimension: DimensionDelay, text: "How often do dependencies delay work?"},
		{value: 40, dimension: DimensionTooling, text: "Tool effectiveness"},
		{value: 20, dimension: DimensionProcess, text: "Workflow friction"},
		{value: 70, dimension: DimensionRework, text: "Redo frequency"},
	}

	score, breakdown := computeFriction(samples)
	if breakdown["approval_latency"] != 80 {
		t.Fatalf("approval component = %v, want 80", breakdown["approval_latency"])
	}
	if breakdown["dependency_wait"] != 60 {
		t.Fatalf("dependency component = %v, want 60", breakdown["dependency_wait"])
	}
	want := round1(60*0.25 + 80*0.20 + 70*0.25 + 40*0.15 + 20*0.15)
	if score != want {
		t.Fatalf("friction score = %v, want %v", score, want)
	}
}

func TestComputeSafetyInvertsNegativeEvents(t *testing.T) {
	samples := []sample{
		{value: 80, dimension: DimensionRework, text: "How often does work need rework?"},
		{value: 90, dimension: DimensionSafety, text: "Comfort raising issues"},
	}

	score, breakdown := computeSafety(samples)
	if breakdown["rework_events"] != 20 {
		t.Fatalf("rework component = %v, want inverted 20", breakdown["rework_events"])
	}
	if breakdown["psychological_safety"] != 90 {
		t.Fatalf("psych component = %v, want 90 uninverted", breakdown["psychological_safety"])
	}
	want := round1(20*0.25 + 50*0.25 + 50*0.25 + 90*0.25)
	if score != want {
		t.Fatalf("safety score = %v, want %v", score, want)
	}
}

func TestComputePortfolioAgainstIdealSplit(t *testing.T) {
	samples := []sample{
		{value: 60, text: "Time spent creating direct customer outcomes"},
		{value: 30, text: "Time spent on planning and coordination"},
		{value: 10, text: "Time lost waiting on others"},
	}

	score, breakdown := computePortfolio(samples, nil)
	if breakdown["value_adding_pct"] != 60 || breakdown["waste_pct"] != 10 {
		t.Fatalf("allocation = %+v", breakdown)
	}
	// va above ideal and waste below ideal both cap at 100; enabling is 5
	// points off its 35 ideal.
	veHealth := 100 - 5.0/35*100
	want := round1(100*0.40 + 100*0.40 + veHealth*0.20)
	if score != want {
		t.Fatalf("portfolio score = %v, want %v", score, want)
	}
}

func TestComputePortfolioUsesOccupationIdeals(t *testing.T) {
	occ := &Occupation{IdealValueAdding: 0.40, IdealValueEnabling: 0.45, IdealWaste: 0.15}
	samples := []sample{
		{value: 40, text: "creating direct outcomes"},
		{value: 45, text: "planning and coordination"},
		{value: 15, text: "waiting on others"},
	}

	score, _ := computePortfolio(samples, occ)
	if score != 100 {
		t.Fatalf("score = %v, want 100 for a perfect match of the ideal split", score)
	}
}

func scorePtr(v float64) *float64 { return &v }

func TestTrendAgainst(t *testing.T) {
	base := func(flow, friction, safety, portfolio float64) *MetricResult {
		return &MetricResult{
			MeetsPrivacyThreshold: true,
			FlowScore:             scorePtr(flow),
			FrictionScore:         scorePtr(friction),
			SafetyScore:           scorePtr(safety),
			PortfolioScore:        scorePtr(portfolio),
		}
	}

	prev := base(50, 50, 50, 50)
	if got := trendAgainst(base(62, 50, 70, 50), prev); got != TrendUp {
		t.Fatalf("improving scores: trend = %q, want up", got)
	}
	// Friction dropping is an improvement.
	if got := trendAgainst(base(50, 20, 50, 50), prev); got != TrendUp {
		t.Fatalf("falling friction: trend = %q, want up", got)
	}
	if got := trendAgainst(base(40, 60, 45, 48), prev); got != TrendDown {
		t.Fatalf("worsening scores: trend = %q, want down", got)
	}
	if got := trendAgainst(base(52, 49, 51, 50), prev); got != TrendStable {
		t.Fatalf("small moves: trend = %q, want stable", got)
	}
	if got := trendAgainst(base(90, 10, 90, 90), nil); got != TrendStable {
		t.Fatalf("no previous result: trend = %q, want stable", got)
	}
	undisclosed := base(50, 50, 50, 50)
	undisclosed.MeetsPrivacyThreshold = false
	if got := trendAgainst(base(90, 10, 90, 90), undisclosed); got != TrendStable {
		t.Fatalf("undisclosed previous: trend = %q, want stable", got)
	}
}

func TestComputeRecordsTrendAgainstPreviousTeamResult(t *testing.T) {
	svc, store := newMetricsFixture(t)
	store.surveys["sv0"] = &Survey{ID: "sv0", TeamID: "tm1", Status: SurveyClosed}
	store.metricResults = append(store.metricResults, &MetricResult{
		ID: "mr-old", TeamID: "tm1", SurveyID: "sv0",
		CalculatedAt:          time.Unix(4000, 0).UTC(),
		MeetsPrivacyThreshold: true,
		FlowScore:             scorePtr(20),
		FrictionScore:         scorePtr(80),
		SafetyScore:           scorePtr(20),
		PortfolioScore:        scorePtr(20),
	})
	seedCompletedResponses(store, MinRespondentsForDisplay)

	result, err := svc.Compute("sv1")
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	// Every component sits at its 50 fallback, well above the previous run.
	if result.Trend != TrendUp {
		t.Fatalf("trend = %q, want up", result.Trend)
	}
}
