package services

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MetricsStore abstracts persistence for metric computation and readback.
type MetricsStore interface {
	GetSurvey(id string) (*Survey, error)
	GetTeam(id string) (*Team, error)
	GetOccupation(id string) (*Occupation, error)
	ListQuestions(surveyID string) ([]*Question, error)
	ListResponsesBySurvey(surveyID string) ([]*Response, error)
	ListAnswersByResponse(responseID string) ([]*Answer, error)
	GetChatSessionByResponse(responseID string) (*ChatSession, error)
	ListExtractedRatings(sessionID string) ([]*ExtractedRating, error)
	AddMetricResult(mr *MetricResult) error
	LatestMetricResultBySurvey(surveyID string) (*MetricResult, error)
	LatestMetricResultForTeam(teamID, excludeSurveyID string) (*MetricResult, error)
}

// dimensionMetrics maps an interview dimension onto the aggregate metrics it
// feeds. Structured questions carry their own mapping; chat ratings use this.
var dimensionMetrics = map[Dimension][]MetricType{
	DimensionClarity: {MetricFlow, MetricFriction},
	DimensionTooling: {MetricFriction},
	DimensionProcess: {MetricFriction, MetricPortfolio},
	DimensionRework:  {MetricFriction, MetricSafety},
	DimensionDelay:   {MetricFriction, MetricFlow},
	DimensionSafety:  {MetricSafety},
}

// MetricsService computes the four aggregate scores (flow, friction, safety,
// portfolio balance) on a 0-100 scale from completed responses, and enforces
// the privacy threshold on every read path: below the threshold only counts
// are disclosed, never scores.
type MetricsService struct {
	store MetricsStore
	now   func() time.Time
	idGen func() string
}

func NewMetricsService(store MetricsStore) *MetricsService {
	return &MetricsService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: uuid.NewString,
	}
}

// sample is one numeric data point on the 0-100 scale, tagged with enough
// context to route it into a breakdown component.
type sample struct {
	value     float64
	dimension Dimension
	text      string
}

// Compute aggregates all completed responses for a survey into a stored
// MetricResult. Scores and breakdowns are persisted only when the privacy
// threshold is met; the respondent count and threshold flag are always kept
// so dashboards can show progress without leaking data.
func (s *MetricsService) Compute(surveyID string) (*MetricResult, error) {
	sv, err := s.store.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, NewNotFoundError("survey not found")
	}
	questions, err := s.store.ListQuestions(surveyID)
	if err != nil {
		return nil, err
	}
	responses, err := s.store.ListResponsesBySurvey(surveyID)
	if err != nil {
		return nil, err
	}

	byMetric := map[MetricType][]sample{}
	completed := 0
	for _, resp := range responses {
		if !resp.Complete {
			continue
		}
		completed++
		answers, err := s.store.ListAnswersByResponse(resp.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range answers {
			q := questionByID(questions, a.QuestionID)
			if q == nil {
				continue
			}
			for _, m := range q.Metrics {
				byMetric[m] = append(byMetric[m], sample{value: a.NumericValue, dimension: q.Dimension, text: q.Text})
			}
		}
		session, err := s.store.GetChatSessionByResponse(resp.ID)
		if err != nil {
			return nil, err
		}
		if session == nil {
			continue
		}
		ratings, err := s.store.ListExtractedRatings(session.ID)
		if err != nil {
			return nil, err
		}
		for _, r := range ratings {
			if !r.UserConfirmed {
				continue
			}
			for _, m := range dimensionMetrics[r.Dimension] {
				byMetric[m] = append(byMetric[m], sample{value: r.FinalScore, dimension: r.Dimension})
			}
		}
	}

	var occ *Occupation
	if sv.OccupationID != "" {
		if occ, err = s.store.GetOccupation(sv.OccupationID); err != nil {
			return nil, err
		}
	}

	flowScore, flowBreakdown := computeFlow(byMetric[MetricFlow])
	frictionScore, frictionBreakdown := computeFriction(byMetric[MetricFriction])
	safetyScore, safetyBreakdown := computeSafety(byMetric[MetricSafety])
	portfolioScore, portfolioBreakdown := computePortfolio(byMetric[MetricPortfolio], occ)

	meets := MeetsPrivacyThreshold(completed)
	result := &MetricResult{
		ID:                    s.idGen(),
		TeamID:                sv.TeamID,
		SurveyID:              sv.ID,
		CalculatedAt:          s.now(),
		RespondentCount:       completed,
		MeetsPrivacyThreshold: meets,
	}
	if meets {
		result.FlowScore = &flowScore
		result.FrictionScore = &frictionScore
		result.SafetyScore = &safetyScore
		result.PortfolioScore = &portfolioScore
		result.FlowBreakdown = flowBreakdown
		result.FrictionBreakdown = frictionBreakdown
		result.SafetyBreakdown = safetyBreakdown
		result.PortfolioBreakdown = portfolioBreakdown

		previous, err := s.store.LatestMetricResultForTeam(sv.TeamID, sv.ID)
		if err != nil {
			return nil, err
		}
		result.Trend = trendAgainst(result, previous)
	}
	if err := s.store.AddMetricResult(result); err != nil {
		return nil, err
	}
	return result, nil
}

// SurveyResults is the privacy-gated read path. When no result has been
// stored yet it computes one on demand.
func (s *MetricsService) SurveyResults(surveyID string) (*MetricResult, error) {
	result, err := s.store.LatestMetricResultBySurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return s.Compute(surveyID)
	}
	return result, nil
}

func questionByID(questions []*Question, id string) *Question {
	for _, q := range questions {
		if q.ID == id {
			return q
		}
	}
	return nil
}

// Flow weighs self-reported throughput, value delivery and unblocked time.
func computeFlow(samples []sample) (float64, MetricBreakdown) {
	var throughput, delivery, unblocked []float64
	for _, smp := range samples {
		text := strings.ToLower(smp.text)
		switch {
		case strings.Contains(text, "deliver") || strings.Contains(text, "value"):
			delivery = append(delivery, smp.value)
		case strings.Contains(text, "blocker") || strings.Contains(text, "without") || smp.dimension == DimensionDelay:
			unblocked = append(unblocked, smp.value)
		default:
			throughput = append(throughput, smp.value)
		}
	}
	t := averageOr(throughput, 50)
	d := averageOr(delivery, 50)
	u := averageOr(unblocked, 50)
	score := t*0.40 + d*0.35 + u*0.25
	return round1(score), MetricBreakdown{
		"throughput":     round1(t),
		"value_delivery": round1(d),
		"unblocked_time": round1(u),
	}
}

// Friction components are phrased so a high answer already means more
// friction, so no inversion happens here. Lower overall is better.
func computeFriction(samples []sample) (float64, MetricBreakdown) {
	var dependency, approval, rework, tooling, process []float64
	for _, smp := range samples {
		text := strings.ToLower(smp.text)
		switch smp.dimension {
		case DimensionDelay:
			if strings.Contains(text, "approv") || strings.Contains(text, "decision") {
				approval = append(approval, smp.value)
			} else {
				dependency = append(dependency, smp.value)
			}
		case DimensionRework, DimensionClarity:
			rework = append(rework, smp.value)
		case DimensionTooling:
			tooling = append(tooling, smp.value)
		case DimensionProcess:
			process = append(process, smp.value)
		default:
			dependency = append(dependency, smp.value)
		}
	}
	dep := averageOr(dependency, 50)
	app := averageOr(approval, 50)
	rew := averageOr(rework, 50)
	tool := averageOr(tooling, 50)
	proc := averageOr(process, 50)
	score := dep*0.25 + app*0.20 + rew*0.25 + tool*0.15 + proc*0.15
	return round1(score), MetricBreakdown{
		"dependency_wait":     round1(dep),
		"approval_latency":    round1(app),
		"rework_from_unclear": round1(rew),
		"tooling_pain":        round1(tool),
		"process_confusion":   round1(proc),
	}
}

// Safety inverts negative-event frequencies (frequent rework means low
// safety); psychological safety answers are already higher-is-better.
func computeSafety(samples []sample) (float64, MetricBreakdown) {
	var rework, quality, reversal, psych []float64
	for _, smp := range samples {
		text := strings.ToLower(smp.text)
		switch {
		case smp.dimension == DimensionSafety:
			psych = append(psych, smp.value)
		case strings.Contains(text, "quality") || strings.Contains(text, "escape"):
			quality = append(quality, smp.value)
		case strings.Contains(text, "revers") || strings.Contains(text, "decision"):
			reversal = append(reversal, smp.value)
		default:
			rework = append(rework, smp.value)
		}
	}
	rw := invertOr(rework, 50)
	qe := invertOr(quality, 50)
	dr := invertOr(reversal, 50)
	ps := averageOr(psych, 50)
	score := rw*0.25 + qe*0.25 + dr*0.25 + ps*0.25
	return round1(score), MetricBreakdown{
		"rework_events":        round1(rw),
		"quality_escapes":      round1(qe),
		"decision_reversals":   round1(dr),
		"psychological_safety": round1(ps),
	}
}

// Portfolio balance compares reported time allocation (value-adding,
// value-enabling, waste) against the occupation's ideal split.
func computePortfolio(samples []sample, occ *Occupation) (float64, MetricBreakdown) {
	var adding, enabling, waste []float64
	for _, smp := range samples {
		text := strings.ToLower(smp.text)
		switch {
		case containsAny(text, "value adding", "direct value", "creating", "building", "delivering"):
			adding = append(adding, smp.value)
		case containsAny(text, "value enabling", "support", "planning", "coordination", "compliance"):
			enabling = append(enabling, smp.value)
		case containsAny(text, "waste", "waiting", "rework", "unnecessary", "blocked"):
			waste = append(waste, smp.value)
		}
	}

	va := averageOr(adding, 50)
	ve := averageOr(enabling, 35)
	var wa float64
	switch {
	case len(waste) > 0:
		wa = averageOr(waste, 0)
	case len(adding) > 0 || len(enabling) > 0:
		wa = math.Max(0, 100-va-ve)
	default:
		wa = 15
	}
	if total := va + ve + wa; total > 0 {
		va = va / total * 100
		ve = ve / total * 100
		wa = wa / total * 100
	}

	idealVA, idealVE, idealWaste := 50.0, 35.0, 15.0
	if occ != nil {
		if occ.IdealValueAdding > 0 {
			idealVA = occ.IdealValueAdding * 100
		}
		if occ.IdealValueEnabling > 0 {
			idealVE = occ.IdealValueEnabling * 100
		}
		if occ.IdealWaste > 0 {
			idealWaste = occ.IdealWaste * 100
		}
	}

	vaHealth := 100.0
	if idealVA > 0 {
		vaHealth = math.Min(100, va/idealVA*100)
	}
	wasteHealth := math.Min(100, idealWaste/math.Max(wa, 1)*100)
	veHealth := 100.0
	if idealVE > 0 {
		veHealth = math.Max(0, 100-math.Abs(ve-idealVE)/idealVE*100)
	}
	score := math.Min(100, math.Max(0, vaHealth*0.40+wasteHealth*0.40+veHealth*0.20))

	return round1(score), MetricBreakdown{
		"value_adding_pct":   round1(va),
		"value_enabling_pct": round1(ve),
		"waste_pct":          round1(wa),
		"health_score":       round1(score),
	}
}

// trendAgainst compares a fresh result to the team's previous disclosed one.
// Friction improves downward, so its delta is inverted before averaging.
func trendAgainst(current, previous *MetricResult) TrendDirection {
	if previous == nil || !previous.MeetsPrivacyThreshold {
		return TrendStable
	}
	var deltas []float64
	if previous.FlowScore != nil && current.FlowScore != nil {
		deltas = append(deltas, *current.FlowScore-*previous.FlowScore)
	}
	if previous.FrictionScore != nil && current.FrictionScore != nil {
		deltas = append(deltas, *previous.FrictionScore-*current.FrictionScore)
	}
	if previous.SafetyScore != nil && current.SafetyScore != nil {
		deltas = append(deltas, *current.SafetyScore-*previous.SafetyScore)
	}
	if previous.PortfolioScore != nil && current.PortfolioScore != nil {
		deltas = append(deltas, *current.PortfolioScore-*previous.PortfolioScore)
	}
	if len(deltas) == 0 {
		return TrendStable
	}
	var sum float64
	for _, d := range deltas {
		sum += d
	}
	switch avg := sum / float64(len(deltas)); {
	case avg > 5:
		return TrendUp
	case avg < -5:
		return TrendDown
	default:
		return TrendStable
	}
}

func averageOr(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func invertOr(values []float64, fallback float64) float64 {
	if len(values) == 0 {
		return fallback
	}
	return 100 - averageOr(values, fallback)
}

func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
