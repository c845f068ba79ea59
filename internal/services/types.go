package services

import "time"

type SurveyStatus string

const (
	SurveyDraft  SurveyStatus = "draft"
	SurveyActive SurveyStatus = "active"
	SurveyClosed SurveyStatus = "closed"
)

type SessionStatus string

const (
	SessionCollecting   SessionStatus = "collecting"
	SessionConfirmation SessionStatus = "rating_confirmation"
	SessionCompleted    SessionStatus = "completed"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type QuestionType string

const (
	QuestionLikert5  QuestionType = "likert_5"
	QuestionSlider   QuestionType = "percentage_slider"
	QuestionFreeText QuestionType = "free_text"
)

type MetricType string

const (
	MetricFlow      MetricType = "flow"
	MetricFriction  MetricType = "friction"
	MetricSafety    MetricType = "safety"
	MetricPortfolio MetricType = "portfolio_balance"
)

type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// Occupation describes a job role; ideal percentages drive the portfolio
// balance metric. ValueAdding + ValueEnabling + Waste should sum to 1.
type Occupation struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	IdealValueAdding   float64   `json:"ideal_value_adding_pct"`
	IdealValueEnabling float64   `json:"ideal_value_enabling_pct"`
	IdealWaste         float64   `json:"ideal_waste_pct"`
	CreatedAt          time.Time `json:"created_at"`
}

type Team struct {
	ID           string    `json:"id"`
	WorkspaceID  string    `json:"workspace_id,omitempty"`
	Name         string    `json:"name"`
	Function     string    `json:"function,omitempty"`
	OccupationID string    `json:"occupation_id"`
	MemberCount  int       `json:"member_count,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Survey owns the lifecycle status; it is mutated only through the
// SurveyService transitions and is closed rather than deleted once active.
type Survey struct {
	ID               string       `json:"id"`
	WorkspaceID      string       `json:"workspace_id,omitempty"`
	TeamID           string       `json:"team_id"`
	OccupationID     string       `json:"occupation_id"`
	Name             string       `json:"name"`
	Status           SurveyStatus `json:"status"`
	EstimatedMinutes int          `json:"estimated_completion_minutes"`
	CreatedAt        time.Time    `json:"created_at"`
	ClosedAt         *time.Time   `json:"closed_at,omitempty"`
}

type Question struct {
	ID        string       `json:"id"`
	SurveyID  string       `json:"survey_id"`
	Dimension Dimension    `json:"dimension"`
	Text      string       `json:"text"`
	Type      QuestionType `json:"type"`
	Metrics   []MetricType `json:"metric_mapping,omitempty"`
	LowLabel  string       `json:"low_label,omitempty"`
	HighLabel string       `json:"high_label,omitempty"`
	Order     int          `json:"order"`
	Required  bool         `json:"required"`
}

// Response doubles as the single-use response link: it is minted with a
// fresh token and consumed when a submission marks it complete.
type Response struct {
	ID                string     `json:"id"`
	SurveyID          string     `json:"survey_id"`
	Token             string     `json:"token"`
	Complete          bool       `json:"is_complete"`
	StartedAt         time.Time  `json:"started_at"`
	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`
	CompletionSeconds int        `json:"completion_time_seconds,omitempty"`
}

type Answer struct {
	ID           string  `json:"id"`
	ResponseID   string  `json:"response_id"`
	QuestionID   string  `json:"question_id"`
	Value        string  `json:"value"`
	NumericValue float64 `json:"numeric_value"`
	Comment      string  `json:"comment,omitempty"`
}

// SurveyStats is a derived, read-only projection recomputed on every query.
type SurveyStats struct {
	SurveyID              string   `json:"survey_id"`
	TotalResponses        int      `json:"total_responses"`
	CompleteResponses     int      `json:"complete_responses"`
	MeetsPrivacyThreshold bool     `json:"meets_privacy_threshold"`
	AverageSeconds        *float64 `json:"average_completion_time_seconds,omitempty"`
}

// PendingRating is the at-most-one provisional rating awaiting explicit
// confirmation. It exists only while the session is in rating_confirmation.
type PendingRating struct {
	Dimension Dimension `json:"dimension"`
	Score     float64   `json:"score"`
	Reasoning string    `json:"reasoning,omitempty"`
}

type ChatSession struct {
	ID               string             `json:"id"`
	SurveyID         string             `json:"survey_id"`
	ResponseID       string             `json:"response_id"`
	Token            string             `json:"token"`
	Status           SessionStatus      `json:"status"`
	CurrentDimension Dimension          `json:"current_dimension,omitempty"`
	Covered          map[Dimension]bool `json:"dimensions_covered"`
	Pending          *PendingRating     `json:"pending_rating_confirmation,omitempty"`
	StartedAt        time.Time          `json:"started_at"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty"`
}

type ChatMessage struct {
	ID               string      `json:"id"`
	SessionID        string      `json:"session_id"`
	Role             MessageRole `json:"role"`
	Content          string      `json:"content"`
	DimensionContext Dimension   `json:"dimension_context,omitempty"`
	Sequence         int         `json:"sequence"`
	CreatedAt        time.Time   `json:"created_at"`
}

// ExtractedRating is created when the extractor first infers a score for a
// dimension and finalized exactly once by the rating confirmation engine.
type ExtractedRating struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	Dimension     Dimension `json:"dimension"`
	AIScore       float64   `json:"ai_inferred_score"`
	AIReasoning   string    `json:"ai_reasoning,omitempty"`
	UserConfirmed bool      `json:"user_confirmed"`
	AdjustedScore *int      `json:"user_adjusted_score,omitempty"`
	FinalScore    float64   `json:"final_score"`
	CreatedAt     time.Time `json:"created_at"`
}

type MetricBreakdown map[string]float64

type MetricResult struct {
	ID                    string          `json:"id"`
	TeamID                string          `json:"team_id"`
	SurveyID              string          `json:"survey_id"`
	CalculatedAt          time.Time       `json:"calculation_date"`
	RespondentCount       int             `json:"respondent_count"`
	MeetsPrivacyThreshold bool            `json:"meets_privacy_threshold"`
	FlowScore             *float64        `json:"flow_score,omitempty"`
	FrictionScore         *float64        `json:"friction_score,omitempty"`
	SafetyScore           *float64        `json:"safety_score,omitempty"`
	PortfolioScore        *float64        `json:"portfolio_balance_score,omitempty"`
	FlowBreakdown         MetricBreakdown `json:"flow_breakdown,omitempty"`
	FrictionBreakdown     MetricBreakdown `json:"friction_breakdown,omitempty"`
	SafetyBreakdown       MetricBreakdown `json:"safety_breakdown,omitempty"`
	PortfolioBreakdown    MetricBreakdown `json:"portfolio_breakdown,omitempty"`
	Trend                 TrendDirection  `json:"trend_direction,omitempty"`
}

type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID          string
	Email       string
	PassHash    []byte
	WorkspaceID string
	CreatedAt   time.Time
}
