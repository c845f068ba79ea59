// Package db provides the SQLite-backed Store. The schema is bootstrapped
// from an embedded file on startup; every statement is idempotent so the
// same database can be reopened across versions.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/teampulse-app/teampulse/internal/api"
	"github.com/teampulse-app/teampulse/internal/services"

	_ "embed"
)

//go:embed schema.sql
var schema string

type SQLiteStore struct {
	db *sql.DB
}

var _ api.Store = (*SQLiteStore)(nil)

// Open opens (or creates) the database file and applies pragmas and schema.
func Open(path string) (*SQLiteStore, error) {
	handle, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	store, err := NewStore(handle)
	if err != nil {
		_ = handle.Close()
		return nil, err
	}
	return store, nil
}

func NewStore(handle *sql.DB) (*SQLiteStore, error) {
	if handle == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := handle.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if _, err := handle.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: handle}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func encodeJSON(v any) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("sqlite store: encode json: %v", err)
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

func decodeJSON(ns sql.NullString, out any) {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return
	}
	if err := json.Unmarshal([]byte(ns.String), out); err != nil {
		log.Printf("sqlite store: decode json: %v", err)
	}
}

func (s *SQLiteStore) AddTeam(t *services.Team) error {
	_, err := s.db.Exec(`INSERT INTO teams (id, workspace_id, name, function, occupation_id, member_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.WorkspaceID, t.Name, t.Function, t.OccupationID, t.MemberCount, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("add team: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTeam(id string) (*services.Team, error) {
	row := s.db.QueryRow(`SELECT id, workspace_id, name, function, occupation_id, member_count, created_at
		FROM teams WHERE id = ?`, id)
	return scanTeam(row)
}

func scanTeam(row *sql.Row) (*services.Team, error) {
	var t services.Team
	err := row.Scan(&t.ID, &t.WorkspaceID, &t.Name, &t.Function, &t.OccupationID, &t.MemberCount, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan team: %w", err)
	}
	return &t, nil
}

func (s *SQLiteStore) ListTeams(workspaceID string) ([]*services.Team, error) {
	rows, err := s.db.Query(`SELECT id, workspace_id, name, function, occupation_id, member_count, created_at
		FROM teams WHERE (? = '' OR workspace_id = ?) ORDER BY id`, workspaceID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()
	out := []*services.Team{}
	for rows.Next() {
		var t services.Team
		if err := rows.Scan(&t.ID, &t.WorkspaceID, &t.Name, &t.Function, &t.OccupationID, &t.MemberCount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddOccupation(o *services.Occupation) error {
	_, err := s.db.Exec(`INSERT INTO occupations (id, name, description, ideal_value_adding, ideal_value_enabling, ideal_waste, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Name, o.Description, o.IdealValueAdding, o.IdealValueEnabling, o.IdealWaste, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("add occupation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetOccupation(id string) (*services.Occupation, error) {
	row := s.db.QueryRow(`SELECT id, name, description, ideal_value_adding, ideal_value_enabling, ideal_waste, created_at
		FROM occupations WHERE id = ?`, id)
	var o services.Occupation
	err := row.Scan(&o.ID, &o.Name, &o.Description, &o.IdealValueAdding, &o.IdealValueEnabling, &o.IdealWaste, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan occupation: %w", err)
	}
	return &o, nil
}

func (s *SQLiteStore) ListOccupations() ([]*services.Occupation, error) {
	rows, err := s.db.Query(`SELECT id, name, description, ideal_value_adding, ideal_value_enabling, ideal_waste, created_at
		FROM occupations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list occupations: %w", err)
	}
	defer rows.Close()
	out := []*services.Occupation{}
	for rows.Next() {
		var o services.Occupation
		if err := rows.Scan(&o.ID, &o.Name, &o.Description, &o.IdealValueAdding, &o.IdealValueEnabling, &o.IdealWaste, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan occupation: %w", err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddSurvey(sv *services.Survey) error {
	_, err := s.db.Exec(`INSERT INTO surveys (id, workspace_id, team_id, occupation_id, name, status, estimated_minutes, created_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sv.ID, sv.WorkspaceID, sv.TeamID, sv.OccupationID, sv.Name, string(sv.Status), sv.EstimatedMinutes, sv.CreatedAt, toNullTime(sv.ClosedAt))
	if err != nil {
		return fmt.Errorf("add survey: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSurvey(id string) (*services.Survey, error) {
	row := s.db.QueryRow(`SELECT id, workspace_id, team_id, occupation_id, name, status, estimated_minutes, created_at, closed_at
		FROM surveys WHERE id = ?`, id)
	var sv services.Survey
	var status string
	var closedAt sql.NullTime
	err := row.Scan(&sv.ID, &sv.WorkspaceID, &sv.TeamID, &sv.OccupationID, &sv.Name, &status, &sv.EstimatedMinutes, &sv.CreatedAt, &closedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan survey: %w", err)
	}
	sv.Status = services.SurveyStatus(status)
	sv.ClosedAt = fromNullTime(closedAt)
	return &sv, nil
}

func (s *SQLiteStore) UpdateSurvey(sv *services.Survey) error {
	_, err := s.db.Exec(`UPDATE surveys SET workspace_id = ?, team_id = ?, occupation_id = ?, name = ?, status = ?, estimated_minutes = ?, closed_at = ?
		WHERE id = ?`,
		sv.WorkspaceID, sv.TeamID, sv.OccupationID, sv.Name, string(sv.Status), sv.EstimatedMinutes, toNullTime(sv.ClosedAt), sv.ID)
	if err != nil {
		return fmt.Errorf("update survey: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteSurvey(id string) error {
	_, err := s.db.Exec(`DELETE FROM surveys WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete survey: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListSurveys(status services.SurveyStatus, teamID string) ([]*services.Survey, error) {
	rows, err := s.db.Query(`SELECT id, workspace_id, team_id, occupation_id, name, status, estimated_minutes, created_at, closed_at
		FROM surveys WHERE (? = '' OR status = ?) AND (? = '' OR team_id = ?) ORDER BY created_at, id`,
		string(status), string(status), teamID, teamID)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()
	out := []*services.Survey{}
	for rows.Next() {
		var sv services.Survey
		var st string
		var closedAt sql.NullTime
		if err := rows.Scan(&sv.ID, &sv.WorkspaceID, &sv.TeamID, &sv.OccupationID, &sv.Name, &st, &sv.EstimatedMinutes, &sv.CreatedAt, &closedAt); err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		sv.Status = services.SurveyStatus(st)
		sv.ClosedAt = fromNullTime(closedAt)
		out = append(out, &sv)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ReplaceQuestions(surveyID string, qs []*services.Question) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("replace questions: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM questions WHERE survey_id = ?`, surveyID); err != nil {
		return fmt.Errorf("replace questions: %w", err)
	}
	for _, q := range qs {
		_, err := tx.Exec(`INSERT INTO questions (id, survey_id, dimension, text, type, metrics, low_label, high_label, position, required)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			q.ID, surveyID, string(q.Dimension), q.Text, string(q.Type), encodeJSON(q.Metrics), q.LowLabel, q.HighLabel, q.Order, boolToInt(q.Required))
		if err != nil {
			return fmt.Errorf("replace questions: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListQuestions(surveyID string) ([]*services.Question, error) {
	rows, err := s.db.Query(`SELECT id, survey_id, dimension, text, type, metrics, low_label, high_label, position, required
		FROM questions WHERE survey_id = ? ORDER BY position`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()
	out := []*services.Question{}
	for rows.Next() {
		var q services.Question
		var dimension, qtype string
		var metrics sql.NullString
		var required int
		if err := rows.Scan(&q.ID, &q.SurveyID, &dimension, &q.Text, &qtype, &metrics, &q.LowLabel, &q.HighLabel, &q.Order, &required); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Dimension = services.Dimension(dimension)
		q.Type = services.QuestionType(qtype)
		q.Required = required != 0
		decodeJSON(metrics, &q.Metrics)
		out = append(out, &q)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddResponse(r *services.Response) error {
	_, err := s.db.Exec(`INSERT INTO responses (id, survey_id, token, complete, started_at, submitted_at, completion_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SurveyID, r.Token, boolToInt(r.Complete), r.StartedAt, toNullTime(r.SubmittedAt), r.CompletionSeconds)
	if err != nil {
		return fmt.Errorf("add response: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetResponse(id string) (*services.Response, error) {
	return s.scanResponse(s.db.QueryRow(`SELECT id, survey_id, token, complete, started_at, submitted_at, completion_seconds
		FROM responses WHERE id = ?`, id))
}

func (s *SQLiteStore) GetResponseByToken(token string) (*services.Response, error) {
	return s.scanResponse(s.db.QueryRow(`SELECT id, survey_id, token, complete, started_at, submitted_at, completion_seconds
		FROM responses WHERE token = ?`, token))
}

func (s *SQLiteStore) scanResponse(row *sql.Row) (*services.Response, error) {
	var r services.Response
	var complete int
	var submittedAt sql.NullTime
	err := row.Scan(&r.ID, &r.SurveyID, &r.Token, &complete, &r.StartedAt, &submittedAt, &r.CompletionSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan response: %w", err)
	}
	r.Complete = complete != 0
	r.SubmittedAt = fromNullTime(submittedAt)
	return &r, nil
}

func (s *SQLiteStore) UpdateResponse(r *services.Response) error {
	_, err := s.db.Exec(`UPDATE responses SET complete = ?, submitted_at = ?, completion_seconds = ? WHERE id = ?`,
		boolToInt(r.Complete), toNullTime(r.SubmittedAt), r.CompletionSeconds, r.ID)
	if err != nil {
		return fmt.Errorf("update response: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListResponsesBySurvey(surveyID string) ([]*services.Response, error) {
	rows, err := s.db.Query(`SELECT id, survey_id, token, complete, started_at, submitted_at, completion_seconds
		FROM responses WHERE survey_id = ? ORDER BY id`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()
	out := []*services.Response{}
	for rows.Next() {
		var r services.Response
		var complete int
		var submittedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.SurveyID, &r.Token, &complete, &r.StartedAt, &submittedAt, &r.CompletionSeconds); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		r.Complete = complete != 0
		r.SubmittedAt = fromNullTime(submittedAt)
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListAnswersByResponse(responseID string) ([]*services.Answer, error) {
	rows, err := s.db.Query(`SELECT id, response_id, question_id, value, numeric_value, comment
		FROM answers WHERE response_id = ? ORDER BY id`, responseID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()
	out := []*services.Answer{}
	for rows.Next() {
		var a services.Answer
		if err := rows.Scan(&a.ID, &a.ResponseID, &a.QuestionID, &a.Value, &a.NumericValue, &a.Comment); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ReplaceAnswers(responseID string, answers []*services.Answer) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("replace answers: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM answers WHERE response_id = ?`, responseID); err != nil {
		return fmt.Errorf("replace answers: %w", err)
	}
	for _, a := range answers {
		_, err := tx.Exec(`INSERT INTO answers (id, response_id, question_id, value, numeric_value, comment)
			VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, responseID, a.QuestionID, a.Value, a.NumericValue, a.Comment)
		if err != nil {
			return fmt.Errorf("replace answers: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) AddChatSession(cs *services.ChatSession) error {
	_, err := s.db.Exec(`INSERT INTO chat_sessions (id, survey_id, response_id, token, status, current_dimension, covered, pending, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cs.ID, cs.SurveyID, cs.ResponseID, cs.Token, string(cs.Status), string(cs.CurrentDimension),
		encodeJSON(cs.Covered), encodeJSON(cs.Pending), cs.StartedAt, toNullTime(cs.CompletedAt))
	if err != nil {
		return fmt.Errorf("add chat session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetChatSessionByToken(token string) (*services.ChatSession, error) {
	return s.scanChatSession(s.db.QueryRow(`SELECT id, survey_id, response_id, token, status, current_dimension, covered, pending, started_at, completed_at
		FROM chat_sessions WHERE token = ?`, token))
}

func (s *SQLiteStore) GetChatSessionByResponse(responseID string) (*services.ChatSession, error) {
	return s.scanChatSession(s.db.QueryRow(`SELECT id, survey_id, response_id, token, status, current_dimension, covered, pending, started_at, completed_at
		FROM chat_sessions WHERE response_id = ?`, responseID))
}

func (s *SQLiteStore) scanChatSession(row *sql.Row) (*services.ChatSession, error) {
	var cs services.ChatSession
	var status, currentDimension string
	var covered, pending sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(&cs.ID, &cs.SurveyID, &cs.ResponseID, &cs.Token, &status, &currentDimension, &covered, &pending, &cs.StartedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan chat session: %w", err)
	}
	cs.Status = services.SessionStatus(status)
	cs.CurrentDimension = services.Dimension(currentDimension)
	cs.Covered = services.NewCoverage()
	decodeJSON(covered, &cs.Covered)
	decodeJSON(pending, &cs.Pending)
	cs.CompletedAt = fromNullTime(completedAt)
	return &cs, nil
}

func (s *SQLiteStore) UpdateChatSession(cs *services.ChatSession) error {
	_, err := s.db.Exec(`UPDATE chat_sessions SET status = ?, current_dimension = ?, covered = ?, pending = ?, completed_at = ? WHERE id = ?`,
		string(cs.Status), string(cs.CurrentDimension), encodeJSON(cs.Covered), encodeJSON(cs.Pending), toNullTime(cs.CompletedAt), cs.ID)
	if err != nil {
		return fmt.Errorf("update chat session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddChatMessage(m *services.ChatMessage) error {
	_, err := s.db.Exec(`INSERT INTO chat_messages (id, session_id, role, content, dimension_context, sequence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.SessionID, string(m.Role), m.Content, string(m.DimensionContext), m.Sequence, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("add chat message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListChatMessages(sessionID string) ([]*services.ChatMessage, error) {
	rows, err := s.db.Query(`SELECT id, session_id, role, content, dimension_context, sequence, created_at
		FROM chat_messages WHERE session_id = ? ORDER BY sequence`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()
	out := []*services.ChatMessage{}
	for rows.Next() {
		var m services.ChatMessage
		var role, dimensionContext string
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &dimensionContext, &m.Sequence, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		m.Role = services.MessageRole(role)
		m.DimensionContext = services.Dimension(dimensionContext)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddExtractedRating(r *services.ExtractedRating) error {
	var adjusted sql.NullInt64
	if r.AdjustedScore != nil {
		adjusted = sql.NullInt64{Int64: int64(*r.AdjustedScore), Valid: true}
	}
	_, err := s.db.Exec(`INSERT INTO extracted_ratings (id, session_id, dimension, ai_score, ai_reasoning, user_confirmed, adjusted_score, final_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SessionID, string(r.Dimension), r.AIScore, r.AIReasoning, boolToInt(r.UserConfirmed), adjusted, r.FinalScore, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("add extracted rating: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateExtractedRating(r *services.ExtractedRating) error {
	var adjusted sql.NullInt64
	if r.AdjustedScore != nil {
		adjusted = sql.NullInt64{Int64: int64(*r.AdjustedScore), Valid: true}
	}
	res, err := s.db.Exec(`UPDATE extracted_ratings SET user_confirmed = ?, adjusted_score = ?, final_score = ? WHERE id = ?`,
		boolToInt(r.UserConfirmed), adjusted, r.FinalScore, r.ID)
	if err != nil {
		return fmt.Errorf("update extracted rating: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return services.NewNotFoundError("extracted rating not found")
	}
	return nil
}

func (s *SQLiteStore) ListExtractedRatings(sessionID string) ([]*services.ExtractedRating, error) {
	rows, err := s.db.Query(`SELECT id, session_id, dimension, ai_score, ai_reasoning, user_confirmed, adjusted_score, final_score, created_at
		FROM extracted_ratings WHERE session_id = ? ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list extracted ratings: %w", err)
	}
	defer rows.Close()
	out := []*services.ExtractedRating{}
	for rows.Next() {
		var r services.ExtractedRating
		var dimension string
		var confirmed int
		var adjusted sql.NullInt64
		if err := rows.Scan(&r.ID, &r.SessionID, &dimension, &r.AIScore, &r.AIReasoning, &confirmed, &adjusted, &r.FinalScore, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan extracted rating: %w", err)
		}
		r.Dimension = services.Dimension(dimension)
		r.UserConfirmed = confirmed != 0
		if adjusted.Valid {
			v := int(adjusted.Int64)
			r.AdjustedScore = &v
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddMetricResult(mr *services.MetricResult) error {
	var flow, friction, safety, portfolio sql.NullFloat64
	if mr.FlowScore != nil {
		flow = sql.NullFloat64{Float64: *mr.FlowScore, Valid: true}
	}
	if mr.FrictionScore != nil {
		friction = sql.NullFloat64{Float64: *mr.FrictionScore, Valid: true}
	}
	if mr.SafetyScore != nil {
		safety = sql.NullFloat64{Float64: *mr.SafetyScore, Valid: true}
	}
	if mr.PortfolioScore != nil {
		portfolio = sql.NullFloat64{Float64: *mr.PortfolioScore, Valid: true}
	}
	_, err := s.db.Exec(`INSERT INTO metric_results (id, team_id, survey_id, calculated_at, respondent_count, meets_threshold,
		flow_score, friction_score, safety_score, portfolio_score,
		flow_breakdown, friction_breakdown, safety_breakdown, portfolio_breakdown, trend)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		mr.ID, mr.TeamID, mr.SurveyID, mr.CalculatedAt, mr.RespondentCount, boolToInt(mr.MeetsPrivacyThreshold),
		flow, friction, safety, portfolio,
		encodeJSON(mr.FlowBreakdown), encodeJSON(mr.FrictionBreakdown), encodeJSON(mr.SafetyBreakdown), encodeJSON(mr.PortfolioBreakdown),
		string(mr.Trend))
	if err != nil {
		return fmt.Errorf("add metric result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LatestMetricResultBySurvey(surveyID string) (*services.MetricResult, error) {
	return s.scanMetricResult(s.db.QueryRow(`SELECT id, team_id, survey_id, calculated_at, respondent_count, meets_threshold,
		flow_score, friction_score, safety_score, portfolio_score,
		flow_breakdown, friction_breakdown, safety_breakdown, portfolio_breakdown, trend
		FROM metric_results WHERE survey_id = ? ORDER BY calculated_at DESC, id DESC LIMIT 1`, surveyID))
}

func (s *SQLiteStore) LatestMetricResultForTeam(teamID, excludeSurveyID string) (*services.MetricResult, error) {
	return s.scanMetricResult(s.db.QueryRow(`SELECT id, team_id, survey_id, calculated_at, respondent_count, meets_threshold,
		flow_score, friction_score, safety_score, portfolio_score,
		flow_breakdown, friction_breakdown, safety_breakdown, portfolio_breakdown, trend
		FROM metric_results WHERE team_id = ? AND survey_id != ? AND meets_threshold = 1
		ORDER BY calculated_at DESC, id DESC LIMIT 1`, teamID, excludeSurveyID))
}

func (s *SQLiteStore) scanMetricResult(row *sql.Row) (*services.MetricResult, error) {
	var mr services.MetricResult
	var meets int
	var flow, friction, safety, portfolio sql.NullFloat64
	var flowBd, frictionBd, safetyBd, portfolioBd sql.NullString
	var trend string
	err := row.Scan(&mr.ID, &mr.TeamID, &mr.SurveyID, &mr.CalculatedAt, &mr.RespondentCount, &meets,
		&flow, &friction, &safety, &portfolio,
		&flowBd, &frictionBd, &safetyBd, &portfolioBd, &trend)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan metric result: %w", err)
	}
	mr.MeetsPrivacyThreshold = meets != 0
	if flow.Valid {
		v := flow.Float64
		mr.FlowScore = &v
	}
	if friction.Valid {
		v := friction.Float64
		mr.FrictionScore = &v
	}
	if safety.Valid {
		v := safety.Float64
		mr.SafetyScore = &v
	}
	if portfolio.Valid {
		v := portfolio.Float64
		mr.PortfolioScore = &v
	}
	decodeJSON(flowBd, &mr.FlowBreakdown)
	decodeJSON(frictionBd, &mr.FrictionBreakdown)
	decodeJSON(safetyBd, &mr.SafetyBreakdown)
	decodeJSON(portfolioBd, &mr.PortfolioBreakdown)
	mr.Trend = services.TrendDirection(trend)
	return &mr, nil
}

func (s *SQLiteStore) AddWorkspace(w *services.Workspace) error {
	_, err := s.db.Exec(`INSERT INTO workspaces (id, name) VALUES (?, ?)`, w.ID, w.Name)
	if err != nil {
		return fmt.Errorf("add workspace: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddUser(u *services.User) error {
	_, err := s.db.Exec(`INSERT INTO users (id, email, pass_hash, workspace_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PassHash, u.WorkspaceID, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("add user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindUserByEmail(email string) (*services.User, error) {
	row := s.db.QueryRow(`SELECT id, email, pass_hash, workspace_id, created_at FROM users WHERE email = ? COLLATE NOCASE`, email)
	var u services.User
	err := row.Scan(&u.ID, &u.Email, &u.PassHash, &u.WorkspaceID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
