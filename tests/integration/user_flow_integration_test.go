//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("TEAMPULSE_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:8080"
}

func TestAdminToRespondentJourney(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	adminEmail := fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano())
	password := "Secret123!"

	var registerResp struct {
		Token       string `json:"token"`
		WorkspaceID string `json:"workspace_id"`
	}
	doPost(t, client, base+"/api/auth/register", "", map[string]string{
		"email":          adminEmail,
		"password":       password,
		"workspace_name": fmt.Sprintf("Workspace %d", time.Now().UnixNano()),
	}, &registerResp)
	if registerResp.Token == "" || registerResp.WorkspaceID == "" {
		t.Fatalf("unexpected register response: %+v", registerResp)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	doPost(t, client, base+"/api/auth/login", "", map[string]string{
		"email":    adminEmail,
		"password": password,
	}, &loginResp)
	token := loginResp.Token
	if token == "" {
		t.Fatalf("login did not return token")
	}

	var occupations []struct {
		ID string `json:"id"`
	}
	doGet(t, client, base+"/api/occupations", token, &occupations)
	if len(occupations) == 0 {
		t.Fatalf("expected seeded occupations")
	}

	var team struct {
		ID string `json:"id"`
	}
	doPost(t, client, base+"/api/teams", token, map[string]any{
		"name":          "Integration Team",
		"occupation_id": occupations[0].ID,
		"member_count":  8,
	}, &team)
	if team.ID == "" {
		t.Fatalf("expected team id in response")
	}

	var survey struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	doPost(t, client, base+"/api/surveys", token, map[string]string{
		"team_id": team.ID,
		"name":    "Integration pulse",
	}, &survey)
	if survey.ID == "" || survey.Status != "draft" {
		t.Fatalf("unexpected survey response: %+v", survey)
	}

	var generated struct {
		Questions []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"questions"`
	}
	doPost(t, client, base+"/api/surveys/"+survey.ID+"/generate-questions", token,
		map[string]any{}, &generated)
	if len(generated.Questions) == 0 {
		t.Fatalf("expected generated questions")
	}

	doPost(t, client, base+"/api/surveys/"+survey.ID+"/activate", token, nil, nil)

	var link struct {
		Token string `json:"token"`
	}
	doPost(t, client, base+"/api/surveys/"+survey.ID+"/link", token, nil, &link)
	if link.Token == "" {
		t.Fatalf("expected response link token")
	}

	var view struct {
		Questions []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"questions"`
	}
	doGet(t, client, base+"/api/respond/"+link.Token, "", &view)
	if len(view.Questions) != len(generated.Questions) {
		t.Fatalf("respondent sees %d questions, admin generated %d", len(view.Questions), len(generated.Questions))
	}

	answers := make([]map[string]string, 0, len(view.Questions))
	for _, q := range view.Questions {
		value := "4"
		switch q.Type {
		case "percentage_slider":
			value = "55"
		case "free_text":
			value = "works fine overall"
		}
		answers = append(answers, map[string]string{"question_id": q.ID, "value": value})
	}
	var submitted struct {
		Status string `json:"status"`
	}
	doPost(t, client, base+"/api/respond/"+link.Token, "", map[string]any{"answers": answers}, &submitted)
	if submitted.Status != "complete" {
		t.Fatalf("unexpected submit response: %+v", submitted)
	}

	var stats struct {
		CompleteResponses int `json:"complete_responses"`
	}
	doGet(t, client, base+"/api/surveys/"+survey.ID+"/stats", token, &stats)
	if stats.CompleteResponses != 1 {
		t.Fatalf("expected 1 complete response, got %d", stats.CompleteResponses)
	}

	// A single respondent stays below the privacy threshold: counts only.
	var results struct {
		MeetsThreshold  bool `json:"meets_privacy_threshold"`
		ResponsesNeeded int  `json:"responses_needed"`
	}
	doGet(t, client, base+"/api/surveys/"+survey.ID+"/results", token, &results)
	if results.MeetsThreshold {
		t.Fatalf("privacy threshold met with a single respondent")
	}
	if results.ResponsesNeeded == 0 {
		t.Fatalf("expected a positive responses_needed count")
	}
}

func doPost(t *testing.T, client *http.Client, url, token string, body any, out any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	do(t, client, req, url, out)
}

func doGet(t *testing.T, client *http.Client, url, token string, out any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	do(t, client, req, url, out)
}

func do(t *testing.T, client *http.Client, req *http.Request, url string, out any) {
	t.Helper()
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http %s %s failed: %v", req.Method, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
