package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/league-scoring/internal/domain/jobscheduler"
	"github.com/riskibarqy/league-scoring/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-scoring/internal/platform/id"
	"github.com/riskibarqy/league-scoring/internal/platform/logging"
	"github.com/riskibarqy/league-scoring/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInternalJobToken = "job-token"

type testServer struct {
	router     http.Handler
	budgets    *memory.BudgetRepository
	dispatches *memory.JobDispatchRepository
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	logger := logging.NewNop()
	players := memory.NewPlayerSeasonRepository(memory.SeedPlayerSeasons())
	budgets := memory.NewBudgetRepository(memory.SeedBudgets())
	fixtures := memory.NewFixtureRepository(memory.SeedFixtures())
	fantasyRepo := memory.NewFantasyRepository(memory.SeedFantasy())
	rules := memory.NewScoringRuleRepository(memory.SeedScoringRules())
	dispatches := memory.NewJobDispatchRepository()

	settlement := usecase.NewSalarySettlementService(budgets, &id.SequenceGenerator{Prefix: "tx"}, usecase.SalarySettlementConfig{}, logger)
	scoring := usecase.NewFantasyScoringService(fantasyRepo, fixtures, rules, &id.SequenceGenerator{Prefix: "bonus"}, logger)
	recalc := usecase.NewFantasyRecalculationService(fantasyRepo, scoring, usecase.FantasyRecalculationConfig{}, logger)
	jobs := usecase.NewJobOrchestratorService(recalc, nil, dispatches, usecase.JobOrchestratorConfig{}, logger)
	results := usecase.NewMatchResultService(players, memory.NewLegacyPlayerMirror(), fixtures, settlement, jobs, usecase.MatchResultConfig{WorkerCount: 2}, logger)

	handler := NewHandler(results, settlement, scoring, recalc, jobs, logger)
	return testServer{
		router:     NewRouter(handler, logger, nil, testInternalJobToken),
		budgets:    budgets,
		dispatches: dispatches,
	}
}

func (s testServer) do(t *testing.T, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var envelope map[string]any
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &envelope), "body: %s", rec.Body.String())
	return rec, envelope
}

func TestSubmitFixtureResult_AppliesRatingsAndSalaries(t *testing.T) {
	srv := newTestServer(t)

	body := `{
		"matchups": [
			{"home_player_id": "pl-cahya", "away_player_id": "pl-gilang", "home_goals": 2, "away_goals": 0},
			{"home_player_id": "pl-dimas", "away_player_id": "pl-hendra"}
		]
	}`
	rec, envelope := srv.do(t, http.MethodPost, "/v1/committee/fixtures/fx-003/results", body, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "fx-003", data["fixture_id"])
	assert.Len(t, data["updates"], 4)
	assert.Len(t, data["salary_deductions"], 2)
	assert.Equal(t, false, data["salary_skipped"])

	rec, envelope = srv.do(t, http.MethodGet, "/v1/committee/fixtures/fx-003/salary-transactions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items, ok := envelope["data"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)

	rec, envelope = srv.do(t, http.MethodPost, "/v1/committee/fixtures/fx-003/results", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data = envelope["data"].(map[string]any)
	assert.Equal(t, true, data["salary_skipped"])
	assert.Equal(t, usecase.SalarySkipReasonAlreadyProcessed, data["salary_skip_reason"])
}

func TestSubmitFixtureResult_RejectsBadPayloads(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{name: "unknown field", path: "/v1/committee/fixtures/fx-003/results", body: `{"matchups":[],"extra":1}`, want: http.StatusBadRequest},
		{name: "no matchups", path: "/v1/committee/fixtures/fx-003/results", body: `{"matchups":[]}`, want: http.StatusBadRequest},
		{name: "negative goals", path: "/v1/committee/fixtures/fx-003/results", body: `{"matchups":[{"home_player_id":"pl-cahya","away_player_id":"pl-gilang","home_goals":-1,"away_goals":0}]}`, want: http.StatusBadRequest},
		{name: "unknown fixture", path: "/v1/committee/fixtures/fx-404/results", body: `{"matchups":[{"home_player_id":"pl-cahya","away_player_id":"pl-gilang","home_goals":1,"away_goals":0}]}`, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, envelope := srv.do(t, http.MethodPost, tt.path, tt.body, nil)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, envelope, "error")
		})
	}
}

func TestChargeTeamBudget(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodPost, "/v1/committee/teams/baliutd/seasons/season-2026/budget-adjustments",
		`{"amount":"120.50","reason":"stadium fine"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "adjustment", data["type"])
	assert.Equal(t, "legacy", data["currency"])

	rec, envelope = srv.do(t, http.MethodPost, "/v1/committee/teams/baliutd/seasons/season-2026/budget-adjustments",
		`{"amount":"500","reason":"second fine"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Contains(t, envelope, "error")

	rec, _ = srv.do(t, http.MethodPost, "/v1/committee/teams/baliutd/seasons/season-2026/budget-adjustments",
		`{"amount":"0","reason":"nothing"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = srv.do(t, http.MethodPost, "/v1/committee/teams/ghost/seasons/season-2026/budget-adjustments",
		`{"amount":"1","reason":"ghost"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecalculateFantasyAndStandings(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodPost, "/v1/admin/fantasy/recalculate", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := envelope["data"].(map[string]any)
	assert.EqualValues(t, 1, data["success_count"])

	rec, envelope = srv.do(t, http.MethodGet, "/v1/fantasy/leagues/"+memory.SeedFantasyLeagueID+"/standings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	standings := envelope["data"].(map[string]any)
	teams := standings["teams"].([]any)
	require.Len(t, teams, 3)
	first := teams[0].(map[string]any)
	assert.Equal(t, "ft-garuda", first["team_id"])
	assert.EqualValues(t, 1, first["rank"])
	assert.EqualValues(t, 73, first["total_points"])

	rec, _ = srv.do(t, http.MethodPost, "/v1/admin/fantasy/recalculate", `{"league_id":"missing"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunFantasyRecalculationJob_RequiresToken(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := srv.do(t, http.MethodPost, "/v1/internal/jobs/fantasy-recalculate", `{}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = srv.do(t, http.MethodPost, "/v1/internal/jobs/fantasy-recalculate",
		`{"dispatch_id":"fantasy-recalculate-fx-001-1","fixture_id":"fx-001"}`,
		map[string]string{"X-Internal-Job-Token": testInternalJobToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	events := srv.dispatches.List()
	require.Len(t, events, 1)
	assert.Equal(t, "fantasy-recalculate-fx-001-1", events[0].DispatchID)
	assert.Equal(t, jobscheduler.StatusCompleted, events[0].Status)
	assert.Equal(t, "fx-001", events[0].ScopeID)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, false, data["fantasy_recalculation_running"])
}
