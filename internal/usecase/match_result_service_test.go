package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/league-scoring/internal/domain/budget"
	"github.com/riskibarqy/league-scoring/internal/domain/fixture"
	"github.com/riskibarqy/league-scoring/internal/domain/jobscheduler"
	"github.com/riskibarqy/league-scoring/internal/domain/playerseason"
	"github.com/riskibarqy/league-scoring/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-scoring/internal/platform/id"
	"github.com/riskibarqy/league-scoring/internal/platform/logging"
	"github.com/shopspring/decimal"
)

type stubRecalcEnqueuer struct {
	fixtureIDs []string
	err        error
}

func (s *stubRecalcEnqueuer) EnqueueFantasyRecalculation(_ context.Context, fixtureID string) error {
	s.fixtureIDs = append(s.fixtureIDs, fixtureID)
	return s.err
}

type failingMirror struct {
	calls int
}

func (m *failingMirror) MirrorRating(_ context.Context, _ string, _, _ int) error {
	m.calls++
	return errors.New("legacy store offline")
}

type blockingPlayerRepository struct {
	*memory.PlayerSeasonRepository
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (r *blockingPlayerRepository) Get(ctx context.Context, seasonID, playerID string) (playerseason.Record, bool, error) {
	r.once.Do(func() { close(r.started) })
	<-r.release
	return r.PlayerSeasonRepository.Get(ctx, seasonID, playerID)
}

type matchResultHarness struct {
	service  *MatchResultService
	players  *memory.PlayerSeasonRepository
	budgets  *memory.BudgetRepository
	mirror   *memory.LegacyPlayerMirror
	enqueuer *stubRecalcEnqueuer
}

func intPtr(v int) *int { return &v }

func seasonRecord(playerID, teamID string, auction int64, star int, points *int) playerseason.Record {
	value := decimal.NewFromInt(auction)
	return playerseason.Record{
		PlayerID:       playerID,
		SeasonID:       "s1",
		Name:           playerID,
		TeamID:         teamID,
		AuctionValue:   value,
		StarRating:     star,
		Points:         points,
		SalaryPerMatch: playerseason.CalculateSalary(value, star),
	}
}

func newMatchResultHarness(t *testing.T, records []playerseason.Record, cfg MatchResultConfig) matchResultHarness {
	t.Helper()

	players := memory.NewPlayerSeasonRepository(records)
	budgets := memory.NewBudgetRepository([]budget.TeamSeasonBudget{
		{TeamID: "home-fc", SeasonID: "s1", DualCurrency: true, RealPlayerBudget: decimal.NewFromInt(1000), FootballBudget: decimal.NewFromInt(300)},
		{TeamID: "away-fc", SeasonID: "s1", Budget: decimal.NewFromInt(50)},
	})
	fixtures := memory.NewFixtureRepository([]fixture.Fixture{
		{ID: "fx-100", SeasonID: "s1", HomeTeamID: "home-fc", AwayTeamID: "away-fc", Status: fixture.StatusScheduled},
	})
	mirror := memory.NewLegacyPlayerMirror()
	enqueuer := &stubRecalcEnqueuer{}

	settlement := NewSalarySettlementService(budgets, &id.SequenceGenerator{Prefix: "tx"}, SalarySettlementConfig{CASRetries: 3}, logging.NewNop())
	service := NewMatchResultService(players, mirror, fixtures, settlement, enqueuer, cfg, logging.NewNop())

	return matchResultHarness{
		service:  service,
		players:  players,
		budgets:  budgets,
		mirror:   mirror,
		enqueuer: enqueuer,
	}
}

func TestMatchResultService_SubmitResult_ThreeOneMovesTwoPoints(t *testing.T) {
	t.Parallel()

	h := newMatchResultHarness(t, []playerseason.Record{
		seasonRecord("p-home", "home-fc", 1000, 5, nil),
		seasonRecord("p-away", "away-fc", 1000, 5, nil),
	}, MatchResultConfig{WorkerCount: 2})

	out, err := h.service.SubmitResult(context.Background(), SubmitResultInput{
		FixtureID: "fx-100",
		Matchups: []MatchupResultInput{
			{HomePlayerID: "p-home", AwayPlayerID: "p-away", HomeGoals: intPtr(3), AwayGoals: intPtr(1)},
		},
	})
	if err != nil {
		t.Fatalf("SubmitResult error: %v", err)
	}
	if len(out.Updates) != 2 {
		t.Fatalf("expected 2 updates, got=%d", len(out.Updates))
	}

	home, away := out.Updates[0], out.Updates[1]
	if home.Side != fixture.SideHome || home.PointsChange != 2 || home.NewPoints != 147 || home.StarChanged {
		t.Fatalf("unexpected home update: %+v", home)
	}
	if away.Side != fixture.SideAway || away.PointsChange != -2 || away.NewPoints != 143 || away.NewStar != 4 {
		t.Fatalf("unexpected away update: %+v", away)
	}
	if away.SalaryPerMatch == nil || !away.SalaryPerMatch.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected recomputed away salary 40, got=%v", away.SalaryPerMatch)
	}

	stored, _, _ := h.players.Get(context.Background(), "s1", "p-away")
	if stored.CurrentPoints() != 143 || stored.StarRating != 4 || !stored.SalaryPerMatch.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("unexpected stored away record: %+v", stored)
	}

	if len(out.SalaryDeductions) != 2 || len(out.SalaryErrors) != 0 {
		t.Fatalf("unexpected settlement: deductions=%+v errors=%+v", out.SalaryDeductions, out.SalaryErrors)
	}
	homeBudget, _ := h.budgets.GetTeamSeason(context.Background(), "home-fc", "s1")
	if !homeBudget.RealPlayerBudget.Equal(decimal.NewFromInt(950)) || !homeBudget.RealPlayerSpent.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected home budget: %+v", homeBudget)
	}
	awayBudget, _ := h.budgets.GetTeamSeason(context.Background(), "away-fc", "s1")
	if !awayBudget.Budget.Equal(decimal.NewFromInt(10)) || awayBudget.Version != 1 {
		t.Fatalf("unexpected away budget: %+v", awayBudget)
	}

	profile, ok := h.mirror.Get("p-home")
	if !ok || profile.Points != 147 || profile.StarRating != 5 {
		t.Fatalf("expected legacy mirror to follow the season record, got=%+v ok=%v", profile, ok)
	}
}

func TestMatchResultService_SubmitResult_StarPromotionRecomputesSalary(t *testing.T) {
	t.Parallel()

	h := newMatchResultHarness(t, []playerseason.Record{
		seasonRecord("p-home", "home-fc", 2000, 9, intPtr(349)),
		seasonRecord("p-away", "away-fc", 500, 6, intPtr(200)),
	}, MatchResultConfig{})

	out, err := h.service.SubmitResult(context.Background(), SubmitResultInput{
		FixtureID:           "fx-100",
		SeasonID:            "s1",
		SkipSalaryDeduction: true,
		Matchups: []MatchupResultInput{
			{HomePlayerID: "p-home", AwayPlayerID: "p-away", HomeGoals: intPtr(2), AwayGoals: intPtr(1)},
		},
	})
	if err != nil {
		t.Fatalf("SubmitResult error: %v", err)
	}

	home := out.Updates[0]
	if home.NewPoints != 350 || home.NewStar != 10 || !home.StarChanged {
		t.Fatalf("unexpected promotion: %+v", home)
	}
	if home.SalaryPerMatch == nil || !home.SalaryPerMatch.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected salary 200 after promotion, got=%v", home.SalaryPerMatch)
	}
	if out.Updates[1].StarChanged || out.Updates[1].SalaryPerMatch != nil {
		t.Fatalf("away star must stay unchanged: %+v", out.Updates[1])
	}

	if !out.SalarySkipped || out.SalarySkipReason != SalarySkipReasonRequested {
		t.Fatalf("expected skipped salary, got skipped=%v reason=%q", out.SalarySkipped, out.SalarySkipReason)
	}
	if len(out.SalaryDeductions) != 0 {
		t.Fatalf("expected no deductions when skipped, got=%d", len(out.SalaryDeductions))
	}
}

func TestMatchResultService_SubmitResult_DuplicateSettlementIsBlocked(t *testing.T) {
	t.Parallel()

	h := newMatchResultHarness(t, []playerseason.Record{
		seasonRecord("p-home", "home-fc", 1000, 5, nil),
		seasonRecord("p-away", "away-fc", 1000, 5, nil),
	}, MatchResultConfig{})
	input := SubmitResultInput{
		FixtureID: "fx-100",
		Matchups: []MatchupResultInput{
			{HomePlayerID: "p-home", AwayPlayerID: "p-away", HomeGoals: intPtr(1), AwayGoals: intPtr(1)},
		},
	}

	if _, err := h.service.SubmitResult(context.Background(), input); err != nil {
		t.Fatalf("first SubmitResult error: %v", err)
	}
	before, _ := h.budgets.GetTeamSeason(context.Background(), "home-fc", "s1")

	out, err := h.service.SubmitResult(context.Background(), input)
	if err != nil {
		t.Fatalf("second SubmitResult error: %v", err)
	}
	if len(out.SalaryDeductions) != 0 {
		t.Fatalf("expected no deductions on replay, got=%+v", out.SalaryDeductions)
	}
	if out.SalarySkipReason != SalarySkipReasonAlreadyProcessed {
		t.Fatalf("unexpected skip reason: %q", out.SalarySkipReason)
	}

	after, _ := h.budgets.GetTeamSeason(context.Background(), "home-fc", "s1")
	if !after.RealPlayerBudget.Equal(before.RealPlayerBudget) || after.Version != before.Version {
		t.Fatalf("budget must be untouched on replay: before=%+v after=%+v", before, after)
	}

	txs, _ := h.budgets.ListSalaryTransactionsByFixture(context.Background(), "fx-100")
	if len(txs) != 2 {
		t.Fatalf("expected exactly one salary row per player, got=%d", len(txs))
	}
}

func TestMatchResultService_SubmitResult_SkipsUnscorableSides(t *testing.T) {
	t.Parallel()

	h := newMatchResultHarness(t, []playerseason.Record{
		seasonRecord("p-home", "home-fc", 1000, 5, nil),
	}, MatchResultConfig{})

	out, err := h.service.SubmitResult(context.Background(), SubmitResultInput{
		FixtureID: "fx-100",
		Matchups: []MatchupResultInput{
			{HomePlayerID: "p-home", AwayPlayerID: "p-ghost", HomeGoals: intPtr(0), AwayGoals: intPtr(7)},
			{HomePlayerID: "p-home", AwayPlayerID: "p-away", HomeGoals: intPtr(2)},
		},
	})
	if err != nil {
		t.Fatalf("SubmitResult error: %v", err)
	}
	if len(out.Updates) != 4 {
		t.Fatalf("expected 4 per-side results, got=%d", len(out.Updates))
	}

	if out.Updates[0].Status != PlayerUpdateStatusUpdated || out.Updates[0].PointsChange != -5 {
		t.Fatalf("expected clamped loss for home player: %+v", out.Updates[0])
	}
	if out.Updates[1].Status != PlayerUpdateStatusSkipped || out.Updates[1].Reason != skipReasonNoSeasonRecord {
		t.Fatalf("expected missing season record skip: %+v", out.Updates[1])
	}
	for _, row := range out.Updates[2:] {
		if row.Status != PlayerUpdateStatusSkipped || row.Reason != skipReasonMissingGoals {
			t.Fatalf("expected missing goals skip: %+v", row)
		}
	}
}

func TestMatchResultService_SubmitResult_AppliesRepeatedPlayerInOrder(t *testing.T) {
	t.Parallel()

	h := newMatchResultHarness(t, []playerseason.Record{
		seasonRecord("p-home", "home-fc", 1000, 4, intPtr(143)),
		seasonRecord("p-away", "away-fc", 1000, 5, nil),
	}, MatchResultConfig{WorkerCount: 4})

	out, err := h.service.SubmitResult(context.Background(), SubmitResultInput{
		FixtureID: "fx-100",
		Matchups: []MatchupResultInput{
			{HomePlayerID: "p-home", AwayPlayerID: "p-away", HomeGoals: intPtr(1), AwayGoals: intPtr(0)},
			{HomePlayerID: "p-home", AwayPlayerID: "p-away", HomeGoals: intPtr(2), AwayGoals: intPtr(0)},
		},
	})
	if err != nil {
		t.Fatalf("SubmitResult error: %v", err)
	}

	if out.Updates[2].PreviousPoints != 144 || out.Updates[2].NewPoints != 146 || out.Updates[2].NewStar != 5 {
		t.Fatalf("second delta must build on the first: %+v", out.Updates[2])
	}
	stored, _, _ := h.players.Get(context.Background(), "s1", "p-home")
	if stored.CurrentPoints() != 146 {
		t.Fatalf("unexpected stored points: %d", stored.CurrentPoints())
	}
}

func TestMatchResultService_SubmitResult_MirrorFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	players := memory.NewPlayerSeasonRepository([]playerseason.Record{
		seasonRecord("p-home", "home-fc", 1000, 5, nil),
		seasonRecord("p-away", "away-fc", 1000, 5, nil),
	})
	mirror := &failingMirror{}
	service := NewMatchResultService(players, mirror, nil, nil, nil, MatchResultConfig{DefaultSeasonID: "s1"}, logging.NewNop())

	out, err := service.SubmitResult(context.Background(), SubmitResultInput{
		FixtureID: "fx-100",
		Matchups: []MatchupResultInput{
			{HomePlayerID: "p-home", AwayPlayerID: "p-away", HomeGoals: intPtr(1), AwayGoals: intPtr(0)},
		},
	})
	if err != nil {
		t.Fatalf("SubmitResult error: %v", err)
	}
	if mirror.calls != 2 {
		t.Fatalf("expected mirror to be attempted for both players, got=%d", mirror.calls)
	}
	for _, row := range out.Updates {
		if row.Status != PlayerUpdateStatusUpdated {
			t.Fatalf("mirror failure must not fail the update: %+v", row)
		}
	}
}

func TestMatchResultService_SubmitResult_EnqueuesRecalculation(t *testing.T) {
	t.Parallel()

	h := newMatchResultHarness(t, []playerseason.Record{
		seasonRecord("p-home", "home-fc", 1000, 5, nil),
	}, MatchResultConfig{RecalcOnResult: true})

	out, err := h.service.SubmitResult(context.Background(), SubmitResultInput{
		FixtureID:           "fx-100",
		SkipSalaryDeduction: true,
		Matchups: []MatchupResultInput{
			{HomePlayerID: "p-home", AwayPlayerID: "p-away", HomeGoals: intPtr(1), AwayGoals: intPtr(0)},
		},
	})
	if err != nil {
		t.Fatalf("SubmitResult error: %v", err)
	}
	if !out.RecalculationQueued || len(h.enqueuer.fixtureIDs) != 1 || h.enqueuer.fixtureIDs[0] != "fx-100" {
		t.Fatalf("expected one queued recalculation, got queued=%v calls=%v", out.RecalculationQueued, h.enqueuer.fixtureIDs)
	}
}

func TestMatchResultService_SubmitResult_DisabledQueueIsNotReportedQueued(t *testing.T) {
	t.Parallel()

	players := memory.NewPlayerSeasonRepository([]playerseason.Record{
		seasonRecord("p-home", "home-fc", 1000, 5, nil),
	})
	fixtures := memory.NewFixtureRepository([]fixture.Fixture{
		{ID: "fx-100", SeasonID: "s1", HomeTeamID: "home-fc", AwayTeamID: "away-fc", Status: fixture.StatusScheduled},
	})
	dispatches := memory.NewJobDispatchRepository()
	jobs := NewJobOrchestratorService(nil, nil, dispatches, JobOrchestratorConfig{}, logging.NewNop())
	service := NewMatchResultService(players, memory.NewLegacyPlayerMirror(), fixtures, nil, jobs, MatchResultConfig{RecalcOnResult: true}, logging.NewNop())

	out, err := service.SubmitResult(context.Background(), SubmitResultInput{
		FixtureID:           "fx-100",
		SkipSalaryDeduction: true,
		Matchups: []MatchupResultInput{
			{HomePlayerID: "p-home", AwayPlayerID: "p-away", HomeGoals: intPtr(1), AwayGoals: intPtr(0)},
		},
	})
	if err != nil {
		t.Fatalf("SubmitResult error: %v", err)
	}
	if out.RecalculationQueued {
		t.Fatalf("recalculation must not be reported as queued without a queue")
	}
	events := dispatches.List()
	if len(events) != 1 || events[0].Status != jobscheduler.StatusFailed {
		t.Fatalf("expected failed dispatch event, got=%+v", events)
	}
}

func TestMatchResultService_SubmitResult_SubmitFailureWaitsForRunningWorkers(t *testing.T) {
	t.Parallel()

	players := &blockingPlayerRepository{
		PlayerSeasonRepository: memory.NewPlayerSeasonRepository([]playerseason.Record{
			seasonRecord("p-home", "home-fc", 1000, 5, nil),
			seasonRecord("p-away", "away-fc", 1000, 5, nil),
		}),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	fixtures := memory.NewFixtureRepository([]fixture.Fixture{
		{ID: "fx-100", SeasonID: "s1", HomeTeamID: "home-fc", AwayTeamID: "away-fc", Status: fixture.StatusScheduled},
	})
	service := NewMatchResultService(players, nil, fixtures, nil, nil, MatchResultConfig{WorkerCount: 2}, logging.NewNop())
	service.newPool = func(int) (*ants.Pool, error) {
		return ants.NewPool(1, ants.WithNonblocking(true))
	}

	done := make(chan error, 1)
	go func() {
		_, err := service.SubmitResult(context.Background(), SubmitResultInput{
			FixtureID: "fx-100",
			Matchups: []MatchupResultInput{
				{HomePlayerID: "p-home", AwayPlayerID: "p-away", HomeGoals: intPtr(2), AwayGoals: intPtr(0)},
			},
		})
		done <- err
	}()

	select {
	case <-players.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not start")
	}
	select {
	case err := <-done:
		t.Fatalf("SubmitResult returned while a worker was still running: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(players.release)
	if err := <-done; !errors.Is(err, ants.ErrPoolOverload) {
		t.Fatalf("expected pool overload error, got=%v", err)
	}

	record, _, _ := players.PlayerSeasonRepository.Get(context.Background(), "s1", "p-home")
	if record.Points == nil || *record.Points != playerseason.BasePoints(5)+2 {
		t.Fatalf("submitted worker must finish before SubmitResult returns, got=%+v", record.Points)
	}
}

func TestMatchResultService_SubmitResult_Validation(t *testing.T) {
	t.Parallel()

	h := newMatchResultHarness(t, nil, MatchResultConfig{})

	if _, err := h.service.SubmitResult(context.Background(), SubmitResultInput{FixtureID: "fx-100"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty matchups, got=%v", err)
	}

	_, err := h.service.SubmitResult(context.Background(), SubmitResultInput{
		FixtureID: "fx-missing",
		Matchups:  []MatchupResultInput{{HomePlayerID: "a", AwayPlayerID: "b", HomeGoals: intPtr(1), AwayGoals: intPtr(0)}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown fixture, got=%v", err)
	}

	_, err = h.service.SubmitResult(context.Background(), SubmitResultInput{
		FixtureID: "fx-100",
		SeasonID:  "s-other",
		Matchups:  []MatchupResultInput{{HomePlayerID: "a", AwayPlayerID: "b", HomeGoals: intPtr(1), AwayGoals: intPtr(0)}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for season mismatch, got=%v", err)
	}
}
