package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/league-scoring/internal/domain/fantasy"
	"github.com/riskibarqy/league-scoring/internal/domain/scoringrule"
	cacherepo "github.com/riskibarqy/league-scoring/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/league-scoring/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/league-scoring/internal/platform/cache"
	"github.com/riskibarqy/league-scoring/internal/platform/logging"
)

type blockingFantasyRepository struct {
	*memory.FantasyRepository
	started chan struct{}
	release chan struct{}
}

func (r *blockingFantasyRepository) ListLeagues(ctx context.Context) ([]fantasy.League, error) {
	close(r.started)
	<-r.release
	return r.FantasyRepository.ListLeagues(ctx)
}

type failingPointsRepository struct {
	*memory.FantasyRepository
	failLeague string
}

func (r *failingPointsRepository) DeletePlayerPointsByLeague(ctx context.Context, leagueID string) error {
	if leagueID == r.failLeague {
		return errors.New("disk full")
	}
	return r.FantasyRepository.DeletePlayerPointsByLeague(ctx, leagueID)
}

func TestFantasyRecalculationService_Recalculate(t *testing.T) {
	t.Parallel()

	scoring, fantasyRepo := newSeededScoringService()
	svc := NewFantasyRecalculationService(fantasyRepo, scoring, FantasyRecalculationConfig{LeagueConcurrency: 2}, logging.NewNop())

	result, err := svc.Recalculate(context.Background(), RecalculateInput{})
	if err != nil {
		t.Fatalf("Recalculate error: %v", err)
	}
	if result.LeagueCount != 1 || result.SuccessCount != 1 || result.FailedCount != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	summary := result.Leagues[0]
	if summary.PlayerPoints.Written != 8 || summary.TeamBonuses.Credited != 3 || summary.TeamCount != 3 {
		t.Fatalf("unexpected league summary: %+v", summary)
	}

	if _, err := svc.Recalculate(context.Background(), RecalculateInput{LeagueID: "fl-unknown"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown league, got=%v", err)
	}
}

func TestFantasyRecalculationService_Recalculate_RejectsConcurrentRun(t *testing.T) {
	t.Parallel()

	scoring, fantasyRepo := newSeededScoringService()
	blocking := &blockingFantasyRepository{
		FantasyRepository: fantasyRepo,
		started:           make(chan struct{}),
		release:           make(chan struct{}),
	}
	svc := NewFantasyRecalculationService(blocking, scoring, FantasyRecalculationConfig{}, logging.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Recalculate(context.Background(), RecalculateInput{})
		done <- err
	}()

	select {
	case <-blocking.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("first recalculation did not start")
	}
	if !svc.Running() {
		t.Fatalf("expected lock to be held")
	}

	if _, err := svc.Recalculate(context.Background(), RecalculateInput{}); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got=%v", err)
	}

	close(blocking.release)
	if err := <-done; err != nil {
		t.Fatalf("first recalculation error: %v", err)
	}
	if svc.Running() {
		t.Fatalf("lock must be released after the run")
	}
}

func TestFantasyRecalculationService_Recalculate_LeagueFailureIsReported(t *testing.T) {
	t.Parallel()

	snapshot := memory.SeedFantasy()
	snapshot.Leagues = append(snapshot.Leagues, fantasy.League{ID: "fl-broken", SeasonID: memory.SeedSeasonID, Name: "Broken"})
	repo := &failingPointsRepository{
		FantasyRepository: memory.NewFantasyRepository(snapshot),
		failLeague:        "fl-broken",
	}
	scoring := NewFantasyScoringService(
		repo,
		memory.NewFixtureRepository(memory.SeedFixtures()),
		memory.NewScoringRuleRepository(memory.SeedScoringRules()),
		nil,
		logging.NewNop(),
	)
	svc := NewFantasyRecalculationService(repo, scoring, FantasyRecalculationConfig{LeagueConcurrency: 2}, logging.NewNop())

	result, err := svc.Recalculate(context.Background(), RecalculateInput{})
	if err != nil {
		t.Fatalf("Recalculate error: %v", err)
	}
	if result.SuccessCount != 1 || result.FailedCount != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if result.Leagues[0].LeagueID != "fl-broken" || result.Leagues[0].Status != recalcStatusFailed {
		t.Fatalf("expected failed league first in id order: %+v", result.Leagues[0])
	}
}

type editableRuleRepository struct {
	rules []scoringrule.Rule
}

func (r *editableRuleRepository) ListByLeague(_ context.Context, leagueID string) ([]scoringrule.Rule, error) {
	out := make([]scoringrule.Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		if rule.LeagueID == leagueID {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *editableRuleRepository) setPoints(ruleType scoringrule.RuleType, target scoringrule.Target, points int) {
	for idx := range r.rules {
		if r.rules[idx].RuleType == ruleType && r.rules[idx].AppliesTo == target {
			r.rules[idx].PointsValue = points
		}
	}
}

func TestFantasyRecalculationService_Recalculate_ReadsRulesFromSourceThroughCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := basecache.NewStore(time.Hour)
	rules := &editableRuleRepository{rules: memory.SeedScoringRules()}
	fantasyRepo := memory.NewFantasyRepository(memory.SeedFantasy())
	cachedFantasy := cacherepo.NewFantasyRepository(fantasyRepo, store)
	scoring := NewFantasyScoringService(
		cachedFantasy,
		memory.NewFixtureRepository(memory.SeedFixtures()),
		cacherepo.NewScoringRuleRepository(rules, store),
		nil,
		logging.NewNop(),
	)
	svc := NewFantasyRecalculationService(cachedFantasy, scoring, FantasyRecalculationConfig{}, logging.NewNop())

	totalFor := func(teamID string) int {
		t.Helper()
		if _, err := svc.Recalculate(ctx, RecalculateInput{}); err != nil {
			t.Fatalf("Recalculate error: %v", err)
		}
		teams, err := fantasyRepo.ListTeamsByLeague(ctx, memory.SeedFantasyLeagueID)
		if err != nil {
			t.Fatalf("list teams: %v", err)
		}
		for _, team := range teams {
			if team.ID == teamID {
				return team.TotalPoints
			}
		}
		t.Fatalf("team %s not found", teamID)
		return 0
	}

	before := totalFor("ft-garuda")
	if before != 73 {
		t.Fatalf("unexpected seeded total: %d", before)
	}

	rules.setPoints(scoringrule.MatchPlayed, scoringrule.TargetPlayer, 11)
	after := totalFor("ft-garuda")
	if after <= before {
		t.Fatalf("edited rule must be used by the next rebuild, before=%d after=%d", before, after)
	}
}

func TestFantasyRecalculationService_Recalculate_SeesLeagueAddedAfterCachedMiss(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := basecache.NewStore(time.Hour)
	snapshot := memory.SeedFantasy()
	league := snapshot.Leagues[0]
	snapshot.Leagues = nil
	fantasyRepo := memory.NewFantasyRepository(snapshot)
	cachedFantasy := cacherepo.NewFantasyRepository(fantasyRepo, store)
	scoring := NewFantasyScoringService(
		cachedFantasy,
		memory.NewFixtureRepository(memory.SeedFixtures()),
		memory.NewScoringRuleRepository(memory.SeedScoringRules()),
		nil,
		logging.NewNop(),
	)
	svc := NewFantasyRecalculationService(cachedFantasy, scoring, FantasyRecalculationConfig{}, logging.NewNop())

	if _, err := svc.Recalculate(ctx, RecalculateInput{LeagueID: league.ID}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before the league exists, got=%v", err)
	}

	fantasyRepo.AddLeague(league)
	result, err := svc.Recalculate(ctx, RecalculateInput{LeagueID: league.ID})
	if err != nil {
		t.Fatalf("Recalculate error: %v", err)
	}
	if result.SuccessCount != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}
