package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/league-scoring/internal/domain/fantasy"
	"github.com/riskibarqy/league-scoring/internal/domain/scoringrule"
	basecache "github.com/riskibarqy/league-scoring/internal/platform/cache"
)

type countingRuleRepo struct {
	calls int
}

func (r *countingRuleRepo) ListByLeague(_ context.Context, leagueID string) ([]scoringrule.Rule, error) {
	r.calls++
	return []scoringrule.Rule{{ID: "r1", LeagueID: leagueID, RuleType: scoringrule.Win, AppliesTo: scoringrule.TargetTeam, PointsValue: 3, IsActive: true}}, nil
}

func TestScoringRuleRepository_CachesPerLeague(t *testing.T) {
	next := &countingRuleRepo{}
	repo := NewScoringRuleRepository(next, basecache.NewStore(time.Minute))

	for i := 0; i < 3; i++ {
		items, err := repo.ListByLeague(context.Background(), "fl-1")
		if err != nil {
			t.Fatalf("list rules: %v", err)
		}
		items[0].PointsValue = 99
	}
	if next.calls != 1 {
		t.Fatalf("expected one load, got %d", next.calls)
	}

	items, _ := repo.ListByLeague(context.Background(), "fl-1")
	if items[0].PointsValue != 3 {
		t.Fatalf("cached slice must not be shared with callers, got %d", items[0].PointsValue)
	}

	if _, err := repo.ListByLeague(context.Background(), "fl-2"); err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if next.calls != 2 {
		t.Fatalf("expected separate load per league, got %d", next.calls)
	}
}

type leagueOnlyRepo struct {
	fantasy.Repository
	calls int
}

func (r *leagueOnlyRepo) GetLeague(_ context.Context, leagueID string) (fantasy.League, bool, error) {
	r.calls++
	if leagueID != "fl-1" {
		return fantasy.League{}, false, nil
	}
	return fantasy.League{ID: "fl-1", SeasonID: "s1"}, true, nil
}

func TestFantasyRepository_CachesMisses(t *testing.T) {
	next := &leagueOnlyRepo{}
	repo := NewFantasyRepository(next, basecache.NewStore(time.Minute))

	for i := 0; i < 2; i++ {
		if _, exists, err := repo.GetLeague(context.Background(), "ghost"); err != nil || exists {
			t.Fatalf("expected cached miss, exists=%v err=%v", exists, err)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected miss to be cached, got %d loads", next.calls)
	}
}

func TestRefresh_DropsCachedEntries(t *testing.T) {
	store := basecache.NewStore(time.Minute)
	rulesNext := &countingRuleRepo{}
	rules := NewScoringRuleRepository(rulesNext, store)
	leaguesNext := &leagueOnlyRepo{}
	leagues := NewFantasyRepository(leaguesNext, store)
	ctx := context.Background()

	_, _ = rules.ListByLeague(ctx, "fl-1")
	_, _, _ = leagues.GetLeague(ctx, "ghost")

	rules.Refresh(ctx)
	leagues.Refresh(ctx)

	_, _ = rules.ListByLeague(ctx, "fl-1")
	_, _, _ = leagues.GetLeague(ctx, "ghost")
	if rulesNext.calls != 2 || leaguesNext.calls != 2 {
		t.Fatalf("expected reload after refresh, rules=%d leagues=%d", rulesNext.calls, leaguesNext.calls)
	}
}
