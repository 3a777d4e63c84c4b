package cache

import (
	"context"

	"github.com/riskibarqy/league-scoring/internal/domain/fantasy"
	"github.com/riskibarqy/league-scoring/internal/domain/scoringrule"
	basecache "github.com/riskibarqy/league-scoring/internal/platform/cache"
)

const (
	scoringRulePrefix   = "scoring_rule:"
	fantasyLeaguePrefix = "fantasy_league:"
)

type ScoringRuleRepository struct {
	next  scoringrule.Repository
	cache *basecache.Store
}

func NewScoringRuleRepository(next scoringrule.Repository, cache *basecache.Store) *ScoringRuleRepository {
	return &ScoringRuleRepository{next: next, cache: cache}
}

// Refresh drops every cached rule list so the next read goes to next.
func (r *ScoringRuleRepository) Refresh(ctx context.Context) {
	r.cache.DeletePrefix(ctx, scoringRulePrefix)
}

func (r *ScoringRuleRepository) ListByLeague(ctx context.Context, leagueID string) ([]scoringrule.Rule, error) {
	items, err := basecache.Load(ctx, r.cache, scoringRulePrefix+"league:"+leagueID, func(ctx context.Context) ([]scoringrule.Rule, error) {
		items, err := r.next.ListByLeague(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return append([]scoringrule.Rule(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]scoringrule.Rule(nil), items...), nil
}

// FantasyRepository caches league lookups. Everything the scoring engines
// rebuild goes straight to next.
type FantasyRepository struct {
	fantasy.Repository
	cache *basecache.Store
}

func NewFantasyRepository(next fantasy.Repository, cache *basecache.Store) *FantasyRepository {
	return &FantasyRepository{Repository: next, cache: cache}
}

// Refresh drops cached league lookups, misses included.
func (r *FantasyRepository) Refresh(ctx context.Context) {
	r.cache.DeletePrefix(ctx, fantasyLeaguePrefix)
}

func (r *FantasyRepository) ListLeagues(ctx context.Context) ([]fantasy.League, error) {
	items, err := basecache.Load(ctx, r.cache, fantasyLeaguePrefix+"list", func(ctx context.Context) ([]fantasy.League, error) {
		items, err := r.Repository.ListLeagues(ctx)
		if err != nil {
			return nil, err
		}
		return append([]fantasy.League(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]fantasy.League(nil), items...), nil
}

func (r *FantasyRepository) GetLeague(ctx context.Context, leagueID string) (fantasy.League, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, fantasyLeaguePrefix+"id:"+leagueID, func(ctx context.Context) (cachedLeague, error) {
		item, exists, err := r.Repository.GetLeague(ctx, leagueID)
		if err != nil {
			return cachedLeague{}, err
		}
		return cachedLeague{value: item, exists: exists}, nil
	})
	if err != nil {
		return fantasy.League{}, false, err
	}
	return cached.value, cached.exists, nil
}

type cachedLeague struct {
	value  fantasy.League
	exists bool
}
