package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/league-scoring/internal/domain/scoringrule"
)

type ScoringRuleRepository struct {
	mu       sync.RWMutex
	byLeague map[string][]scoringrule.Rule
}

func NewScoringRuleRepository(rules []scoringrule.Rule) *ScoringRuleRepository {
	byLeague := make(map[string][]scoringrule.Rule)
	for _, rule := range rules {
		byLeague[rule.LeagueID] = append(byLeague[rule.LeagueID], rule)
	}
	return &ScoringRuleRepository{byLeague: byLeague}
}

func (r *ScoringRuleRepository) ListByLeague(_ context.Context, leagueID string) ([]scoringrule.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]scoringrule.Rule(nil), r.byLeague[leagueID]...), nil
}
