package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/league-scoring/internal/domain/fixture"
)

type FixtureRepository struct {
	mu    sync.RWMutex
	items map[string]fixture.Fixture
}

func NewFixtureRepository(fixtures []fixture.Fixture) *FixtureRepository {
	items := make(map[string]fixture.Fixture, len(fixtures))
	for _, item := range fixtures {
		items[item.ID] = cloneFixture(item)
	}
	return &FixtureRepository{items: items}
}

func (r *FixtureRepository) GetByID(_ context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[fixtureID]
	if !ok {
		return fixture.Fixture{}, false, nil
	}
	return cloneFixture(item), true, nil
}

func (r *FixtureRepository) ListCompletedBySeason(_ context.Context, seasonID string) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0)
	for _, item := range r.items {
		if item.SeasonID != seasonID || !item.Completed() {
			continue
		}
		out = append(out, cloneFixture(item))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Put inserts or replaces a fixture.
func (r *FixtureRepository) Put(item fixture.Fixture) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = cloneFixture(item)
}

func cloneFixture(item fixture.Fixture) fixture.Fixture {
	copied := item
	copied.Matchups = append([]fixture.Matchup(nil), item.Matchups...)
	return copied
}
