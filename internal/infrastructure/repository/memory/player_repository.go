package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/league-scoring/internal/domain/playerseason"
)

type PlayerSeasonRepository struct {
	mu    sync.RWMutex
	items map[string]playerseason.Record
}

func NewPlayerSeasonRepository(records []playerseason.Record) *PlayerSeasonRepository {
	items := make(map[string]playerseason.Record, len(records))
	for _, item := range records {
		items[playerSeasonKey(item.SeasonID, item.PlayerID)] = clonePlayerSeason(item)
	}
	return &PlayerSeasonRepository{items: items}
}

func (r *PlayerSeasonRepository) Get(_ context.Context, seasonID, playerID string) (playerseason.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[playerSeasonKey(seasonID, playerID)]
	if !ok {
		return playerseason.Record{}, false, nil
	}
	return clonePlayerSeason(item), true, nil
}

func (r *PlayerSeasonRepository) ListBySeason(_ context.Context, seasonID string) ([]playerseason.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playerseason.Record, 0)
	for _, item := range r.items {
		if item.SeasonID == seasonID {
			out = append(out, clonePlayerSeason(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *PlayerSeasonRepository) UpdateRating(_ context.Context, update playerseason.RatingUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := playerSeasonKey(update.SeasonID, update.PlayerID)
	item, ok := r.items[key]
	if !ok {
		return fmt.Errorf("player season record not found: player=%s season=%s", update.PlayerID, update.SeasonID)
	}
	r.items[key] = item.Apply(update)
	return nil
}

func playerSeasonKey(seasonID, playerID string) string {
	return seasonID + "::" + playerID
}

func clonePlayerSeason(item playerseason.Record) playerseason.Record {
	copied := item
	if item.Points != nil {
		points := *item.Points
		copied.Points = &points
	}
	return copied
}

// PlayerProfile is the legacy per-player projection.
type PlayerProfile struct {
	PlayerID   string
	Points     int
	StarRating int
}

type LegacyPlayerMirror struct {
	mu    sync.RWMutex
	items map[string]PlayerProfile
}

func NewLegacyPlayerMirror() *LegacyPlayerMirror {
	return &LegacyPlayerMirror{items: make(map[string]PlayerProfile)}
}

func (m *LegacyPlayerMirror) MirrorRating(_ context.Context, playerID string, points, starRating int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[playerID] = PlayerProfile{PlayerID: playerID, Points: points, StarRating: starRating}
	return nil
}

func (m *LegacyPlayerMirror) Get(playerID string) (PlayerProfile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[playerID]
	return item, ok
}
