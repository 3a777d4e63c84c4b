package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/league-scoring/internal/domain/fantasy"
)

// FantasySnapshot seeds a FantasyRepository.
type FantasySnapshot struct {
	Leagues []fantasy.League
	Teams   []fantasy.Team
	Entries []fantasy.SquadEntry
	Grants  []fantasy.BonusGrant
}

type FantasyRepository struct {
	mu           sync.RWMutex
	leagues      map[string]fantasy.League
	teams        map[string]fantasy.Team
	entries      []fantasy.SquadEntry
	grants       []fantasy.BonusGrant
	playerPoints map[string]fantasy.PlayerPointsRecord
	bonuses      map[string]fantasy.TeamBonusRecord
}

func NewFantasyRepository(snapshot FantasySnapshot) *FantasyRepository {
	repo := &FantasyRepository{
		leagues:      make(map[string]fantasy.League, len(snapshot.Leagues)),
		teams:        make(map[string]fantasy.Team, len(snapshot.Teams)),
		entries:      append([]fantasy.SquadEntry(nil), snapshot.Entries...),
		grants:       append([]fantasy.BonusGrant(nil), snapshot.Grants...),
		playerPoints: make(map[string]fantasy.PlayerPointsRecord),
		bonuses:      make(map[string]fantasy.TeamBonusRecord),
	}
	for _, item := range snapshot.Leagues {
		repo.leagues[item.ID] = item
	}
	for _, item := range snapshot.Teams {
		repo.teams[item.ID] = item
	}
	return repo
}

// AddLeague registers or replaces a league.
func (r *FantasyRepository) AddLeague(item fantasy.League) {
	r.mu.Lock()
	r.leagues[item.ID] = item
	r.mu.Unlock()
}

func (r *FantasyRepository) ListLeagues(_ context.Context) ([]fantasy.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fantasy.League, 0, len(r.leagues))
	for _, item := range r.leagues {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *FantasyRepository) GetLeague(_ context.Context, leagueID string) (fantasy.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.leagues[leagueID]
	return item, ok, nil
}

func (r *FantasyRepository) ListTeamsByLeague(_ context.Context, leagueID string) ([]fantasy.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.teamsByLeagueLocked(leagueID), nil
}

func (r *FantasyRepository) ListSquadEntriesByLeague(_ context.Context, leagueID string) ([]fantasy.SquadEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fantasy.SquadEntry, 0)
	for _, entry := range r.entries {
		if r.teamInLeagueLocked(entry.TeamID, leagueID) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *FantasyRepository) ListBonusGrantsByLeague(_ context.Context, leagueID string) ([]fantasy.BonusGrant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fantasy.BonusGrant, 0)
	for _, grant := range r.grants {
		if grant.LeagueID == leagueID {
			out = append(out, grant)
		}
	}
	return out, nil
}

func (r *FantasyRepository) DeletePlayerPointsByLeague(_ context.Context, leagueID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, record := range r.playerPoints {
		if r.teamInLeagueLocked(record.TeamID, leagueID) {
			delete(r.playerPoints, key)
		}
	}
	return nil
}

func (r *FantasyRepository) InsertPlayerPoints(_ context.Context, records []fantasy.PlayerPointsRecord) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, record := range records {
		key := record.Key()
		if _, exists := r.playerPoints[key]; exists {
			continue
		}
		r.playerPoints[key] = record
		inserted++
	}
	return inserted, nil
}

func (r *FantasyRepository) ListPlayerPointsByLeague(_ context.Context, leagueID string) ([]fantasy.PlayerPointsRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fantasy.PlayerPointsRecord, 0)
	for _, record := range r.playerPoints {
		if r.teamInLeagueLocked(record.TeamID, leagueID) {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, nil
}

func (r *FantasyRepository) ResetTeamBonuses(_ context.Context, leagueID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, record := range r.bonuses {
		if record.LeagueID == leagueID {
			delete(r.bonuses, key)
		}
	}
	for id, team := range r.teams {
		if team.LeagueID != leagueID {
			continue
		}
		team.TotalPoints -= team.PassivePoints
		team.PassivePoints = 0
		r.teams[id] = team
	}
	return nil
}

func (r *FantasyRepository) CreditTeamBonus(_ context.Context, record fantasy.TeamBonusRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.teams[record.TeamID]
	if !ok || team.LeagueID != record.LeagueID {
		return false, fmt.Errorf("fantasy team not found: team=%s league=%s", record.TeamID, record.LeagueID)
	}

	key := record.Key()
	if _, exists := r.bonuses[key]; exists {
		return false, nil
	}
	r.bonuses[key] = record

	team.PassivePoints += record.TotalBonus
	team.TotalPoints += record.TotalBonus
	r.teams[team.ID] = team
	return true, nil
}

func (r *FantasyRepository) ListTeamBonusesByLeague(_ context.Context, leagueID string) ([]fantasy.TeamBonusRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fantasy.TeamBonusRecord, 0)
	for _, record := range r.bonuses {
		if record.LeagueID == leagueID {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out, nil
}

func (r *FantasyRepository) SaveStandings(_ context.Context, leagueID string, teams []fantasy.Team, entries []fantasy.SquadEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, team := range teams {
		current, ok := r.teams[team.ID]
		if !ok || current.LeagueID != leagueID {
			return fmt.Errorf("fantasy team not found: team=%s league=%s", team.ID, leagueID)
		}
		r.teams[team.ID] = team
	}

	totals := make(map[string]int, len(entries))
	for _, entry := range entries {
		totals[entry.TeamID+"|"+entry.PlayerID] = entry.TotalPoints
	}
	for idx, entry := range r.entries {
		if total, ok := totals[entry.TeamID+"|"+entry.PlayerID]; ok {
			r.entries[idx].TotalPoints = total
		}
	}
	return nil
}

func (r *FantasyRepository) teamsByLeagueLocked(leagueID string) []fantasy.Team {
	out := make([]fantasy.Team, 0)
	for _, team := range r.teams {
		if team.LeagueID == leagueID {
			out = append(out, team)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			if out[i].Rank == 0 || out[j].Rank == 0 {
				return out[j].Rank == 0
			}
			return out[i].Rank < out[j].Rank
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *FantasyRepository) teamInLeagueLocked(teamID, leagueID string) bool {
	team, ok := r.teams[teamID]
	return ok && team.LeagueID == leagueID
}
