package fantasy

import (
	"sort"
	"strings"
)

// RankTeams orders teams by total points desc, then name asc, then id, and
// assigns ranks 1..N with no gaps or ties. The input slice is not modified.
// Names compare case-insensitively, so "alpha" sorts before "Bravo".
func RankTeams(teams []Team) []Team {
	out := make([]Team, len(teams))
	copy(out, teams)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		left, right := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if left != right {
			return left < right
		}
		return out[i].ID < out[j].ID
	})

	for idx := range out {
		out[idx].Rank = idx + 1
	}
	return out
}

// AggregateInput is everything one league's standings are derived from.
type AggregateInput struct {
	Teams        []Team
	Entries      []SquadEntry
	PlayerPoints []PlayerPointsRecord
	TeamBonuses  []TeamBonusRecord
	Grants       []BonusGrant
}

// Aggregate recomputes squad entry totals and team points from scratch.
// Team passive points are the rule-driven bonuses plus team grants keyed by
// the supported team id. Returned teams are ranked.
func Aggregate(leagueID string, in AggregateInput) ([]Team, []SquadEntry) {
	pointsByEntry := make(map[string]int)
	pointsByTeam := make(map[string]int)
	for _, record := range in.PlayerPoints {
		pointsByEntry[record.TeamID+"|"+record.PlayerID] += record.TotalPoints
		pointsByTeam[record.TeamID] += record.TotalPoints
	}

	bonusByTeam := make(map[string]int)
	for _, record := range in.TeamBonuses {
		if record.LeagueID != leagueID {
			continue
		}
		bonusByTeam[record.TeamID] += record.TotalBonus
	}

	playerGrants := make(map[string]int)
	teamGrants := make(map[string]int)
	for _, grant := range in.Grants {
		if grant.LeagueID != leagueID {
			continue
		}
		switch grant.TargetType {
		case GrantTargetPlayer:
			playerGrants[grant.TargetID] += grant.Points
		case GrantTargetTeam:
			teamGrants[grant.TargetID] += grant.Points
		}
	}

	entries := make([]SquadEntry, 0, len(in.Entries))
	for _, entry := range in.Entries {
		entry.TotalPoints = pointsByEntry[entry.TeamID+"|"+entry.PlayerID] + playerGrants[entry.PlayerID]
		entries = append(entries, entry)
	}

	teams := make([]Team, 0, len(in.Teams))
	for _, team := range in.Teams {
		team.PlayerPoints = pointsByTeam[team.ID]
		team.PassivePoints = bonusByTeam[team.ID]
		if team.SupportedTeamID != "" {
			team.PassivePoints += teamGrants[team.SupportedTeamID]
		}
		team.TotalPoints = team.PlayerPoints + team.PassivePoints
		teams = append(teams, team)
	}

	return RankTeams(teams), entries
}
