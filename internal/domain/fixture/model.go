package fixture

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
)

// Fixture is one real-world match between two teams, made of player matchups.
type Fixture struct {
	ID           string
	SeasonID     string
	Round        int
	HomeTeamID   string
	AwayTeamID   string
	HomeScore    *int
	AwayScore    *int
	MOTMPlayerID string
	Status       string
	KickoffAt    time.Time
	Matchups     []Matchup
}

// Matchup is one player-vs-player contest inside a fixture.
type Matchup struct {
	HomePlayerID string
	AwayPlayerID string
	HomeGoals    *int
	AwayGoals    *int
}

// Completed reports whether the fixture is finished with both team scores.
func (f Fixture) Completed() bool {
	return IsFinishedStatus(f.Status) && f.HomeScore != nil && f.AwayScore != nil
}

// HasGoals reports whether both goal tallies are recorded.
func (m Matchup) HasGoals() bool {
	return m.HomeGoals != nil && m.AwayGoals != nil
}

// Side is one participant's view of a matchup or fixture.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Score returns goals for and against from the given side. ok is false when
// either tally is missing.
func Score(side Side, home, away *int) (goalsFor, goalsAgainst int, ok bool) {
	if home == nil || away == nil {
		return 0, 0, false
	}
	if side == SideAway {
		return *away, *home, true
	}
	return *home, *away, true
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

// FinishedStatuses lists every provider status that means full time.
var FinishedStatuses = []string{StatusFinished, "FT", "AET", "PEN"}

func IsFinishedStatus(status string) bool {
	normalized := NormalizeStatus(status)
	for _, finished := range FinishedStatuses {
		if normalized == finished {
			return true
		}
	}
	return false
}
