package fantasy

import (
	"strings"
	"time"
)

// League is a fantasy competition scored against one real season.
type League struct {
	ID       string
	SeasonID string
	Name     string
}

// Team is a fantasy team with its cached standing.
type Team struct {
	ID              string
	LeagueID        string
	Name            string
	SupportedTeamID string
	PlayerPoints    int
	PassivePoints   int
	TotalPoints     int
	Rank            int
	UpdatedAt       time.Time
}

// SupportedTeamKey scopes a real team id to a fantasy league.
func SupportedTeamKey(realTeamID, leagueID string) string {
	return strings.TrimSpace(realTeamID) + "_" + strings.TrimSpace(leagueID)
}

// Supports reports whether the team backs realTeamID. SupportedTeamID is
// either the bare real team id or SupportedTeamKey(realTeamID, t.LeagueID).
func (t Team) Supports(realTeamID string) bool {
	realTeamID = strings.TrimSpace(realTeamID)
	if realTeamID == "" {
		return false
	}
	supported := strings.TrimSpace(t.SupportedTeamID)
	if supported == realTeamID {
		return true
	}
	return strings.TrimSpace(t.LeagueID) != "" && supported == SupportedTeamKey(realTeamID, t.LeagueID)
}

// SquadEntry is one real player drafted into a fantasy team.
type SquadEntry struct {
	TeamID        string
	PlayerID      string
	PlayerName    string
	IsCaptain     bool
	IsViceCaptain bool
	TotalPoints   int
}

type MatchResult string

const (
	ResultWin  MatchResult = "win"
	ResultDraw MatchResult = "draw"
	ResultLoss MatchResult = "loss"
)

func ResultFor(goalsFor, goalsAgainst int) MatchResult {
	switch {
	case goalsFor > goalsAgainst:
		return ResultWin
	case goalsFor == goalsAgainst:
		return ResultDraw
	default:
		return ResultLoss
	}
}

// PlayerPointsRecord is one player's contribution to one fantasy team for
// one fixture. Multiplier is a percentage: 100, 150 or 200.
type PlayerPointsRecord struct {
	TeamID      string
	PlayerID    string
	FixtureID   string
	Round       int
	Goals       int
	Concedes    int
	CleanSheet  bool
	MOTM        bool
	Result      MatchResult
	BasePoints  int
	Multiplier  int
	TotalPoints int
	CreatedAt   time.Time
}

func (r PlayerPointsRecord) Key() string {
	return r.TeamID + "|" + r.PlayerID + "|" + r.FixtureID
}

// TeamBonusRecord credits passive points to a fantasy team for a fixture
// played by the real team it supports.
type TeamBonusRecord struct {
	ID         string
	LeagueID   string
	TeamID     string
	RealTeamID string
	FixtureID  string
	Round      int
	Breakdown  BonusBreakdown
	TotalBonus int
	CreatedAt  time.Time
}

func (r TeamBonusRecord) Key() string {
	return r.LeagueID + "|" + r.TeamID + "|" + r.FixtureID
}

type BonusBreakdown struct {
	GoalsFor     int         `json:"goals_for"`
	GoalsAgainst int         `json:"goals_against"`
	Result       MatchResult `json:"result"`
	Rules        []FiredRule `json:"rules"`
	Ignored      []string    `json:"ignored,omitempty"`
}

type FiredRule struct {
	RuleType string `json:"rule_type"`
	Points   int    `json:"points"`
}

type GrantTarget string

const (
	GrantTargetPlayer GrantTarget = "player"
	GrantTargetTeam   GrantTarget = "team"
)

// BonusGrant is an admin-entered adjustment. For team grants TargetID is the
// fantasy team's SupportedTeamID; for player grants it is the real player id.
type BonusGrant struct {
	ID         string
	TargetType GrantTarget
	TargetID   string
	LeagueID   string
	Points     int
	Reason     string
}
