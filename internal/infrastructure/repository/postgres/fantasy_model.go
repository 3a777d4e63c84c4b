package postgres

import "time"

type fantasyLeagueTableModel struct {
	PublicID string `db:"public_id"`
	SeasonID string `db:"season_public_id"`
	Name     string `db:"name"`
}

type fantasyTeamTableModel struct {
	PublicID        string    `db:"public_id"`
	LeagueID        string    `db:"league_public_id"`
	Name            string    `db:"name"`
	SupportedTeamID string    `db:"supported_team_id"`
	PlayerPoints    int       `db:"player_points"`
	PassivePoints   int       `db:"passive_points"`
	TotalPoints     int       `db:"total_points"`
	Rank            int       `db:"rank"`
	UpdatedAt       time.Time `db:"updated_at"`
}

type fantasySquadEntryTableModel struct {
	TeamID        string `db:"team_public_id"`
	PlayerID      string `db:"player_public_id"`
	PlayerName    string `db:"player_name"`
	IsCaptain     bool   `db:"is_captain"`
	IsViceCaptain bool   `db:"is_vice_captain"`
	TotalPoints   int    `db:"total_points"`
}

type bonusGrantTableModel struct {
	PublicID   string `db:"public_id"`
	TargetType string `db:"target_type"`
	TargetID   string `db:"target_id"`
	LeagueID   string `db:"league_public_id"`
	Points     int    `db:"points"`
	Reason     string `db:"reason"`
}

type fantasyPlayerPointsTableModel struct {
	TeamID      string    `db:"team_public_id"`
	PlayerID    string    `db:"player_public_id"`
	FixtureID   string    `db:"fixture_public_id"`
	Round       int       `db:"round"`
	Goals       int       `db:"goals"`
	Concedes    int       `db:"concedes"`
	CleanSheet  bool      `db:"clean_sheet"`
	MOTM        bool      `db:"motm"`
	Result      string    `db:"result"`
	BasePoints  int       `db:"base_points"`
	Multiplier  int       `db:"points_multiplier"`
	TotalPoints int       `db:"total_points"`
	CreatedAt   time.Time `db:"created_at"`
}

type fantasyTeamBonusTableModel struct {
	PublicID   string    `db:"public_id"`
	LeagueID   string    `db:"league_public_id"`
	TeamID     string    `db:"team_public_id"`
	RealTeamID string    `db:"real_team_public_id"`
	FixtureID  string    `db:"fixture_public_id"`
	Round      int       `db:"round"`
	Breakdown  []byte    `db:"breakdown"`
	TotalBonus int       `db:"total_bonus"`
	CreatedAt  time.Time `db:"created_at"`
}

type fantasyTeamBonusInsertModel struct {
	PublicID   string    `db:"public_id"`
	LeagueID   string    `db:"league_public_id"`
	TeamID     string    `db:"team_public_id"`
	RealTeamID string    `db:"real_team_public_id"`
	FixtureID  string    `db:"fixture_public_id"`
	Round      int       `db:"round"`
	Breakdown  string    `db:"breakdown"`
	TotalBonus int       `db:"total_bonus"`
	CreatedAt  time.Time `db:"created_at"`
}
