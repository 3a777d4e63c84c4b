package postgres

import (
	"database/sql"
	"time"
)

type fixtureTableModel struct {
	PublicID     string         `db:"public_id"`
	SeasonID     string         `db:"season_public_id"`
	Round        int            `db:"round"`
	HomeTeamID   string         `db:"home_team_public_id"`
	AwayTeamID   string         `db:"away_team_public_id"`
	HomeScore    sql.NullInt64  `db:"home_score"`
	AwayScore    sql.NullInt64  `db:"away_score"`
	MOTMPlayerID sql.NullString `db:"motm_player_public_id"`
	Status       string         `db:"status"`
	KickoffAt    time.Time      `db:"kickoff_at"`
}

type fixtureMatchupTableModel struct {
	FixtureID    string        `db:"fixture_public_id"`
	HomePlayerID string        `db:"home_player_public_id"`
	AwayPlayerID string        `db:"away_player_public_id"`
	HomeGoals    sql.NullInt64 `db:"home_goals"`
	AwayGoals    sql.NullInt64 `db:"away_goals"`
}
