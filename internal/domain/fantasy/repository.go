package fantasy

import "context"

// Repository covers fantasy league state read and rebuilt by the scoring engines.
type Repository interface {
	ListLeagues(ctx context.Context) ([]League, error)
	GetLeague(ctx context.Context, leagueID string) (League, bool, error)
	ListTeamsByLeague(ctx context.Context, leagueID string) ([]Team, error)
	ListSquadEntriesByLeague(ctx context.Context, leagueID string) ([]SquadEntry, error)
	ListBonusGrantsByLeague(ctx context.Context, leagueID string) ([]BonusGrant, error)

	DeletePlayerPointsByLeague(ctx context.Context, leagueID string) error
	// InsertPlayerPoints skips records whose (team, player, fixture) already exists
	// and returns how many rows were written.
	InsertPlayerPoints(ctx context.Context, records []PlayerPointsRecord) (int, error)
	ListPlayerPointsByLeague(ctx context.Context, leagueID string) ([]PlayerPointsRecord, error)

	// ResetTeamBonuses deletes the league's bonus records and zeroes passive points.
	ResetTeamBonuses(ctx context.Context, leagueID string) error
	// CreditTeamBonus inserts the record and adds TotalBonus to the team's passive
	// and total points. It reports false when the (league, team, fixture) was
	// already credited.
	CreditTeamBonus(ctx context.Context, record TeamBonusRecord) (bool, error)
	ListTeamBonusesByLeague(ctx context.Context, leagueID string) ([]TeamBonusRecord, error)

	// SaveStandings overwrites cached squad totals and team standings.
	SaveStandings(ctx context.Context, leagueID string, teams []Team, entries []SquadEntry) error
}
