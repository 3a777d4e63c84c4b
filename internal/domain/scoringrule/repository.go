package scoringrule

import "context"

// Repository reads scoring rule configuration.
type Repository interface {
	ListByLeague(ctx context.Context, leagueID string) ([]Rule, error)
}
