package fixture

import "context"

// Repository exposes fixture history reads, matchups included.
type Repository interface {
	GetByID(ctx context.Context, fixtureID string) (Fixture, bool, error)
	ListCompletedBySeason(ctx context.Context, seasonID string) ([]Fixture, error)
}
