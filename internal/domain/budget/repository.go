package budget

import "context"

// Repository is the budget ledger. ApplyDeduction must persist the budget
// and append tx together, and only when the stored version still equals
// expectedVersion; otherwise it returns ErrVersionConflict.
type Repository interface {
	GetTeamSeason(ctx context.Context, teamID, seasonID string) (TeamSeasonBudget, error)
	ApplyDeduction(ctx context.Context, updated TeamSeasonBudget, expectedVersion int64, tx SalaryTransaction) error
	HasSalaryTransactionForFixture(ctx context.Context, fixtureID string) (bool, error)
	ListSalaryTransactionsByFixture(ctx context.Context, fixtureID string) ([]SalaryTransaction, error)
}
