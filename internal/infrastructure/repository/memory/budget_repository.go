package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/league-scoring/internal/domain/budget"
)

type BudgetRepository struct {
	mu           sync.RWMutex
	budgets      map[string]budget.TeamSeasonBudget
	transactions []budget.SalaryTransaction
}

func NewBudgetRepository(budgets []budget.TeamSeasonBudget) *BudgetRepository {
	items := make(map[string]budget.TeamSeasonBudget, len(budgets))
	for _, item := range budgets {
		items[item.Key()] = item
	}
	return &BudgetRepository{budgets: items}
}

func (r *BudgetRepository) GetTeamSeason(_ context.Context, teamID, seasonID string) (budget.TeamSeasonBudget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.budgets[budget.Key(teamID, seasonID)]
	if !ok {
		return budget.TeamSeasonBudget{}, fmt.Errorf("%w: team=%s season=%s", budget.ErrTeamSeasonNotFound, teamID, seasonID)
	}
	return item, nil
}

func (r *BudgetRepository) ApplyDeduction(_ context.Context, updated budget.TeamSeasonBudget, expectedVersion int64, tx budget.SalaryTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := updated.Key()
	current, ok := r.budgets[key]
	if !ok {
		return fmt.Errorf("%w: team=%s season=%s", budget.ErrTeamSeasonNotFound, updated.TeamID, updated.SeasonID)
	}
	if tx.Type == budget.TransactionTypeSalary && r.hasSalaryLocked(tx.FixtureID, tx.PlayerID) {
		return fmt.Errorf("%w: fixture=%s player=%s", budget.ErrDuplicateSalary, tx.FixtureID, tx.PlayerID)
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("%w: key=%s expected=%d actual=%d", budget.ErrVersionConflict, key, expectedVersion, current.Version)
	}

	updated.Version = expectedVersion + 1
	r.budgets[key] = updated
	r.transactions = append(r.transactions, cloneTransaction(tx))
	return nil
}

func (r *BudgetRepository) HasSalaryTransactionForFixture(_ context.Context, fixtureID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tx := range r.transactions {
		if tx.Type == budget.TransactionTypeSalary && tx.FixtureID == fixtureID {
			return true, nil
		}
	}
	return false, nil
}

func (r *BudgetRepository) ListSalaryTransactionsByFixture(_ context.Context, fixtureID string) ([]budget.SalaryTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]budget.SalaryTransaction, 0)
	for _, tx := range r.transactions {
		if tx.FixtureID == fixtureID {
			out = append(out, cloneTransaction(tx))
		}
	}
	return out, nil
}

func (r *BudgetRepository) hasSalaryLocked(fixtureID, playerID string) bool {
	for _, item := range r.transactions {
		if item.Type == budget.TransactionTypeSalary && item.FixtureID == fixtureID && item.PlayerID == playerID {
			return true
		}
	}
	return false
}

func cloneTransaction(tx budget.SalaryTransaction) budget.SalaryTransaction {
	copied := tx
	if tx.Metadata != nil {
		copied.Metadata = make(map[string]string, len(tx.Metadata))
		for k, v := range tx.Metadata {
			copied.Metadata[k] = v
		}
	}
	return copied
}
