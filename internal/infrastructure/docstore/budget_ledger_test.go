package docstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/league-scoring/internal/domain/budget"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsFirestoreFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "version conflict", err: fmt.Errorf("wrap: %w", budget.ErrVersionConflict), want: false},
		{name: "missing budget", err: budget.ErrTeamSeasonNotFound, want: false},
		{name: "duplicate salary", err: budget.ErrDuplicateSalary, want: false},
		{name: "unavailable", err: status.Error(codes.Unavailable, "backend down"), want: true},
		{name: "deadline", err: status.Error(codes.DeadlineExceeded, "slow"), want: true},
		{name: "permission denied", err: status.Error(codes.PermissionDenied, "nope"), want: false},
		{name: "context canceled", err: context.Canceled, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isFirestoreFailure(tc.err))
		})
	}
}

func TestBudgetDocumentMapping(t *testing.T) {
	updatedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	item := budget.TeamSeasonBudget{
		TeamID:           "persija",
		SeasonID:         "season-2026",
		DualCurrency:     true,
		RealPlayerBudget: decimal.RequireFromString("-12.50"),
		RealPlayerSpent:  decimal.RequireFromString("512.50"),
		FootballBudget:   decimal.RequireFromString("1000"),
		Version:          7,
		UpdatedAt:        updatedAt,
	}

	doc := budgetToDocument(item)
	assert.Equal(t, "-12.5", doc.RealPlayerBudget)
	assert.Equal(t, "0", doc.Budget)

	got, err := budgetFromDocument(doc)
	require.NoError(t, err)
	assert.True(t, got.RealPlayerBudget.Equal(item.RealPlayerBudget))
	assert.True(t, got.FootballBudget.Equal(item.FootballBudget))
	assert.Equal(t, int64(7), got.Version)
	assert.Equal(t, "persija_season-2026", got.Key())

	doc.Spent = "not-a-number"
	_, err = budgetFromDocument(doc)
	require.Error(t, err)
}

func TestBudgetFromDocument_EmptyAmountsAreZero(t *testing.T) {
	got, err := budgetFromDocument(budgetDocument{TeamID: "baliutd", SeasonID: "season-2026"})
	require.NoError(t, err)
	assert.True(t, got.Budget.IsZero())
	assert.True(t, got.RealPlayerSpent.IsZero())
}

func TestTransactionDocID(t *testing.T) {
	salary := budget.SalaryTransaction{ID: "tx-1", Type: budget.TransactionTypeSalary, FixtureID: "fx-001", PlayerID: "p-10"}
	assert.Equal(t, "salary_fx-001_p-10", transactionDocID(salary))

	adjustment := budget.SalaryTransaction{ID: "tx-2", Type: budget.TransactionTypeAdjustment, FixtureID: "fx-001", PlayerID: "p-10"}
	assert.Equal(t, "tx-2", transactionDocID(adjustment))
}

func TestTransactionDocument_DefaultsCreatedAt(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	doc := transactionToDocument(budget.SalaryTransaction{
		ID:       "tx-1",
		Type:     budget.TransactionTypeSalary,
		Amount:   decimal.RequireFromString("23.33"),
		Currency: budget.CurrencyLegacy,
	}, now)
	assert.Equal(t, now, doc.CreatedAt)

	got, err := transactionFromDocument(doc)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("23.33")))
	assert.Equal(t, budget.CurrencyLegacy, got.Currency)
}
