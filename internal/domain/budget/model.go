package budget

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrTeamSeasonNotFound = errors.New("team season budget not found")
	ErrVersionConflict    = errors.New("team season budget version conflict")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrDuplicateSalary    = errors.New("salary already recorded for fixture")
)

type Currency string

const (
	CurrencyRealPlayer Currency = "real_player"
	CurrencyFootball   Currency = "football"
	CurrencyLegacy     Currency = "legacy"
)

const (
	TransactionTypeSalary     = "salary"
	TransactionTypeAdjustment = "adjustment"
)

// TeamSeasonBudget holds one team's money for one season. Dual-currency rows
// keep real-player and football budgets apart; legacy rows only use Budget
// and Spent. Version increments on every write.
type TeamSeasonBudget struct {
	TeamID           string
	SeasonID         string
	DualCurrency     bool
	RealPlayerBudget decimal.Decimal
	RealPlayerSpent  decimal.Decimal
	FootballBudget   decimal.Decimal
	FootballSpent    decimal.Decimal
	Budget           decimal.Decimal
	Spent            decimal.Decimal
	Version          int64
	UpdatedAt        time.Time
}

// Key is the document id {team_id}_{season_id}.
func Key(teamID, seasonID string) string {
	return strings.TrimSpace(teamID) + "_" + strings.TrimSpace(seasonID)
}

func (b TeamSeasonBudget) Key() string {
	return Key(b.TeamID, b.SeasonID)
}

// SalaryCurrency is the account real-player salaries are paid from.
func (b TeamSeasonBudget) SalaryCurrency() Currency {
	if b.DualCurrency {
		return CurrencyRealPlayer
	}
	return CurrencyLegacy
}

// Balance returns the remaining budget and spent amount of one account.
func (b TeamSeasonBudget) Balance(currency Currency) (decimal.Decimal, decimal.Decimal, error) {
	switch currency {
	case CurrencyRealPlayer:
		if !b.DualCurrency {
			return decimal.Zero, decimal.Zero, fmt.Errorf("budget %s has no %s account", b.Key(), currency)
		}
		return b.RealPlayerBudget, b.RealPlayerSpent, nil
	case CurrencyFootball:
		if !b.DualCurrency {
			return decimal.Zero, decimal.Zero, fmt.Errorf("budget %s has no %s account", b.Key(), currency)
		}
		return b.FootballBudget, b.FootballSpent, nil
	case CurrencyLegacy:
		return b.Budget, b.Spent, nil
	default:
		return decimal.Zero, decimal.Zero, fmt.Errorf("unknown currency %q", currency)
	}
}

// Debit moves amount from the account's budget to its spent column. When
// allowOverdraft is false a debit larger than the balance fails with
// ErrInsufficientFunds and b is returned unchanged.
func (b TeamSeasonBudget) Debit(currency Currency, amount decimal.Decimal, allowOverdraft bool) (TeamSeasonBudget, error) {
	if amount.IsNegative() {
		return b, fmt.Errorf("debit amount must be >= 0, got %s", amount)
	}

	balance, spent, err := b.Balance(currency)
	if err != nil {
		return b, err
	}
	if !allowOverdraft && balance.LessThan(amount) {
		return b, &InsufficientFundsError{
			TeamID:    b.TeamID,
			SeasonID:  b.SeasonID,
			Currency:  currency,
			Required:  amount,
			Available: balance,
		}
	}

	newBalance := balance.Sub(amount)
	newSpent := spent.Add(amount)
	switch currency {
	case CurrencyRealPlayer:
		b.RealPlayerBudget, b.RealPlayerSpent = newBalance, newSpent
	case CurrencyFootball:
		b.FootballBudget, b.FootballSpent = newBalance, newSpent
	default:
		b.Budget, b.Spent = newBalance, newSpent
	}
	return b, nil
}

type InsufficientFundsError struct {
	TeamID    string
	SeasonID  string
	Currency  Currency
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: team=%s season=%s currency=%s required=%s available=%s",
		ErrInsufficientFunds, e.TeamID, e.SeasonID, e.Currency, e.Required, e.Available)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// SalaryTransaction is an append-only ledger row.
type SalaryTransaction struct {
	ID            string
	Type          string
	TeamID        string
	SeasonID      string
	PlayerID      string
	FixtureID     string
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Currency      Currency
	Metadata      map[string]string
	CreatedAt     time.Time
}
