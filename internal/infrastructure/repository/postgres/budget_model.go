package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

type teamSeasonBudgetTableModel struct {
	TeamID           string          `db:"team_public_id"`
	SeasonID         string          `db:"season_public_id"`
	DualCurrency     bool            `db:"dual_currency"`
	RealPlayerBudget decimal.Decimal `db:"real_player_budget"`
	RealPlayerSpent  decimal.Decimal `db:"real_player_spent"`
	FootballBudget   decimal.Decimal `db:"football_budget"`
	FootballSpent    decimal.Decimal `db:"football_spent"`
	Budget           decimal.Decimal `db:"budget"`
	Spent            decimal.Decimal `db:"spent"`
	Version          int64           `db:"version"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

type salaryTransactionTableModel struct {
	PublicID      string          `db:"public_id"`
	Type          string          `db:"transaction_type"`
	TeamID        string          `db:"team_public_id"`
	SeasonID      string          `db:"season_public_id"`
	PlayerID      string          `db:"player_public_id"`
	FixtureID     string          `db:"fixture_public_id"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Currency      string          `db:"currency"`
	Metadata      []byte          `db:"metadata"`
	CreatedAt     time.Time       `db:"created_at"`
}

type salaryTransactionInsertModel struct {
	PublicID      string          `db:"public_id"`
	Type          string          `db:"transaction_type"`
	TeamID        string          `db:"team_public_id"`
	SeasonID      string          `db:"season_public_id"`
	PlayerID      string          `db:"player_public_id"`
	FixtureID     string          `db:"fixture_public_id"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	Currency      string          `db:"currency"`
	Metadata      string          `db:"metadata"`
	CreatedAt     time.Time       `db:"created_at"`
}
