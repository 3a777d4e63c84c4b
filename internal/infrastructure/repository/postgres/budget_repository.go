package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-scoring/internal/domain/budget"
	qb "github.com/riskibarqy/league-scoring/internal/platform/querybuilder"
)

type BudgetRepository struct {
	db *sqlx.DB
}

var teamSeasonBudgetSelectColumns = []string{
	"team_public_id",
	"season_public_id",
	"dual_currency",
	"real_player_budget",
	"real_player_spent",
	"football_budget",
	"football_spent",
	"budget",
	"spent",
	"version",
	"updated_at",
}

var salaryTransactionSelectColumns = []string{
	"public_id",
	"transaction_type",
	"team_public_id",
	"season_public_id",
	"player_public_id",
	"fixture_public_id",
	"amount",
	"balance_before",
	"balance_after",
	"currency",
	"metadata",
	"created_at",
}

func NewBudgetRepository(db *sqlx.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) GetTeamSeason(ctx context.Context, teamID, seasonID string) (budget.TeamSeasonBudget, error) {
	query, args, err := qb.Select(teamSeasonBudgetSelectColumns...).From("team_season_budgets").
		Where(
			qb.Eq("team_public_id", teamID),
			qb.Eq("season_public_id", seasonID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return budget.TeamSeasonBudget{}, fmt.Errorf("build select team season budget query: %w", err)
	}

	var row teamSeasonBudgetTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return budget.TeamSeasonBudget{}, fmt.Errorf("%w: team=%s season=%s", budget.ErrTeamSeasonNotFound, teamID, seasonID)
		}
		return budget.TeamSeasonBudget{}, fmt.Errorf("get team season budget team=%s season=%s: %w", teamID, seasonID, err)
	}

	return budget.TeamSeasonBudget{
		TeamID:           row.TeamID,
		SeasonID:         row.SeasonID,
		DualCurrency:     row.DualCurrency,
		RealPlayerBudget: row.RealPlayerBudget,
		RealPlayerSpent:  row.RealPlayerSpent,
		FootballBudget:   row.FootballBudget,
		FootballSpent:    row.FootballSpent,
		Budget:           row.Budget,
		Spent:            row.Spent,
		Version:          row.Version,
		UpdatedAt:        row.UpdatedAt,
	}, nil
}

// ApplyDeduction writes the budget and its ledger row in one transaction. The
// budget update only matches the row still at expectedVersion.
func (r *BudgetRepository) ApplyDeduction(ctx context.Context, updated budget.TeamSeasonBudget, expectedVersion int64, item budget.SalaryTransaction) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for budget deduction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	query, args, err := qb.Update("team_season_budgets").
		Set("real_player_budget", updated.RealPlayerBudget).
		Set("real_player_spent", updated.RealPlayerSpent).
		Set("football_budget", updated.FootballBudget).
		Set("football_spent", updated.FootballSpent).
		Set("budget", updated.Budget).
		Set("spent", updated.Spent).
		SetExpr("version", "version + 1").
		Set("updated_at", now).
		Where(
			qb.Eq("team_public_id", updated.TeamID),
			qb.Eq("season_public_id", updated.SeasonID),
			qb.Eq("version", expectedVersion),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team season budget query: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update team season budget key=%s: %w", updated.Key(), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows for budget update: %w", err)
	}
	if affected == 0 {
		return r.classifyMissedUpdate(ctx, tx, updated, expectedVersion)
	}

	model, err := salaryTransactionToInsertModel(item, now)
	if err != nil {
		return err
	}
	insertQuery, insertArgs, err := qb.InsertModel("salary_transactions", model, "")
	if err != nil {
		return fmt.Errorf("build insert salary transaction query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: fixture=%s player=%s", budget.ErrDuplicateSalary, item.FixtureID, item.PlayerID)
		}
		return fmt.Errorf("insert salary transaction id=%s: %w", item.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budget deduction: %w", err)
	}
	return nil
}

func (r *BudgetRepository) classifyMissedUpdate(ctx context.Context, tx *sqlx.Tx, updated budget.TeamSeasonBudget, expectedVersion int64) error {
	query, args, err := qb.Select("version").From("team_season_budgets").
		Where(
			qb.Eq("team_public_id", updated.TeamID),
			qb.Eq("season_public_id", updated.SeasonID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build select budget version query: %w", err)
	}

	var version int64
	if err := tx.GetContext(ctx, &version, query, args...); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: team=%s season=%s", budget.ErrTeamSeasonNotFound, updated.TeamID, updated.SeasonID)
		}
		return fmt.Errorf("select budget version key=%s: %w", updated.Key(), err)
	}
	return fmt.Errorf("%w: key=%s expected=%d actual=%d", budget.ErrVersionConflict, updated.Key(), expectedVersion, version)
}

func (r *BudgetRepository) HasSalaryTransactionForFixture(ctx context.Context, fixtureID string) (bool, error) {
	const existsQuery = `
SELECT EXISTS (
    SELECT 1
    FROM salary_transactions
    WHERE fixture_public_id = $1
      AND transaction_type = $2
)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, existsQuery, fixtureID, budget.TransactionTypeSalary); err != nil {
		return false, fmt.Errorf("check salary transactions fixture=%s: %w", fixtureID, err)
	}
	return exists, nil
}

func (r *BudgetRepository) ListSalaryTransactionsByFixture(ctx context.Context, fixtureID string) ([]budget.SalaryTransaction, error) {
	query, args, err := qb.Select(salaryTransactionSelectColumns...).From("salary_transactions").
		Where(qb.Eq("fixture_public_id", fixtureID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select salary transactions query: %w", err)
	}

	var rows []salaryTransactionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select salary transactions fixture=%s: %w", fixtureID, err)
	}

	out := make([]budget.SalaryTransaction, 0, len(rows))
	for _, row := range rows {
		metadata := map[string]string{}
		if err := decodeJSON(row.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("decode salary transaction metadata id=%s: %w", row.PublicID, err)
		}
		out = append(out, budget.SalaryTransaction{
			ID:            row.PublicID,
			Type:          row.Type,
			TeamID:        row.TeamID,
			SeasonID:      row.SeasonID,
			PlayerID:      row.PlayerID,
			FixtureID:     row.FixtureID,
			Amount:        row.Amount,
			BalanceBefore: row.BalanceBefore,
			BalanceAfter:  row.BalanceAfter,
			Currency:      budget.Currency(row.Currency),
			Metadata:      metadata,
			CreatedAt:     row.CreatedAt,
		})
	}
	return out, nil
}

func salaryTransactionToInsertModel(item budget.SalaryTransaction, now time.Time) (salaryTransactionInsertModel, error) {
	metadata := item.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := encodeJSON(metadata)
	if err != nil {
		return salaryTransactionInsertModel{}, fmt.Errorf("encode salary transaction metadata: %w", err)
	}

	createdAt := item.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = now
	}

	return salaryTransactionInsertModel{
		PublicID:      item.ID,
		Type:          item.Type,
		TeamID:        item.TeamID,
		SeasonID:      item.SeasonID,
		PlayerID:      item.PlayerID,
		FixtureID:     item.FixtureID,
		Amount:        item.Amount,
		BalanceBefore: item.BalanceBefore,
		BalanceAfter:  item.BalanceAfter,
		Currency:      string(item.Currency),
		Metadata:      metadataJSON,
		CreatedAt:     createdAt,
	}, nil
}
