package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-scoring/internal/domain/scoringrule"
	qb "github.com/riskibarqy/league-scoring/internal/platform/querybuilder"
)

type ScoringRuleRepository struct {
	db *sqlx.DB
}

func NewScoringRuleRepository(db *sqlx.DB) *ScoringRuleRepository {
	return &ScoringRuleRepository{db: db}
}

func (r *ScoringRuleRepository) ListByLeague(ctx context.Context, leagueID string) ([]scoringrule.Rule, error) {
	query, args, err := qb.Select("public_id", "league_public_id", "rule_type", "applies_to", "points_value", "is_active").
		From("scoring_rules").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select scoring rules query: %w", err)
	}

	var rows []scoringRuleTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select scoring rules league=%s: %w", leagueID, err)
	}

	out := make([]scoringrule.Rule, 0, len(rows))
	for _, row := range rows {
		out = append(out, scoringrule.Rule{
			ID:          row.PublicID,
			LeagueID:    row.LeagueID,
			RuleType:    scoringrule.NormalizeRuleType(row.RuleType),
			AppliesTo:   scoringrule.Target(row.AppliesTo),
			PointsValue: row.PointsValue,
			IsActive:    row.IsActive,
		})
	}
	return out, nil
}
