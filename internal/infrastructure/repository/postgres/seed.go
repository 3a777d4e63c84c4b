package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-scoring/internal/infrastructure/repository/memory"
	qb "github.com/riskibarqy/league-scoring/internal/platform/querybuilder"
)

// BootstrapSeed loads the development season into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM fantasy_leagues WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count fantasy leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	exec := func(label, query string, args []any, err error) error {
		if err != nil {
			return fmt.Errorf("build seed %s query: %w", label, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed %s: %w", label, err)
		}
		return nil
	}

	for _, p := range memory.SeedPlayerSeasons() {
		query, args, err := qb.InsertModel("player_seasons", playerSeasonInsertModel{
			PlayerID:       p.PlayerID,
			SeasonID:       p.SeasonID,
			Name:           p.Name,
			TeamID:         p.TeamID,
			AuctionValue:   p.AuctionValue,
			StarRating:     p.StarRating,
			Points:         nullableInt(p.Points),
			SalaryPerMatch: p.SalaryPerMatch,
		}, "ON CONFLICT DO NOTHING")
		if err := exec("player season "+p.PlayerID, query, args, err); err != nil {
			return err
		}
	}

	for _, b := range memory.SeedBudgets() {
		query, args, err := qb.InsertModel("team_season_budgets", teamSeasonBudgetTableModel{
			TeamID:           b.TeamID,
			SeasonID:         b.SeasonID,
			DualCurrency:     b.DualCurrency,
			RealPlayerBudget: b.RealPlayerBudget,
			RealPlayerSpent:  b.RealPlayerSpent,
			FootballBudget:   b.FootballBudget,
			FootballSpent:    b.FootballSpent,
			Budget:           b.Budget,
			Spent:            b.Spent,
			Version:          b.Version,
			UpdatedAt:        b.UpdatedAt,
		}, "ON CONFLICT DO NOTHING")
		if err := exec("budget "+b.Key(), query, args, err); err != nil {
			return err
		}
	}

	for _, f := range memory.SeedFixtures() {
		query, args, err := qb.InsertModel("fixtures", fixtureTableModel{
			PublicID:     f.ID,
			SeasonID:     f.SeasonID,
			Round:        f.Round,
			HomeTeamID:   f.HomeTeamID,
			AwayTeamID:   f.AwayTeamID,
			HomeScore:    nullableInt(f.HomeScore),
			AwayScore:    nullableInt(f.AwayScore),
			MOTMPlayerID: nullableString(f.MOTMPlayerID),
			Status:       f.Status,
			KickoffAt:    f.KickoffAt,
		}, "ON CONFLICT DO NOTHING")
		if err := exec("fixture "+f.ID, query, args, err); err != nil {
			return err
		}

		for _, m := range f.Matchups {
			query, args, err := qb.InsertModel("fixture_matchups", fixtureMatchupTableModel{
				FixtureID:    f.ID,
				HomePlayerID: m.HomePlayerID,
				AwayPlayerID: m.AwayPlayerID,
				HomeGoals:    nullableInt(m.HomeGoals),
				AwayGoals:    nullableInt(m.AwayGoals),
			}, "")
			if err := exec("matchup "+f.ID+" "+m.HomePlayerID, query, args, err); err != nil {
				return err
			}
		}
	}

	for _, rule := range memory.SeedScoringRules() {
		query, args, err := qb.InsertModel("scoring_rules", scoringRuleInsertModel{
			PublicID:    rule.ID,
			LeagueID:    rule.LeagueID,
			RuleType:    string(rule.RuleType),
			AppliesTo:   string(rule.AppliesTo),
			PointsValue: rule.PointsValue,
			IsActive:    rule.IsActive,
		}, "")
		if err := exec("scoring rule "+rule.ID, query, args, err); err != nil {
			return err
		}
	}

	snapshot := memory.SeedFantasy()
	for _, l := range snapshot.Leagues {
		query, args, err := qb.InsertModel("fantasy_leagues", fantasyLeagueTableModel{
			PublicID: l.ID,
			SeasonID: l.SeasonID,
			Name:     l.Name,
		}, "")
		if err := exec("fantasy league "+l.ID, query, args, err); err != nil {
			return err
		}
	}
	for _, t := range snapshot.Teams {
		query, args, err := qb.InsertInto("fantasy_teams").
			Columns("public_id", "league_public_id", "name", "supported_team_id").
			Values(t.ID, t.LeagueID, t.Name, t.SupportedTeamID).
			ToSQL()
		if err := exec("fantasy team "+t.ID, query, args, err); err != nil {
			return err
		}
	}
	for _, e := range snapshot.Entries {
		query, args, err := qb.InsertModel("fantasy_squad_entries", fantasySquadEntryTableModel{
			TeamID:        e.TeamID,
			PlayerID:      e.PlayerID,
			PlayerName:    e.PlayerName,
			IsCaptain:     e.IsCaptain,
			IsViceCaptain: e.IsViceCaptain,
		}, "")
		if err := exec("squad entry "+e.TeamID+" "+e.PlayerID, query, args, err); err != nil {
			return err
		}
	}
	for _, g := range snapshot.Grants {
		query, args, err := qb.InsertModel("bonus_point_grants", bonusGrantTableModel{
			PublicID:   g.ID,
			TargetType: string(g.TargetType),
			TargetID:   g.TargetID,
			LeagueID:   g.LeagueID,
			Points:     g.Points,
			Reason:     g.Reason,
		}, "")
		if err := exec("bonus grant "+g.ID, query, args, err); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
