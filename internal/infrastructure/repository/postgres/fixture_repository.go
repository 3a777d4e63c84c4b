package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-scoring/internal/domain/fixture"
	qb "github.com/riskibarqy/league-scoring/internal/platform/querybuilder"
)

type FixtureRepository struct {
	db *sqlx.DB
}

var fixtureSelectColumns = []string{
	"public_id",
	"season_public_id",
	"round",
	"home_team_public_id",
	"away_team_public_id",
	"home_score",
	"away_score",
	"motm_player_public_id",
	"status",
	"kickoff_at",
}

var fixtureMatchupSelectColumns = []string{
	"fixture_public_id",
	"home_player_public_id",
	"away_player_public_id",
	"home_goals",
	"away_goals",
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) GetByID(ctx context.Context, fixtureID string) (fixture.Fixture, bool, error) {
	query, args, err := qb.Select(fixtureSelectColumns...).From("fixtures").
		Where(
			qb.Eq("public_id", fixtureID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return fixture.Fixture{}, false, fmt.Errorf("build select fixture query: %w", err)
	}

	var row fixtureTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("get fixture id=%s: %w", fixtureID, err)
	}

	matchups, err := r.listMatchups(ctx, []string{fixtureID})
	if err != nil {
		return fixture.Fixture{}, false, err
	}

	item := fixtureFromRow(row)
	item.Matchups = matchups[fixtureID]
	return item, true, nil
}

func (r *FixtureRepository) ListCompletedBySeason(ctx context.Context, seasonID string) ([]fixture.Fixture, error) {
	query, args, err := qb.Select(fixtureSelectColumns...).From("fixtures").
		Where(
			qb.Eq("season_public_id", seasonID),
			qb.In("status", stringSliceToAny(fixture.FinishedStatuses)),
			qb.Expr("home_score IS NOT NULL"),
			qb.Expr("away_score IS NOT NULL"),
			qb.IsNull("deleted_at"),
		).
		OrderBy("round", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select completed fixtures query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select completed fixtures season=%s: %w", seasonID, err)
	}
	if len(rows) == 0 {
		return []fixture.Fixture{}, nil
	}

	fixtureIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		fixtureIDs = append(fixtureIDs, row.PublicID)
	}
	matchups, err := r.listMatchups(ctx, fixtureIDs)
	if err != nil {
		return nil, err
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		item := fixtureFromRow(row)
		item.Matchups = matchups[row.PublicID]
		out = append(out, item)
	}
	return out, nil
}

func (r *FixtureRepository) listMatchups(ctx context.Context, fixtureIDs []string) (map[string][]fixture.Matchup, error) {
	query, args, err := qb.Select(fixtureMatchupSelectColumns...).From("fixture_matchups").
		Where(
			qb.In("fixture_public_id", stringSliceToAny(fixtureIDs)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("fixture_public_id", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixture matchups query: %w", err)
	}

	var rows []fixtureMatchupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixture matchups: %w", err)
	}

	out := make(map[string][]fixture.Matchup, len(fixtureIDs))
	for _, row := range rows {
		out[row.FixtureID] = append(out[row.FixtureID], fixture.Matchup{
			HomePlayerID: row.HomePlayerID,
			AwayPlayerID: row.AwayPlayerID,
			HomeGoals:    nullIntPtr(row.HomeGoals),
			AwayGoals:    nullIntPtr(row.AwayGoals),
		})
	}
	return out, nil
}

func fixtureFromRow(row fixtureTableModel) fixture.Fixture {
	return fixture.Fixture{
		ID:           row.PublicID,
		SeasonID:     row.SeasonID,
		Round:        row.Round,
		HomeTeamID:   row.HomeTeamID,
		AwayTeamID:   row.AwayTeamID,
		HomeScore:    nullIntPtr(row.HomeScore),
		AwayScore:    nullIntPtr(row.AwayScore),
		MOTMPlayerID: row.MOTMPlayerID.String,
		Status:       fixture.NormalizeStatus(row.Status),
		KickoffAt:    row.KickoffAt,
	}
}

func stringSliceToAny(items []string) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
