package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-scoring/internal/domain/fantasy"
	qb "github.com/riskibarqy/league-scoring/internal/platform/querybuilder"
)

const playerPointsInsertBatchSize = 400

type FantasyRepository struct {
	db *sqlx.DB
}

func NewFantasyRepository(db *sqlx.DB) *FantasyRepository {
	return &FantasyRepository{db: db}
}

func (r *FantasyRepository) ListLeagues(ctx context.Context) ([]fantasy.League, error) {
	query, args, err := qb.Select("public_id", "season_public_id", "name").From("fantasy_leagues").
		Where(qb.IsNull("deleted_at")).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fantasy leagues query: %w", err)
	}

	var rows []fantasyLeagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fantasy leagues: %w", err)
	}

	out := make([]fantasy.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, fantasy.League{ID: row.PublicID, SeasonID: row.SeasonID, Name: row.Name})
	}
	return out, nil
}

func (r *FantasyRepository) GetLeague(ctx context.Context, leagueID string) (fantasy.League, bool, error) {
	query, args, err := qb.Select("public_id", "season_public_id", "name").From("fantasy_leagues").
		Where(
			qb.Eq("public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return fantasy.League{}, false, fmt.Errorf("build select fantasy league query: %w", err)
	}

	var row fantasyLeagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fantasy.League{}, false, nil
		}
		return fantasy.League{}, false, fmt.Errorf("get fantasy league id=%s: %w", leagueID, err)
	}
	return fantasy.League{ID: row.PublicID, SeasonID: row.SeasonID, Name: row.Name}, true, nil
}

func (r *FantasyRepository) ListTeamsByLeague(ctx context.Context, leagueID string) ([]fantasy.Team, error) {
	query, args, err := qb.Select(
		"public_id",
		"league_public_id",
		"name",
		"supported_team_id",
		"player_points",
		"passive_points",
		"total_points",
		"rank",
		"updated_at",
	).From("fantasy_teams").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("CASE WHEN rank = 0 THEN 1 ELSE 0 END", "rank", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fantasy teams query: %w", err)
	}

	var rows []fantasyTeamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fantasy teams league=%s: %w", leagueID, err)
	}

	out := make([]fantasy.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, fantasy.Team{
			ID:              row.PublicID,
			LeagueID:        row.LeagueID,
			Name:            row.Name,
			SupportedTeamID: row.SupportedTeamID,
			PlayerPoints:    row.PlayerPoints,
			PassivePoints:   row.PassivePoints,
			TotalPoints:     row.TotalPoints,
			Rank:            row.Rank,
			UpdatedAt:       row.UpdatedAt,
		})
	}
	return out, nil
}

func (r *FantasyRepository) ListSquadEntriesByLeague(ctx context.Context, leagueID string) ([]fantasy.SquadEntry, error) {
	const entriesQuery = `
SELECT e.team_public_id, e.player_public_id, e.player_name, e.is_captain, e.is_vice_captain, e.total_points
FROM fantasy_squad_entries e
JOIN fantasy_teams t ON t.public_id = e.team_public_id AND t.deleted_at IS NULL
WHERE t.league_public_id = $1
  AND e.deleted_at IS NULL
ORDER BY e.team_public_id, e.id`

	var rows []fantasySquadEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, entriesQuery, leagueID); err != nil {
		return nil, fmt.Errorf("select fantasy squad entries league=%s: %w", leagueID, err)
	}

	out := make([]fantasy.SquadEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, fantasy.SquadEntry{
			TeamID:        row.TeamID,
			PlayerID:      row.PlayerID,
			PlayerName:    row.PlayerName,
			IsCaptain:     row.IsCaptain,
			IsViceCaptain: row.IsViceCaptain,
			TotalPoints:   row.TotalPoints,
		})
	}
	return out, nil
}

func (r *FantasyRepository) ListBonusGrantsByLeague(ctx context.Context, leagueID string) ([]fantasy.BonusGrant, error) {
	query, args, err := qb.Select("public_id", "target_type", "target_id", "league_public_id", "points", "reason").
		From("bonus_point_grants").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select bonus grants query: %w", err)
	}

	var rows []bonusGrantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select bonus grants league=%s: %w", leagueID, err)
	}

	out := make([]fantasy.BonusGrant, 0, len(rows))
	for _, row := range rows {
		out = append(out, fantasy.BonusGrant{
			ID:         row.PublicID,
			TargetType: fantasy.GrantTarget(row.TargetType),
			TargetID:   row.TargetID,
			LeagueID:   row.LeagueID,
			Points:     row.Points,
			Reason:     row.Reason,
		})
	}
	return out, nil
}

func (r *FantasyRepository) DeletePlayerPointsByLeague(ctx context.Context, leagueID string) error {
	query, args, err := qb.DeleteFrom("fantasy_player_points").
		Where(qb.Expr("team_public_id IN (SELECT public_id FROM fantasy_teams WHERE league_public_id = ?)", leagueID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete fantasy player points query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete fantasy player points league=%s: %w", leagueID, err)
	}
	return nil
}

func (r *FantasyRepository) InsertPlayerPoints(ctx context.Context, records []fantasy.PlayerPointsRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	inserted := 0
	for start := 0; start < len(records); start += playerPointsInsertBatchSize {
		end := min(start+playerPointsInsertBatchSize, len(records))

		models := make([]fantasyPlayerPointsTableModel, 0, end-start)
		for _, record := range records[start:end] {
			createdAt := record.CreatedAt.UTC()
			if createdAt.IsZero() {
				createdAt = now
			}
			models = append(models, fantasyPlayerPointsTableModel{
				TeamID:      record.TeamID,
				PlayerID:    record.PlayerID,
				FixtureID:   record.FixtureID,
				Round:       record.Round,
				Goals:       record.Goals,
				Concedes:    record.Concedes,
				CleanSheet:  record.CleanSheet,
				MOTM:        record.MOTM,
				Result:      string(record.Result),
				BasePoints:  record.BasePoints,
				Multiplier:  record.Multiplier,
				TotalPoints: record.TotalPoints,
				CreatedAt:   createdAt,
			})
		}

		query, args, err := qb.InsertModels("fantasy_player_points", models,
			"ON CONFLICT (team_public_id, player_public_id, fixture_public_id) DO NOTHING")
		if err != nil {
			return inserted, fmt.Errorf("build insert fantasy player points query: %w", err)
		}
		result, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("insert fantasy player points: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("read affected rows for fantasy player points: %w", err)
		}
		inserted += int(affected)
	}
	return inserted, nil
}

func (r *FantasyRepository) ListPlayerPointsByLeague(ctx context.Context, leagueID string) ([]fantasy.PlayerPointsRecord, error) {
	const pointsQuery = `
SELECT p.team_public_id, p.player_public_id, p.fixture_public_id, p.round, p.goals, p.concedes,
       p.clean_sheet, p.motm, p.result, p.base_points, p.points_multiplier, p.total_points, p.created_at
FROM fantasy_player_points p
JOIN fantasy_teams t ON t.public_id = p.team_public_id AND t.deleted_at IS NULL
WHERE t.league_public_id = $1
ORDER BY p.team_public_id, p.player_public_id, p.fixture_public_id`

	var rows []fantasyPlayerPointsTableModel
	if err := r.db.SelectContext(ctx, &rows, pointsQuery, leagueID); err != nil {
		return nil, fmt.Errorf("select fantasy player points league=%s: %w", leagueID, err)
	}

	out := make([]fantasy.PlayerPointsRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, fantasy.PlayerPointsRecord{
			TeamID:      row.TeamID,
			PlayerID:    row.PlayerID,
			FixtureID:   row.FixtureID,
			Round:       row.Round,
			Goals:       row.Goals,
			Concedes:    row.Concedes,
			CleanSheet:  row.CleanSheet,
			MOTM:        row.MOTM,
			Result:      fantasy.MatchResult(row.Result),
			BasePoints:  row.BasePoints,
			Multiplier:  row.Multiplier,
			TotalPoints: row.TotalPoints,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

func (r *FantasyRepository) ResetTeamBonuses(ctx context.Context, leagueID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for team bonus reset: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleteQuery, deleteArgs, err := qb.DeleteFrom("fantasy_team_bonus_points").
		Where(qb.Eq("league_public_id", leagueID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete team bonuses query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete team bonuses league=%s: %w", leagueID, err)
	}

	resetQuery, resetArgs, err := qb.Update("fantasy_teams").
		SetExpr("total_points", "total_points - passive_points").
		Set("passive_points", 0).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build reset passive points query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, resetQuery, resetArgs...); err != nil {
		return fmt.Errorf("reset passive points league=%s: %w", leagueID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit team bonus reset: %w", err)
	}
	return nil
}

func (r *FantasyRepository) CreditTeamBonus(ctx context.Context, record fantasy.TeamBonusRecord) (bool, error) {
	breakdownJSON, err := encodeJSON(record.Breakdown)
	if err != nil {
		return false, fmt.Errorf("encode team bonus breakdown: %w", err)
	}

	createdAt := record.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx for team bonus credit: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insertQuery, insertArgs, err := qb.InsertModel("fantasy_team_bonus_points", fantasyTeamBonusInsertModel{
		PublicID:   record.ID,
		LeagueID:   record.LeagueID,
		TeamID:     record.TeamID,
		RealTeamID: record.RealTeamID,
		FixtureID:  record.FixtureID,
		Round:      record.Round,
		Breakdown:  breakdownJSON,
		TotalBonus: record.TotalBonus,
		CreatedAt:  createdAt,
	}, "ON CONFLICT (league_public_id, team_public_id, fixture_public_id) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert team bonus query: %w", err)
	}
	result, err := tx.ExecContext(ctx, insertQuery, insertArgs...)
	if err != nil {
		return false, fmt.Errorf("insert team bonus team=%s fixture=%s: %w", record.TeamID, record.FixtureID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read affected rows for team bonus: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	creditQuery, creditArgs, err := qb.Update("fantasy_teams").
		SetExpr("passive_points", "passive_points + ?", record.TotalBonus).
		SetExpr("total_points", "total_points + ?", record.TotalBonus).
		Set("updated_at", createdAt).
		Where(
			qb.Eq("public_id", record.TeamID),
			qb.Eq("league_public_id", record.LeagueID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build credit passive points query: %w", err)
	}
	creditResult, err := tx.ExecContext(ctx, creditQuery, creditArgs...)
	if err != nil {
		return false, fmt.Errorf("credit passive points team=%s: %w", record.TeamID, err)
	}
	credited, err := creditResult.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read affected rows for passive points: %w", err)
	}
	if credited == 0 {
		return false, fmt.Errorf("fantasy team not found: team=%s league=%s", record.TeamID, record.LeagueID)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit team bonus credit: %w", err)
	}
	return true, nil
}

func (r *FantasyRepository) ListTeamBonusesByLeague(ctx context.Context, leagueID string) ([]fantasy.TeamBonusRecord, error) {
	query, args, err := qb.Select(
		"public_id",
		"league_public_id",
		"team_public_id",
		"real_team_public_id",
		"fixture_public_id",
		"round",
		"breakdown",
		"total_bonus",
		"created_at",
	).From("fantasy_team_bonus_points").
		Where(qb.Eq("league_public_id", leagueID)).
		OrderBy("team_public_id", "fixture_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team bonuses query: %w", err)
	}

	var rows []fantasyTeamBonusTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select team bonuses league=%s: %w", leagueID, err)
	}

	out := make([]fantasy.TeamBonusRecord, 0, len(rows))
	for _, row := range rows {
		var breakdown fantasy.BonusBreakdown
		if err := decodeJSON(row.Breakdown, &breakdown); err != nil {
			return nil, fmt.Errorf("decode team bonus breakdown id=%s: %w", row.PublicID, err)
		}
		out = append(out, fantasy.TeamBonusRecord{
			ID:         row.PublicID,
			LeagueID:   row.LeagueID,
			TeamID:     row.TeamID,
			RealTeamID: row.RealTeamID,
			FixtureID:  row.FixtureID,
			Round:      row.Round,
			Breakdown:  breakdown,
			TotalBonus: row.TotalBonus,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out, nil
}

func (r *FantasyRepository) SaveStandings(ctx context.Context, leagueID string, teams []fantasy.Team, entries []fantasy.SquadEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for fantasy standings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for _, entry := range entries {
		query, args, err := qb.Update("fantasy_squad_entries").
			Set("total_points", entry.TotalPoints).
			Set("updated_at", now).
			Where(
				qb.Eq("team_public_id", entry.TeamID),
				qb.Eq("player_public_id", entry.PlayerID),
				qb.IsNull("deleted_at"),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update squad entry total query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update squad entry total team=%s player=%s: %w", entry.TeamID, entry.PlayerID, err)
		}
	}

	for _, team := range teams {
		query, args, err := qb.Update("fantasy_teams").
			Set("player_points", team.PlayerPoints).
			Set("passive_points", team.PassivePoints).
			Set("total_points", team.TotalPoints).
			Set("rank", team.Rank).
			Set("updated_at", now).
			Where(
				qb.Eq("public_id", team.ID),
				qb.Eq("league_public_id", leagueID),
				qb.IsNull("deleted_at"),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update fantasy team standing query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update fantasy team standing team=%s: %w", team.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fantasy standings: %w", err)
	}
	return nil
}
