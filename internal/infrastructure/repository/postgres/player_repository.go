package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-scoring/internal/domain/playerseason"
	qb "github.com/riskibarqy/league-scoring/internal/platform/querybuilder"
)

type PlayerSeasonRepository struct {
	db *sqlx.DB
}

var playerSeasonSelectColumns = []string{
	"player_public_id",
	"season_public_id",
	"name",
	"team_public_id",
	"auction_value",
	"star_rating",
	"points",
	"salary_per_match",
	"updated_at",
}

func NewPlayerSeasonRepository(db *sqlx.DB) *PlayerSeasonRepository {
	return &PlayerSeasonRepository{db: db}
}

func (r *PlayerSeasonRepository) Get(ctx context.Context, seasonID, playerID string) (playerseason.Record, bool, error) {
	query, args, err := qb.Select(playerSeasonSelectColumns...).From("player_seasons").
		Where(
			qb.Eq("season_public_id", seasonID),
			qb.Eq("player_public_id", playerID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return playerseason.Record{}, false, fmt.Errorf("build select player season query: %w", err)
	}

	var row playerSeasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return playerseason.Record{}, false, nil
		}
		return playerseason.Record{}, false, fmt.Errorf("get player season player=%s season=%s: %w", playerID, seasonID, err)
	}

	return playerSeasonFromRow(row), true, nil
}

func (r *PlayerSeasonRepository) ListBySeason(ctx context.Context, seasonID string) ([]playerseason.Record, error) {
	query, args, err := qb.Select(playerSeasonSelectColumns...).From("player_seasons").
		Where(
			qb.Eq("season_public_id", seasonID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("player_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player seasons query: %w", err)
	}

	var rows []playerSeasonTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player seasons season=%s: %w", seasonID, err)
	}

	out := make([]playerseason.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerSeasonFromRow(row))
	}
	return out, nil
}

func (r *PlayerSeasonRepository) UpdateRating(ctx context.Context, update playerseason.RatingUpdate) error {
	updatedAt := update.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	builder := qb.Update("player_seasons").
		Set("points", update.Points).
		Set("star_rating", update.StarRating).
		Set("updated_at", updatedAt)
	if update.SalaryPerMatch != nil {
		builder = builder.Set("salary_per_match", *update.SalaryPerMatch)
	}

	query, args, err := builder.Where(
		qb.Eq("season_public_id", update.SeasonID),
		qb.Eq("player_public_id", update.PlayerID),
		qb.IsNull("deleted_at"),
	).ToSQL()
	if err != nil {
		return fmt.Errorf("build update player rating query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update player rating player=%s season=%s: %w", update.PlayerID, update.SeasonID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows for player rating: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("player season record not found: player=%s season=%s", update.PlayerID, update.SeasonID)
	}
	return nil
}

func playerSeasonFromRow(row playerSeasonTableModel) playerseason.Record {
	return playerseason.Record{
		PlayerID:       row.PlayerID,
		SeasonID:       row.SeasonID,
		Name:           row.Name,
		TeamID:         row.TeamID,
		AuctionValue:   row.AuctionValue,
		StarRating:     row.StarRating,
		Points:         nullIntPtr(row.Points),
		SalaryPerMatch: row.SalaryPerMatch,
		UpdatedAt:      row.UpdatedAt,
	}
}

// PlayerMirrorRepository keeps the legacy players table in step with season ratings.
type PlayerMirrorRepository struct {
	db *sqlx.DB
}

func NewPlayerMirrorRepository(db *sqlx.DB) *PlayerMirrorRepository {
	return &PlayerMirrorRepository{db: db}
}

func (r *PlayerMirrorRepository) MirrorRating(ctx context.Context, playerID string, points, starRating int) error {
	model := playerMirrorInsertModel{
		PublicID:   playerID,
		Points:     points,
		StarRating: starRating,
		UpdatedAt:  time.Now().UTC(),
	}

	query, args, err := qb.InsertModel("players", model, `ON CONFLICT (public_id) WHERE deleted_at IS NULL
DO UPDATE SET
    points = EXCLUDED.points,
    star_rating = EXCLUDED.star_rating,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build mirror player rating query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mirror player rating player=%s: %w", playerID, err)
	}
	return nil
}
