package postgres

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type playerSeasonTableModel struct {
	PlayerID       string          `db:"player_public_id"`
	SeasonID       string          `db:"season_public_id"`
	Name           string          `db:"name"`
	TeamID         string          `db:"team_public_id"`
	AuctionValue   decimal.Decimal `db:"auction_value"`
	StarRating     int             `db:"star_rating"`
	Points         sql.NullInt64   `db:"points"`
	SalaryPerMatch decimal.Decimal `db:"salary_per_match"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

type playerSeasonInsertModel struct {
	PlayerID       string          `db:"player_public_id"`
	SeasonID       string          `db:"season_public_id"`
	Name           string          `db:"name"`
	TeamID         string          `db:"team_public_id"`
	AuctionValue   decimal.Decimal `db:"auction_value"`
	StarRating     int             `db:"star_rating"`
	Points         sql.NullInt64   `db:"points"`
	SalaryPerMatch decimal.Decimal `db:"salary_per_match"`
}

type playerMirrorInsertModel struct {
	PublicID   string    `db:"public_id"`
	Points     int       `db:"points"`
	StarRating int       `db:"star_rating"`
	UpdatedAt  time.Time `db:"updated_at"`
}
