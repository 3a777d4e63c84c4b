package playerseason

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is one real player's rating state for one season.
type Record struct {
	PlayerID       string
	SeasonID       string
	Name           string
	TeamID         string
	AuctionValue   decimal.Decimal
	StarRating     int
	Points         *int
	SalaryPerMatch decimal.Decimal
	UpdatedAt      time.Time
}

// CurrentPoints falls back to the star tier's base points when no cumulative
// score has been recorded yet.
func (r Record) CurrentPoints() int {
	if r.Points != nil {
		return *r.Points
	}
	return BasePoints(r.StarRating)
}

// RatingUpdate is the write applied after a matchup. SalaryPerMatch is nil
// when the star tier did not change.
type RatingUpdate struct {
	PlayerID       string
	SeasonID       string
	Points         int
	StarRating     int
	SalaryPerMatch *decimal.Decimal
	UpdatedAt      time.Time
}

// Apply returns the record as it looks after u is persisted.
func (r Record) Apply(u RatingUpdate) Record {
	points := u.Points
	r.Points = &points
	r.StarRating = u.StarRating
	if u.SalaryPerMatch != nil {
		r.SalaryPerMatch = *u.SalaryPerMatch
	}
	r.UpdatedAt = u.UpdatedAt
	return r
}
