package playerseason

import "context"

// Repository exposes season rating records.
type Repository interface {
	Get(ctx context.Context, seasonID, playerID string) (Record, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Record, error)
	UpdateRating(ctx context.Context, update RatingUpdate) error
}

// LegacyMirror projects points and star rating onto the legacy player profile.
// Writes are best effort; the season record stays authoritative.
type LegacyMirror interface {
	MirrorRating(ctx context.Context, playerID string, points, starRating int) error
}
