package playerseason

import "github.com/shopspring/decimal"

var salaryRatePerStar = decimal.NewFromFloat(0.01)

// CalculateSalary derives the per-match salary from the auction value and
// the star tier: auction_value * star * 1%, rounded to cents.
func CalculateSalary(auctionValue decimal.Decimal, star int) decimal.Decimal {
	if !auctionValue.IsPositive() {
		return decimal.Zero
	}
	rate := salaryRatePerStar.Mul(decimal.NewFromInt(int64(ClampStarRating(star))))
	return auctionValue.Mul(rate).Round(2)
}
