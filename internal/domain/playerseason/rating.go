package playerseason

const (
	MinStarRating   = 3
	MaxStarRating   = 10
	MaxPointsChange = 5
)

var basePointsByStar = map[int]int{
	3:  100,
	4:  120,
	5:  145,
	6:  175,
	7:  210,
	8:  250,
	9:  300,
	10: 375,
}

// starThresholds is ordered from the highest tier down.
var starThresholds = []struct {
	star      int
	minPoints int
}{
	{star: 10, minPoints: 350},
	{star: 9, minPoints: 300},
	{star: 8, minPoints: 250},
	{star: 7, minPoints: 210},
	{star: 6, minPoints: 175},
	{star: 5, minPoints: 145},
	{star: 4, minPoints: 120},
}

// BasePoints is the starting rating score for a star tier. Out-of-range
// tiers are clamped to 3..10.
func BasePoints(star int) int {
	return basePointsByStar[ClampStarRating(star)]
}

// StarRatingForPoints picks the highest tier whose threshold is reached.
func StarRatingForPoints(points int) int {
	for _, item := range starThresholds {
		if points >= item.minPoints {
			return item.star
		}
	}
	return MinStarRating
}

func ClampStarRating(star int) int {
	switch {
	case star < MinStarRating:
		return MinStarRating
	case star > MaxStarRating:
		return MaxStarRating
	default:
		return star
	}
}

// ClampPointsChange bounds a goal difference to ±MaxPointsChange.
func ClampPointsChange(goalDifference int) int {
	switch {
	case goalDifference > MaxPointsChange:
		return MaxPointsChange
	case goalDifference < -MaxPointsChange:
		return -MaxPointsChange
	default:
		return goalDifference
	}
}
