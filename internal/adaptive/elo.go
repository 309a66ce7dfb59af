package adaptive

import "math"

const (
	// KFactor is the Elo learning rate.
	KFactor = 24.0
	// MinRating and MaxRating bound every rating the model can produce.
	MinRating = 800.0
	MaxRating = 2000.0
	// DefaultOpponent is the difficulty used when a quiz declares no level.
	DefaultOpponent = 1200.0
)

// UpdateRating applies a single Elo-style update for one answered question.
// The opponent value is a difficulty proxy, typically from DifficultyForLevel.
// The result is always clamped to [MinRating, MaxRating].
func UpdateRating(rating float64, correct bool, opponent float64) float64 {
	expected := 1 / (1 + math.Pow(10, (opponent-rating)/400))
	score := 0.0
	if correct {
		score = 1.0
	}
	next := rating + KFactor*(score-expected)
	return math.Max(MinRating, math.Min(MaxRating, next))
}
