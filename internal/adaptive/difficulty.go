package adaptive

import "strings"

// levelDifficulty maps a quiz's declared level to an opponent rating baseline.
// This is policy, not Elo math; tune it without touching UpdateRating.
var levelDifficulty = map[string]float64{
	"beginner":     1150,
	"intermediate": 1250,
	"advanced":     1350,
}

// DifficultyForLevel resolves a quiz level label to an opponent difficulty.
// Unknown or empty levels fall back to DefaultOpponent.
func DifficultyForLevel(level string) float64 {
	if d, ok := levelDifficulty[strings.ToLower(level)]; ok {
		return d
	}
	return DefaultOpponent
}
