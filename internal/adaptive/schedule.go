package adaptive

import (
	"math"
	"time"
)

// MaxReviewIntervalDays caps how far out a review can be scheduled.
const MaxReviewIntervalDays = 30

// NextReviewDate computes when a topic becomes eligible for review again,
// following a simplified spaced-repetition curve. An incorrect answer always
// schedules a tight one-day re-review regardless of streak; correct answers
// space reviews out exponentially with the streak, capped at 30 days. The
// offset is a whole number of days, preserving the time of day.
func NextReviewDate(current time.Time, streak int, correct bool) time.Time {
	days := 1
	if correct {
		switch {
		case streak <= 1:
			days = 1
		case streak == 2:
			days = 3
		default:
			// Cap in float space: at high streaks 1.9^streak overflows int
			// and the converted value is implementation-defined.
			interval := math.Round(math.Pow(1.9, float64(streak)))
			if interval > MaxReviewIntervalDays {
				interval = MaxReviewIntervalDays
			}
			days = int(interval)
		}
	}
	return current.AddDate(0, 0, days)
}
