package selection

import (
	"time"

	"adaptive-service/internal/models"
)

// Selection strategies reported in Result metadata.
const (
	StrategyUnansweredFirst = "unanswered-first"
	StrategyWeakestFirst    = "weakest-first"
)

// weakestSliceSize bounds the weakest-first candidate slice; one of the top
// entries is picked at random so the single weakest item cannot loop forever.
const weakestSliceSize = 3

// AnswerEvent is the slice of an answer record the selector needs.
type AnswerEvent struct {
	QuestionID string
	Correct    bool
	AnsweredAt time.Time
}

// Criteria describes one selection call.
type Criteria struct {
	// ExcludeIDs are session-local question ids to skip, supplied by the
	// caller. Distinct from persisted history: it lets a client force
	// progression before its answer write lands.
	ExcludeIDs []string
	// Due is whether the topic's review is currently due. Echoed in the
	// result; reserved for future weighting and not yet discriminating.
	Due bool
}

// Result is the outcome of one selection. Question is nil when the session
// is exhausted (every question answered or excluded).
type Result struct {
	Question        *models.Question
	Strategy        string
	TotalQuestions  int
	UnansweredCount int
	Due             bool
}

// questionStats aggregates a user's history for one question.
type questionStats struct {
	total   int
	correct int
	lastAt  time.Time
}

func (s questionStats) accuracy() float64 {
	if s.total == 0 {
		return 0
	}
	return float64(s.correct) / float64(s.total)
}
