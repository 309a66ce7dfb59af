package models

import "time"

// UserAnswer is an append-only record of a single submitted answer. It is
// never mutated or deleted once written.
type UserAnswer struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	UserID       string    `bson:"user_id" json:"user_id"`
	QuizID       string    `bson:"quiz_id,omitempty" json:"quiz_id,omitempty"`
	QuestionID   string    `bson:"question_id,omitempty" json:"question_id,omitempty"`
	EssayID      string    `bson:"essay_id,omitempty" json:"essay_id,omitempty"`
	Topic        string    `bson:"topic" json:"topic"`
	IsCorrect    bool      `bson:"is_correct" json:"is_correct"`
	AnswerIndex  *int      `bson:"answer_index,omitempty" json:"answer_index,omitempty"`
	TimeMs       *int      `bson:"time_ms,omitempty" json:"time_ms,omitempty"`
	RatingBefore float64   `bson:"rating_before" json:"rating_before"`
	RatingAfter  float64   `bson:"rating_after" json:"rating_after"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
