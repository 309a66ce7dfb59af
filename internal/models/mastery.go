package models

import "time"

// DefaultRating is the rating assigned on the first answer for a topic.
const DefaultRating = 1200.0

// UserMastery is the per user+topic skill state. One document per pair,
// upserted on every recorded answer.
type UserMastery struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	UserID         string    `bson:"user_id" json:"user_id"`
	Topic          string    `bson:"topic" json:"topic"`
	Rating         float64   `bson:"rating" json:"rating"`
	Streak         int       `bson:"streak" json:"streak"`
	TotalAnswered  int       `bson:"total_answered" json:"total_answered"`
	LastReviewedAt time.Time `bson:"last_reviewed_at" json:"last_reviewed_at"`
	NextReviewAt   time.Time `bson:"next_review_at" json:"next_review_at"`
}

// NewUserMastery creates the lazily-initialized mastery record for a topic.
func NewUserMastery(userID, topic string) *UserMastery {
	return &UserMastery{
		UserID: userID,
		Topic:  topic,
		Rating: DefaultRating,
	}
}

// Due reports whether the topic's scheduled review has come around.
func (m *UserMastery) Due(now time.Time) bool {
	return !m.NextReviewAt.IsZero() && !m.NextReviewAt.After(now)
}
