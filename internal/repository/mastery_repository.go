package repository

import (
	"context"
	"errors"

	"adaptive-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MasteryRepository struct {
	Col *mongo.Collection
}

func NewMasteryRepository(db *mongo.Database) *MasteryRepository {
	return &MasteryRepository{Col: db.Collection("user_mastery")}
}

// EnsureIndexes creates the unique (user_id, topic) index that serializes
// concurrent upserts for the same pair.
func (r *MasteryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "topic", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// FindByUserAndTopic returns the mastery record, or nil when the pair has
// never answered anything.
func (r *MasteryRepository) FindByUserAndTopic(ctx context.Context, userID, topic string) (*models.UserMastery, error) {
	var mastery models.UserMastery
	err := r.Col.FindOne(ctx, bson.M{"user_id": userID, "topic": topic}).Decode(&mastery)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mastery, nil
}

// Apply upserts the computed mastery state for (user, topic). The counter is
// incremented server-side so concurrent submissions never lose counts.
func (r *MasteryRepository) Apply(ctx context.Context, mastery *models.UserMastery) error {
	update := bson.M{
		"$set": bson.M{
			"rating":           mastery.Rating,
			"streak":           mastery.Streak,
			"last_reviewed_at": mastery.LastReviewedAt,
			"next_review_at":   mastery.NextReviewAt,
		},
		"$inc":         bson.M{"total_answered": 1},
		"$setOnInsert": bson.M{"user_id": mastery.UserID, "topic": mastery.Topic},
	}
	_, err := r.Col.UpdateOne(ctx,
		bson.M{"user_id": mastery.UserID, "topic": mastery.Topic},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}
