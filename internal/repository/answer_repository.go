package repository

import (
	"context"

	"adaptive-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AnswerRepository struct {
	Col *mongo.Collection
}

func NewAnswerRepository(db *mongo.Database) *AnswerRepository {
	return &AnswerRepository{Col: db.Collection("user_answers")}
}

func (r *AnswerRepository) Create(ctx context.Context, answer *models.UserAnswer) error {
	_, err := r.Col.InsertOne(ctx, answer)
	return err
}

// FindByUserAndQuiz returns every answer the user has recorded on the quiz,
// oldest first.
func (r *AnswerRepository) FindByUserAndQuiz(ctx context.Context, userID, quizID string) ([]models.UserAnswer, error) {
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID, "quiz_id": quizID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var answers []models.UserAnswer
	for cur.Next(ctx) {
		var a models.UserAnswer
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, cur.Err()
}

// FindRecent returns the user's latest answers on the quiz, newest first.
func (r *AnswerRepository) FindRecent(ctx context.Context, userID, quizID string, limit int64) ([]models.UserAnswer, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID, "quiz_id": quizID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var answers []models.UserAnswer
	for cur.Next(ctx) {
		var a models.UserAnswer
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, cur.Err()
}
