package repository

import (
	"context"

	"adaptive-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type QuizRepository struct {
	Col *mongo.Collection
}

func NewQuizRepository(db *mongo.Database) *QuizRepository {
	return &QuizRepository{Col: db.Collection("quizzes")}
}

// FindByID loads a quiz with its embedded, ordered question list. Ids are
// matched both as ObjectID and as plain string so externally-minted ids work.
func (r *QuizRepository) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	filter := bson.M{"_id": id}
	if objID, err := primitive.ObjectIDFromHex(id); err == nil {
		filter = bson.M{"_id": bson.M{"$in": bson.A{objID, id}}}
	}
	var quiz models.Quiz
	if err := r.Col.FindOne(ctx, filter).Decode(&quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	_, err := r.Col.InsertOne(ctx, quiz)
	return err
}
