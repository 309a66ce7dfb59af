package repository

import (
	"context"
	"errors"
	"log"
	"strings"

	"adaptive-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotProvisioned reports that the adaptive collections have not been
// created yet. Callers treat it as a graceful-skip, not a failure.
var ErrNotProvisioned = errors.New("adaptive collections not provisioned")

const (
	masteryCollection = "user_mastery"
	answersCollection = "user_answers"
)

// Store bundles the adaptive repositories behind one handle and owns the
// cross-collection transaction for answer recording. Capability detection
// happens once at construction, never per call.
type Store struct {
	client      *mongo.Client
	Quizzes     *QuizRepository
	Answers     *AnswerRepository
	Mastery     *MasteryRepository
	provisioned bool
}

func NewStore(ctx context.Context, client *mongo.Client, db *mongo.Database) (*Store, error) {
	store := &Store{
		client:  client,
		Quizzes: NewQuizRepository(db),
		Answers: NewAnswerRepository(db),
		Mastery: NewMasteryRepository(db),
	}

	names, err := db.ListCollectionNames(ctx, bson.M{
		"name": bson.M{"$in": bson.A{masteryCollection, answersCollection}},
	})
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(names))
	for _, n := range names {
		found[n] = true
	}
	store.provisioned = found[masteryCollection] && found[answersCollection]

	if store.provisioned {
		if err := store.Mastery.EnsureIndexes(ctx); err != nil {
			log.Printf("Failed to ensure mastery indexes: %v", err)
		}
	} else {
		log.Println("Adaptive collections not provisioned, answer recording will be skipped")
	}

	return store, nil
}

// Provisioned reports whether the mastery and answer collections exist.
func (s *Store) Provisioned() bool {
	return s.provisioned
}

func (s *Store) FindQuiz(ctx context.Context, id string) (*models.Quiz, error) {
	return s.Quizzes.FindByID(ctx, id)
}

func (s *Store) FindAnswerHistory(ctx context.Context, userID, quizID string) ([]models.UserAnswer, error) {
	return s.Answers.FindByUserAndQuiz(ctx, userID, quizID)
}

func (s *Store) FindRecentAnswers(ctx context.Context, userID, quizID string, limit int64) ([]models.UserAnswer, error) {
	return s.Answers.FindRecent(ctx, userID, quizID, limit)
}

func (s *Store) FindMastery(ctx context.Context, userID, topic string) (*models.UserMastery, error) {
	return s.Mastery.FindByUserAndTopic(ctx, userID, topic)
}

// UpsertMasteryAndRecordAnswer applies the mastery update and the answer
// insert as one transaction. Either both land or neither does.
func (s *Store) UpsertMasteryAndRecordAnswer(ctx context.Context, mastery *models.UserMastery, answer *models.UserAnswer) error {
	session, err := s.client.StartSession()
	if err != nil {
		return translateWriteErr(err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := s.Mastery.Apply(sc, mastery); err != nil {
			return nil, err
		}
		if err := s.Answers.Create(sc, answer); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return translateWriteErr(err)
}

// translateWriteErr maps "collection/namespace missing" failures onto
// ErrNotProvisioned so the service can degrade instead of erroring.
func translateWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 26 {
		return ErrNotProvisioned
	}
	if strings.Contains(err.Error(), "NamespaceNotFound") {
		return ErrNotProvisioned
	}
	return err
}
