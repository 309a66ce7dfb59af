package service

import (
	"context"
	"errors"
	"log"
	"time"

	"adaptive-service/internal/adaptive"
	"adaptive-service/internal/models"
	"adaptive-service/internal/repository"
	"adaptive-service/internal/selection"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrQuizNotFound covers both a missing quiz and a quiz with no questions.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidInput rejects malformed RecordAnswer payloads before any
	// computation or persistence access.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMasteryNotFound reports that the user has no mastery for the topic.
	ErrMasteryNotFound = errors.New("mastery not found")
)

// Store is the persistence collaborator the practice service is built on.
// The mongo-backed implementation lives in internal/repository; tests inject
// an in-memory fake.
type Store interface {
	Provisioned() bool
	FindQuiz(ctx context.Context, id string) (*models.Quiz, error)
	FindAnswerHistory(ctx context.Context, userID, quizID string) ([]models.UserAnswer, error)
	FindRecentAnswers(ctx context.Context, userID, quizID string, limit int64) ([]models.UserAnswer, error)
	FindMastery(ctx context.Context, userID, topic string) (*models.UserMastery, error)
	UpsertMasteryAndRecordAnswer(ctx context.Context, mastery *models.UserMastery, answer *models.UserAnswer) error
}

// PracticeService drives adaptive question selection and answer recording.
// It holds no state between calls; everything is read from and written to
// the store per request.
type PracticeService struct {
	store    Store
	selector *selection.Selector
	now      func() time.Time
}

func NewPracticeService(store Store, selector *selection.Selector) *PracticeService {
	if selector == nil {
		selector = selection.NewSelector()
	}
	return &PracticeService{
		store:    store,
		selector: selector,
		now:      time.Now,
	}
}

type NextQuestionInput struct {
	UserID     string
	QuizID     string
	Topic      string
	ExcludeIDs []string
}

// SelectionMeta is echoed with every next-question response, including the
// end-of-session one.
type SelectionMeta struct {
	QuizID          string `json:"quiz_id"`
	Topic           string `json:"topic"`
	TotalQuestions  int    `json:"total_questions"`
	UnansweredCount int    `json:"unanswered_count"`
	Due             bool   `json:"due"`
	Strategy        string `json:"strategy"`
	ExcludedCount   int    `json:"excluded_count"`
}

// NextQuestionResult carries the selected question, or a nil Question when
// the session is exhausted.
type NextQuestionResult struct {
	Question *models.Question `json:"question"`
	Meta     SelectionMeta    `json:"meta"`
}

// NextQuestion picks the next question for (user, quiz). History and mastery
// reads degrade to empty on failure so selection never hard-fails once the
// quiz itself is loaded.
func (s *PracticeService) NextQuestion(ctx context.Context, input NextQuestionInput) (*NextQuestionResult, error) {
	quiz, err := s.store.FindQuiz(ctx, input.QuizID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, ErrQuizNotFound
	}
	topic := quiz.ResolveTopic(input.Topic)

	history, err := s.store.FindAnswerHistory(ctx, input.UserID, input.QuizID)
	if err != nil {
		log.Printf("Answer history unavailable for user %s quiz %s, treating as empty: %v", input.UserID, input.QuizID, err)
		history = nil
	}

	due := false
	mastery, err := s.store.FindMastery(ctx, input.UserID, topic)
	if err != nil {
		log.Printf("Mastery unavailable for user %s topic %s: %v", input.UserID, topic, err)
	} else if mastery != nil {
		due = mastery.Due(s.now())
	}

	events := make([]selection.AnswerEvent, 0, len(history))
	for _, a := range history {
		if a.QuestionID == "" {
			continue
		}
		events = append(events, selection.AnswerEvent{
			QuestionID: a.QuestionID,
			Correct:    a.IsCorrect,
			AnsweredAt: a.CreatedAt,
		})
	}

	picked := s.selector.Pick(quiz.Questions, events, &selection.Criteria{
		ExcludeIDs: input.ExcludeIDs,
		Due:        due,
	})

	return &NextQuestionResult{
		Question: picked.Question,
		Meta: SelectionMeta{
			QuizID:          input.QuizID,
			Topic:           topic,
			TotalQuestions:  picked.TotalQuestions,
			UnansweredCount: picked.UnansweredCount,
			Due:             picked.Due,
			Strategy:        picked.Strategy,
			ExcludedCount:   len(input.ExcludeIDs),
		},
	}, nil
}

type RecordAnswerInput struct {
	UserID      string
	QuizID      string
	QuestionID  string
	EssayID     string
	Topic       string
	Correct     bool
	AnswerIndex *int
	TimeMs      *int
	Level       string
}

type RecordAnswerResult struct {
	RatingAfter  float64
	NextReviewAt time.Time
	Skipped      bool
	Notice       string
}

// RecordAnswer runs the rating update and review scheduling for one answer,
// then persists the mastery update and answer record atomically. When the
// adaptive collections are not provisioned the call acknowledges and skips
// persistence instead of failing.
func (s *PracticeService) RecordAnswer(ctx context.Context, input RecordAnswerInput) (*RecordAnswerResult, error) {
	if input.Topic == "" || input.UserID == "" {
		return nil, ErrInvalidInput
	}

	if !s.store.Provisioned() {
		return &RecordAnswerResult{
			Skipped: true,
			Notice:  "Adaptive collections not provisioned. Skipping persistence.",
		}, nil
	}

	mastery, err := s.store.FindMastery(ctx, input.UserID, input.Topic)
	if err != nil {
		return nil, err
	}
	if mastery == nil {
		mastery = models.NewUserMastery(input.UserID, input.Topic)
	}

	now := s.now()
	ratingBefore := mastery.Rating
	opponent := adaptive.DifficultyForLevel(input.Level)
	ratingAfter := adaptive.UpdateRating(ratingBefore, input.Correct, opponent)
	streak := 0
	if input.Correct {
		streak = mastery.Streak + 1
	}
	nextReviewAt := adaptive.NextReviewDate(now, streak, input.Correct)

	mastery.Rating = ratingAfter
	mastery.Streak = streak
	mastery.LastReviewedAt = now
	mastery.NextReviewAt = nextReviewAt

	answer := &models.UserAnswer{
		UserID:       input.UserID,
		QuizID:       input.QuizID,
		QuestionID:   input.QuestionID,
		EssayID:      input.EssayID,
		Topic:        input.Topic,
		IsCorrect:    input.Correct,
		AnswerIndex:  input.AnswerIndex,
		TimeMs:       input.TimeMs,
		RatingBefore: ratingBefore,
		RatingAfter:  ratingAfter,
		CreatedAt:    now,
	}

	if err := s.store.UpsertMasteryAndRecordAnswer(ctx, mastery, answer); err != nil {
		if errors.Is(err, repository.ErrNotProvisioned) {
			return &RecordAnswerResult{
				Skipped: true,
				Notice:  "Adaptive collections missing. Persistence skipped.",
			}, nil
		}
		return nil, err
	}

	return &RecordAnswerResult{
		RatingAfter:  ratingAfter,
		NextReviewAt: nextReviewAt,
	}, nil
}

// MasteryStatus is the dashboard view of one (user, topic) pair.
type MasteryStatus struct {
	Mastery *models.UserMastery `json:"mastery"`
	Due     bool                `json:"due"`
}

func (s *PracticeService) GetMastery(ctx context.Context, userID, topic string) (*MasteryStatus, error) {
	mastery, err := s.store.FindMastery(ctx, userID, topic)
	if err != nil {
		return nil, err
	}
	if mastery == nil {
		return nil, ErrMasteryNotFound
	}
	return &MasteryStatus{Mastery: mastery, Due: mastery.Due(s.now())}, nil
}

// RecentHistory returns the caller's latest answers on a quiz, newest first.
func (s *PracticeService) RecentHistory(ctx context.Context, userID, quizID string, limit int64) ([]models.UserAnswer, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.FindRecentAnswers(ctx, userID, quizID, limit)
}
