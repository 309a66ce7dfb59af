package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"adaptive-service/internal/adaptive"
	"adaptive-service/internal/models"
	"adaptive-service/internal/repository"
	"adaptive-service/internal/selection"

	"go.mongodb.org/mongo-driver/mongo"
)

// fakeStore is an in-memory Store with injectable failures.
type fakeStore struct {
	provisioned bool
	quizzes     map[string]*models.Quiz
	answers     []models.UserAnswer
	mastery     map[string]*models.UserMastery

	historyErr error
	masteryErr error
	writeErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		provisioned: true,
		quizzes:     map[string]*models.Quiz{},
		mastery:     map[string]*models.UserMastery{},
	}
}

func (f *fakeStore) Provisioned() bool { return f.provisioned }

func (f *fakeStore) FindQuiz(_ context.Context, id string) (*models.Quiz, error) {
	quiz, ok := f.quizzes[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return quiz, nil
}

func (f *fakeStore) FindAnswerHistory(_ context.Context, userID, quizID string) ([]models.UserAnswer, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	var out []models.UserAnswer
	for _, a := range f.answers {
		if a.UserID == userID && a.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) FindRecentAnswers(ctx context.Context, userID, quizID string, limit int64) ([]models.UserAnswer, error) {
	history, err := f.FindAnswerHistory(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if int64(len(history)) > limit {
		history = history[int64(len(history))-limit:]
	}
	return history, nil
}

func (f *fakeStore) FindMastery(_ context.Context, userID, topic string) (*models.UserMastery, error) {
	if f.masteryErr != nil {
		return nil, f.masteryErr
	}
	m, ok := f.mastery[userID+"|"+topic]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

// UpsertMasteryAndRecordAnswer mirrors the transactional contract: on any
// failure, neither the mastery update nor the answer insert is applied.
func (f *fakeStore) UpsertMasteryAndRecordAnswer(_ context.Context, mastery *models.UserMastery, answer *models.UserAnswer) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	key := mastery.UserID + "|" + mastery.Topic
	prevTotal := 0
	if existing, ok := f.mastery[key]; ok {
		prevTotal = existing.TotalAnswered
	}
	cp := *mastery
	cp.TotalAnswered = prevTotal + 1
	f.mastery[key] = &cp
	f.answers = append(f.answers, *answer)
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seedQuiz(store *fakeStore, id, topic, level string, questionIDs ...string) {
	questions := make([]models.Question, len(questionIDs))
	for i, qid := range questionIDs {
		questions[i] = models.Question{ID: qid, Prompt: "q", Options: []string{"a", "b", "c", "d"}, Order: i}
	}
	store.quizzes[id] = &models.Quiz{ID: id, Topic: topic, Level: level, Questions: questions}
}

func TestRecordAnswer_FirstAnswerCreatesMastery(t *testing.T) {
	store := newFakeStore()
	svc := NewPracticeService(store, selection.NewSelectorWithSource(rand.NewSource(1)))
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	result, err := svc.RecordAnswer(context.Background(), RecordAnswerInput{
		UserID:     "u1",
		QuizID:     "quiz1",
		QuestionID: "q1",
		Topic:      "Algebra",
		Correct:    true,
		Level:      "advanced",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedRating := adaptive.UpdateRating(models.DefaultRating, true, 1350)
	if result.RatingAfter != expectedRating {
		t.Errorf("expected rating %.2f, got %.2f", expectedRating, result.RatingAfter)
	}
	if result.NextReviewAt != now.AddDate(0, 0, 1) {
		t.Errorf("streak 1 must schedule +1 day, got %v", result.NextReviewAt)
	}

	mastery := store.mastery["u1|Algebra"]
	if mastery == nil {
		t.Fatal("mastery record not created")
	}
	if mastery.Streak != 1 || mastery.TotalAnswered != 1 {
		t.Errorf("expected streak 1 total 1, got streak %d total %d", mastery.Streak, mastery.TotalAnswered)
	}
	if len(store.answers) != 1 {
		t.Fatalf("expected 1 answer record, got %d", len(store.answers))
	}
	rec := store.answers[0]
	if rec.RatingBefore != models.DefaultRating || rec.RatingAfter != expectedRating {
		t.Errorf("answer record ratings wrong: before %.2f after %.2f", rec.RatingBefore, rec.RatingAfter)
	}
}

func TestRecordAnswer_IncorrectResetsStreak(t *testing.T) {
	store := newFakeStore()
	store.mastery["u1|Algebra"] = &models.UserMastery{
		UserID: "u1", Topic: "Algebra", Rating: 1400, Streak: 5, TotalAnswered: 9,
	}
	svc := NewPracticeService(store, nil)
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(now)

	result, err := svc.RecordAnswer(context.Background(), RecordAnswerInput{
		UserID: "u1", Topic: "Algebra", Correct: false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mastery := store.mastery["u1|Algebra"]
	if mastery.Streak != 0 {
		t.Errorf("incorrect answer must reset streak, got %d", mastery.Streak)
	}
	if mastery.Rating >= 1400 {
		t.Errorf("rating must drop on incorrect answer, got %.2f", mastery.Rating)
	}
	if mastery.TotalAnswered != 10 {
		t.Errorf("total answered must increment, got %d", mastery.TotalAnswered)
	}
	if result.NextReviewAt != now.AddDate(0, 0, 1) {
		t.Errorf("incorrect answer must schedule +1 day, got %v", result.NextReviewAt)
	}
}

func TestRecordAnswer_AtomicityOnWriteFailure(t *testing.T) {
	store := newFakeStore()
	store.mastery["u1|Algebra"] = &models.UserMastery{
		UserID: "u1", Topic: "Algebra", Rating: 1300, Streak: 2, TotalAnswered: 4,
	}
	store.writeErr = errors.New("transaction aborted")
	svc := NewPracticeService(store, nil)

	_, err := svc.RecordAnswer(context.Background(), RecordAnswerInput{
		UserID: "u1", Topic: "Algebra", Correct: true,
	})
	if err == nil {
		t.Fatal("expected the write failure to propagate")
	}

	// Neither half of the atomic unit may be visible.
	mastery := store.mastery["u1|Algebra"]
	if mastery.Rating != 1300 || mastery.Streak != 2 || mastery.TotalAnswered != 4 {
		t.Errorf("mastery mutated despite failed write: %+v", mastery)
	}
	if len(store.answers) != 0 {
		t.Errorf("answer recorded despite failed write: %d records", len(store.answers))
	}
}

func TestRecordAnswer_SkipsWhenNotProvisioned(t *testing.T) {
	store := newFakeStore()
	store.provisioned = false
	svc := NewPracticeService(store, nil)

	result, err := svc.RecordAnswer(context.Background(), RecordAnswerInput{
		UserID: "u1", Topic: "Algebra", Correct: true,
	})
	if err != nil {
		t.Fatalf("graceful skip must not error: %v", err)
	}
	if !result.Skipped || result.Notice == "" {
		t.Errorf("expected skipped acknowledgement, got %+v", result)
	}
	if len(store.answers) != 0 || len(store.mastery) != 0 {
		t.Error("nothing may be persisted when unprovisioned")
	}
}

func TestRecordAnswer_SkipsOnNamespaceMissing(t *testing.T) {
	store := newFakeStore()
	store.writeErr = repository.ErrNotProvisioned
	svc := NewPracticeService(store, nil)

	result, err := svc.RecordAnswer(context.Background(), RecordAnswerInput{
		UserID: "u1", Topic: "Algebra", Correct: true,
	})
	if err != nil {
		t.Fatalf("missing-namespace write must degrade, not fail: %v", err)
	}
	if !result.Skipped {
		t.Errorf("expected skipped acknowledgement, got %+v", result)
	}
}

func TestRecordAnswer_RejectsMissingTopic(t *testing.T) {
	svc := NewPracticeService(newFakeStore(), nil)
	_, err := svc.RecordAnswer(context.Background(), RecordAnswerInput{
		UserID: "u1", Correct: true,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNextQuestion_QuizNotFound(t *testing.T) {
	svc := NewPracticeService(newFakeStore(), nil)
	_, err := svc.NextQuestion(context.Background(), NextQuestionInput{UserID: "u1", QuizID: "missing"})
	if !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestNextQuestion_EmptyQuizIsNotFound(t *testing.T) {
	store := newFakeStore()
	store.quizzes["quiz1"] = &models.Quiz{ID: "quiz1", Topic: "Algebra"}
	svc := NewPracticeService(store, nil)
	_, err := svc.NextQuestion(context.Background(), NextQuestionInput{UserID: "u1", QuizID: "quiz1"})
	if !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound for empty quiz, got %v", err)
	}
}

func TestNextQuestion_PrefersUnanswered(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", "Algebra", "", "q1", "q2", "q3")
	store.answers = []models.UserAnswer{
		{UserID: "u1", QuizID: "quiz1", QuestionID: "q1", IsCorrect: true, Topic: "Algebra", CreatedAt: time.Now()},
	}
	svc := NewPracticeService(store, selection.NewSelectorWithSource(rand.NewSource(9)))

	for i := 0; i < 50; i++ {
		result, err := svc.NextQuestion(context.Background(), NextQuestionInput{UserID: "u1", QuizID: "quiz1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Question == nil {
			t.Fatal("expected a question")
		}
		if result.Question.ID == "q1" {
			t.Fatal("answered question returned while unseen ones remain")
		}
		if result.Meta.Strategy != selection.StrategyUnansweredFirst {
			t.Fatalf("expected unanswered-first, got %s", result.Meta.Strategy)
		}
	}
}

func TestNextQuestion_EndOfSession(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", "Algebra", "", "q1", "q2")
	store.answers = []models.UserAnswer{
		{UserID: "u1", QuizID: "quiz1", QuestionID: "q1", IsCorrect: true, Topic: "Algebra", CreatedAt: time.Now()},
		{UserID: "u1", QuizID: "quiz1", QuestionID: "q2", IsCorrect: false, Topic: "Algebra", CreatedAt: time.Now()},
	}
	svc := NewPracticeService(store, nil)

	result, err := svc.NextQuestion(context.Background(), NextQuestionInput{
		UserID:     "u1",
		QuizID:     "quiz1",
		ExcludeIDs: []string{"q1", "q2"},
	})
	if err != nil {
		t.Fatalf("end of session must not be an error: %v", err)
	}
	if result.Question != nil {
		t.Fatalf("expected nil question, got %s", result.Question.ID)
	}
	if result.Meta.ExcludedCount != 2 {
		t.Errorf("expected excluded count 2, got %d", result.Meta.ExcludedCount)
	}
}

func TestNextQuestion_HistoryFailureDegradesToEmpty(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", "Algebra", "", "q1", "q2")
	store.historyErr = errors.New("history store offline")
	store.masteryErr = errors.New("mastery store offline")
	svc := NewPracticeService(store, selection.NewSelectorWithSource(rand.NewSource(2)))

	result, err := svc.NextQuestion(context.Background(), NextQuestionInput{UserID: "u1", QuizID: "quiz1"})
	if err != nil {
		t.Fatalf("read failures must degrade, not fail: %v", err)
	}
	if result.Question == nil {
		t.Fatal("expected a question under degraded reads")
	}
	if result.Meta.UnansweredCount != 2 {
		t.Errorf("degraded history must count all questions unanswered, got %d", result.Meta.UnansweredCount)
	}
}

func TestNextQuestion_TopicInferredFromQuiz(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", "Geometry", "", "q1")
	svc := NewPracticeService(store, nil)

	result, err := svc.NextQuestion(context.Background(), NextQuestionInput{UserID: "u1", QuizID: "quiz1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Meta.Topic != "Geometry" {
		t.Errorf("expected topic Geometry, got %s", result.Meta.Topic)
	}
}

func TestNextQuestion_DueFlagFromMastery(t *testing.T) {
	store := newFakeStore()
	seedQuiz(store, "quiz1", "Algebra", "", "q1")
	store.mastery["u1|Algebra"] = &models.UserMastery{
		UserID: "u1", Topic: "Algebra", Rating: 1250,
		NextReviewAt: time.Now().Add(-time.Hour),
	}
	svc := NewPracticeService(store, nil)

	result, err := svc.NextQuestion(context.Background(), NextQuestionInput{UserID: "u1", QuizID: "quiz1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Meta.Due {
		t.Error("expected due flag when next review has passed")
	}
}

func TestGetMastery(t *testing.T) {
	store := newFakeStore()
	store.mastery["u1|Algebra"] = &models.UserMastery{
		UserID: "u1", Topic: "Algebra", Rating: 1300, Streak: 2,
		NextReviewAt: time.Now().Add(48 * time.Hour),
	}
	svc := NewPracticeService(store, nil)

	status, err := svc.GetMastery(context.Background(), "u1", "Algebra")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Due {
		t.Error("review 48h out must not be due")
	}
	if status.Mastery.Rating != 1300 {
		t.Errorf("expected rating 1300, got %.2f", status.Mastery.Rating)
	}

	if _, err := svc.GetMastery(context.Background(), "u1", "Unknown"); !errors.Is(err, ErrMasteryNotFound) {
		t.Fatalf("expected ErrMasteryNotFound, got %v", err)
	}
}
