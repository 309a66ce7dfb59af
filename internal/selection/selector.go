package selection

import (
	"math/rand"
	"sort"
	"time"

	"adaptive-service/internal/models"
)

// Selector picks the next question to present from a quiz's question bank,
// preferring never-seen questions and falling back to weakest-first once the
// whole bank has been covered.
type Selector struct {
	rand *rand.Rand
}

// NewSelector creates a selector with a time-seeded random source.
func NewSelector() *Selector {
	return NewSelectorWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewSelectorWithSource creates a selector over the given source so tests
// can drive tie-breaking deterministically.
func NewSelectorWithSource(src rand.Source) *Selector {
	return &Selector{rand: rand.New(src)}
}

// Pick selects exactly one question, or none when the session is exhausted.
//
// Questions with no recorded answers and none in the exclude set form the
// candidate pool; one is drawn uniformly from it. Once the pool is empty the
// selector switches to weakest-first: per-question accuracy ascending, staler
// last answer first, original order as the final tie-break, then a uniform
// draw over the top weakest slice.
func (s *Selector) Pick(questions []models.Question, history []AnswerEvent, criteria *Criteria) *Result {
	if criteria == nil {
		criteria = &Criteria{}
	}

	excluded := make(map[string]bool, len(criteria.ExcludeIDs))
	for _, id := range criteria.ExcludeIDs {
		if id != "" {
			excluded[id] = true
		}
	}

	answered := make(map[string]bool, len(history))
	for _, a := range history {
		if a.QuestionID != "" {
			answered[a.QuestionID] = true
		}
	}

	unanswered := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		if !answered[q.ID] && !excluded[q.ID] {
			unanswered = append(unanswered, q)
		}
	}

	result := &Result{
		TotalQuestions:  len(questions),
		UnansweredCount: len(unanswered),
		Due:             criteria.Due,
	}

	if len(unanswered) > 0 {
		q := unanswered[s.rand.Intn(len(unanswered))]
		result.Question = &q
		result.Strategy = StrategyUnansweredFirst
		return result
	}

	result.Strategy = StrategyWeakestFirst
	if q := s.pickWeakest(questions, history, excluded); q != nil {
		result.Question = q
	}
	return result
}

// scoredQuestion pairs a question with its weakest-first sort keys.
type scoredQuestion struct {
	question models.Question
	index    int
	accuracy float64
	lastAt   time.Time
}

// pickWeakest ranks non-excluded questions weakest-first and draws one at
// random from the candidates tied at the lowest accuracy within the top
// slice. The draw deliberately skips better-known entries in that slice, so
// a strictly weakest question always surfaces while equals still rotate.
func (s *Selector) pickWeakest(questions []models.Question, history []AnswerEvent, excluded map[string]bool) *models.Question {
	stats := make(map[string]questionStats, len(questions))
	for _, a := range history {
		if a.QuestionID == "" {
			continue
		}
		qs := stats[a.QuestionID]
		qs.total++
		if a.Correct {
			qs.correct++
		}
		if a.AnsweredAt.After(qs.lastAt) {
			qs.lastAt = a.AnsweredAt
		}
		stats[a.QuestionID] = qs
	}

	scored := make([]scoredQuestion, 0, len(questions))
	for i, q := range questions {
		if excluded[q.ID] {
			continue
		}
		qs := stats[q.ID]
		// Never-answered questions carry accuracy 0 and rank weakest on
		// purpose: unknown is treated as worst case for prioritization.
		scored = append(scored, scoredQuestion{
			question: q,
			index:    i,
			accuracy: qs.accuracy(),
			lastAt:   qs.lastAt,
		})
	}

	if len(scored) == 0 {
		return nil
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].accuracy != scored[j].accuracy {
			return scored[i].accuracy < scored[j].accuracy
		}
		if !scored[i].lastAt.Equal(scored[j].lastAt) {
			return scored[i].lastAt.Before(scored[j].lastAt)
		}
		return scored[i].index < scored[j].index
	})

	top := weakestSliceSize
	if len(scored) < top {
		top = len(scored)
	}
	// Draw only among entries tied at the lowest accuracy, so a strictly
	// weaker question always surfaces before better-known ones while equal
	// candidates still rotate randomly.
	tied := make([]scoredQuestion, 0, top)
	for _, sc := range scored[:top] {
		if sc.accuracy == scored[0].accuracy {
			tied = append(tied, sc)
		}
	}
	pick := tied[s.rand.Intn(len(tied))]
	return &pick.question
}
