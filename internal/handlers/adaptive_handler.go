package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"adaptive-service/internal/metrics"
	"adaptive-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AdaptiveHandler struct {
	Service *service.PracticeService
}

func NewAdaptiveHandler(s *service.PracticeService) *AdaptiveHandler {
	return &AdaptiveHandler{Service: s}
}

// NextQuestion serves the next adaptive question for the caller.
// Query params: quiz_id (required), topic, exclude (csv of question ids),
// exclude_id (single just-answered id, folded into the exclusion list).
func (h *AdaptiveHandler) NextQuestion(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	quizID := c.Query("quiz_id")
	if quizID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quiz_id required"})
		return
	}

	excludeIDs := make([]string, 0)
	for _, id := range strings.Split(c.Query("exclude"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			excludeIDs = append(excludeIDs, id)
		}
	}
	if excludeID := c.Query("exclude_id"); excludeID != "" {
		excludeIDs = append(excludeIDs, excludeID)
	}

	result, err := h.Service.NextQuestion(c.Request.Context(), service.NextQuestionInput{
		UserID:     userID,
		QuizID:     quizID,
		Topic:      c.Query("topic"),
		ExcludeIDs: excludeIDs,
	})
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	metrics.QuestionsServed.WithLabelValues(result.Meta.Strategy).Inc()
	c.JSON(http.StatusOK, gin.H{
		"question": result.Question,
		"meta":     result.Meta,
	})
}

// RecordAnswer records one answered question: Elo rating update, streak,
// next review date, and the append-only answer record.
func (h *AdaptiveHandler) RecordAnswer(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req struct {
		QuizID      string `json:"quiz_id"`
		QuestionID  string `json:"question_id"`
		EssayID     string `json:"essay_id"`
		Topic       string `json:"topic" binding:"required"`
		Correct     *bool  `json:"correct" binding:"required"`
		AnswerIndex *int   `json:"answer_index"`
		TimeMs      *int   `json:"time_ms"`
		Level       string `json:"level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid payload",
			"details": err.Error(),
		})
		return
	}

	result, err := h.Service.RecordAnswer(c.Request.Context(), service.RecordAnswerInput{
		UserID:      userID,
		QuizID:      req.QuizID,
		QuestionID:  req.QuestionID,
		EssayID:     req.EssayID,
		Topic:       req.Topic,
		Correct:     *req.Correct,
		AnswerIndex: req.AnswerIndex,
		TimeMs:      req.TimeMs,
		Level:       req.Level,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if result.Skipped {
		c.JSON(http.StatusOK, gin.H{"ok": true, "notice": result.Notice})
		return
	}

	metrics.AnswersRecorded.WithLabelValues(strconv.FormatBool(*req.Correct)).Inc()
	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"rating_after":   result.RatingAfter,
		"next_review_at": result.NextReviewAt,
	})
}
