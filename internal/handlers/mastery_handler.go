package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"adaptive-service/internal/service"

	"github.com/gin-gonic/gin"
)

type MasteryHandler struct {
	Service *service.PracticeService
}

func NewMasteryHandler(s *service.PracticeService) *MasteryHandler {
	return &MasteryHandler{Service: s}
}

// GetMastery returns the caller's mastery state for one topic.
func (h *MasteryHandler) GetMastery(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	status, err := h.Service.GetMastery(c.Request.Context(), userID, c.Param("topic"))
	if err != nil {
		if errors.Is(err, service.ErrMasteryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No mastery for topic"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetHistory returns the caller's recent answers on a quiz, newest first.
func (h *MasteryHandler) GetHistory(c *gin.Context) {
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
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)

	answers, err := h.Service.RecentHistory(c.Request.Context(), userID, quizID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": answers, "count": len(answers)})
}
