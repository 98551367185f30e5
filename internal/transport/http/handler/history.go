package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campusmate/internal/app"
	"campusmate/internal/transport/http/response"
)

type HistoryHandler struct {
	historyService *app.HistoryService
}

type SaveQuizResultRequest struct {
	Topic          string `json:"topic" binding:"required,max=256"`
	Score          int    `json:"score" binding:"min=0"`
	TotalQuestions int    `json:"total_questions" binding:"required"`
}

func NewHistoryHandler(historyService *app.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

func (h *HistoryHandler) SaveQuizResult(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req SaveQuizResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	percentage, err := h.historyService.SaveResult(c.Request.Context(), app.SaveQuizResultInput{
		UserID:         userID,
		Topic:          req.Topic,
		Score:          req.Score,
		TotalQuestions: req.TotalQuestions,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidQuizResult), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrResultEnqueue):
			response.Error(c, http.StatusServiceUnavailable, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "save quiz result failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Quiz result saved successfully",
		"percentage": percentage,
	})
}

func (h *HistoryHandler) ListQuizHistory(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	history, err := h.historyService.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list quiz history failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h *HistoryHandler) StudyPlan(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	plan, err := h.historyService.Recommend(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "build study plan failed")
		}
		return
	}
	c.JSON(http.StatusOK, plan)
}
