package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campusmate/internal/app"
	"campusmate/internal/transport/http/response"
)

type AssignmentHandler struct {
	assignmentService *app.AssignmentService
}

type CreateAssignmentRequest struct {
	Title  string `json:"title" binding:"required,max=256"`
	Course string `json:"course" binding:"required,max=128"`
	Status string `json:"status" binding:"max=32"`
	Score  string `json:"score" binding:"max=16"`
}

type UpdateAssignmentRequest struct {
	Title  *string `json:"title"`
	Course *string `json:"course"`
	Status *string `json:"status"`
	Score  *string `json:"score"`
}

func NewAssignmentHandler(assignmentService *app.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

func (h *AssignmentHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	assignments, err := h.assignmentService.List(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list assignments failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

func (h *AssignmentHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	assignment, err := h.assignmentService.Create(app.CreateAssignmentInput{
		UserID: userID,
		Title:  req.Title,
		Course: req.Course,
		Status: req.Status,
		Score:  req.Score,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, "create assignment failed")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"assignment": assignment,
		"message":    "Assignment created",
	})
}

func (h *AssignmentHandler) Get(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil || assignmentID == 0 {
		response.Error(c, http.StatusBadRequest, "invalid assignment id")
		return
	}

	assignment, err := h.assignmentService.Get(userID, assignmentID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

func (h *AssignmentHandler) Update(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil || assignmentID == 0 {
		response.Error(c, http.StatusBadRequest, "invalid assignment id")
		return
	}

	var req UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	assignment, err := h.assignmentService.Update(userID, assignmentID, app.UpdateAssignmentInput{
		Title:  req.Title,
		Course: req.Course,
		Status: req.Status,
		Score:  req.Score,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assignment": assignment,
		"message":    "Assignment updated",
	})
}

func (h *AssignmentHandler) Delete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	assignmentID, err := parseUintParam(c, "id")
	if err != nil || assignmentID == 0 {
		response.Error(c, http.StatusBadRequest, "invalid assignment id")
		return
	}

	if err := h.assignmentService.Delete(userID, assignmentID); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Assignment deleted"})
}

func (h *AssignmentHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrAssignmentNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "assignment operation failed")
	}
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	u, err := strconv.ParseUint(c.Param(key), 10, 64)
	return uint(u), err
}
