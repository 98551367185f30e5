package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campusmate/internal/ai"
	"campusmate/internal/app"
	"campusmate/internal/transport/http/response"
)

// AIChatHandler serves the general academic-assistant chat, independent of
// any uploaded document.
type AIChatHandler struct {
	studyService *app.StudyService
}

type AssistantChatRequest struct {
	Messages []ai.ChatMessage `json:"messages"`
}

func NewAIChatHandler(studyService *app.StudyService) *AIChatHandler {
	return &AIChatHandler{studyService: studyService}
}

func (h *AIChatHandler) Chat(c *gin.Context) {
	var req AssistantChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if len(req.Messages) == 0 {
		response.Error(c, http.StatusBadRequest, app.ErrNoMessages.Error())
		return
	}

	streamPlainText(c, func(onDelta func(string) error) error {
		return h.studyService.StreamAssistant(c.Request.Context(), req.Messages, onDelta)
	})
}
