package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campusmate/internal/ai"
	"campusmate/internal/app"
	"campusmate/internal/extract"
	"campusmate/internal/transport/http/response"
)

type QuizHandler struct {
	studyService *app.StudyService
	maxFileBytes int64
}

type GenerateRequest struct {
	Type         string `json:"type"`
	DocumentText string `json:"documentText"`
}

type DocumentChatRequest struct {
	Messages     []ai.ChatMessage `json:"messages"`
	DocumentText string           `json:"documentText"`
}

func NewQuizHandler(studyService *app.StudyService, maxFileBytes int64) *QuizHandler {
	if maxFileBytes <= 0 {
		maxFileBytes = 10 << 20
	}
	return &QuizHandler{
		studyService: studyService,
		maxFileBytes: maxFileBytes,
	}
}

// Upload accepts a multipart form with "file", extracts its text and loads
// the chunk store. Extraction failures keep the original contract: a 500 with
// the failure text in "details".
func (h *QuizHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No file provided")
		return
	}
	if file.Size > h.maxFileBytes {
		response.Error(c, http.StatusBadRequest, "File too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.ErrorWithDetails(c, http.StatusInternalServerError, "Failed to process document", err.Error())
		return
	}
	defer f.Close()

	result, err := h.studyService.ProcessDocument(file.Filename, f)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			response.ErrorWithDetails(c, http.StatusInternalServerError, "Failed to process document", unwrapMessage(err))
			return
		}
		response.ErrorWithDetails(c, http.StatusInternalServerError, "Failed to process document", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"sessionId":     result.SessionID,
		"extractedText": result.ExtractedText,
		"message":       "Document processed successfully",
	})
}

func (h *QuizHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	kind := app.GenerateKind(req.Type)
	if kind != app.GenerateExplain && kind != app.GenerateQuiz {
		response.Error(c, http.StatusBadRequest, app.ErrInvalidGenerate.Error())
		return
	}

	streamPlainText(c, func(onDelta func(string) error) error {
		return h.studyService.StreamGenerate(c.Request.Context(), kind, req.DocumentText, onDelta)
	})
}

func (h *QuizHandler) Chat(c *gin.Context) {
	var req DocumentChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if len(req.Messages) == 0 {
		response.Error(c, http.StatusBadRequest, app.ErrNoMessages.Error())
		return
	}

	streamPlainText(c, func(onDelta func(string) error) error {
		return h.studyService.StreamChat(c.Request.Context(), req.Messages, req.DocumentText, onDelta)
	})
}

// streamPlainText runs the producer against a chunked text/plain response.
// Errors returned before the first delta still map to JSON statuses; once
// streaming begins the producer reports failures in-band.
func streamPlainText(c *gin.Context, produce func(onDelta func(string) error) error) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, "streaming not supported")
		return
	}

	started := false
	err := produce(func(delta string) error {
		if !started {
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Writer.WriteHeader(http.StatusOK)
			started = true
		}
		if _, writeErr := c.Writer.WriteString(delta); writeErr != nil {
			return writeErr
		}
		flusher.Flush()
		return nil
	})
	if err != nil && !started {
		switch {
		case errors.Is(err, app.ErrNoContent),
			errors.Is(err, app.ErrNoChatContext),
			errors.Is(err, app.ErrNoMessages),
			errors.Is(err, app.ErrInvalidGenerate):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to generate content")
		}
		return
	}

	// a stream that produced nothing still commits an empty 200
	if !started {
		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Writer.WriteHeader(http.StatusOK)
		flusher.Flush()
	}
}

// unwrapMessage strips the sentinel prefix so the user sees only the
// human-readable part.
func unwrapMessage(err error) string {
	msg := err.Error()
	if unwrapped := errors.Unwrap(err); unwrapped != nil {
		prefix := unwrapped.Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}
