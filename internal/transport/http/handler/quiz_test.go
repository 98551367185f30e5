package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"campusmate/internal/ai"
	"campusmate/internal/app"
	"campusmate/internal/rag"
)

type stubStreamer struct {
	deltas []string
	err    error
}

func (s *stubStreamer) StreamComplete(ctx context.Context, messages []ai.ChatMessage, onChunk func(string) error) (string, error) {
	for _, d := range s.deltas {
		if err := onChunk(d); err != nil {
			return "", err
		}
	}
	return strings.Join(s.deltas, ""), s.err
}

func newQuizRouter(store *rag.Store, streamer app.ChatStreamer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := app.NewStudyService(store, streamer, 6000, 5)
	h := NewQuizHandler(svc, 10<<20)

	router := gin.New()
	router.POST("/api/quizzes/upload", h.Upload)
	router.POST("/api/quizzes/generate", h.Generate)
	router.POST("/api/quizzes/chat", h.Chat)
	return router
}

func multipartFile(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadText(t *testing.T) {
	store := rag.NewStore()
	router := newQuizRouter(store, &stubStreamer{})

	body, contentType := multipartFile(t, "notes.txt", "Neural networks learn representations from labeled training data.")
	req := httptest.NewRequest(http.MethodPost, "/api/quizzes/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	sessionID, _ := resp["sessionId"].(string)
	if !strings.HasPrefix(sessionID, "session-") {
		t.Errorf("sessionId = %q, want session- prefix", sessionID)
	}
	if !strings.Contains(resp["extractedText"].(string), "Neural networks") {
		t.Errorf("extractedText missing content")
	}
	if store.Len() == 0 {
		t.Error("upload did not populate the chunk store")
	}
}

func TestUploadMissingFile(t *testing.T) {
	router := newQuizRouter(rag.NewStore(), &stubStreamer{})

	req := httptest.NewRequest(http.MethodPost, "/api/quizzes/upload", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No file provided") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestUploadUnsupportedFormat(t *testing.T) {
	router := newQuizRouter(rag.NewStore(), &stubStreamer{})

	body, contentType := multipartFile(t, "report.docx", "PK\x03\x04 fake zip")
	req := httptest.NewRequest(http.MethodPost, "/api/quizzes/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["error"] != "Failed to process document" {
		t.Errorf("error = %q", resp["error"])
	}
	if !strings.Contains(resp["details"], "File type .docx is not fully supported") {
		t.Errorf("details = %q", resp["details"])
	}
}

func TestGenerateInvalidType(t *testing.T) {
	router := newQuizRouter(rag.NewStore(), &stubStreamer{})

	req := httptest.NewRequest(http.MethodPost, "/api/quizzes/generate",
		strings.NewReader(`{"type":"haiku","documentText":"some text"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Invalid generation type") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGenerateEmptyStore(t *testing.T) {
	router := newQuizRouter(rag.NewStore(), &stubStreamer{})

	req := httptest.NewRequest(http.MethodPost, "/api/quizzes/generate",
		strings.NewReader(`{"type":"explain"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No document content available") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGenerateStreamsPlainText(t *testing.T) {
	streamer := &stubStreamer{deltas: []string{"Chapter one ", "covers recursion."}}
	router := newQuizRouter(rag.NewStore(), streamer)

	req := httptest.NewRequest(http.MethodPost, "/api/quizzes/generate",
		strings.NewReader(`{"type":"explain","documentText":"A chapter about recursion in depth."}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
	if w.Body.String() != "Chapter one covers recursion." {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestGenerateMidStreamFailureKeeps200(t *testing.T) {
	streamer := &stubStreamer{
		deltas: []string{"partial output "},
		err:    errors.New("llm api status 413: Context size exceeded"),
	}
	router := newQuizRouter(rag.NewStore(), streamer)

	req := httptest.NewRequest(http.MethodPost, "/api/quizzes/generate",
		strings.NewReader(`{"type":"quiz","documentText":"A very long document."}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 once streaming has begun", w.Code)
	}
	body := w.Body.String()
	if !strings.HasPrefix(body, "partial output ") {
		t.Errorf("body lost the partial output: %q", body)
	}
	if !strings.Contains(body, "exceeds the model's context window") {
		t.Errorf("body missing the fallback text: %q", body)
	}
}

func TestChatRequiresMessages(t *testing.T) {
	router := newQuizRouter(rag.NewStore(), &stubStreamer{})

	req := httptest.NewRequest(http.MethodPost, "/api/quizzes/chat",
		strings.NewReader(`{"messages":[],"documentText":"doc"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Messages array is required") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestChatStreams(t *testing.T) {
	streamer := &stubStreamer{deltas: []string{"The second law says entropy never decreases."}}
	router := newQuizRouter(rag.NewStore(), streamer)

	payload := `{"messages":[{"role":"user","content":"Explain the second law."}],"documentText":"Thermodynamics notes."}`
	req := httptest.NewRequest(http.MethodPost, "/api/quizzes/chat", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "entropy never decreases") {
		t.Errorf("body = %q", w.Body.String())
	}
}
