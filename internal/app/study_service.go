package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"campusmate/internal/ai"
	"campusmate/internal/extract"
	"campusmate/internal/rag"
)

const (
	truncationMarker = "\n\n[... document truncated to fit the model context ...]"

	contextLimitFallback = "⚠️ The document exceeds the model's context window. Please try again with a shorter document or question."
	genericFallback      = "⚠️ Something went wrong while generating a response. Please try again."

	explainSeedQuery = "summary overview main points"
	quizSeedQuery    = "test questions key facts"

	emptyDocumentText = "No readable content found in the document."
)

var (
	ErrNoContent       = errors.New("No document content available. Please upload a document first.")
	ErrNoChatContext   = errors.New("No document context. Please upload and process a document first.")
	ErrNoMessages      = errors.New("Messages array is required")
	ErrInvalidGenerate = errors.New("Invalid generation type")
)

type GenerateKind string

const (
	GenerateExplain GenerateKind = "explain"
	GenerateQuiz    GenerateKind = "quiz"
)

// ChatStreamer is the LLM call behind every streamed response. Implemented by
// ai.OpenAICompatibleClient; tests substitute a fake.
type ChatStreamer interface {
	StreamComplete(ctx context.Context, messages []ai.ChatMessage, onChunk func(string) error) (string, error)
}

// StudyService owns the document pipeline: upload/extract/chunk, and the
// explain, quiz and tutoring flows that stream LLM output back to the client.
type StudyService struct {
	store           *rag.Store
	streamer        ChatStreamer
	maxContextChars int
	retrieveTopK    int
}

func NewStudyService(store *rag.Store, streamer ChatStreamer, maxContextChars, retrieveTopK int) *StudyService {
	if maxContextChars <= 0 {
		maxContextChars = 6000
	}
	if retrieveTopK <= 0 {
		retrieveTopK = 5
	}
	return &StudyService{
		store:           store,
		streamer:        streamer,
		maxContextChars: maxContextChars,
		retrieveTopK:    retrieveTopK,
	}
}

type DocumentResult struct {
	SessionID     string
	ExtractedText string
	ChunkCount    int
}

// ProcessDocument extracts text from the uploaded file and replaces the chunk
// store's contents with it. The session id is an opaque token for the client;
// nothing is looked up by it server-side.
func (s *StudyService) ProcessDocument(filename string, r io.Reader) (*DocumentResult, error) {
	text, err := extract.Text(filename, r)
	if err != nil {
		return nil, err
	}

	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		cleaned = emptyDocumentText
	}

	s.store.Clear()
	count := s.store.AddDocument(cleaned, filename)

	return &DocumentResult{
		SessionID:     "session-" + uuid.NewString(),
		ExtractedText: cleaned,
		ChunkCount:    count,
	}, nil
}

// StreamGenerate builds the explain or quiz prompt over the resolved context
// and streams model output through onDelta. Once streaming has begun, a
// failure is reported in-band: exactly one fallback delta, then a normal end.
func (s *StudyService) StreamGenerate(ctx context.Context, kind GenerateKind, documentText string, onDelta func(string) error) error {
	var seed string
	switch kind {
	case GenerateExplain:
		seed = explainSeedQuery
	case GenerateQuiz:
		seed = quizSeedQuery
	default:
		return ErrInvalidGenerate
	}

	contextText := s.resolveContext(documentText, seed)
	if contextText == "" {
		return ErrNoContent
	}
	contextText = s.truncateForContext(contextText)

	var messages []ai.ChatMessage
	if kind == GenerateExplain {
		messages = []ai.ChatMessage{
			{Role: "system", Content: explainSystemPrompt},
			{Role: "user", Content: "Study the following document and explain what it is about:\n\n" + contextText},
		}
	} else {
		messages = []ai.ChatMessage{
			{Role: "system", Content: quizSystemPrompt},
			{Role: "user", Content: "Generate 15 to 20 multiple choice questions that test understanding of the material in this document:\n\n" + contextText},
		}
	}

	return s.streamWithFallback(ctx, messages, onDelta)
}

// StreamChat answers the student over the document context, carrying the full
// message history. When no document text is supplied the retrieval query is
// the last user message.
func (s *StudyService) StreamChat(ctx context.Context, messages []ai.ChatMessage, documentText string, onDelta func(string) error) error {
	if len(messages) == 0 {
		return ErrNoMessages
	}

	seed := messages[len(messages)-1].Content
	contextText := s.resolveContext(documentText, seed)
	if contextText == "" {
		return ErrNoChatContext
	}
	contextText = s.truncateForContext(contextText)

	prompt := make([]ai.ChatMessage, 0, len(messages)+1)
	prompt = append(prompt, ai.ChatMessage{
		Role:    "system",
		Content: fmt.Sprintf(tutorSystemPromptFormat, contextText),
	})
	prompt = append(prompt, messages...)

	return s.streamWithFallback(ctx, prompt, onDelta)
}

// StreamAssistant is the general academic assistant chat, no document context.
func (s *StudyService) StreamAssistant(ctx context.Context, messages []ai.ChatMessage, onDelta func(string) error) error {
	if len(messages) == 0 {
		return ErrNoMessages
	}

	prompt := make([]ai.ChatMessage, 0, len(messages)+1)
	prompt = append(prompt, ai.ChatMessage{Role: "system", Content: assistantSystemPrompt})
	prompt = append(prompt, messages...)

	return s.streamWithFallback(ctx, prompt, onDelta)
}

// resolveContext prefers client-supplied text; otherwise it joins retrieved
// chunks. Retrieval order is the store's insertion order.
func (s *StudyService) resolveContext(documentText, query string) string {
	if trimmed := strings.TrimSpace(documentText); trimmed != "" {
		return trimmed
	}

	chunks := s.store.Retrieve(query, s.retrieveTopK)
	if len(chunks) == 0 {
		return ""
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, "\n---\n")
}

// truncateForContext enforces a hard character budget, roughly one token per
// four characters. Not a tokenizer-exact limit.
func (s *StudyService) truncateForContext(text string) string {
	if len(text) <= s.maxContextChars {
		return text
	}
	return text[:s.maxContextChars] + truncationMarker
}

func (s *StudyService) streamWithFallback(ctx context.Context, messages []ai.ChatMessage, onDelta func(string) error) error {
	if _, err := s.streamer.StreamComplete(ctx, messages, onDelta); err != nil {
		// Headers are committed once the first delta is written, so the error
		// is surfaced as stream content and the stream ends normally.
		log.Warn().Err(err).Msg("llm stream failed, sending fallback")
		_ = onDelta(classifyStreamFailure(err))
	}
	return nil
}

func classifyStreamFailure(err error) string {
	msg := err.Error()
	if strings.Contains(msg, "Context size") ||
		strings.Contains(msg, "context") ||
		strings.Contains(msg, "exceeded") {
		return contextLimitFallback
	}
	return genericFallback
}

const explainSystemPrompt = "You are a study assistant. Your task is to explain and help people learn. " +
	"Study the received data and explain what it is about. Also answer follow-up " +
	"questions from the user. Use Markdown formatting for readability."

const quizSystemPrompt = `You are a strict output generator. You must generate a JSON array of 15 to 20 multiple choice questions.

IMPORTANT: Questions must be about the SUBJECT MATTER and LEARNING CONTENT inside the document - test the student's understanding of the concepts, definitions, facts, and ideas presented in the text. Do NOT ask meta-questions about the document itself (e.g. "What format is this document?" or "How many sections does this have?").

The output must be a valid JSON array of objects. NO markdown, NO code blocks, just raw JSON.
Each object must have:
- "question": string (tests knowledge from the content)
- "options": array of 4 strings
- "correctAnswer": string (must match one of the options exactly)
- "explanation": string (brief explanation referring to the document content)`

const tutorSystemPromptFormat = `You are a helpful academic tutor assisting a student with a document.
Use the following context to answer the student's questions.
If the answer is not in the context, say you don't find it in the document but try to answer from general knowledge if relevant (and mark it as general knowledge).

CONTEXT:
%s

RULES:
1. Be concise and clear.
2. Use Markdown formatting.
3. Maintain a professional, encouraging tone.`

const assistantSystemPrompt = `You are a strict academic assistant for students.
RULES:
1. ONLY answer questions related to studies, assignments, exams, or academic materials.
2. If a user asks about anything else (movies, games, jokes, general chat), politely decline and steer them back to studying.
3. Be encouraging but focused.
4. Use Markdown for clear formatting.`
