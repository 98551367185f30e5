package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"campusmate/internal/ai"
	"campusmate/internal/rag"
)

// fakeStreamer replays canned deltas or fails, capturing the prompt it got.
type fakeStreamer struct {
	deltas   []string
	err      error
	messages []ai.ChatMessage
}

func (f *fakeStreamer) StreamComplete(ctx context.Context, messages []ai.ChatMessage, onChunk func(string) error) (string, error) {
	f.messages = messages
	var full strings.Builder
	for _, d := range f.deltas {
		if err := onChunk(d); err != nil {
			return "", err
		}
		full.WriteString(d)
	}
	if f.err != nil {
		return "", f.err
	}
	return full.String(), nil
}

func collectDeltas(dst *[]string) func(string) error {
	return func(delta string) error {
		*dst = append(*dst, delta)
		return nil
	}
}

func TestProcessDocumentReplacesStore(t *testing.T) {
	store := rag.NewStore()
	store.AddDocument("An earlier document that should disappear entirely on upload.", "old.txt")
	svc := NewStudyService(store, &fakeStreamer{}, 6000, 5)

	doc := "Gradient descent minimizes a loss function iteratively. " +
		"Each step moves against the gradient of the loss surface. " +
		"The learning rate controls how large every step is."
	result, err := svc.ProcessDocument("ml.txt", strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}
	if !strings.HasPrefix(result.SessionID, "session-") {
		t.Errorf("SessionID = %q, want session- prefix", result.SessionID)
	}
	if result.ExtractedText != doc {
		t.Errorf("ExtractedText = %q, want original text", result.ExtractedText)
	}
	if result.ChunkCount != 1 {
		t.Errorf("ChunkCount = %d, want 1", result.ChunkCount)
	}

	chunks := store.Retrieve("", 10)
	for _, c := range chunks {
		if strings.Contains(c.Text, "earlier document") {
			t.Error("previous document survived the upload")
		}
	}
}

func TestProcessDocumentEmptyFile(t *testing.T) {
	store := rag.NewStore()
	svc := NewStudyService(store, &fakeStreamer{}, 6000, 5)

	result, err := svc.ProcessDocument("blank.txt", strings.NewReader("   \n  "))
	if err != nil {
		t.Fatalf("ProcessDocument() error = %v", err)
	}
	if result.ExtractedText != emptyDocumentText {
		t.Errorf("ExtractedText = %q, want placeholder", result.ExtractedText)
	}
	if store.Len() == 0 {
		t.Error("store should hold the placeholder chunk")
	}
}

func TestStreamGenerateValidation(t *testing.T) {
	svc := NewStudyService(rag.NewStore(), &fakeStreamer{}, 6000, 5)

	if err := svc.StreamGenerate(context.Background(), GenerateKind("poem"), "text", func(string) error { return nil }); !errors.Is(err, ErrInvalidGenerate) {
		t.Errorf("invalid kind: error = %v, want ErrInvalidGenerate", err)
	}
	if err := svc.StreamGenerate(context.Background(), GenerateExplain, "", func(string) error { return nil }); !errors.Is(err, ErrNoContent) {
		t.Errorf("empty store: error = %v, want ErrNoContent", err)
	}
}

func TestStreamGenerateProvidedTextBypassesStore(t *testing.T) {
	store := rag.NewStore()
	store.AddDocument("Stored chapter about photosynthesis and chloroplast membranes.", "bio.txt")
	streamer := &fakeStreamer{deltas: []string{"answer"}}
	svc := NewStudyService(store, streamer, 6000, 5)

	err := svc.StreamGenerate(context.Background(), GenerateExplain, "Client-supplied text about calculus.", func(string) error { return nil })
	if err != nil {
		t.Fatalf("StreamGenerate() error = %v", err)
	}

	user := streamer.messages[len(streamer.messages)-1].Content
	if !strings.Contains(user, "Client-supplied text about calculus.") {
		t.Errorf("prompt missing supplied text: %q", user)
	}
	if strings.Contains(user, "photosynthesis") {
		t.Errorf("prompt leaked stored chunks despite supplied text: %q", user)
	}
}

func TestStreamGenerateRetrievalJoin(t *testing.T) {
	store := rag.NewStore()
	store.AddDocument(
		"The French Revolution began in 1789 with fiscal crisis. "+
			"The Estates-General convened for the first time since 1614. "+
			"The storming of the Bastille became its enduring symbol. "+
			"The monarchy was abolished and a republic declared in 1792.",
		"history.txt",
	)
	streamer := &fakeStreamer{deltas: []string{"ok"}}
	svc := NewStudyService(store, streamer, 6000, 5)

	if err := svc.StreamGenerate(context.Background(), GenerateQuiz, "", func(string) error { return nil }); err != nil {
		t.Fatalf("StreamGenerate() error = %v", err)
	}

	user := streamer.messages[len(streamer.messages)-1].Content
	if !strings.Contains(user, "\n---\n") {
		t.Errorf("retrieved chunks not joined with separator: %q", user)
	}
	if streamer.messages[0].Role != "system" {
		t.Errorf("first message role = %q, want system", streamer.messages[0].Role)
	}
}

func TestTruncateForContext(t *testing.T) {
	svc := NewStudyService(rag.NewStore(), &fakeStreamer{}, 100, 5)

	short := strings.Repeat("a", 100)
	if got := svc.truncateForContext(short); got != short {
		t.Errorf("text at the limit should pass unchanged")
	}

	long := strings.Repeat("b", 250)
	got := svc.truncateForContext(long)
	if !strings.HasSuffix(got, truncationMarker) {
		t.Fatalf("truncated text missing marker: %q", got[len(got)-60:])
	}
	body := strings.TrimSuffix(got, truncationMarker)
	if len(body) != 100 {
		t.Errorf("truncated body length = %d, want 100", len(body))
	}
	if body != long[:100] {
		t.Error("truncation is not prefix-preserving")
	}
}

func TestStreamFailureFallsBackInBand(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
	}{
		{"context size exceeded", errors.New("llm api status 413: Context size exceeded"), contextLimitFallback},
		{"generic failure", errors.New("llm api status 500: upstream unavailable"), genericFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streamer := &fakeStreamer{deltas: []string{"partial "}, err: tt.err}
			svc := NewStudyService(rag.NewStore(), streamer, 6000, 5)

			var deltas []string
			err := svc.StreamGenerate(context.Background(), GenerateExplain, "some document text", collectDeltas(&deltas))
			if err != nil {
				t.Fatalf("StreamGenerate() error = %v, want nil after in-band fallback", err)
			}
			if len(deltas) != 2 {
				t.Fatalf("got %d deltas %v, want partial output plus one fallback", len(deltas), deltas)
			}
			if deltas[len(deltas)-1] != tt.fallback {
				t.Errorf("fallback delta = %q, want %q", deltas[len(deltas)-1], tt.fallback)
			}
		})
	}
}

func TestStreamChat(t *testing.T) {
	streamer := &fakeStreamer{deltas: []string{"hi"}}
	svc := NewStudyService(rag.NewStore(), streamer, 6000, 5)

	if err := svc.StreamChat(context.Background(), nil, "doc", func(string) error { return nil }); !errors.Is(err, ErrNoMessages) {
		t.Errorf("empty messages: error = %v, want ErrNoMessages", err)
	}

	history := []ai.ChatMessage{
		{Role: "user", Content: "What is this document about?"},
		{Role: "assistant", Content: "It covers thermodynamics."},
		{Role: "user", Content: "Explain the second law."},
	}
	if err := svc.StreamChat(context.Background(), history, "A document on thermodynamics.", func(string) error { return nil }); err != nil {
		t.Fatalf("StreamChat() error = %v", err)
	}
	if len(streamer.messages) != len(history)+1 {
		t.Fatalf("prompt has %d messages, want system + %d history", len(streamer.messages), len(history))
	}
	if !strings.Contains(streamer.messages[0].Content, "A document on thermodynamics.") {
		t.Errorf("system message missing document context")
	}
	if streamer.messages[3].Content != "Explain the second law." {
		t.Errorf("history order not preserved")
	}
}

func TestStreamChatNoContext(t *testing.T) {
	svc := NewStudyService(rag.NewStore(), &fakeStreamer{}, 6000, 5)
	msgs := []ai.ChatMessage{{Role: "user", Content: "hello"}}
	if err := svc.StreamChat(context.Background(), msgs, "", func(string) error { return nil }); !errors.Is(err, ErrNoChatContext) {
		t.Errorf("error = %v, want ErrNoChatContext", err)
	}
}

func TestStreamAssistantPersona(t *testing.T) {
	streamer := &fakeStreamer{deltas: []string{"study tips"}}
	svc := NewStudyService(rag.NewStore(), streamer, 6000, 5)

	msgs := []ai.ChatMessage{{Role: "user", Content: "How do I prepare for finals?"}}
	if err := svc.StreamAssistant(context.Background(), msgs, func(string) error { return nil }); err != nil {
		t.Fatalf("StreamAssistant() error = %v", err)
	}
	if !strings.Contains(streamer.messages[0].Content, "academic assistant") {
		t.Errorf("system prompt missing persona: %q", streamer.messages[0].Content)
	}
}
