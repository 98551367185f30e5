package rag

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

const (
	sentencesPerChunk = 3
	minSentenceLen    = 20
	defaultLimit      = 5
)

// Chunk is a fragment of extracted document text grouped for retrieval.
type Chunk struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

type ChunkMetadata struct {
	Filename string `json:"filename"`
	Index    int    `json:"index"`
}

// Retriever returns context chunks for a query.
type Retriever interface {
	Retrieve(query string, limit int) []Chunk
}

// Store holds the chunks of the most recently uploaded document. It is shared
// by every request on the process: each upload replaces the previous
// document's chunks for all users.
//
// Retrieve ignores the query and returns a prefix of the stored chunks in
// insertion order. This is a stand-in for a real vector store; an
// embedding-backed Retriever can replace it behind the same interface.
type Store struct {
	mu     sync.RWMutex
	chunks []Chunk
}

func NewStore() *Store {
	return &Store{}
}

// Clear empties the store unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
}

// sentence boundary: ., ! or ? followed by whitespace
var sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)

// AddDocument splits text into sentences, drops short fragments, groups the
// survivors into chunks of three consecutive sentences, and appends them to
// the store. When nothing survives the filter, one fallback chunk holds the
// whole text so retrieval never comes up empty after a successful upload.
func (s *Store) AddDocument(text, filename string) int {
	sentences := splitSentences(text)

	kept := sentences[:0]
	for _, sentence := range sentences {
		if len(strings.TrimSpace(sentence)) > minSentenceLen {
			kept = append(kept, sentence)
		}
	}

	now := time.Now().UnixMilli()
	var chunks []Chunk
	for i := 0; i < len(kept); i += sentencesPerChunk {
		end := i + sentencesPerChunk
		if end > len(kept) {
			end = len(kept)
		}
		chunks = append(chunks, Chunk{
			ID:       fmt.Sprintf("%d-%d", now, i),
			Text:     strings.Join(kept[i:end], " "),
			Metadata: ChunkMetadata{Filename: filename, Index: i},
		})
	}

	if len(chunks) == 0 {
		chunks = append(chunks, Chunk{
			ID:       fmt.Sprintf("%d", now),
			Text:     text,
			Metadata: ChunkMetadata{Filename: filename},
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
	return len(chunks)
}

// Retrieve returns the first limit chunks in insertion order. The query is
// accepted for interface compatibility only; it does not affect selection.
func (s *Store) Retrieve(query string, limit int) []Chunk {
	if limit <= 0 {
		limit = defaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.chunks) == 0 {
		return nil
	}
	if limit > len(s.chunks) {
		limit = len(s.chunks)
	}
	out := make([]Chunk, limit)
	copy(out, s.chunks[:limit])
	return out
}

// Len reports the number of stored chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func splitSentences(text string) []string {
	// keep the terminator with its sentence, then cut at the boundary
	marked := sentenceBoundary.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}
