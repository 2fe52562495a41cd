package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// keywordEmbedder embeds text as a presence vector over a fixed vocabulary.
// Texts sharing a keyword are close; texts sharing none are equidistant.
type keywordEmbedder struct {
	vocab []string

	embedCalls atomic.Int32
	batchCalls atomic.Int32

	err error

	// entered, when set, receives once per batch call before gate is awaited.
	entered chan struct{}
	gate    chan struct{}
}

func newKeywordEmbedder(vocab ...string) *keywordEmbedder {
	return &keywordEmbedder{vocab: vocab}
}

func (e *keywordEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, len(e.vocab))
	for i, word := range e.vocab {
		if strings.Contains(lower, word) {
			vec[i] = 1
		}
	}
	return vec
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.embedCalls.Add(1)
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.batchCalls.Add(1)
	if e.entered != nil {
		e.entered <- struct{}{}
	}
	if e.gate != nil {
		<-e.gate
	}
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = e.vector(text)
	}
	return out, nil
}

func (e *keywordEmbedder) Dimensions() int              { return len(e.vocab) }
func (e *keywordEmbedder) ModelName() string            { return "keyword" }
func (e *keywordEmbedder) Ping(_ context.Context) error { return nil }
func (e *keywordEmbedder) Close() error                 { return nil }

var _ driven.EmbeddingService = (*keywordEmbedder)(nil)

// stubLLM returns a fixed reply, or the result of respond when set.
type stubLLM struct {
	reply   string
	err     error
	respond func(messages []driven.ChatMessage) string

	mu       sync.Mutex
	calls    int
	messages [][]driven.ChatMessage
	options  []driven.ChatOptions
}

func (l *stubLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	l.mu.Lock()
	l.calls++
	l.messages = append(l.messages, messages)
	l.options = append(l.options, opts)
	l.mu.Unlock()

	if l.err != nil {
		return "", l.err
	}
	if l.respond != nil {
		return l.respond(messages), nil
	}
	return l.reply, nil
}

func (l *stubLLM) ModelName() string            { return "stub" }
func (l *stubLLM) Ping(_ context.Context) error { return nil }
func (l *stubLLM) Close() error                 { return nil }

func (l *stubLLM) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func (l *stubLLM) lastMessages() []driven.ChatMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.messages) == 0 {
		return nil
	}
	return l.messages[len(l.messages)-1]
}

var _ driven.LLMService = (*stubLLM)(nil)

// stubPrompts serves templates from a map.
type stubPrompts map[string]string

func (p stubPrompts) Load(name string) (string, error) {
	tpl, ok := p[name]
	if !ok {
		return "", errors.New("unknown prompt " + name)
	}
	return tpl, nil
}

var errProvider = errors.New("provider down")
