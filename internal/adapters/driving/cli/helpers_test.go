package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// stubLLM replies with reply, or with respond when set.
type stubLLM struct {
	mu      sync.Mutex
	reply   string
	respond func(messages []driven.ChatMessage) string
	err     error
	models  []string
}

func (l *stubLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.models = append(l.models, opts.Model)
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

// testServices exposes the stores and stubs behind the installed services.
type testServices struct {
	docs    *memory.DocumentStore
	history *memory.HistoryStore
	llm     *stubLLM
}

// env is set by setupTestServices for the running test.
var env *testServices

// setupTestServices installs real services over in-memory stores, an
// offline embedder and a stub LLM. The returned func restores the
// package state, including flag values left behind by earlier commands.
func setupTestServices() func() {
	docs := memory.NewDocumentStore()
	history := memory.NewHistoryStore()
	llm := &stubLLM{reply: "Cats purr when content."}

	gateway := services.NewEmbeddingGateway(local.NewEmbeddingService(64), 0)
	indexes := services.NewIndexManager(docs, gateway, flat.Factory, 8)
	retriever := services.NewRetriever(indexes, gateway, 3)

	SetServices(Services{
		Ingest:     services.NewIngestService(docs, chunker.New(chunker.WithMaxChars(60)), indexes),
		Answer:     services.NewAnswerService(docs, retriever, llm, history),
		History:    services.NewHistoryService(history),
		Document:   services.NewDocumentService(docs, indexes, llm, nil, ""),
		Share:      services.NewShareService(history, memory.NewShareStore()),
		Settings:   services.NewSettingsService(memory.NewConfigStore()),
		Normaliser: normalisers.Default(),
		CheckProviders: func(_ context.Context) []ProviderCheck {
			return []ProviderCheck{{Name: "embedding (local)"}, {Name: "llm (stub)"}}
		},
	})
	env = &testServices{docs: docs, history: history, llm: llm}

	return func() {
		SetServices(Services{})
		env = nil
		resetFlags()
	}
}

func resetFlags() {
	ownerFlag, verbose = "", false
	askModel, askStyle, askK, askJSON, askContext = "", "", 0, false, false
	ingestID, ingestTitle, ingestType, ingestJSON = "", "", "", false
	historyFormat = ""
	statsJSON = false
	documentModel, summaryForce = "", false
	versionShort = false
}

// execute runs the root command with args and returns everything it printed.
func execute(args ...string) (string, error) {
	return executeWithInput("", args...)
}

func executeWithInput(input string, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
