package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	docs     *memory.DocumentStore
	history  *memory.HistoryStore
	shares   *memory.ShareStore
	embedder *keywordEmbedder
	gateway  *EmbeddingGateway
	indexes  *IndexManager
	llm      *stubLLM

	ingest    *IngestService
	answers   *AnswerService
	histories *HistoryService
	documents *DocumentService
}

func newFixture(t *testing.T, maxChars int) *fixture {
	t.Helper()

	f := &fixture{
		docs:     memory.NewDocumentStore(),
		history:  memory.NewHistoryStore(),
		shares:   memory.NewShareStore(),
		embedder: newKeywordEmbedder("cat", "dog", "bird", "fish"),
		llm:      &stubLLM{reply: "It ran."},
	}
	f.gateway = NewEmbeddingGateway(f.embedder, 0)
	f.indexes = NewIndexManager(f.docs, f.gateway, flat.Factory, 8)
	retriever := NewRetriever(f.indexes, f.gateway, 3)

	f.ingest = NewIngestService(f.docs, chunker.New(chunker.WithMaxChars(maxChars)), f.indexes,
		WithIngestClock(func() time.Time { return fixedNow }))
	f.answers = NewAnswerService(f.docs, retriever, f.llm, f.history,
		WithClock(func() time.Time { return fixedNow }))
	f.histories = NewHistoryService(f.history)
	f.documents = NewDocumentService(f.docs, f.indexes, f.llm, nil, "")
	return f
}

func (f *fixture) mustIngest(t *testing.T, owner, id, text string) {
	t.Helper()
	_, err := f.ingest.IngestDocument(context.Background(), owner, id, id, text)
	require.NoError(t, err)
}

func ask(owner, doc, question string, k int) domain.AnswerRequest {
	return domain.AnswerRequest{
		OwnerID:    owner,
		DocumentID: doc,
		Question:   question,
		Model:      string(domain.ModelGPT35Turbo),
		K:          k,
	}
}
