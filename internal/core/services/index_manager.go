package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/keylock"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultIndexCacheSize is the number of document indexes kept in memory
// when no size is configured.
const DefaultIndexCacheSize = 256

// IndexHandle is a built vector index over one document's chunks.
// Slot i of the index holds the embedding of chunk i.
type IndexHandle struct {
	DocumentID string
	BuiltAt    time.Time

	index  driven.VectorIndex
	chunks []domain.Chunk
}

// Len returns the number of indexed chunks.
func (h *IndexHandle) Len() int {
	return len(h.chunks)
}

// Search returns up to k chunks nearest to query, nearest first.
func (h *IndexHandle) Search(query []float32, k int) ([]domain.Chunk, error) {
	if h.index == nil || len(h.chunks) == 0 || k <= 0 {
		return []domain.Chunk{}, nil
	}

	hits, err := h.index.Search(query, k)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Chunk, 0, len(hits))
	for _, hit := range hits {
		if hit.Slot < 0 || hit.Slot >= len(h.chunks) {
			return nil, fmt.Errorf("index slot %d out of range", hit.Slot)
		}
		out = append(out, h.chunks[hit.Slot])
	}
	return out, nil
}

// IndexManager owns the per-document vector indexes.
//
// Indexes are built on first use from the stored chunks. Concurrent requests
// for the same document share one build. Re-ingesting or deleting a document
// invalidates its index; work that started before the invalidation is
// discarded rather than cached.
type IndexManager struct {
	docs     driven.DocumentStore
	embedder *EmbeddingGateway
	factory  driven.VectorIndexFactory

	group   singleflight.Group
	writers keylock.Map

	mu      sync.Mutex
	handles *lru.Cache[string, *IndexHandle]
	tickets map[string]*Ticket
	seq     uint64

	builds metric.Int64Counter
}

// Ticket stands for one version of a document's index. Invalidation marks
// the current ticket stale, so an index assembled under it is not cached.
// Tickets are only tracked while a build or reservation holds them.
type Ticket struct {
	documentID string
	seq        uint64
	refs       int
	stale      bool
}

// NewIndexManager creates an index manager. cacheSize bounds how many
// document indexes stay resident; zero or less uses DefaultIndexCacheSize.
func NewIndexManager(
	docs driven.DocumentStore,
	embedder *EmbeddingGateway,
	factory driven.VectorIndexFactory,
	cacheSize int,
) *IndexManager {
	if cacheSize <= 0 {
		cacheSize = DefaultIndexCacheSize
	}
	// lru.New only fails for non-positive sizes.
	handles, _ := lru.New[string, *IndexHandle](cacheSize)
	return &IndexManager{
		docs:     docs,
		embedder: embedder,
		factory:  factory,
		handles:  handles,
		tickets:  make(map[string]*Ticket),
		builds:   counter("docqa.index.builds", "Vector index builds"),
	}
}

// LockDocument serialises writers of one document: ingestion, deletion
// and summary updates. Readers never take it.
func (m *IndexManager) LockDocument(documentID string) (unlock func()) {
	return m.writers.Lock(documentID)
}

// Get returns the index for documentID, building it if needed.
func (m *IndexManager) Get(ctx context.Context, documentID string) (*IndexHandle, error) {
	m.mu.Lock()
	if h, ok := m.handles.Get(documentID); ok {
		m.mu.Unlock()
		return h, nil
	}
	t := m.acquire(documentID)
	m.mu.Unlock()

	key := documentID + "#" + strconv.FormatUint(t.seq, 10)
	ch := m.group.DoChan(key, func() (any, error) {
		// The build is shared, so one caller giving up must not cancel it.
		return m.build(context.WithoutCancel(ctx), t)
	})

	// Each waiter keeps its reference until the build returns, so the
	// ticket stays visible to Invalidate for the whole build.
	select {
	case <-ctx.Done():
		go func() {
			<-ch
			m.releaseTicket(t)
		}()
		return nil, ctx.Err()
	case res := <-ch:
		m.releaseTicket(t)
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*IndexHandle), nil
	}
}

// Reserve invalidates the index for documentID and returns a ticket for
// the version the caller is about to install. The caller must pass it to
// Install exactly once.
func (m *IndexManager) Reserve(documentID string) *Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.invalidateLocked(documentID)
	return m.acquire(documentID)
}

// Install caches an index built from chunks and their precomputed vectors,
// unless the document was invalidated after t was reserved. It reports
// whether the index was cached.
func (m *IndexManager) Install(t *Ticket, chunks []domain.Chunk, vectors [][]float32) (bool, error) {
	h, err := m.assemble(t.documentID, chunks, vectors)

	m.mu.Lock()
	cached := err == nil && m.cacheLocked(t, h)
	m.release(t)
	m.mu.Unlock()

	if err != nil {
		return false, err
	}
	if cached {
		m.builds.Add(context.Background(), 1, metric.WithAttributes(attribute.String("mode", "eager")))
	}
	return cached, nil
}

// Invalidate drops the cached index for documentID. Builds already in
// flight finish but their result is not cached.
func (m *IndexManager) Invalidate(documentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidateLocked(documentID)
}

// Cached returns the number of resident indexes.
func (m *IndexManager) Cached() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handles.Len()
}

// Pending returns the number of documents with a build or reservation in
// flight.
func (m *IndexManager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tickets)
}

func (m *IndexManager) invalidateLocked(documentID string) {
	if t, ok := m.tickets[documentID]; ok {
		t.stale = true
		delete(m.tickets, documentID)
	}
	m.handles.Remove(documentID)
	logger.Debug("Index invalidated for document %s", documentID)
}

// acquire returns the current ticket for documentID with one more
// reference. Caller holds m.mu.
func (m *IndexManager) acquire(documentID string) *Ticket {
	t, ok := m.tickets[documentID]
	if !ok {
		m.seq++
		t = &Ticket{documentID: documentID, seq: m.seq}
		m.tickets[documentID] = t
	}
	t.refs++
	return t
}

// release drops one reference and forgets t once nothing holds it.
// Caller holds m.mu.
func (m *IndexManager) release(t *Ticket) {
	t.refs--
	if t.refs <= 0 && m.tickets[t.documentID] == t {
		delete(m.tickets, t.documentID)
	}
}

func (m *IndexManager) releaseTicket(t *Ticket) {
	m.mu.Lock()
	m.release(t)
	m.mu.Unlock()
}

// cacheLocked caches h unless t went stale. Caller holds m.mu.
func (m *IndexManager) cacheLocked(t *Ticket, h *IndexHandle) bool {
	if t.stale {
		logger.Debug("Discarding stale index for document %s", t.documentID)
		return false
	}
	m.handles.Add(t.documentID, h)
	return true
}

func (m *IndexManager) build(ctx context.Context, t *Ticket) (*IndexHandle, error) {
	documentID := t.documentID
	ctx, span := tracer().Start(ctx, "index.build")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", documentID))

	done := logger.Timed("index build " + documentID)
	defer done()

	chunks, err := m.docs.GetChunks(ctx, documentID)
	if err != nil {
		return nil, recordSpanError(span, fmt.Errorf("load chunks: %w", err))
	}
	span.SetAttributes(attribute.Int("document.chunks", len(chunks)))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, recordSpanError(span, err)
	}

	h, err := m.assemble(documentID, chunks, vectors)
	if err != nil {
		return nil, recordSpanError(span, err)
	}

	m.mu.Lock()
	m.cacheLocked(t, h)
	m.mu.Unlock()

	m.builds.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", "lazy")))
	logger.Debug("Built index for %s: %d chunks", documentID, len(chunks))
	return h, nil
}

func (m *IndexManager) assemble(documentID string, chunks []domain.Chunk, vectors [][]float32) (*IndexHandle, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("%d vectors for %d chunks", len(vectors), len(chunks))
	}

	h := &IndexHandle{
		DocumentID: documentID,
		BuiltAt:    time.Now(),
		chunks:     append([]domain.Chunk(nil), chunks...),
	}
	if len(chunks) == 0 {
		return h, nil
	}

	h.index = m.factory(len(vectors[0]))
	for i, vec := range vectors {
		slot, err := h.index.Insert(vec)
		if err != nil {
			return nil, fmt.Errorf("insert chunk %d: %w", i, err)
		}
		if slot != i {
			return nil, fmt.Errorf("index assigned slot %d to chunk %d", slot, i)
		}
	}
	return h, nil
}
