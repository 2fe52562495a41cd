package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService chunks and stores document text.
type IngestService struct {
	docs     driven.DocumentStore
	chunker  driven.Chunker
	indexes  *IndexManager
	embedder *EmbeddingGateway

	eager bool
	now   func() time.Time
	newID func() string
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithEagerIndex builds the vector index during ingestion. The embedder
// is called before anything is stored, so a failed embedding leaves the
// previous version of the document untouched.
func WithEagerIndex(embedder *EmbeddingGateway) IngestOption {
	return func(s *IngestService) {
		s.eager = embedder != nil
		s.embedder = embedder
	}
}

// WithIngestClock overrides the time source used to stamp documents.
func WithIngestClock(now func() time.Time) IngestOption {
	return func(s *IngestService) {
		s.now = now
	}
}

// WithIDGenerator overrides how document ids are generated.
func WithIDGenerator(newID func() string) IngestOption {
	return func(s *IngestService) {
		s.newID = newID
	}
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	docs driven.DocumentStore,
	chunker driven.Chunker,
	indexes *IndexManager,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		docs:    docs,
		chunker: chunker,
		indexes: indexes,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestDocument chunks rawText and stores it as documentID for ownerID,
// replacing any earlier version. An empty documentID gets a generated one.
func (s *IngestService) IngestDocument(
	ctx context.Context, ownerID, documentID, title, rawText string,
) (*domain.IngestResult, error) {
	logger.Section("Ingest")

	ownerID = strings.TrimSpace(ownerID)
	documentID = strings.TrimSpace(documentID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}
	if !utf8.ValidString(rawText) {
		return nil, fmt.Errorf("%w: text is not valid UTF-8", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(rawText) == "" {
		return nil, fmt.Errorf("%w: document has no text", domain.ErrInvalidInput)
	}
	if documentID == "" {
		documentID = s.newID()
	}
	if strings.TrimSpace(title) == "" {
		title = documentID
	}

	ctx, span := tracer().Start(ctx, "ingest")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", documentID))

	chunks, err := s.chunker.Chunk(ownerID, documentID, rawText)
	if err != nil {
		return nil, recordSpanError(span, err)
	}
	span.SetAttributes(attribute.Int("document.chunks", len(chunks)))
	logger.Debug("Chunked %d runes into %d chunks", utf8.RuneCountInString(rawText), len(chunks))

	var vectors [][]float32
	if s.eager {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vectors, err = s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			logger.Warn("Embedding failed, document not stored: %v", err)
			return nil, recordSpanError(span, err)
		}
	}

	// Ownership check, save and index install happen as one step per id.
	unlock := s.indexes.LockDocument(documentID)
	defer unlock()

	now := s.now()
	createdAt := now
	existing, err := s.docs.GetDocument(ctx, documentID)
	switch {
	case err == nil:
		if existing.OwnerID != ownerID {
			return nil, recordSpanError(span, fmt.Errorf("%w: document %s", domain.ErrAlreadyExists, documentID))
		}
		createdAt = existing.CreatedAt
		logger.Debug("Re-ingesting document %s", documentID)
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, recordSpanError(span, fmt.Errorf("get document: %w", err))
	}

	doc := &domain.Document{
		ID:        documentID,
		OwnerID:   ownerID,
		Title:     title,
		Content:   rawText,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}
	if err := s.docs.SaveDocument(ctx, doc, chunks); err != nil {
		return nil, recordSpanError(span, fmt.Errorf("save document: %w", err))
	}

	indexed := false
	if !s.eager {
		s.indexes.Invalidate(documentID)
	} else {
		ticket := s.indexes.Reserve(documentID)
		cached, err := s.indexes.Install(ticket, chunks, vectors)
		if err != nil {
			// The document is stored; the index is rebuilt lazily instead.
			logger.Warn("Eager index build failed for %s: %v", documentID, err)
		}
		indexed = cached
	}

	logger.Info("Ingested %s: %d chunks", documentID, len(chunks))
	return &domain.IngestResult{
		DocumentID: documentID,
		Chunks:     len(chunks),
		Indexed:    indexed,
	}, nil
}
