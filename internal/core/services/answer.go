package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService answers questions about a single document.
type AnswerService struct {
	docs      driven.DocumentStore
	retriever *Retriever
	llm       driven.LLMService
	history   driven.HistoryStore
	prompts   driven.PromptStore

	defaultModel domain.Model
	now          func() time.Time

	answers  metric.Int64Counter
	failures metric.Int64Counter
}

// AnswerOption configures an AnswerService.
type AnswerOption func(*AnswerService)

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(m domain.Model) AnswerOption {
	return func(s *AnswerService) {
		if m != "" {
			s.defaultModel = m
		}
	}
}

// WithPromptStore sets the store the system prompt is loaded from.
func WithPromptStore(store driven.PromptStore) AnswerOption {
	return func(s *AnswerService) {
		s.prompts = store
	}
}

// WithClock overrides the time source used to stamp turns.
func WithClock(now func() time.Time) AnswerOption {
	return func(s *AnswerService) {
		s.now = now
	}
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	docs driven.DocumentStore,
	retriever *Retriever,
	llm driven.LLMService,
	history driven.HistoryStore,
	opts ...AnswerOption,
) *AnswerService {
	s := &AnswerService{
		docs:         docs,
		retriever:    retriever,
		llm:          llm,
		history:      history,
		defaultModel: domain.DefaultModel,
		now:          time.Now,
		answers:      counter("docqa.answers", "Questions answered"),
		failures:     counter("docqa.generation.failures", "Failed generation calls"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer retrieves context from the requested document, asks the model and
// records the exchange. Nothing is written to history unless the model
// produced an answer.
func (s *AnswerService) Answer(ctx context.Context, req domain.AnswerRequest) (*domain.Answer, error) {
	logger.Section("Answer")

	owner := strings.TrimSpace(req.OwnerID)
	documentID := strings.TrimSpace(req.DocumentID)
	question := strings.TrimSpace(req.Question)
	if owner == "" || documentID == "" || question == "" {
		return nil, fmt.Errorf("%w: owner, document and question are required", domain.ErrInvalidInput)
	}

	model := domain.Model(strings.TrimSpace(req.Model))
	if model == "" {
		model = s.defaultModel
	}
	if !model.IsSupported() {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedModel, model)
	}

	ctx, span := tracer().Start(ctx, "answer")
	defer span.End()
	span.SetAttributes(
		attribute.String("document.id", documentID),
		attribute.String("llm.model", model.String()),
		attribute.String("prompt.style", req.Style.String()),
	)

	if _, err := ownedDocument(ctx, s.docs, owner, documentID); err != nil {
		return nil, recordSpanError(span, err)
	}
	if s.llm == nil {
		return nil, recordSpanError(span, fmt.Errorf("%w: no generation provider configured", domain.ErrLLMUnavailable))
	}

	chunks, err := s.retriever.Retrieve(ctx, documentID, question, req.K)
	if err != nil {
		logger.Warn("Retrieval failed: %v", err)
		return nil, recordSpanError(span, err)
	}
	span.SetAttributes(attribute.Int("retrieval.chunks", len(chunks)))

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: loadPrompt(s.prompts, driven.PromptSystem)},
		{Role: driven.RoleUser, Content: BuildPrompt(req.Style, JoinContext(chunks), question)},
	}

	done := logger.Timed("generation")
	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Model: model.String()})
	done()
	if err != nil {
		s.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("llm.model", model.String())))
		logger.Warn("Generation failed: %v", err)
		return nil, recordSpanError(span, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err))
	}

	now := s.now()
	turns := []domain.Turn{
		{
			Role:       domain.RoleUser,
			Content:    question,
			Model:      model.String(),
			Type:       domain.RoleUser,
			DocumentID: documentID,
			CreatedAt:  now,
		},
		{
			Role:       domain.RoleAssistant,
			Content:    reply,
			Model:      model.String(),
			Type:       domain.RoleAssistant,
			DocumentID: documentID,
			CreatedAt:  now,
		},
	}
	if err := s.history.Append(ctx, owner, turns); err != nil {
		return nil, recordSpanError(span, fmt.Errorf("record history: %w", err))
	}

	s.answers.Add(ctx, 1, metric.WithAttributes(attribute.String("llm.model", model.String())))
	logger.Info("Answered with %s using %d chunks", model, len(chunks))

	return &domain.Answer{
		Text:    reply,
		Model:   model.String(),
		Context: chunks,
	}, nil
}

// ownedDocument returns the document if it exists and belongs to owner.
// Documents of other owners are reported as not found.
func ownedDocument(ctx context.Context, docs driven.DocumentStore, owner, documentID string) (*domain.Document, error) {
	doc, err := docs.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc.OwnerID != owner {
		return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
	}
	return doc, nil
}

func recordSpanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
