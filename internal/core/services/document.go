package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// summaryInputRunes caps how much of a document is sent for summarising
// or entity extraction.
const summaryInputRunes = 4000

// DocumentService manages an owner's documents and LLM-derived views of them.
type DocumentService struct {
	docStore driven.DocumentStore
	indexes  *IndexManager
	llm      driven.LLMService
	prompts  driven.PromptStore

	defaultModel domain.Model
	now          func() time.Time
}

// NewDocumentService creates a new document service. llm may be nil, in
// which case Summarize and Entities fail with domain.ErrLLMUnavailable.
func NewDocumentService(
	docStore driven.DocumentStore,
	indexes *IndexManager,
	llm driven.LLMService,
	prompts driven.PromptStore,
	defaultModel domain.Model,
) *DocumentService {
	if defaultModel == "" {
		defaultModel = domain.DefaultModel
	}
	return &DocumentService{
		docStore:     docStore,
		indexes:      indexes,
		llm:          llm,
		prompts:      prompts,
		defaultModel: defaultModel,
		now:          time.Now,
	}
}

// List returns the owner's documents, newest first.
func (s *DocumentService) List(ctx context.Context, ownerID string) ([]domain.Document, error) {
	ownerID, err := requireOwner(ownerID)
	if err != nil {
		return nil, err
	}
	return s.docStore.ListDocuments(ctx, ownerID)
}

// Get retrieves a document the owner ingested.
func (s *DocumentService) Get(ctx context.Context, ownerID, documentID string) (*domain.Document, error) {
	ownerID, err := requireOwner(ownerID)
	if err != nil {
		return nil, err
	}
	return ownedDocument(ctx, s.docStore, ownerID, documentID)
}

// Chunks returns the document's chunks in order.
func (s *DocumentService) Chunks(ctx context.Context, ownerID, documentID string) ([]domain.Chunk, error) {
	if _, err := s.Get(ctx, ownerID, documentID); err != nil {
		return nil, err
	}
	return s.docStore.GetChunks(ctx, documentID)
}

// Delete removes the document, its chunks and its index.
func (s *DocumentService) Delete(ctx context.Context, ownerID, documentID string) error {
	if _, err := s.Get(ctx, ownerID, documentID); err != nil {
		return err
	}
	unlock := s.lockDocument(documentID)
	defer unlock()

	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if s.indexes != nil {
		s.indexes.Invalidate(documentID)
	}
	logger.Info("Deleted document %s", documentID)
	return nil
}

// Summarize returns the document summary, generating and caching it on
// first use or when force is set.
func (s *DocumentService) Summarize(
	ctx context.Context, ownerID, documentID string, model domain.Model, force bool,
) (string, error) {
	model, err := s.resolveModel(model)
	if err != nil {
		return "", err
	}
	doc, err := s.Get(ctx, ownerID, documentID)
	if err != nil {
		return "", err
	}
	if doc.Summary != "" && !force {
		logger.Debug("Using cached summary for %s", documentID)
		return doc.Summary, nil
	}

	reply, err := s.generate(ctx, model, driven.PromptSummarize, doc.Content)
	if err != nil {
		return "", err
	}
	summary := strings.TrimSpace(reply)

	unlock := s.lockDocument(documentID)
	defer unlock()

	// The document may have been re-ingested while the model was busy.
	current, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return "", fmt.Errorf("reload document: %w", err)
	}
	if current.Content != doc.Content {
		logger.Debug("Document %s changed during summarising, summary not cached", documentID)
		return summary, nil
	}
	if err := s.docStore.UpdateSummary(ctx, documentID, summary, s.now()); err != nil {
		return "", fmt.Errorf("save summary: %w", err)
	}
	return summary, nil
}

func (s *DocumentService) lockDocument(documentID string) (unlock func()) {
	if s.indexes == nil {
		return func() {}
	}
	return s.indexes.LockDocument(documentID)
}

// Entities extracts an entity graph from the document.
func (s *DocumentService) Entities(
	ctx context.Context, ownerID, documentID string, model domain.Model,
) (*domain.EntityGraph, error) {
	model, err := s.resolveModel(model)
	if err != nil {
		return nil, err
	}
	doc, err := s.Get(ctx, ownerID, documentID)
	if err != nil {
		return nil, err
	}

	reply, err := s.generate(ctx, model, driven.PromptEntities, doc.Content)
	if err != nil {
		return nil, err
	}

	graph, err := ParseEntityGraph(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	return graph, nil
}

func (s *DocumentService) resolveModel(model domain.Model) (domain.Model, error) {
	if model == "" {
		model = s.defaultModel
	}
	if !model.IsSupported() {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedModel, model)
	}
	return model, nil
}

func (s *DocumentService) generate(ctx context.Context, model domain.Model, prompt, content string) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: no generation provider configured", domain.ErrLLMUnavailable)
	}

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: loadPrompt(s.prompts, driven.PromptSystem)},
		{Role: driven.RoleUser, Content: fillTemplate(loadPrompt(s.prompts, prompt), truncateRunes(content, summaryInputRunes))},
	}

	done := logger.Timed(prompt)
	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Model: model.String()})
	done()
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	return reply, nil
}

// ParseEntityGraph decodes a model reply into an entity graph. Replies that
// wrap the JSON object in prose are accepted.
func ParseEntityGraph(reply string) (*domain.EntityGraph, error) {
	var graph domain.EntityGraph
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &graph); err != nil {
		start := strings.Index(reply, "{")
		end := strings.LastIndex(reply, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON object in reply: %w", err)
		}
		if err := json.Unmarshal([]byte(reply[start:end+1]), &graph); err != nil {
			return nil, fmt.Errorf("decode entity graph: %w", err)
		}
	}
	if graph.Nodes == nil {
		graph.Nodes = []domain.EntityNode{}
	}
	if graph.Edges == nil {
		graph.Edges = []domain.EntityEdge{}
	}
	return &graph, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
