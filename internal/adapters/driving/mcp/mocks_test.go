package mcp

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
	got    domain.AnswerRequest
}

func (m *mockAnswerService) Answer(_ context.Context, req domain.AnswerRequest) (*domain.Answer, error) {
	m.got = req
	return m.answer, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result *domain.IngestResult
	err    error
	owner  string
}

func (m *mockIngestService) IngestDocument(
	_ context.Context, ownerID, documentID, _, rawText string,
) (*domain.IngestResult, error) {
	m.owner = ownerID
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.IngestResult{DocumentID: documentID, Chunks: len(rawText)}, nil
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	turns     []domain.Turn
	questions int
	usage     []domain.ModelUsage
	err       error
}

func (m *mockHistoryService) Get(_ context.Context, _ string) ([]domain.Turn, error) {
	return m.turns, m.err
}

func (m *mockHistoryService) Save(_ context.Context, _ string, turns []domain.Turn) error {
	m.turns = turns
	return m.err
}

func (m *mockHistoryService) Clear(_ context.Context, _ string) error {
	m.turns = nil
	return m.err
}

func (m *mockHistoryService) QuestionCount(_ context.Context, _ string) (int, error) {
	return m.questions, m.err
}

func (m *mockHistoryService) ModelUsage(_ context.Context, _ string) ([]domain.ModelUsage, error) {
	return m.usage, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockDocumentService) List(_ context.Context, _ string) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) Chunks(_ context.Context, _, _ string) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _, _ string) error {
	return m.err
}

func (m *mockDocumentService) Summarize(
	_ context.Context, _, _ string, _ domain.Model, _ bool,
) (string, error) {
	return "", m.err
}

func (m *mockDocumentService) Entities(
	_ context.Context, _, _ string, _ domain.Model,
) (*domain.EntityGraph, error) {
	return nil, m.err
}
