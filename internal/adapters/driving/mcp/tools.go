package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	DocumentID string `json:"document_id" jsonschema:"id of the document to ask about"`
	Question   string `json:"question" jsonschema:"the question to answer"`
	Model      string `json:"model,omitempty" jsonschema:"allow-listed model id (default from settings)"`
	Style      string `json:"style,omitempty" jsonschema:"answer style: concise, technical or casual; unknown styles add no instruction"`
	K          int    `json:"k,omitempty" jsonschema:"number of chunks to retrieve (default 3)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string   `json:"answer"`
	Model   string   `json:"model"`
	Context []string `json:"context"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	DocumentID string `json:"document_id,omitempty" jsonschema:"document id; re-using an id replaces the document"`
	Title      string `json:"title,omitempty" jsonschema:"human-readable title"`
	Text       string `json:"text" jsonschema:"the plain text of the document"`
}

// DocumentsOutput is the output schema for the list_documents tool.
type DocumentsOutput struct {
	Documents []DocumentInfo `json:"documents"`
	Count     int            `json:"count"`
}

// DocumentInfo describes one document without its content.
type DocumentInfo struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	HasSummary bool   `json:"has_summary"`
	UpdatedAt  string `json:"updated_at"`
}

// HistoryOutput is the output schema for the history tool.
type HistoryOutput struct {
	Turns []domain.Turn `json:"turns"`
}

// StatsOutput is the output schema for the model_stats tool.
type StatsOutput struct {
	Questions int                 `json:"questions"`
	Usage     []domain.ModelUsage `json:"usage"`
}

// empty is the input of tools that take no arguments.
type empty struct{}

var errNotAvailable = errors.New("not available on this server")

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about one ingested document",
	}, s.handleAsk)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest",
			Description: "Store plain text as a document that questions can be asked about",
		}, s.handleIngest)
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the ingested documents",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "history",
		Description: "Return the conversation history in order",
	}, s.handleHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "model_stats",
		Description: "Count questions asked and answers per model",
	}, s.handleModelStats)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Answer(ctx, domain.AnswerRequest{
		OwnerID:    s.ports.Owner,
		DocumentID: input.DocumentID,
		Question:   input.Question,
		Model:      input.Model,
		Style:      domain.PromptStyle(input.Style),
		K:          input.K,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  answer.Text,
		Model:   answer.Model,
		Context: make([]string, len(answer.Context)),
	}
	for i, c := range answer.Context {
		output.Context[i] = c.Text
	}
	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, domain.IngestResult, error) {
	result, err := s.ports.Ingest.IngestDocument(ctx, s.ports.Owner, input.DocumentID, input.Title, input.Text)
	if err != nil {
		return nil, domain.IngestResult{}, err
	}
	return nil, *result, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ empty,
) (*mcp.CallToolResult, DocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, DocumentsOutput{}, errNotAvailable
	}

	docs, err := s.ports.Document.List(ctx, s.ports.Owner)
	if err != nil {
		return nil, DocumentsOutput{}, err
	}
	return nil, DocumentsOutput{Documents: documentInfos(docs), Count: len(docs)}, nil
}

// handleHistory handles the history tool invocation.
func (s *Server) handleHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ empty,
) (*mcp.CallToolResult, HistoryOutput, error) {
	if s.ports.History == nil {
		return nil, HistoryOutput{}, errNotAvailable
	}

	turns, err := s.ports.History.Get(ctx, s.ports.Owner)
	if err != nil {
		return nil, HistoryOutput{}, err
	}
	if turns == nil {
		turns = []domain.Turn{}
	}
	return nil, HistoryOutput{Turns: turns}, nil
}

// handleModelStats handles the model_stats tool invocation.
func (s *Server) handleModelStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ empty,
) (*mcp.CallToolResult, StatsOutput, error) {
	if s.ports.History == nil {
		return nil, StatsOutput{}, errNotAvailable
	}

	questions, err := s.ports.History.QuestionCount(ctx, s.ports.Owner)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	usage, err := s.ports.History.ModelUsage(ctx, s.ports.Owner)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	if usage == nil {
		usage = []domain.ModelUsage{}
	}
	return nil, StatsOutput{Questions: questions, Usage: usage}, nil
}

func documentInfos(docs []domain.Document) []DocumentInfo {
	infos := make([]DocumentInfo, len(docs))
	for i := range docs {
		infos[i] = DocumentInfo{
			ID:         docs[i].ID,
			Title:      docs[i].Title,
			HasSummary: docs[i].Summary != "",
			UpdatedAt:  docs[i].UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	return infos
}
