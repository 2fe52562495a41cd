package mcp

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer answers questions about a document.
	Answer driving.AnswerService

	// Ingest stores new documents. Optional; the ingest tool is not
	// registered without it.
	Ingest driving.IngestService

	// History exposes the owner's conversation history.
	History driving.HistoryService

	// Document lists and reads documents.
	Document driving.DocumentService

	// Owner is the owner every tool call acts as.
	Owner string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Owner == "" {
		return ErrMissingOwner
	}
	return nil
}
