// Package tui provides an interactive terminal user interface for docqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer answers questions about a document.
	Answer driving.AnswerService

	// Document lists the owner's documents.
	Document driving.DocumentService

	// History reads the owner's conversation history. Optional.
	History driving.HistoryService

	// Owner is the owner the TUI acts as.
	Owner string

	// DefaultModel is preselected in the chat view. Empty uses the
	// first allow-listed model.
	DefaultModel domain.Model
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	if p.Owner == "" {
		return ErrMissingOwner
	}
	return nil
}
