// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewDocuments lists the owner's documents.
	ViewDocuments
	// ViewChat asks questions about the selected document.
	ViewChat
	// ViewHistory shows the conversation history and model usage.
	ViewHistory
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewDocuments:
		return "documents"
	case ViewChat:
		return "chat"
	case ViewHistory:
		return "history"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// DocumentsLoaded carries the owner's documents.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// DocumentSelected signals a document was chosen for questions.
type DocumentSelected struct {
	Document domain.Document
}

// AnswerCompleted carries the outcome of a question.
type AnswerCompleted struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// HistoryLoaded carries the owner's history and derived statistics.
type HistoryLoaded struct {
	Turns     []domain.Turn
	Questions int
	Usage     []domain.ModelUsage
	Err       error
}

// SummaryLoaded carries a document summary.
type SummaryLoaded struct {
	DocumentID string
	Summary    string
	Err        error
}

// DocumentDeleted signals a document was deleted.
type DocumentDeleted struct {
	DocumentID string
	Err        error
}
