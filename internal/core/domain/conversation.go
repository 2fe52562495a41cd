package domain

import "time"

// Role identifies who authored a turn.
type Role string

const (
	// RoleUser marks a question asked by the owner.
	RoleUser Role = "user"

	// RoleAssistant marks an answer produced by a model.
	RoleAssistant Role = "assistant"
)

// IsValid returns true if the role is recognised.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// UnknownModel is the bucket used in usage stats for turns without a model.
const UnknownModel = "unknown"

// Turn is one message within a conversation history.
type Turn struct {
	// Role is the author of the turn.
	Role Role `json:"role" yaml:"role"`

	// Content is the message text.
	Content string `json:"content" yaml:"content"`

	// Model is the model identifier the exchange was answered with.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Type is the turn type used by derived views. Defaults to the role.
	Type Role `json:"type,omitempty" yaml:"type,omitempty"`

	// DocumentID is the document the question was asked against.
	DocumentID string `json:"document_id,omitempty" yaml:"document_id,omitempty"`

	// CreatedAt is when the turn was recorded.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// EffectiveType returns the turn type, falling back to the role.
func (t Turn) EffectiveType() Role {
	if t.Type == "" {
		return t.Role
	}
	return t.Type
}

// ModelUsage counts assistant turns answered by a model.
type ModelUsage struct {
	Model string `json:"model_name"`
	Count int    `json:"count"`
}

// SharedAnswer is an assistant answer published under an opaque token.
type SharedAnswer struct {
	Token     string    `json:"token"`
	OwnerID   string    `json:"owner_id"`
	Answer    string    `json:"answer"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AnswerRequest is a question about one document.
type AnswerRequest struct {
	OwnerID    string
	DocumentID string
	Question   string
	Model      string
	Style      PromptStyle

	// K is the number of chunks to retrieve. Zero uses the configured default.
	K int
}

// Answer is the result of a successful AnswerRequest.
type Answer struct {
	Text  string
	Model string

	// Context holds the retrieved chunks in rank order.
	Context []Chunk
}
