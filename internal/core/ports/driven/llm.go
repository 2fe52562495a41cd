package driven

import "context"

// LLMService provides chat completion against a remote or local model.
//
// Implementations include:
//   - OpenAI-compatible APIs (OpenRouter, OpenAI)
//   - Ollama (local models)
type LLMService interface {
	// Chat sends an ordered list of messages and returns the reply text.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the model used when ChatOptions.Model is empty.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures a chat request.
type ChatOptions struct {
	// Model is the model identifier for this request.
	// Empty uses the service's default model.
	Model string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
