package domain

import "strings"

// Model is an LLM model identifier as routed by OpenRouter.
type Model string

// Allow-listed models. The list bounds cost, not capability.
const (
	ModelGPT35Turbo   Model = "openai/gpt-3.5-turbo"
	ModelClaude3Haiku Model = "anthropic/claude-3-haiku"
	ModelLlama3_8B    Model = "meta-llama/llama-3-8b-instruct"
	ModelGeminiPro    Model = "google/gemini-pro"
)

// DefaultModel is used when no model is requested.
const DefaultModel = ModelGPT35Turbo

// SupportedModels returns the allow-list in display order.
func SupportedModels() []Model {
	return []Model{
		ModelGPT35Turbo,
		ModelClaude3Haiku,
		ModelLlama3_8B,
		ModelGeminiPro,
	}
}

// IsSupported returns true if the model is on the allow-list.
func (m Model) IsSupported() bool {
	switch m {
	case ModelGPT35Turbo, ModelClaude3Haiku, ModelLlama3_8B, ModelGeminiPro:
		return true
	default:
		return false
	}
}

// String returns the model identifier.
func (m Model) String() string {
	return string(m)
}

// DisplayName returns a short human-readable name.
func (m Model) DisplayName() string {
	switch m {
	case ModelGPT35Turbo:
		return "GPT-3.5"
	case ModelClaude3Haiku:
		return "Claude 3 Haiku"
	case ModelLlama3_8B:
		return "Llama 3 8B"
	case ModelGeminiPro:
		return "Gemini Pro"
	}
	if m == "" {
		return "Unknown"
	}
	s := string(m)
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}
