package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal is the built-in hashing embedder. Embeddings only.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOpenRouter is the OpenRouter gateway. Generation only.
	AIProviderOpenRouter AIProvider = "openrouter"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI, AIProviderOpenRouter:
		return true
	default:
		return false
	}
}

// SupportsEmbeddings returns true if the provider can embed text.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderLocal || p == AIProviderOllama || p == AIProviderOpenAI
}

// SupportsGeneration returns true if the provider can answer questions.
func (p AIProvider) SupportsGeneration() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI || p == AIProviderOpenRouter
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderOpenRouter
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Built-in hashing embedder (offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderOpenRouter:
		return "OpenRouter (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string

	// Dimensions overrides the model's known dimensionality. Zero means auto.
	Dimensions int

	// CacheSize bounds the query embedding cache. Zero disables it.
	CacheSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	Provider AIProvider
	BaseURL  string
	APIKey   string

	// DefaultModel answers requests that do not name a model.
	DefaultModel Model

	// LocalModel is the Ollama model that serves every allow-listed id.
	LocalModel string

	Timeout time.Duration

	// RequestsPerMinute bounds outbound generation calls. Zero disables the limit.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.SupportsGeneration() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RAGSettings holds chunking, retrieval and index behaviour.
type RAGSettings struct {
	// MaxChars is the chunk size limit in characters.
	MaxChars int

	// K is the default number of chunks retrieved per question.
	K int

	// EagerIndex builds the vector index during ingestion instead of on first query.
	EagerIndex bool

	// IndexCacheSize bounds the number of per-document indexes kept in memory.
	IndexCacheSize int
}

// StorageBackend selects where documents and history are kept.
type StorageBackend string

const (
	StorageSQLite StorageBackend = "sqlite"
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageSQLite || b == StorageMemory
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	Backend StorageBackend

	// DataDir is the directory holding the database. Empty uses ~/.docqa/data.
	DataDir string
}

// TelemetryExporter selects where spans and metrics are sent.
type TelemetryExporter string

const (
	TelemetryNone   TelemetryExporter = "none"
	TelemetryStdout TelemetryExporter = "stdout"
	TelemetryOTLP   TelemetryExporter = "otlp"
)

// IsValid returns true if the exporter is recognised.
func (e TelemetryExporter) IsValid() bool {
	return e == TelemetryNone || e == TelemetryStdout || e == TelemetryOTLP
}

// TelemetrySettings holds OpenTelemetry export configuration.
type TelemetrySettings struct {
	Exporter TelemetryExporter

	// Endpoint is the OTLP gRPC collector address. Empty uses localhost:4317.
	Endpoint string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	RAG       RAGSettings
	Storage   StorageSettings
	Telemetry TelemetrySettings

	// DefaultOwner is the owner id used when a command does not name one.
	DefaultOwner string
}

// DefaultAppSettings returns settings that work without any network service
// for ingestion and retrieval. Generation still needs an API key.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderLocal,
			Model:      DefaultEmbeddingModels()[AIProviderLocal],
			Dimensions: 384,
			CacheSize:  512,
		},
		LLM: LLMSettings{
			Provider:          AIProviderOpenRouter,
			DefaultModel:      DefaultModel,
			LocalModel:        "llama3.2",
			Timeout:           120 * time.Second,
			RequestsPerMinute: 60,
		},
		RAG: RAGSettings{
			MaxChars:       1024,
			K:              3,
			EagerIndex:     false,
			IndexCacheSize: 256,
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		Telemetry: TelemetrySettings{
			Exporter: TelemetryNone,
		},
		DefaultOwner: "local",
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{AIProviderLocal, AIProviderOllama, AIProviderOpenAI}
}

// AllLLMProviders returns providers that support generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{AIProviderOpenRouter, AIProviderOpenAI, AIProviderOllama}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "hashing-bow",
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
		"all-minilm":             384,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
