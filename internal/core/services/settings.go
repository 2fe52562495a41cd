package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyEmbedCacheSize  = "embedding.cache_size"
	keyLLMProvider     = "llm.provider"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMDefaultModel = "llm.default_model"
	keyLLMLocalModel   = "llm.local_model"
	keyLLMTimeout      = "llm.timeout_seconds"
	keyLLMRPM          = "llm.requests_per_minute"
	keyChunkMaxChars   = "chunker.max_chars"
	keyRetrievalK      = "retrieval.k"
	keyIndexEager      = "index.eager"
	keyIndexCacheSize  = "index.cache_size"
	keyStorageBackend  = "storage.backend"
	keyStorageDataDir  = "storage.data_dir"
	keyOwnerDefault    = "owner.default"
	keyTelemetryExport = "telemetry.exporter"
	keyTelemetryEndpt  = "telemetry.endpoint"
)

// Environment variables that override stored API keys.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvLLMAPIKey        = "DOCQA_LLM_API_KEY"
	EnvOpenRouterAPIKey = "OPENROUTER_API_KEY"
	EnvEmbeddingAPIKey  = "DOCQA_EMBEDDING_API_KEY"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
)

var settingKinds = map[string]keyKind{
	keyEmbedProvider:   kindString,
	keyEmbedModel:      kindString,
	keyEmbedBaseURL:    kindString,
	keyEmbedAPIKey:     kindString,
	keyEmbedDims:       kindInt,
	keyEmbedCacheSize:  kindInt,
	keyLLMProvider:     kindString,
	keyLLMBaseURL:      kindString,
	keyLLMAPIKey:       kindString,
	keyLLMDefaultModel: kindString,
	keyLLMLocalModel:   kindString,
	keyLLMTimeout:      kindInt,
	keyLLMRPM:          kindInt,
	keyChunkMaxChars:   kindInt,
	keyRetrievalK:      kindInt,
	keyIndexEager:      kindBool,
	keyIndexCacheSize:  kindInt,
	keyStorageBackend:  kindString,
	keyStorageDataDir:  kindString,
	keyOwnerDefault:    kindString,
	keyTelemetryExport: kindString,
	keyTelemetryEndpt:  kindString,
}

// SettingsService reads and writes typed application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings. API keys from the
// environment take precedence over stored ones.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := s.GetDefaults()

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	embedModel := s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider])

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   embedProvider,
			Model:      embedModel,
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.env(s.configStore.GetString(keyEmbedAPIKey), EnvEmbeddingAPIKey),
			Dimensions: s.getInt(keyEmbedDims, 0),
			CacheSize:  s.getInt(keyEmbedCacheSize, defaults.Embedding.CacheSize),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.env(s.configStore.GetString(keyLLMAPIKey), EnvOpenRouterAPIKey, EnvLLMAPIKey),
			DefaultModel:      domain.Model(s.getString(keyLLMDefaultModel, defaults.LLM.DefaultModel.String())),
			LocalModel:        s.getString(keyLLMLocalModel, defaults.LLM.LocalModel),
			Timeout:           time.Duration(s.getInt(keyLLMTimeout, int(defaults.LLM.Timeout/time.Second))) * time.Second,
			RequestsPerMinute: s.getInt(keyLLMRPM, defaults.LLM.RequestsPerMinute),
		},
		RAG: domain.RAGSettings{
			MaxChars:       s.getInt(keyChunkMaxChars, defaults.RAG.MaxChars),
			K:              s.getInt(keyRetrievalK, defaults.RAG.K),
			EagerIndex:     s.getBool(keyIndexEager, defaults.RAG.EagerIndex),
			IndexCacheSize: s.getInt(keyIndexCacheSize, defaults.RAG.IndexCacheSize),
		},
		Storage: domain.StorageSettings{
			Backend: domain.StorageBackend(s.getString(keyStorageBackend, string(defaults.Storage.Backend))),
			DataDir: s.configStore.GetString(keyStorageDataDir),
		},
		Telemetry: domain.TelemetrySettings{
			Exporter: domain.TelemetryExporter(s.getString(keyTelemetryExport, string(defaults.Telemetry.Exporter))),
			Endpoint: s.configStore.GetString(keyTelemetryEndpt),
		},
		DefaultOwner: s.getString(keyOwnerDefault, defaults.DefaultOwner),
	}

	if !settings.Storage.Backend.IsValid() {
		return nil, fmt.Errorf("%w: storage backend %q", domain.ErrInvalidInput, settings.Storage.Backend)
	}
	if !settings.Telemetry.Exporter.IsValid() {
		return nil, fmt.Errorf("%w: telemetry exporter %q", domain.ErrInvalidInput, settings.Telemetry.Exporter)
	}
	return settings, nil
}

// Set validates and stores a single setting.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	if err := validateSetting(key, value); err != nil {
		return err
	}

	var stored any = value
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidInput, key)
		}
		stored = b
	case kindString:
		if value == "" {
			if err := s.configStore.Unset(key); err != nil {
				return fmt.Errorf("unset %s: %w", key, err)
			}
			return nil
		}
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every recognised setting key, sorted.
func (s *SettingsService) Keys() []string {
	return []string{
		keyChunkMaxChars,
		keyEmbedAPIKey,
		keyEmbedBaseURL,
		keyEmbedCacheSize,
		keyEmbedDims,
		keyEmbedModel,
		keyEmbedProvider,
		keyIndexCacheSize,
		keyIndexEager,
		keyLLMAPIKey,
		keyLLMBaseURL,
		keyLLMDefaultModel,
		keyLLMLocalModel,
		keyLLMProvider,
		keyLLMRPM,
		keyLLMTimeout,
		keyOwnerDefault,
		keyRetrievalK,
		keyStorageBackend,
		keyStorageDataDir,
		keyTelemetryEndpt,
		keyTelemetryExport,
	}
}

// GetDefaults returns the default settings. The default owner is the
// current OS user when known.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	defaults := domain.DefaultAppSettings()
	if user, ok := s.lookupEnv("USER"); ok && strings.TrimSpace(user) != "" {
		defaults.DefaultOwner = strings.TrimSpace(user)
	}
	return defaults
}

func validateSetting(key, value string) error {
	switch key {
	case keyEmbedProvider:
		if p := domain.AIProvider(value); !p.SupportsEmbeddings() {
			return fmt.Errorf("%w: provider %q cannot embed text", domain.ErrInvalidInput, value)
		}
	case keyLLMProvider:
		if p := domain.AIProvider(value); !p.SupportsGeneration() {
			return fmt.Errorf("%w: provider %q cannot generate answers", domain.ErrInvalidInput, value)
		}
	case keyLLMDefaultModel:
		if value != "" && !domain.Model(value).IsSupported() {
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedModel, value)
		}
	case keyStorageBackend:
		if !domain.StorageBackend(value).IsValid() {
			return fmt.Errorf("%w: storage backend %q", domain.ErrInvalidInput, value)
		}
	case keyTelemetryExport:
		if value != "" && !domain.TelemetryExporter(value).IsValid() {
			return fmt.Errorf("%w: telemetry exporter %q", domain.ErrInvalidInput, value)
		}
	case keyChunkMaxChars, keyRetrievalK:
		if n, err := strconv.Atoi(value); err == nil && n == 0 {
			return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, key)
		}
	}
	return nil
}

// env returns the first non-empty environment variable among names,
// or fallback.
func (s *SettingsService) env(fallback string, names ...string) string {
	for _, name := range names {
		if v, ok := s.lookupEnv(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return fallback
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	if v := s.configStore.GetString(key); v != "" {
		p := domain.AIProvider(v)
		if p.IsValid() {
			return p
		}
	}
	return defaultVal
}
