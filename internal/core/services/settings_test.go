package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

func newTestSettings(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)
	svc.lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	return svc, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	svc, _ := newTestSettings(nil)

	settings, err := svc.Get()
	require.NoError(t, err)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, "hashing-bow", settings.Embedding.Model)
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, domain.DefaultModel, settings.LLM.DefaultModel)
	assert.Equal(t, 120*time.Second, settings.LLM.Timeout)
	assert.Equal(t, 1024, settings.RAG.MaxChars)
	assert.Equal(t, 3, settings.RAG.K)
	assert.False(t, settings.RAG.EagerIndex)
	assert.Equal(t, domain.StorageSQLite, settings.Storage.Backend)
	assert.Equal(t, "local", settings.DefaultOwner)
}

func TestSettingsService_Get_DefaultOwnerFromUser(t *testing.T) {
	svc, _ := newTestSettings(map[string]string{"USER": "alice"})

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "alice", settings.DefaultOwner)
	assert.Equal(t, "alice", svc.GetDefaults().DefaultOwner)
}

func TestSettingsService_SetAndGet(t *testing.T) {
	svc, _ := newTestSettings(nil)

	require.NoError(t, svc.Set("embedding.provider", "ollama"))
	require.NoError(t, svc.Set("llm.default_model", "google/gemini-pro"))
	require.NoError(t, svc.Set("llm.timeout_seconds", "30"))
	require.NoError(t, svc.Set("retrieval.k", "5"))
	require.NoError(t, svc.Set("index.eager", "true"))
	require.NoError(t, svc.Set("storage.backend", "memory"))
	require.NoError(t, svc.Set("owner.default", "bob"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "all-minilm", settings.Embedding.Model, "model follows the provider default")
	assert.Equal(t, domain.ModelGeminiPro, settings.LLM.DefaultModel)
	assert.Equal(t, 30*time.Second, settings.LLM.Timeout)
	assert.Equal(t, 5, settings.RAG.K)
	assert.True(t, settings.RAG.EagerIndex)
	assert.Equal(t, domain.StorageMemory, settings.Storage.Backend)
	assert.Equal(t, "bob", settings.DefaultOwner)
}

func TestSettingsService_SetEmptyStringUnsets(t *testing.T) {
	svc, store := newTestSettings(nil)

	require.NoError(t, svc.Set("llm.base_url", "http://localhost:8080/v1"))
	require.NoError(t, svc.Set("llm.base_url", ""))

	_, ok := store.Get("llm.base_url")
	assert.False(t, ok)
}

func TestSettingsService_SetRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  error
	}{
		{"no.such.key", "x", domain.ErrInvalidInput},
		{"embedding.provider", "openrouter", domain.ErrInvalidInput},
		{"llm.provider", "local", domain.ErrInvalidInput},
		{"llm.default_model", "gpt-9", domain.ErrUnsupportedModel},
		{"storage.backend", "postgres", domain.ErrInvalidInput},
		{"retrieval.k", "many", domain.ErrInvalidInput},
		{"retrieval.k", "0", domain.ErrInvalidInput},
		{"chunker.max_chars", "-5", domain.ErrInvalidInput},
		{"index.eager", "sometimes", domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			svc, store := newTestSettings(nil)
			assert.ErrorIs(t, svc.Set(tt.key, tt.value), tt.want)
			assert.Empty(t, store.Keys())
		})
	}
}

func TestSettingsService_EnvironmentOverridesKeys(t *testing.T) {
	svc, store := newTestSettings(map[string]string{
		EnvOpenRouterAPIKey: "sk-or-env",
		EnvEmbeddingAPIKey:  "sk-embed-env",
	})
	require.NoError(t, store.Set("llm.api_key", "sk-stored"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-or-env", settings.LLM.APIKey)
	assert.Equal(t, "sk-embed-env", settings.Embedding.APIKey)

	svc.lookupEnv = func(string) (string, bool) { return "", false }
	settings, err = svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-stored", settings.LLM.APIKey)
}

func TestSettingsService_Keys(t *testing.T) {
	svc, _ := newTestSettings(nil)

	keys := svc.Keys()
	assert.IsIncreasing(t, keys)
	assert.Len(t, keys, len(settingKinds))
	for _, key := range keys {
		_, ok := settingKinds[key]
		assert.True(t, ok, key)
	}
}

func TestSettingsService_Telemetry(t *testing.T) {
	svc, store := newTestSettings(nil)

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.TelemetryNone, settings.Telemetry.Exporter)

	require.NoError(t, svc.Set("telemetry.exporter", "otlp"))
	require.NoError(t, svc.Set("telemetry.endpoint", "collector:4317"))
	settings, err = svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.TelemetryOTLP, settings.Telemetry.Exporter)
	assert.Equal(t, "collector:4317", settings.Telemetry.Endpoint)

	assert.ErrorIs(t, svc.Set("telemetry.exporter", "jaeger"), domain.ErrInvalidInput)

	require.NoError(t, store.Set("telemetry.exporter", "zipkin"))
	_, err = svc.Get()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
