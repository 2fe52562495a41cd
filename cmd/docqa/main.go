// Command docqa ingests documents and answers questions about them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
	"github.com/custodia-labs/docqa/internal/telemetry"
)

// Set by the release build.
var version = "dev"

// stores groups the persistence ports of one backend.
type stores struct {
	docs    driven.DocumentStore
	history driven.HistoryStore
	shares  driven.ShareStore
	close   func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.ExitCode(err))
}

func run(ctx context.Context) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Exporter:    settings.Telemetry.Exporter,
		Endpoint:    settings.Telemetry.Endpoint,
		ServiceName: "docqa",
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		// ctx may already be cancelled; flushing gets its own deadline.
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			logger.Warn("Telemetry shutdown: %v", err)
		}
	}()

	st, err := openStores(&settings.Storage)
	if err != nil {
		return err
	}
	defer st.close()

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("open prompts: %w", err)
	}

	// Providers are created without pinging so commands that never touch
	// them stay offline. Failures surface on first use.
	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		logger.Debug("Embedding provider unavailable: %v", err)
		embedder = nil
	}
	llm, err := ai.CreateLLMService(&settings.LLM)
	if err != nil {
		logger.Debug("LLM provider unavailable: %v", err)
		llm = nil
	}
	defer (&ai.InitResult{EmbeddingService: embedder, LLMService: llm}).Close()

	gateway := services.NewEmbeddingGateway(embedder, settings.Embedding.CacheSize)
	indexes := services.NewIndexManager(st.docs, gateway, flat.Factory, settings.RAG.IndexCacheSize)
	retriever := services.NewRetriever(indexes, gateway, settings.RAG.K)

	ingestOpts := []services.IngestOption{}
	if settings.RAG.EagerIndex {
		ingestOpts = append(ingestOpts, services.WithEagerIndex(gateway))
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Ingest: services.NewIngestService(
			st.docs, chunker.New(chunker.WithMaxChars(settings.RAG.MaxChars)), indexes, ingestOpts...,
		),
		Answer: services.NewAnswerService(st.docs, retriever, llm, st.history,
			services.WithDefaultModel(settings.LLM.DefaultModel),
			services.WithPromptStore(prompts),
		),
		History:    services.NewHistoryService(st.history),
		Document:   services.NewDocumentService(st.docs, indexes, llm, prompts, settings.LLM.DefaultModel),
		Share:      services.NewShareService(st.history, st.shares),
		Settings:   settingsService,
		Normaliser: normalisers.Default(),
		CheckProviders: func(_ context.Context) []cli.ProviderCheck {
			return checkProviders(settingsService)
		},
	})

	return cli.Execute(ctx)
}

func openStores(cfg *domain.StorageSettings) (*stores, error) {
	if cfg.Backend == domain.StorageMemory {
		logger.Debug("Using in-memory storage")
		return &stores{
			docs:    memory.NewDocumentStore(),
			history: memory.NewHistoryStore(),
			shares:  memory.NewShareStore(),
			close:   func() error { return nil },
		}, nil
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("Using database %s", store.Path())
	return &stores{
		docs:    store.DocumentStore(),
		history: store.HistoryStore(),
		shares:  store.ShareStore(),
		close:   store.Close,
	}, nil
}

// checkProviders pings the configured providers with the current settings.
func checkProviders(settingsService *services.SettingsService) []cli.ProviderCheck {
	settings, err := settingsService.Get()
	if err != nil {
		return []cli.ProviderCheck{{Name: "settings", Err: err}}
	}
	return []cli.ProviderCheck{
		{
			Name: fmt.Sprintf("embedding (%s)", settings.Embedding.Provider),
			Err:  ai.ValidateEmbeddingConfig(&settings.Embedding),
		},
		{
			Name: fmt.Sprintf("llm (%s)", settings.LLM.Provider),
			Err:  ai.ValidateLLMConfig(&settings.LLM),
		},
	}
}
