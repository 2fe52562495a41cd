// Package cli implements the docqa command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

var version = "dev"

// ProviderCheck is the outcome of probing one configured AI provider.
type ProviderCheck struct {
	Name string
	Err  error
}

// Services holds everything the commands call into.
type Services struct {
	Ingest     driving.IngestService
	Answer     driving.AnswerService
	History    driving.HistoryService
	Document   driving.DocumentService
	Share      driving.ShareService
	Settings   driving.SettingsService
	Normaliser driven.NormaliserRegistry

	// CheckProviders pings the configured embedding and LLM providers.
	CheckProviders func(ctx context.Context) []ProviderCheck
}

var (
	ingestService      driving.IngestService
	answerService      driving.AnswerService
	historyService     driving.HistoryService
	documentService    driving.DocumentService
	shareService       driving.ShareService
	settingsService    driving.SettingsService
	normaliserRegistry driven.NormaliserRegistry
	checkProviders     func(ctx context.Context) []ProviderCheck
)

var (
	verbose   bool
	ownerFlag string
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your documents",
	Long: `docqa ingests documents, indexes them for semantic retrieval and answers
questions about a single document at a time with an LLM of your choice.
Every question and answer is kept in a per-owner conversation history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&ownerFlag, "owner", "", "owner id (default from settings)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices installs the services commands call into.
func SetServices(s Services) {
	ingestService = s.Ingest
	answerService = s.Answer
	historyService = s.History
	documentService = s.Document
	shareService = s.Share
	settingsService = s.Settings
	normaliserRegistry = s.Normaliser
	checkProviders = s.CheckProviders
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrInvalidInput):
		return 2
	case errors.Is(err, domain.ErrNotFound):
		return 3
	case errors.Is(err, domain.ErrUnsupportedModel):
		return 4
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrLLMUnavailable):
		return 5
	case errors.Is(err, domain.ErrGenerationFailed):
		return 6
	default:
		return 1
	}
}

// currentOwner resolves the owner for a command: the --owner flag, then
// the configured default, then the OS user.
func currentOwner() string {
	if owner := strings.TrimSpace(ownerFlag); owner != "" {
		return owner
	}
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil && settings.DefaultOwner != "" {
			return settings.DefaultOwner
		}
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return domain.DefaultAppSettings().DefaultOwner
}

func notConfigured(name string) error {
	return fmt.Errorf("%s service not configured", name)
}
