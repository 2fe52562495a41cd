package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, retrieval behaviour and storage.

Settings are stored in ~/.docqa/config.toml. API keys can also be supplied
through OPENROUTER_API_KEY, DOCQA_LLM_API_KEY and DOCQA_EMBEDDING_API_KEY,
or a .env file in the working directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Set a single setting. An empty value restores the default.

API keys are read from the terminal without echo when the value is omitted.
Run 'docqa settings keys' for the list of keys.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsModelCmd = &cobra.Command{
	Use:   "model",
	Short: "Choose the default answer model",
	Args:  cobra.NoArgs,
	RunE:  runSettingsModel,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured providers respond",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsModelCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", describeKey(settings.Embedding.APIKey))
	}
	cmd.Printf("  Query cache: %d\n", settings.Embedding.CacheSize)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Default model: %s\n", settings.LLM.DefaultModel)
	if settings.LLM.Provider == domain.AIProviderOllama {
		cmd.Printf("  Local model: %s\n", settings.LLM.LocalModel)
	}
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", describeKey(settings.LLM.APIKey))
	}
	cmd.Printf("  Timeout: %s\n", settings.LLM.Timeout)
	cmd.Printf("  Requests/minute: %d\n", settings.LLM.RequestsPerMinute)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Chunk size: %d chars\n", settings.RAG.MaxChars)
	cmd.Printf("  Chunks per question: %d\n", settings.RAG.K)
	cmd.Printf("  Eager indexing: %t\n", settings.RAG.EagerIndex)
	cmd.Printf("  Index cache: %d documents\n", settings.RAG.IndexCacheSize)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	if settings.Storage.DataDir != "" {
		cmd.Printf("  Data dir: %s\n", settings.Storage.DataDir)
	}
	cmd.Printf("  Default owner: %s\n", settings.DefaultOwner)
	cmd.Println()

	cmd.Println("[Telemetry]")
	cmd.Printf("  Exporter: %s\n", settings.Telemetry.Exporter)
	if settings.Telemetry.Exporter == domain.TelemetryOTLP {
		endpoint := settings.Telemetry.Endpoint
		if endpoint == "" {
			endpoint = "localhost:4317 (default)"
		}
		cmd.Printf("  Endpoint: %s\n", endpoint)
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case strings.HasSuffix(key, "api_key"):
		cmd.Printf("Enter %s: ", key)
		value = readPassword()
		cmd.Println()
	}

	if err := settingsService.Set(key, value); err != nil {
		return err
	}

	switch {
	case value == "":
		cmd.Printf("%s reset to default\n", key)
	case strings.HasSuffix(key, "api_key"):
		cmd.Printf("%s set to %s\n", key, maskAPIKey(value))
	default:
		cmd.Printf("%s set to %s\n", key, value)
	}
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsModel(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	models := domain.SupportedModels()
	current := 1
	cmd.Println("Select Default Model")
	cmd.Println("--------------------")
	for i, m := range models {
		marker := " "
		if m == settings.LLM.DefaultModel {
			marker = "*"
			current = i + 1
		}
		cmd.Printf(" %s%d. %s (%s)\n", marker, i+1, m.DisplayName(), m)
	}
	cmd.Printf("\nEnter choice [%d]: ", current)

	reader := bufio.NewReader(cmd.InOrStdin())
	idx := parseChoice(readLine(reader), len(models), current)
	selected := models[idx-1]

	if err := settingsService.Set("llm.default_model", selected.String()); err != nil {
		return fmt.Errorf("failed to set default model: %w", err)
	}
	cmd.Printf("Default model set to: %s\n", selected.DisplayName())
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if checkProviders == nil {
		return notConfigured("provider check")
	}

	failed := 0
	for _, check := range checkProviders(cmd.Context()) {
		if check.Err != nil {
			failed++
			cmd.Printf("  %-10s FAILED: %v\n", check.Name, check.Err)
			continue
		}
		cmd.Printf("  %-10s OK\n", check.Name)
	}
	if failed > 0 {
		return fmt.Errorf("%d provider check(s) failed", failed)
	}
	return nil
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func describeKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
