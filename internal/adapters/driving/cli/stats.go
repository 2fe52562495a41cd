package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show question count and model usage",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output stats as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return notConfigured("history")
	}

	ctx := cmd.Context()
	owner := currentOwner()

	questions, err := historyService.QuestionCount(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	usage, err := historyService.ModelUsage(ctx, owner)
	if err != nil {
		return fmt.Errorf("failed to read model usage: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(map[string]any{
			"owner":       owner,
			"questions":   questions,
			"model_usage": usage,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Owner: %s\n", owner)
	cmd.Printf("Questions asked: %d\n", questions)
	if len(usage) == 0 {
		return nil
	}
	cmd.Println()
	cmd.Println("Model usage:")
	for _, u := range usage {
		name := u.Model
		if m := domain.Model(u.Model); m.IsSupported() {
			name = m.DisplayName()
		}
		cmd.Printf("  %-28s %d\n", name, u.Count)
	}
	return nil
}
