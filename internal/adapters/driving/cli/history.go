package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var historyFormat string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage your conversation history",
	Long:  `Show, export, import, or clear the questions and answers recorded for the current owner.`,
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the conversation history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryShow,
}

var historyExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the history as JSON or YAML",
	Long:  `Writes the history to a file, or to stdout when the file is "-" or omitted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryExport,
}

var historySaveCmd = &cobra.Command{
	Use:   "save [file]",
	Short: "Replace the history from a JSON or YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistorySave,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the conversation history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyExportCmd.Flags().StringVarP(&historyFormat, "format", "f", "json", "output format: json or yaml")
	historySaveCmd.Flags().StringVarP(&historyFormat, "format", "f", "", "input format: json or yaml (default: from extension)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historySaveCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryShow(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return notConfigured("history")
	}

	owner := currentOwner()
	turns, err := historyService.Get(cmd.Context(), owner)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(turns) == 0 {
		cmd.Printf("No history for %s.\n", owner)
		return nil
	}

	for i, t := range turns {
		label := "Q"
		if t.EffectiveType() == domain.RoleAssistant {
			label = "A"
		}
		cmd.Printf("[%d] %s: %s\n", i, label, t.Content)
		if label == "A" && t.Model != "" {
			cmd.Printf("      (%s)\n", t.Model)
		}
	}
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return notConfigured("history")
	}

	turns, err := historyService.Get(cmd.Context(), currentOwner())
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	data, err := encodeTurns(turns, historyFormat)
	if err != nil {
		return err
	}

	if len(args) == 0 || args[0] == "-" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(args[0], data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", args[0], err)
	}
	cmd.Printf("Exported %d turns to %s\n", len(turns), args[0])
	return nil
}

func runHistorySave(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return notConfigured("history")
	}

	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	format := historyFormat
	if format == "" {
		format = formatFromPath(args[0])
	}
	turns, err := decodeTurns(data, format)
	if err != nil {
		return err
	}

	if err := historyService.Save(cmd.Context(), currentOwner(), turns); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	cmd.Printf("Saved %d turns\n", len(turns))
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return notConfigured("history")
	}

	owner := currentOwner()
	if err := historyService.Clear(cmd.Context(), owner); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	cmd.Printf("Cleared history for %s\n", owner)
	return nil
}

func encodeTurns(turns []domain.Turn, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "json":
		data, err := json.MarshalIndent(turns, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal history: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		data, err := yaml.Marshal(turns)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal history: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, format)
	}
}

func decodeTurns(data []byte, format string) ([]domain.Turn, error) {
	var turns []domain.Turn
	var err error
	switch strings.ToLower(format) {
	case "", "json":
		err = json.Unmarshal(data, &turns)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &turns)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if turns == nil {
		return nil, errors.New("history file holds no turns; use 'docqa history clear' to empty it")
	}
	return turns, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}
