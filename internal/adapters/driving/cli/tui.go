package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui"
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// tuiCmd represents the chat command.
var tuiCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for docqa.

Pick a document, then ask questions about it. The model and answer style
can be switched between questions.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Select / Ask
  Tab      - Next model
  Ctrl+S   - Next style
  Esc      - Back
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts builds the TUI ports from the installed services.
func tuiPorts() *tui.Ports {
	ports := &tui.Ports{
		Answer:   answerService,
		Document: documentService,
		History:  historyService,
		Owner:    currentOwner(),
	}
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			ports.DefaultModel = settings.LLM.DefaultModel
		}
	}
	if ports.DefaultModel == "" {
		ports.DefaultModel = domain.DefaultModel
	}
	return ports
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(tuiPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
