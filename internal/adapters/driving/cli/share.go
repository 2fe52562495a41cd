package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Publish answers under a share token",
}

var shareCreateCmd = &cobra.Command{
	Use:   "create [turn-index]",
	Short: "Share an answer from your history",
	Long:  `Publishes the assistant turn at the given history index. Use 'docqa history show' to find it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShareCreate,
}

var shareGetCmd = &cobra.Command{
	Use:   "get [token]",
	Short: "Show a shared answer",
	Args:  cobra.ExactArgs(1),
	RunE:  runShareGet,
}

func init() {
	shareCmd.AddCommand(shareCreateCmd)
	shareCmd.AddCommand(shareGetCmd)
	rootCmd.AddCommand(shareCmd)
}

func runShareCreate(cmd *cobra.Command, args []string) error {
	if shareService == nil {
		return notConfigured("share")
	}

	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid turn index %q", args[0])
	}

	shared, err := shareService.Share(cmd.Context(), currentOwner(), index)
	if err != nil {
		return fmt.Errorf("failed to share answer: %w", err)
	}
	cmd.Printf("Shared as %s\n", shared.Token)
	return nil
}

func runShareGet(cmd *cobra.Command, args []string) error {
	if shareService == nil {
		return notConfigured("share")
	}

	shared, err := shareService.Resolve(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve share: %w", err)
	}

	if shared.Model != "" {
		cmd.Printf("Model: %s\n", shared.Model)
	}
	cmd.Printf("Shared: %s\n\n", shared.CreatedAt.Format("2006-01-02 15:04"))
	cmd.Println(shared.Answer)
	return nil
}
