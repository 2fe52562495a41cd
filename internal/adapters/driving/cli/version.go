package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and supported models",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if versionShort {
			cmd.Println(version)
			return
		}
		cmd.Printf("docqa version %s\n", version)
		cmd.Println("Models:")
		for _, m := range domain.SupportedModels() {
			marker := " "
			if m == domain.DefaultModel {
				marker = "*"
			}
			cmd.Printf(" %s %s (%s)\n", marker, m, m.DisplayName())
		}
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}
