package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "engram",
	Short:         "Project memory and preference enforcement for coding agents",
	Long:          "Engram stores project preferences and architecture facts, packs them into prompt-sized context bundles, and checks diffs against them from a pre-commit hook or a file watcher.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./.engram/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbOverride, "db", "", "database path (default ./.engram/engram.db)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(memoryCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(bundleCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(statusCmd)
}
