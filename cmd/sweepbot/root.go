package main

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sweepbot",
	Short: "Sweepbot - Telegram Group Cleanup Bot",
	Long: `Sweepbot is a self-hosted Telegram bot that sweeps group chats:
it pages through recorded history, keeps admin and protected messages,
and deletes the rest in rate-limited batches.`,
	Version: Version,
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}
