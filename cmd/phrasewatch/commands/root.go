// Package commands implements the phrasewatch CLI using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the CLI root command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "phrasewatch",
		Short: "Phrasewatch - assistant chatbot with transcription phrase alerts",
		Long: `Phrasewatch receives chat and live-transcription webhooks from the
messaging platform, drives an AI assistant conversation per chat channel,
and alerts users when their registered trigger phrases show up in call or
conference transcripts.

Examples:
  phrasewatch serve
  phrasewatch serve --config ./config.yaml`,
		Version: version,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newSecretCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "path to the configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
