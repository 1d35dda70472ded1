package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"phrasewatch/pkg/phrasewatch/config"
)

// newSecretCmd creates the `phrasewatch secret` command for storing
// credentials in the OS keyring instead of the config file.
func newSecretCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage credentials in the OS keyring",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <name> <value>",
		Short: "Store a secret (assistant_api_key, conversations_token)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.StoreSecret(args[0], args[1]); err != nil {
				return fmt.Errorf("storing secret: %w", err)
			}
			cmd.Printf("Secret %q stored in the OS keyring.\n", args[0])
			return nil
		},
	})

	return cmd
}
