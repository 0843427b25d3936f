package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/titwsync/pkg/auth"
	"github.com/harrisonrobin/titwsync/pkg/log"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with Todoist via OAuth",
	Long: `Authenticate with Todoist via OAuth.

Requires a credentials.json (client_id, client_secret) in the titwsync config
directory. Any cached token is discarded and replaced. Not needed when a
static API key is configured.`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	tokenFile, err := auth.TokenPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(tokenFile); err == nil {
		log.Info("Removing existing token file at %s", tokenFile)
		if err := os.Remove(tokenFile); err != nil {
			return err
		}
	}

	if _, err := auth.Authorize(cmd.Context()); err != nil {
		return err
	}
	log.Success("Authentication successful! Token saved to %s", tokenFile)
	return nil
}
