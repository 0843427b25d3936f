package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/titwsync/pkg/config"
	"github.com/harrisonrobin/titwsync/pkg/log"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the identity index file",
	Long: `Remove the identity index file.

The index only accelerates remote-ID lookups; the sync annotations on the
tasks themselves remain, so the next sync pass rebuilds it without
duplicating anything.`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	path, err := config.IndexPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Info("Nothing to clean: %s does not exist", path)
		return nil
	}

	if err := os.Remove(path); err != nil {
		return err
	}
	log.Success("Removed %s", path)
	return nil
}
