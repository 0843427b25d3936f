package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "One-shot import of all Todoist tasks into Taskwarrior",
	Long: `One-shot import of all Todoist tasks into Taskwarrior.

Tasks that were imported before are recognized by their sync annotation and
skipped, so migrate is safe to re-run. Unlike sync, migrate never updates
existing tasks and never propagates completions.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var migrateNoAnnotations bool

func init() {
	migrateCmd.Flags().BoolVar(&syncDryRun, "dry-run", false,
		"report what would be imported without writing")
	migrateCmd.Flags().BoolVar(&migrateNoAnnotations, "no-sync-annotations", false,
		"import without sync annotations; imported tasks cannot be synced later")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	return runPass(cmd, true)
}
