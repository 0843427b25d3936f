package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/titwsync/pkg/auth"
	"github.com/harrisonrobin/titwsync/pkg/config"
	"github.com/harrisonrobin/titwsync/pkg/identity"
	"github.com/harrisonrobin/titwsync/pkg/log"
	"github.com/harrisonrobin/titwsync/pkg/sync"
	"github.com/harrisonrobin/titwsync/pkg/taskwarrior"
	"github.com/harrisonrobin/titwsync/pkg/todoist"
)

var syncDryRun bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation pass between Todoist and Taskwarrior",
	Long: `Run one reconciliation pass between Todoist and Taskwarrior.

This command can be run repeatedly and will not duplicate tasks: each synced
Taskwarrior task carries a 'remoteId=...;hash=...' annotation identifying its
Todoist counterpart and the last-synced field values.

Exit status is 0 for a clean pass, 1 when some tasks failed to sync, and 2
when the pass could not run at all.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false,
		"report what would change without writing to either store")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	return runPass(cmd, false)
}

// runPass wires up both store adapters and executes a reconciliation pass.
// createOnly restricts it to importing unseen tasks (the migrate command).
func runPass(cmd *cobra.Command, createOnly bool) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	orphans, err := cfg.OrphanPolicy()
	if err != nil {
		return err
	}

	token, err := auth.Token(ctx, cfg)
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("no Todoist API token configured; run 'titwsync configure' first")
	}

	opts := []sync.Option{sync.WithOrphanPolicy(orphans)}
	if syncDryRun {
		opts = append(opts, sync.WithDryRun())
	}
	if createOnly {
		opts = append(opts, sync.WithCreateOnly())
		if migrateNoAnnotations {
			opts = append(opts, sync.WithoutSyncAnnotations())
		}
	}

	idxPath, err := config.IndexPath()
	if err == nil {
		idx, idxErr := identity.OpenIndex(idxPath)
		if idxErr != nil {
			log.Warn("Could not open identity index: %v", idxErr)
		} else {
			opts = append(opts, sync.WithIndex(idx))
		}
	}

	reconciler := sync.New(todoist.NewClient(token), taskwarrior.NewClient(), cfg.Rules(), opts...)
	summary, err := reconciler.Run(ctx)
	if err != nil {
		return err
	}

	log.Success("Done: %s", summary)
	if summary.HasErrors() {
		for _, e := range summary.Errors {
			log.Error("%v", e)
		}
		os.Exit(1)
	}
	return nil
}
