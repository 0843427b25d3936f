package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/titwsync/pkg/log"
)

var rootCmd = &cobra.Command{
	Use:           "titwsync",
	Short:         "Sync tasks between Todoist and Taskwarrior",
	Long:          "titwsync reconciles tasks between Todoist and Taskwarrior.\nRepeated runs never duplicate tasks: each synced Taskwarrior task carries\nan annotation linking it to its Todoist counterpart.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error("%v", err)
		os.Exit(2)
	}
}
