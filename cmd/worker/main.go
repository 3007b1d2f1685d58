package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "worker",
	Short: "Housekeeping for wizard drafts",
	Long: `Maintenance jobs that run outside the API process.

Available subcommands:
  migrate      - Create the draft and launch ledger tables
  purge-drafts - Delete Postgres drafts older than the retention window
  schedule     - Run purge-drafts nightly until interrupted`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(migrateCmd, purgeCmd, scheduleCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
