package main

import (
	"time"

	"github.com/spf13/cobra"
)

// now is replaced in tests.
var now = time.Now

var rootCmd = &cobra.Command{
	Use:   "hsekpictl",
	Short: "Operator tooling for the HSE KPI service",
	Long: `hsekpictl inspects the business week calendar and runs maintenance
tasks against the HSE KPI database.

EXAMPLES:

  hsekpictl weeks --year 2025                  # 52-week table with month assignment
  hsekpictl week-of --date 2025-01-01          # Week number of a date
  hsekpictl monthly --month 2025-03 --user 1   # Monthly rollup as YAML
  hsekpictl migrate                            # Apply database migrations`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(weeksCmd, weekOfCmd, monthlyCmd, migrateCmd)
}
