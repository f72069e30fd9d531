// Package app contains the Cobra command tree for cohortpulse.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
	flagStrict  bool
)

var rootCmd = &cobra.Command{
	Use:   "cohortpulse",
	Short: "Cohort analytics for order and claim-payment data",
	Long: `cohortpulse turns row-level CSV records into cohort-indexed matrices.

It supports two analysis modes: acquisition-cohort retention tables keyed by
month offset (orders), and date-of-service waterfall matrices keyed by
calendar payment month (claim payments), plus derived KPIs and rule-based
insights.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("cohortpulse", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  analyze   Retention analysis over an orders CSV")
		fmt.Println("  matrix    Payment waterfall matrix over a claims CSV")
		fmt.Println("  serve     Run the HTTP API")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/cohortpulse/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&flagStrict, "strict", false, "Fail the whole batch on the first invalid row")
}
