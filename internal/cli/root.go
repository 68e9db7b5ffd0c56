package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

var rootCmd = &cobra.Command{
	Use:   "pulseload",
	Short: "Load the PhonePe Pulse corpus into a relational store",
	Long: `pulseload walks a PhonePe Pulse corpus (region/year/quarter.json), extracts
one normalized record per entry, drops records whose natural key was already
seen in the run, and loads the rest into one table per category.

A malformed file or a rejected row is logged and counted; it never stops
the run. An unreadable corpus root, an unreachable store or a rejected
commit aborts the category.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or flags
  11 - Store connection failed
  12 - Corpus root or store unusable at run start
  13 - Commit rejected by the store`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env is not an error.
		_ = godotenv.Load()
	},
}

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	// Declared without shorthand so -h stays free for --host.
	rootCmd.PersistentFlags().Bool("help", false, "Help for pulseload")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().String("config", pulse.DefaultConfigFile,
		"Path to the configuration file (optional when left at the default)")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
