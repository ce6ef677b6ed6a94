// Package main provides the entry point for the graccapel reporting tool.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/graccapel/cmd/graccapel/commands"
	"github.com/Sumatoshi-tech/graccapel/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "graccapel [YEAR MONTH]",
		Short: "GRACC to APEL normalised-summary reporter",
		Long: `graccapel queries the GRACC accounting store for one month of usage,
normalises and merges the grouped results, and writes an APEL
normalised-summary report file (MM_YYYY.apel) in the working directory.

Commands:
  report    Query GRACC and write the monthly report (default)`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress output")

	reportCmd := commands.NewReportCommand()

	// Bare invocation reports, matching the original single-purpose tool.
	rootCmd.RunE = reportCmd.RunE
	rootCmd.Flags().AddFlagSet(reportCmd.Flags())

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "graccapel %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
