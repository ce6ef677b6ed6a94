// Package commands implements the graccapel CLI subcommands.
package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/graccapel/internal/apel"
	"github.com/Sumatoshi-tech/graccapel/internal/config"
	"github.com/Sumatoshi-tech/graccapel/internal/gracc"
	"github.com/Sumatoshi-tech/graccapel/internal/normtable"
	"github.com/Sumatoshi-tech/graccapel/internal/topology"
)

const (
	reportCmdUse   = "report [YEAR MONTH]"
	reportCmdShort = "Query GRACC and write the monthly APEL report"

	configFlag  = "config"
	configUsage = "path to config file"

	summaryFlag  = "summary"
	summaryUsage = "print a per-site totals table after writing the report"

	// usageMessage matches the original tool: a wrong or non-numeric
	// period argument pair prints this and exits with status 0.
	usageMessage = "usage: graccapel [YEAR MONTH]"

	// periodArgCount is the only accepted positional arity besides zero.
	periodArgCount = 2

	// previousMonthCutoffDay: without arguments, runs on the first days of
	// a month still report the previous month.
	previousMonthCutoffDay = 3

	// outputFilePattern names the report file: zero-padded month, year.
	outputFilePattern = "%02d_%d.apel"
)

// NewReportCommand creates the report subcommand.
func NewReportCommand() *cobra.Command {
	var configPath string

	var summary bool

	cmd := &cobra.Command{
		Use:   reportCmdUse,
		Short: reportCmdShort,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, ok := resolvePeriod(args, time.Now())
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), usageMessage)

				return nil
			}

			return runReport(cmd, configPath, summary, year, month)
		},
	}

	cmd.Flags().StringVar(&configPath, configFlag, "", configUsage)
	cmd.Flags().BoolVar(&summary, summaryFlag, false, summaryUsage)

	return cmd
}

// resolvePeriod picks the reporting year and month from the positional
// arguments, or from today when none are given. ok is false on a wrong-arity
// or non-numeric argument pair.
func resolvePeriod(args []string, today time.Time) (int, time.Month, bool) {
	if len(args) == 0 {
		year, month := autoPeriod(today)

		return year, month, true
	}

	if len(args) != periodArgCount {
		return 0, 0, false
	}

	year, yearErr := strconv.Atoi(args[0])
	month, monthErr := strconv.Atoi(args[1])

	if yearErr != nil || monthErr != nil {
		return 0, 0, false
	}

	return year, time.Month(month), true
}

// autoPeriod defaults to the previous month when today is the 1st-3rd, since
// the month just ended is the one worth reporting, else the current month.
func autoPeriod(today time.Time) (int, time.Month) {
	if today.Day() <= previousMonthCutoffDay {
		last := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()).AddDate(0, -1, 0)

		return last.Year(), last.Month()
	}

	return today.Year(), today.Month()
}

func runReport(cmd *cobra.Command, configPath string, summary bool, year int, month time.Month) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := newLogger(cmd)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	table, err := normtable.Load(cfg.NormTable.Path)
	if err != nil {
		return err
	}

	client, err := gracc.NewClient(cfg.OpenSearch.URL, cfg.OpenSearch.Index, cfg.OpenSearch.Timeout, cfg.VOs, logger)
	if err != nil {
		return err
	}

	resp, err := client.Query(ctx, year, month)
	if err != nil {
		return err
	}

	walker := &apel.Walker{Table: table, Logger: logger}
	records := walker.Walk(resp)

	logger.Debug("merged records", "count", len(records))

	emitter := &apel.Emitter{
		Year:     year,
		Month:    int(month),
		Portions: topology.NewClient(cfg.Topology.URL, nil, logger),
	}

	outName := fmt.Sprintf(outputFilePattern, int(month), year)

	if err := writeReport(ctx, outName, emitter, records); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote: %s\n", outName)

	if summary {
		writeSummary(cmd.OutOrStdout(), records)
	}

	return nil
}

func writeReport(ctx context.Context, name string, emitter *apel.Emitter, records apel.RecordSet) error {
	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	buffered := bufio.NewWriter(out)

	if err := emitter.Write(ctx, buffered, records); err != nil {
		out.Close()

		return err
	}

	if err := buffered.Flush(); err != nil {
		out.Close()

		return fmt.Errorf("flush report file: %w", err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}

	return nil
}

// newLogger builds the stderr text logger, honoring the root --verbose and
// --quiet flags.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo

	if verbose, err := cmd.Root().PersistentFlags().GetBool("verbose"); err == nil && verbose {
		level = slog.LevelDebug
	}

	if quiet, err := cmd.Root().PersistentFlags().GetBool("quiet"); err == nil && quiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
