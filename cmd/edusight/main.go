package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"edusight/internal/config"
	"edusight/internal/errors"
	"edusight/internal/infrastructure"
)

// options are the persistent flags shared by every subcommand
type options struct {
	configFile string
	inputDir   string
	outputDir  string
	logLevel   string
	noCharts   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Analyse test scores against e-learning platform usage",
		Long: `edusight loads the grade-level math test exports and the platform usage
workbook, cleans and aggregates them per school and grade, computes
correlations and writes CSV tables and PNG charts.

Each subcommand is one batch analysis. Later analyses read the CSV files
written by earlier ones:

  scores         -> test_scores.csv
  platform       -> test_scores.csv, liyou_platform_data.csv
  correlate      reads test_scores.csv and liyou_platform_data.csv
  completion     reads test_scores.csv and platform_data.csv`,
		Version:       config.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default edusight.yaml or configs/edusight.yaml)")
	flags.StringVar(&opts.inputDir, "in", "", "directory holding the source exports")
	flags.StringVar(&opts.outputDir, "out", "", "directory for CSV, xlsx and PNG output")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.noCharts, "no-charts", false, "skip PNG chart rendering")

	root.AddCommand(
		newScoresCmd(opts),
		newVisualizeCmd(opts),
		newPlatformCmd(opts),
		newUsageSummaryCmd(opts),
		newCorrelateCmd(opts),
		newCompletionCmd(opts),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	ctx = infrastructure.EnsureTraceID(ctx)

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	code := reportError(ctx, infrastructure.GetLogger(), err)

	stop()
	infrastructure.CloseLogFile()
	os.Exit(code)
}

// reportError logs err and returns the exit code. Stack traces are attached
// when the logger runs at debug level.
func reportError(ctx context.Context, logger *slog.Logger, err error) int {
	includeStack := logger.Enabled(ctx, slog.LevelDebug)
	return errors.NewErrorHandler(logger, includeStack).Handle(ctx, err)
}
