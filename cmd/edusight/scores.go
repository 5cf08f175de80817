package main

import (
	"context"

	"github.com/spf13/cobra"

	"edusight/internal/analysis"
	"edusight/internal/exporter"
)

func newScoresCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scores",
		Short: "Load the score exports and write per-school mean score rates",
		Long: `Loads every configured grade export, prints load diagnostics and the
mean score rate of each school, and writes them to test_scores.csv.`,
		Args: cobra.NoArgs,
		RunE: runE(opts, "scores", runScores),
	}
}

func runScores(ctx context.Context, a *app) error {
	scores, err := a.loadScores(ctx)
	if err != nil {
		return err
	}

	means := analysis.SchoolMeans(scores)
	a.out.SchoolMeans(means)

	path, err := a.export(ctx, exporter.SchoolScoresTable(means))
	if err != nil {
		return err
	}
	a.out.Success("學力測驗成績已匯出至 %s，共 %d 所學校的資料", path, len(means))
	return nil
}
