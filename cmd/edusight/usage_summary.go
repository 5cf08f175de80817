package main

import (
	"context"

	"github.com/spf13/cobra"

	"edusight/internal/analysis"
	"edusight/internal/charts"
	"edusight/internal/exporter"
)

func newUsageSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "usage-summary",
		Short: "Summarise platform usage per school sheet",
		Long: `Totals the math activity of every school sheet in the usage workbook,
prints the table sorted by total usage with adoption statistics, writes
力宇平台學校使用統計.csv and draws a bubble chart of the active schools.`,
		Args: cobra.NoArgs,
		RunE: runE(opts, "usage-summary", runUsageSummary),
	}
}

func runUsageSummary(ctx context.Context, a *app) error {
	wb, err := a.loadWorkbook(ctx)
	if err != nil {
		return err
	}

	summaries := analysis.SummarizeUsageBySchool(wb.Sheets)
	a.out.UsageSummary(summaries, analysis.OverviewOf(summaries))

	if _, err := a.export(ctx, exporter.UsageSummaryTable(summaries)); err != nil {
		return err
	}

	active := analysis.ActiveSummaries(summaries)
	if len(active) == 0 {
		a.out.Warn("沒有學校使用力宇平台")
		return nil
	}

	points := make([]charts.BubblePoint, len(active))
	for i, s := range active {
		points[i] = charts.BubblePoint{
			X:     s.QuestionsPerPupil,
			Y:     s.AvgPracticeScore,
			Size:  s.TotalUsage,
			Color: s.VideosPerPupil,
			Label: s.SchoolName,
		}
	}
	a.chart(ctx, charts.UsageSummaryPNG, func(r *charts.Renderer) (string, error) {
		return r.Bubble(ctx, charts.UsageSummaryPNG, charts.Bubble{
			Title:     "力宇平台使用量、練習成績與影片學習的多維關係",
			XLabel:    "平均每生練習題數",
			YLabel:    "平均練習成績",
			SizeLabel: "總平台使用量",
			ColorName: "平均每生影片數",
			Points:    points,
		})
	})
	return nil
}
