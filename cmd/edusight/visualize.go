package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"edusight/internal/analysis"
	"edusight/internal/charts"
	"edusight/internal/exporter"
	"edusight/internal/report"
	"edusight/pkg/contracts/domain"
)

func newVisualizeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "visualize",
		Short: "Chart score differences by grade, gender and school, and against platform usage",
		Long: `Draws grade, gender and school comparison charts from the score exports,
writes the school by grade pivot of the largest schools, then joins the
students with the usage workbook on school and grade and plots usage
against score rate.

A missing or empty usage workbook only skips the usage scatter.`,
		Args: cobra.NoArgs,
		RunE: runE(opts, "visualize", runVisualize),
	}
}

func runVisualize(ctx context.Context, a *app) error {
	scores, err := a.loadScores(ctx)
	if err != nil {
		return err
	}

	gradeMeans := analysis.GradeMeans(scores)
	a.out.GradeMeans(gradeMeans)

	a.chart(ctx, charts.GradeMeansPNG, func(r *charts.Renderer) (string, error) {
		return r.GradeMeans(ctx, gradeMeans)
	})
	a.chart(ctx, charts.GradeDistributionPNG, func(r *charts.Renderer) (string, error) {
		return r.GradeDistribution(ctx, analysis.GradeScores(scores))
	})
	a.chart(ctx, charts.GenderMeansPNG, func(r *charts.Renderer) (string, error) {
		return r.GenderByGrade(ctx, analysis.GradeGenderMeans(scores))
	})
	a.chart(ctx, charts.GenderSpreadPNG, func(r *charts.Renderer) (string, error) {
		return r.GenderSpread(ctx, scores)
	})

	if err := a.schoolDifferences(ctx, scores); err != nil {
		return err
	}

	a.usageScatter(ctx, scores)
	return nil
}

// schoolDifferences compares the schools with the most students.
func (a *app) schoolDifferences(ctx context.Context, scores []domain.StudentScore) error {
	top := analysis.FilterSchools(scores, analysis.TopSchools(scores, a.cfg.Charts.TopN))

	if _, err := a.export(ctx, exporter.PivotTable(analysis.SchoolGradePivot(top))); err != nil {
		return err
	}

	for _, g := range analysis.Grades(scores) {
		means := analysis.GradeSchoolMeans(top, g)
		if len(means) == 0 {
			continue
		}
		a.chart(ctx, fmt.Sprintf(charts.GradeSchoolPNGFormat, g), func(r *charts.Renderer) (string, error) {
			return r.GradeSchools(ctx, g, means)
		})
	}
	return nil
}

// usageScatter joins students with their school and grade usage rows.
func (a *app) usageScatter(ctx context.Context, scores []domain.StudentScore) {
	records, err := a.usageRecords(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "usage data unavailable", slog.String("error", err.Error()))
		a.out.Warn("無法載入平台使用數據或數據為空")
		return
	}

	joined := analysis.JoinStudentsUsage(scores, records)
	a.out.Success("成績與平台資料合併成功，共 %d 筆", len(joined))
	if len(joined) == 0 {
		a.out.Warn("沒有相同學校與年級的資料可以比較")
		return
	}

	usage := make([]float64, len(joined))
	rates := make([]float64, len(joined))
	for i, row := range joined {
		usage[i] = row.Usage.PlatformUsage()
		rates[i] = row.Student.ScoreRate
	}
	corr := analysis.Pearson(usage, rates)
	buckets := analysis.BucketUsage(usage, rates)

	a.out.Correlations("平台使用量與成績", []report.Correlation{{Label: "平台使用量 vs 總得分率", Value: corr}})
	a.chart(ctx, charts.UsageScatterPNG, func(r *charts.Renderer) (string, error) {
		return r.UsageScatter(ctx, joined, buckets, corr)
	})
}
