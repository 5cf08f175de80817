package main

import (
	"context"

	"github.com/spf13/cobra"

	"edusight/internal/analysis"
	"edusight/internal/charts"
	"edusight/internal/config"
	"edusight/internal/errors"
	"edusight/internal/exporter"
	"edusight/internal/report"
	"edusight/pkg/contracts/domain"
)

func newCorrelateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "correlate",
		Short: "Correlate per-school platform usage with test score rates",
		Long: `Joins liyou_platform_data.csv and test_scores.csv on normalized school
names, prints four correlations with the score rate, draws regression
panels and a bubble chart, and writes the ranked comparison table to
力宇平台與測驗成績統計.csv.`,
		Args: cobra.NoArgs,
		RunE: runE(opts, "correlate", runCorrelate),
	}
}

func runCorrelate(ctx context.Context, a *app) error {
	path := a.paths.GetDerivedInputPath(config.PlatformMeansCSV)
	if err := a.discovery.Require(ctx, path, "platform means csv"); err != nil {
		a.out.Fail("找不到力宇平台數據檔案 %s，請先執行 platform", path)
		return err
	}
	means, err := a.loader.LoadSchoolUsageMeans(ctx, path)
	if err != nil {
		return err
	}
	a.out.Success("力宇平台數據載入成功，共 %d 筆", len(means))

	schoolScores, err := a.schoolScores(ctx)
	if err != nil {
		return err
	}

	a.out.Section("學校名稱標準化")
	a.out.NameChanges("力宇平台數據標準化名稱", a.normalizer.PlatformChanges(usageNames(means)))
	a.out.NameChanges("測驗成績標準化名稱", a.normalizer.ScoreChanges(scoreNames(schoolScores)))

	joined := analysis.JoinSchoolUsage(means, schoolScores, a.normalizer)
	a.out.MatchedSchools(comparisonPairs(joined))

	rows := analysis.CompleteComparisons(joined)
	if len(rows) == 0 {
		a.out.Fail("沒有成功合併的數據")
		return errors.NewNotFoundError("matched schools")
	}
	if len(rows) < a.cfg.Cleaning.MinJoinSchools {
		a.out.Warn("合併後的數據太少（少於%d個學校），可能影響分析可靠性", a.cfg.Cleaning.MinJoinSchools)
	}
	a.out.Success("最終用於分析的數據共有 %d 筆", len(rows))

	corr := analysis.CorrelateSchoolUsage(rows)
	a.out.Correlations("相關性分析結果", []report.Correlation{
		{Label: "平台使用量 vs 測驗得分率", Value: corr.PlatformUsage},
		{Label: "自我練習成績 vs 測驗得分率", Value: corr.PracticeScore},
		{Label: "影片使用量 vs 測驗得分率", Value: corr.VideoUsage},
		{Label: "累積影片時數 vs 測驗得分率", Value: corr.VideoHours},
	})

	a.chart(ctx, charts.PlatformPanelsPNG, func(r *charts.Renderer) (string, error) {
		return r.Panels(ctx, charts.PlatformPanelsPNG, 2, usagePanels(rows, corr))
	})
	a.chart(ctx, charts.PlatformBubblePNG, func(r *charts.Renderer) (string, error) {
		return r.Bubble(ctx, charts.PlatformBubblePNG, usageBubble(rows))
	})

	printComparisonRanges(a.out, rows)

	table := analysis.ComparisonTable(rows)
	a.out.Comparison(table)
	if _, err := a.export(ctx, exporter.ComparisonTable(table)); err != nil {
		return err
	}

	a.out.MedianSplit(analysis.MedianSplit(rows))
	return nil
}

func usagePanels(rows []analysis.SchoolComparison, corr analysis.UsageCorrelations) []charts.Panel {
	pick := func(title, xlabel string, x func(domain.SchoolUsageMeans) float64, c float64) charts.Panel {
		p := charts.Panel{Title: title, XLabel: xlabel, YLabel: "學力測驗得分率", Corr: c}
		for _, r := range rows {
			p.Points = append(p.Points, charts.Point{X: x(r.Usage), Y: r.ScoreRate, Label: r.Name})
		}
		return p
	}
	return []charts.Panel{
		pick("平台使用量與學力測驗得分率關係", "平台使用量", func(m domain.SchoolUsageMeans) float64 { return m.PlatformUsage }, corr.PlatformUsage),
		pick("自我練習成績與學力測驗得分率關係", "自我練習平均成績", func(m domain.SchoolUsageMeans) float64 { return m.PracticeAvgScore }, corr.PracticeScore),
		pick("影片使用量與學力測驗得分率關係", "影片使用量", func(m domain.SchoolUsageMeans) float64 { return m.VideoUsage }, corr.VideoUsage),
		pick("累積影片時數與學力測驗得分率關係", "累積影片總時數", func(m domain.SchoolUsageMeans) float64 { return m.VideoHours }, corr.VideoHours),
	}
}

func usageBubble(rows []analysis.SchoolComparison) charts.Bubble {
	b := charts.Bubble{
		Title:     "力宇平台多維使用效果與學力測驗成績關係",
		XLabel:    "平台使用量",
		YLabel:    "自我練習平均成績",
		SizeLabel: "測驗得分率",
		ColorName: "影片使用量",
	}
	for _, r := range rows {
		b.Points = append(b.Points, charts.BubblePoint{
			X:     r.Usage.PlatformUsage,
			Y:     r.Usage.PracticeAvgScore,
			Size:  r.ScoreRate,
			Color: r.Usage.VideoUsage,
			Label: r.Name,
		})
	}
	return b
}

func printComparisonRanges(out *report.Printer, rows []analysis.SchoolComparison) {
	column := func(f func(analysis.SchoolComparison) float64) (float64, float64) {
		values := make([]float64, len(rows))
		for i, r := range rows {
			values[i] = f(r)
		}
		return analysis.Range(values)
	}
	usageLo, usageHi := column(func(r analysis.SchoolComparison) float64 { return r.Usage.PlatformUsage })
	practiceLo, practiceHi := column(func(r analysis.SchoolComparison) float64 { return r.Usage.PracticeAvgScore })
	videoLo, videoHi := column(func(r analysis.SchoolComparison) float64 { return r.Usage.VideoUsage })
	hoursLo, hoursHi := column(func(r analysis.SchoolComparison) float64 { return r.Usage.VideoHours })
	scoreLo, scoreHi := column(func(r analysis.SchoolComparison) float64 { return r.ScoreRate })

	out.Section("力宇平台使用與學力測驗分析摘要")
	out.KV(
		[2]string{"分析學校數量", formatInt(len(rows))},
		[2]string{"平台使用量範圍", formatRange(usageLo, usageHi, 1)},
		[2]string{"自我練習成績範圍", formatRange(practiceLo, practiceHi, 1)},
		[2]string{"影片使用量範圍", formatRange(videoLo, videoHi, 1)},
		[2]string{"累積影片時數範圍", formatRange(hoursLo, hoursHi, 1)},
		[2]string{"測驗得分率範圍", formatRange(scoreLo, scoreHi, 3)},
	)
}

func usageNames(means []domain.SchoolUsageMeans) []string {
	names := make([]string, len(means))
	for i, m := range means {
		names[i] = m.SchoolName
	}
	return names
}

func scoreNames(scores []domain.SchoolScore) []string {
	names := make([]string, len(scores))
	for i, s := range scores {
		names[i] = s.SchoolName
	}
	return names
}
