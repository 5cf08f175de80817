package main

import (
	"context"

	"github.com/spf13/cobra"

	"edusight/internal/analysis"
	"edusight/internal/exporter"
	"edusight/internal/report"
)

func newPlatformCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "platform",
		Short: "Prepare school-level score and platform usage tables",
		Long: `Writes test_scores.csv from the score exports and liyou_platform_data.csv
with the per-school means of the usage workbook, then previews the join of
both on normalized school names. Correlations are printed once enough
schools match (cleaning.min_join_schools).`,
		Args: cobra.NoArgs,
		RunE: runE(opts, "platform", runPlatform),
	}
}

func runPlatform(ctx context.Context, a *app) error {
	a.out.Section("步驟1: 載入學力測驗成績")
	scores, err := a.loadScores(ctx)
	if err != nil {
		return err
	}
	schoolScores := analysis.SchoolMeans(scores)
	if _, err := a.export(ctx, exporter.SchoolScoresTable(schoolScores)); err != nil {
		return err
	}
	a.out.Success("學力測驗成績已匯出，共 %d 所學校", len(schoolScores))

	a.out.Section("步驟2: 載入力宇教育平台數據")
	records, err := a.usageRecords(ctx)
	if err != nil {
		a.out.Fail("無法載入力宇平台數據")
		return err
	}
	a.out.WorkbookStats(records)

	a.out.Section("步驟3: 計算各學校平台使用統計")
	means := analysis.SchoolUsageMeans(records)
	table := exporter.PlatformMeansTable(means)
	if _, err := a.export(ctx, table); err != nil {
		return err
	}
	a.out.Success("力宇平台數據已匯出，共 %d 所學校", len(means))
	a.out.Table(table.Headers, table.Records)

	a.out.Section("步驟4: 合併數據進行初步分析")
	matched := analysis.JoinSchoolUsage(means, schoolScores, a.normalizer)
	if len(matched) == 0 {
		a.out.Warn("沒有成功匹配的學校數據，請檢查學校名稱是否一致")
		return nil
	}
	a.out.MatchedSchools(comparisonPairs(matched))

	if len(matched) < a.cfg.Cleaning.MinJoinSchools {
		a.out.Warn("匹配的學校少於 %d 所，略過相關性分析", a.cfg.Cleaning.MinJoinSchools)
		return nil
	}
	corr := analysis.CorrelateSchoolUsage(matched)
	a.out.Correlations("初步相關性分析", []report.Correlation{
		{Label: "平台使用量 vs 測驗得分率", Value: corr.PlatformUsage},
		{Label: "自我練習成績 vs 測驗得分率", Value: corr.PracticeScore},
	})
	return nil
}

func comparisonPairs(rows []analysis.SchoolComparison) [][2]string {
	pairs := make([][2]string, len(rows))
	for i, r := range rows {
		pairs[i] = [2]string{r.PlatformName, r.ScoreName}
	}
	return pairs
}
