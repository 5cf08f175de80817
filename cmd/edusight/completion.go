package main

import (
	"context"

	"github.com/spf13/cobra"

	"edusight/internal/analysis"
	"edusight/internal/charts"
	"edusight/internal/errors"
	"edusight/internal/report"
	"edusight/pkg/contracts/domain"
)

// minBubbleSchools is the number of complete rows a bubble chart needs.
const minBubbleSchools = 3

func newCompletionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "completion",
		Short: "Correlate task platform completion and accuracy with test score rates",
		Long: `Joins the task platform export (inputs.task_platform_csv) with
test_scores.csv on normalized school names and relates the overall math
completion rate and the average math accuracy to the score rate.`,
		Args: cobra.NoArgs,
		RunE: runE(opts, "completion", runCompletion),
	}
}

func runCompletion(ctx context.Context, a *app) error {
	path := a.paths.GetInputPath(a.cfg.Inputs.TaskPlatformCSV)
	if err := a.discovery.Require(ctx, path, "task platform csv"); err != nil {
		a.out.Fail("找不到平台數據檔案 %s", path)
		return err
	}
	if err := a.validator.ValidateCSV(path); err != nil {
		return err
	}
	tasks, err := a.loader.LoadTaskPlatform(ctx, path)
	if err != nil {
		return err
	}
	a.out.Success("平台數據載入成功，共 %d 筆", len(tasks))

	schoolScores, err := a.schoolScores(ctx)
	if err != nil {
		return err
	}

	a.out.Section("標準化後的學校名稱")
	a.out.NameChanges("平台數據標準化名稱", a.normalizer.PlatformChanges(taskNames(tasks)))
	a.out.NameChanges("測驗成績標準化名稱", a.normalizer.ScoreChanges(scoreNames(schoolScores)))

	joined := analysis.JoinSchoolTasks(tasks, schoolScores, a.normalizer)
	pairs := make([][2]string, len(joined))
	for i, t := range joined {
		pairs[i] = [2]string{t.PlatformName, t.ScoreName}
	}
	a.out.MatchedSchools(pairs)

	rows := analysis.CompleteTasks(joined)
	if len(rows) == 0 {
		a.out.Fail("沒有成功合併的數據")
		return errors.NewNotFoundError("matched schools")
	}
	if len(rows) < a.cfg.Cleaning.MinJoinSchools {
		a.out.Warn("合併後的數據太少（少於%d個學校），可能影響分析可靠性", a.cfg.Cleaning.MinJoinSchools)
	}
	a.out.Success("最終用於分析的數據共有 %d 筆", len(rows))

	completion, accuracy := analysis.CorrelateTasks(rows)
	a.out.Correlations("相關性分析結果", []report.Correlation{
		{Label: "平台完成率 vs 測驗得分率", Value: completion},
		{Label: "平台正答率 vs 測驗得分率", Value: accuracy},
	})

	a.chart(ctx, charts.TaskPanelsPNG, func(r *charts.Renderer) (string, error) {
		return r.Panels(ctx, charts.TaskPanelsPNG, 2, taskPanels(rows, completion, accuracy))
	})
	if len(rows) >= minBubbleSchools {
		a.chart(ctx, charts.TaskBubblePNG, func(r *charts.Renderer) (string, error) {
			return r.Bubble(ctx, charts.TaskBubblePNG, taskBubble(rows))
		})
	} else {
		a.out.Warn("有效數據不足，跳過多維氣泡圖")
	}

	printTaskRanges(a.out, rows)
	return nil
}

func taskPanels(rows []analysis.SchoolTask, completion, accuracy float64) []charts.Panel {
	comp := charts.Panel{
		Title:  "康軒平台任務完成率與學力測驗得分率關係",
		XLabel: "平台整體數學完成率 (%)",
		YLabel: "學力測驗平均得分率",
		Corr:   completion,
	}
	acc := charts.Panel{
		Title:  "康軒平台任務正答率與學力測驗得分率關係",
		XLabel: "平台平均數學正答率 (%)",
		YLabel: "學力測驗平均得分率",
		Corr:   accuracy,
	}
	for _, r := range rows {
		comp.Points = append(comp.Points, charts.Point{X: r.CompletionRate, Y: r.ScoreRate, Label: r.Name})
		acc.Points = append(acc.Points, charts.Point{X: r.AccuracyRate, Y: r.ScoreRate, Label: r.Name})
	}
	return []charts.Panel{comp, acc}
}

func taskBubble(rows []analysis.SchoolTask) charts.Bubble {
	b := charts.Bubble{
		Title:     "康軒平台完成率、正答率與學力測驗成績的多維關係",
		XLabel:    "平台整體數學完成率 (%)",
		YLabel:    "平台平均數學正答率 (%)",
		SizeLabel: "測驗得分率",
		ColorName: "學力測驗平均得分率",
	}
	for _, r := range rows {
		b.Points = append(b.Points, charts.BubblePoint{
			X:     r.CompletionRate,
			Y:     r.AccuracyRate,
			Size:  r.ScoreRate,
			Color: r.ScoreRate,
			Label: r.Name,
		})
	}
	return b
}

func printTaskRanges(out *report.Printer, rows []analysis.SchoolTask) {
	comp := make([]float64, len(rows))
	acc := make([]float64, len(rows))
	score := make([]float64, len(rows))
	for i, r := range rows {
		comp[i], acc[i], score[i] = r.CompletionRate, r.AccuracyRate, r.ScoreRate
	}
	compLo, compHi := analysis.Range(comp)
	accLo, accHi := analysis.Range(acc)
	scoreLo, scoreHi := analysis.Range(score)

	out.Section("分析結果摘要")
	out.KV(
		[2]string{"分析學校數量", formatInt(len(rows))},
		[2]string{"平台完成率範圍", formatRange(compLo, compHi, 1) + "%"},
		[2]string{"平台正答率範圍", formatRange(accLo, accHi, 1) + "%"},
		[2]string{"測驗得分率範圍", formatRange(scoreLo, scoreHi, 3)},
	)
}

func taskNames(tasks []domain.TaskPlatformRecord) []string {
	names := make([]string, len(tasks))
	for i, t := range tasks {
		names[i] = t.SchoolName
	}
	return names
}
