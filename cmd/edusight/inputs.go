package main

import (
	"context"
	"log/slog"

	"edusight/internal/config"
	"edusight/internal/dataprocessing"
	"edusight/internal/errors"
	"edusight/internal/files"
	"edusight/pkg/contracts/domain"
)

// loadScores finds the score exports of the configured grades and loads
// them. Missing grades are skipped; no score data at all is an error.
func (a *app) loadScores(ctx context.Context) ([]domain.StudentScore, error) {
	var scores []domain.StudentScore
	err := a.stage(ctx, "load_scores", func(ctx context.Context) error {
		found, missing := a.discovery.ScoreFiles(ctx, a.cfg.Inputs.ScorePattern, a.cfg.Inputs.Grades)
		for _, path := range found {
			a.out.Success("找到檔案: %s", path.Name)
		}
		for _, path := range missing {
			a.out.Warn("找不到檔案: %s", path)
		}

		if len(found) == 0 {
			var err error
			found, err = a.discovery.DiscoverScoreFiles(ctx)
			if err != nil {
				return err
			}
		}
		if len(found) == 0 {
			a.out.Fail("沒有找到任何學力測驗成績檔案")
			if csvs, err := a.discovery.FindCSVFiles(a.paths.InputDir); err == nil && len(csvs) > 0 {
				a.out.Line("輸入目錄中的 CSV 檔案:")
				for _, f := range csvs {
					a.out.Item("%s", f.Name)
				}
			}
			return errors.NewNotFoundError("score files").WithContext("dir", a.paths.InputDir)
		}

		var err error
		scores, err = a.loader.LoadScores(ctx, files.Paths(found))
		return err
	})
	if err != nil {
		return nil, err
	}
	a.out.ScoreDiagnostics(scores)
	return scores, nil
}

// loadWorkbook resolves and reads the usage workbook.
func (a *app) loadWorkbook(ctx context.Context) (*dataprocessing.UsageWorkbook, error) {
	var wb *dataprocessing.UsageWorkbook
	err := a.stage(ctx, "load_workbook", func(ctx context.Context) error {
		path, err := a.discovery.UsageWorkbook(ctx, a.cfg.Inputs.UsageWorkbook)
		if err != nil {
			return err
		}
		if err := a.validator.ValidateWorkbook(path); err != nil {
			return err
		}
		wb, err = a.loader.LoadUsageWorkbook(ctx, path)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, failed := range wb.Failed {
		a.out.Warn("無法處理分頁 %s", failed)
	}
	a.logger.InfoContext(ctx, "usage workbook loaded",
		slog.String("path", wb.Path),
		slog.Int("sheets", len(wb.Sheets)),
		slog.Any("sheet_names", wb.SheetNames()),
		slog.Int("failed", len(wb.Failed)))
	return wb, nil
}

// usageRecords loads the workbook and returns its non-zero math rows.
func (a *app) usageRecords(ctx context.Context) ([]domain.UsageRecord, error) {
	wb, err := a.loadWorkbook(ctx)
	if err != nil {
		return nil, err
	}
	records := a.loader.UsageRecords(ctx, wb)
	if len(records) == 0 {
		return nil, errors.NewNotFoundError("usage rows for "+a.cfg.Inputs.Subject).WithContext("path", wb.Path)
	}
	a.out.Success("平台資料載入成功，共 %d 筆", len(records))
	return records, nil
}

// schoolScores reads test_scores.csv written by the scores or platform command.
func (a *app) schoolScores(ctx context.Context) ([]domain.SchoolScore, error) {
	path := a.paths.GetDerivedInputPath(config.ScoreSummaryCSV)
	if err := a.discovery.Require(ctx, path, "test scores csv"); err != nil {
		a.out.Fail("找不到學力測驗成績檔案 %s，請先執行 scores 或 platform", path)
		return nil, err
	}
	scores, err := a.loader.LoadSchoolScores(ctx, path)
	if err != nil {
		return nil, err
	}
	a.out.Success("學力測驗成績載入成功，共 %d 筆", len(scores))
	return scores, nil
}
