package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"edusight/internal/config"
	"edusight/internal/errors"
	"edusight/pkg/contracts/domain"
)

// DefaultSubject is the workbook subject analysed.
const DefaultSubject = config.DefaultMathSubject

// UsageSheet is one school sheet of the usage workbook. Rows holds every
// row of the analysed subject with cleaned metrics, including all-zero rows.
type UsageSheet struct {
	Name       string
	HasSubject bool
	Rows       []domain.UsageRecord
}

// UsageWorkbook is the parsed usage workbook in sheet order.
type UsageWorkbook struct {
	Path   string
	Sheets []UsageSheet
	Failed []string // sheets skipped because of errors
}

// SheetNames lists every sheet that was read.
func (wb *UsageWorkbook) SheetNames() []string {
	names := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		names[i] = s.Name
	}
	return names
}

var chineseGrades = map[string]int{
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5, "六": 6,
	"七": 7, "八": 8, "九": 9, "十": 10, "十一": 11, "十二": 12,
}

// ParseGrade reads workbook grade cells such as "3", "3.0", "3年級" or "三年級".
func ParseGrade(s string) (int, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "年級")
	s = strings.TrimSuffix(s, "年")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if v != math.Trunc(v) || v <= 0 {
			return 0, false
		}
		return int(v), true
	}
	if g, ok := chineseGrades[s]; ok {
		return g, true
	}
	return 0, false
}

// LoadUsageWorkbook reads every sheet of the workbook at path. A sheet that
// cannot be parsed is logged, listed in Failed and skipped.
func (l *Loader) LoadUsageWorkbook(ctx context.Context, path string) (*UsageWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		l.recorder.FileFailed(ctx, "workbook")
		return nil, errors.NewStorageError("failed to open usage workbook", err).WithContext("path", path)
	}
	defer f.Close()

	wb := &UsageWorkbook{Path: path}
	sheets := f.GetSheetList()
	l.logger.InfoContext(ctx, "usage workbook opened",
		slog.String("path", path),
		slog.Int("sheets", len(sheets)))

	for _, name := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			l.logger.WarnContext(ctx, "sheet skipped",
				slog.String("sheet", name),
				slog.String("error", err.Error()))
			wb.Failed = append(wb.Failed, name)
			continue
		}

		sheet, err := l.parseUsageSheet(name, rows)
		if err != nil {
			l.logger.WarnContext(ctx, "sheet skipped",
				slog.String("sheet", name),
				slog.String("error", err.Error()))
			wb.Failed = append(wb.Failed, name)
			continue
		}

		l.logger.DebugContext(ctx, "sheet parsed",
			slog.String("sheet", name),
			slog.Bool("has_subject", sheet.HasSubject),
			slog.Int("raw_rows", max(len(rows)-1, 0)),
			slog.Int("subject_rows", len(sheet.Rows)))
		wb.Sheets = append(wb.Sheets, sheet)
	}

	l.recorder.FileLoaded(ctx, "workbook")
	return wb, nil
}

func (l *Loader) parseUsageSheet(name string, rows [][]string) (UsageSheet, error) {
	sheet := UsageSheet{Name: name}
	if len(rows) == 0 || !containsString(rows[0], config.ColSubject) {
		return sheet, nil
	}
	sheet.HasSubject = true
	if len(rows) == 1 {
		return sheet, nil
	}

	rows[0] = trimAll(rows[0])
	df := dataframe.LoadRecords(padRecords(rows),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return sheet, errors.NewParsingError("failed to load sheet", df.Err)
	}

	df = df.Filter(dataframe.F{
		Colname:    config.ColSubject,
		Comparator: series.Eq,
		Comparando: l.subject,
	})
	if df.Err != nil {
		return sheet, errors.NewParsingError("failed to filter subject", df.Err)
	}

	n := df.Nrow()
	if n == 0 {
		return sheet, nil
	}
	for _, col := range config.UsageMetricColumns {
		if !containsString(df.Names(), col) {
			return sheet, errors.NewParsingError(fmt.Sprintf("missing column %s", col), nil)
		}
	}

	metrics := make([][]string, len(config.UsageMetricColumns))
	for i, col := range config.UsageMetricColumns {
		metrics[i] = df.Col(col).Records()
	}
	var grades []string
	if containsString(df.Names(), config.ColGrade) {
		grades = df.Col(config.ColGrade).Records()
	}

	sheet.Rows = make([]domain.UsageRecord, n)
	for i := 0; i < n; i++ {
		rec := domain.UsageRecord{
			SchoolName:        name,
			Subject:           l.subject,
			PracticeAvgScore:  CleanNumber(metrics[0][i]),
			SelfTests:         CleanNumber(metrics[1][i]),
			PracticeQuestions: CleanNumber(metrics[2][i]),
			AssignedVideos:    CleanNumber(metrics[3][i]),
			SelfVideos:        CleanNumber(metrics[4][i]),
			VideoHours:        CleanNumber(metrics[5][i]),
		}
		if grades != nil {
			rec.Grade, _ = ParseGrade(grades[i])
		}
		sheet.Rows[i] = rec
	}
	return sheet, nil
}

// FilterNonZero keeps the records with at least one non-zero metric.
func FilterNonZero(records []domain.UsageRecord) []domain.UsageRecord {
	out := make([]domain.UsageRecord, 0, len(records))
	for _, r := range records {
		if r.IsActive() {
			out = append(out, r)
		}
	}
	return out
}

// UsageRecords concatenates the active subject rows of every sheet.
func (l *Loader) UsageRecords(ctx context.Context, wb *UsageWorkbook) []domain.UsageRecord {
	var out []domain.UsageRecord
	for _, s := range wb.Sheets {
		active := FilterNonZero(s.Rows)
		l.recorder.RowsDropped(ctx, "usage", len(s.Rows)-len(active))
		out = append(out, active...)
	}
	l.recorder.RowsLoaded(ctx, "usage", len(out))
	return out
}

func trimAll(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if strings.TrimSpace(v) == s {
			return true
		}
	}
	return false
}
