package exporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"edusight/internal/config"
	"edusight/pkg/contracts/domain"
)

type kindRecorder struct {
	kinds []string
}

func (k *kindRecorder) OutputWritten(_ context.Context, kind string) {
	k.kinds = append(k.kinds, kind)
}

func TestExporterWritesCSV(t *testing.T) {
	dir := t.TempDir()
	rec := &kindRecorder{}
	exp, err := NewExporter(nil, config.ExportConfig{BOMPrefix: true}, &config.Paths{InputDir: dir, OutputDir: dir}, rec)
	require.NoError(t, err)

	path, err := exp.Write(context.Background(), SchoolScoresTable([]domain.SchoolScore{{SchoolName: "金城國中", ScoreRate: 0.5}}))
	require.NoError(t, err)
	require.NoError(t, exp.Close(context.Background()))

	assert.Equal(t, filepath.Join(dir, config.ScoreSummaryCSV), path)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\uFEFF學校名稱,總得分率\n金城國中,0.5\n", string(content))
	assert.Equal(t, []string{"csv"}, rec.kinds)
	assert.NoFileExists(t, filepath.Join(dir, config.SummaryWorkbook))
}

func TestExporterMirrorsWorkbook(t *testing.T) {
	dir := t.TempDir()
	paths := &config.Paths{InputDir: dir, OutputDir: dir}
	ctx := context.Background()

	rec := &kindRecorder{}
	exp, err := NewExporter(nil, config.ExportConfig{Workbook: true}, paths, rec)
	require.NoError(t, err)
	_, err = exp.Write(ctx, SchoolScoresTable([]domain.SchoolScore{{SchoolName: "金城國中", ScoreRate: 0.5}}))
	require.NoError(t, err)
	require.NoError(t, exp.Close(ctx))
	assert.Equal(t, []string{"csv", "xlsx"}, rec.kinds)

	// a second run adds its own sheet and keeps the first one
	exp, err = NewExporter(nil, config.ExportConfig{Workbook: true}, paths, nil)
	require.NoError(t, err)
	_, err = exp.Write(ctx, PlatformMeansTable([]domain.SchoolUsageMeans{{SchoolName: "金湖國中", PlatformUsage: 3}}))
	require.NoError(t, err)
	require.NoError(t, exp.Close(ctx))

	f, err := excelize.OpenFile(filepath.Join(dir, config.SummaryWorkbook))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"test_scores", "platform_means"}, f.GetSheetList())

	rows, err := f.GetRows("test_scores")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"學校名稱", "總得分率"}, {"金城國中", "0.5"}}, rows)

	value, err := f.GetCellValue("platform_means", "B2")
	require.NoError(t, err)
	assert.Equal(t, "3", value)
}

func TestWorkbookReplacesSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	wb, err := OpenWorkbook(path)
	require.NoError(t, err)

	table := Table{Sheet: "data", Headers: []string{"name", "v"}, Records: [][]string{{"a", "1"}, {"b", "2"}}}
	require.NoError(t, wb.AddTable(table))
	table.Records = [][]string{{"c", "3"}}
	require.NoError(t, wb.AddTable(table))
	saved, err := wb.Save()
	require.NoError(t, err)
	assert.True(t, saved)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("data")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"name", "v"}, {"c", "3"}}, rows)
}

func TestWorkbookSaveWithoutTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	wb, err := OpenWorkbook(path)
	require.NoError(t, err)
	saved, err := wb.Save()
	require.NoError(t, err)
	assert.False(t, saved)
	assert.NoFileExists(t, path)
}
