package testutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/traditionalchinese"

	"edusight/internal/config"
)

// ScoreRow is one student line of a score export fixture.
type ScoreRow struct {
	School, Name, Gender, Rate string
}

// UsageHeader is the header row of a usage workbook sheet.
var UsageHeader = []any{
	"姓名", config.ColGrade, config.ColSubject,
	config.ColPracticeAvgScore, config.ColSelfTests, config.ColPracticeQuestions,
	config.ColAssignedVideos, config.ColSelfVideos, config.ColVideoHours,
}

// ScoreExport lays rows out as a 20-column export with the renamed fields
// at their positions and filler everywhere else.
func ScoreExport(rows []ScoreRow) [][]string {
	header := make([]string, 20)
	for i := range header {
		header[i] = fmt.Sprintf("欄%d", i)
	}
	records := [][]string{header}
	for i, r := range rows {
		rec := make([]string, 20)
		for j := range rec {
			rec[j] = "0"
		}
		rec[config.ScoreColSchoolCode] = fmt.Sprintf("7100%02d", i)
		rec[config.ScoreColSchoolName] = r.School
		rec[config.ScoreColName] = r.Name
		rec[config.ScoreColGender] = r.Gender
		rec[config.ScoreColScoreRate] = r.Rate
		records = append(records, rec)
	}
	return records
}

// WriteScoreExport writes the default-named export of one grade in Big5.
func WriteScoreExport(t *testing.T, dir string, grade int, rows []ScoreRow) string {
	t.Helper()
	data, err := traditionalchinese.Big5.NewEncoder().Bytes(EncodeCSV(t, ScoreExport(rows)))
	require.NoError(t, err)
	path := filepath.Join(dir, fmt.Sprintf(config.DefaultScorePattern, grade))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// WriteWorkbook saves one sheet per name, in order, replacing Sheet1.
func WriteWorkbook(t *testing.T, path string, names []string, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range names {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

// EncodeCSV renders records as UTF-8 CSV.
func EncodeCSV(t *testing.T, records [][]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, csv.NewWriter(&buf).WriteAll(records))
	return buf.Bytes()
}

// WriteCSV writes records as a UTF-8 CSV file.
func WriteCSV(t *testing.T, path string, records [][]string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, EncodeCSV(t, records), 0644))
	return path
}

// ReadCSV reads a CSV file, ignoring a UTF-8 byte order mark.
func ReadCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\uFEFF")))).ReadAll()
	require.NoError(t, err)
	return records
}
