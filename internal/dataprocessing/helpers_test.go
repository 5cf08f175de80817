package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/traditionalchinese"
)

type scoreRow struct {
	code, school, name, gender, rate string
}

func testLoader() *Loader {
	return NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)), LoaderConfig{})
}

// scoreRecords builds a 20-column export with the renamed fields at their positions.
func scoreRecords(rows []scoreRow) [][]string {
	header := make([]string, 20)
	for i := range header {
		header[i] = fmt.Sprintf("欄%d", i)
	}
	records := [][]string{header}
	for _, r := range rows {
		rec := make([]string, 20)
		for i := range rec {
			rec[i] = "x"
		}
		rec[2], rec[3], rec[8], rec[9], rec[18] = r.code, r.school, r.name, r.gender, r.rate
		records = append(records, rec)
	}
	return records
}

func encodeCSV(t *testing.T, records [][]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	require.NoError(t, w.WriteAll(records))
	return buf.Bytes()
}

func toBig5(t *testing.T, data []byte) []byte {
	t.Helper()
	out, err := traditionalchinese.Big5.NewEncoder().Bytes(data)
	require.NoError(t, err)
	return out
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func scoreFileName(grade int) string {
	return fmt.Sprintf("113年度_學力測驗_金門縣_數學%d年級成績_202406.csv", grade)
}
