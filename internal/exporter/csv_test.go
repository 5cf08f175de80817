package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edusight/internal/config"
)

func setupTestEnv(t *testing.T) (*CSVWriter, string) {
	t.Helper()
	dir := t.TempDir()
	return NewCSVWriter(&config.Paths{InputDir: dir, OutputDir: filepath.Join(dir, "out")}), dir
}

func TestNewCSVWriter(t *testing.T) {
	paths := &config.Paths{}
	writer := NewCSVWriter(paths)
	assert.NotNil(t, writer)
	assert.Equal(t, paths, writer.paths)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, dir := setupTestEnv(t)

	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		validate func(t *testing.T, content []byte)
	}{
		{
			name:     "basic write with headers",
			filePath: "basic.csv",
			options: WriteOptions{
				Headers: []string{"學校名稱", "總得分率"},
				Records: [][]string{
					{"金城國中", "0.61"},
					{"金湖國中", "0.55"},
				},
			},
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				require.Len(t, lines, 3)
				assert.Equal(t, "學校名稱,總得分率", lines[0])
				assert.Equal(t, "金城國中,0.61", lines[1])
			},
		},
		{
			name:     "write with BOM prefix",
			filePath: "bom.csv",
			options: WriteOptions{
				Headers:   []string{"學校名稱"},
				Records:   [][]string{{"金寧國中"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, content []byte) {
				assert.True(t, bytes.HasPrefix(content, utf8BOM))
				assert.Equal(t, "學校名稱\n金寧國中\n", string(content[3:]))
			},
		},
		{
			name:     "quotes fields with commas",
			filePath: "quoted.csv",
			options: WriteOptions{
				Headers: []string{"name"},
				Records: [][]string{{"a,b"}},
			},
			validate: func(t *testing.T, content []byte) {
				records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
				require.NoError(t, err)
				assert.Equal(t, [][]string{{"name"}, {"a,b"}}, records)
			},
		},
		{
			name:     "absolute path bypasses output dir",
			filePath: filepath.Join(dir, "abs", "direct.csv"),
			options: WriteOptions{
				Headers: []string{"x"},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "x\n", string(content))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := writer.WriteCSV(tt.filePath, tt.options)
			require.NoError(t, err)
			if filepath.IsAbs(tt.filePath) {
				assert.Equal(t, tt.filePath, path)
			} else {
				assert.Equal(t, filepath.Join(dir, "out", tt.filePath), path)
			}
			content, err := os.ReadFile(path)
			require.NoError(t, err)
			tt.validate(t, content)
		})
	}
}

func TestCSVWriter_StreamWriter(t *testing.T) {
	writer, _ := setupTestEnv(t)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"姓名", "總得分率"}, false)
	require.NoError(t, err)
	for _, row := range [][]string{{"甲", "0.5"}, {"乙", "0.7"}} {
		require.NoError(t, stream.WriteRecord(row))
	}
	assert.Equal(t, 2, stream.Rows())
	require.NoError(t, stream.Close())

	content, err := os.ReadFile(stream.Path())
	require.NoError(t, err)
	assert.Equal(t, "姓名,總得分率\n甲,0.5\n乙,0.7\n", string(content))
}
