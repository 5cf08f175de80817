package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewPaths(PathsConfig{InputDir: dir, OutputDir: filepath.Join(dir, "out")})
	require.NoError(t, err)

	assert.Equal(t, dir, paths.InputDir)
	assert.True(t, filepath.IsAbs(paths.OutputDir))
	assert.NoDirExists(t, paths.OutputDir)

	require.NoError(t, paths.EnsureDirectories())
	assert.DirExists(t, paths.OutputDir)

	rel, err := NewPaths(PathsConfig{InputDir: ".", OutputDir: "reports"})
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, rel.InputDir)
	assert.Equal(t, filepath.Join(wd, "reports"), rel.OutputDir)
}

func TestPathResolution(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	paths := &Paths{InputDir: in, OutputDir: out}
	abs := filepath.Join(t.TempDir(), "elsewhere.csv")

	assert.Equal(t, filepath.Join(in, "platform_data.csv"), paths.GetInputPath("platform_data.csv"))
	assert.Equal(t, abs, paths.GetInputPath(abs))
	assert.Equal(t, filepath.Join(out, ScoreSummaryCSV), paths.GetReportPath(ScoreSummaryCSV))
	assert.Equal(t, abs, paths.GetReportPath(abs))

	t.Run("derived file falls back to the input dir", func(t *testing.T) {
		assert.Equal(t, filepath.Join(in, ScoreSummaryCSV), paths.GetDerivedInputPath(ScoreSummaryCSV))
	})

	t.Run("derived file prefers the output dir", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(out, ScoreSummaryCSV), []byte("x"), 0644))
		assert.Equal(t, filepath.Join(out, ScoreSummaryCSV), paths.GetDerivedInputPath(ScoreSummaryCSV))
	})
}

func TestScoreFiles(t *testing.T) {
	files := ScoreFiles(DefaultScorePattern, []int{3, 8})
	require.Len(t, files, 2)
	assert.Equal(t, fmt.Sprintf(DefaultScorePattern, 3), files[0])
	assert.Contains(t, files[1], "數學8年級")
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.csv")
	assert.False(t, FileExists(path))
	require.NoError(t, os.WriteFile(path, nil, 0644))
	assert.True(t, FileExists(path))
}
