package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCapture(t *testing.T) {
	logger, logs := NewTestLogger()
	logger.With(slog.String("command", "scores")).
		WithGroup("file").
		Warn("score file skipped", slog.String("path", "a.csv"))
	logger.Info("run started")

	require.Len(t, logs.Records(), 2)
	r := AssertLogged(t, logs, slog.LevelWarn, "skipped")
	assert.Equal(t, "scores", r.Attrs["command"])
	assert.Equal(t, "a.csv", r.Attrs["file.path"])

	_, ok := logs.Find("run started")
	assert.True(t, ok)
	_, ok = logs.Find("missing")
	assert.False(t, ok)
}

func TestScoreExport(t *testing.T) {
	records := ScoreExport([]ScoreRow{{School: "金城國中", Name: "甲", Gender: "1", Rate: "0.5"}})
	require.Len(t, records, 2)
	assert.Len(t, records[1], 20)
	assert.Equal(t, "金城國中", records[1][3])
	assert.Equal(t, "0.5", records[1][18])

	path := WriteCSV(t, t.TempDir()+"/s.csv", records)
	assert.Equal(t, records, ReadCSV(t, path))
}
