package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edusight/internal/config"
)

func quietLogger() *slog.Logger {
	return NewLogger(config.LoggingConfig{Level: "error", Format: "json"}, io.Discard)
}

func TestInitializeTelemetryWritesFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := config.TelemetryConfig{
		TraceFile:   filepath.Join(dir, "trace.jsonl"),
		MetricsFile: filepath.Join(dir, "run.prom"),
	}

	ctx := WithTraceID(context.Background(), "run-1")
	tel, err := InitializeTelemetry(ctx, cfg, "scores", quietLogger())
	require.NoError(t, err)

	stageCtx, end := tel.StartStage(ctx, "load")
	tel.Metrics.FileLoaded(stageCtx, "scores")
	tel.Metrics.FileFailed(stageCtx, "scores")
	tel.Metrics.RowsLoaded(stageCtx, "students", 42)
	tel.Metrics.RowsDropped(stageCtx, "students", 2)
	tel.Metrics.OutputWritten(stageCtx, "csv")
	end(nil)

	_, endFail := tel.StartStage(ctx, "export")
	endFail(errors.New("disk full"))

	require.NoError(t, tel.Shutdown(context.Background()))

	trace, err := os.ReadFile(cfg.TraceFile)
	require.NoError(t, err)
	assert.Contains(t, string(trace), `"Name":"load"`)
	assert.Contains(t, string(trace), "disk full")

	metrics, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	text := string(metrics)
	assert.Contains(t, text, "edusight_files_loaded")
	assert.Contains(t, text, "edusight_rows_loaded")
	assert.Contains(t, text, "edusight_stage_duration")
}

func TestInitializeTelemetryDisabled(t *testing.T) {
	tel, err := InitializeTelemetry(context.Background(), config.TelemetryConfig{}, "usage-summary", quietLogger())
	require.NoError(t, err)

	_, end := tel.StartStage(context.Background(), "noop")
	end(nil)

	families, err := tel.Gatherer().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	require.NoError(t, tel.Shutdown(context.Background()))
}

func TestRunMetricsNilSafe(t *testing.T) {
	var m *RunMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.FileLoaded(ctx, "csv")
		m.FileFailed(ctx, "csv")
		m.RowsLoaded(ctx, "x", 1)
		m.RowsDropped(ctx, "x", 1)
		m.OutputWritten(ctx, "png")
	})
}
