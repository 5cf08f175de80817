package exporter

import (
	"context"
	"log/slog"

	"edusight/internal/config"
	"edusight/internal/errors"
)

// OutputRecorder is notified of every file written. infrastructure.RunMetrics satisfies it.
type OutputRecorder interface {
	OutputWritten(ctx context.Context, kind string)
}

// Exporter writes tables as CSV files and mirrors them into the summary
// workbook when enabled.
type Exporter struct {
	logger   *slog.Logger
	paths    *config.Paths
	csv      *CSVWriter
	bom      bool
	workbook *Workbook
	recorder OutputRecorder
}

// NewExporter creates an Exporter for the output directory.
func NewExporter(logger *slog.Logger, cfg config.ExportConfig, paths *config.Paths, recorder OutputRecorder) (*Exporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Exporter{
		logger:   logger.With("component", "exporter"),
		paths:    paths,
		csv:      NewCSVWriter(paths),
		bom:      cfg.BOMPrefix,
		recorder: recorder,
	}
	if cfg.Workbook {
		wb, err := OpenWorkbook(paths.GetReportPath(config.SummaryWorkbook))
		if err != nil {
			return nil, errors.NewStorageError("failed to open summary workbook", err)
		}
		e.workbook = wb
	}
	return e, nil
}

// Write writes t as CSV and returns the file path.
func (e *Exporter) Write(ctx context.Context, t Table) (string, error) {
	path, err := e.csv.WriteCSV(t.File, WriteOptions{
		Headers:   t.Headers,
		Records:   t.Records,
		BOMPrefix: e.bom,
	})
	if err != nil {
		return "", errors.NewStorageError("failed to write csv", err).WithContext("file", t.File)
	}
	e.record(ctx, "csv")
	e.logger.InfoContext(ctx, "table exported",
		slog.String("path", path),
		slog.Int("rows", len(t.Records)))

	if e.workbook != nil {
		if err := e.workbook.AddTable(t); err != nil {
			return path, errors.NewStorageError("failed to mirror table", err).WithContext("sheet", t.Sheet)
		}
	}
	return path, nil
}

// Close saves the summary workbook when it received tables.
func (e *Exporter) Close(ctx context.Context) error {
	if e.workbook == nil {
		return nil
	}
	sheets := e.workbook.Sheets()
	saved, err := e.workbook.Save()
	if err != nil {
		return errors.NewStorageError("failed to save summary workbook", err)
	}
	if saved {
		e.record(ctx, "xlsx")
		e.logger.InfoContext(ctx, "summary workbook written",
			slog.String("path", e.workbook.path),
			slog.Any("sheets", sheets))
	}
	return nil
}

func (e *Exporter) record(ctx context.Context, kind string) {
	if e.recorder != nil {
		e.recorder.OutputWritten(ctx, kind)
	}
}
