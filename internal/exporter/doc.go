// Package exporter writes the analysis tables to disk.
//
// CSVWriter is the low-level writer with optional UTF-8 BOM and a streaming
// mode for large tables. The table builders (SchoolScoresTable,
// PlatformMeansTable, UsageSummaryTable, ComparisonTable, PivotTable) turn
// analysis results into rows with the column names the downstream
// commands read back. Exporter ties both together and, when
// export.workbook is set, mirrors every table into a sheet of
// edusight_summary.xlsx.
//
// Example usage:
//
//	exp, err := exporter.NewExporter(logger, cfg.Export, paths, tel.Metrics)
//	if err != nil {
//		return err
//	}
//	defer exp.Close(ctx)
//
//	_, err = exp.Write(ctx, exporter.SchoolScoresTable(means))
package exporter
