// Package dataprocessing loads and cleans the raw inputs of the analysis
// commands: grade-level test-score exports, the usage platform workbook,
// the task platform export and the CSV files earlier commands derive.
//
// # Architecture
//
//  1. Decoding: score exports arrive in several legacy encodings, so
//     ReadCSVWithFallback tries cp950, big5, utf-8, gbk and latin1 in turn.
//  2. Shaping: ScoreFrame renames the positional export columns with a
//     gota DataFrame and StudentScores converts it to typed rows.
//  3. Cleaning: CleanNumber repairs workbook numbers written with
//     full-width separators; FilterNonZero drops inactive students.
//  4. Normalization: Normalizer maps school names of both sources onto a
//     shared join key.
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger, dataprocessing.LoaderConfig{})
//	scores, err := loader.LoadScores(ctx, paths)
//	if err != nil {
//	    return err
//	}
//	wb, err := loader.LoadUsageWorkbook(ctx, workbookPath)
//	usage := loader.UsageRecords(ctx, wb)
//
// # Error Handling
//
// Input problems are reported as *errors.AppError values. Loaders are
// best-effort: an unreadable score file or workbook sheet is logged and
// skipped, and LoadScores fails only when no file could be read.
package dataprocessing
