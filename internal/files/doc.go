// Package files locates the inputs of an analysis run.
//
// Score exports are found by expanding the configured file pattern for each
// grade, falling back to a glob over the input directory. The usage workbook
// falls back to the newest xlsx file when the configured name is absent.
//
// Example usage:
//
//	d := files.NewDiscovery(paths, logger)
//	found, missing := d.ScoreFiles(ctx, cfg.Inputs.ScorePattern, cfg.Inputs.Grades)
//	if len(found) == 0 {
//		found, _ = d.DiscoverScoreFiles(ctx)
//	}
package files
