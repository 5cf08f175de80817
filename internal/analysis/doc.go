// Package analysis aggregates cleaned scores and usage rows: group means,
// school summaries, usage bands, correlations, ranks and the joins between
// the test-score and platform datasets. Functions are pure and operate on
// the domain types; NaN marks a missing value throughout.
package analysis
