// Package report prints the console summaries of each analysis with
// lipgloss styled tables. Colors are dropped automatically when the output
// is not a terminal.
package report
