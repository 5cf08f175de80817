package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	accent = lipgloss.Color("#8BC34A")
	warn   = lipgloss.Color("#FFA000")
	danger = lipgloss.Color("#E53935")
	muted  = lipgloss.Color("#6B7280")
	border = lipgloss.Color("#2A3850")
)

// Printer writes human-readable summaries to a terminal or file.
type Printer struct {
	w       io.Writer
	title   lipgloss.Style
	ok      lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	note    lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
}

// New creates a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{
		w:       w,
		title:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		ok:      lipgloss.NewStyle().Foreground(accent),
		warning: lipgloss.NewStyle().Foreground(warn),
		failure: lipgloss.NewStyle().Foreground(danger),
		note:    lipgloss.NewStyle().Foreground(muted),
		header:  lipgloss.NewStyle().Bold(true).Padding(0, 1),
		cell:    lipgloss.NewStyle().Padding(0, 1),
	}
}

// Section prints a heading.
func (p *Printer) Section(title string) {
	fmt.Fprintf(p.w, "\n%s\n", p.title.Render("=== "+title+" ==="))
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.ok.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.warning.Render("! "+fmt.Sprintf(format, args...)))
}

// Fail prints an error line.
func (p *Printer) Fail(format string, args ...any) {
	fmt.Fprintln(p.w, p.failure.Render("✗ "+fmt.Sprintf(format, args...)))
}

// Line prints plain text.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Item prints an indented list entry.
func (p *Printer) Item(format string, args ...any) {
	fmt.Fprintf(p.w, "  - %s\n", fmt.Sprintf(format, args...))
}

// KV prints label: value pairs aligned on the label column.
func (p *Printer) KV(pairs ...[2]string) {
	width := 0
	for _, kv := range pairs {
		width = max(width, lipgloss.Width(kv[0]))
	}
	for _, kv := range pairs {
		pad := strings.Repeat(" ", width-lipgloss.Width(kv[0]))
		fmt.Fprintf(p.w, "%s%s : %s\n", kv[0], pad, kv[1])
	}
}

// Table prints rows under headers. Numeric-looking columns are right aligned.
func (p *Printer) Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(p.w, p.note.Render("(no rows)"))
		return
	}
	numeric := numericColumns(len(headers), rows)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			if col < len(numeric) && numeric[col] {
				return p.cell.Align(lipgloss.Right)
			}
			return p.cell
		})
	fmt.Fprintln(p.w, t.String())
}

func numericColumns(n int, rows [][]string) []bool {
	out := make([]bool, n)
	for col := range out {
		out[col] = true
		for _, row := range rows {
			if col >= len(row) || row[col] == "" || row[col] == "N/A" {
				continue
			}
			if _, err := strconv.ParseFloat(row[col], 64); err != nil {
				out[col] = false
				break
			}
		}
	}
	return out
}

// num formats v with the given decimals, or N/A for NaN.
func num(v float64, decimals int) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", decimals, v)
}

// rangeOf formats a min - max pair.
func rangeOf(lo, hi float64, decimals int) string {
	return num(lo, decimals) + " - " + num(hi, decimals)
}
