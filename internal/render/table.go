// Package render formats CLI output: aligned tables and status
// coloring for terminal display.
package render

import (
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

// Table accumulates rows and renders them with aligned columns. Widths
// are display widths, so wide runes in dataset names keep alignment.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends one row. Short rows are padded with empty cells.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// String renders the table with a separator line under the headers.
func (t *Table) String() string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			// Pad every column but the last so lines carry no
			// trailing spaces.
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)))
			}
		}
		b.WriteString("\n")
	}

	writeRow(t.headers)
	separator := make([]string, len(t.headers))
	for i, w := range widths {
		separator[i] = strings.Repeat("-", w)
	}
	writeRow(separator)
	for _, row := range t.rows {
		writeRow(row)
	}

	return b.String()
}

// Status coloring for run summaries and source listings. Color output
// degrades to plain text on non-terminal writers.

func OK(s string) string {
	return color.Green.Sprint(s)
}

func Warn(s string) string {
	return color.Yellow.Sprint(s)
}

func Fail(s string) string {
	return color.Red.Sprint(s)
}

func Emph(s string) string {
	return color.Bold.Sprint(s)
}
