package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Task states shown by plan.
const (
	StateReuse  = "reuse"
	StateSubmit = "submit"
)

// Table is a plain text table with a colored header.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table with the given column headers.
func NewTable(headers []string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow appends a row, widening columns as needed.
func (t *Table) AddRow(row []string) {
	for i, cell := range row {
		if i < len(t.widths) && len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
	}
	t.rows = append(t.rows, row)
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) {
	headerColor := color.New(color.FgCyan, color.Bold)
	for i, h := range t.headers {
		headerColor.Fprintf(w, "%-*s  ", t.widths[i], h)
	}
	fmt.Fprintln(w)

	for i := range t.headers {
		fmt.Fprint(w, strings.Repeat("-", t.widths[i]), "  ")
	}
	fmt.Fprintln(w)

	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(t.widths) {
				break
			}
			if c := cellColor(cell); c != nil {
				c.Fprintf(w, "%-*s  ", t.widths[i], cell)
			} else {
				fmt.Fprintf(w, "%-*s  ", t.widths[i], cell)
			}
		}
		fmt.Fprintln(w)
	}
}

// cellColor highlights task states.
func cellColor(cell string) *color.Color {
	switch cell {
	case StateReuse:
		return color.New(color.FgGreen)
	case StateSubmit:
		return color.New(color.FgYellow)
	}
	return nil
}
