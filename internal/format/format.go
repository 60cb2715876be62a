// Package format renders tabular CLI output as terminal or Markdown tables.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// ParseMode maps "ascii"/"text"/"" and "markdown"/"md" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "ascii", "text":
		return ASCII, nil
	case "markdown", "md":
		return Markdown, nil
	}
	return ASCII, fmt.Errorf("unknown table format %q", s)
}

// ColumnAlign specifies the horizontal alignment for a column.
type ColumnAlign int

const (
	AlignDefault ColumnAlign = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Table accumulates rows and renders them in one Mode.
type Table struct {
	w     table.Writer
	mode  Mode
	rows  int
	align map[int]ColumnAlign
	width map[int]int
}

// NewTable returns an empty table that renders in the given Mode.
func NewTable(m Mode) *Table {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	// Headers and footers print as given, not upper-cased.
	w.Style().Format.Header = text.FormatDefault
	w.Style().Format.Footer = text.FormatDefault
	return &Table{w: w, mode: m, align: map[int]ColumnAlign{}, width: map[int]int{}}
}

// Header sets the column headers.
func (t *Table) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	t.w.AppendHeader(row)
}

// Row appends a data row. Values are printed with fmt's %v.
func (t *Table) Row(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	t.w.AppendRow(row)
	t.rows++
}

// Footer appends a footer row, e.g. totals.
func (t *Table) Footer(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	t.w.AppendFooter(row)
}

// Align sets the alignment of a 1-based column.
func (t *Table) Align(col int, a ColumnAlign) { t.align[col] = a }

// MaxWidth caps a 1-based column's width; longer cells wrap.
func (t *Table) MaxWidth(col, width int) { t.width[col] = width }

// Len returns the number of data rows.
func (t *Table) Len() int { return t.rows }

// String renders the table.
func (t *Table) String() string {
	t.applyColumns()
	if t.mode == Markdown {
		return t.w.RenderMarkdown()
	}
	return t.w.Render()
}

// WriteTo writes the rendered table and a trailing newline to w.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.String()+"\n")
	return int64(n), err
}

func (t *Table) applyColumns() {
	seen := map[int]bool{}
	var cfgs []table.ColumnConfig
	for col := range t.align {
		seen[col] = true
	}
	for col := range t.width {
		seen[col] = true
	}
	for col := range seen {
		cfgs = append(cfgs, table.ColumnConfig{
			Number:   col,
			Align:    toTextAlign(t.align[col]),
			WidthMax: t.width[col],
		})
	}
	t.w.SetColumnConfigs(cfgs)
}

func toTextAlign(a ColumnAlign) text.Align {
	switch a {
	case AlignLeft:
		return text.AlignLeft
	case AlignRight:
		return text.AlignRight
	case AlignCenter:
		return text.AlignCenter
	default:
		return text.AlignDefault
	}
}
