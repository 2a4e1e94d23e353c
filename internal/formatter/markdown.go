// Package formatter renders normalized tables as aligned markdown for the terminal.
package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"aarcnorm/internal/models"
)

// NullText is how a null cell is displayed.
const NullText = "<NA>"

// FormatCell renders a generic table cell.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return NullText
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		if x {
			return "True"
		}

		return "False"
	default:
		return fmt.Sprint(x)
	}
}

// RenderTable renders the first limit rows of t, or every row when limit is 0.
// Key columns are marked with a trailing "*".
func RenderTable(t models.Table, limit int) string {
	header := make([]string, len(t.Spec.Columns))
	for i, c := range t.Spec.Columns {
		header[i] = c.Name
		for _, k := range t.Spec.Key {
			if k == c.Name {
				header[i] += "*"
			}
		}
	}

	rows := t.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = make([]string, len(r))
		for j, v := range r {
			cells[i][j] = FormatCell(v)
		}
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s (%d rows)\n", t.Spec.Name, len(t.Rows))
	sb.WriteString(strings.Join(AlignTable(header, cells), "\n"))
	sb.WriteString("\n")

	if hidden := len(t.Rows) - len(rows); hidden > 0 {
		fmt.Fprintf(&sb, "... %d more rows\n", hidden)
	}

	return sb.String()
}

// RenderCounts renders one line per table with its key and row count.
func RenderCounts(c *models.Collection) string {
	counts := c.Counts()

	var rows [][]string
	for _, s := range models.Schema {
		rows = append(rows, []string{s.Name, strings.Join(s.Key, ", "), humanize.Comma(int64(counts[s.Name]))})
	}

	return strings.Join(AlignTable([]string{"table", "key", "rows"}, rows), "\n") + "\n"
}

// AlignTable lays out a header and rows as a markdown table, padding every
// column to its widest display width.
func AlignTable(header []string, rows [][]string) []string {
	colCount := len(header)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	// Calculate max widths (using display width)
	colWidths := make([]int, colCount)

	for _, row := range append([][]string{header}, rows...) {
		for i := 0; i < len(row); i++ {
			if w := runewidth.StringWidth(row[i]); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	// Ensure min width for separator (usually 3 dashes "---")
	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	result := []string{renderRow(header, colWidths)}

	var sep strings.Builder

	sep.WriteString("|")

	for _, w := range colWidths {
		sep.WriteString(" ")
		sep.WriteString(strings.Repeat("-", w))
		sep.WriteString(" |")
	}

	result = append(result, sep.String())

	for _, row := range rows {
		result = append(result, renderRow(row, colWidths))
	}

	return result
}

func renderRow(row []string, colWidths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, width := range colWidths {
		sb.WriteString(" ")

		content := ""
		if j < len(row) {
			content = row[j]
		}

		sb.WriteString(content)

		// Pad with spaces based on display width
		if padding := width - runewidth.StringWidth(content); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}

		sb.WriteString(" |")
	}

	return sb.String()
}
