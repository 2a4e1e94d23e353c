// Package table provides the in-memory flat table handed from the raw
// reader to the normalizer.
package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Cell parsing errors.
var (
	ErrUnknownColumn  = errors.New("unknown column")
	ErrMalformedValue = errors.New("malformed value")
	ErrRowWidth       = errors.New("row width does not match header")
)

// Cell is a single nullable text value.
type Cell struct {
	Value string
	Null  bool
}

// Null is the missing cell.
var Null = Cell{Null: true}

// Text returns a non-null cell.
func Text(s string) Cell {
	return Cell{Value: s}
}

// Frame is a flat table: an ordered header and rows of cells in input order.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]Cell
}

// NewFrame builds a frame from a header and rows. Rows are copied.
func NewFrame(columns []string, rows [][]Cell) (*Frame, error) {
	f := &Frame{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		rows:    make([][]Cell, 0, len(rows)),
	}

	for i, name := range f.columns {
		if _, dup := f.index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}

		f.index[name] = i
	}

	for i, row := range rows {
		if len(row) != len(f.columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d", ErrRowWidth, i, len(row), len(f.columns))
		}

		f.rows = append(f.rows, append([]Cell(nil), row...))
	}

	return f, nil
}

// Columns returns a copy of the header.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Has reports whether the frame carries the named column.
func (f *Frame) Has(column string) bool {
	_, ok := f.index[column]
	return ok
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// Cell returns the cell at row i of the named column. A column the frame
// does not carry reads as null.
func (f *Frame) Cell(i int, column string) Cell {
	j, ok := f.index[column]
	if !ok {
		return Null
	}

	return f.rows[i][j]
}

// Row returns a copy of row i.
func (f *Frame) Row(i int) []Cell {
	return append([]Cell(nil), f.rows[i]...)
}

// Filter returns a new frame holding the rows for which keep returns true.
func (f *Frame) Filter(keep func(i int) bool) *Frame {
	out := &Frame{columns: f.Columns(), index: f.index}

	for i := range f.rows {
		if keep(i) {
			out.rows = append(out.rows, f.Row(i))
		}
	}

	return out
}

// WithColumn returns a new frame where every cell of column is
// replaced with value.
func (f *Frame) WithColumn(column, value string) (*Frame, error) {
	j, ok := f.index[column]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}

	out := &Frame{columns: f.Columns(), index: f.index, rows: make([][]Cell, len(f.rows))}

	for i := range f.rows {
		row := f.Row(i)
		row[j] = Text(value)
		out.rows[i] = row
	}

	return out, nil
}

// Int reads the cell as a nullable integer. Integral floats such as
// "2011.0" are accepted.
func (f *Frame) Int(i int, column string) (int64, bool, error) {
	c := f.Cell(i, column)
	if c.Null {
		return 0, false, nil
	}

	v, err := ParseInt(c.Value)
	if err != nil {
		return 0, false, fmt.Errorf("%w: row %d column %s: %q", ErrMalformedValue, i, column, c.Value)
	}

	return v, true, nil
}

// Bool reads the cell as a nullable boolean.
func (f *Frame) Bool(i int, column string) (bool, bool, error) {
	c := f.Cell(i, column)
	if c.Null {
		return false, false, nil
	}

	v, err := ParseBool(c.Value)
	if err != nil {
		return false, false, fmt.Errorf("%w: row %d column %s: %q", ErrMalformedValue, i, column, c.Value)
	}

	return v, true, nil
}

// ParseInt parses a base 10 integer. An all-zero fraction such as "12.0"
// is accepted; exponents, hex and other fractions are ErrMalformedValue.
func ParseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)

	if whole, frac, ok := strings.Cut(s, "."); ok {
		if frac == "" || strings.Trim(frac, "0") != "" {
			return 0, fmt.Errorf("%w: %q is not integral", ErrMalformedValue, s)
		}

		s = whole
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrMalformedValue, s)
	}

	return v, nil
}

// ParseBool parses a boolean in any strconv.ParseBool form.
func ParseBool(s string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(s))
}
