// Package reader loads a raw flat CSV file into a table.Frame.
package reader

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"aarcnorm/internal/table"
)

// Reader errors.
var (
	ErrMissingHeader = errors.New("missing header")
	ErrInvalidHeader = errors.New("invalid header encoding")
)

// Reader parses CSV input, mapping configured null tokens to null cells.
type Reader struct {
	nulls map[string]bool

	// NormalizeUnicode rewrites header and cell text to NFC so that
	// composed and decomposed spellings of a name compare equal.
	NormalizeUnicode bool
}

// NewReader creates a reader treating the given tokens as missing values.
func NewReader(nullValues []string) *Reader {
	nulls := make(map[string]bool, len(nullValues))
	for _, v := range nullValues {
		nulls[v] = true
	}

	return &Reader{nulls: nulls}
}

// ReadFile opens and parses the CSV file at path.
func (r *Reader) ReadFile(path string) (*table.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw file: %w", err)
	}
	defer f.Close()

	frame, err := r.Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return frame, nil
}

// Read parses CSV from src. The first record is the header.
func (r *Reader) Read(src io.Reader) (*table.Frame, error) {
	br := stripUTF8BOM(bufio.NewReader(src))

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = 0
	cr.ReuseRecord = false

	header, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	if r.NormalizeUnicode {
		for i := range header {
			header[i] = norm.NFC.String(header[i])
		}
	}

	var rows [][]table.Cell

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}

		if r.NormalizeUnicode {
			for i := range record {
				record[i] = norm.NFC.String(record[i])
			}
		}

		row := make([]table.Cell, len(record))
		for i, v := range record {
			row[i] = r.cell(v)
		}

		rows = append(rows, row)
	}

	return table.NewFrame(header, rows)
}

func (r *Reader) cell(v string) table.Cell {
	if r.nulls[v] || r.nulls[strings.TrimSpace(v)] {
		return table.Null
	}

	return table.Text(v)
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}

	return r
}

func readHeader(r *csv.Reader) ([]string, error) {
	h, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingHeader
		}

		return nil, fmt.Errorf("failed to parse CSV header: %w", err)
	}

	for i := range h {
		h[i] = strings.TrimSpace(h[i])
		if !utf8.ValidString(h[i]) {
			return nil, ErrInvalidHeader
		}
	}

	return h, nil
}
