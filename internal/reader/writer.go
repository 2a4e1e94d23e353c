package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"aarcnorm/internal/table"
)

// Write renders f as CSV. Null cells are written empty.
func Write(dst io.Writer, f *table.Frame) error {
	w := csv.NewWriter(dst)
	if err := w.Write(f.Columns()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(f.Columns()))

	for i := range f.Len() {
		for j, c := range f.Row(i) {
			record[j] = c.Value
			if c.Null {
				record[j] = ""
			}
		}

		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	w.Flush()

	return w.Error()
}

// WriteFile writes f to path, creating parent folders.
func WriteFile(path string, f *table.Frame) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return Write(out, f)
}
