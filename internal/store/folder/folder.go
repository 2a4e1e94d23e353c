// Package folder exports a normalized collection as one CSV file per table
// plus a signed manifest, and reads such a folder back.
//
// Null cells are written as empty fields, so text that is empty or only
// whitespace cannot be told apart from null and is rejected by Write.
package folder

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"aarcnorm/internal/models"
	"aarcnorm/internal/reader"
	"aarcnorm/internal/table"
	"aarcnorm/pkg/metadata"
)

// ErrBlankText is returned by Write for non-null text that would read back as null.
var ErrBlankText = errors.New("blank text is not representable")

// Ext is the extension of table files.
const Ext = ".csv"

// FileName returns the file name that holds the named table.
func FileName(tableName string) string {
	return tableName + Ext
}

// Write exports every table of c into dir, creating it if needed, and
// writes the signed manifest last. validated marks collections that passed
// the integrity check.
func Write(dir string, c *models.Collection, validated bool) (*metadata.Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output folder: %w", err)
	}

	tables := c.Tables()
	encoded := make([][]byte, len(tables))

	for i, t := range tables {
		data, err := encode(t)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", t.Spec.Name, err)
		}

		encoded[i] = data
	}

	m := &metadata.Manifest{}

	for i, t := range tables {
		data := encoded[i]

		file := FileName(t.Spec.Name)
		if err := os.WriteFile(filepath.Join(dir, file), data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", file, err)
		}

		m.Add(t.Spec.Name, file, len(t.Rows), data)
	}

	m.Sign(validated)

	data, err := m.Marshal()
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(filepath.Join(dir, metadata.FileName), data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	return m, nil
}

// Read loads a collection from dir. Files are verified against the manifest
// when one is present. CSV files that do not name a known table are ignored.
func Read(dir string) (*models.Collection, error) {
	m, err := readManifest(dir)
	if err != nil {
		return nil, err
	}

	csvReader := reader.NewReader([]string{""})
	tables := make([]models.Table, 0, len(models.Schema))

	for _, spec := range models.Schema {
		file := FileName(spec.Name)

		data, err := os.ReadFile(filepath.Join(dir, file))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrMissingTable, file)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		if m != nil {
			if err := m.VerifyFile(spec.Name, data); err != nil {
				return nil, err
			}
		}

		frame, err := csvReader.Read(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		t, err := decode(spec, frame)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", file, err)
		}

		tables = append(tables, t)
	}

	return models.FromTables(tables)
}

func readManifest(dir string) (*metadata.Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, metadata.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	return metadata.Parse(data)
}

func encode(t models.Table) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write(t.Spec.ColumnNames()); err != nil {
		return nil, err
	}

	record := make([]string, len(t.Spec.Columns))

	for _, row := range t.Rows {
		for i, v := range row {
			if x, ok := v.(string); ok && strings.TrimSpace(x) == "" {
				return nil, fmt.Errorf("%w: column %s value %q", ErrBlankText, t.Spec.Columns[i].Name, x)
			}

			record[i] = encodeCell(v)
		}

		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()

	return buf.Bytes(), w.Error()
}

func encodeCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		if x {
			return "True"
		}

		return "False"
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// decode types the cells of frame by the spec. Nullable columns missing
// from the file read as null.
func decode(spec models.TableSpec, frame *table.Frame) (models.Table, error) {
	for _, c := range spec.Columns {
		if !c.Nullable && !frame.Has(c.Name) {
			return models.Table{}, fmt.Errorf("%w: %s", models.ErrColumnMissing, c.Name)
		}
	}

	out := models.Table{Spec: spec, Rows: make([][]any, 0, frame.Len())}

	for i := range frame.Len() {
		row := make([]any, len(spec.Columns))

		for j, c := range spec.Columns {
			v, err := decodeCell(frame, i, c)
			if err != nil {
				return models.Table{}, err
			}

			row[j] = v
		}

		out.Rows = append(out.Rows, row)
	}

	return out, nil
}

func decodeCell(frame *table.Frame, i int, c models.Column) (any, error) {
	switch c.Type {
	case models.Integer:
		v, ok, err := frame.Int(i, c.Name)
		if err != nil || !ok {
			return nil, err
		}

		return v, nil
	case models.Boolean:
		v, ok, err := frame.Bool(i, c.Name)
		if err != nil || !ok {
			return nil, err
		}

		return v, nil
	default:
		cell := frame.Cell(i, c.Name)
		if cell.Null {
			return nil, nil
		}

		return cell.Value, nil
	}
}
