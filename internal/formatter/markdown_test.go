package formatter

import (
	"strings"
	"testing"

	"aarcnorm/internal/aarctest"
	"aarcnorm/internal/models"
)

func TestAlignTable(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rows     [][]string
		expected string
	}{
		{
			name:   "Basic table formatting",
			header: []string{"Header 1", "Header 2"},
			rows:   [][]string{{"val 1", "val 2"}},
			expected: `| Header 1 | Header 2 |
| -------- | -------- |
| val 1    | val 2    |`,
		},
		{
			name:   "Minimum separator width",
			header: []string{"a", "b"},
			rows:   [][]string{{"1", "2"}},
			expected: `| a   | b   |
| --- | --- |
| 1   | 2   |`,
		},
		{
			name:   "Wide characters",
			header: []string{"name", "n"},
			rows:   [][]string{{"東京大学", "1"}, {"MIT", "2"}},
			expected: `| name     | n   |
| -------- | --- |
| 東京大学 | 1   |
| MIT      | 2   |`,
		},
		{
			name:   "Short rows are padded",
			header: []string{"x", "y"},
			rows:   [][]string{{"1"}},
			expected: `| x   | y   |
| --- | --- |
| 1   |     |`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(AlignTable(tt.header, tt.rows), "\n")
			if got != tt.expected {
				t.Errorf("AlignTable() =\n%s\nwant\n%s", got, tt.expected)
			}
		})
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, NullText},
		{"x", "x"},
		{int64(2011), "2011"},
		{true, "True"},
		{false, "False"},
	}

	for _, tt := range tests {
		if got := FormatCell(tt.in); got != tt.want {
			t.Errorf("FormatCell(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderTable(t *testing.T) {
	c := aarctest.Collection()

	tbl, _ := c.Table(models.TableDepartmentTaxonomy)
	out := RenderTable(tbl, 2)

	if !strings.HasPrefix(out, "department_taxonomy (4 rows)\n") {
		t.Errorf("missing title line:\n%s", out)
	}

	if !strings.Contains(out, "DepartmentId* | TaxonomyId*") {
		t.Errorf("key columns not marked:\n%s", out)
	}

	if !strings.Contains(out, "... 2 more rows") {
		t.Errorf("truncation note missing:\n%s", out)
	}

	full := RenderTable(tbl, 0)
	if !strings.Contains(full, NullText) {
		t.Errorf("null taxonomy not rendered:\n%s", full)
	}
}

func TestRenderCounts(t *testing.T) {
	out := RenderCounts(aarctest.Collection())

	for _, want := range []string{"persons", "PersonId", "appointments", "PersonId, DepartmentId, Year, InstitutionId"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderCounts missing %q:\n%s", want, out)
		}
	}
}
