package sampler

import (
	"errors"
	"slices"
	"strconv"
	"testing"

	"aarcnorm/internal/aarctest"
	"aarcnorm/internal/table"
)

func departmentFrame(t *testing.T, n int) *table.Frame {
	t.Helper()

	var rows [][]string
	for d := range n {
		id := strconv.Itoa(100 + d)
		rows = append(rows, []string{id, "person-" + id}, []string{id, "other-" + id})
	}

	return aarctest.FrameOf(t, []string{"DepartmentId", "PersonName"}, rows)
}

func TestSample(t *testing.T) {
	f := aarctest.Frame(t)

	res, err := Sample(f, Options{Departments: 2, Seed: 7, HiddenColumns: []string{"PersonName"}, Mask: "<hidden>"})
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	if len(res.Departments) != 2 || res.Departments[0] == res.Departments[1] {
		t.Fatalf("Departments = %v, want two distinct ids", res.Departments)
	}

	prev := -1

	for i := range res.Frame.Len() {
		id, _, err := res.Frame.Int(i, DepartmentColumn)
		if err != nil {
			t.Fatalf("Int failed: %v", err)
		}

		if !slices.Contains(res.Departments, id) {
			t.Errorf("row %d has undrawn department %d", i, id)
		}

		if c := res.Frame.Cell(i, "PersonName"); c.Value != "<hidden>" {
			t.Errorf("row %d PersonName = %q, want masked", i, c.Value)
		}

		// Rows keep their input order.
		pos := slices.IndexFunc(aarctest.Rows, func(r []string) bool {
			return r[0] == res.Frame.Cell(i, "PersonId").Value && r[9] == res.Frame.Cell(i, "Year").Value &&
				r[7] == res.Frame.Cell(i, "DepartmentId").Value && r[12] == res.Frame.Cell(i, "Taxonomy").Value
		})
		if pos < prev {
			t.Errorf("row %d out of input order", i)
		}

		prev = pos
	}

	if f.Cell(0, "PersonName").Value != "Ada" {
		t.Error("input frame was modified")
	}
}

func TestSample_Deterministic(t *testing.T) {
	f := departmentFrame(t, 50)

	a, err := Sample(f, Options{Departments: 10, Seed: 0})
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	b, err := Sample(f, Options{Departments: 10, Seed: 0})
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	if !slices.Equal(a.Departments, b.Departments) {
		t.Errorf("same seed drew %v and %v", a.Departments, b.Departments)
	}

	if a.Frame.Len() != 20 {
		t.Errorf("Len = %d, want 20 (two rows per department)", a.Frame.Len())
	}

	if got := CountDistinct(a.Frame, DepartmentColumn); got != 10 {
		t.Errorf("distinct departments = %d, want 10", got)
	}

	c, err := Sample(f, Options{Departments: 10, Seed: 1})
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}

	if slices.Equal(a.Departments, c.Departments) {
		t.Error("different seeds drew the same departments")
	}
}

func TestSample_Errors(t *testing.T) {
	f := departmentFrame(t, 3)

	tests := []struct {
		name    string
		frame   *table.Frame
		opts    Options
		wantErr error
	}{
		{"Zero size", f, Options{}, ErrInvalidSize},
		{"Too large", f, Options{Departments: 4}, ErrSampleTooLarge},
		{"Unknown hidden column", f, Options{Departments: 1, HiddenColumns: []string{"Gender"}}, table.ErrUnknownColumn},
		{"No department column", aarctest.FrameOf(t, []string{"PersonId"}, [][]string{{"1"}}), Options{Departments: 1}, ErrNoDepartments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Sample(tt.frame, tt.opts); !errors.Is(err, tt.wantErr) {
				t.Errorf("Sample error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
