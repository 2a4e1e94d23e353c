// Package sampler draws a reproducible subset of departments from a raw
// flat table and masks identifying columns.
package sampler

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"aarcnorm/internal/table"
)

// DepartmentColumn is the column departments are sampled on.
const DepartmentColumn = "DepartmentId"

// Sampling errors.
var (
	ErrInvalidSize    = errors.New("sample size must be positive")
	ErrSampleTooLarge = errors.New("sample larger than the number of departments")
	ErrNoDepartments  = errors.New("input has no department column")
)

// Options configures a draw.
type Options struct {
	// Departments is the number of distinct departments to keep.
	Departments int
	// Seed makes the draw reproducible.
	Seed uint64
	// HiddenColumns are overwritten with Mask in the sample.
	HiddenColumns []string
	Mask          string
}

// Result is a sampled frame with the departments it was drawn from.
type Result struct {
	Frame *table.Frame
	// Departments lists the drawn ids in draw order.
	Departments []int64
}

// departments returns the distinct non-null department ids in first-seen order.
func departments(f *table.Frame) ([]int64, error) {
	var ids []int64

	seen := make(map[int64]bool)

	for i := range f.Len() {
		id, ok, err := f.Int(i, DepartmentColumn)
		if err != nil {
			return nil, err
		}

		if ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	return ids, nil
}

// Sample picks opts.Departments departments without replacement and keeps
// their rows in input order. The input frame is not modified.
func Sample(f *table.Frame, opts Options) (*Result, error) {
	if opts.Departments <= 0 {
		return nil, ErrInvalidSize
	}

	if !f.Has(DepartmentColumn) {
		return nil, ErrNoDepartments
	}

	ids, err := departments(f)
	if err != nil {
		return nil, err
	}

	if opts.Departments > len(ids) {
		return nil, fmt.Errorf("%w: %d requested, %d available", ErrSampleTooLarge, opts.Departments, len(ids))
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	drawn := slices.Clone(ids[:opts.Departments])

	keep := make(map[int64]bool, len(drawn))
	for _, id := range drawn {
		keep[id] = true
	}

	out := f.Filter(func(i int) bool {
		id, ok, _ := f.Int(i, DepartmentColumn)
		return ok && keep[id]
	})

	for _, col := range opts.HiddenColumns {
		if out, err = out.WithColumn(col, opts.Mask); err != nil {
			return nil, fmt.Errorf("failed to hide column: %w", err)
		}
	}

	return &Result{Frame: out, Departments: drawn}, nil
}

// CountDistinct returns the number of distinct non-null values of column.
func CountDistinct(f *table.Frame, column string) int {
	seen := make(map[string]bool)

	for i := range f.Len() {
		if c := f.Cell(i, column); !c.Null {
			seen[c.Value] = true
		}
	}

	return len(seen)
}
