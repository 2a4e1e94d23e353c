package normalizer

import (
	"fmt"
	"strings"

	"aarcnorm/internal/models"
)

// ViolationKind classifies an integrity problem.
type ViolationKind string

// Violation kinds.
const (
	DuplicateKey      ViolationKind = "duplicate key"
	NullKey           ViolationKind = "null key"
	DanglingReference ViolationKind = "dangling reference"
)

// Violation is a single key or reference problem in a table.
type Violation struct {
	Kind     ViolationKind
	Table    string
	Row      int
	Columns  []string
	Values   []any
	RefTable string
}

func (v Violation) String() string {
	s := fmt.Sprintf("%s in %s row %d (%s = %v)", v.Kind, v.Table, v.Row, strings.Join(v.Columns, ","), v.Values)
	if v.RefTable != "" {
		s += " -> " + v.RefTable
	}

	return s
}

// Compound keys have at most four columns, so a fixed array keeps them comparable.
type keyTuple [4]any

func tupleOf(t models.Table, row []any, columns []string) (keyTuple, []any, bool) {
	var k keyTuple

	vals := make([]any, 0, len(columns))
	complete := true

	for i, name := range columns {
		j := t.Spec.ColumnIndex(name)
		if j < 0 || j >= len(row) {
			return k, nil, false
		}

		k[i] = row[j]
		vals = append(vals, row[j])

		if row[j] == nil {
			complete = false
		}
	}

	return k, vals, complete
}

// CheckKeys reports duplicate keys and nulls in non-nullable key columns.
func CheckKeys(t models.Table) []Violation {
	var out []Violation

	seen := make(map[keyTuple]bool, len(t.Rows))

	for i, row := range t.Rows {
		k, vals, _ := tupleOf(t, row, t.Spec.Key)

		for _, name := range t.Spec.Key {
			c, ok := t.Spec.Column(name)
			j := t.Spec.ColumnIndex(name)

			if !ok || j >= len(row) || (row[j] == nil && !c.Nullable) {
				out = append(out, Violation{Kind: NullKey, Table: t.Spec.Name, Row: i, Columns: []string{name}, Values: []any{nil}})
			}
		}

		if seen[k] {
			out = append(out, Violation{Kind: DuplicateKey, Table: t.Spec.Name, Row: i, Columns: t.Spec.Key, Values: vals})
		}

		seen[k] = true
	}

	return out
}

// CheckReferences reports foreign key values with no matching key in the
// referenced table. Null references are allowed.
func CheckReferences(tables []models.Table) []Violation {
	byName := make(map[string]models.Table, len(tables))
	for _, t := range tables {
		byName[t.Spec.Name] = t
	}

	keys := make(map[string]map[keyTuple]bool)

	keySet := func(name string, columns []string) map[keyTuple]bool {
		id := name + "(" + strings.Join(columns, ",") + ")"
		if set, ok := keys[id]; ok {
			return set
		}

		set := make(map[keyTuple]bool)

		if t, ok := byName[name]; ok {
			for _, row := range t.Rows {
				if k, _, complete := tupleOf(t, row, columns); complete {
					set[k] = true
				}
			}
		}

		keys[id] = set

		return set
	}

	var out []Violation

	for _, t := range tables {
		for _, ref := range t.Spec.References {
			target := keySet(ref.Table, ref.RefColumns)

			for i, row := range t.Rows {
				k, vals, complete := tupleOf(t, row, ref.Columns)
				if !complete {
					continue
				}

				if !target[k] {
					out = append(out, Violation{
						Kind:     DanglingReference,
						Table:    t.Spec.Name,
						Row:      i,
						Columns:  ref.Columns,
						Values:   vals,
						RefTable: ref.Table,
					})
				}
			}
		}
	}

	return out
}

// Check runs the key and reference checks over every table of c.
func Check(c *models.Collection) []Violation {
	tables := c.Tables()

	var out []Violation
	for _, t := range tables {
		out = append(out, CheckKeys(t)...)
	}

	return append(out, CheckReferences(tables)...)
}
