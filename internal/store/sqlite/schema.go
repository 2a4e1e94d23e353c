package sqlite

import (
	"fmt"
	"strings"

	"aarcnorm/internal/models"
)

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func quoteAll(idents []string) string {
	q := make([]string, len(idents))
	for i, id := range idents {
		q[i] = quote(id)
	}

	return strings.Join(q, ", ")
}

// createTableSQL renders the DDL for spec: one column per spec column, the
// table key as PRIMARY KEY and one FOREIGN KEY per reference.
func createTableSQL(spec models.TableSpec) string {
	var lines []string

	for _, c := range spec.Columns {
		line := quote(c.Name) + " " + c.Type.String()
		if !c.Nullable {
			line += " NOT NULL"
		}

		lines = append(lines, line)
	}

	lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s)", quoteAll(spec.Key)))

	for _, r := range spec.References {
		lines = append(lines, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			quoteAll(r.Columns), quote(r.Table), quoteAll(r.RefColumns)))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", quote(spec.Name), strings.Join(lines, ",\n\t"))
}

func dropTableSQL(spec models.TableSpec) string {
	return "DROP TABLE IF EXISTS " + quote(spec.Name)
}
