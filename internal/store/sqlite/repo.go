package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"

	"aarcnorm/internal/models"
)

// insertBatch bounds the rows per INSERT statement so the bound parameter
// count stays under the SQLite limit.
const insertBatch = 500

// Save replaces every table in the database with the contents of c inside
// one transaction.
func (s *Store) Save(ctx context.Context, c *models.Collection) (err error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			if rb := tx.Rollback(); rb != nil {
				s.log.Warn("sqlite: rollback failed", "error", rb)
			}
		}
	}()

	for _, spec := range slices.Backward(models.Schema) {
		if _, err = tx.ExecContext(ctx, dropTableSQL(spec)); err != nil {
			return fmt.Errorf("sqlite: drop %s: %w", spec.Name, err)
		}
	}

	for _, t := range c.Tables() {
		if _, err = tx.ExecContext(ctx, createTableSQL(t.Spec)); err != nil {
			return fmt.Errorf("sqlite: create %s: %w", t.Spec.Name, err)
		}

		if err = insertRows(ctx, tx, t); err != nil {
			return err
		}

		s.log.Debug("Saved table", "table", t.Spec.Name, "rows", len(t.Rows))
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit tx: %w", err)
	}

	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, t models.Table) error {
	cols := make([]string, len(t.Spec.Columns))
	for i, c := range t.Spec.Columns {
		cols[i] = quote(c.Name)
	}

	for batch := range slices.Chunk(t.Rows, insertBatch) {
		qb := squirrel.Insert(quote(t.Spec.Name)).Columns(cols...)
		for _, row := range batch {
			qb = qb.Values(row...)
		}

		query, args, err := qb.ToSql()
		if err != nil {
			return fmt.Errorf("sqlite: build insert %s: %w", t.Spec.Name, err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("sqlite: insert %s: %w", t.Spec.Name, err)
		}
	}

	return nil
}

// Load reads every table back into a Collection. Rows are read in key order.
func (s *Store) Load(ctx context.Context) (*models.Collection, error) {
	tables := make([]models.Table, 0, len(models.Schema))

	for _, spec := range models.Schema {
		ok, err := s.hasTable(ctx, spec.Name)
		if err != nil {
			return nil, err
		}

		if !ok {
			return nil, fmt.Errorf("%w: %s", models.ErrMissingTable, spec.Name)
		}

		t, err := s.loadTable(ctx, spec)
		if err != nil {
			return nil, err
		}

		tables = append(tables, t)
	}

	return models.FromTables(tables)
}

func (s *Store) hasTable(ctx context.Context, name string) (bool, error) {
	query, args, err := squirrel.Select("count(*)").
		From("sqlite_master").
		Where(squirrel.Eq{"type": "table", "name": name}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("sqlite: build table lookup: %w", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("sqlite: lookup table %s: %w", name, err)
	}

	return n > 0, nil
}

func (s *Store) loadTable(ctx context.Context, spec models.TableSpec) (models.Table, error) {
	cols := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = quote(c.Name)
	}

	keys := make([]string, len(spec.Key))
	for i, k := range spec.Key {
		keys[i] = quote(k)
	}

	query, args, err := squirrel.Select(cols...).From(quote(spec.Name)).OrderBy(keys...).ToSql()
	if err != nil {
		return models.Table{}, fmt.Errorf("sqlite: build select %s: %w", spec.Name, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return models.Table{}, fmt.Errorf("sqlite: select %s: %w", spec.Name, err)
	}
	defer rows.Close()

	out := models.Table{Spec: spec}

	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))

		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return models.Table{}, fmt.Errorf("sqlite: scan %s: %w", spec.Name, err)
		}

		for i, c := range spec.Columns {
			values[i] = normalizeValue(c, values[i])
		}

		out.Rows = append(out.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return models.Table{}, fmt.Errorf("sqlite: iter %s: %w", spec.Name, err)
	}

	return out, nil
}

// normalizeValue maps driver values onto the generic cell types.
func normalizeValue(c models.Column, v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int64:
		if c.Type == models.Boolean {
			return x != 0
		}
	}

	return v
}

// AppointmentDetails joins appointments with persons, departments and
// institutions. Results are ordered by appointment key.
func (s *Store) AppointmentDetails(ctx context.Context, f models.AppointmentFilter) ([]models.AppointmentDetail, error) {
	qb := squirrel.Select(
		"a.PersonId", "a.DepartmentId", "a.Year", "a.InstitutionId",
		"p.PersonName", "d.DepartmentName", "i.InstitutionName",
		"a.Rank", "a.PrimaryAppointment",
	).
		From("appointments a").
		Join("persons p ON p.PersonId = a.PersonId").
		Join("departments d ON d.DepartmentId = a.DepartmentId").
		LeftJoin("institutions i ON i.InstitutionId = a.InstitutionId").
		OrderBy("a.PersonId", "a.DepartmentId", "a.Year", "a.InstitutionId")

	where := squirrel.Eq{}
	if f.PersonID.Valid {
		where["a.PersonId"] = f.PersonID.V
	}

	if f.DepartmentID.Valid {
		where["a.DepartmentId"] = f.DepartmentID.V
	}

	if f.Year.Valid {
		where["a.Year"] = f.Year.V
	}

	if f.InstitutionID.Valid {
		where["a.InstitutionId"] = f.InstitutionID.V
	}

	if len(where) > 0 {
		qb = qb.Where(where)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: build appointment details: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: appointment details: %w", err)
	}
	defer rows.Close()

	var out []models.AppointmentDetail

	for rows.Next() {
		var d models.AppointmentDetail
		if err := rows.Scan(
			&d.PersonID, &d.DepartmentID, &d.Year, &d.InstitutionID,
			&d.PersonName, &d.DepartmentName, &d.InstitutionName,
			&d.Rank, &d.PrimaryAppointment,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan appointment detail: %w", err)
		}

		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iter appointment details: %w", err)
	}

	return out, nil
}
