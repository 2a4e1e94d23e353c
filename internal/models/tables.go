package models

import (
	"database/sql"
	"errors"
	"fmt"
)

// Table names of the normalized collection.
const (
	TablePersons            = "persons"
	TableInstitutions       = "institutions"
	TableDepartments        = "departments"
	TableTaxonomies         = "taxonomies"
	TableFields             = "fields"
	TableAreas              = "areas"
	TableUmbrellas          = "umbrellas"
	TableDepartmentTaxonomy = "department_taxonomy"
	TableAppointments       = "appointments"
)

// Table decoding errors.
var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrMissingTable  = errors.New("missing table")
	ErrColumnType    = errors.New("unexpected column value type")
	ErrColumnMissing = errors.New("column missing from table")
)

// ColumnType is the storage type of a column.
type ColumnType int

// Column types.
const (
	Integer ColumnType = iota
	Text
	Boolean
)

func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Boolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// Column describes one column of a table.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Reference is a foreign key from Columns to the key of another table.
type Reference struct {
	Columns    []string
	Table      string
	RefColumns []string
}

// TableSpec describes the shape of a normalized table.
type TableSpec struct {
	Name       string
	Columns    []Column
	Key        []string
	References []Reference
}

// ColumnNames returns the column names in order.
func (s TableSpec) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}

	return names
}

// ColumnIndex returns the position of the named column or -1.
func (s TableSpec) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}

	return -1
}

// Column returns the named column.
func (s TableSpec) Column(name string) (Column, bool) {
	if i := s.ColumnIndex(name); i >= 0 {
		return s.Columns[i], true
	}

	return Column{}, false
}

// Table is a generic view of a normalized table. Cells hold int64, string,
// bool or nil.
type Table struct {
	Spec TableSpec
	Rows [][]any
}

func col(name string, t ColumnType, nullable bool) Column {
	return Column{Name: name, Type: t, Nullable: nullable}
}

func ref(column, table string) Reference {
	return Reference{Columns: []string{column}, Table: table, RefColumns: []string{column}}
}

// Schema lists every table spec with referenced tables ahead of referencing ones.
var Schema = []TableSpec{
	{
		Name:    TableInstitutions,
		Columns: []Column{col("InstitutionId", Integer, false), col("InstitutionName", Text, true)},
		Key:     []string{"InstitutionId"},
	},
	{
		Name: TablePersons,
		Columns: []Column{
			col("PersonId", Integer, false),
			col("PersonName", Text, true),
			col("Gender", Text, true),
			col("DegreeYear", Integer, true),
			col("DegreeInstitutionId", Integer, true),
		},
		Key: []string{"PersonId"},
	},
	{
		Name:    TableDepartments,
		Columns: []Column{col("DepartmentId", Integer, false), col("DepartmentName", Text, true)},
		Key:     []string{"DepartmentId"},
	},
	{
		Name:    TableFields,
		Columns: []Column{col("FieldId", Integer, false), col("Field", Text, false)},
		Key:     []string{"FieldId"},
	},
	{
		Name:    TableAreas,
		Columns: []Column{col("AreaId", Integer, false), col("Area", Text, false)},
		Key:     []string{"AreaId"},
	},
	{
		Name:    TableUmbrellas,
		Columns: []Column{col("UmbrellaId", Integer, false), col("Umbrella", Text, false)},
		Key:     []string{"UmbrellaId"},
	},
	{
		Name: TableTaxonomies,
		Columns: []Column{
			col("TaxonomyId", Integer, false),
			col("Taxonomy", Text, true),
			col("FieldId", Integer, true),
			col("AreaId", Integer, true),
			col("UmbrellaId", Integer, true),
		},
		Key: []string{"TaxonomyId"},
		References: []Reference{
			ref("FieldId", TableFields),
			ref("AreaId", TableAreas),
			ref("UmbrellaId", TableUmbrellas),
		},
	},
	{
		Name:    TableDepartmentTaxonomy,
		Columns: []Column{col("DepartmentId", Integer, false), col("TaxonomyId", Integer, true)},
		Key:     []string{"DepartmentId", "TaxonomyId"},
		References: []Reference{
			ref("DepartmentId", TableDepartments),
			ref("TaxonomyId", TableTaxonomies),
		},
	},
	{
		Name: TableAppointments,
		Columns: []Column{
			col("PersonId", Integer, false),
			col("DepartmentId", Integer, false),
			col("Year", Integer, false),
			col("InstitutionId", Integer, true),
			col("Rank", Text, true),
			col("PrimaryAppointment", Boolean, true),
			col("Imputed", Boolean, true),
		},
		Key: []string{"PersonId", "DepartmentId", "Year", "InstitutionId"},
		References: []Reference{
			ref("PersonId", TablePersons),
			ref("DepartmentId", TableDepartments),
			ref("InstitutionId", TableInstitutions),
		},
	},
}

// Spec returns the spec of the named table.
func Spec(name string) (TableSpec, bool) {
	for _, s := range Schema {
		if s.Name == name {
			return s, true
		}
	}

	return TableSpec{}, false
}

// Names returns the table names in schema order.
func Names() []string {
	names := make([]string, len(Schema))
	for i, s := range Schema {
		names[i] = s.Name
	}

	return names
}

func value[T any](n sql.Null[T]) any {
	if !n.Valid {
		return nil
	}

	return n.V
}

// Tables returns generic views of every table in schema order.
func (c *Collection) Tables() []Table {
	out := make([]Table, 0, len(Schema))
	for _, s := range Schema {
		t, _ := c.Table(s.Name)
		out = append(out, t)
	}

	return out
}

// Table returns the generic view of the named table.
func (c *Collection) Table(name string) (Table, bool) {
	spec, ok := Spec(name)
	if !ok {
		return Table{}, false
	}

	var rows [][]any

	switch name {
	case TablePersons:
		for _, p := range c.parts.Persons {
			rows = append(rows, []any{p.PersonID, value(p.PersonName), value(p.Gender), value(p.DegreeYear), value(p.DegreeInstitutionID)})
		}
	case TableInstitutions:
		for _, i := range c.parts.Institutions {
			rows = append(rows, []any{i.InstitutionID, value(i.InstitutionName)})
		}
	case TableDepartments:
		for _, d := range c.parts.Departments {
			rows = append(rows, []any{d.DepartmentID, value(d.DepartmentName)})
		}
	case TableFields:
		rows = labelRows(c.parts.Fields)
	case TableAreas:
		rows = labelRows(c.parts.Areas)
	case TableUmbrellas:
		rows = labelRows(c.parts.Umbrellas)
	case TableTaxonomies:
		for _, t := range c.parts.Taxonomies {
			rows = append(rows, []any{t.TaxonomyID, value(t.Taxonomy), value(t.FieldID), value(t.AreaID), value(t.UmbrellaID)})
		}
	case TableDepartmentTaxonomy:
		for _, dt := range c.parts.DepartmentTaxonomies {
			rows = append(rows, []any{dt.DepartmentID, value(dt.TaxonomyID)})
		}
	case TableAppointments:
		for _, a := range c.parts.Appointments {
			rows = append(rows, []any{
				a.PersonID, a.DepartmentID, a.Year, value(a.InstitutionID),
				value(a.Rank), value(a.PrimaryAppointment), value(a.Imputed),
			})
		}
	}

	return Table{Spec: spec, Rows: rows}, true
}

func labelRows(labels []Label) [][]any {
	rows := make([][]any, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, []any{l.ID, l.Value})
	}

	return rows
}

// FromTables decodes generic tables into a Collection. Every schema table
// must be present. Columns are matched by name, so column order may differ
// from the schema.
func FromTables(tables []Table) (*Collection, error) {
	byName := make(map[string]Table, len(tables))
	for _, t := range tables {
		if _, ok := Spec(t.Spec.Name); !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTable, t.Spec.Name)
		}

		byName[t.Spec.Name] = t
	}

	var p Parts

	for _, s := range Schema {
		t, ok := byName[s.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTable, s.Name)
		}

		if err := decodeTable(&p, t); err != nil {
			return nil, fmt.Errorf("decode %s: %w", s.Name, err)
		}
	}

	return NewCollection(p), nil
}

func decodeTable(p *Parts, t Table) error {
	for i, raw := range t.Rows {
		r := rowDecoder{spec: t.Spec, row: raw}

		switch t.Spec.Name {
		case TablePersons:
			p.Persons = append(p.Persons, Person{
				PersonID:            r.requiredInt("PersonId"),
				PersonName:          r.text("PersonName"),
				Gender:              r.text("Gender"),
				DegreeYear:          r.nullInt("DegreeYear"),
				DegreeInstitutionID: r.nullInt("DegreeInstitutionId"),
			})
		case TableInstitutions:
			p.Institutions = append(p.Institutions, Institution{
				InstitutionID:   r.requiredInt("InstitutionId"),
				InstitutionName: r.text("InstitutionName"),
			})
		case TableDepartments:
			p.Departments = append(p.Departments, Department{
				DepartmentID:   r.requiredInt("DepartmentId"),
				DepartmentName: r.text("DepartmentName"),
			})
		case TableFields:
			p.Fields = append(p.Fields, Label{ID: r.requiredInt("FieldId"), Value: r.text("Field").V})
		case TableAreas:
			p.Areas = append(p.Areas, Label{ID: r.requiredInt("AreaId"), Value: r.text("Area").V})
		case TableUmbrellas:
			p.Umbrellas = append(p.Umbrellas, Label{ID: r.requiredInt("UmbrellaId"), Value: r.text("Umbrella").V})
		case TableTaxonomies:
			p.Taxonomies = append(p.Taxonomies, Taxonomy{
				TaxonomyID: r.requiredInt("TaxonomyId"),
				Taxonomy:   r.text("Taxonomy"),
				FieldID:    r.nullInt("FieldId"),
				AreaID:     r.nullInt("AreaId"),
				UmbrellaID: r.nullInt("UmbrellaId"),
			})
		case TableDepartmentTaxonomy:
			p.DepartmentTaxonomies = append(p.DepartmentTaxonomies, DepartmentTaxonomy{
				DepartmentTaxonomyKey{DepartmentID: r.requiredInt("DepartmentId"), TaxonomyID: r.nullInt("TaxonomyId")},
			})
		case TableAppointments:
			p.Appointments = append(p.Appointments, Appointment{
				AppointmentKey: AppointmentKey{
					PersonID:      r.requiredInt("PersonId"),
					DepartmentID:  r.requiredInt("DepartmentId"),
					Year:          r.requiredInt("Year"),
					InstitutionID: r.nullInt("InstitutionId"),
				},
				Rank:               r.text("Rank"),
				PrimaryAppointment: r.nullBool("PrimaryAppointment"),
				Imputed:            r.nullBool("Imputed"),
			})
		}

		if r.err != nil {
			return fmt.Errorf("row %d: %w", i, r.err)
		}
	}

	return nil
}

// rowDecoder reads typed cells by column name and keeps the first error.
type rowDecoder struct {
	spec TableSpec
	row  []any
	err  error
}

func (r *rowDecoder) cell(name string) any {
	i := r.spec.ColumnIndex(name)
	if i < 0 || i >= len(r.row) {
		r.fail(fmt.Errorf("%w: %s", ErrColumnMissing, name))
		return nil
	}

	return r.row[i]
}

func (r *rowDecoder) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *rowDecoder) nullInt(name string) sql.Null[int64] {
	switch v := r.cell(name).(type) {
	case nil:
		return sql.Null[int64]{}
	case int64:
		return Valid(v)
	case int:
		return Valid(int64(v))
	default:
		r.fail(fmt.Errorf("%w: %s is %T", ErrColumnType, name, v))
		return sql.Null[int64]{}
	}
}

func (r *rowDecoder) requiredInt(name string) int64 {
	v := r.nullInt(name)
	if !v.Valid {
		r.fail(fmt.Errorf("%w: %s is null", ErrColumnType, name))
	}

	return v.V
}

func (r *rowDecoder) text(name string) sql.Null[string] {
	switch v := r.cell(name).(type) {
	case nil:
		return sql.Null[string]{}
	case string:
		return Valid(v)
	default:
		r.fail(fmt.Errorf("%w: %s is %T", ErrColumnType, name, v))
		return sql.Null[string]{}
	}
}

func (r *rowDecoder) nullBool(name string) sql.Null[bool] {
	switch v := r.cell(name).(type) {
	case nil:
		return sql.Null[bool]{}
	case bool:
		return Valid(v)
	case int64:
		return Valid(v != 0)
	default:
		r.fail(fmt.Errorf("%w: %s is %T", ErrColumnType, name, v))
		return sql.Null[bool]{}
	}
}
