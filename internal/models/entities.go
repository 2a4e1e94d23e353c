// Package models defines the normalized AARC entities, relationships and
// the collection that bundles them.
package models

import (
	"cmp"
	"database/sql"
)

// Person is a faculty member. Keyed by PersonID.
type Person struct {
	PersonID            int64
	PersonName          sql.Null[string]
	Gender              sql.Null[string]
	DegreeYear          sql.Null[int64]
	DegreeInstitutionID sql.Null[int64]
}

// Institution is an employing institution. Keyed by InstitutionID.
type Institution struct {
	InstitutionID   int64
	InstitutionName sql.Null[string]
}

// Department is an academic department. Keyed by DepartmentID.
type Department struct {
	DepartmentID   int64
	DepartmentName sql.Null[string]
}

// Taxonomy is a discipline label with its field, area and umbrella.
// FieldID, AreaID and UmbrellaID point into the synthesized lookups.
type Taxonomy struct {
	TaxonomyID int64
	Taxonomy   sql.Null[string]
	FieldID    sql.Null[int64]
	AreaID     sql.Null[int64]
	UmbrellaID sql.Null[int64]
}

// Label is a row of a synthesized lookup table (fields, areas, umbrellas).
type Label struct {
	ID    int64
	Value string
}

// DepartmentTaxonomyKey identifies a department↔taxonomy pair. TaxonomyID
// is null for departments without a taxonomy match.
type DepartmentTaxonomyKey struct {
	DepartmentID int64
	TaxonomyID   sql.Null[int64]
}

// DepartmentTaxonomy is the many-to-many mapping between departments and taxonomies.
type DepartmentTaxonomy struct {
	DepartmentTaxonomyKey
}

// AppointmentKey identifies an appointment of a person at a department in a year.
type AppointmentKey struct {
	PersonID      int64
	DepartmentID  int64
	Year          int64
	InstitutionID sql.Null[int64]
}

// Appointment holds the attributes that depend on the full appointment key.
type Appointment struct {
	AppointmentKey
	Rank               sql.Null[string]
	PrimaryAppointment sql.Null[bool]
	Imputed            sql.Null[bool]
}

// Valid returns a non-null value.
func Valid[T any](v T) sql.Null[T] {
	return sql.Null[T]{V: v, Valid: true}
}

// CompareNull orders nullable values with nulls first.
func CompareNull[T int64 | string](a, b sql.Null[T]) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return -1
	case !b.Valid:
		return 1
	default:
		return cmp.Compare(a.V, b.V)
	}
}

// Compare orders appointment keys by person, department, year, institution.
func (k AppointmentKey) Compare(o AppointmentKey) int {
	if c := cmp.Compare(k.PersonID, o.PersonID); c != 0 {
		return c
	}

	if c := cmp.Compare(k.DepartmentID, o.DepartmentID); c != 0 {
		return c
	}

	if c := cmp.Compare(k.Year, o.Year); c != 0 {
		return c
	}

	return CompareNull(k.InstitutionID, o.InstitutionID)
}

// Compare orders mapping keys by department then taxonomy.
func (k DepartmentTaxonomyKey) Compare(o DepartmentTaxonomyKey) int {
	if c := cmp.Compare(k.DepartmentID, o.DepartmentID); c != 0 {
		return c
	}

	return CompareNull(k.TaxonomyID, o.TaxonomyID)
}
