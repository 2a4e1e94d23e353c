package models

import "database/sql"

// AppointmentDetail is an appointment joined with its person, department
// and institution.
type AppointmentDetail struct {
	AppointmentKey
	PersonName         sql.Null[string]
	DepartmentName     sql.Null[string]
	InstitutionName    sql.Null[string]
	Rank               sql.Null[string]
	PrimaryAppointment sql.Null[bool]
}

// AppointmentFilter restricts appointment detail queries. Null fields match
// every row.
type AppointmentFilter struct {
	PersonID      sql.Null[int64]
	DepartmentID  sql.Null[int64]
	Year          sql.Null[int64]
	InstitutionID sql.Null[int64]
}

// Match reports whether the key passes the filter.
func (f AppointmentFilter) Match(k AppointmentKey) bool {
	switch {
	case f.PersonID.Valid && f.PersonID.V != k.PersonID:
		return false
	case f.DepartmentID.Valid && f.DepartmentID.V != k.DepartmentID:
		return false
	case f.Year.Valid && f.Year.V != k.Year:
		return false
	case f.InstitutionID.Valid && (!k.InstitutionID.Valid || f.InstitutionID.V != k.InstitutionID.V):
		return false
	default:
		return true
	}
}
