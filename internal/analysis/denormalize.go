// Package analysis re-joins a normalized collection in memory: back into
// the flat table it came from, and into the summaries used for reports.
package analysis

import (
	"database/sql"
	"strconv"

	"aarcnorm/internal/models"
	"aarcnorm/internal/table"
)

// FlatColumns is the header written by ToFrame.
var FlatColumns = []string{
	"PersonId", "PersonName", "Gender", "DegreeYear", "DegreeInstitutionId",
	"InstitutionId", "InstitutionName", "DepartmentId", "DepartmentName",
	"Year", "Rank", "PrimaryAppointment",
	"TaxonomyId", "Taxonomy", "Field", "Area", "Umbrella", "Imputed",
}

// FlatRecord is one appointment for one of its department's taxonomies.
type FlatRecord struct {
	models.AppointmentKey
	PersonName          sql.Null[string]
	Gender              sql.Null[string]
	DegreeYear          sql.Null[int64]
	DegreeInstitutionID sql.Null[int64]
	InstitutionName     sql.Null[string]
	DepartmentName      sql.Null[string]
	Rank                sql.Null[string]
	PrimaryAppointment  sql.Null[bool]
	Imputed             sql.Null[bool]
	TaxonomyID          sql.Null[int64]
	Taxonomy            sql.Null[string]
	Field               sql.Null[string]
	Area                sql.Null[string]
	Umbrella            sql.Null[string]
}

// taxonomyView is a taxonomy with its labels resolved.
type taxonomyView struct {
	ID       sql.Null[int64]
	Taxonomy sql.Null[string]
	Field    sql.Null[string]
	Area     sql.Null[string]
	Umbrella sql.Null[string]
}

func labelValue(id sql.Null[int64], get func(int64) (models.Label, bool)) sql.Null[string] {
	if !id.Valid {
		return sql.Null[string]{}
	}

	if l, ok := get(id.V); ok {
		return models.Valid(l.Value)
	}

	return sql.Null[string]{}
}

func resolveTaxonomy(c *models.Collection, id sql.Null[int64]) taxonomyView {
	v := taxonomyView{ID: id}
	if !id.Valid {
		return v
	}

	t, ok := c.Taxonomy(id.V)
	if !ok {
		return v
	}

	v.Taxonomy = t.Taxonomy
	v.Field = labelValue(t.FieldID, c.Field)
	v.Area = labelValue(t.AreaID, c.Area)
	v.Umbrella = labelValue(t.UmbrellaID, c.Umbrella)

	return v
}

// taxonomiesByDepartment groups the mapping table by department, keeping
// the mapping order. Departments without any mapping row get one null view.
func taxonomiesByDepartment(c *models.Collection) map[int64][]taxonomyView {
	out := make(map[int64][]taxonomyView)
	for _, dt := range c.DepartmentTaxonomies() {
		out[dt.DepartmentID] = append(out[dt.DepartmentID], resolveTaxonomy(c, dt.TaxonomyID))
	}

	return out
}

func departmentViews(byDept map[int64][]taxonomyView, id int64) []taxonomyView {
	if views := byDept[id]; len(views) > 0 {
		return views
	}

	return []taxonomyView{{}}
}

// Denormalize joins every appointment with its person, institution,
// department and each of the department's taxonomies. Missing references
// leave the joined columns null. Records follow appointment order, then
// mapping order.
func Denormalize(c *models.Collection) []FlatRecord {
	byDept := taxonomiesByDepartment(c)

	var out []FlatRecord

	for _, a := range c.Appointments() {
		base := FlatRecord{
			AppointmentKey:     a.AppointmentKey,
			Rank:               a.Rank,
			PrimaryAppointment: a.PrimaryAppointment,
			Imputed:            a.Imputed,
		}

		if p, ok := c.Person(a.PersonID); ok {
			base.PersonName = p.PersonName
			base.Gender = p.Gender
			base.DegreeYear = p.DegreeYear
			base.DegreeInstitutionID = p.DegreeInstitutionID
		}

		if a.InstitutionID.Valid {
			if i, ok := c.Institution(a.InstitutionID.V); ok {
				base.InstitutionName = i.InstitutionName
			}
		}

		if d, ok := c.Department(a.DepartmentID); ok {
			base.DepartmentName = d.DepartmentName
		}

		for _, t := range departmentViews(byDept, a.DepartmentID) {
			r := base
			r.TaxonomyID = t.ID
			r.Taxonomy = t.Taxonomy
			r.Field = t.Field
			r.Area = t.Area
			r.Umbrella = t.Umbrella
			out = append(out, r)
		}
	}

	return out
}

func intCell(v sql.Null[int64]) table.Cell {
	if !v.Valid {
		return table.Null
	}

	return table.Text(strconv.FormatInt(v.V, 10))
}

func textCell(v sql.Null[string]) table.Cell {
	if !v.Valid {
		return table.Null
	}

	return table.Text(v.V)
}

func boolCell(v sql.Null[bool]) table.Cell {
	switch {
	case !v.Valid:
		return table.Null
	case v.V:
		return table.Text("True")
	default:
		return table.Text("False")
	}
}

// ToFrame lays records out as a flat table with FlatColumns.
func ToFrame(records []FlatRecord) (*table.Frame, error) {
	rows := make([][]table.Cell, len(records))

	for i, r := range records {
		rows[i] = []table.Cell{
			table.Text(strconv.FormatInt(r.PersonID, 10)),
			textCell(r.PersonName),
			textCell(r.Gender),
			intCell(r.DegreeYear),
			intCell(r.DegreeInstitutionID),
			intCell(r.InstitutionID),
			textCell(r.InstitutionName),
			table.Text(strconv.FormatInt(r.DepartmentID, 10)),
			textCell(r.DepartmentName),
			table.Text(strconv.FormatInt(r.Year, 10)),
			textCell(r.Rank),
			boolCell(r.PrimaryAppointment),
			intCell(r.TaxonomyID),
			textCell(r.Taxonomy),
			textCell(r.Field),
			textCell(r.Area),
			textCell(r.Umbrella),
			boolCell(r.Imputed),
		}
	}

	return table.NewFrame(FlatColumns, rows)
}
