// Package aarctest provides a small synthetic AARC dataset for tests: the
// flat table and the normalized collection it must produce.
package aarctest

import (
	"database/sql"
	"strings"
	"testing"

	"aarcnorm/internal/models"
	"aarcnorm/internal/table"
)

// Columns is the header of the synthetic flat table.
var Columns = []string{
	"PersonId", "PersonName", "Gender", "DegreeYear", "DegreeInstitutionId",
	"InstitutionId", "InstitutionName", "DepartmentId", "DepartmentName",
	"Year", "Rank", "PrimaryAppointment",
	"Taxonomy", "Field", "Area", "Umbrella",
}

// Rows is the flat table: three departments at two institutions, every
// appointment repeated once per department taxonomy, one exact duplicate
// row, and a department without any taxonomy. Empty strings are nulls.
var Rows = [][]string{
	{"1", "Ada", "F", "2005", "1", "1", "North University", "10", "Physics", "2011", "Assistant Professor", "True", "Physics", "Physics", "Physical Sciences", "Natural Sciences"},
	{"1", "Ada", "F", "2005", "1", "1", "North University", "10", "Physics", "2012", "Associate Professor", "True", "Physics", "Physics", "Physical Sciences", "Natural Sciences"},
	{"2", "Bo", "M", "1999", "99", "1", "North University", "20", "Chemistry", "2011", "Professor", "True", "Chemistry", "Chemistry", "Physical Sciences", "Natural Sciences"},
	{"2", "Bo", "M", "1999", "99", "1", "North University", "20", "Chemistry", "2011", "Professor", "True", "Biochemistry", "Biochemistry", "Life Sciences", "Natural Sciences"},
	{"2", "Bo", "M", "1999", "99", "1", "North University", "20", "Chemistry", "2011", "Professor", "True", "Biochemistry", "Biochemistry", "Life Sciences", "Natural Sciences"},
	{"3", "Cy", "", "2015", "2", "2", "South College", "30", "Computer Science", "2012", "Assistant Professor", "True", "", "", "", ""},
	{"4", "Di", "F", "1990", "1", "1", "North University", "10", "Physics", "2011", "Professor", "True", "Physics", "Physics", "Physical Sciences", "Natural Sciences"},
	{"4", "Di", "F", "1990", "1", "1", "North University", "20", "Chemistry", "2011", "Professor", "False", "Chemistry", "Chemistry", "Physical Sciences", "Natural Sciences"},
	{"4", "Di", "F", "1990", "1", "1", "North University", "20", "Chemistry", "2011", "Professor", "False", "Biochemistry", "Biochemistry", "Life Sciences", "Natural Sciences"},
}

// Cells converts raw strings to cells, mapping "" to null.
func Cells(raw []string) []table.Cell {
	row := make([]table.Cell, len(raw))
	for i, v := range raw {
		if v == "" {
			row[i] = table.Null
		} else {
			row[i] = table.Text(v)
		}
	}

	return row
}

// Frame builds the synthetic flat table.
func Frame(t testing.TB) *table.Frame {
	t.Helper()

	return FrameOf(t, Columns, Rows)
}

// FrameOf builds a frame from raw string rows.
func FrameOf(t testing.TB, columns []string, rows [][]string) *table.Frame {
	t.Helper()

	cells := make([][]table.Cell, len(rows))
	for i, r := range rows {
		cells[i] = Cells(r)
	}

	f, err := table.NewFrame(columns, cells)
	if err != nil {
		t.Fatalf("failed to build frame: %v", err)
	}

	return f
}

// CSV renders the synthetic flat table as CSV text.
func CSV() string {
	var b strings.Builder

	b.WriteString(strings.Join(Columns, ","))
	b.WriteString("\n")

	for _, r := range Rows {
		b.WriteString(strings.Join(r, ","))
		b.WriteString("\n")
	}

	return b.String()
}

func str(s string) sql.Null[string] { return models.Valid(s) }

func num(n int64) sql.Null[int64] { return models.Valid(n) }

// Parts is the normalized form of Frame with synthesized ids starting at 0.
func Parts() models.Parts {
	return models.Parts{
		Persons: []models.Person{
			{PersonID: 1, PersonName: str("Ada"), Gender: str("F"), DegreeYear: num(2005), DegreeInstitutionID: num(1)},
			{PersonID: 2, PersonName: str("Bo"), Gender: str("M"), DegreeYear: num(1999), DegreeInstitutionID: num(99)},
			{PersonID: 3, PersonName: str("Cy"), DegreeYear: num(2015), DegreeInstitutionID: num(2)},
			{PersonID: 4, PersonName: str("Di"), Gender: str("F"), DegreeYear: num(1990), DegreeInstitutionID: num(1)},
		},
		Institutions: []models.Institution{
			{InstitutionID: 1, InstitutionName: str("North University")},
			{InstitutionID: 2, InstitutionName: str("South College")},
		},
		Departments: []models.Department{
			{DepartmentID: 10, DepartmentName: str("Physics")},
			{DepartmentID: 20, DepartmentName: str("Chemistry")},
			{DepartmentID: 30, DepartmentName: str("Computer Science")},
		},
		Taxonomies: []models.Taxonomy{
			{TaxonomyID: 0, Taxonomy: str("Physics"), FieldID: num(0), AreaID: num(0), UmbrellaID: num(0)},
			{TaxonomyID: 1, Taxonomy: str("Chemistry"), FieldID: num(1), AreaID: num(0), UmbrellaID: num(0)},
			{TaxonomyID: 2, Taxonomy: str("Biochemistry"), FieldID: num(2), AreaID: num(1), UmbrellaID: num(0)},
		},
		Fields:    []models.Label{{ID: 0, Value: "Physics"}, {ID: 1, Value: "Chemistry"}, {ID: 2, Value: "Biochemistry"}},
		Areas:     []models.Label{{ID: 0, Value: "Physical Sciences"}, {ID: 1, Value: "Life Sciences"}},
		Umbrellas: []models.Label{{ID: 0, Value: "Natural Sciences"}},
		DepartmentTaxonomies: []models.DepartmentTaxonomy{
			{DepartmentTaxonomyKey: models.DepartmentTaxonomyKey{DepartmentID: 10, TaxonomyID: num(0)}},
			{DepartmentTaxonomyKey: models.DepartmentTaxonomyKey{DepartmentID: 20, TaxonomyID: num(1)}},
			{DepartmentTaxonomyKey: models.DepartmentTaxonomyKey{DepartmentID: 20, TaxonomyID: num(2)}},
			{DepartmentTaxonomyKey: models.DepartmentTaxonomyKey{DepartmentID: 30}},
		},
		Appointments: []models.Appointment{
			appointment(1, 10, 2011, 1, "Assistant Professor", true),
			appointment(1, 10, 2012, 1, "Associate Professor", true),
			appointment(2, 20, 2011, 1, "Professor", true),
			appointment(3, 30, 2012, 2, "Assistant Professor", true),
			appointment(4, 10, 2011, 1, "Professor", true),
			appointment(4, 20, 2011, 1, "Professor", false),
		},
	}
}

func appointment(person, dept, year, inst int64, rank string, primary bool) models.Appointment {
	return models.Appointment{
		AppointmentKey: models.AppointmentKey{
			PersonID:      person,
			DepartmentID:  dept,
			Year:          year,
			InstitutionID: num(inst),
		},
		Rank:               str(rank),
		PrimaryAppointment: models.Valid(primary),
	}
}

// Collection returns the normalized collection of Frame.
func Collection() *models.Collection {
	return models.NewCollection(Parts())
}
