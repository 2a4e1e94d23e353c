package analysis

import (
	"cmp"
	"database/sql"
	"slices"

	"aarcnorm/internal/models"
)

// DepartmentTaxonomy is a department joined with one of its taxonomies.
type DepartmentTaxonomy struct {
	DepartmentID   int64
	DepartmentName sql.Null[string]
	TaxonomyID     sql.Null[int64]
	Taxonomy       sql.Null[string]
	Field          sql.Null[string]
	Area           sql.Null[string]
	Umbrella       sql.Null[string]
}

// DepartmentTaxonomies left-joins every department with the taxonomy
// hierarchy. A department without a taxonomy yields one row with null
// taxonomy columns.
func DepartmentTaxonomies(c *models.Collection) []DepartmentTaxonomy {
	byDept := taxonomiesByDepartment(c)

	var out []DepartmentTaxonomy

	for _, d := range c.Departments() {
		for _, t := range departmentViews(byDept, d.DepartmentID) {
			out = append(out, DepartmentTaxonomy{
				DepartmentID:   d.DepartmentID,
				DepartmentName: d.DepartmentName,
				TaxonomyID:     t.ID,
				Taxonomy:       t.Taxonomy,
				Field:          t.Field,
				Area:           t.Area,
				Umbrella:       t.Umbrella,
			})
		}
	}

	return out
}

// AppointmentDetails joins the filtered appointments with their person,
// department and institution in appointment order.
func AppointmentDetails(c *models.Collection, f models.AppointmentFilter) []models.AppointmentDetail {
	var out []models.AppointmentDetail

	for _, a := range c.Appointments() {
		if !f.Match(a.AppointmentKey) {
			continue
		}

		d := models.AppointmentDetail{
			AppointmentKey:     a.AppointmentKey,
			Rank:               a.Rank,
			PrimaryAppointment: a.PrimaryAppointment,
		}

		if p, ok := c.Person(a.PersonID); ok {
			d.PersonName = p.PersonName
		}

		if dep, ok := c.Department(a.DepartmentID); ok {
			d.DepartmentName = dep.DepartmentName
		}

		if a.InstitutionID.Valid {
			if i, ok := c.Institution(a.InstitutionID.V); ok {
				d.InstitutionName = i.InstitutionName
			}
		}

		out = append(out, d)
	}

	return out
}

// Headcount counts the people and appointments of a department in a year.
type Headcount struct {
	DepartmentID   int64
	DepartmentName sql.Null[string]
	Year           int64
	Persons        int
	Appointments   int
}

// HeadcountByDepartmentYear counts distinct persons and appointments per
// department and year, ordered by department then year.
func HeadcountByDepartmentYear(c *models.Collection) []Headcount {
	type key struct{ dept, year int64 }

	counts := make(map[key]*Headcount)
	persons := make(map[key]map[int64]bool)

	for _, a := range c.Appointments() {
		k := key{a.DepartmentID, a.Year}

		h, ok := counts[k]
		if !ok {
			h = &Headcount{DepartmentID: a.DepartmentID, Year: a.Year}
			if d, found := c.Department(a.DepartmentID); found {
				h.DepartmentName = d.DepartmentName
			}

			counts[k] = h
			persons[k] = make(map[int64]bool)
		}

		h.Appointments++
		persons[k][a.PersonID] = true
	}

	out := make([]Headcount, 0, len(counts))
	for k, h := range counts {
		h.Persons = len(persons[k])
		out = append(out, *h)
	}

	slices.SortFunc(out, func(a, b Headcount) int {
		if n := cmp.Compare(a.DepartmentID, b.DepartmentID); n != 0 {
			return n
		}

		return cmp.Compare(a.Year, b.Year)
	})

	return out
}

// RankCount is the number of distinct persons holding a rank under an umbrella.
type RankCount struct {
	Umbrella sql.Null[string]
	Rank     sql.Null[string]
	Persons  int
}

// RankDistributionByUmbrella counts distinct persons per umbrella and rank.
// An appointment counts once for every distinct umbrella its department
// belongs to; departments without a taxonomy count under a null umbrella.
// Rows are ordered by umbrella then rank, nulls first.
func RankDistributionByUmbrella(c *models.Collection) []RankCount {
	type key struct{ umbrella, rank sql.Null[string] }

	umbrellas := make(map[int64][]sql.Null[string])
	for dept, views := range taxonomiesByDepartment(c) {
		for _, v := range views {
			if !slices.Contains(umbrellas[dept], v.Umbrella) {
				umbrellas[dept] = append(umbrellas[dept], v.Umbrella)
			}
		}
	}

	persons := make(map[key]map[int64]bool)

	for _, a := range c.Appointments() {
		us := umbrellas[a.DepartmentID]
		if len(us) == 0 {
			us = []sql.Null[string]{{}}
		}

		for _, u := range us {
			k := key{u, a.Rank}
			if persons[k] == nil {
				persons[k] = make(map[int64]bool)
			}

			persons[k][a.PersonID] = true
		}
	}

	out := make([]RankCount, 0, len(persons))
	for k, p := range persons {
		out = append(out, RankCount{Umbrella: k.umbrella, Rank: k.rank, Persons: len(p)})
	}

	slices.SortFunc(out, func(a, b RankCount) int {
		if n := models.CompareNull(a.Umbrella, b.Umbrella); n != 0 {
			return n
		}

		return models.CompareNull(a.Rank, b.Rank)
	})

	return out
}
