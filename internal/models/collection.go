package models

import (
	"slices"
)

// Parts carries the tables used to build a Collection.
type Parts struct {
	Persons              []Person
	Institutions         []Institution
	Departments          []Department
	Taxonomies           []Taxonomy
	Fields               []Label
	Areas                []Label
	Umbrellas            []Label
	DepartmentTaxonomies []DepartmentTaxonomy
	Appointments         []Appointment
}

// Collection is the read-only bundle of normalized tables. Accessors return
// copies, so callers cannot alter the tables after construction.
type Collection struct {
	parts Parts

	persons      map[int64]int
	institutions map[int64]int
	departments  map[int64]int
	taxonomies   map[int64]int
	fields       map[int64]int
	areas        map[int64]int
	umbrellas    map[int64]int
}

// NewCollection copies parts into a new Collection and indexes entity keys.
func NewCollection(p Parts) *Collection {
	c := &Collection{
		parts: Parts{
			Persons:              slices.Clone(p.Persons),
			Institutions:         slices.Clone(p.Institutions),
			Departments:          slices.Clone(p.Departments),
			Taxonomies:           slices.Clone(p.Taxonomies),
			Fields:               slices.Clone(p.Fields),
			Areas:                slices.Clone(p.Areas),
			Umbrellas:            slices.Clone(p.Umbrellas),
			DepartmentTaxonomies: slices.Clone(p.DepartmentTaxonomies),
			Appointments:         slices.Clone(p.Appointments),
		},
	}

	c.persons = index(c.parts.Persons, func(v Person) int64 { return v.PersonID })
	c.institutions = index(c.parts.Institutions, func(v Institution) int64 { return v.InstitutionID })
	c.departments = index(c.parts.Departments, func(v Department) int64 { return v.DepartmentID })
	c.taxonomies = index(c.parts.Taxonomies, func(v Taxonomy) int64 { return v.TaxonomyID })
	c.fields = index(c.parts.Fields, labelID)
	c.areas = index(c.parts.Areas, labelID)
	c.umbrellas = index(c.parts.Umbrellas, labelID)

	return c
}

func index[T any](rows []T, key func(T) int64) map[int64]int {
	m := make(map[int64]int, len(rows))
	for i, r := range rows {
		if _, seen := m[key(r)]; !seen {
			m[key(r)] = i
		}
	}

	return m
}

func labelID(l Label) int64 { return l.ID }

// Persons returns the persons table.
func (c *Collection) Persons() []Person { return slices.Clone(c.parts.Persons) }

// Institutions returns the institutions table.
func (c *Collection) Institutions() []Institution { return slices.Clone(c.parts.Institutions) }

// Departments returns the departments table.
func (c *Collection) Departments() []Department { return slices.Clone(c.parts.Departments) }

// Taxonomies returns the taxonomies table.
func (c *Collection) Taxonomies() []Taxonomy { return slices.Clone(c.parts.Taxonomies) }

// Fields returns the synthesized field lookup.
func (c *Collection) Fields() []Label { return slices.Clone(c.parts.Fields) }

// Areas returns the synthesized area lookup.
func (c *Collection) Areas() []Label { return slices.Clone(c.parts.Areas) }

// Umbrellas returns the synthesized umbrella lookup.
func (c *Collection) Umbrellas() []Label { return slices.Clone(c.parts.Umbrellas) }

// DepartmentTaxonomies returns the department↔taxonomy mapping.
func (c *Collection) DepartmentTaxonomies() []DepartmentTaxonomy {
	return slices.Clone(c.parts.DepartmentTaxonomies)
}

// Appointments returns the appointments table.
func (c *Collection) Appointments() []Appointment { return slices.Clone(c.parts.Appointments) }

// Parts returns a copy of every table.
func (c *Collection) Parts() Parts {
	return NewCollection(c.parts).parts
}

// Person looks up a person by id.
func (c *Collection) Person(id int64) (Person, bool) {
	return lookup(c.parts.Persons, c.persons, id)
}

// Institution looks up an institution by id.
func (c *Collection) Institution(id int64) (Institution, bool) {
	return lookup(c.parts.Institutions, c.institutions, id)
}

// Department looks up a department by id.
func (c *Collection) Department(id int64) (Department, bool) {
	return lookup(c.parts.Departments, c.departments, id)
}

// Taxonomy looks up a taxonomy by id.
func (c *Collection) Taxonomy(id int64) (Taxonomy, bool) {
	return lookup(c.parts.Taxonomies, c.taxonomies, id)
}

// Field looks up a field label by id.
func (c *Collection) Field(id int64) (Label, bool) { return lookup(c.parts.Fields, c.fields, id) }

// Area looks up an area label by id.
func (c *Collection) Area(id int64) (Label, bool) { return lookup(c.parts.Areas, c.areas, id) }

// Umbrella looks up an umbrella label by id.
func (c *Collection) Umbrella(id int64) (Label, bool) {
	return lookup(c.parts.Umbrellas, c.umbrellas, id)
}

func lookup[T any](rows []T, idx map[int64]int, id int64) (T, bool) {
	i, ok := idx[id]
	if !ok {
		var zero T
		return zero, false
	}

	return rows[i], true
}

// Counts returns the row count of every table keyed by table name.
func (c *Collection) Counts() map[string]int {
	return map[string]int{
		TablePersons:            len(c.parts.Persons),
		TableInstitutions:       len(c.parts.Institutions),
		TableDepartments:        len(c.parts.Departments),
		TableTaxonomies:         len(c.parts.Taxonomies),
		TableFields:             len(c.parts.Fields),
		TableAreas:              len(c.parts.Areas),
		TableUmbrellas:          len(c.parts.Umbrellas),
		TableDepartmentTaxonomy: len(c.parts.DepartmentTaxonomies),
		TableAppointments:       len(c.parts.Appointments),
	}
}
