package normalizer

import (
	"cmp"
	"database/sql"
	"fmt"
	"slices"

	"aarcnorm/internal/models"
	"aarcnorm/internal/table"
)

// Report describes a transformation: rows per table and source rows dropped
// from a table because a non-nullable key column was null.
type Report struct {
	Counts  map[string]int
	Skipped map[string]int
}

// Transformer splits a flat table into the normalized tables.
type Transformer struct {
	idBase           int64
	checkConsistency bool
}

// NewTransformer creates a transformer. Synthesized ids start at idBase.
// With checkConsistency, rows of one group that disagree on an attribute
// fail the transformation instead of yielding the first non-null value.
func NewTransformer(idBase int64, checkConsistency bool) *Transformer {
	return &Transformer{idBase: idBase, checkConsistency: checkConsistency}
}

// Transform builds every table of the collection. The frame is not modified.
func (t *Transformer) Transform(f *table.Frame) (*models.Collection, Report, error) {
	b := &build{
		f:      f,
		base:   t.idBase,
		check:  t.checkConsistency,
		report: Report{Skipped: make(map[string]int)},
	}

	var (
		p   models.Parts
		err error
	)

	wrap := func(name string, err error) error { return fmt.Errorf("build %s: %w", name, err) }

	if p.Persons, err = b.persons(); err != nil {
		return nil, Report{}, wrap(models.TablePersons, err)
	}

	if p.Institutions, err = b.institutions(); err != nil {
		return nil, Report{}, wrap(models.TableInstitutions, err)
	}

	if p.Departments, err = b.departments(); err != nil {
		return nil, Report{}, wrap(models.TableDepartments, err)
	}

	// Taxonomies fix the taxonomy key, so they precede the mapping table.
	if p.Taxonomies, p.Fields, p.Areas, p.Umbrellas, err = b.taxonomies(); err != nil {
		return nil, Report{}, wrap(models.TableTaxonomies, err)
	}

	if p.DepartmentTaxonomies, err = b.departmentTaxonomies(); err != nil {
		return nil, Report{}, wrap(models.TableDepartmentTaxonomy, err)
	}

	if p.Appointments, err = b.appointments(); err != nil {
		return nil, Report{}, wrap(models.TableAppointments, err)
	}

	c := models.NewCollection(p)
	b.report.Counts = c.Counts()

	return c, b.report, nil
}

// build holds the state of one Transform call.
type build struct {
	f      *table.Frame
	base   int64
	check  bool
	taxKey func(i int) (int64, bool, error)
	report Report
}

type group[K comparable] struct {
	key  K
	rows []int
}

// groupBy groups row indexes by key in first-seen order. Rows for which key
// reports no value are counted as skipped.
func groupBy[K comparable](n int, key func(i int) (K, bool, error)) ([]group[K], int, error) {
	pos := make(map[K]int)

	var (
		groups  []group[K]
		skipped int
	)

	for i := range n {
		k, ok, err := key(i)
		if err != nil {
			return nil, 0, err
		}

		if !ok {
			skipped++
			continue
		}

		j, seen := pos[k]
		if !seen {
			j = len(groups)
			pos[k] = j
			groups = append(groups, group[K]{key: k})
		}

		groups[j].rows = append(groups[j].rows, i)
	}

	return groups, skipped, nil
}

// first returns the first non-null cell of column among rows, in row
// order, and the row it came from (-1 when every cell is null).
func (b *build) first(tbl string, key any, rows []int, column string) (table.Cell, int, error) {
	chosen, at := table.Null, -1

	var conflicts []string

	for _, i := range rows {
		c := b.f.Cell(i, column)
		if c.Null {
			continue
		}

		if at < 0 {
			chosen, at = c, i
			if !b.check {
				break
			}

			continue
		}

		if c.Value != chosen.Value && !slices.Contains(conflicts, c.Value) {
			conflicts = append(conflicts, c.Value)
		}
	}

	if len(conflicts) > 0 {
		return table.Null, -1, &ConsistencyViolation{
			Table:  tbl,
			Key:    key,
			Column: column,
			Values: append([]string{chosen.Value}, conflicts...),
		}
	}

	return chosen, at, nil
}

func (b *build) text(tbl string, key any, rows []int, column string) (sql.Null[string], error) {
	c, _, err := b.first(tbl, key, rows, column)
	if err != nil || c.Null {
		return sql.Null[string]{}, err
	}

	return models.Valid(c.Value), nil
}

func (b *build) integer(tbl string, key any, rows []int, column string) (sql.Null[int64], error) {
	c, at, err := b.first(tbl, key, rows, column)
	if err != nil || c.Null {
		return sql.Null[int64]{}, err
	}

	v, err := table.ParseInt(c.Value)
	if err != nil {
		return sql.Null[int64]{}, fmt.Errorf("%w: row %d column %s: %q", table.ErrMalformedValue, at, column, c.Value)
	}

	return models.Valid(v), nil
}

func (b *build) boolean(tbl string, key any, rows []int, column string) (sql.Null[bool], error) {
	c, at, err := b.first(tbl, key, rows, column)
	if err != nil || c.Null {
		return sql.Null[bool]{}, err
	}

	v, err := table.ParseBool(c.Value)
	if err != nil {
		return sql.Null[bool]{}, fmt.Errorf("%w: row %d column %s: %q", table.ErrMalformedValue, at, column, c.Value)
	}

	return models.Valid(v), nil
}

func (b *build) label(tbl string, key any, rows []int, column string, e *Enumerator) (sql.Null[int64], error) {
	c, _, err := b.first(tbl, key, rows, column)
	if err != nil || c.Null {
		return sql.Null[int64]{}, err
	}

	id, ok := e.Lookup(c.Value)
	if !ok {
		return sql.Null[int64]{}, fmt.Errorf("no synthesized id for %s %q", column, c.Value)
	}

	return models.Valid(id), nil
}

func (b *build) intKey(column string) func(i int) (int64, bool, error) {
	return func(i int) (int64, bool, error) { return b.f.Int(i, column) }
}

// entities groups rows by a single integer key column, builds one row per
// key with mk and returns them sorted by key.
func entities[T any](b *build, tbl, keyColumn string, mk func(key int64, rows []int) (T, error), id func(T) int64) ([]T, error) {
	groups, skipped, err := groupBy(b.f.Len(), b.intKey(keyColumn))
	if err != nil {
		return nil, err
	}

	b.report.Skipped[tbl] = skipped

	out := make([]T, 0, len(groups))

	for _, g := range groups {
		v, err := mk(g.key, g.rows)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	slices.SortFunc(out, func(a, c T) int { return cmp.Compare(id(a), id(c)) })

	return out, nil
}

func (b *build) persons() ([]models.Person, error) {
	tbl := models.TablePersons

	return entities(b, tbl, "PersonId", func(key int64, rows []int) (models.Person, error) {
		p := models.Person{PersonID: key}

		var err error

		if p.PersonName, err = b.text(tbl, key, rows, "PersonName"); err != nil {
			return p, err
		}

		if p.Gender, err = b.text(tbl, key, rows, "Gender"); err != nil {
			return p, err
		}

		if p.DegreeYear, err = b.integer(tbl, key, rows, "DegreeYear"); err != nil {
			return p, err
		}

		if p.DegreeInstitutionID, err = b.integer(tbl, key, rows, "DegreeInstitutionId"); err != nil {
			return p, err
		}

		return p, nil
	}, func(p models.Person) int64 { return p.PersonID })
}

func (b *build) institutions() ([]models.Institution, error) {
	tbl := models.TableInstitutions

	return entities(b, tbl, "InstitutionId", func(key int64, rows []int) (models.Institution, error) {
		name, err := b.text(tbl, key, rows, "InstitutionName")
		return models.Institution{InstitutionID: key, InstitutionName: name}, err
	}, func(i models.Institution) int64 { return i.InstitutionID })
}

func (b *build) departments() ([]models.Department, error) {
	tbl := models.TableDepartments

	return entities(b, tbl, "DepartmentId", func(key int64, rows []int) (models.Department, error) {
		name, err := b.text(tbl, key, rows, "DepartmentName")
		return models.Department{DepartmentID: key, DepartmentName: name}, err
	}, func(d models.Department) int64 { return d.DepartmentID })
}

// enumerate assigns ids to the non-null values of column in row order.
func (b *build) enumerate(column string) *Enumerator {
	e := NewEnumerator(b.base)

	for i := range b.f.Len() {
		if c := b.f.Cell(i, column); !c.Null {
			e.ID(c.Value)
		}
	}

	return e
}

// taxonomies builds the taxonomy entity and the synthesized field, area and
// umbrella lookups. It also fixes the taxonomy key used by the mapping table.
func (b *build) taxonomies() ([]models.Taxonomy, []models.Label, []models.Label, []models.Label, error) {
	fields := b.enumerate("Field")
	areas := b.enumerate("Area")
	umbrellas := b.enumerate("Umbrella")

	if b.f.Has("TaxonomyId") {
		b.taxKey = b.intKey("TaxonomyId")
	} else {
		names := b.enumerate("Taxonomy")
		b.taxKey = func(i int) (int64, bool, error) {
			c := b.f.Cell(i, "Taxonomy")
			if c.Null {
				return 0, false, nil
			}

			id, _ := names.Lookup(c.Value)

			return id, true, nil
		}
	}

	tbl := models.TableTaxonomies

	groups, skipped, err := groupBy(b.f.Len(), b.taxKey)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	b.report.Skipped[tbl] = skipped

	taxonomies := make([]models.Taxonomy, 0, len(groups))

	for _, g := range groups {
		t := models.Taxonomy{TaxonomyID: g.key}

		if t.Taxonomy, err = b.text(tbl, g.key, g.rows, "Taxonomy"); err != nil {
			return nil, nil, nil, nil, err
		}

		if t.FieldID, err = b.label(tbl, g.key, g.rows, "Field", fields); err != nil {
			return nil, nil, nil, nil, err
		}

		if t.AreaID, err = b.label(tbl, g.key, g.rows, "Area", areas); err != nil {
			return nil, nil, nil, nil, err
		}

		if t.UmbrellaID, err = b.label(tbl, g.key, g.rows, "Umbrella", umbrellas); err != nil {
			return nil, nil, nil, nil, err
		}

		taxonomies = append(taxonomies, t)
	}

	slices.SortFunc(taxonomies, func(a, c models.Taxonomy) int { return cmp.Compare(a.TaxonomyID, c.TaxonomyID) })

	return taxonomies, fields.Labels(), areas.Labels(), umbrellas.Labels(), nil
}

// departmentTaxonomies keeps one row per distinct (department, taxonomy)
// pair. Rows without a taxonomy map to a null TaxonomyID.
func (b *build) departmentTaxonomies() ([]models.DepartmentTaxonomy, error) {
	groups, skipped, err := groupBy(b.f.Len(), func(i int) (models.DepartmentTaxonomyKey, bool, error) {
		var k models.DepartmentTaxonomyKey

		dept, ok, err := b.f.Int(i, "DepartmentId")
		if err != nil || !ok {
			return k, false, err
		}

		k.DepartmentID = dept

		tax, ok, err := b.taxKey(i)
		if err != nil {
			return k, false, err
		}

		if ok {
			k.TaxonomyID = models.Valid(tax)
		}

		return k, true, nil
	})
	if err != nil {
		return nil, err
	}

	b.report.Skipped[models.TableDepartmentTaxonomy] = skipped

	out := make([]models.DepartmentTaxonomy, len(groups))
	for i, g := range groups {
		out[i] = models.DepartmentTaxonomy{DepartmentTaxonomyKey: g.key}
	}

	slices.SortFunc(out, func(a, c models.DepartmentTaxonomy) int {
		return a.DepartmentTaxonomyKey.Compare(c.DepartmentTaxonomyKey)
	})

	return out, nil
}

func (b *build) appointmentKey(i int) (models.AppointmentKey, bool, error) {
	var k models.AppointmentKey

	for _, part := range []struct {
		column string
		dst    *int64
	}{
		{"PersonId", &k.PersonID},
		{"DepartmentId", &k.DepartmentID},
		{"Year", &k.Year},
	} {
		v, ok, err := b.f.Int(i, part.column)
		if err != nil || !ok {
			return k, false, err
		}

		*part.dst = v
	}

	inst, ok, err := b.f.Int(i, "InstitutionId")
	if err != nil {
		return k, false, err
	}

	if ok {
		k.InstitutionID = models.Valid(inst)
	}

	return k, true, nil
}

func (b *build) appointments() ([]models.Appointment, error) {
	tbl := models.TableAppointments

	groups, skipped, err := groupBy(b.f.Len(), b.appointmentKey)
	if err != nil {
		return nil, err
	}

	b.report.Skipped[tbl] = skipped

	out := make([]models.Appointment, 0, len(groups))

	for _, g := range groups {
		a := models.Appointment{AppointmentKey: g.key}

		if a.Rank, err = b.text(tbl, g.key, g.rows, "Rank"); err != nil {
			return nil, err
		}

		if a.PrimaryAppointment, err = b.boolean(tbl, g.key, g.rows, "PrimaryAppointment"); err != nil {
			return nil, err
		}

		if a.Imputed, err = b.boolean(tbl, g.key, g.rows, "Imputed"); err != nil {
			return nil, err
		}

		out = append(out, a)
	}

	slices.SortFunc(out, func(a, c models.Appointment) int { return a.AppointmentKey.Compare(c.AppointmentKey) })

	return out, nil
}
