package normalizer

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"aarcnorm/internal/aarctest"
	"aarcnorm/internal/models"
	"aarcnorm/internal/table"
)

func cloneRows() [][]string {
	rows := make([][]string, len(aarctest.Rows))
	for i, r := range aarctest.Rows {
		rows[i] = slices.Clone(r)
	}

	return rows
}

func columnIndex(t *testing.T, name string) int {
	t.Helper()

	i := slices.Index(aarctest.Columns, name)
	if i < 0 {
		t.Fatalf("fixture has no column %s", name)
	}

	return i
}

func TestNewTransformer(t *testing.T) {
	tr := NewTransformer(0, false)
	if tr == nil {
		t.Fatal("NewTransformer returned nil")
	}
}

func TestTransformer_Transform(t *testing.T) {
	tr := NewTransformer(0, false)

	c, report, err := tr.Transform(aarctest.Frame(t))
	if err != nil {
		t.Fatalf("Transform returned unexpected error: %v", err)
	}

	want := aarctest.Parts()
	got := c.Parts()

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Transform mismatch:\n got %+v\nwant %+v", got, want)
	}

	if report.Counts[models.TableDepartments] != 3 {
		t.Errorf("departments = %d, want 3", report.Counts[models.TableDepartments])
	}

	// One row per distinct pair, no matter how often it repeats.
	if report.Counts[models.TableDepartmentTaxonomy] != 4 {
		t.Errorf("department_taxonomy = %d, want 4", report.Counts[models.TableDepartmentTaxonomy])
	}

	for name, n := range report.Skipped {
		if name != models.TableTaxonomies && n != 0 {
			t.Errorf("Skipped[%s] = %d, want 0", name, n)
		}
	}
}

func TestTransformer_NullForeignKey(t *testing.T) {
	c, _, err := NewTransformer(0, false).Transform(aarctest.Frame(t))
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	var found bool

	for _, dt := range c.DepartmentTaxonomies() {
		if dt.DepartmentID == 30 {
			found = true

			if dt.TaxonomyID.Valid {
				t.Errorf("department 30 TaxonomyID = %v, want null", dt.TaxonomyID)
			}
		}
	}

	if !found {
		t.Error("department without taxonomy is missing from the mapping table")
	}
}

func TestTransformer_Idempotent(t *testing.T) {
	f := aarctest.Frame(t)
	before := make([][]table.Cell, f.Len())

	for i := range f.Len() {
		before[i] = f.Row(i)
	}

	tr := NewTransformer(0, false)

	first, _, err := tr.Transform(f)
	if err != nil {
		t.Fatalf("first Transform failed: %v", err)
	}

	second, _, err := tr.Transform(f)
	if err != nil {
		t.Fatalf("second Transform failed: %v", err)
	}

	if !reflect.DeepEqual(first.Parts(), second.Parts()) {
		t.Error("Transform is not idempotent")
	}

	for i := range f.Len() {
		if !slices.Equal(before[i], f.Row(i)) {
			t.Fatalf("row %d of the input was modified", i)
		}
	}
}

func TestTransformer_IDBase(t *testing.T) {
	c, _, err := NewTransformer(1, false).Transform(aarctest.Frame(t))
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	taxonomies := c.Taxonomies()
	if taxonomies[0].TaxonomyID != 1 || taxonomies[0].Taxonomy.V != "Physics" {
		t.Errorf("first taxonomy = %+v, want id 1 Physics", taxonomies[0])
	}

	if u := c.Umbrellas(); len(u) != 1 || u[0].ID != 1 {
		t.Errorf("umbrellas = %+v, want single id 1", u)
	}
}

func TestTransformer_NaturalTaxonomyID(t *testing.T) {
	ids := map[string]string{"Physics": "100", "Chemistry": "200", "Biochemistry": "300"}
	tax := columnIndex(t, "Taxonomy")

	columns := append(slices.Clone(aarctest.Columns), "TaxonomyId")

	var rows [][]string
	for _, r := range cloneRows() {
		rows = append(rows, append(r, ids[r[tax]]))
	}

	c, _, err := NewTransformer(0, false).Transform(aarctest.FrameOf(t, columns, rows))
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	var got []int64
	for _, tx := range c.Taxonomies() {
		got = append(got, tx.TaxonomyID)
	}

	if !slices.Equal(got, []int64{100, 200, 300}) {
		t.Errorf("taxonomy ids = %v, want [100 200 300]", got)
	}

	dt := c.DepartmentTaxonomies()
	if dt[0].TaxonomyID != models.Valid[int64](100) || dt[3].TaxonomyID.Valid {
		t.Errorf("mapping = %+v", dt)
	}
}

func TestTransformer_FirstNonNullWins(t *testing.T) {
	rows := cloneRows()
	name := columnIndex(t, "DepartmentName")
	gender := columnIndex(t, "Gender")

	rows[0][name] = "Physics & Astronomy"
	rows[0][gender] = ""

	c, _, err := NewTransformer(0, false).Transform(aarctest.FrameOf(t, aarctest.Columns, rows))
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	d, _ := c.Department(10)
	if d.DepartmentName.V != "Physics & Astronomy" {
		t.Errorf("DepartmentName = %q, want first occurrence", d.DepartmentName.V)
	}

	p, _ := c.Person(1)
	if p.Gender != models.Valid("F") {
		t.Errorf("Gender = %+v, want first non-null F", p.Gender)
	}
}

func TestTransformer_ConsistencyCheck(t *testing.T) {
	rows := cloneRows()
	rows[0][columnIndex(t, "DepartmentName")] = "Physics & Astronomy"

	_, _, err := NewTransformer(0, true).Transform(aarctest.FrameOf(t, aarctest.Columns, rows))
	if !errors.Is(err, ErrConsistency) {
		t.Fatalf("Transform error = %v, want ErrConsistency", err)
	}

	var cv *ConsistencyViolation
	if !errors.As(err, &cv) {
		t.Fatalf("error %T is not *ConsistencyViolation", err)
	}

	if cv.Table != models.TableDepartments || cv.Column != "DepartmentName" {
		t.Errorf("violation = %+v", cv)
	}

	if !slices.Equal(cv.Values, []string{"Physics & Astronomy", "Physics"}) {
		t.Errorf("Values = %q", cv.Values)
	}

	if _, _, err := NewTransformer(0, true).Transform(aarctest.Frame(t)); err != nil {
		t.Errorf("consistent input failed the check: %v", err)
	}
}

func TestTransformer_SkipsNullKeys(t *testing.T) {
	rows := cloneRows()
	rows = append(rows, slices.Clone(rows[0]))
	rows[len(rows)-1][columnIndex(t, "PersonId")] = ""

	_, report, err := NewTransformer(0, false).Transform(aarctest.FrameOf(t, aarctest.Columns, rows))
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if report.Skipped[models.TablePersons] != 1 || report.Skipped[models.TableAppointments] != 1 {
		t.Errorf("Skipped = %v, want persons and appointments 1", report.Skipped)
	}

	if report.Counts[models.TablePersons] != 4 {
		t.Errorf("persons = %d, want 4", report.Counts[models.TablePersons])
	}
}

func TestTransformer_MalformedValue(t *testing.T) {
	rows := cloneRows()
	rows[2][columnIndex(t, "PrimaryAppointment")] = "maybe"

	_, _, err := NewTransformer(0, false).Transform(aarctest.FrameOf(t, aarctest.Columns, rows))
	if !errors.Is(err, table.ErrMalformedValue) {
		t.Fatalf("Transform error = %v, want ErrMalformedValue", err)
	}
}

func TestTransformer_LargeIDsStayDistinct(t *testing.T) {
	rows := cloneRows()
	personID, name := columnIndex(t, "PersonId"), columnIndex(t, "PersonName")

	for _, v := range []struct{ id, name string }{{"9007199254740993.0", "Eve"}, {"9007199254740992", "Fay"}} {
		r := slices.Clone(rows[0])
		r[personID], r[name] = v.id, v.name
		rows = append(rows, r)
	}

	c, _, err := NewTransformer(0, false).Transform(aarctest.FrameOf(t, aarctest.Columns, rows))
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	persons := c.Persons()
	if len(persons) != 6 {
		t.Fatalf("persons = %d, want 6", len(persons))
	}

	if p, ok := c.Person(9007199254740993); !ok || p.PersonName.V != "Eve" {
		t.Errorf("Person(2^53+1) = %+v, %t", p, ok)
	}

	if p, ok := c.Person(9007199254740992); !ok || p.PersonName.V != "Fay" {
		t.Errorf("Person(2^53) = %+v, %t", p, ok)
	}
}

func TestTransformer_ExponentKeyRejected(t *testing.T) {
	rows := cloneRows()
	rows[0][columnIndex(t, "PersonId")] = "1e3"

	_, _, err := NewTransformer(0, false).Transform(aarctest.FrameOf(t, aarctest.Columns, rows))
	if !errors.Is(err, table.ErrMalformedValue) {
		t.Fatalf("Transform error = %v, want ErrMalformedValue", err)
	}
}

func TestTransformer_ImputedColumn(t *testing.T) {
	columns := append(slices.Clone(aarctest.Columns), "Imputed")

	var rows [][]string
	for i, r := range cloneRows() {
		flag := "False"
		if i == 1 {
			flag = "True"
		}

		rows = append(rows, append(r, flag))
	}

	c, _, err := NewTransformer(0, false).Transform(aarctest.FrameOf(t, columns, rows))
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	a := c.Appointments()
	if a[1].Imputed != models.Valid(true) || a[0].Imputed != models.Valid(false) {
		t.Errorf("Imputed flags = %+v, %+v", a[0].Imputed, a[1].Imputed)
	}
}
