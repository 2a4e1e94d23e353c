package folder

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aarcnorm/internal/aarctest"
	"aarcnorm/internal/models"
	"aarcnorm/pkg/metadata"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "normalized")
	want := aarctest.Collection()

	m, err := Write(dir, want, true)
	require.NoError(t, err)
	assert.Len(t, m.Entries, len(models.Schema))
	assert.True(t, m.Validation)

	for _, name := range models.Names() {
		assert.FileExists(t, filepath.Join(dir, FileName(name)))
	}

	got, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, want.Parts(), got.Parts())
}

func TestWrite_RejectsBlankText(t *testing.T) {
	for _, blank := range []string{"", " ", "\t"} {
		t.Run("Should reject "+strconv.Quote(blank), func(t *testing.T) {
			p := aarctest.Parts()
			p.Persons[0].PersonName = models.Valid(blank)

			dir := filepath.Join(t.TempDir(), "normalized")

			_, err := Write(dir, models.NewCollection(p), false)
			require.ErrorIs(t, err, ErrBlankText)
			assert.Contains(t, err.Error(), "PersonName")
			assert.NoFileExists(t, filepath.Join(dir, FileName(models.TablePersons)))
		})
	}
}

func TestWrite_CSVLayout(t *testing.T) {
	dir := t.TempDir()

	_, err := Write(dir, aarctest.Collection(), false)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, FileName(models.TableDepartmentTaxonomy)))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "DepartmentId,TaxonomyId", lines[0])
	assert.Equal(t, "30,", lines[4], "null taxonomy is written as an empty cell")

	appointments, err := os.ReadFile(filepath.Join(dir, FileName(models.TableAppointments)))
	require.NoError(t, err)
	assert.Contains(t, string(appointments), ",True,")
}

func TestRead_DetectsTampering(t *testing.T) {
	dir := t.TempDir()

	_, err := Write(dir, aarctest.Collection(), true)
	require.NoError(t, err)

	path := filepath.Join(dir, FileName(models.TableDepartments))
	require.NoError(t, os.WriteFile(path, []byte("DepartmentId,DepartmentName\n10,Physics\n"), 0o644))

	_, err = Read(dir)
	assert.ErrorIs(t, err, metadata.ErrHashMismatch)
}

func TestRead_WithoutManifest(t *testing.T) {
	dir := t.TempDir()

	_, err := Write(dir, aarctest.Collection(), true)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, metadata.FileName)))

	// Unrelated CSV files are not tables and are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.csv"), []byte("a,b\n1,2\n"), 0o644))

	got, err := Read(dir)
	require.NoError(t, err)
	assert.Equal(t, aarctest.Parts(), got.Parts())
}

func TestRead_MissingTable(t *testing.T) {
	dir := t.TempDir()

	_, err := Write(dir, aarctest.Collection(), true)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, metadata.FileName)))
	require.NoError(t, os.Remove(filepath.Join(dir, FileName(models.TableAreas))))

	_, err = Read(dir)
	assert.ErrorIs(t, err, models.ErrMissingTable)
}

func TestRead_MissingNullableColumn(t *testing.T) {
	dir := t.TempDir()

	_, err := Write(dir, aarctest.Collection(), true)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, metadata.FileName)))

	// Older exports carry no Imputed column.
	path := filepath.Join(dir, FileName(models.TableAppointments))
	data := "PersonId,DepartmentId,Year,InstitutionId,Rank,PrimaryAppointment\n1,10,2011,1,Professor,True\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	got, err := Read(dir)
	require.NoError(t, err)

	a := got.Appointments()
	require.Len(t, a, 1)
	assert.False(t, a[0].Imputed.Valid)
	assert.Equal(t, models.Valid(true), a[0].PrimaryAppointment)

	require.NoError(t, os.WriteFile(path, []byte("DepartmentId,Year\n10,2011\n"), 0o644))

	_, err = Read(dir)
	assert.ErrorIs(t, err, models.ErrColumnMissing)
}
