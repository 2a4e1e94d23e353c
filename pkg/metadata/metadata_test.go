package metadata

import (
	"errors"
	"strings"
	"testing"
)

func signed() *Manifest {
	m := &Manifest{}
	m.Add("persons", "persons.csv", 2, []byte("PersonId\n1\n2\n"))
	m.Add("departments", "departments.csv", 1, []byte("DepartmentId\n10\n"))
	m.Sign(true)

	return m
}

func TestCalculateHash(t *testing.T) {
	// sha256 of the empty string
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := CalculateHash(nil); got != want {
		t.Errorf("CalculateHash(nil) = %s, want %s", got, want)
	}
}

func TestManifest_RoundTrip(t *testing.T) {
	m := signed()

	data, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	if !strings.Contains(string(data), "tables:") {
		t.Errorf("manifest YAML missing tables key:\n%s", data)
	}

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if got.ExportID == "" || got.ExportID != m.ExportID {
		t.Errorf("ExportID = %q, want %q", got.ExportID, m.ExportID)
	}

	if !got.Validation || got.Version != Version || len(got.Entries) != 2 {
		t.Errorf("parsed manifest = %+v", got)
	}

	e, ok := got.Entry("persons")
	if !ok || e.Rows != 2 || e.File != "persons.csv" {
		t.Errorf("persons entry = %+v, %v", e, ok)
	}
}

func TestManifest_Verify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Manifest)
		wantErr error
	}{
		{name: "Signed", mutate: func(*Manifest) {}},
		{name: "No hash", mutate: func(m *Manifest) { m.Hash = "" }, wantErr: ErrNoHashFound},
		{name: "Edited row count", mutate: func(m *Manifest) { m.Entries[0].Rows = 3 }, wantErr: ErrHashMismatch},
		{name: "Removed entry", mutate: func(m *Manifest) { m.Entries = m.Entries[:1] }, wantErr: ErrHashMismatch},
		{name: "Replaced export id", mutate: func(m *Manifest) { m.ExportID = "other" }, wantErr: ErrHashMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := signed()
			tt.mutate(m)

			err := m.Verify()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Verify() unexpected error: %v", err)
			}

			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestManifest_VerifyFile(t *testing.T) {
	m := signed()

	if err := m.VerifyFile("persons", []byte("PersonId\n1\n2\n")); err != nil {
		t.Errorf("VerifyFile unexpected error: %v", err)
	}

	if err := m.VerifyFile("persons", []byte("PersonId\n1\n")); !errors.Is(err, ErrHashMismatch) {
		t.Errorf("VerifyFile error = %v, want ErrHashMismatch", err)
	}

	if err := m.VerifyFile("areas", nil); !errors.Is(err, ErrUnknownEntry) {
		t.Errorf("VerifyFile error = %v, want ErrUnknownEntry", err)
	}
}
