package normalizer

import (
	"errors"

	"aarcnorm/internal/table"
)

// ErrNilFrame is returned when no input table is given.
var ErrNilFrame = errors.New("input table is nil")

// RequiredColumns are the source columns every entity and relationship
// table is derived from.
var RequiredColumns = []string{
	"PersonId", "PersonName", "Gender", "DegreeYear", "DegreeInstitutionId",
	"InstitutionId", "InstitutionName",
	"DepartmentId", "DepartmentName",
	"Year", "Rank", "PrimaryAppointment",
	"Taxonomy", "Umbrella", "Area", "Field",
}

// OptionalColumns are read when present. Without TaxonomyId the taxonomy
// ids are synthesized from the Taxonomy names; without Imputed the
// appointment flag is null.
var OptionalColumns = []string{"TaxonomyId", "Imputed"}

// Validator checks that the flat table carries the required columns.
type Validator struct {
	required []string
}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{required: RequiredColumns}
}

// Validate returns a *MissingColumnError naming every absent required column.
func (v *Validator) Validate(f *table.Frame) error {
	if f == nil {
		return ErrNilFrame
	}

	var missing []string

	for _, c := range v.required {
		if !f.Has(c) {
			missing = append(missing, c)
		}
	}

	if len(missing) > 0 {
		return &MissingColumnError{Columns: missing}
	}

	return nil
}
