package normalizer

import (
	"errors"
	"fmt"
	"strings"
)

// Normalization error sentinels. The typed errors below match them with errors.Is.
var (
	ErrMissingColumn = errors.New("missing required column")
	ErrIntegrity     = errors.New("integrity violation")
	ErrConsistency   = errors.New("consistency violation")
)

// MissingColumnError lists the required source columns absent from the input.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumn, strings.Join(e.Columns, ", "))
}

// Is reports whether target is ErrMissingColumn.
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// IntegrityViolation carries every key or reference violation found in strict mode.
type IntegrityViolation struct {
	Violations []Violation
}

func (e *IntegrityViolation) Error() string {
	if len(e.Violations) == 1 {
		return fmt.Sprintf("%s: %s", ErrIntegrity, e.Violations[0])
	}

	return fmt.Sprintf("%s: %d violations, first: %s", ErrIntegrity, len(e.Violations), e.Violations[0])
}

// Is reports whether target is ErrIntegrity.
func (e *IntegrityViolation) Is(target error) bool {
	return target == ErrIntegrity
}

// ConsistencyViolation reports a group whose rows disagree on an attribute
// that should depend on the group key alone.
type ConsistencyViolation struct {
	Table  string
	Key    any
	Column string
	Values []string
}

func (e *ConsistencyViolation) Error() string {
	return fmt.Sprintf("%s: %s key %v has conflicting %s values %q", ErrConsistency, e.Table, e.Key, e.Column, e.Values)
}

// Is reports whether target is ErrConsistency.
func (e *ConsistencyViolation) Is(target error) bool {
	return target == ErrConsistency
}
