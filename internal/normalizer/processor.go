// Package normalizer splits the flat AARC table into normalized entity and
// relationship tables.
package normalizer

import (
	"fmt"

	"aarcnorm/internal/logger"
	"aarcnorm/internal/models"
	"aarcnorm/internal/table"
)

// Options configure a Processor.
type Options struct {
	// IDBase is the first synthesized id.
	IDBase int64
	// StrictIntegrity fails with *IntegrityViolation when a key or
	// reference check does not hold.
	StrictIntegrity bool
	// CheckConsistency fails with *ConsistencyViolation when rows of one
	// key disagree on a dependent attribute.
	CheckConsistency bool
	// Verbose logs the row count of every table.
	Verbose bool
}

// Processor validates a flat table and normalizes it.
type Processor struct {
	validator   *Validator
	transformer *Transformer
	strict      bool
	verbose     bool
	log         *logger.Logger
}

// NewProcessor creates a new processor instance.
func NewProcessor(opts Options, log *logger.Logger) *Processor {
	if log == nil {
		log = logger.Discard()
	}

	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(opts.IDBase, opts.CheckConsistency),
		strict:      opts.StrictIntegrity,
		verbose:     opts.Verbose,
		log:         log.With("component", "normalizer"),
	}
}

// Process transforms the flat table into a normalized collection.
func (p *Processor) Process(f *table.Frame) (*models.Collection, error) {
	// 1. Validate the input columns
	if err := p.validator.Validate(f); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// 2. Split into tables
	c, report, err := p.transformer.Transform(f)
	if err != nil {
		return nil, fmt.Errorf("transformation failed: %w", err)
	}

	p.logReport(report)

	// 3. Verify keys and references
	if p.strict {
		if violations := Check(c); len(violations) > 0 {
			return nil, fmt.Errorf("integrity check failed: %w", &IntegrityViolation{Violations: violations})
		}
	}

	return c, nil
}

var countLabels = []struct {
	table string
	label string
}{
	{models.TablePersons, "Faculty count"},
	{models.TableDepartments, "Departments count"},
	{models.TableInstitutions, "Institutions count"},
	{models.TableTaxonomies, "Taxonomy count"},
	{models.TableUmbrellas, "Umbrella count"},
	{models.TableAreas, "Area count"},
	{models.TableFields, "Field count"},
	{models.TableDepartmentTaxonomy, "Department x Taxonomy count"},
	{models.TableAppointments, "Appointments count"},
}

func (p *Processor) logReport(r Report) {
	for _, cl := range countLabels {
		if skipped := r.Skipped[cl.table]; skipped > 0 {
			p.log.Warn("rows without key skipped", "table", cl.table, "rows", skipped)
		}

		if p.verbose {
			p.log.Info(cl.label, "table", cl.table, "rows", r.Counts[cl.table])
		}
	}
}
