package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"aarcnorm/internal/analysis"
	"aarcnorm/internal/formatter"
	"aarcnorm/internal/models"
)

// Report sections.
const (
	sectionHeadcount  = "headcount"
	sectionRanks      = "ranks"
	sectionTaxonomies = "taxonomies"
	sectionDetails    = "appointments"
)

type reportOptions struct {
	src      source
	sections []string
	filter   struct {
		person, department, year, institution int64
	}
	limit int
}

func newReportCmd(a *app) *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Re-join the normalized tables into summary reports",
		Long: `Report loads a normalized collection and prints joined views:
headcount per department and year, rank distribution per umbrella, the
department taxonomy hierarchy, and filtered appointment details. Details are
joined in SQL when reading from --sqlite.

Examples:
  aarcnorm report --folder data/normalized
  aarcnorm report --sqlite data/aarc.db --section appointments --department 10 --year 2011`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range opts.sections {
				switch s {
				case sectionHeadcount, sectionRanks, sectionTaxonomies, sectionDetails:
				default:
					return withCode(exitUsage, fmt.Errorf("unknown section %q", s))
				}
			}

			if !cmd.Flags().Changed("limit") {
				opts.limit = a.cfg.Logging.PreviewRows
			}

			return runReport(cmd, a, opts)
		},
	}

	opts.src.bind(cmd)
	cmd.Flags().StringSliceVar(&opts.sections, "section",
		[]string{sectionHeadcount, sectionRanks, sectionTaxonomies}, "Sections to print: headcount, ranks, taxonomies, appointments")
	cmd.Flags().Int64Var(&opts.filter.person, "person", 0, "Only appointments of this PersonId")
	cmd.Flags().Int64Var(&opts.filter.department, "department", 0, "Only appointments in this DepartmentId")
	cmd.Flags().Int64Var(&opts.filter.year, "year", 0, "Only appointments in this Year")
	cmd.Flags().Int64Var(&opts.filter.institution, "institution", 0, "Only appointments at this InstitutionId")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Rows per section, 0 for all (default logging.preview_rows)")

	return cmd
}

func filterFrom(cmd *cobra.Command, opts reportOptions) models.AppointmentFilter {
	pick := func(flag string, v int64) sql.Null[int64] {
		if cmd.Flags().Changed(flag) {
			return models.Valid(v)
		}

		return sql.Null[int64]{}
	}

	return models.AppointmentFilter{
		PersonID:      pick("person", opts.filter.person),
		DepartmentID:  pick("department", opts.filter.department),
		Year:          pick("year", opts.filter.year),
		InstitutionID: pick("institution", opts.filter.institution),
	}
}

func runReport(cmd *cobra.Command, a *app, opts reportOptions) error {
	ctx := cmd.Context()

	c, err := a.load(ctx, opts.src)
	if err != nil {
		return err
	}

	for i, s := range opts.sections {
		if i > 0 {
			fmt.Fprintln(a.out)
		}

		var header []string

		var rows [][]string

		switch s {
		case sectionHeadcount:
			header, rows = headcountRows(analysis.HeadcountByDepartmentYear(c))
		case sectionRanks:
			header, rows = rankRows(analysis.RankDistributionByUmbrella(c))
		case sectionTaxonomies:
			header, rows = taxonomyRows(analysis.DepartmentTaxonomies(c))
		case sectionDetails:
			details, err := appointmentDetails(ctx, a, c, opts.src, filterFrom(cmd, opts))
			if err != nil {
				return err
			}

			header, rows = detailRows(details)
		}

		printSection(a, s, header, rows, opts.limit)
	}

	return nil
}

func appointmentDetails(ctx context.Context, a *app, c *models.Collection, src source, f models.AppointmentFilter) ([]models.AppointmentDetail, error) {
	if src.sqlite == "" {
		return analysis.AppointmentDetails(c, f), nil
	}

	s, err := a.openStore(ctx, src.sqlite)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	details, err := s.AppointmentDetails(ctx, f)
	if err != nil {
		return nil, withCode(exitStore, err)
	}

	return details, nil
}

func printSection(a *app, name string, header []string, rows [][]string, limit int) {
	total := len(rows)
	if limit > 0 && total > limit {
		rows = rows[:limit]
	}

	fmt.Fprintf(a.out, "%s (%d rows)\n", name, total)

	for _, line := range formatter.AlignTable(header, rows) {
		fmt.Fprintln(a.out, line)
	}

	if hidden := total - len(rows); hidden > 0 {
		fmt.Fprintf(a.out, "... %d more rows\n", hidden)
	}
}

func cellOf[T any](v sql.Null[T]) string {
	if !v.Valid {
		return formatter.NullText
	}

	return formatter.FormatCell(v.V)
}

func headcountRows(hs []analysis.Headcount) ([]string, [][]string) {
	rows := make([][]string, len(hs))
	for i, h := range hs {
		rows[i] = []string{
			strconv.FormatInt(h.DepartmentID, 10), cellOf(h.DepartmentName), strconv.FormatInt(h.Year, 10),
			strconv.Itoa(h.Persons), strconv.Itoa(h.Appointments),
		}
	}

	return []string{"DepartmentId", "DepartmentName", "Year", "Persons", "Appointments"}, rows
}

func rankRows(rs []analysis.RankCount) ([]string, [][]string) {
	rows := make([][]string, len(rs))
	for i, r := range rs {
		rows[i] = []string{cellOf(r.Umbrella), cellOf(r.Rank), strconv.Itoa(r.Persons)}
	}

	return []string{"Umbrella", "Rank", "Persons"}, rows
}

func taxonomyRows(ts []analysis.DepartmentTaxonomy) ([]string, [][]string) {
	rows := make([][]string, len(ts))
	for i, t := range ts {
		rows[i] = []string{
			strconv.FormatInt(t.DepartmentID, 10), cellOf(t.DepartmentName),
			cellOf(t.Taxonomy), cellOf(t.Field), cellOf(t.Area), cellOf(t.Umbrella),
		}
	}

	return []string{"DepartmentId", "DepartmentName", "Taxonomy", "Field", "Area", "Umbrella"}, rows
}

func detailRows(ds []models.AppointmentDetail) ([]string, [][]string) {
	rows := make([][]string, len(ds))
	for i, d := range ds {
		rows[i] = []string{
			strconv.FormatInt(d.PersonID, 10), cellOf(d.PersonName),
			strconv.FormatInt(d.DepartmentID, 10), cellOf(d.DepartmentName),
			strconv.FormatInt(d.Year, 10), cellOf(d.InstitutionName),
			cellOf(d.Rank), cellOf(d.PrimaryAppointment),
		}
	}

	return []string{"PersonId", "PersonName", "DepartmentId", "DepartmentName", "Year", "Institution", "Rank", "Primary"}, rows
}
