package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aarcnorm/internal/formatter"
	"aarcnorm/internal/models"
	"aarcnorm/internal/normalizer"
)

type inspectOptions struct {
	src    source
	tables []string
	limit  int
}

func newInspectCmd(a *app) *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show table counts, previews and integrity violations of a saved collection",
		Long: `Inspect loads a normalized collection, prints the row count of every
table, previews the requested tables and re-runs the key and reference checks.
It exits with code 2 when violations are found.

Examples:
  aarcnorm inspect --folder data/normalized
  aarcnorm inspect --sqlite data/aarc.db --table appointments --limit 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				opts.limit = a.cfg.Logging.PreviewRows
			}

			for _, name := range opts.tables {
				if _, ok := models.Spec(name); !ok {
					return withCode(exitUsage, fmt.Errorf("%w: %s (known: %v)", models.ErrUnknownTable, name, models.Names()))
				}
			}

			c, err := a.load(cmd.Context(), opts.src)
			if err != nil {
				return err
			}

			return runInspect(a, c, opts)
		},
	}

	opts.src.bind(cmd)
	cmd.Flags().StringSliceVar(&opts.tables, "table", nil, "Tables to preview")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Preview rows per table, 0 for all (default logging.preview_rows)")

	return cmd
}

func runInspect(a *app, c *models.Collection, opts inspectOptions) error {
	fmt.Fprint(a.out, formatter.RenderCounts(c))

	for _, name := range opts.tables {
		t, _ := c.Table(name)
		fmt.Fprintln(a.out)
		fmt.Fprint(a.out, formatter.RenderTable(t, opts.limit))
	}

	violations := normalizer.Check(c)
	if len(violations) == 0 {
		a.log.Info("Integrity check passed")
		return nil
	}

	for _, v := range violations {
		a.log.Warn("Integrity violation", "violation", v.String())
	}

	return withCode(exitValidation, &normalizer.IntegrityViolation{Violations: violations})
}
