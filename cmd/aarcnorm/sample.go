package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"aarcnorm/internal/reader"
	"aarcnorm/internal/sampler"
)

type sampleOptions struct {
	source      string
	output      string
	departments int
	seed        uint64
	hidden      []string
	mask        string
}

func newSampleCmd(a *app) *cobra.Command {
	var opts sampleOptions

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw a reproducible department sample from the full raw CSV",
		Long: `Sample keeps every row of a random subset of departments, masks the
identifying columns and writes the result as a new raw CSV.

Examples:
  aarcnorm sample --source data/aarc_full.csv --output data/aarc_sample.csv
  aarcnorm sample --departments 10 --seed 42 --hide PersonName,Gender`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Sample
			flags := cmd.Flags()

			if opts.source == "" {
				opts.source = cfg.Source
			}

			if opts.output == "" {
				opts.output = cfg.Output
			}

			if !flags.Changed("departments") {
				opts.departments = cfg.Departments
			}

			if !flags.Changed("seed") {
				opts.seed = cfg.Seed
			}

			if !flags.Changed("hide") {
				opts.hidden = cfg.HiddenColumns
			}

			if !flags.Changed("mask") {
				opts.mask = cfg.Mask
			}

			return runSample(a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.source, "source", "", "Full raw CSV path (default sample.source)")
	cmd.Flags().StringVar(&opts.output, "output", "", "Sampled CSV path (default sample.output)")
	cmd.Flags().IntVar(&opts.departments, "departments", 0, "Number of departments to keep (default sample.departments)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "Random seed (default sample.seed)")
	cmd.Flags().StringSliceVar(&opts.hidden, "hide", nil, "Columns to mask (default sample.hidden_columns)")
	cmd.Flags().StringVar(&opts.mask, "mask", "", "Replacement for masked cells (default sample.mask)")

	return cmd
}

// samePath reports whether a and b name the same file, either lexically
// after resolving to absolute paths or as the same existing file.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)

	if errA == nil && errB == nil && absA == absB {
		return true
	}

	infoA, err := os.Stat(a)
	if err != nil {
		return false
	}

	infoB, err := os.Stat(b)
	if err != nil {
		return false
	}

	return os.SameFile(infoA, infoB)
}

func runSample(a *app, opts sampleOptions) error {
	if samePath(opts.source, opts.output) {
		return withCode(exitUsage, fmt.Errorf("sample source and output are both %s", opts.source))
	}

	a.log.Info("Loading full AARC data", "path", opts.source)

	full, err := a.newReader().ReadFile(opts.source)
	if err != nil {
		return withCode(exitUsage, err)
	}

	res, err := sampler.Sample(full, sampler.Options{
		Departments:   opts.departments,
		Seed:          opts.seed,
		HiddenColumns: opts.hidden,
		Mask:          opts.mask,
	})
	if err != nil {
		return withCode(exitUsage, err)
	}

	a.log.Info("Sampled departments", "count", len(res.Departments), "ids", res.Departments)
	a.log.Info("Sampled AARC data",
		"rows", res.Frame.Len(),
		"original_rows", full.Len(),
		"faculty", sampler.CountDistinct(res.Frame, "PersonId"),
		"hidden", opts.hidden)

	if err := reader.WriteFile(opts.output, res.Frame); err != nil {
		return withCode(exitStore, err)
	}

	fmt.Fprintf(a.out, "Wrote %d rows from %d departments to %s\n", res.Frame.Len(), len(res.Departments), opts.output)

	return nil
}
