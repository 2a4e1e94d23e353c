package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"aarcnorm/internal/formatter"
	"aarcnorm/internal/models"
	"aarcnorm/internal/normalizer"
	"aarcnorm/internal/store/folder"
)

type normalizeOptions struct {
	input       string
	folder      string
	sqlite      string
	idBase      int
	strict      bool
	consistency bool
	quiet       bool
}

func newNormalizeCmd(a *app) *cobra.Command {
	var opts normalizeOptions

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Split the flat CSV into normalized tables and persist them",
		Long: `Normalize reads the flat AARC CSV, derives the entity, label and
relationship tables, and writes them to a CSV folder, a SQLite database, or both.

Examples:
  aarcnorm normalize --input data/aarc_sample.csv --folder data/normalized
  aarcnorm normalize --sqlite data/aarc.db --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyNormalizeDefaults(cmd, a, &opts)
			return runNormalize(cmd.Context(), a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "Raw CSV path (default input.path)")
	cmd.Flags().StringVar(&opts.folder, "folder", "", "Output folder (default output.folder)")
	cmd.Flags().StringVar(&opts.sqlite, "sqlite", "", "Output SQLite database (default output.sqlite_path)")
	cmd.Flags().IntVar(&opts.idBase, "id-base", 0, "First synthesized id, 0 or 1 (default normalization.id_base)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when key or reference checks find violations")
	cmd.Flags().BoolVar(&opts.consistency, "consistency", false, "Fail when an entity has conflicting attribute values")
	cmd.Flags().BoolVar(&opts.quiet, "quiet", false, "Do not log per-table counts")

	return cmd
}

// applyNormalizeDefaults fills unset flags from the loaded configuration.
func applyNormalizeDefaults(cmd *cobra.Command, a *app, opts *normalizeOptions) {
	cfg := a.cfg
	flags := cmd.Flags()

	if opts.input == "" {
		opts.input = cfg.Input.Path
	}

	// Naming one target on the command line writes only that target.
	if !flags.Changed("folder") && !flags.Changed("sqlite") {
		opts.folder = cfg.Output.Folder
		opts.sqlite = cfg.Output.SQLitePath
	}

	if !flags.Changed("id-base") {
		opts.idBase = cfg.Normalization.IDBase
	}

	if !flags.Changed("strict") {
		opts.strict = cfg.Normalization.StrictIntegrity
	}

	if !flags.Changed("consistency") {
		opts.consistency = cfg.Normalization.CheckConsistency
	}

	if !flags.Changed("quiet") {
		opts.quiet = !cfg.Logging.Verbose
	}
}

func runNormalize(ctx context.Context, a *app, opts normalizeOptions) error {
	if opts.idBase != 0 && opts.idBase != 1 {
		return withCode(exitUsage, fmt.Errorf("invalid --id-base %d: must be 0 or 1", opts.idBase))
	}

	a.log.Info("Loading raw AARC data", "path", opts.input)

	frame, err := a.newReader().ReadFile(opts.input)
	if err != nil {
		return withCode(exitUsage, err)
	}

	a.log.Info("Normalizing", "rows", frame.Len(), "columns", len(frame.Columns()))

	p := normalizer.NewProcessor(normalizer.Options{
		IDBase:           int64(opts.idBase),
		StrictIntegrity:  opts.strict,
		CheckConsistency: opts.consistency,
		Verbose:          !opts.quiet,
	}, a.log)

	c, err := p.Process(frame)
	if err != nil {
		return withCode(normalizeCode(err), err)
	}

	if err := persist(ctx, a, c, opts); err != nil {
		return err
	}

	fmt.Fprint(a.out, formatter.RenderCounts(c))

	return nil
}

func persist(ctx context.Context, a *app, c *models.Collection, opts normalizeOptions) error {
	if opts.folder == "" && opts.sqlite == "" {
		return withCode(exitUsage, fmt.Errorf("no output target: pass --folder or --sqlite"))
	}

	if opts.folder != "" {
		validated := len(normalizer.Check(c)) == 0

		m, err := folder.Write(opts.folder, c, validated)
		if err != nil {
			return withCode(exitStore, err)
		}

		a.log.Info("Wrote normalized folder", "folder", opts.folder, "tables", len(m.Entries), "validated", validated)
	}

	if opts.sqlite != "" {
		s, err := a.openStore(ctx, opts.sqlite)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Save(ctx, c); err != nil {
			return withCode(exitStore, err)
		}

		a.log.Info("Saved normalized tables", "sqlite", opts.sqlite)
	}

	return nil
}
