package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"aarcnorm/internal/config"
	"aarcnorm/internal/logger"
	"aarcnorm/internal/models"
	"aarcnorm/internal/reader"
	"aarcnorm/internal/store/folder"
	"aarcnorm/internal/store/sqlite"
)

// defaultConfigPath is read when --config is not given and the file exists.
const defaultConfigPath = "configs/aarcnorm.yaml"

// app is the state shared by every command once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *logger.Logger
	out io.Writer
}

func (a *app) loadConfig() error {
	path := a.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}

	cfg := config.Default()

	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return withCode(exitUsage, err)
		}

		cfg = loaded
	}

	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	a.cfg = cfg
	a.log = logger.NewLoggerWithWriter(cfg.Logging.Level, os.Stderr)

	if path != "" {
		a.log.Debug("Loaded configuration", "path", path, "config", cfg.String())
	}

	return nil
}

// newReader builds a raw CSV reader from the input configuration.
func (a *app) newReader() *reader.Reader {
	r := reader.NewReader(a.cfg.Input.NullValues)
	r.NormalizeUnicode = a.cfg.Input.UnicodeNFC

	return r
}

func (a *app) openStore(ctx context.Context, path string) (*sqlite.Store, error) {
	s, err := sqlite.Open(ctx, sqlite.Config{Path: path, BusyTimeout: a.cfg.Output.BusyTimeout()}, a.log)
	if err != nil {
		return nil, withCode(exitStore, err)
	}

	return s, nil
}

// source selects where a saved collection is loaded from.
type source struct {
	folder string
	sqlite string
}

func (s *source) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.folder, "folder", "", "Read tables from an exported folder")
	cmd.Flags().StringVar(&s.sqlite, "sqlite", "", "Read tables from a SQLite database")
	cmd.MarkFlagsMutuallyExclusive("folder", "sqlite")
}

// load reads the collection from the chosen source, falling back to the
// configured folder and then the configured database.
func (a *app) load(ctx context.Context, src source) (*models.Collection, error) {
	switch {
	case src.sqlite != "":
		return a.loadSQLite(ctx, src.sqlite)
	case src.folder != "":
		return a.loadFolder(src.folder)
	case a.cfg.Output.Folder != "":
		return a.loadFolder(a.cfg.Output.Folder)
	default:
		return a.loadSQLite(ctx, a.cfg.Output.SQLitePath)
	}
}

func (a *app) loadFolder(dir string) (*models.Collection, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, withCode(exitUsage, fmt.Errorf("folder %s does not exist", dir))
	}

	c, err := folder.Read(dir)
	if err != nil {
		return nil, withCode(exitStore, err)
	}

	a.log.Debug("Loaded collection", "folder", dir)

	return c, nil
}

func (a *app) loadSQLite(ctx context.Context, path string) (*models.Collection, error) {
	s, err := a.openStore(ctx, path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	c, err := s.Load(ctx)
	if err != nil {
		return nil, withCode(exitStore, err)
	}

	a.log.Debug("Loaded collection", "sqlite", path)

	return c, nil
}

func newRootCmd() *cobra.Command {
	a := &app{out: os.Stdout}

	cmd := &cobra.Command{
		Use:           "aarcnorm",
		Short:         "Normalize AARC academic hiring data into relational tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			return a.loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to YAML config (default "+defaultConfigPath+" when present)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	cmd.AddCommand(newNormalizeCmd(a))
	cmd.AddCommand(newSampleCmd(a))
	cmd.AddCommand(newInspectCmd(a))
	cmd.AddCommand(newReportCmd(a))

	return cmd
}

// Execute runs the root command and exits with the error's code.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}
