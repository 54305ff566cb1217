package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"jprofile/adapters/excel"
	"jprofile/adapters/report"
	"jprofile/app"
	"jprofile/domain/dataset"
	"jprofile/domain/profiling"
	"jprofile/internal/config"
	"jprofile/internal/errors"
	"jprofile/internal/log"
	"jprofile/internal/version"
	"jprofile/ui"
)

// cli carries state shared by every subcommand
type cli struct {
	cfg    *config.Config
	logCfg *log.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

// loadFlags are the dataset loading flags shared by profile and classify
type loadFlags struct {
	sheet     string
	delimiter string
	columns   []string
}

func (f *loadFlags) register(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&f.sheet, "sheet", cfg.Loader.Sheet, "worksheet to read from XLSX files")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", string(cfg.Loader.Delimiter), `CSV field delimiter (use \t for tab)`)
	cmd.Flags().StringSliceVar(&f.columns, "columns", nil, "only profile these columns, in this order")
}

func newRootCmd(cfg *config.Config, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{
		cfg:    cfg,
		logCfg: log.NewConfig(cfg.Log.Level, cfg.Log.Format),
		stdout: stdout,
		stderr: stderr,
	}

	rootCmd := &cobra.Command{
		Use:   "jprofile",
		Short: "Profile the columns of tabular data files",
		Long: `jprofile classifies every column of a CSV, TSV or XLSX file as numeric,
boolean, text or temporal and reports the descriptive statistics of its category.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := c.logCfg.NewLogger(c.stderr)
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	c.logCfg.RegisterFlags(rootCmd.PersistentFlags())
	if err := c.logCfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(stderr, "register completions: %v\n", err)
	}

	rootCmd.AddCommand(
		c.newProfileCmd(),
		c.newClassifyCmd(),
		c.newServeCmd(),
		c.newVersionCmd(),
	)

	return rootCmd
}

func (c *cli) newProfileCmd() *cobra.Command {
	var (
		load    loadFlags
		format  string
		output  string
		top     int
		workers int
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "profile <file>",
		Short: "Compute column profiles for a data file",
		Long: `Compute the profile of every column of a CSV, TSV or XLSX file.

Example: jprofile profile people.csv --format markdown --top 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			if f.Binary() && (output == "" || output == "-") {
				return errors.InvalidInput(fmt.Sprintf("%s output requires --output", f))
			}
			if top < 1 {
				return errors.InvalidInput("--top must be at least 1")
			}

			ds, err := c.loadDataset(cmd.Context(), args[0], load)
			if err != nil {
				return err
			}

			service := app.NewProfileService(profiling.Config{TopFrequencyLimit: top}, workers, c.logger)
			set, err := service.ProfileDataset(cmd.Context(), ds)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := report.Write(&buf, set, f); err != nil {
				return err
			}
			if err := c.writeOutput(output, buf.Bytes()); err != nil {
				return err
			}

			if strict && len(set.Errors) > 0 {
				return errors.New(errors.CodeValidationError,
					fmt.Sprintf("%d of %d columns could not be profiled", len(set.Errors), len(set.Columns)))
			}
			return nil
		},
	}

	load.register(cmd, c.cfg)
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatText),
		fmt.Sprintf("output format, one of: %s", strings.Join(report.Formats(), ", ")))
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().IntVar(&top, "top", c.cfg.Profiling.TopFrequencyLimit, "number of most frequent text values to report")
	cmd.Flags().IntVar(&workers, "workers", c.cfg.Profiling.Workers, "columns profiled concurrently")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any column cannot be profiled")

	err := cmd.RegisterFlagCompletionFunc("format",
		cobra.FixedCompletions(report.Formats(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		fmt.Fprintf(c.stderr, "register completions: %v\n", err)
	}

	return cmd
}

func (c *cli) newClassifyCmd() *cobra.Command {
	var load loadFlags

	cmd := &cobra.Command{
		Use:   "classify <file>",
		Short: "Show the storage kind and category of every column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := c.loadDataset(cmd.Context(), args[0], load)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COLUMN\tKIND\tCATEGORY")
			for _, col := range ds.Columns {
				category := "-"
				cat, err := profiling.Classify(col)
				if err != nil {
					c.logger.Warn("column not classified", "column", col.Name, "error", err)
				} else {
					category = cat.String()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", col.Name, col.Kind, category)
			}
			return tw.Flush()
		},
	}

	load.register(cmd, c.cfg)

	return cmd
}

func (c *cli) newServeCmd() *cobra.Command {
	var (
		addr        string
		maxUploadMB int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the profiling HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			readerCfg, err := c.readerConfig(loadFlags{sheet: c.cfg.Loader.Sheet})
			if err != nil {
				return err
			}

			service := app.NewProfileService(c.cfg.Computer(), c.cfg.Profiling.Workers, c.logger)
			webApp, err := ui.NewApp(ui.Config{
				Addr:        addr,
				MaxUploadMB: maxUploadMB,
				Reader:      readerCfg,
			}, service, c.logger)
			if err != nil {
				return err
			}

			return webApp.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.cfg.Server.Addr, "listen address")
	cmd.Flags().IntVar(&maxUploadMB, "max-upload-mb", c.cfg.Server.MaxUploadMB, "largest accepted upload in MB")

	return cmd
}

func (c *cli) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(c.stdout, version.String())
			return err
		},
	}
}

// readerConfig merges flag values over the environment configuration
func (c *cli) readerConfig(load loadFlags) (excel.ReaderConfig, error) {
	rc := excel.DefaultReaderConfig()
	rc.Sheet = load.sheet
	rc.Delimiter = c.cfg.Loader.Delimiter
	switch runes := []rune(load.delimiter); {
	case load.delimiter == "":
	case load.delimiter == `\t`:
		rc.Delimiter = '\t'
	case len(runes) == 1:
		rc.Delimiter = runes[0]
	default:
		return rc, errors.InvalidInput(fmt.Sprintf("--delimiter must be a single character, got %q", load.delimiter))
	}
	rc.CoercionConfig.MissingValues = c.cfg.Loader.MissingValues
	return rc, nil
}

func (c *cli) loadDataset(ctx context.Context, path string, load loadFlags) (*dataset.Dataset, error) {
	readerCfg, err := c.readerConfig(load)
	if err != nil {
		return nil, err
	}

	reader, err := excel.NewDataReader(path, readerCfg, c.logger)
	if err != nil {
		return nil, err
	}

	ds, err := reader.ReadDataset(ctx)
	if err != nil {
		return nil, err
	}

	if len(load.columns) > 0 {
		ds, err = ds.Select(load.columns...)
		if err != nil {
			return nil, errors.InvalidInput(err.Error())
		}
	}
	return ds, nil
}

func (c *cli) writeOutput(path string, out []byte) error {
	if path == "" || path == "-" {
		_, err := c.stdout.Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	c.logger.Info("report written", "path", path, "bytes", len(out))
	return nil
}
