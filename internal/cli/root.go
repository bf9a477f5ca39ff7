package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Config     string // path to the connections file
	Connection string // connection name within Config
	Driver     string // driver for DSN, bypassing Config
	DSN        string

	log *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the qframe CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "qframe",
		Short: "qframe - DataFrame views over SQL tables",
		Long:  "Inspect tables and preview lazily built SELECT queries against SQLite, PostgreSQL, MariaDB and MSSQL.",
		// main reports the error once with its exit code.
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.log = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "path to the connections file")
	cmd.PersistentFlags().StringVar(&opts.Connection, "connection", "", "connection name from the config file")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "sqlite", "driver for --dsn (sqlite|postgres|mariadb|mssql)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "data source name, overrides --config")

	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewColumnsCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewHeadCommand(opts))
	cmd.AddCommand(NewShapeCommand(opts))
	cmd.AddCommand(NewMergeCommand(opts))

	return cmd
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// logger returns the logger set up by the root command, or one that writes
// nothing when a subcommand runs on its own.
func (o *RootOptions) logger() *slog.Logger {
	if o.log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.log
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	format := o.Format
	if format == "" {
		format = "text"
	}
	return &OutputFormatter{Format: format, Writer: cmd.OutOrStdout()}
}
