package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/zoobzio/qframe"
)

// TablesOptions holds flags for the tables command.
type TablesOptions struct {
	*RootOptions
	System bool
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TablesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "tables",
		Short:         "List tables",
		Long:          "List the user tables of the connection, or its system tables with --system.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.System, "system", false, "list system tables instead of user tables")

	return cmd
}

func runTables(cmd *cobra.Command, opts *TablesOptions) error {
	return withSchema(cmd.Context(), opts.RootOptions, func(schema *qframe.Schema) error {
		list := schema.Tables
		if opts.System {
			list = schema.SystemTables
		}
		names, err := list(cmd.Context())
		if err != nil {
			return WrapExitError(ExitFailure, "failed to list tables", err)
		}
		return opts.formatter(cmd).Success(nameList(names))
	})
}

// nameList prints one name per line.
type nameList []string

func (l nameList) String() string {
	return strings.Join(l, "\n")
}

// NewColumnsCommand creates the columns command.
func NewColumnsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "columns <table>",
		Short:         "Describe the columns of a table",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSchema(cmd.Context(), opts, func(schema *qframe.Schema) error {
				cols, err := schema.Columns(cmd.Context(), args[0])
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to describe table", err)
				}
				return opts.formatter(cmd).Success(columnTable(cols))
			})
		},
	}
}

func columnTable(cols []qframe.Column) qframe.Table {
	t := qframe.Table{Columns: []string{"name", "type", "nullable", "precision", "scale"}}
	for _, c := range cols {
		t.Rows = append(t.Rows, qframe.Row{c.Name, c.TypeCode, c.Nullable, c.Precision, c.Scale})
	}
	return t
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "describe",
		Short:         "List every user table with its columns",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSchema(cmd.Context(), opts, func(schema *qframe.Schema) error {
				tables, err := schema.Describe(cmd.Context())
				if err != nil {
					return WrapExitError(ExitFailure, "failed to describe schema", err)
				}
				if opts.Format == "json" {
					return opts.formatter(cmd).Success(tables)
				}
				t := qframe.Table{Columns: []string{"table", "columns"}}
				for _, d := range tables {
					t.Rows = append(t.Rows, qframe.Row{d.Name, strings.Join(qframe.ColumnNames(d.Columns), ", ")})
				}
				return opts.formatter(cmd).Success(t)
			})
		},
	}
}
