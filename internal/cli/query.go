package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zoobzio/qframe"
)

// FrameOptions shapes a table frame before it is rendered or executed.
type FrameOptions struct {
	Select   []string
	Drop     []string
	Rename   map[string]string
	Distinct bool
	Limit    int
}

func (o *FrameOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.Select, "select", nil, "columns to keep")
	cmd.Flags().StringSliceVar(&o.Drop, "drop", nil, "columns to remove")
	cmd.Flags().StringToStringVar(&o.Rename, "rename", nil, "column relabels, old=new")
	cmd.Flags().BoolVar(&o.Distinct, "distinct", false, "drop duplicate rows")
}

func (o *FrameOptions) bindLimit(cmd *cobra.Command) {
	cmd.Flags().IntVar(&o.Limit, "limit", 0, "keep only the first n rows (0 keeps all)")
}

func (o *FrameOptions) apply(f qframe.Frame) qframe.Frame {
	if len(o.Select) > 0 {
		f = f.Select(o.Select...)
	}
	if len(o.Drop) > 0 {
		f = f.Drop(o.Drop...)
	}
	if len(o.Rename) > 0 {
		f = f.Rename(o.Rename)
	}
	if o.Distinct {
		f = f.DropDuplicates()
	}
	if o.Limit > 0 {
		f = f.ILoc(qframe.To(o.Limit))
	}
	return f
}

// withFrame opens the named table, applies frame options and hands the
// result to fn.
func withFrame(cmd *cobra.Command, opts *RootOptions, table string, frame *FrameOptions, fn func(qframe.Frame) error) error {
	return withSchema(cmd.Context(), opts, func(schema *qframe.Schema) error {
		f, err := schema.Table(cmd.Context(), table)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open table", err)
		}
		f = frame.apply(f)
		if err := f.Err(); err != nil {
			return WrapExitError(ExitCommandError, "invalid frame", err)
		}
		return fn(f)
	})
}

// statement prints a rendered query.
type statement struct {
	SQL string `json:"sql"`
}

func (s statement) String() string {
	return s.SQL
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(opts *RootOptions) *cobra.Command {
	frame := &FrameOptions{}

	cmd := &cobra.Command{
		Use:           "sql <table>",
		Short:         "Print the SELECT statement for a table frame",
		Long:          "Build a frame over a table and print its SQL without executing it.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFrame(cmd, opts, args[0], frame, func(f qframe.Frame) error {
				text, err := f.SQL()
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to render query", err)
				}
				return opts.formatter(cmd).Success(statement{SQL: text})
			})
		},
	}

	frame.bind(cmd)
	frame.bindLimit(cmd)

	return cmd
}

// NewHeadCommand creates the head command.
func NewHeadCommand(opts *RootOptions) *cobra.Command {
	frame := &FrameOptions{}
	var n int

	cmd := &cobra.Command{
		Use:           "head <table>",
		Short:         "Print the first rows of a table frame",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFrame(cmd, opts, args[0], frame, func(f qframe.Frame) error {
				t, err := f.Head(cmd.Context(), n)
				if err != nil {
					return WrapExitError(ExitFailure, "failed to fetch rows", err)
				}
				return opts.formatter(cmd).Success(t)
			})
		},
	}

	frame.bind(cmd)
	cmd.Flags().IntVarP(&n, "rows", "n", 5, "number of rows")

	return cmd
}

// shape is a row and column count.
type shape struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

func (s shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Rows, s.Columns)
}

// NewShapeCommand creates the shape command.
func NewShapeCommand(opts *RootOptions) *cobra.Command {
	frame := &FrameOptions{}

	cmd := &cobra.Command{
		Use:           "shape <table>",
		Short:         "Print the row and column count of a table frame",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFrame(cmd, opts, args[0], frame, func(f qframe.Frame) error {
				rows, cols, err := f.Shape(cmd.Context())
				if err != nil {
					return WrapExitError(ExitFailure, "failed to count rows", err)
				}
				return opts.formatter(cmd).Success(shape{Rows: rows, Columns: cols})
			})
		},
	}

	frame.bind(cmd)
	frame.bindLimit(cmd)

	return cmd
}

// MergeOptions holds flags for the merge command.
type MergeOptions struct {
	How  string
	On   string
	Rows int
	SQL  bool
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(opts *RootOptions) *cobra.Command {
	merge := &MergeOptions{}

	cmd := &cobra.Command{
		Use:           "merge <left> <right>",
		Short:         "Join two tables and print the first rows",
		Long:          "Merge two tables on their shared column, or on --on, and print the first rows or, with --sql, the statement.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, opts, merge, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&merge.How, "how", "inner", "join kind (inner|left|right|outer)")
	cmd.Flags().StringVar(&merge.On, "on", "", "join column shared by both tables")
	cmd.Flags().IntVarP(&merge.Rows, "rows", "n", 5, "number of rows")
	cmd.Flags().BoolVar(&merge.SQL, "sql", false, "print the statement instead of executing it")

	return cmd
}

func runMerge(cmd *cobra.Command, opts *RootOptions, merge *MergeOptions, left, right string) error {
	ctx := cmd.Context()
	return withSchema(ctx, opts, func(schema *qframe.Schema) error {
		lf, err := schema.Table(ctx, left)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open table", err)
		}
		rf, err := schema.Table(ctx, right)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open table", err)
		}

		merged := lf.Merge(rf, merge.How, merge.On)
		if err := merged.Err(); err != nil {
			return WrapExitError(ExitCommandError, "invalid merge", err)
		}

		if merge.SQL {
			text, err := merged.SQL()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to render query", err)
			}
			return opts.formatter(cmd).Success(statement{SQL: text})
		}

		t, err := merged.Head(ctx, merge.Rows)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to fetch rows", err)
		}
		return opts.formatter(cmd).Success(t)
	})
}
