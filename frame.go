package qframe

import (
	"context"
	"fmt"
	"strings"

	"github.com/zoobzio/qframe/internal/types"
)

// View is implemented by Frame and Series.
type View interface {
	Query() Query
	SQL() (string, error)
	Err() error
}

// Frame is a lazy, immutable multi-column view over a Query. Every method
// returns a new Frame; the receiver is never modified.
type Frame struct {
	schema *Schema
	query  Query
	err    error
}

func (f Frame) with(changes ...types.Change) Frame {
	if f.err != nil {
		return f
	}
	return Frame{schema: f.schema, query: f.query.WithChanges(changes...)}
}

func (f Frame) fail(err error) Frame {
	if f.err != nil {
		return f
	}
	return Frame{schema: f.schema, query: f.query, err: err}
}

// Err returns the first error recorded by a fluent call.
func (f Frame) Err() error {
	return f.err
}

// Query returns the underlying query.
func (f Frame) Query() Query {
	return f.query
}

// Schema returns the schema the frame was created from.
func (f Frame) Schema() *Schema {
	return f.schema
}

// SQL renders the frame's query.
func (f Frame) SQL() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.query.Render()
}

// String returns the rendered SQL, or the recorded error.
func (f Frame) String() string {
	text, err := f.SQL()
	if err != nil {
		return "error: " + err.Error()
	}
	return text
}

// Attributes returns the frame's columns and their expressions.
func (f Frame) Attributes() Attributes {
	if attrs, ok := f.query.Attrs().Attributes(); ok {
		return attrs
	}
	return f.query.Source().Attributes()
}

// Columns returns the column labels in order.
func (f Frame) Columns() []string {
	return f.Attributes().Keys()
}

// Select keeps the named columns. The result follows the frame's column
// order, not the order of names.
func (f Frame) Select(names ...string) Frame {
	if f.err != nil {
		return f
	}
	attrs := f.Attributes()
	var unknown []string
	for _, name := range names {
		if !attrs.Contains(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return f.fail(unknownColumns(unknown))
	}
	return f.with(types.SetAttrs(types.Mapping(attrs.Restrict(names))))
}

// Col returns the named column as a Series.
func (f Frame) Col(name string) Series {
	if f.err != nil {
		return Series{schema: f.schema, query: f.query, err: f.err}
	}
	e, ok := f.Attributes().Get(name)
	if !ok {
		return Series{schema: f.schema, query: f.query, err: unknownColumns([]string{name})}
	}
	return newSeries(f.schema, f.query, name, e)
}

// Filter keeps the rows where cond holds. A previous filter is replaced,
// not combined; use And to combine.
func (f Frame) Filter(cond Series) Frame {
	if f.err != nil {
		return f
	}
	if cond.err != nil {
		return f.fail(cond.err)
	}
	e := cond.expr
	return f.with(types.SetWhere(&e))
}

// And adds cond to the existing filter with AND.
func (f Frame) And(cond Series) Frame {
	if f.err != nil {
		return f
	}
	if cond.err != nil {
		return f.fail(cond.err)
	}
	where, ok := f.query.Where()
	if !ok {
		return f.Filter(cond)
	}
	e, err := types.Apply(types.OpAnd, where, cond.expr)
	if err != nil {
		return f.fail(err)
	}
	return f.with(types.SetWhere(&e))
}

// Get subscripts the frame the way a DataFrame does: a []string selects
// columns, a string returns a Series and a Series filters rows.
func (f Frame) Get(key any) View {
	switch k := key.(type) {
	case []string:
		return f.Select(k...)
	case string:
		return f.Col(k)
	case Series:
		return f.Filter(k)
	default:
		return f.fail(&UnsupportedKeyError{Op: "get", Key: key})
	}
}

// Rename relabels columns found in mapper. Order is preserved and unknown
// keys are ignored. A mapping that leaves two columns with one label is an
// overlap conflict.
func (f Frame) Rename(mapper map[string]string) Frame {
	if f.err != nil {
		return f
	}
	attrs := f.Attributes()
	seen := make(map[string]bool, attrs.Len())
	var clashes []string
	for _, alias := range attrs.Keys() {
		if renamed, ok := mapper[alias]; ok {
			alias = renamed
		}
		if seen[alias] {
			clashes = append(clashes, alias)
		}
		seen[alias] = true
	}
	if len(clashes) > 0 {
		return f.fail(fmt.Errorf("rename: %w", &OverlapConflictError{Columns: clashes}))
	}
	return f.with(types.SetAttrs(types.Mapping(attrs.Renamed(mapper))))
}

// Drop removes the named columns.
func (f Frame) Drop(names ...string) Frame {
	if f.err != nil {
		return f
	}
	return f.with(types.SetAttrs(types.Mapping(f.Attributes().Without(names...))))
}

// DropDuplicates selects distinct rows.
func (f Frame) DropDuplicates() Frame {
	return f.with(types.SetDistinct(true))
}

// ILoc restricts the frame to a row window. Only a Slice is accepted.
func (f Frame) ILoc(key any) Frame {
	if f.err != nil {
		return f
	}
	s, ok := key.(Slice)
	if !ok {
		return f.fail(&UnsupportedKeyError{Op: "iloc", Key: key})
	}
	return f.with(types.SetWindow(s.Start, s.Stop))
}

// Merge joins right onto f with a database-style join. how is one of
// inner, left, right or outer; empty means inner. When on is empty the
// frames must share exactly one column, which becomes the key. Any other
// shared column is an overlap conflict.
func (f Frame) Merge(right Frame, how, on string) Frame {
	if f.err != nil {
		return f
	}
	if right.err != nil {
		return f.fail(right.err)
	}
	if f.schema != right.schema {
		return f.fail(&IncompatibleOperandError{Op: "merge", Fields: []Field{FieldSource}})
	}
	kind, err := types.ParseJoinKind(how)
	if err != nil {
		return f.fail(err)
	}

	lattrs := f.Attributes()
	rattrs := right.Attributes()
	common := lattrs.Intersect(rattrs)

	if on == "" {
		if len(common) != 1 {
			return f.fail(&OverlapConflictError{Columns: common})
		}
		on = common[0]
	} else {
		found := false
		var rest []string
		for _, c := range common {
			if c == on {
				found = true
				continue
			}
			rest = append(rest, c)
		}
		if !found {
			return f.fail(fmt.Errorf("merge on %s: %w", on, &UnknownIdentifierError{Kind: "column", Names: []string{on}}))
		}
		if len(rest) > 0 {
			return f.fail(&OverlapConflictError{Columns: rest})
		}
	}

	lon, _ := lattrs.Get(on)
	ron, _ := rattrs.Get(on)
	joined, err := types.NewJoin(f.query.Source(), right.query.Source(), [2]types.Expression{lon, ron}, kind)
	if err != nil {
		return f.fail(fmt.Errorf("merge: %w", err))
	}

	return f.with(
		types.SetAttrs(types.Mapping(lattrs.Concat(rattrs.Without(on)))),
		types.SetSource(types.SourceRef{Source: joined}),
	)
}

// Values executes the query and returns every row.
func (f Frame) Values(ctx context.Context) ([]Row, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.schema.FetchAll(ctx, f.query)
}

// Head returns the first n rows together with the column labels.
func (f Frame) Head(ctx context.Context, n int) (Table, error) {
	head := f.ILoc(To(n))
	rows, err := head.Values(ctx)
	if err != nil {
		return Table{}, err
	}
	return Table{Columns: head.Columns(), Rows: rows}, nil
}

// Shape returns the number of rows and columns. Rows are counted with
// COUNT(*) over the source, or over the frame's own query as a derived
// table when it is distinct or windowed.
func (f Frame) Shape(ctx context.Context) (rows, cols int, err error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	cols = len(f.Columns())

	var result []Row
	start, stop := f.query.Window()
	if f.query.Distinct() || start != nil || stop != nil {
		inner, err := f.schema.render(f.query)
		if err != nil {
			return 0, 0, err
		}
		result, err = f.schema.Raw(ctx, "SELECT COUNT(*) FROM ("+strings.TrimSuffix(inner, ";")+") AS t;")
		if err != nil {
			return 0, 0, err
		}
	} else {
		count, err := types.Apply(types.OpCount, types.Ref("*", ""))
		if err != nil {
			return 0, 0, err
		}
		result, err = f.schema.FetchAll(ctx, f.query.WithChanges(types.SetAttrs(types.Single(count))))
		if err != nil {
			return 0, 0, err
		}
	}

	if len(result) != 1 || len(result[0]) != 1 {
		return 0, 0, fmt.Errorf("%w: count returned %d rows", ErrNotSingular, len(result))
	}
	n, err := toInt(result[0][0])
	if err != nil {
		return 0, 0, err
	}
	return int(n), cols, nil
}

// Dtypes is not implemented.
func (f Frame) Dtypes() (map[string]string, error) {
	return nil, fmt.Errorf("%w: dtypes", ErrNotImplemented)
}

// Count is not implemented.
func (f Frame) Count() (map[string]int, error) {
	return nil, fmt.Errorf("%w: count", ErrNotImplemented)
}

// MemoryUsage is not implemented.
func (f Frame) MemoryUsage() (map[string]int, error) {
	return nil, fmt.Errorf("%w: memory usage", ErrNotImplemented)
}

// Info is not implemented.
func (f Frame) Info() (string, error) {
	return "", fmt.Errorf("%w: info", ErrNotImplemented)
}
