package qframe

import (
	"context"
	"fmt"

	"github.com/zoobzio/qframe/internal/types"
)

// Series is a lazy single-column view over a Query. It supports aggregate
// reduction, binary composition with literals or other Series, and scalar
// coercion of its result.
type Series struct {
	schema *Schema
	query  Query
	alias  string
	expr   Expression
	err    error
}

func newSeries(schema *Schema, q Query, alias string, e Expression) Series {
	attrs := types.NewAttributes([]string{alias}, []types.Expression{e})
	return Series{
		schema: schema,
		query:  q.WithChanges(types.SetAttrs(types.Mapping(attrs))),
		alias:  alias,
		expr:   e,
	}
}

func (s Series) fail(err error) Series {
	if s.err != nil {
		return s
	}
	s.err = err
	return s
}

// Err returns the first error recorded by a fluent call.
func (s Series) Err() error {
	return s.err
}

// Name returns the column label.
func (s Series) Name() string {
	return s.alias
}

// Expression returns the column's expression.
func (s Series) Expression() Expression {
	return s.expr
}

// Query returns the underlying query.
func (s Series) Query() Query {
	return s.query
}

// SQL renders the series' query.
func (s Series) SQL() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.query.Render()
}

// String returns the rendered SQL, or the recorded error.
func (s Series) String() string {
	text, err := s.SQL()
	if err != nil {
		return "error: " + err.Error()
	}
	return text
}

// Apply applies op to the series expression followed by others. A Series
// operand must come from the same schema and differ from s only in its
// select list.
func (s Series) Apply(op Operator, others ...any) Series {
	if s.err != nil {
		return s
	}

	operands := make([]any, 0, len(others)+1)
	operands = append(operands, s.expr)
	for _, other := range others {
		switch o := other.(type) {
		case Series:
			if err := s.compatible(op, o); err != nil {
				return s.fail(err)
			}
			operands = append(operands, o.expr)
		case Frame:
			return s.fail(&UnsupportedKeyError{Op: string(op), Key: other})
		default:
			operands = append(operands, other)
		}
	}

	e, err := types.Apply(op, operands...)
	if err != nil {
		return s.fail(err)
	}
	return newSeries(s.schema, s.query, s.alias, e)
}

func (s Series) compatible(op Operator, other Series) error {
	if other.err != nil {
		return other.err
	}
	if s.schema != other.schema {
		return &IncompatibleOperandError{Op: op, Fields: []Field{FieldSource}}
	}
	diff := s.query.Diff(other.query)
	var fields []Field
	for _, f := range types.Fields() {
		if _, ok := diff[f]; ok && f != FieldAttrs {
			fields = append(fields, f)
		}
	}
	if len(fields) > 0 {
		return &IncompatibleOperandError{Op: op, Fields: fields}
	}
	return nil
}

// Sum reduces the column with SUM.
func (s Series) Sum() Series { return s.Apply(OpSum) }

// Mean reduces the column with AVG.
func (s Series) Mean() Series { return s.Apply(OpMean) }

// Min reduces the column with MIN.
func (s Series) Min() Series { return s.Apply(OpMin) }

// Max reduces the column with MAX.
func (s Series) Max() Series { return s.Apply(OpMax) }

// Add returns s + other.
func (s Series) Add(other any) Series { return s.Apply(OpAdd, other) }

// Sub returns s - other.
func (s Series) Sub(other any) Series { return s.Apply(OpSub, other) }

// Mul returns s * other.
func (s Series) Mul(other any) Series { return s.Apply(OpMul, other) }

// Div returns s / other.
func (s Series) Div(other any) Series { return s.Apply(OpDiv, other) }

// Gt returns s > other.
func (s Series) Gt(other any) Series { return s.Apply(OpGT, other) }

// Lt returns s < other.
func (s Series) Lt(other any) Series { return s.Apply(OpLT, other) }

// Ge returns s >= other.
func (s Series) Ge(other any) Series { return s.Apply(OpGE, other) }

// Le returns s <= other.
func (s Series) Le(other any) Series { return s.Apply(OpLE, other) }

// Eq returns s = other.
func (s Series) Eq(other any) Series { return s.Apply(OpEQ, other) }

// Ne returns s <> other.
func (s Series) Ne(other any) Series { return s.Apply(OpNE, other) }

// Filter keeps the rows where cond holds, replacing any previous filter.
func (s Series) Filter(cond Series) Series {
	if s.err != nil {
		return s
	}
	if cond.err != nil {
		return s.fail(cond.err)
	}
	e := cond.expr
	out := s
	out.query = s.query.WithChanges(types.SetWhere(&e))
	return out
}

// Values executes the query and returns the column's values.
func (s Series) Values(ctx context.Context) ([]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	rows, err := s.schema.FetchAll(ctx, s.query)
	if err != nil {
		return nil, err
	}
	values := make([]any, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			return nil, fmt.Errorf("row %d has no columns", i)
		}
		values[i] = row[0]
	}
	return values, nil
}

// Scalar executes the query and returns its only value.
func (s Series) Scalar(ctx context.Context) (any, error) {
	values, err := s.Values(ctx)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: got %d values", ErrNotSingular, len(values))
	}
	return values[0], nil
}

// Int returns the scalar truncated toward zero.
func (s Series) Int(ctx context.Context) (int64, error) {
	v, err := s.Scalar(ctx)
	if err != nil {
		return 0, err
	}
	return toInt(v)
}

// Float returns the scalar as a float64.
func (s Series) Float(ctx context.Context) (float64, error) {
	v, err := s.Scalar(ctx)
	if err != nil {
		return 0, err
	}
	return toFloat(v)
}

// Round returns the scalar rounded half to even.
func (s Series) Round(ctx context.Context) (int64, error) {
	v, err := s.Scalar(ctx)
	if err != nil {
		return 0, err
	}
	return toRounded(v)
}
