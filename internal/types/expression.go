package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression is a column reference or an operator applied to operands.
// Operands are either expressions or scalar literals. Expressions are never
// modified after construction.
type Expression struct {
	name     string
	source   string
	op       Operator
	operands []any
}

// Ref creates a column reference qualified by source. An empty source
// leaves the reference bare.
func Ref(name, source string) Expression {
	return Expression{name: name, source: source}
}

// Apply builds an expression tree node from an operator and its operands.
func Apply(op Operator, operands ...any) (Expression, error) {
	spec, ok := operators[op]
	if !ok {
		return Expression{}, fmt.Errorf("%w: %q", ErrNotImplemented, op)
	}
	if len(operands) != spec.arity {
		return Expression{}, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, op, spec.arity, len(operands))
	}

	args := make([]any, len(operands))
	for i, operand := range operands {
		switch v := operand.(type) {
		case Expression:
			args[i] = v
		case *Expression:
			if v == nil {
				return Expression{}, fmt.Errorf("%w: nil expression operand", ErrUnsupportedKey)
			}
			args[i] = *v
		case nil, string, bool, int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64, float32, float64:
			args[i] = v
		default:
			return Expression{}, fmt.Errorf("%w: operand %T", ErrUnsupportedKey, operand)
		}
	}

	return Expression{op: op, operands: args}, nil
}

// Name returns the referenced column name; empty for operator nodes.
func (e Expression) Name() string {
	return e.name
}

// Source returns the qualifier of a reference.
func (e Expression) Source() string {
	return e.source
}

// Operator returns the root operator; empty for references.
func (e Expression) Operator() Operator {
	return e.op
}

// IsRef reports whether the expression is a plain column reference.
func (e Expression) IsRef() bool {
	return e.op == ""
}

// IsZero reports whether the expression was never set.
func (e Expression) IsZero() bool {
	return e.name == "" && e.op == ""
}

// Operands returns a copy of the operand list.
func (e Expression) Operands() []any {
	out := make([]any, len(e.operands))
	copy(out, e.operands)
	return out
}

// String compiles the expression to SQL text.
func (e Expression) String() string {
	prefix := ""
	if e.source != "" {
		prefix = e.source + "."
	}
	if e.IsRef() {
		return prefix + e.name
	}

	args := make([]string, len(e.operands))
	for i, operand := range e.operands {
		args[i] = Literal(operand)
	}
	return prefix + operators[e.op].render(args)
}

// Simplify would fold constant sub-trees.
func (Expression) Simplify() (Expression, error) {
	return Expression{}, fmt.Errorf("expression simplify: %w", ErrNotImplemented)
}

// Equal reports structural equality of body and qualifier.
func (e Expression) Equal(other Expression) bool {
	if e.name != other.name || e.source != other.source || e.op != other.op {
		return false
	}
	if len(e.operands) != len(other.operands) {
		return false
	}
	for i := range e.operands {
		if !operandEqual(e.operands[i], other.operands[i]) {
			return false
		}
	}
	return true
}

// Key returns a canonical encoding of the expression. Two expressions have
// the same key exactly when they are Equal.
func (e Expression) Key() string {
	var b strings.Builder
	e.writeKey(&b)
	return b.String()
}

func (e Expression) writeKey(b *strings.Builder) {
	if e.IsRef() {
		b.WriteString("ref(")
		b.WriteString(strconv.Quote(e.source))
		b.WriteByte(',')
		b.WriteString(strconv.Quote(e.name))
		b.WriteByte(')')
		return
	}
	b.WriteString(string(e.op))
	b.WriteByte('(')
	b.WriteString(strconv.Quote(e.source))
	for _, operand := range e.operands {
		b.WriteByte(',')
		if sub, ok := operand.(Expression); ok {
			sub.writeKey(b)
			continue
		}
		fmt.Fprintf(b, "%T:%v", operand, operand)
	}
	b.WriteByte(')')
}

func operandEqual(a, b any) bool {
	ea, aok := a.(Expression)
	eb, bok := b.(Expression)
	if aok || bok {
		return aok && bok && ea.Equal(eb)
	}
	return a == b
}

// Literal renders an operand as SQL text. Strings are single-quoted with
// embedded quotes doubled.
func Literal(v any) string {
	switch x := v.(type) {
	case Expression:
		return x.String()
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
