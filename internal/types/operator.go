package types

import "sort"

// Operator names a function that can be applied to expressions.
type Operator string

const (
	// Aggregates.
	OpSum   Operator = "sum"
	OpMean  Operator = "mean"
	OpMin   Operator = "min"
	OpMax   Operator = "max"
	OpCount Operator = "count"

	// Arithmetic.
	OpAdd Operator = "add"
	OpSub Operator = "sub"
	OpMul Operator = "mul"
	OpDiv Operator = "div"

	// Comparison.
	OpGT Operator = "gt"
	OpLT Operator = "lt"
	OpGE Operator = "ge"
	OpLE Operator = "le"
	OpEQ Operator = "eq"
	OpNE Operator = "ne"

	// Logic.
	OpAnd Operator = "and"
	OpOr  Operator = "or"
)

// operatorSpec describes how an operator is written in SQL.
type operatorSpec struct {
	render func(args []string) string
	arity  int
}

// function renders a SQL function call such as SUM(x).
func function(name string) operatorSpec {
	return operatorSpec{
		arity: 1,
		render: func(args []string) string {
			return name + "(" + args[0] + ")"
		},
	}
}

// infix renders a parenthesised binary operator such as (x + y).
func infix(symbol string) operatorSpec {
	return operatorSpec{
		arity: 2,
		render: func(args []string) string {
			return "(" + args[0] + " " + symbol + " " + args[1] + ")"
		},
	}
}

// operators is the full operator set. The fluent Series methods and the
// expression renderer both read from it.
var operators = map[Operator]operatorSpec{
	OpSum:   function("SUM"),
	OpMean:  function("AVG"),
	OpMin:   function("MIN"),
	OpMax:   function("MAX"),
	OpCount: function("COUNT"),
	OpAdd:   infix("+"),
	OpSub:   infix("-"),
	OpMul:   infix("*"),
	OpDiv:   infix("/"),
	OpGT:    infix(">"),
	OpLT:    infix("<"),
	OpGE:    infix(">="),
	OpLE:    infix("<="),
	OpEQ:    infix("="),
	OpNE:    infix("<>"),
	OpAnd:   infix("AND"),
	OpOr:    infix("OR"),
}

// Arity returns the number of operands the operator takes, or 0 when the
// operator is unknown.
func (op Operator) Arity() int {
	return operators[op].arity
}

// Valid reports whether the operator is part of the operator set.
func (op Operator) Valid() bool {
	_, ok := operators[op]
	return ok
}

// Aggregate reports whether the operator reduces a column to one value.
func (op Operator) Aggregate() bool {
	return op.Valid() && op.Arity() == 1
}

// Operators returns every known operator name, sorted.
func Operators() []Operator {
	ops := make([]Operator, 0, len(operators))
	for op := range operators {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}
