// Package qframe provides lazy, immutable SQL query construction behind a
// DataFrame-like API.
//
// A Frame wraps an immutable query. Every fluent call returns a new Frame or
// Series carrying a modified copy of that query; nothing touches the database
// until a terminal call such as Values, Shape, Head or a scalar coercion.
//
// # Basic Usage
//
//	db, _ := sql.Open("sqlite", "chinook.db")
//	schema, err := sqlite.Open(db)
//	if err != nil {
//		return err
//	}
//
//	tracks, err := schema.Table(ctx, "tracks")
//	if err != nil {
//		return err
//	}
//
//	mean, err := tracks.Col("Milliseconds").Mean().Int(ctx)
//	long := tracks.Col("UnitPrice").Filter(tracks.Col("Milliseconds").Gt(mean))
//	sql, err := long.SQL()
//	// sql: SELECT tracks.UnitPrice FROM tracks WHERE (tracks.Milliseconds > 393599);
//
// # Multi-Dialect Support
//
// Dialects are resolved once when a Schema is created. Bindings live in the
// sqlite, postgres, mariadb and mssql packages; each supplies a Catalog and an
// Executor for its driver.
//
// # Errors
//
// Fluent calls never return errors directly. The first failure is kept on the
// returned Frame or Series and surfaces from Err, SQL and every terminal call.
// All errors match one of the exported sentinels through errors.Is.
package qframe

import "github.com/zoobzio/qframe/internal/types"

// Expression is a column reference or an operator application.
type Expression = types.Expression

// Attributes is an ordered mapping of column alias to expression.
type Attributes = types.Attributes

// Query is the immutable SELECT statement behind every Frame and Series.
type Query = types.Query

// Field names one of the fixed query fields compared by Query.Diff.
type Field = types.Field

// Difference holds two differing field values reported by Query.Diff.
type Difference = types.Difference

// Re-export query field names for public API.
const (
	FieldDistinct = types.FieldDistinct
	FieldAttrs    = types.FieldAttrs
	FieldSource   = types.FieldSource
	FieldWhere    = types.FieldWhere
	FieldStart    = types.FieldStart
	FieldStop     = types.FieldStop
)

// Operator names a function applicable to a Series.
type Operator = types.Operator

// Re-export operator constants for public API.
const (
	// Aggregates.
	OpSum   = types.OpSum
	OpMean  = types.OpMean
	OpMin   = types.OpMin
	OpMax   = types.OpMax
	OpCount = types.OpCount

	// Arithmetic.
	OpAdd = types.OpAdd
	OpSub = types.OpSub
	OpMul = types.OpMul
	OpDiv = types.OpDiv

	// Comparison.
	OpGT = types.OpGT
	OpLT = types.OpLT
	OpGE = types.OpGE
	OpLE = types.OpLE
	OpEQ = types.OpEQ
	OpNE = types.OpNE

	// Logic.
	OpAnd = types.OpAnd
	OpOr  = types.OpOr
)

// JoinKind is the type of a SQL join.
type JoinKind = types.JoinKind

// Re-export join kinds for public API.
const (
	InnerJoin = types.InnerJoin
	LeftJoin  = types.LeftJoin
	RightJoin = types.RightJoin
	OuterJoin = types.OuterJoin
)

// Ref creates a column reference, optionally qualified by a table or alias.
func Ref(name, source string) Expression {
	return types.Ref(name, source)
}

// Apply builds an expression from an operator and its operands.
func Apply(op Operator, operands ...any) (Expression, error) {
	return types.Apply(op, operands...)
}
