package qframe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zoobzio/qframe/internal/render"
	"github.com/zoobzio/qframe/internal/types"
)

// Standard sentinel errors. Every error returned by this package matches one
// of them through errors.Is, except errors passed through from an Executor.
var (
	// ErrUnknownIdentifier is returned for unknown table or column names.
	ErrUnknownIdentifier = types.ErrUnknownIdentifier

	// ErrUnsupportedKey is returned when indexing with an unrecognised key type.
	ErrUnsupportedKey = types.ErrUnsupportedKey

	// ErrIncompatibleOperand is returned when combining Series over different queries.
	ErrIncompatibleOperand = types.ErrIncompatibleOperand

	// ErrOverlapConflict is returned when a merge cannot pick a single join key.
	ErrOverlapConflict = types.ErrOverlapConflict

	// ErrMalformedWindow is returned for a row window with a start but no stop.
	ErrMalformedWindow = types.ErrMalformedWindow

	// ErrNotImplemented is returned by declared but unfinished operations.
	ErrNotImplemented = types.ErrNotImplemented

	// ErrNotSingular is returned when a scalar is requested from zero or many values.
	ErrNotSingular = types.ErrNotSingular

	// ErrArity is returned when an operator gets the wrong number of operands.
	ErrArity = types.ErrArity

	// ErrUnsupportedFeature is returned when a dialect cannot run a query.
	ErrUnsupportedFeature = types.ErrUnsupportedFeature

	// ErrNotNumeric is returned when a scalar cannot be read as a number.
	ErrNotNumeric = types.ErrNotNumeric
)

// UnsupportedFeatureError names the dialect and the construct it rejected.
type UnsupportedFeatureError = render.UnsupportedFeatureError

// UnknownIdentifierError lists the names that could not be resolved.
type UnknownIdentifierError struct {
	Kind  string // "table" or "column"
	Names []string
}

func (e *UnknownIdentifierError) Error() string {
	return fmt.Sprintf("unknown %s: %s", e.Kind, strings.Join(e.Names, ", "))
}

// Is reports whether target is ErrUnknownIdentifier.
func (*UnknownIdentifierError) Is(target error) bool {
	return target == ErrUnknownIdentifier
}

func unknownColumns(names []string) error {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return &UnknownIdentifierError{Kind: "column", Names: sorted}
}

// UnsupportedKeyError names the operation and the key type it refused.
type UnsupportedKeyError struct {
	Op  string
	Key any
}

func (e *UnsupportedKeyError) Error() string {
	return fmt.Sprintf("%s: unsupported key type: %T", e.Op, e.Key)
}

// Is reports whether target is ErrUnsupportedKey.
func (*UnsupportedKeyError) Is(target error) bool {
	return target == ErrUnsupportedKey
}

// IncompatibleOperandError lists the query fields on which two Series differ.
type IncompatibleOperandError struct {
	Op     Operator
	Fields []Field
}

func (e *IncompatibleOperandError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("%s: operands differ in %s", e.Op, strings.Join(names, ", "))
}

// Is reports whether target is ErrIncompatibleOperand.
func (*IncompatibleOperandError) Is(target error) bool {
	return target == ErrIncompatibleOperand
}

// OverlapConflictError lists the columns a merge or rename could not
// disambiguate. No columns means a merge found no common column to key on.
type OverlapConflictError struct {
	Columns []string
}

func (e *OverlapConflictError) Error() string {
	if len(e.Columns) == 0 {
		return "columns overlap: no common column to join on"
	}
	return fmt.Sprintf("columns overlap: %s", strings.Join(e.Columns, ", "))
}

// Is reports whether target is ErrOverlapConflict.
func (*OverlapConflictError) Is(target error) bool {
	return target == ErrOverlapConflict
}
