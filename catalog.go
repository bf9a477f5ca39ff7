package qframe

import (
	"context"
)

// Catalog supplies table and column metadata.
type Catalog interface {
	// Tables lists user tables.
	Tables(ctx context.Context) ([]string, error)
	// SystemTables lists engine-owned tables that may still be queried.
	SystemTables(ctx context.Context) ([]string, error)
	// Columns describes the columns of a table in declaration order.
	Columns(ctx context.Context, table string) ([]Column, error)
}

// Column describes one column of a table or result set.
type Column struct {
	Name         string
	TypeCode     string
	DisplaySize  int64
	InternalSize int64
	Precision    int64
	Scale        int64
	Nullable     bool
}

// ColumnNames returns the names of cols in order.
func ColumnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// DescribeColumns runs probe and reports the shape of its result set. probe
// should select every column while returning no rows, e.g.
// "SELECT * FROM t LIMIT 0".
func DescribeColumns(ctx context.Context, db Querier, probe string) ([]Column, error) {
	rows, err := db.QueryContext(ctx, probe)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	cols := make([]Column, len(colTypes))
	for i, ct := range colTypes {
		col := Column{
			Name:     ct.Name(),
			TypeCode: ct.DatabaseTypeName(),
			Nullable: true,
		}
		if length, ok := ct.Length(); ok {
			col.DisplaySize = length
			col.InternalSize = length
		}
		if precision, scale, ok := ct.DecimalSize(); ok {
			col.Precision = precision
			col.Scale = scale
		}
		if nullable, ok := ct.Nullable(); ok {
			col.Nullable = nullable
		}
		cols[i] = col
	}
	return cols, rows.Err()
}
