// Package postgres binds qframe to PostgreSQL over a native pgx connection.
package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/zoobzio/qframe"
)

// Conn is satisfied by *pgx.Conn, *pgxpool.Pool and pgx.Tx.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const (
	tablesSQL = `SELECT table_name FROM information_schema.tables
WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
ORDER BY table_name;`

	systemTablesSQL = `SELECT table_name FROM information_schema.tables
WHERE table_schema = 'pg_catalog'
ORDER BY table_name;`

	nullableSQL = `SELECT column_name, is_nullable = 'YES' FROM information_schema.columns
WHERE table_name = $1 AND table_schema IN (current_schema(), 'pg_catalog');`
)

// Catalog reads metadata from information_schema. Its queries are
// serialized because a *pgx.Conn runs one query at a time and
// Schema.Describe calls Columns concurrently.
type Catalog struct {
	mu    sync.Mutex
	conn  Conn
	types *pgtype.Map
	probe func(string) string
}

// NewCatalog creates a catalog over conn.
func NewCatalog(conn Conn) *Catalog {
	dialect, _ := qframe.LookupDialect(qframe.Postgres)
	return &Catalog{conn: conn, types: pgtype.NewMap(), probe: dialect.Probe}
}

// Tables lists base tables of the current schema.
func (c *Catalog) Tables(ctx context.Context) ([]string, error) {
	return c.names(ctx, tablesSQL)
}

// SystemTables lists pg_catalog tables.
func (c *Catalog) SystemTables(ctx context.Context) ([]string, error) {
	return c.names(ctx, systemTablesSQL)
}

func (c *Catalog) names(ctx context.Context, query string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// Columns describes table from the probe's field descriptions, with
// nullability taken from information_schema.
func (c *Catalog) Columns(ctx context.Context, table string) ([]qframe.Column, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.conn.Query(ctx, c.probe(table))
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	fields := rows.FieldDescriptions()
	cols := make([]qframe.Column, len(fields))
	for i, fd := range fields {
		cols[i] = c.column(fd)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}

	nullable, err := c.nullability(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	for i := range cols {
		if n, ok := nullable[cols[i].Name]; ok {
			cols[i].Nullable = n
		}
	}
	return cols, nil
}

func (c *Catalog) nullability(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := c.conn.Query(ctx, nullableSQL, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var name string
		var nullable bool
		if err := rows.Scan(&name, &nullable); err != nil {
			return nil, err
		}
		out[name] = nullable
	}
	return out, rows.Err()
}

func (c *Catalog) column(fd pgconn.FieldDescription) qframe.Column {
	col := qframe.Column{
		Name:         fd.Name,
		TypeCode:     fmt.Sprintf("oid:%d", fd.DataTypeOID),
		InternalSize: int64(fd.DataTypeSize),
		Nullable:     true,
	}
	if t, ok := c.types.TypeForOID(fd.DataTypeOID); ok {
		col.TypeCode = t.Name
	}
	applyTypeModifier(&col, fd.DataTypeOID, fd.TypeModifier)
	return col
}

// applyTypeModifier decodes atttypmod for the types that carry one.
func applyTypeModifier(col *qframe.Column, oid uint32, mod int32) {
	if mod < 0 {
		return
	}
	switch oid {
	case pgtype.NumericOID:
		v := mod - 4
		col.Precision = int64((v >> 16) & 0xffff)
		col.Scale = int64(v & 0xffff)
	case pgtype.VarcharOID, pgtype.BPCharOID:
		col.DisplaySize = int64(mod - 4)
	}
}

// Executor runs queries through pgx and returns database/sql style values.
type Executor struct {
	conn Conn
}

// NewExecutor creates an executor over conn.
func NewExecutor(conn Conn) *Executor {
	return &Executor{conn: conn}
}

// FetchAll executes query and collects every row.
func (e *Executor) FetchAll(ctx context.Context, query string) ([]qframe.Row, error) {
	rows, err := e.conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []qframe.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(qframe.Row, len(values))
		for i, v := range values {
			row[i], err = normalize(v)
			if err != nil {
				return nil, err
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// normalize turns NUMERIC values into their exact text form so scalar
// coercion does not go through float64.
func normalize(v any) (any, error) {
	n, ok := v.(pgtype.Numeric)
	if !ok {
		return v, nil
	}
	return n.Value()
}

// Open creates a Schema over conn.
func Open(conn Conn, opts ...qframe.Option) (*qframe.Schema, error) {
	return qframe.New(qframe.Postgres, NewCatalog(conn), NewExecutor(conn), opts...)
}

// Connect dials connString and creates a Schema over the connection. The
// caller owns the returned connection.
func Connect(ctx context.Context, connString string, opts ...qframe.Option) (*qframe.Schema, *pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, nil, err
	}
	schema, err := Open(conn, opts...)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, nil, err
	}
	return schema, conn, nil
}
