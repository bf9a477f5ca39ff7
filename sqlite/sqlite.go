// Package sqlite binds qframe to SQLite through the pure-Go modernc.org/sqlite
// driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zoobzio/qframe"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// DriverName is the database/sql driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

// systemTables are the engine tables that may be queried like user tables.
var systemTables = []string{"sqlite_master", "sqlite_sequence", "sqlite_stat1"}

// MasterEntry is one row of sqlite_master.
type MasterEntry struct {
	Type     string
	Name     string
	TblName  string
	RootPage int64
	SQL      sql.NullString
}

// Catalog reads table metadata from sqlite_master.
type Catalog struct {
	db    *sql.DB
	probe func(string) string
}

// NewCatalog creates a catalog over db.
func NewCatalog(db *sql.DB) *Catalog {
	dialect, _ := qframe.LookupDialect(qframe.SQLite)
	return &Catalog{db: db, probe: dialect.Probe}
}

// Master lists every object in sqlite_master in storage order.
func (c *Catalog) Master(ctx context.Context) ([]MasterEntry, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT type, name, tbl_name, rootpage, sql FROM sqlite_master;")
	if err != nil {
		return nil, fmt.Errorf("read sqlite_master: %w", err)
	}
	defer rows.Close()

	var entries []MasterEntry
	for rows.Next() {
		var e MasterEntry
		var root sql.NullInt64
		if err := rows.Scan(&e.Type, &e.Name, &e.TblName, &root, &e.SQL); err != nil {
			return nil, fmt.Errorf("scan sqlite_master: %w", err)
		}
		e.RootPage = root.Int64
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Tables lists user tables in sqlite_master order.
func (c *Catalog) Tables(ctx context.Context) ([]string, error) {
	entries, err := c.Master(ctx)
	if err != nil {
		return nil, err
	}
	var tables []string
	for _, e := range entries {
		if e.Type == "table" && !isSystem(e.Name) {
			tables = append(tables, e.Name)
		}
	}
	return tables, nil
}

// SystemTables returns sqlite_master, sqlite_sequence and sqlite_stat1.
func (c *Catalog) SystemTables(context.Context) ([]string, error) {
	return append([]string(nil), systemTables...), nil
}

// Columns describes table through the driver's result metadata.
func (c *Catalog) Columns(ctx context.Context, table string) ([]qframe.Column, error) {
	cols, err := qframe.DescribeColumns(ctx, c.db, c.probe(table))
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	return cols, nil
}

func isSystem(name string) bool {
	for _, s := range systemTables {
		if s == name {
			return true
		}
	}
	return false
}

// Open creates a Schema over an open SQLite handle.
func Open(db *sql.DB, opts ...qframe.Option) (*qframe.Schema, error) {
	return qframe.New(qframe.SQLite, NewCatalog(db), qframe.NewExecutor(db), opts...)
}

// Connect opens dsn with the sqlite driver and creates a Schema over it.
// The caller owns the returned handle.
func Connect(dsn string, opts ...qframe.Option) (*qframe.Schema, *sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, nil, err
	}
	schema, err := Open(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return schema, db, nil
}
