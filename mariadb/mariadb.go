// Package mariadb binds qframe to MariaDB and MySQL through
// github.com/go-sql-driver/mysql.
package mariadb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/zoobzio/qframe"
)

const (
	tablesSQL = "SELECT table_name FROM information_schema.tables " +
		"WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE' ORDER BY table_name;"

	// System tables live outside the connection's database, so they are
	// listed schema-qualified.
	systemTablesSQL = "SELECT CONCAT(table_schema, '.', table_name) FROM information_schema.tables " +
		"WHERE table_schema IN ('information_schema', 'mysql') ORDER BY 1;"
)

// Catalog reads metadata from information_schema.
type Catalog struct {
	db    qframe.Querier
	probe func(string) string
}

// NewCatalog creates a catalog over db.
func NewCatalog(db qframe.Querier) *Catalog {
	dialect, _ := qframe.LookupDialect(qframe.MariaDB)
	return &Catalog{db: db, probe: dialect.Probe}
}

// Tables lists base tables of the connection's database.
func (c *Catalog) Tables(ctx context.Context) ([]string, error) {
	return c.names(ctx, tablesSQL)
}

// SystemTables lists information_schema and mysql tables, schema-qualified.
func (c *Catalog) SystemTables(ctx context.Context) ([]string, error) {
	return c.names(ctx, systemTablesSQL)
}

func (c *Catalog) names(ctx context.Context, query string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Columns describes table through the driver's result metadata.
func (c *Catalog) Columns(ctx context.Context, table string) ([]qframe.Column, error) {
	cols, err := qframe.DescribeColumns(ctx, c.db, c.probe(table))
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	return cols, nil
}

// ParseDSN validates a go-sql-driver DSN such as
// "user:pass@tcp(localhost:3306)/chinook".
func ParseDSN(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mariadb dsn: %w", err)
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("invalid mariadb dsn: no database name")
	}
	return cfg, nil
}

// Open creates a Schema over an open handle.
func Open(db *sql.DB, opts ...qframe.Option) (*qframe.Schema, error) {
	return qframe.New(qframe.MariaDB, NewCatalog(db), qframe.NewExecutor(db), opts...)
}

// Connect opens a handle from cfg and creates a Schema over it. The caller
// owns the returned handle.
func Connect(cfg *mysql.Config, opts ...qframe.Option) (*qframe.Schema, *sql.DB, error) {
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, nil, err
	}
	db := sql.OpenDB(connector)
	schema, err := Open(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return schema, db, nil
}
