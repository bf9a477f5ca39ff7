package qframe

import (
	"fmt"
	"strings"

	"github.com/zoobzio/qframe/internal/render"
)

// Kind identifies a SQL engine.
type Kind string

// Supported engines.
const (
	SQLite   Kind = "sqlite"
	Postgres Kind = "postgres"
	MariaDB  Kind = "mariadb"
	MSSQL    Kind = "mssql"
)

// Capabilities describes the parts of the query grammar a dialect accepts.
type Capabilities = render.Capabilities

// Dialect bundles what a Schema needs to know about its engine.
type Dialect struct {
	Kind         Kind
	Name         string
	Capabilities Capabilities

	// Probe returns a statement that selects every column of table and no
	// rows. Catalogs use it to describe columns through the driver.
	Probe func(table string) string
}

func limitZero(table string) string {
	return "SELECT * FROM " + table + " LIMIT 0;"
}

func topZero(table string) string {
	return "SELECT TOP 0 * FROM " + table + ";"
}

// dialects is resolved once by New.
var dialects = map[Kind]Dialect{
	SQLite: {
		Kind:         SQLite,
		Name:         "SQLite",
		Capabilities: render.Full,
		Probe:        limitZero,
	},
	Postgres: {
		Kind:         Postgres,
		Name:         "PostgreSQL",
		Capabilities: render.Full,
		Probe:        limitZero,
	},
	MariaDB: {
		Kind:         MariaDB,
		Name:         "MariaDB",
		Capabilities: Capabilities{RightJoin: true, LimitOffset: true},
		Probe:        limitZero,
	},
	MSSQL: {
		Kind:         MSSQL,
		Name:         "MSSQL",
		Capabilities: Capabilities{RightJoin: true, OuterJoin: true},
		Probe:        topZero,
	},
}

// driverKinds maps driver and scheme names to engines.
var driverKinds = map[string]Kind{
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
	"postgres":   Postgres,
	"postgresql": Postgres,
	"pgx":        Postgres,
	"mariadb":    MariaDB,
	"mysql":      MariaDB,
	"mssql":      MSSQL,
	"sqlserver":  MSSQL,
}

// LookupDialect returns the registered dialect for kind.
func LookupDialect(kind Kind) (Dialect, error) {
	d, ok := dialects[kind]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: dialect %q", ErrUnsupportedKey, kind)
	}
	return d, nil
}

// ParseKind resolves a driver name such as "pgx" or "sqlserver".
func ParseKind(driver string) (Kind, error) {
	kind, ok := driverKinds[strings.ToLower(strings.TrimSpace(driver))]
	if !ok {
		return "", fmt.Errorf("%w: driver %q", ErrUnsupportedKey, driver)
	}
	return kind, nil
}

// Kinds returns every registered engine in a stable order.
func Kinds() []Kind {
	return []Kind{SQLite, Postgres, MariaDB, MSSQL}
}
