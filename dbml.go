package qframe

import (
	"context"
	"fmt"
	"sort"

	"github.com/zoobzio/dbml"
)

// staticCatalog serves metadata from a DBML project without a database.
type staticCatalog struct {
	tables  []string
	columns map[string][]Column
}

// NewCatalogFromDBML builds a Catalog from a DBML project. Tables are listed
// in name order; columns keep their declaration order. The catalog reports
// no system tables.
func NewCatalogFromDBML(project *dbml.Project) (Catalog, error) {
	if project == nil {
		return nil, fmt.Errorf("project cannot be nil")
	}

	c := &staticCatalog{columns: make(map[string][]Column)}
	for _, table := range project.Tables {
		if _, dup := c.columns[table.Name]; dup {
			return nil, fmt.Errorf("table %q declared twice", table.Name)
		}
		cols := make([]Column, 0, len(table.Columns))
		for _, col := range table.Columns {
			cols = append(cols, Column{Name: col.Name, Nullable: true})
		}
		c.tables = append(c.tables, table.Name)
		c.columns[table.Name] = cols
	}
	sort.Strings(c.tables)

	return c, nil
}

func (c *staticCatalog) Tables(context.Context) ([]string, error) {
	return append([]string(nil), c.tables...), nil
}

func (c *staticCatalog) SystemTables(context.Context) ([]string, error) {
	return nil, nil
}

func (c *staticCatalog) Columns(_ context.Context, table string) ([]Column, error) {
	cols, ok := c.columns[table]
	if !ok {
		return nil, &UnknownIdentifierError{Kind: "table", Names: []string{table}}
	}
	return append([]Column(nil), cols...), nil
}
