package qframe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/zoobzio/qframe/internal/render"
	"github.com/zoobzio/qframe/internal/types"
	"golang.org/x/sync/errgroup"
)

// describeWorkers bounds concurrent catalog lookups in Describe.
const describeWorkers = 4

// Schema is the entry point to a database: it resolves table names through
// its Catalog and runs rendered queries through its Executor.
type Schema struct {
	dialect Dialect
	catalog Catalog
	exec    Executor
	logger  *slog.Logger
}

// Option configures a Schema.
type Option func(*Schema)

// WithLogger sets the logger used for executed statements. The default is
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Schema) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Schema for the given engine.
func New(kind Kind, catalog Catalog, exec Executor, opts ...Option) (*Schema, error) {
	dialect, err := LookupDialect(kind)
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, fmt.Errorf("qframe: %s schema needs a catalog", dialect.Name)
	}
	if exec == nil {
		return nil, fmt.Errorf("qframe: %s schema needs an executor", dialect.Name)
	}

	s := &Schema{
		dialect: dialect,
		catalog: catalog,
		exec:    exec,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dialect returns the engine the schema was created for.
func (s *Schema) Dialect() Dialect {
	return s.dialect
}

// Tables lists user tables.
func (s *Schema) Tables(ctx context.Context) ([]string, error) {
	return s.catalog.Tables(ctx)
}

// SystemTables lists engine-owned tables.
func (s *Schema) SystemTables(ctx context.Context) ([]string, error) {
	return s.catalog.SystemTables(ctx)
}

// Columns describes the columns of table.
func (s *Schema) Columns(ctx context.Context, table string) ([]Column, error) {
	if err := s.known(ctx, table); err != nil {
		return nil, err
	}
	return s.catalog.Columns(ctx, table)
}

// Table returns a Frame selecting every column of the named user or system
// table. Column names are read from the catalog here, once; fluent calls
// on the result never touch the database.
func (s *Schema) Table(ctx context.Context, name string) (Frame, error) {
	cols, err := s.Columns(ctx, name)
	if err != nil {
		return Frame{}, err
	}
	source := types.NewBaseSource(name, ColumnNames(cols))
	return Frame{
		schema: s,
		query:  types.NewQuery(types.SourceRef{Source: source}),
	}, nil
}

func (s *Schema) known(ctx context.Context, name string) error {
	tables, err := s.catalog.Tables(ctx)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	system, err := s.catalog.SystemTables(ctx)
	if err != nil {
		return fmt.Errorf("list system tables: %w", err)
	}
	for _, group := range [][]string{tables, system} {
		for _, t := range group {
			if t == name {
				return nil
			}
		}
	}
	return &UnknownIdentifierError{Kind: "table", Names: []string{name}}
}

// TableDescription is one entry of Describe.
type TableDescription struct {
	Name    string
	Columns []Column
}

// Describe returns the columns of every user table, in catalog order.
// Tables are described concurrently.
func (s *Schema) Describe(ctx context.Context) ([]TableDescription, error) {
	tables, err := s.catalog.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	out := make([]TableDescription, len(tables))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(describeWorkers)

	for i, name := range tables {
		eg.Go(func() error {
			cols, err := s.catalog.Columns(ctx, name)
			if err != nil {
				return fmt.Errorf("describe %s: %w", name, err)
			}
			out[i] = TableDescription{Name: name, Columns: cols}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchAll renders q, checks it against the dialect's capabilities and
// executes it.
func (s *Schema) FetchAll(ctx context.Context, q Query) ([]Row, error) {
	text, err := s.render(q)
	if err != nil {
		return nil, err
	}
	return s.Raw(ctx, text)
}

func (s *Schema) render(q Query) (string, error) {
	text, err := q.Render()
	if err != nil {
		return "", err
	}
	if err := render.Check(q, s.dialect.Name, s.dialect.Capabilities); err != nil {
		return "", err
	}
	return text, nil
}

// Raw executes SQL text as is.
func (s *Schema) Raw(ctx context.Context, text string) ([]Row, error) {
	start := time.Now()
	s.logger.DebugContext(ctx, "executing query", "dialect", s.dialect.Kind, "sql", text)

	rows, err := s.exec.FetchAll(ctx, text)
	if err != nil {
		s.logger.WarnContext(ctx, "query failed", "dialect", s.dialect.Kind, "sql", text, "error", err)
		return nil, err
	}

	s.logger.DebugContext(ctx, "query finished", "rows", len(rows), "duration", time.Since(start))
	return rows, nil
}
