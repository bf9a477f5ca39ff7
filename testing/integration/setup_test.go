// Package integration runs qframe against real databases: SQLite in memory
// and PostgreSQL, MariaDB and SQL Server in containers.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	tcmariadb "github.com/testcontainers/testcontainers-go/modules/mariadb"
	tcmssql "github.com/testcontainers/testcontainers-go/modules/mssql"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/zoobzio/qframe"
	"github.com/zoobzio/qframe/mariadb"
	"github.com/zoobzio/qframe/mssql"
	"github.com/zoobzio/qframe/postgres"
	"github.com/zoobzio/qframe/sqlite"
)

// engine is a running database the Chinook fixture can be loaded into.
type engine struct {
	kind qframe.Kind
	dsn  string
	// types spells the fixture's column types for this engine.
	types columnTypes
	// executor runs queries on the engine's own handle.
	executor qframe.Executor

	exec func(ctx context.Context, stmt string) error
	open func() (*qframe.Schema, error)
	stop func(ctx context.Context)
}

type started struct {
	engine *engine
	err    error
}

// Containers start once per run and are shared by every test.
var (
	mu      sync.Mutex
	running = make(map[qframe.Kind]*started)
)

// TestMain runs the tests and stops every container they started.
func TestMain(m *testing.M) {
	code := m.Run()

	ctx := context.Background()
	for _, s := range running {
		if s.engine != nil && s.engine.stop != nil {
			s.engine.stop(ctx)
		}
	}
	os.Exit(code)
}

// shared returns the engine of kind, starting it on first use. A failed
// start is remembered so later tests fail without retrying.
func shared(t *testing.T, kind qframe.Kind, start func(context.Context) (*engine, error)) *engine {
	t.Helper()
	if testing.Short() {
		t.Skipf("Skipping %s integration test in short mode", kind)
	}

	mu.Lock()
	defer mu.Unlock()
	s, ok := running[kind]
	if !ok {
		e, err := start(context.Background())
		s = &started{engine: e, err: err}
		running[kind] = s
	}
	if s.err != nil {
		t.Fatalf("Failed to start %s: %v", kind, s.err)
	}
	return s.engine
}

// seed loads the Chinook fixture, drops it when the test ends and returns
// a schema over the engine.
func seed(ctx context.Context, t *testing.T, e *engine) *qframe.Schema {
	t.Helper()

	run := func(stmts []string) error {
		for _, stmt := range stmts {
			if err := e.exec(ctx, stmt); err != nil {
				return fmt.Errorf("%w\nSQL: %s", err, stmt)
			}
		}
		return nil
	}
	if err := run(dropStatements); err != nil {
		t.Fatalf("Failed to drop fixture: %v", err)
	}
	if err := run(chinookStatements(e.types)); err != nil {
		t.Fatalf("Failed to load fixture: %v", err)
	}
	t.Cleanup(func() {
		if err := run(dropStatements); err != nil {
			t.Errorf("Failed to drop fixture: %v", err)
		}
	})

	schema, err := e.open()
	if err != nil {
		t.Fatalf("Failed to open %s schema: %v", e.kind, err)
	}
	return schema
}

func setupSQLite(ctx context.Context, t *testing.T) (*qframe.Schema, *engine) {
	t.Helper()

	db, err := sql.Open(sqlite.DriverName, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open SQLite: %v", err)
	}
	// Each pooled connection would see its own empty database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close database: %v", err)
		}
	})

	e := sqlEngine(qframe.SQLite, ":memory:", db, columnTypes{text: "TEXT", money: "NUMERIC(10,2)"})
	e.open = func() (*qframe.Schema, error) { return sqlite.Open(db) }
	return seed(ctx, t, e), e
}

func setupPostgres(ctx context.Context, t *testing.T) (*qframe.Schema, *engine) {
	t.Helper()
	e := shared(t, qframe.Postgres, startPostgres)
	return seed(ctx, t, e), e
}

func setupMariaDB(ctx context.Context, t *testing.T) (*qframe.Schema, *engine) {
	t.Helper()
	e := shared(t, qframe.MariaDB, startMariaDB)
	return seed(ctx, t, e), e
}

func setupMSSQL(ctx context.Context, t *testing.T) (*qframe.Schema, *engine) {
	t.Helper()
	e := shared(t, qframe.MSSQL, startMSSQL)
	return seed(ctx, t, e), e
}

// sqlEngine wires an engine over a database/sql handle.
func sqlEngine(kind qframe.Kind, dsn string, db *sql.DB, types columnTypes) *engine {
	return &engine{
		kind:     kind,
		dsn:      dsn,
		types:    types,
		executor: qframe.NewExecutor(db),
		exec: func(ctx context.Context, stmt string) error {
			_, err := db.ExecContext(ctx, stmt)
			return err
		},
	}
}

func startPostgres(ctx context.Context) (*engine, error) {
	container, err := tcpostgres.Run(ctx,
		"docker.io/postgres:16-alpine",
		tcpostgres.WithDatabase("chinook"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &engine{
		kind:     qframe.Postgres,
		dsn:      dsn,
		types:    columnTypes{text: "VARCHAR(200)", money: "NUMERIC(10,2)"},
		executor: postgres.NewExecutor(conn),
		exec: func(ctx context.Context, stmt string) error {
			_, err := conn.Exec(ctx, stmt)
			return err
		},
		open: func() (*qframe.Schema, error) { return postgres.Open(conn) },
		stop: func(ctx context.Context) {
			_ = conn.Close(ctx)
			_ = container.Terminate(ctx)
		},
	}, nil
}

func startMariaDB(ctx context.Context) (*engine, error) {
	container, err := tcmariadb.Run(ctx,
		"docker.io/mariadb:11",
		tcmariadb.WithDatabase("chinook"),
		tcmariadb.WithUsername("test"),
		tcmariadb.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("mariadbd: ready for connections").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	dsn, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	cfg, err := mariadb.ParseDSN(dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	_, db, err := mariadb.Connect(cfg)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err := waitReady(ctx, db, 30); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		return nil, err
	}

	e := sqlEngine(qframe.MariaDB, dsn, db, columnTypes{text: "VARCHAR(200)", money: "DECIMAL(10,2)"})
	e.open = func() (*qframe.Schema, error) { return mariadb.Open(db) }
	e.stop = func(ctx context.Context) {
		_ = db.Close()
		_ = container.Terminate(ctx)
	}
	return e, nil
}

func startMSSQL(ctx context.Context) (*engine, error) {
	container, err := tcmssql.Run(ctx,
		"mcr.microsoft.com/mssql/server:2022-latest",
		tcmssql.WithAcceptEULA(),
		tcmssql.WithPassword("Test@12345"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("SQL Server is now ready for client connections").
				WithStartupTimeout(120*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	dsn, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	_, db, err := mssql.Connect(dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	if err := waitReady(ctx, db, 60); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		return nil, err
	}

	e := sqlEngine(qframe.MSSQL, dsn, db, columnTypes{text: "NVARCHAR(200)", money: "DECIMAL(10,2)"})
	e.open = func() (*qframe.Schema, error) { return mssql.Open(db) }
	e.stop = func(ctx context.Context) {
		_ = db.Close()
		_ = container.Terminate(ctx)
	}
	return e, nil
}

// waitReady pings db once a second until it answers.
func waitReady(ctx context.Context, db *sql.DB, attempts int) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		time.Sleep(time.Second)
	}
	return fmt.Errorf("database not ready: %w", err)
}
