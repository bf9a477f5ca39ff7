package cli

import (
	"context"
	"log/slog"

	"github.com/zoobzio/qframe"
	"github.com/zoobzio/qframe/mariadb"
	"github.com/zoobzio/qframe/mssql"
	"github.com/zoobzio/qframe/postgres"
	"github.com/zoobzio/qframe/sqlite"
)

// session is an open schema and the function that releases its handle.
type session struct {
	schema *qframe.Schema
	close  func() error
}

// connect opens conn with the binding that matches its driver.
func connect(ctx context.Context, conn Connection, logger *slog.Logger) (*session, error) {
	kind, err := qframe.ParseKind(conn.Driver)
	if err != nil {
		return nil, err
	}
	opt := qframe.WithLogger(logger)

	switch kind {
	case qframe.SQLite:
		schema, db, err := sqlite.Connect(conn.DSN, opt)
		if err != nil {
			return nil, err
		}
		return &session{schema: schema, close: db.Close}, nil

	case qframe.Postgres:
		schema, pc, err := postgres.Connect(ctx, conn.DSN, opt)
		if err != nil {
			return nil, err
		}
		return &session{schema: schema, close: func() error {
			return pc.Close(context.Background())
		}}, nil

	case qframe.MariaDB:
		cfg, err := mariadb.ParseDSN(conn.DSN)
		if err != nil {
			return nil, err
		}
		schema, db, err := mariadb.Connect(cfg, opt)
		if err != nil {
			return nil, err
		}
		return &session{schema: schema, close: db.Close}, nil

	default:
		schema, db, err := mssql.Connect(conn.DSN, opt)
		if err != nil {
			return nil, err
		}
		return &session{schema: schema, close: db.Close}, nil
	}
}

// resolveConnection picks the connection from --dsn/--driver or from the
// config file.
func resolveConnection(opts *RootOptions) (Connection, error) {
	if opts.DSN != "" {
		conn := Connection{Name: "flags", Driver: opts.Driver, DSN: opts.DSN}
		return conn, conn.Validate()
	}
	if opts.Config == "" {
		return Connection{}, ErrNoConnection
	}
	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return Connection{}, err
	}
	return cfg.Lookup(opts.Connection)
}

// withSchema resolves and opens the connection, runs fn and releases the
// handle.
func withSchema(ctx context.Context, opts *RootOptions, fn func(*qframe.Schema) error) error {
	conn, err := resolveConnection(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to resolve connection", err)
	}

	logger := opts.logger()
	logger.Debug("opening connection", "name", conn.Name, "driver", conn.Driver)
	s, err := connect(ctx, conn, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open connection", err)
	}
	defer func() {
		if closeErr := s.close(); closeErr != nil {
			logger.Error("error closing connection", "error", closeErr)
		}
	}()

	return fn(s.schema)
}
