package qframe

import (
	"context"
	"database/sql"
)

// Row is one result row, in select-list order.
type Row []any

// Executor runs rendered SQL and returns every row.
type Executor interface {
	FetchAll(ctx context.Context, query string) ([]Row, error)
}

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// SQLExecutor runs queries through database/sql.
type SQLExecutor struct {
	db Querier
}

// NewExecutor wraps a database/sql handle.
func NewExecutor(db Querier) *SQLExecutor {
	return &SQLExecutor{db: db}
}

// FetchAll executes query and scans every row. The cursor is closed before
// returning on every path.
func (e *SQLExecutor) FetchAll(ctx context.Context, query string) ([]Row, error) {
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	result, err := scanRows(rows)

	// Check for errors during rows "Close".
	if closeErr := rows.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, v := range values {
			// Drivers may reuse byte slices between rows.
			if b, ok := v.([]byte); ok {
				values[i] = append([]byte(nil), b...)
			}
		}
		result = append(result, Row(values))
	}

	// Check for errors during row iteration.
	return result, rows.Err()
}
