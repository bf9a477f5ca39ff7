// Package testing provides test utilities for qframe.
package testing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/zoobzio/dbml"
	"github.com/zoobzio/qframe"
)

// Recorder is an Executor that records every query and answers from
// canned results keyed by SQL text. Unknown queries return no rows.
type Recorder struct {
	mu      sync.Mutex
	queries []string
	results map[string][]qframe.Row
	err     error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{results: make(map[string][]qframe.Row)}
}

// Respond sets the rows returned for query.
func (r *Recorder) Respond(query string, rows ...qframe.Row) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[query] = rows
}

// Fail makes every following query return err.
func (r *Recorder) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// FetchAll records query and returns its canned rows.
func (r *Recorder) FetchAll(_ context.Context, query string) ([]qframe.Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	if r.err != nil {
		return nil, r.err
	}
	return r.results[query], nil
}

// Queries returns the recorded queries in order.
func (r *Recorder) Queries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

// Last returns the most recent query, or "" when none ran.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queries) == 0 {
		return ""
	}
	return r.queries[len(r.queries)-1]
}

// Chinook returns a DBML project with the artists, albums, tracks and
// invoice_lines tables of the Chinook sample database.
func Chinook() *dbml.Project {
	project := dbml.NewProject("chinook")

	// Artists table
	artists := dbml.NewTable("artists")
	artists.AddColumn(dbml.NewColumn("ArtistId", "integer"))
	artists.AddColumn(dbml.NewColumn("Name", "nvarchar"))
	project.AddTable(artists)

	// Albums table
	albums := dbml.NewTable("albums")
	albums.AddColumn(dbml.NewColumn("AlbumId", "integer"))
	albums.AddColumn(dbml.NewColumn("Title", "nvarchar"))
	albums.AddColumn(dbml.NewColumn("ArtistId", "integer"))
	project.AddTable(albums)

	// Tracks table
	tracks := dbml.NewTable("tracks")
	tracks.AddColumn(dbml.NewColumn("TrackId", "integer"))
	tracks.AddColumn(dbml.NewColumn("Name", "nvarchar"))
	tracks.AddColumn(dbml.NewColumn("AlbumId", "integer"))
	tracks.AddColumn(dbml.NewColumn("Milliseconds", "integer"))
	tracks.AddColumn(dbml.NewColumn("Bytes", "integer"))
	tracks.AddColumn(dbml.NewColumn("UnitPrice", "numeric"))
	project.AddTable(tracks)

	// Invoice lines table
	lines := dbml.NewTable("invoice_lines")
	lines.AddColumn(dbml.NewColumn("InvoiceLineId", "integer"))
	lines.AddColumn(dbml.NewColumn("TrackId", "integer"))
	lines.AddColumn(dbml.NewColumn("UnitPrice", "numeric"))
	lines.AddColumn(dbml.NewColumn("Quantity", "integer"))
	project.AddTable(lines)

	return project
}

// TestSchema creates a Schema of the given dialect over the Chinook
// catalog, backed by a Recorder.
func TestSchema(tb testing.TB, kind qframe.Kind) (*qframe.Schema, *Recorder) {
	tb.Helper()

	catalog, err := qframe.NewCatalogFromDBML(Chinook())
	if err != nil {
		tb.Fatalf("Failed to create catalog: %v", err)
	}
	rec := NewRecorder()
	schema, err := qframe.New(kind, catalog, rec)
	if err != nil {
		tb.Fatalf("Failed to create schema: %v", err)
	}
	return schema, rec
}

// TestFrame returns a frame over the named table.
func TestFrame(tb testing.TB, schema *qframe.Schema, table string) qframe.Frame {
	tb.Helper()

	f, err := schema.Table(context.Background(), table)
	if err != nil {
		tb.Fatalf("Failed to open table %s: %v", table, err)
	}
	return f
}

// AssertSQL renders view and compares it with expected.
func AssertSQL(t *testing.T, expected string, view qframe.View) {
	t.Helper()
	actual, err := view.SQL()
	if err != nil {
		t.Errorf("Render failed: %v", err)
		return
	}
	if expected != actual {
		t.Errorf("SQL mismatch:\nExpected: %s\nActual:   %s", expected, actual)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertErrorIs checks that err matches target.
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Errorf("Expected error matching %v, got: %v", target, err)
	}
}

// AssertErrorContains checks that error message contains substr.
func AssertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error containing %q but got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Errorf("Expected error containing %q, got: %v", substr, err)
	}
}
