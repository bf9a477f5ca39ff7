package qframe

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/zoobzio/dbml"
)

// recorder is an Executor that remembers every statement and answers from
// a fixed table of results.
type recorder struct {
	mu      sync.Mutex
	queries []string
	results map[string][]Row
	err     error
}

func (r *recorder) FetchAll(_ context.Context, query string) ([]Row, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	if r.err != nil {
		return nil, r.err
	}
	return r.results[query], nil
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queries) == 0 {
		return ""
	}
	return r.queries[len(r.queries)-1]
}

func chinook() *dbml.Project {
	project := dbml.NewProject("chinook")

	albums := dbml.NewTable("albums")
	albums.AddColumn(dbml.NewColumn("AlbumId", "integer"))
	albums.AddColumn(dbml.NewColumn("Title", "nvarchar"))
	albums.AddColumn(dbml.NewColumn("ArtistId", "integer"))
	project.AddTable(albums)

	artists := dbml.NewTable("artists")
	artists.AddColumn(dbml.NewColumn("ArtistId", "integer"))
	artists.AddColumn(dbml.NewColumn("Name", "nvarchar"))
	project.AddTable(artists)

	tracks := dbml.NewTable("tracks")
	tracks.AddColumn(dbml.NewColumn("TrackId", "integer"))
	tracks.AddColumn(dbml.NewColumn("Name", "nvarchar"))
	tracks.AddColumn(dbml.NewColumn("AlbumId", "integer"))
	tracks.AddColumn(dbml.NewColumn("Milliseconds", "integer"))
	tracks.AddColumn(dbml.NewColumn("Bytes", "integer"))
	tracks.AddColumn(dbml.NewColumn("UnitPrice", "numeric"))
	project.AddTable(tracks)

	return project
}

func newTestSchema(t *testing.T, kind Kind) (*Schema, *recorder) {
	t.Helper()

	catalog, err := NewCatalogFromDBML(chinook())
	if err != nil {
		t.Fatalf("NewCatalogFromDBML: %v", err)
	}
	exec := &recorder{results: make(map[string][]Row)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	schema, err := New(kind, catalog, exec, WithLogger(logger))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return schema, exec
}

func mustTable(t *testing.T, schema *Schema, name string) Frame {
	t.Helper()

	f, err := schema.Table(context.Background(), name)
	if err != nil {
		t.Fatalf("Table(%s): %v", name, err)
	}
	return f
}

func mustSQL(t *testing.T, v View) string {
	t.Helper()

	text, err := v.SQL()
	if err != nil {
		t.Fatalf("SQL: %v", err)
	}
	return text
}
