package integration

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"testing"

	"github.com/zoobzio/dbml"
	"github.com/zoobzio/qframe"
)

// columnTypes holds the engine-specific spelling of the fixture's types.
type columnTypes struct {
	text  string
	money string
}

// chinookStatements creates and fills a trimmed Chinook schema. Statements
// are separate because not every driver accepts several per call.
func chinookStatements(ct columnTypes) []string {
	return []string{
		fmt.Sprintf("CREATE TABLE artists (artist_id INT PRIMARY KEY, name %s)", ct.text),
		fmt.Sprintf("CREATE TABLE albums (album_id INT PRIMARY KEY, title %s NOT NULL, artist_id INT NOT NULL)", ct.text),
		fmt.Sprintf("CREATE TABLE tracks (track_id INT PRIMARY KEY, name %s, album_id INT, milliseconds INT, unit_price %s)", ct.text, ct.money),
		"INSERT INTO artists (artist_id, name) VALUES (1, 'AC/DC'), (2, 'Accept'), (3, 'Aerosmith')",
		"INSERT INTO albums (album_id, title, artist_id) VALUES " +
			"(1, 'For Those About To Rock We Salute You', 1), (2, 'Balls to the Wall', 2), " +
			"(3, 'Restless and Wild', 2), (4, 'Let There Be Rock', 1)",
		"INSERT INTO tracks (track_id, name, album_id, milliseconds, unit_price) VALUES " +
			"(1, 'For Those About To Rock', 1, 343719, 0.99), (2, 'Balls to the Wall', 2, 342562, 0.99), " +
			"(3, 'Fast As a Shark', 3, 230619, 0.99), (4, 'Restless and Wild', 3, 252051, 0.99), " +
			"(5, 'Go Down', 4, 331180, 1.99)",
	}
}

// dropStatements removes the fixture.
var dropStatements = []string{
	"DROP TABLE IF EXISTS tracks",
	"DROP TABLE IF EXISTS albums",
	"DROP TABLE IF EXISTS artists",
}

// chinookProject describes the fixture for a static catalog.
func chinookProject() *dbml.Project {
	project := dbml.NewProject("chinook")

	artists := dbml.NewTable("artists")
	artists.AddColumn(dbml.NewColumn("artist_id", "int"))
	artists.AddColumn(dbml.NewColumn("name", "varchar"))
	project.AddTable(artists)

	albums := dbml.NewTable("albums")
	albums.AddColumn(dbml.NewColumn("album_id", "int"))
	albums.AddColumn(dbml.NewColumn("title", "varchar"))
	albums.AddColumn(dbml.NewColumn("artist_id", "int"))
	project.AddTable(albums)

	return project
}

// text renders a cell for comparison. The MySQL text protocol returns
// every value as bytes.
func text(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func sortedText(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = text(v)
	}
	sort.Strings(out)
	return out
}

func mustFrame(ctx context.Context, t *testing.T, schema *qframe.Schema, name string) qframe.Frame {
	t.Helper()
	f, err := schema.Table(ctx, name)
	if err != nil {
		t.Fatalf("Table(%s) failed: %v", name, err)
	}
	return f
}

// testCatalog checks table listing and column discovery.
func testCatalog(ctx context.Context, t *testing.T, schema *qframe.Schema) {
	t.Helper()

	tables, err := schema.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables failed: %v", err)
	}
	found := make(map[string]bool)
	for _, name := range tables {
		found[name] = true
	}
	for _, want := range []string{"artists", "albums", "tracks"} {
		if !found[want] {
			t.Errorf("Tables() = %v, missing %s", tables, want)
		}
	}

	cols, err := schema.Columns(ctx, "albums")
	if err != nil {
		t.Fatalf("Columns failed: %v", err)
	}
	if got := qframe.ColumnNames(cols); !reflect.DeepEqual(got, []string{"album_id", "title", "artist_id"}) {
		t.Errorf("Columns(albums) = %v", got)
	}

	if _, err := schema.Table(ctx, "playlists"); !errors.Is(err, qframe.ErrUnknownIdentifier) {
		t.Errorf("expected ErrUnknownIdentifier for a missing table, got %v", err)
	}

	described, err := schema.Describe(ctx)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if len(described) != len(tables) {
		t.Errorf("Describe() returned %d tables, want %d", len(described), len(tables))
	}
}

// testFrames runs the read path shared by every engine: filters, series
// aggregates, inner and left merges and shape.
func testFrames(ctx context.Context, t *testing.T, schema *qframe.Schema) {
	t.Helper()

	albums := mustFrame(ctx, t, schema, "albums")
	artists := mustFrame(ctx, t, schema, "artists")
	tracks := mustFrame(ctx, t, schema, "tracks")

	rows, err := albums.Values(ctx)
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("expected 4 albums, got %d", len(rows))
	}

	mean, err := tracks.Col("milliseconds").Mean().Int(ctx)
	if err != nil {
		t.Fatalf("Mean failed: %v", err)
	}
	if mean != 300026 {
		t.Errorf("mean milliseconds = %d, want 300026", mean)
	}

	long, err := tracks.Col("name").Filter(tracks.Col("milliseconds").Gt(mean)).Values(ctx)
	if err != nil {
		t.Fatalf("filtered Values failed: %v", err)
	}
	want := []string{"Balls to the Wall", "For Those About To Rock", "Go Down"}
	if got := sortedText(long); !reflect.DeepEqual(got, want) {
		t.Errorf("long tracks = %v, want %v", got, want)
	}

	total, err := tracks.Col("unit_price").Sum().Float(ctx)
	if err != nil {
		t.Fatalf("Sum failed: %v", err)
	}
	if math.Abs(total-5.95) > 1e-9 {
		t.Errorf("total price = %v, want 5.95", total)
	}

	longest, err := tracks.Col("milliseconds").Max().Int(ctx)
	if err != nil {
		t.Fatalf("Max failed: %v", err)
	}
	if longest != 343719 {
		t.Errorf("longest = %d, want 343719", longest)
	}

	inner, err := albums.Merge(artists, "inner", "").Values(ctx)
	if err != nil {
		t.Fatalf("inner Merge failed: %v", err)
	}
	if len(inner) != 4 {
		t.Errorf("inner merge returned %d rows, want 4", len(inner))
	}

	left := artists.Merge(albums, "left", "artist_id")
	if got := left.Columns(); !reflect.DeepEqual(got, []string{"artist_id", "name", "album_id", "title"}) {
		t.Errorf("left merge columns = %v", got)
	}
	titles, err := left.Col("title").Values(ctx)
	if err != nil {
		t.Fatalf("left Merge failed: %v", err)
	}
	nulls := 0
	for _, title := range titles {
		if title == nil {
			nulls++
		}
	}
	if len(titles) != 5 || nulls != 1 {
		t.Errorf("left merge titles = %v, want 5 with one NULL", titles)
	}

	n, cols, err := albums.Shape(ctx)
	if err != nil {
		t.Fatalf("Shape failed: %v", err)
	}
	if n != 4 || cols != 3 {
		t.Errorf("Shape() = (%d, %d), want (4, 3)", n, cols)
	}

	n, _, err = albums.Select("artist_id").DropDuplicates().Shape(ctx)
	if err != nil {
		t.Fatalf("distinct Shape failed: %v", err)
	}
	if n != 2 {
		t.Errorf("distinct artists = %d, want 2", n)
	}

	renamed, err := albums.Rename(map[string]string{"title": "album"}).Col("album").Values(ctx)
	if err != nil {
		t.Fatalf("renamed Values failed: %v", err)
	}
	if len(renamed) != 4 {
		t.Errorf("renamed column returned %d values, want 4", len(renamed))
	}
}

// testHead checks the LIMIT/OFFSET window on engines that support it.
func testHead(ctx context.Context, t *testing.T, schema *qframe.Schema) {
	t.Helper()

	tracks := mustFrame(ctx, t, schema, "tracks").Select("track_id", "name")
	head, err := tracks.Head(ctx, 2)
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if !reflect.DeepEqual(head.Columns, []string{"track_id", "name"}) || len(head.Rows) != 2 {
		t.Errorf("Head(2) = %v", head)
	}

	window, err := tracks.ILoc(qframe.Span(4, 10)).Values(ctx)
	if err != nil {
		t.Fatalf("ILoc failed: %v", err)
	}
	if len(window) != 1 {
		t.Errorf("ILoc(4:10) returned %d rows, want 1", len(window))
	}
}

// testOuterMerge checks a full outer join on engines that support it.
func testOuterMerge(ctx context.Context, t *testing.T, schema *qframe.Schema) {
	t.Helper()

	artists := mustFrame(ctx, t, schema, "artists")
	albums := mustFrame(ctx, t, schema, "albums")

	rows, err := artists.Merge(albums, "outer", "").Values(ctx)
	if err != nil {
		t.Fatalf("outer Merge failed: %v", err)
	}
	if len(rows) != 5 {
		t.Errorf("outer merge returned %d rows, want 5", len(rows))
	}
}

// testStaticCatalog queries through a DBML catalog instead of the live one.
func testStaticCatalog(ctx context.Context, t *testing.T, kind qframe.Kind, exec qframe.Executor) {
	t.Helper()

	catalog, err := qframe.NewCatalogFromDBML(chinookProject())
	if err != nil {
		t.Fatalf("NewCatalogFromDBML failed: %v", err)
	}
	schema, err := qframe.New(kind, catalog, exec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	names, err := mustFrame(ctx, t, schema, "artists").Col("name").Values(ctx)
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if got := sortedText(names); !reflect.DeepEqual(got, []string{"AC/DC", "Accept", "Aerosmith"}) {
		t.Errorf("artist names = %v", got)
	}
}
