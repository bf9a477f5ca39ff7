package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/qframe/sqlite"
)

const fixture = `
CREATE TABLE artists (ArtistId INTEGER PRIMARY KEY, Name NVARCHAR(120));
CREATE TABLE albums (AlbumId INTEGER PRIMARY KEY, Title NVARCHAR(160) NOT NULL, ArtistId INTEGER NOT NULL);
INSERT INTO artists VALUES (1, 'AC/DC'), (2, 'Accept'), (3, 'Aerosmith');
INSERT INTO albums VALUES (1, 'For Those About To Rock We Salute You', 1), (2, 'Balls to the Wall', 2), (3, 'Restless and Wild', 2), (4, 'Let There Be Rock', 1);
`

// chinookFile writes the fixture to a database file and returns its path.
func chinookFile(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chinook.db")
	db, err := sql.Open(sqlite.DriverName, path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(fixture)
	require.NoError(t, err)
	return path
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestTablesCommand(t *testing.T) {
	dsn := chinookFile(t)

	out, err := execute(t, "--dsn", dsn, "tables")
	require.NoError(t, err)
	assert.Equal(t, "artists\nalbums\n", out)

	out, err = execute(t, "--dsn", dsn, "tables", "--system")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite_master")
}

func TestTablesCommandFromConfig(t *testing.T) {
	dsn := chinookFile(t)
	path := filepath.Join(t.TempDir(), "qframe.yaml")
	config := fmt.Sprintf("connections:\n  - name: chinook\n    driver: sqlite\n    dsn: %s\n", dsn)
	require.NoError(t, os.WriteFile(path, []byte(config), 0644))

	out, err := execute(t, "--config", path, "--connection", "chinook", "tables")
	require.NoError(t, err)
	assert.Equal(t, "artists\nalbums\n", out)

	_, err = execute(t, "--config", path, "--connection", "other", "tables")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, ErrNoConnection)
}

func TestNoConnection(t *testing.T) {
	_, err := execute(t, "tables")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, ErrNoConnection)
}

func TestColumnsCommand(t *testing.T) {
	dsn := chinookFile(t)

	out, err := execute(t, "--dsn", dsn, "columns", "albums")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5, "header, rule and three columns")
	assert.Contains(t, lines[2], "AlbumId")
	assert.Contains(t, lines[3], "Title")

	_, err = execute(t, "--dsn", dsn, "columns", "playlists")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDescribeCommand(t *testing.T) {
	dsn := chinookFile(t)

	out, err := execute(t, "--dsn", dsn, "describe")
	require.NoError(t, err)
	assert.Contains(t, out, "ArtistId, Name")
	assert.Contains(t, out, "AlbumId, Title, ArtistId")
}

func TestSQLCommand(t *testing.T) {
	dsn := chinookFile(t)

	out, err := execute(t, "--dsn", dsn, "sql", "albums", "--select", "Title,ArtistId", "--limit", "2")
	require.NoError(t, err)
	assert.Equal(t, "SELECT albums.Title, albums.ArtistId FROM albums LIMIT 2;\n", out)

	out, err = execute(t, "--dsn", dsn, "sql", "albums", "--drop", "Title", "--rename", "AlbumId=id")
	require.NoError(t, err)
	assert.Equal(t, "SELECT albums.AlbumId AS id, albums.ArtistId FROM albums;\n", out)

	_, err = execute(t, "--dsn", dsn, "sql", "albums", "--select", "Year")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid frame")
}

func TestSQLCommandJSON(t *testing.T) {
	dsn := chinookFile(t)

	out, err := execute(t, "--format", "json", "--dsn", dsn, "sql", "artists", "--distinct")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			SQL string `json:"sql"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "SELECT DISTINCT * FROM artists;", resp.Data.SQL)
}

func TestHeadCommand(t *testing.T) {
	dsn := chinookFile(t)

	out, err := execute(t, "--dsn", dsn, "head", "albums", "-n", "2", "--select", "Title")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "For Those About To Rock We Salute You")
	assert.Contains(t, out, "Balls to the Wall")
	assert.NotContains(t, out, "Restless and Wild")
}

func TestHeadCommandJSON(t *testing.T) {
	dsn := chinookFile(t)

	out, err := execute(t, "--format", "json", "--dsn", dsn, "head", "artists", "-n", "1")
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Columns []string `json:"columns"`
			Rows    [][]any  `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []string{"ArtistId", "Name"}, resp.Data.Columns)
	require.Len(t, resp.Data.Rows, 1)
	assert.Equal(t, "AC/DC", resp.Data.Rows[0][1])
}

func TestShapeCommand(t *testing.T) {
	dsn := chinookFile(t)

	out, err := execute(t, "--dsn", dsn, "shape", "albums")
	require.NoError(t, err)
	assert.Equal(t, "(4, 3)\n", out)

	out, err = execute(t, "--dsn", dsn, "shape", "albums", "--select", "ArtistId", "--distinct")
	require.NoError(t, err)
	assert.Equal(t, "(2, 1)\n", out)
}

func TestMergeCommand(t *testing.T) {
	dsn := chinookFile(t)

	out, err := execute(t, "--dsn", dsn, "merge", "albums", "artists", "--sql")
	require.NoError(t, err)
	expected := "SELECT albums.AlbumId, albums.Title, albums.ArtistId, artists.Name " +
		"FROM albums INNER JOIN artists ON albums.ArtistId=artists.ArtistId;\n"
	assert.Equal(t, expected, out)

	out, err = execute(t, "--dsn", dsn, "merge", "albums", "artists", "-n", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "AC/DC")
	assert.Contains(t, out, "Accept")
	assert.NotContains(t, out, "Aerosmith", "inner join drops artists without albums")

	_, err = execute(t, "--dsn", dsn, "merge", "albums", "artists", "--how", "cross")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerboseLogsQueries(t *testing.T) {
	dsn := chinookFile(t)

	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(logs)
	cmd.SetArgs([]string{"-v", "--dsn", dsn, "shape", "artists"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, logs.String(), "executing query")
	assert.Contains(t, logs.String(), "SELECT COUNT(*) FROM artists;")
}
