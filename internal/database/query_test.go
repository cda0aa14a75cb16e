// ABOUTME: Tests for statement execution and value normalization.
// ABOUTME: Uses an on-disk SQLite database as a stand-in driver.
package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func sqliteOpener(t *testing.T) Opener {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	return func() (*sql.DB, error) {
		return sql.Open("sqlite", path)
	}
}

// openSQLite returns a single connection, since affected counts are read
// back on the connection that ran the statement.
func openSQLite(t *testing.T) *sql.Conn {
	t.Helper()
	db, err := sqliteOpener(t)()
	require.NoError(t, err)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		_ = db.Close()
	})
	return conn
}

func run(ctx context.Context, conn *sql.Conn, stmt string) (*Result, error) {
	return Run(ctx, conn, SQLite, stmt)
}

func TestRunSelectLiteral(t *testing.T) {
	db := openSQLite(t)

	res, err := run(context.Background(), db, "SELECT 1 AS x")
	require.NoError(t, err)

	assert.True(t, res.HasRows)
	assert.Equal(t, []string{"x"}, res.Columns)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, Row{"x": int64(1)}, res.Rows[0])
}

func TestRunInsertReportsAffectedRows(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	_, err := run(ctx, db, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	res, err := run(ctx, db, "INSERT INTO users (name) VALUES ('ada'), ('grace'), ('linus')")
	require.NoError(t, err)
	assert.False(t, res.HasRows)
	assert.Equal(t, int64(3), res.AffectedRows)
	assert.Equal(t, int64(3), res.LastInsertID)

	res, err = run(ctx, db, "SELECT id, name FROM users ORDER BY id")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, res.Columns)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "grace", res.Rows[1]["name"])
}

func TestRunReturningClause(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	_, err := run(ctx, db, "CREATE TABLE t (id INTEGER PRIMARY KEY, x INTEGER)")
	require.NoError(t, err)

	res, err := run(ctx, db, "INSERT INTO t (x) VALUES (7) RETURNING id, x")
	require.NoError(t, err)
	assert.True(t, res.HasRows)
	assert.Equal(t, []string{"id", "x"}, res.Columns)
	assert.Equal(t, []Row{{"id": int64(1), "x": int64(7)}}, res.Rows)

	res, err = run(ctx, db, "DELETE FROM t RETURNING id")
	require.NoError(t, err)
	assert.True(t, res.HasRows)
	assert.Equal(t, []Row{{"id": int64(1)}}, res.Rows)
}

func TestRunCommonTableExpressionDelete(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	_, err := run(ctx, db, "CREATE TABLE t (id INTEGER PRIMARY KEY, x INTEGER)")
	require.NoError(t, err)
	_, err = run(ctx, db, "INSERT INTO t (x) VALUES (1), (2), (3)")
	require.NoError(t, err)

	res, err := run(ctx, db, "WITH d AS (SELECT 1 AS x) DELETE FROM t WHERE x IN (SELECT x FROM d)")
	require.NoError(t, err)
	assert.False(t, res.HasRows)
	assert.Equal(t, int64(1), res.AffectedRows)
	assert.Zero(t, res.LastInsertID)

	res, err = run(ctx, db, "SELECT COUNT(*) AS n FROM t")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Rows[0]["n"])
}

func TestRunDDLReportsNoRows(t *testing.T) {
	db := openSQLite(t)

	res, err := run(context.Background(), db, "CREATE TABLE t (id INTEGER)")
	require.NoError(t, err)
	assert.False(t, res.HasRows)
	assert.Nil(t, res.Columns)
	assert.Zero(t, res.AffectedRows)
}

func TestRunEmptyResultSet(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	_, err := run(ctx, db, "CREATE TABLE empty (id INTEGER)")
	require.NoError(t, err)

	res, err := run(ctx, db, "SELECT id FROM empty")
	require.NoError(t, err)
	assert.True(t, res.HasRows)
	assert.Equal(t, []string{"id"}, res.Columns)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
}

func TestRunInvalidStatement(t *testing.T) {
	db := openSQLite(t)

	_, err := run(context.Background(), db, "SELEC 1")
	require.Error(t, err)

	var qe *QueryError
	require.True(t, errors.As(err, &qe), "error type = %T, want *QueryError", err)
	assert.Contains(t, err.Error(), "syntax error")
	assert.Equal(t, "SELEC 1", qe.Query)
	assert.Zero(t, qe.MySQLNumber())
}

func TestRunFailedInsertLeavesNoRows(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	_, err := run(ctx, db, "CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)

	_, err = run(ctx, db, "INSERT INTO items (name, missing) VALUES ('x', 1)")
	require.Error(t, err)

	res, err := run(ctx, db, "SELECT COUNT(*) AS n FROM items")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Rows[0]["n"])
}

func TestRunNullAndText(t *testing.T) {
	db := openSQLite(t)

	res, err := run(context.Background(), db, "SELECT NULL AS n, 'hi' AS s, 2.5 AS f, X'6869' AS b")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.Nil(t, row["n"])
	assert.Equal(t, "hi", row["s"])
	assert.Equal(t, 2.5, row["f"])
	assert.Equal(t, "hi", row["b"])
}

func TestRunBinaryValues(t *testing.T) {
	db := openSQLite(t)

	res, err := run(context.Background(), db, "SELECT X'00FF10' AS b")
	require.NoError(t, err)
	assert.Equal(t, "AP8Q", res.Rows[0]["b"])
}

func TestCountRowsQuotesIdentifiers(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	_, err := run(ctx, db, "CREATE TABLE `we``ird` (id INTEGER)")
	require.NoError(t, err)
	_, err = run(ctx, db, "INSERT INTO `we``ird` VALUES (1), (2)")
	require.NoError(t, err)

	n, err := CountRows(ctx, db, "main", "we`ird")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = CountRows(ctx, db, "main", "missing")
	var qe *QueryError
	assert.True(t, errors.As(err, &qe))
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`users`", QuoteIdentifier("users"))
	assert.Equal(t, "`a``b`", QuoteIdentifier("a`b"))
	assert.Equal(t, "`x``; DROP TABLE y; --`", QuoteIdentifier("x`; DROP TABLE y; --"))
}

func TestRunHonoursCancellation(t *testing.T) {
	db := openSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := run(ctx, db, "SELECT 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

type stringer struct{}

func (stringer) String() string { return "custom" }

func TestNormalizeValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "bytes", in: []byte("12.50"), want: "12.50"},
		{name: "utf8 bytes", in: []byte("héllo"), want: "héllo"},
		{name: "binary bytes", in: []byte{0xff, 0xfe}, want: "//4="},
		{name: "int64", in: int64(7), want: int64(7)},
		{name: "uint64", in: uint64(7), want: uint64(7)},
		{name: "float", in: 1.25, want: 1.25},
		{name: "bool", in: true, want: true},
		{name: "string", in: "x", want: "x"},
		{name: "time", in: ts, want: "2024-03-01T12:30:00Z"},
		{name: "fallback", in: stringer{}, want: "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeValue(tt.in))
		})
	}
}
