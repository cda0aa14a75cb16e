// ABOUTME: Executes a single statement and shapes its outcome.
// ABOUTME: Result sets become column-keyed rows, everything else an affected count.
package database

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"time"
	"unicode/utf8"
)

// Querier is the subset of *sql.Conn, *sql.DB and *sql.Tx used for
// introspection.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Dialect holds the engine specific pieces of statement execution.
type Dialect struct {
	// AffectedRowsQuery reads (affected rows, last insert id) of the
	// previous statement on the same connection.
	AffectedRowsQuery string
}

var (
	MySQL = Dialect{AffectedRowsQuery: "SELECT ROW_COUNT(), LAST_INSERT_ID()"}

	// SQLite backs the tests and local experiments without a server.
	SQLite = Dialect{AffectedRowsQuery: "SELECT changes(), last_insert_rowid()"}
)

// Row maps column name to value. Duplicate names keep the last value.
type Row map[string]any

// Result is the outcome of one statement.
type Result struct {
	// HasRows is true when the statement produced a result set, even an
	// empty one.
	HasRows bool     `json:"has_rows"`
	Columns []string `json:"columns,omitempty"`
	Rows    []Row    `json:"rows,omitempty"`

	AffectedRows int64 `json:"affected_rows"`
	LastInsertID int64 `json:"last_insert_id"`
}

// Run executes stmt on conn. Whether the outcome is rows or an affected
// count depends on what the server sent back, not on the statement text.
// Driver failures come back as *QueryError with the driver message intact.
func Run(ctx context.Context, conn *sql.Conn, d Dialect, stmt string) (*Result, error) {
	rows, err := conn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, &QueryError{Query: stmt, Cause: err}
	}

	columns, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		return nil, &QueryError{Query: stmt, Cause: err}
	}
	if len(columns) > 0 {
		return collectRows(stmt, rows, columns)
	}

	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, &QueryError{Query: stmt, Cause: err}
	}
	if err := rows.Close(); err != nil {
		return nil, &QueryError{Query: stmt, Cause: err}
	}
	return readAffected(ctx, conn, d, stmt)
}

func collectRows(stmt string, rows *sql.Rows, columns []string) (*Result, error) {
	defer rows.Close()

	res := &Result{
		HasRows: true,
		Columns: columns,
		Rows:    []Row{},
	}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &QueryError{Query: stmt, Cause: err}
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: stmt, Cause: err}
	}
	return res, nil
}

// readAffected must run on the connection that executed stmt.
func readAffected(ctx context.Context, conn *sql.Conn, d Dialect, stmt string) (*Result, error) {
	var affected, lastID sql.NullInt64
	if err := conn.QueryRowContext(ctx, d.AffectedRowsQuery).Scan(&affected, &lastID); err != nil {
		return nil, &QueryError{Query: stmt, Cause: fmt.Errorf("read affected rows: %w", err)}
	}

	res := &Result{}
	// ROW_COUNT() is -1 after statements that report no count.
	if affected.Int64 > 0 {
		res.AffectedRows = affected.Int64
	}
	// The insert id sticks to the connection, so only trust it for
	// statements that can generate one.
	if GeneratesInsertID(stmt) {
		res.LastInsertID = lastID.Int64
	}
	return res, nil
}

// normalizeValue turns driver values into JSON-friendly ones. Bytes that are
// not valid UTF-8 are base64 encoded so binary columns survive the round trip.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		if utf8.Valid(x) {
			return string(x)
		}
		return base64.StdEncoding.EncodeToString(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return x
	default:
		return fmt.Sprint(x)
	}
}
