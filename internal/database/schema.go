// ABOUTME: Schema introspection through information_schema.
// ABOUTME: Lists tables, describes columns, and counts rows of existing tables.
package database

import (
	"context"
	"database/sql"
	"strings"
)

const listTablesQuery = `SELECT table_name
FROM information_schema.tables
WHERE table_schema = ?
ORDER BY table_name`

const describeTableQuery = `SELECT column_name, column_type, is_nullable, column_key, column_default, extra
FROM information_schema.columns
WHERE table_schema = ? AND table_name = ?
ORDER BY ordinal_position`

// ColumnDescriptor describes one column the way DESCRIBE would.
type ColumnDescriptor struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Nullable bool    `json:"nullable"`
	Key      string  `json:"key"`
	Default  *string `json:"default"`
	Extra    string  `json:"extra"`
}

// TableDescriptor lists a table's columns in ordinal order. A table that
// does not exist has no columns and no row count.
type TableDescriptor struct {
	Table    string             `json:"table"`
	Columns  []ColumnDescriptor `json:"columns"`
	RowCount *int64             `json:"row_count,omitempty"`
}

// ListTables returns the table names in schema, sorted.
func ListTables(ctx context.Context, q Querier, schema string) ([]string, error) {
	rows, err := q.QueryContext(ctx, listTablesQuery, schema)
	if err != nil {
		return nil, &QueryError{Query: listTablesQuery, Cause: err}
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, &QueryError{Query: listTablesQuery, Cause: err}
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: listTablesQuery, Cause: err}
	}
	return tables, nil
}

// DescribeTable returns the columns of table in schema along with its row
// count. The count is skipped when the table has no columns.
func DescribeTable(ctx context.Context, q Querier, schema, table string) (*TableDescriptor, error) {
	rows, err := q.QueryContext(ctx, describeTableQuery, schema, table)
	if err != nil {
		return nil, &QueryError{Query: describeTableQuery, Cause: err}
	}
	defer rows.Close()

	desc := &TableDescriptor{Table: table, Columns: []ColumnDescriptor{}}
	for rows.Next() {
		var (
			col      ColumnDescriptor
			nullable string
			def      sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &col.Key, &def, &col.Extra); err != nil {
			return nil, &QueryError{Query: describeTableQuery, Cause: err}
		}
		col.Nullable = nullable == "YES"
		if def.Valid {
			v := def.String
			col.Default = &v
		}
		desc.Columns = append(desc.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, &QueryError{Query: describeTableQuery, Cause: err}
	}
	_ = rows.Close()

	if len(desc.Columns) == 0 {
		return desc, nil
	}
	n, err := CountRows(ctx, q, schema, table)
	if err != nil {
		return nil, err
	}
	desc.RowCount = &n
	return desc, nil
}

// CountRows returns the number of rows in schema.table.
func CountRows(ctx context.Context, q Querier, schema, table string) (int64, error) {
	query := "SELECT COUNT(*) FROM " + QuoteIdentifier(schema) + "." + QuoteIdentifier(table)
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return 0, &QueryError{Query: query, Cause: err}
	}
	defer rows.Close()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, &QueryError{Query: query, Cause: err}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, &QueryError{Query: query, Cause: err}
	}
	return n, nil
}

// QuoteIdentifier wraps name in backticks, doubling any backtick inside it.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
