// ABOUTME: End-to-end tests against a real MySQL server in a container.
// ABOUTME: Exercises execution, introspection, and error numbers through the Client.
package database_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/mysql-mcp/internal/database"
	"github.com/harperreed/mysql-mcp/internal/database/mysqltest"
)

func TestMySQLIntegration(t *testing.T) {
	settings := mysqltest.New(t)

	for _, pooled := range []bool{false, true} {
		name := "per-request"
		if pooled {
			name = "pooled"
		}
		t.Run(name, func(t *testing.T) {
			s := settings
			s.Pooled = pooled

			acc, err := database.NewAccessor(s, slog.New(slog.DiscardHandler))
			require.NoError(t, err)
			client := database.NewClient(acc, s.Database, nil)
			t.Cleanup(func() { _ = client.Close() })

			ctx := context.Background()
			table := "people_" + name[:3]

			version, err := client.ServerVersion(ctx)
			require.NoError(t, err)
			assert.NotEmpty(t, version)

			res, err := client.Execute(ctx, "SELECT 1 AS x")
			require.NoError(t, err)
			assert.Equal(t, []string{"x"}, res.Columns)
			assert.Equal(t, []database.Row{{"x": int64(1)}}, res.Rows)

			_, err = client.Execute(ctx, "CREATE TABLE "+table+" (id INT PRIMARY KEY AUTO_INCREMENT, name VARCHAR(64) NOT NULL, score DECIMAL(5,2) NULL DEFAULT '1.50')")
			require.NoError(t, err)

			res, err = client.Execute(ctx, "INSERT INTO "+table+" (name) VALUES ('ada'), ('grace')")
			require.NoError(t, err)
			assert.Equal(t, int64(2), res.AffectedRows)
			assert.Equal(t, int64(1), res.LastInsertID)

			res, err = client.Execute(ctx, "UPDATE "+table+" SET score = 2 WHERE name = 'nobody'")
			require.NoError(t, err)
			assert.False(t, res.HasRows)
			assert.Zero(t, res.AffectedRows)
			assert.Zero(t, res.LastInsertID, "the insert id only belongs to inserts")

			res, err = client.Execute(ctx, "SELECT name, score FROM "+table+" ORDER BY id")
			require.NoError(t, err)
			assert.Equal(t, []database.Row{
				{"name": "ada", "score": "1.50"},
				{"name": "grace", "score": "1.50"},
			}, res.Rows)

			tables, err := client.ListTables(ctx)
			require.NoError(t, err)
			assert.Contains(t, tables, table)

			desc, err := client.DescribeTable(ctx, table)
			require.NoError(t, err)
			require.Len(t, desc.Columns, 3)
			assert.Equal(t, "id", desc.Columns[0].Name)
			assert.Equal(t, "PRI", desc.Columns[0].Key)
			assert.Equal(t, "auto_increment", desc.Columns[0].Extra)
			assert.False(t, desc.Columns[1].Nullable)
			assert.True(t, desc.Columns[2].Nullable)
			require.NotNil(t, desc.Columns[2].Default)
			assert.Equal(t, "1.50", *desc.Columns[2].Default)
			require.NotNil(t, desc.RowCount)
			assert.Equal(t, int64(2), *desc.RowCount)

			missing, err := client.DescribeTable(ctx, "does_not_exist")
			require.NoError(t, err)
			assert.Empty(t, missing.Columns)
			assert.Nil(t, missing.RowCount)

			odd := "odd`" + name[:3]
			_, err = client.Execute(ctx, "CREATE TABLE "+database.QuoteIdentifier(odd)+" (id INT)")
			require.NoError(t, err)
			oddDesc, err := client.DescribeTable(ctx, odd)
			require.NoError(t, err)
			require.Len(t, oddDesc.Columns, 1)
			require.NotNil(t, oddDesc.RowCount)
			assert.Zero(t, *oddDesc.RowCount)

			_, err = client.Execute(ctx, "SELEC 1")
			var qe *database.QueryError
			require.True(t, errors.As(err, &qe))
			assert.Equal(t, uint16(1064), qe.MySQLNumber())
			assert.Contains(t, err.Error(), "You have an error in your SQL syntax")

			_, err = client.Execute(ctx, "INSERT INTO "+table+" (name) VALUES (NULL)")
			require.Error(t, err)
			res, err = client.Execute(ctx, "SELECT COUNT(*) AS n FROM "+table)
			require.NoError(t, err)
			assert.Equal(t, int64(2), res.Rows[0]["n"])

			res, err = client.Execute(ctx, "WITH doomed AS (SELECT 'grace' AS name) DELETE FROM "+table+" WHERE name IN (SELECT name FROM doomed)")
			require.NoError(t, err)
			assert.False(t, res.HasRows)
			assert.Equal(t, int64(1), res.AffectedRows)

			res, err = client.Execute(ctx, "SELECT COUNT(*) AS n FROM "+table)
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.Rows[0]["n"])
		})
	}
}
