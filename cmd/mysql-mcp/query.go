// ABOUTME: CLI command for running a single SQL statement.
// ABOUTME: Prints rows as a table, or JSON with --json.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryJSON bool

var queryCmd = &cobra.Command{
	Use:     "query <sql>",
	Aliases: []string{"q", "exec"},
	Short:   "Run a SQL statement",
	Long: `Run one SQL statement against the configured database, exactly as the
execute_sql MCP tool would.

Statements that produce a result set print their rows. Everything else
prints the number of affected rows.

EXAMPLES:

  mysql-mcp query "SELECT id, email FROM users LIMIT 5"
  mysql-mcp query "UPDATE users SET active = 0 WHERE id = 7"
  mysql-mcp query --json "SHOW TABLES"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stmt := strings.Join(args, " ")
		if strings.TrimSpace(stmt) == "" {
			return fmt.Errorf("query must not be empty")
		}

		res, err := dbClient.Execute(cmd.Context(), stmt)
		if err != nil {
			return err
		}

		if queryJSON {
			return writeJSON(cmd.OutOrStdout(), res)
		}
		renderResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(queryCmd)
}
