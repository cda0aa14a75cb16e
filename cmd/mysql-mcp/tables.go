// ABOUTME: CLI commands for schema introspection.
// ABOUTME: Provides tables and describe, mirroring the MCP resources.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	tablesJSON   bool
	describeJSON bool
)

var tablesCmd = &cobra.Command{
	Use:     "tables",
	Aliases: []string{"ls"},
	Short:   "List tables in the configured database",
	Long: `List the tables in MYSQL_DATABASE, sorted by name.

This is the same data served by the mysql://tables resource.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := dbClient.ListTables(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list tables: %w", err)
		}

		out := cmd.OutOrStdout()
		if tablesJSON {
			return writeJSON(out, tables)
		}
		if len(tables) == 0 {
			fmt.Fprintln(out, "No tables found.")
			return nil
		}
		for _, t := range tables {
			fmt.Fprintln(out, t)
		}
		return nil
	},
}

var describeCmd = &cobra.Command{
	Use:     "describe <table>",
	Aliases: []string{"desc"},
	Short:   "Show the columns of a table",
	Long: `Show the column layout of a table: name, type, nullability, key,
default, and extra attributes.

This is the same data served by the mysql://tables/{table} resource. A table
that does not exist has no columns.

EXAMPLES:

  mysql-mcp describe users
  mysql-mcp desc orders --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, err := dbClient.DescribeTable(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to describe table: %w", err)
		}

		out := cmd.OutOrStdout()
		if describeJSON {
			return writeJSON(out, desc)
		}
		if len(desc.Columns) == 0 {
			color.New(color.FgYellow).Fprintf(out, "Table %q has no columns (does it exist?)\n", desc.Table)
			return nil
		}
		renderDescriptor(out, desc)
		return nil
	},
}

func init() {
	tablesCmd.Flags().BoolVar(&tablesJSON, "json", false, "print the table list as JSON")
	describeCmd.Flags().BoolVar(&describeJSON, "json", false, "print the table layout as JSON")
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(describeCmd)
}
