// ABOUTME: Root Cobra command for the mysql-mcp CLI.
// ABOUTME: Loads settings and manages the database client via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/harperreed/mysql-mcp/internal/config"
	"github.com/harperreed/mysql-mcp/internal/database"
)

var (
	envFile  string
	verbose  bool
	logger   = slog.New(slog.DiscardHandler)
	settings config.Settings
	dbClient *database.Client
)

// newClient builds the database client for the loaded settings.
var newClient = func(s config.Settings, log *slog.Logger) (*database.Client, error) {
	acc, err := database.NewAccessor(s, log)
	if err != nil {
		return nil, err
	}
	return database.NewClient(acc, s.Database, log), nil
}

var rootCmd = &cobra.Command{
	Use:   "mysql-mcp",
	Short: "MCP server for a MySQL database",
	Long: `mysql-mcp exposes a MySQL database to AI assistants over the
Model Context Protocol (MCP).

WHAT IT PROVIDES:

  execute_sql              Tool: run one SQL statement, get rows or an affected count
  mysql://tables           Resource: names of all tables in the database
  mysql://tables/{table}   Resource: column layout of one table

CONFIGURATION:

  Connection settings come from the environment (or a .env file):

  MYSQL_HOST       server host (required)
  MYSQL_PORT       server port (default 3306)
  MYSQL_USER       user name (required)
  MYSQL_PASSWORD   password (required)
  MYSQL_DATABASE   database name (required)
  MYSQL_CERT       CA certificate (PEM or DER); enables TLS when set
  MYSQL_CHARSET    connection charset (default utf8mb4)

  Optional tuning: MYSQL_COLLATION, MYSQL_SQL_MODE, MYSQL_CONNECT_TIMEOUT,
  MYSQL_SSL_VERIFY_IDENTITY, MYSQL_POOL.

QUICK START:

  $ mysql-mcp ping                        # Check the connection
  $ mysql-mcp tables                      # List tables
  $ mysql-mcp describe users              # Show a table's columns
  $ mysql-mcp query "SELECT COUNT(*) FROM users"
  $ mysql-mcp serve                       # Start the MCP server on stdio

MCP INTEGRATION:

  Add to your MCP client configuration:

  {
    "mcpServers": {
      "mysql": {
        "command": "mysql-mcp",
        "args": ["serve"],
        "env": {
          "MYSQL_HOST": "localhost",
          "MYSQL_USER": "app",
          "MYSQL_PASSWORD": "secret",
          "MYSQL_DATABASE": "app"
        }
      }
    }
  }

SECURITY:

  Statements run exactly as written with the configured user's privileges.
  Use a least-privilege MySQL account.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(cmd.ErrOrStderr(), verbose)

		// Skip database setup for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		s, err := config.Load()
		if err != nil {
			return err
		}
		settings = s

		client, err := newClient(s, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database client: %w", err)
		}
		dbClient = client
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if dbClient == nil {
			return nil
		}
		err := dbClient.Close()
		dbClient = nil
		return err
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "load environment variables from this file if it exists")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
