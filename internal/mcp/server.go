// ABOUTME: MCP server exposing a MySQL database.
// ABOUTME: Wraps the go-sdk server with the database client, logging, and metrics.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/mysql-mcp/internal/database"
	"github.com/harperreed/mysql-mcp/internal/metrics"
)

const serverName = "mysql-mcp"

const instructions = `Access to a single MySQL database.
Read mysql://tables for the table list and mysql://tables/{table} for a table's columns.
Use execute_sql to run one statement at a time; statements run exactly as written.`

// Database is the set of operations the handlers need.
// *database.Client satisfies it.
type Database interface {
	Execute(ctx context.Context, stmt string) (*database.Result, error)
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) (*database.TableDescriptor, error)
	ServerVersion(ctx context.Context) (string, error)
}

// Options configures a Server.
type Options struct {
	Version string
	Logger  *slog.Logger
}

// Server wraps the MCP server with database access.
type Server struct {
	mcpServer *mcp.Server
	db        Database
	log       *slog.Logger
}

// NewServer creates a new MCP server backed by db.
func NewServer(db Database, opts Options) (*Server, error) {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: opts.Version,
		},
		&mcp.ServerOptions{
			Instructions: instructions,
			Logger:       opts.Logger,
		},
	)

	s := &Server{
		mcpServer: mcpServer,
		db:        db,
		log:       opts.Logger,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve runs the MCP server over stdio until ctx is done or the client
// disconnects.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// track runs fn with a request-scoped logger and records the outcome.
func (s *Server) track(handler string, fn func(log *slog.Logger) error) error {
	log := s.log.With("handler", handler, "request_id", uuid.NewString())
	start := time.Now()

	err := fn(log)

	took := time.Since(start)
	metrics.ObserveRequest(handler, took, err)
	if err != nil {
		if database.IsConnectionError(err) {
			metrics.ConnectionErrors.Inc()
		}
		attrs := []any{"duration", took, "error", err}
		var qe *database.QueryError
		if errors.As(err, &qe) && qe.MySQLNumber() != 0 {
			attrs = append(attrs, "mysql_error", qe.MySQLNumber())
		}
		log.Error("mcp: request failed", attrs...)
		return err
	}
	log.Debug("mcp: request completed", "duration", took)
	return nil
}
