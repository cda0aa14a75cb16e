// ABOUTME: High-level database operations used by the MCP handlers and CLI.
// ABOUTME: Every call leases a connection and always releases it.
package database

import (
	"context"
	"log/slog"
)

// Client runs statements and introspection against the configured database.
type Client struct {
	acc      Accessor
	database string
	dialect  Dialect
	log      *slog.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithDialect swaps the MySQL dialect for another engine.
func WithDialect(d Dialect) ClientOption {
	return func(c *Client) {
		c.dialect = d
	}
}

// NewClient returns a client scoped to database. A nil logger discards.
func NewClient(acc Accessor, database string, log *slog.Logger, opts ...ClientOption) *Client {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	c := &Client{acc: acc, database: database, dialect: MySQL, log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Database returns the schema name used for introspection.
func (c *Client) Database() string {
	return c.database
}

func (c *Client) withConn(ctx context.Context, fn func(*Conn) error) error {
	conn, err := c.acc.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			c.log.Warn("database: failed to release connection", "error", cerr)
		}
	}()
	return fn(conn)
}

// Execute runs one statement.
func (c *Client) Execute(ctx context.Context, stmt string) (*Result, error) {
	var res *Result
	err := c.withConn(ctx, func(conn *Conn) error {
		var err error
		res, err = Run(ctx, conn.Conn, c.dialect, stmt)
		return err
	})
	return res, err
}

// ListTables returns the tables in the configured database.
func (c *Client) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	err := c.withConn(ctx, func(conn *Conn) error {
		var err error
		tables, err = ListTables(ctx, conn, c.database)
		return err
	})
	return tables, err
}

// DescribeTable returns the column layout of table.
func (c *Client) DescribeTable(ctx context.Context, table string) (*TableDescriptor, error) {
	var desc *TableDescriptor
	err := c.withConn(ctx, func(conn *Conn) error {
		var err error
		desc, err = DescribeTable(ctx, conn, c.database, table)
		return err
	})
	return desc, err
}

// ServerVersion asks the server for its version string. It doubles as the
// startup reachability probe.
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	var version string
	err := c.withConn(ctx, func(conn *Conn) error {
		if err := conn.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
			return &QueryError{Query: "SELECT VERSION()", Cause: err}
		}
		return nil
	})
	return version, err
}

// Close releases any pooled resources.
func (c *Client) Close() error {
	return c.acc.Close()
}
