// ABOUTME: Connection acquisition strategies.
// ABOUTME: PerRequest opens and closes a connection per call; Pooled shares one pool.
package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/harperreed/mysql-mcp/internal/config"
)

// Accessor hands out a connection for the duration of one request.
type Accessor interface {
	Acquire(ctx context.Context) (*Conn, error)
	Close() error
}

// Conn is a leased connection. Close must be called exactly once.
type Conn struct {
	*sql.Conn
	db *sql.DB
}

// Close returns the connection. For per-request connections it also tears
// down the underlying handle.
func (c *Conn) Close() error {
	err := c.Conn.Close()
	if c.db != nil {
		err = errors.Join(err, c.db.Close())
	}
	return err
}

// Opener creates a database handle. It must not dial; dialing happens on
// first use.
type Opener func() (*sql.DB, error)

// PerRequest opens a fresh connection for every Acquire.
type PerRequest struct {
	open Opener
	addr string
}

// NewPerRequest returns an accessor that dials addr through open on each call.
func NewPerRequest(open Opener, addr string) *PerRequest {
	return &PerRequest{open: open, addr: addr}
}

func (p *PerRequest) Acquire(ctx context.Context) (*Conn, error) {
	db, err := p.open()
	if err != nil {
		return nil, &ConnectionError{Addr: p.addr, Cause: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Addr: p.addr, Cause: err}
	}
	return &Conn{Conn: conn, db: db}, nil
}

// Close is a no-op; nothing outlives a request.
func (p *PerRequest) Close() error {
	return nil
}

// Pooled leases connections from one long-lived pool.
type Pooled struct {
	db   *sql.DB
	addr string
}

// NewPooled wraps db and applies the pool limits.
func NewPooled(db *sql.DB, addr string) *Pooled {
	db.SetMaxIdleConns(MaxIdleConns)
	db.SetMaxOpenConns(MaxOpenConns)
	db.SetConnMaxLifetime(ConnMaxLifetime)
	return &Pooled{db: db, addr: addr}
}

func (p *Pooled) Acquire(ctx context.Context) (*Conn, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, &ConnectionError{Addr: p.addr, Cause: err}
	}
	return &Conn{Conn: conn}, nil
}

func (p *Pooled) Close() error {
	return p.db.Close()
}

// NewAccessor builds the accessor selected by s. Certificate problems are
// reported here as a *ConnectionError so they surface before serving.
func NewAccessor(s config.Settings, log *slog.Logger) (Accessor, error) {
	cfg, err := DriverConfig(s)
	if err != nil {
		return nil, &ConnectionError{Addr: s.Addr(), Cause: err}
	}
	open := NewOpener(cfg)

	if !s.Pooled {
		log.Debug("database: using per-request connections", "addr", s.Addr())
		return NewPerRequest(open, s.Addr()), nil
	}

	db, err := open()
	if err != nil {
		return nil, &ConnectionError{Addr: s.Addr(), Cause: err}
	}
	log.Debug("database: using pooled connections", "addr", s.Addr(), "max_open", MaxOpenConns)
	return NewPooled(db, s.Addr()), nil
}
