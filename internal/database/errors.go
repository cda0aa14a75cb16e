// ABOUTME: Error taxonomy for database access.
// ABOUTME: Separates connection failures from statements the server rejected.
package database

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ConnectionError means the server could not be reached, authenticated
// against, or negotiated with (including TLS).
type ConnectionError struct {
	Addr  string
	Cause error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error: %s: %v", e.Addr, e.Cause)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// QueryError means the server (or driver) rejected a statement. The cause
// carries the driver message verbatim.
type QueryError struct {
	Query string
	Cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query error: %v", e.Cause)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

// MySQLNumber returns the server error number, or 0 when the cause did not
// come from the server.
func (e *QueryError) MySQLNumber() uint16 {
	var me *mysql.MySQLError
	if errors.As(e.Cause, &me) {
		return me.Number
	}
	return 0
}

// IsConnectionError reports whether err is, or wraps, a *ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
