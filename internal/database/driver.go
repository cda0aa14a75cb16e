// ABOUTME: Translates Settings into a go-sql-driver/mysql configuration.
// ABOUTME: Applies charset, collation, sql_mode, timeouts, and TLS.
package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/harperreed/mysql-mcp/internal/config"
)

// DriverConfig builds the driver configuration for s. It fails only when the
// certificate cannot be read or parsed.
func DriverConfig(s config.Settings) (*mysql.Config, error) {
	cfg := mysql.NewConfig()
	cfg.User = s.User
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = s.Addr()
	cfg.DBName = s.Database
	cfg.Timeout = s.ConnectTimeout
	cfg.ReadTimeout = 0
	cfg.WriteTimeout = 0

	if err := cfg.Apply(mysql.Charset(s.Charset, collationFor(s.Charset, s.Collation))); err != nil {
		return nil, fmt.Errorf("apply charset: %w", err)
	}

	if s.SQLMode != "" {
		// Params are sent as SET statements, so the value needs quoting.
		cfg.Params = map[string]string{
			"sql_mode": "'" + strings.ReplaceAll(s.SQLMode, "'", "") + "'",
		}
	}

	if s.TLSEnabled() {
		tlsCfg, err := NewTLSConfig(s.CertPath, s.Host, s.VerifyIdentity)
		if err != nil {
			return nil, err
		}
		cfg.TLS = tlsCfg
	}

	return cfg, nil
}

// collationFor drops a collation that does not belong to charset so a custom
// MYSQL_CHARSET does not inherit the utf8mb4 default.
func collationFor(charset, collation string) string {
	if collation == "" {
		return ""
	}
	if collation == "binary" || strings.HasPrefix(collation, charset+"_") {
		return collation
	}
	return ""
}

// NewOpener returns an Opener that builds a fresh *sql.DB from cfg.
func NewOpener(cfg *mysql.Config) Opener {
	return func() (*sql.DB, error) {
		connector, err := mysql.NewConnector(cfg.Clone())
		if err != nil {
			return nil, err
		}
		return sql.OpenDB(connector), nil
	}
}

// Pool sizing for the shared accessor.
const (
	MaxIdleConns    = 5
	MaxOpenConns    = 10
	ConnMaxLifetime = time.Hour
)
