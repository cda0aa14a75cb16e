// ABOUTME: MySQL connection settings loaded from the process environment.
// ABOUTME: Handles required variables, defaults, .env files, and type coercion.

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Defaults applied when the optional variables are unset.
const (
	DefaultPort           = 3306
	DefaultCharset        = "utf8mb4"
	DefaultCollation      = "utf8mb4_unicode_ci"
	DefaultSQLMode        = "TRADITIONAL"
	DefaultConnectTimeout = 10 * time.Second
)

// Settings holds everything needed to reach the database.
// It is built once at startup and never mutated afterwards.
type Settings struct {
	Host     string `env:"MYSQL_HOST,required,notEmpty"`
	Port     int    `env:"MYSQL_PORT"`
	User     string `env:"MYSQL_USER,required,notEmpty"`
	Password string `env:"MYSQL_PASSWORD,required,notEmpty"`
	Database string `env:"MYSQL_DATABASE,required,notEmpty"`

	// CertPath points at a CA certificate (PEM or DER). Empty disables TLS.
	CertPath string `env:"MYSQL_CERT"`

	Charset   string `env:"MYSQL_CHARSET"`
	Collation string `env:"MYSQL_COLLATION"`
	SQLMode   string `env:"MYSQL_SQL_MODE"`

	ConnectTimeout time.Duration `env:"MYSQL_CONNECT_TIMEOUT"`

	// VerifyIdentity additionally checks the server hostname against its
	// certificate. The chain is verified either way.
	VerifyIdentity bool `env:"MYSQL_SSL_VERIFY_IDENTITY"`

	// Pooled shares one connection pool across requests instead of
	// opening a connection per request.
	Pooled bool `env:"MYSQL_POOL"`
}

// Defaults returns Settings with every optional field at its default.
// Variables that are unset or empty leave these values in place.
func Defaults() Settings {
	return Settings{
		Port:           DefaultPort,
		Charset:        DefaultCharset,
		Collation:      DefaultCollation,
		SQLMode:        DefaultSQLMode,
		ConnectTimeout: DefaultConnectTimeout,
	}
}

// ConfigurationError reports missing or malformed environment variables.
// Vars names the variables involved, in declaration order.
type ConfigurationError struct {
	Vars  []string
	Cause error
}

func (e *ConfigurationError) Error() string {
	if len(e.Vars) == 0 {
		return fmt.Sprintf("configuration error: %v", e.Cause)
	}
	return fmt.Sprintf("configuration error: check %s: %v", strings.Join(e.Vars, ", "), e.Cause)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// Load reads settings from the process environment.
func Load() (Settings, error) {
	return parse(env.Options{})
}

// LoadFrom reads settings from an explicit environment map instead of the
// process environment.
func LoadFrom(environ map[string]string) (Settings, error) {
	if environ == nil {
		environ = map[string]string{}
	}
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Settings, error) {
	s := Defaults()
	if err := env.Parse(&s, opts); err != nil {
		return Settings{}, &ConfigurationError{Vars: implicatedVars(err), Cause: err}
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// implicatedVars maps an env parse error back to variable names. Missing
// variables are quoted by name, malformed ones by struct field.
func implicatedVars(err error) []string {
	msg := err.Error()
	var vars []string
	t := reflect.TypeOf(Settings{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("env"), ",")
		if name == "" {
			continue
		}
		if strings.Contains(msg, `"`+name+`"`) || strings.Contains(msg, `field "`+f.Name+`"`) {
			vars = append(vars, name)
		}
	}
	return vars
}

func (s *Settings) validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return &ConfigurationError{
			Vars:  []string{"MYSQL_PORT"},
			Cause: fmt.Errorf("port must be between 1 and 65535, got %d", s.Port),
		}
	}
	if s.ConnectTimeout < 0 {
		return &ConfigurationError{
			Vars:  []string{"MYSQL_CONNECT_TIMEOUT"},
			Cause: errors.New("timeout must not be negative"),
		}
	}
	if strings.TrimSpace(s.Charset) == "" {
		s.Charset = DefaultCharset
	}
	if strings.TrimSpace(s.Charset) == "" {
		s.Charset = DefaultCharset
	}
	s.SQLMode = strings.Trim(s.SQLMode, "'\" ")
	return nil
}

// LoadDotEnv loads variables from a .env file without overriding values
// already present in the environment. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Addr returns the host:port pair used to dial the server.
func (s Settings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// TLSEnabled reports whether a certificate was configured.
func (s Settings) TLSEnabled() bool {
	return s.CertPath != ""
}

// LogValue implements slog.LogValuer so the password never reaches the logs.
func (s Settings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", s.Addr()),
		slog.String("user", s.User),
		slog.String("database", s.Database),
		slog.String("charset", s.Charset),
		slog.Bool("tls", s.TLSEnabled()),
		slog.Bool("pooled", s.Pooled),
	)
}
