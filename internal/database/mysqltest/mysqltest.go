// ABOUTME: Starts a disposable MySQL server in a container for integration tests.
// ABOUTME: Returns Settings pointing at it; skips when Docker is unavailable.
package mysqltest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/harperreed/mysql-mcp/internal/config"
)

const (
	DefaultImage = "mysql:8.0.36"
	Database     = "mcp_test"
	Username     = "mcp"
	Password     = "mcp-password"
)

// New starts a MySQL container and returns settings for it. The container
// is removed when the test ends.
func New(t *testing.T) config.Settings {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MySQL container test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := t.Context()

	var container *tcmysql.MySQLContainer
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		var err error
		container, err = tcmysql.Run(ctx, DefaultImage,
			tcmysql.WithDatabase(Database),
			tcmysql.WithUsername(Username),
			tcmysql.WithPassword(Password),
		)
		testcontainers.CleanupContainer(t, container)
		if err != nil {
			lastErr = err
			if isRetryableStartErr(err) && attempt < 3 {
				time.Sleep(time.Duration(attempt) * 750 * time.Millisecond)
				continue
			}
			require.NoError(t, err)
		}
		lastErr = nil
		break
	}
	require.NoError(t, lastErr, "failed to start MySQL container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	s := config.Defaults()
	s.Host = host
	s.Port = port.Int()
	s.User = Username
	s.Password = Password
	s.Database = Database
	return s
}

func isRetryableStartErr(err error) bool {
	s := err.Error()
	return strings.Contains(s, "wait until ready") ||
		strings.Contains(s, "port not found") ||
		strings.Contains(s, "connection reset")
}
