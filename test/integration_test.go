// ABOUTME: Integration tests for the mysql-mcp binary.
// ABOUTME: Builds the CLI and checks startup behavior without a database.
package test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildBinary compiles the CLI into a temp directory.
func buildBinary(t *testing.T) string {
	t.Helper()
	projectRoot, _ := filepath.Abs("..")
	binary := filepath.Join(t.TempDir(), "mysql-mcp")

	buildCmd := exec.Command("go", "build", "-o", binary, "./cmd/mysql-mcp")
	buildCmd.Dir = projectRoot
	output, err := buildCmd.CombinedOutput()
	require.NoError(t, err, "failed to build:\n%s", output)
	return binary
}

// cleanEnv returns the process environment without any MYSQL_* variables.
func cleanEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "MYSQL_") {
			env = append(env, kv)
		}
	}
	return env
}

func TestStartupConfiguration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping binary build in -short mode")
	}
	binary := buildBinary(t)
	workDir := t.TempDir()

	run := func(extraEnv []string, args ...string) (string, error) {
		fullArgs := append([]string{"--env-file", filepath.Join(workDir, "none.env")}, args...)
		cmd := exec.Command(binary, fullArgs...)
		cmd.Dir = workDir
		cmd.Env = append(cleanEnv(), extraEnv...)
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	// Version needs no configuration
	output, err := run(nil, "version")
	require.NoError(t, err, "version failed:\n%s", output)
	assert.Contains(t, output, "mysql-mcp")

	// Every missing variable is named
	output, err = run(nil, "serve")
	require.Error(t, err, "serve without configuration should fail, got: %s", output)
	for _, name := range []string{"MYSQL_HOST", "MYSQL_USER", "MYSQL_PASSWORD", "MYSQL_DATABASE"} {
		assert.Contains(t, output, name)
	}

	// A single missing variable is named on its own
	output, err = run([]string{
		"MYSQL_HOST=127.0.0.1",
		"MYSQL_USER=app",
		"MYSQL_PASSWORD=secret",
	}, "serve")
	require.Error(t, err, "serve without MYSQL_DATABASE should fail, got: %s", output)
	assert.Contains(t, output, "MYSQL_DATABASE")
	assert.NotContains(t, output, "MYSQL_HOST", "only MYSQL_DATABASE should be named")
}

func TestEnvFileIsLoaded(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping binary build in -short mode")
	}
	binary := buildBinary(t)
	workDir := t.TempDir()

	envFile := filepath.Join(workDir, ".env")
	content := "MYSQL_HOST=127.0.0.1\nMYSQL_USER=app\nMYSQL_PASSWORD=secret\nMYSQL_PORT=not-a-port\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0600))

	cmd := exec.Command(binary, "ping")
	cmd.Dir = workDir
	cmd.Env = cleanEnv()
	out, err := cmd.CombinedOutput()
	output := string(out)
	require.Error(t, err, "ping with invalid port should fail, got: %s", output)
	assert.Contains(t, output, "MYSQL_PORT", ".env values should be validated")
	assert.Contains(t, output, "MYSQL_DATABASE")
	assert.NotContains(t, output, "MYSQL_HOST", "MYSQL_HOST from .env should have been loaded")
}
