// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Serves over stdio by default or streamable HTTP, with optional metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/harperreed/mysql-mcp/internal/mcp"
	"github.com/harperreed/mysql-mcp/internal/metrics"
)

var (
	serveHTTPAddr    string
	serveMetricsAddr string
	serveAuthTokens  []string
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"mcp"},
	Short:   "Start the MCP server",
	Long: `Start the Model Context Protocol (MCP) server.

By default the server communicates over stdin/stdout. Logs go to stderr.
Before serving, the server runs SELECT VERSION() and exits if the database
cannot be reached.

TRANSPORTS:

  stdio (default)     for desktop MCP clients that launch the process
  --http-addr ADDR    streamable HTTP on ADDR, with /healthz and /readyz probes

AVAILABLE TOOLS:

  execute_sql              Run one SQL statement

AVAILABLE RESOURCES:

  mysql://tables           Table names in the configured database
  mysql://tables/{table}   Columns of one table

EXAMPLES:

  mysql-mcp serve
  mysql-mcp serve --http-addr 127.0.0.1:8010 --auth-token "$TOKEN"
  mysql-mcp serve --metrics-addr 127.0.0.1:9090`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		logger.Info("starting mysql-mcp", "version", version, "mysql", settings)

		serverVersion, err := dbClient.ServerVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		logger.Info("connected to MySQL", "server_version", serverVersion)

		server, err := mcp.NewServer(dbClient, mcp.Options{
			Version: version,
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		metricsErrCh := make(chan error, 1)
		if serveMetricsAddr != "" {
			metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)
			listener, err := net.Listen("tcp", serveMetricsAddr)
			if err != nil {
				return fmt.Errorf("failed to start prometheus metrics listener: %w", err)
			}
			defer listener.Close()
			logger.Info("prometheus metrics server listening", "address", listener.Addr().String())

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			go func() {
				if err := http.Serve(listener, mux); err != nil && !errors.Is(err, net.ErrClosed) {
					metricsErrCh <- fmt.Errorf("metrics server: %w", err)
				}
			}()
		}

		serverErrCh := make(chan error, 1)
		go func() {
			if serveHTTPAddr != "" {
				serverErrCh <- server.ListenAndServe(ctx, serveHTTPAddr, mcp.HTTPOptions{AuthTokens: serveAuthTokens})
				return
			}
			serverErrCh <- server.Serve(ctx)
		}()

		select {
		case err := <-serverErrCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("mysql-mcp stopped")
			return nil
		case err := <-metricsErrCh:
			return err
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http-addr", "", "serve streamable HTTP on this address instead of stdio")
	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	serveCmd.Flags().StringSliceVar(&serveAuthTokens, "auth-token", nil, "bearer token accepted by the HTTP transport (repeatable)")
	rootCmd.AddCommand(serveCmd)
}
