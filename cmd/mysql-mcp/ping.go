// ABOUTME: CLI command for checking database connectivity.
// ABOUTME: Runs the same SELECT VERSION() probe the server uses at startup.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the database is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()
		serverVersion, err := dbClient.ServerVersion(cmd.Context())
		if err != nil {
			return err
		}
		took := time.Since(start).Round(time.Millisecond)

		out := cmd.OutOrStdout()
		color.New(color.FgGreen).Fprint(out, "✓ ")
		fmt.Fprintf(out, "connected to %s/%s (MySQL %s) in %s\n", settings.Addr(), dbClient.Database(), serverVersion, took)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
