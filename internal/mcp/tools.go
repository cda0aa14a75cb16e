// ABOUTME: MCP tool implementations for running SQL.
// ABOUTME: Provides execute_sql, which returns rows or an affected-row count.
package mcp

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const executeSQLTool = "execute_sql"

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: executeSQLTool,
		Description: "Execute a single SQL statement against the configured MySQL database. " +
			"Statements that produce a result set (SELECT, SHOW, DESCRIBE, EXPLAIN, ...) return their rows; " +
			"all others return the number of affected rows.",
	}, s.handleExecuteSQL)
}

// Tool input/output types

type executeSQLInput struct {
	Query string `json:"query" jsonschema:"The SQL statement to execute. It is sent to the server exactly as written."`
}

const (
	kindRows     = "rows"
	kindAffected = "affected"
)

type executeSQLOutput struct {
	Kind         string           `json:"kind" jsonschema:"rows when the statement produced a result set, affected otherwise"`
	Columns      []string         `json:"columns,omitempty" jsonschema:"Column names in result order"`
	Rows         []map[string]any `json:"rows,omitempty" jsonschema:"Result rows keyed by column name"`
	RowCount     int              `json:"row_count" jsonschema:"Number of rows returned"`
	AffectedRows int64            `json:"affected_rows" jsonschema:"Rows changed by a non-query statement"`
	LastInsertID int64            `json:"last_insert_id,omitempty" jsonschema:"Auto-increment id generated by an INSERT, if any"`
}

// Tool handlers

func (s *Server) handleExecuteSQL(ctx context.Context, req *mcp.CallToolRequest, input executeSQLInput) (*mcp.CallToolResult, executeSQLOutput, error) {
	var out executeSQLOutput
	err := s.track(executeSQLTool, func(log *slog.Logger) error {
		stmt := strings.TrimSpace(input.Query)
		if stmt == "" {
			return errors.New("query must not be empty")
		}
		log.Debug("mcp: executing statement", "statement", stmt)

		res, err := s.db.Execute(ctx, input.Query)
		if err != nil {
			return err
		}

		if !res.HasRows {
			out = executeSQLOutput{
				Kind:         kindAffected,
				AffectedRows: res.AffectedRows,
				LastInsertID: res.LastInsertID,
			}
			return nil
		}

		rows := make([]map[string]any, len(res.Rows))
		for i, r := range res.Rows {
			rows[i] = r
		}
		out = executeSQLOutput{
			Kind:     kindRows,
			Columns:  res.Columns,
			Rows:     rows,
			RowCount: len(rows),
		}
		return nil
	})
	if err != nil {
		return nil, executeSQLOutput{}, err
	}
	return nil, out, nil
}
