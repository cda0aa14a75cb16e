// ABOUTME: MCP resource implementations for schema introspection.
// ABOUTME: Provides mysql://tables and the mysql://tables/{table} template.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/mysql-mcp/internal/database"
)

const (
	tablesURI        = "mysql://tables"
	tableURITemplate = "mysql://tables/{table}"
	tableURIPrefix   = tablesURI + "/"
	jsonMIMEType     = "application/json"
	tablesHandler    = "tables_resource"
	describeHandler  = "describe_resource"
)

func (s *Server) registerResources() {
	// mysql://tables - every table in the configured database
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         tablesURI,
		Name:        "tables",
		Title:       "Tables",
		Description: "Names of all tables in the configured database",
		MIMEType:    jsonMIMEType,
	}, s.handleTablesResource)

	// mysql://tables/{table} - column layout of one table
	s.mcpServer.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: tableURITemplate,
		Name:        "table",
		Title:       "Table structure",
		Description: "Columns of a table as a JSON array of {name, type, nullable, key, default, extra}; the row count is in _meta",
		MIMEType:    jsonMIMEType,
	}, s.handleTableResource)
}

// Resource handlers

func (s *Server) handleTablesResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	var result *mcp.ReadResourceResult
	err := s.track(tablesHandler, func(log *slog.Logger) error {
		tables, err := s.db.ListTables(ctx)
		if err != nil {
			return fmt.Errorf("failed to list tables: %w", err)
		}
		log.Debug("mcp: listed tables", "count", len(tables))

		result, err = jsonResource(req.Params.URI, tables)
		return err
	})
	return result, err
}

func (s *Server) handleTableResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	table, ok := tableFromURI(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	var result *mcp.ReadResourceResult
	err := s.track(describeHandler, func(log *slog.Logger) error {
		desc, err := s.db.DescribeTable(ctx, table)
		if err != nil {
			return fmt.Errorf("failed to describe table %q: %w", table, err)
		}
		log.Debug("mcp: described table", "table", table, "columns", len(desc.Columns))

		result, err = jsonResource(req.Params.URI, desc.Columns)
		if err != nil {
			return err
		}
		result.Contents[0].Meta = tableMeta(desc)
		return nil
	})
	return result, err
}

// tableMeta carries the table name and, for existing tables, the row count
// next to the column list.
func tableMeta(desc *database.TableDescriptor) mcp.Meta {
	meta := mcp.Meta{"table": desc.Table}
	if desc.RowCount != nil {
		meta["row_count"] = *desc.RowCount
	}
	return meta
}

// tableFromURI extracts and unescapes the table segment of a
// mysql://tables/{table} URI.
func tableFromURI(uri string) (string, bool) {
	raw, ok := strings.CutPrefix(uri, tableURIPrefix)
	if !ok || raw == "" || strings.Contains(raw, "/") {
		return "", false
	}
	table, err := url.PathUnescape(raw)
	if err != nil || table == "" {
		return "", false
	}
	return table, true
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: jsonMIMEType,
				Text:     string(data),
			},
		},
	}, nil
}
