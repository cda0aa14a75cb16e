// ABOUTME: Human-readable rendering of query results and table layouts.
// ABOUTME: Shared by the query, tables, and describe commands.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/harperreed/mysql-mcp/internal/database"
)

const maxCellWidth = 40

func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}

func padRight(s string, length int) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}

// formatValue renders a result value for a terminal cell.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return strings.ReplaceAll(x, "\n", `\n`)
	default:
		return fmt.Sprint(x)
	}
}

// renderTable writes rows as aligned columns with a bold header.
func renderTable(w io.Writer, columns []string, rows [][]string) {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = utf8.RuneCountInString(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	bold := color.New(color.Bold)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = padRight(c, widths[i])
	}
	fmt.Fprintln(w, bold.Sprint(strings.TrimRight(strings.Join(header, "  "), " ")))

	faint := color.New(color.Faint)
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			padded := padRight(cell, widths[i])
			if cell == "NULL" {
				padded = faint.Sprint(padded)
			}
			cells[i] = padded
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

// renderResult prints a statement result in table form.
func renderResult(w io.Writer, res *database.Result) {
	if !res.HasRows {
		color.New(color.FgGreen).Fprintf(w, "Query OK, %d %s affected", res.AffectedRows, plural(res.AffectedRows, "row", "rows"))
		if res.LastInsertID != 0 {
			fmt.Fprintf(w, " (last insert id %d)", res.LastInsertID)
		}
		fmt.Fprintln(w)
		return
	}

	rows := make([][]string, len(res.Rows))
	for i, r := range res.Rows {
		cells := make([]string, len(res.Columns))
		for j, c := range res.Columns {
			cells[j] = truncate(formatValue(r[c]), maxCellWidth)
		}
		rows[i] = cells
	}
	renderTable(w, res.Columns, rows)
	color.New(color.Faint).Fprintf(w, "%d %s in set\n", len(res.Rows), plural(int64(len(res.Rows)), "row", "rows"))
}

// renderDescriptor prints columns the way DESCRIBE does.
func renderDescriptor(w io.Writer, desc *database.TableDescriptor) {
	rows := make([][]string, len(desc.Columns))
	for i, c := range desc.Columns {
		null := "NO"
		if c.Nullable {
			null = "YES"
		}
		def := "NULL"
		if c.Default != nil {
			def = *c.Default
		}
		rows[i] = []string{c.Name, c.Type, null, c.Key, def, c.Extra}
	}
	renderTable(w, []string{"Field", "Type", "Null", "Key", "Default", "Extra"}, rows)
	if desc.RowCount != nil {
		color.New(color.Faint).Fprintf(w, "%d %s in table\n", *desc.RowCount, plural(*desc.RowCount, "row", "rows"))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
