// ABOUTME: Lightweight SQL statement inspection.
// ABOUTME: Finds the leading keyword of a statement past comments and literals.
package database

import (
	"strings"
	"unicode"
)

// insertKeywords lead statements that can generate an auto-increment id.
var insertKeywords = map[string]bool{
	"INSERT":  true,
	"REPLACE": true,
}

// StripStringsAndComments blanks out comments and replaces quoted literals
// and identifiers with empty placeholders so keyword scanning cannot be
// fooled by their contents.
func StripStringsAndComments(sql string) string {
	var b strings.Builder
	b.Grow(len(sql))

	n := len(sql)
	for i := 0; i < n; {
		c := sql[i]
		switch {
		case c == '-' && i+1 < n && sql[i+1] == '-', c == '#':
			for i < n && sql[i] != '\n' {
				i++
			}
			b.WriteByte(' ')
		case c == '/' && i+1 < n && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				i = n
			} else {
				i += end + 4
			}
			b.WriteByte(' ')
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(sql, i)
			b.WriteByte(c)
			b.WriteByte(c)
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// skipQuoted returns the index just past the literal opened at sql[start].
// Doubled quotes and backslash escapes stay inside the literal; backticks
// do not honour backslashes.
func skipQuoted(sql string, start int) int {
	q := sql[start]
	n := len(sql)
	i := start + 1
	for i < n {
		switch {
		case sql[i] == '\\' && q != '`' && i+1 < n:
			i += 2
		case sql[i] == q && i+1 < n && sql[i+1] == q:
			i += 2
		case sql[i] == q:
			return i + 1
		default:
			i++
		}
	}
	return n
}

// LeadingKeyword returns the first word of the statement in upper case,
// ignoring comments, whitespace, and opening parentheses.
func LeadingKeyword(sql string) string {
	s := strings.TrimLeftFunc(StripStringsAndComments(sql), func(r rune) bool {
		return unicode.IsSpace(r) || r == '('
	})
	end := strings.IndexFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || r == '_')
	})
	if end >= 0 {
		s = s[:end]
	}
	return strings.ToUpper(s)
}

// GeneratesInsertID reports whether sql can produce a new auto-increment id.
func GeneratesInsertID(sql string) bool {
	return insertKeywords[LeadingKeyword(sql)]
}
