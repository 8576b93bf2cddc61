// Package lineage extracts referenced tables and selected columns from SQL text.
//
// Extraction is pattern based: aliases, schema qualifiers and derived tables are
// not resolved.
package lineage

import (
	"regexp"
	"sort"
	"strings"

	"github.com/huangsam/sqlscope/core/sqltext"
	"github.com/huangsam/sqlscope/schema"
)

// MaxColumns caps the number of columns returned by Columns.
const MaxColumns = 50

var (
	tablePattern  = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([\p{L}\p{N}_]+)`)
	selectPattern = regexp.MustCompile(`(?i)\bSELECT\b`)
	fromPattern   = regexp.MustCompile(`(?i)\sFROM\s`)
	columnPattern = regexp.MustCompile(`[\p{L}\p{N}_][\p{L}\p{N}_.]*`)

	noiseWords = map[string]struct{}{
		"SELECT":   {},
		"DISTINCT": {},
		"AS":       {},
		"FROM":     {},
	}
)

// Tables returns the sorted, upper-cased, distinct identifiers that directly
// follow a FROM or JOIN keyword.
func Tables(sql string) []string {
	seen := make(map[string]struct{})
	for _, m := range tablePattern.FindAllStringSubmatch(sql, -1) {
		seen[strings.ToUpper(m[1])] = struct{}{}
	}
	tables := make([]string, 0, len(seen))
	for t := range seen {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	return tables
}

// Columns returns the words between the first SELECT and the FROM that follows it,
// without noise keywords or bare numbers, capped at MaxColumns.
func Columns(sql string) []string {
	columns := []string{}
	loc := selectPattern.FindStringIndex(sql)
	if loc == nil {
		return columns
	}
	rest := sql[loc[1]:]
	end := fromPattern.FindStringIndex(rest)
	if end == nil {
		return columns
	}
	for _, word := range columnPattern.FindAllString(rest[:end[0]], -1) {
		upper := strings.ToUpper(word)
		if _, noise := noiseWords[upper]; noise || sqltext.IsNumberLiteral(word) {
			continue
		}
		columns = append(columns, word)
		if len(columns) == MaxColumns {
			break
		}
	}
	return columns
}

// Extract returns both tables and columns of sql.
func Extract(sql string) schema.Lineage {
	return schema.Lineage{Tables: Tables(sql), Columns: Columns(sql)}
}
