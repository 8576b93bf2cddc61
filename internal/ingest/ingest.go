// Package ingest loads report inventories from CSV, JSON and Parquet files.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/huangsam/sqlscope/internal/parquet"
	"github.com/huangsam/sqlscope/schema"
)

// Input formats understood by LoadFile.
const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatParquet = "parquet"
)

var (
	// ErrNoSQLColumn is returned when an inventory has no column holding SQL text.
	ErrNoSQLColumn = errors.New("no SQL column found, expected 'Query SQL' or similar")

	// ErrUnsupportedFormat is returned for an unknown format or file extension.
	ErrUnsupportedFormat = errors.New("unsupported input format")
)

// field is a canonical inventory column.
type field int

const (
	nameField field = iota
	idField
	sqlField
	ownerField
)

// columnAliases maps lower-cased header names to canonical columns.
var columnAliases = map[string]field{
	"report name":  nameField,
	"reportname":   nameField,
	"name":         nameField,
	"report id":    idField,
	"reportid":     idField,
	"id":           idField,
	"query sql":    sqlField,
	"querysql":     sqlField,
	"sql":          sqlField,
	"sql text":     sqlField,
	"report owner": ownerField,
	"owner":        ownerField,
}

// canonicalColumn resolves a header cell. Underscores and dashes count as spaces.
func canonicalColumn(header string) (field, bool) {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	f, ok := columnAliases[key]
	return f, ok
}

// DetectFormat returns format when set, otherwise the format implied by the extension of path.
func DetectFormat(path, format string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case FormatCSV, FormatJSON, FormatParquet:
		return format, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// LoadFile reads every report of the inventory at path.
func LoadFile(path, format string) ([]schema.ReportRecord, error) {
	format, err := DetectFormat(path, format)
	if err != nil {
		return nil, err
	}
	if format == FormatParquet {
		rows, err := parquet.ReadReportRowsParquet(path)
		if err != nil {
			return nil, err
		}
		return fromParquetRows(rows), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if format == FormatJSON {
		return ReadJSON(f)
	}
	return ReadCSV(f)
}

// ReadCSV reads a CSV inventory with a header row.
func ReadCSV(r io.Reader) ([]schema.ReportRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []schema.ReportRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	positions := map[field]int{}
	for i, cell := range header {
		if f, ok := canonicalColumn(cell); ok {
			if _, seen := positions[f]; !seen {
				positions[f] = i
			}
		}
	}
	if _, ok := positions[sqlField]; !ok {
		return nil, ErrNoSQLColumn
	}

	records := []schema.ReportRecord{}
	for row := 0; ; row++ {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", row, err)
		}
		values := make(map[field]string, len(positions))
		for f, i := range positions {
			if i < len(cells) {
				values[f] = cells[i]
			}
		}
		records = append(records, newRecord(row, values))
	}
	return records, nil
}

// ReadJSON reads a JSON array of report objects. Keys follow the CSV header aliases.
func ReadJSON(r io.Reader) ([]schema.ReportRecord, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		if errors.Is(err, io.EOF) {
			return []schema.ReportRecord{}, nil
		}
		return nil, fmt.Errorf("failed to decode JSON inventory: %w", err)
	}

	records := make([]schema.ReportRecord, 0, len(rows))
	sawSQL := false
	for row, obj := range rows {
		values := make(map[field]string, len(obj))
		for key, raw := range obj {
			f, ok := canonicalColumn(key)
			if !ok {
				continue
			}
			if f == sqlField {
				sawSQL = true
			}
			if raw != nil {
				values[f] = jsonText(raw)
			}
		}
		records = append(records, newRecord(row, values))
	}
	if len(rows) > 0 && !sawSQL {
		return nil, ErrNoSQLColumn
	}
	return records, nil
}

func jsonText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func fromParquetRows(rows []parquet.ReportRow) []schema.ReportRecord {
	records := make([]schema.ReportRecord, len(rows))
	for row, r := range rows {
		values := map[field]string{}
		for f, p := range map[field]*string{nameField: r.ReportName, idField: r.ReportID, sqlField: r.QuerySQL, ownerField: r.Owner} {
			if p != nil {
				values[f] = *p
			}
		}
		records[row] = newRecord(row, values)
	}
	return records
}

// Normalize applies the ingestion defaults to records decoded by another surface.
// A nil slice stays nil.
func Normalize(records []schema.ReportRecord) []schema.ReportRecord {
	if records == nil {
		return nil
	}
	out := make([]schema.ReportRecord, len(records))
	for row, r := range records {
		out[row] = newRecord(row, map[field]string{
			idField:    r.ID,
			nameField:  r.Name,
			ownerField: r.Owner,
			sqlField:   r.SQLText,
		})
	}
	return out
}

// newRecord fills in defaults: a blank name becomes Report_<row> and a blank id the row index.
func newRecord(row int, values map[field]string) schema.ReportRecord {
	rec := schema.ReportRecord{
		ID:      strings.TrimSpace(values[idField]),
		Name:    strings.TrimSpace(values[nameField]),
		Owner:   strings.TrimSpace(values[ownerField]),
		SQLText: strings.TrimSpace(values[sqlField]),
	}
	if rec.Name == "" {
		rec.Name = "Report_" + strconv.Itoa(row)
	}
	if rec.ID == "" {
		rec.ID = strconv.Itoa(row)
	}
	return rec
}
