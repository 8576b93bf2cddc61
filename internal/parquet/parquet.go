// Package parquet provides data structures and functions for moving sqlscope
// data in and out of Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/sqlscope/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single batch analysis run with metadata.
// This struct maps to the sqlscope_analysis_runs database table.
type AnalysisRun struct {
	AnalysisID int64  `parquet:"analysis_id,snappy"`
	RunUUID    string `parquet:"run_uuid,snappy"`

	// StartTime is when the analysis began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	RunDurationMs *int32   `parquet:"run_duration_ms,optional,snappy"`
	TotalReports  int32    `parquet:"total_reports,snappy"`
	UniqueReports *int32   `parquet:"unique_reports,optional,snappy"`
	TotalHours    *float64 `parquet:"total_hours,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams   *string `parquet:"config_params,optional,snappy"`
	SourceLocation string  `parquet:"source_location,snappy"`
}

// ReportScore is the derived score of one report in an analysis.
// This struct maps to the sqlscope_report_scores database table.
type ReportScore struct {
	AnalysisID         int64   `parquet:"analysis_id,snappy"`
	ReportID           string  `parquet:"report_id,snappy"`
	ReportName         string  `parquet:"report_name,snappy"`
	Owner              *string `parquet:"owner,optional,snappy"`
	Fingerprint        string  `parquet:"fingerprint,snappy"`
	ComplexityScore    float64 `parquet:"complexity_score,snappy"`
	ComplexityCategory string  `parquet:"complexity_category,snappy"`
	EstimatedHours     float64 `parquet:"estimated_hours,snappy"`
	TableCount         int32   `parquet:"table_count,snappy"`
}

// DuplicateGroup is one exact or near duplicate group of an analysis.
// This struct maps to the sqlscope_duplicate_groups database table.
type DuplicateGroup struct {
	AnalysisID        int64   `parquet:"analysis_id,snappy"`
	GroupIndex        int32   `parquet:"group_index,snappy"`
	GroupType         string  `parquet:"group_type,snappy"`
	SimilarityPercent float64 `parquet:"similarity_percent,snappy"`
	MemberNames       string  `parquet:"member_names,snappy"` // newline separated
	Recommendation    string  `parquet:"recommendation,snappy"`
}

// ReportRow is one report of a Parquet inventory file. Every column is optional
// so that partial exports from BI tools can be read.
type ReportRow struct {
	ReportID   *string `parquet:"report_id,optional"`
	ReportName *string `parquet:"report_name,optional"`
	Owner      *string `parquet:"owner,optional"`
	QuerySQL   *string `parquet:"query_sql,optional"`
}

// writeParquet writes rows to outputPath, inferring the schema from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// readParquet reads every row of inputPath into T.
func readParquet[T any](inputPath string) ([]T, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	read := 0
	for read < len(rows) {
		n, err := reader.Read(rows[read:])
		read += n
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return rows[:read], nil
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteReportScoresParquet writes a slice of ReportScore structs to a Parquet file.
func WriteReportScoresParquet(data []ReportScore, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteDuplicateGroupsParquet writes a slice of DuplicateGroup structs to a Parquet file.
func WriteDuplicateGroupsParquet(data []DuplicateGroup, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteReportRowsParquet writes an inventory of reports to a Parquet file.
func WriteReportRowsParquet(data []ReportRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ReadReportRowsParquet reads an inventory of reports from a Parquet file.
func ReadReportRowsParquet(inputPath string) ([]ReportRow, error) {
	return readParquet[ReportRow](inputPath)
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:     record.AnalysisID,
			RunUUID:        record.RunUUID,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  record.RunDurationMs,
			TotalReports:   record.TotalReports,
			UniqueReports:  record.UniqueReports,
			TotalHours:     record.TotalHours,
			ConfigParams:   record.ConfigParams,
			SourceLocation: record.SourceLocation,
		}
	}
	return result
}

// ConvertReportScoreRecords converts schema.ReportScoreRecord to ReportScore for Parquet export.
func ConvertReportScoreRecords(records []schema.ReportScoreRecord) []ReportScore {
	result := make([]ReportScore, len(records))
	for i, record := range records {
		result[i] = ReportScore{
			AnalysisID:         record.AnalysisID,
			ReportID:           record.ReportID,
			ReportName:         record.ReportName,
			Owner:              record.Owner,
			Fingerprint:        record.Fingerprint,
			ComplexityScore:    record.ComplexityScore,
			ComplexityCategory: record.ComplexityCategory,
			EstimatedHours:     record.EstimatedHours,
			TableCount:         record.TableCount,
		}
	}
	return result
}

// ConvertDuplicateGroupRecords converts schema.DuplicateGroupRecord to DuplicateGroup for Parquet export.
func ConvertDuplicateGroupRecords(records []schema.DuplicateGroupRecord) []DuplicateGroup {
	result := make([]DuplicateGroup, len(records))
	for i, record := range records {
		result[i] = DuplicateGroup(record)
	}
	return result
}
