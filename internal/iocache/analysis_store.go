package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable    = "sqlscope_analysis_runs"
	reportScoresTable    = "sqlscope_report_scores"
	duplicateGroupsTable = "sqlscope_duplicate_groups"
)

// analysisTables lists every table owned by the analysis store, children first.
var analysisTables = []string{duplicateGroupsTable, reportScoresTable, analysisRunsTable}

// AnalysisStoreImpl records analysis runs with their report scores and duplicate groups.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	newUUID func() string
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore migrates the schema to the latest version and opens the store.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (*AnalysisStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend}, nil
	}
	db, err := openDB(backend, connStr, contract.GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := applyMigrations(db, backend, connStr); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newAnalysisStoreWithDB(db, backend), nil
}

func newAnalysisStoreWithDB(db *sql.DB, backend schema.DatabaseBackend) *AnalysisStoreImpl {
	return &AnalysisStoreImpl{db: db, backend: backend, newUUID: uuid.NewString}
}

func (as *AnalysisStoreImpl) disabled() bool {
	return as.backend == schema.NoneBackend || as.db == nil
}

func (as *AnalysisStoreImpl) table(name string) string {
	return quoteTableName(name, as.backend)
}

// BeginAnalysis creates a run row and returns its ID. Each run also gets a random UUID
// so exported runs from different databases stay distinguishable.
func (as *AnalysisStoreImpl) BeginAnalysis(startTime time.Time, source string, configParams map[string]any) (int64, error) {
	if as.disabled() {
		return 0, nil
	}
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}
	args := []any{as.newUUID(), formatTime(startTime, as.backend), string(configJSON), source}

	var analysisID int64
	if as.backend == schema.PostgreSQLBackend {
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params, source_location) VALUES ($1, $2, $3, $4) RETURNING analysis_id`,
			as.table(analysisRunsTable))
		err = as.db.QueryRow(query, args...).Scan(&analysisID)
	} else {
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, config_params, source_location) VALUES (?, ?, ?, ?)`,
			as.table(analysisRunsTable))
		var result sql.Result
		if result, err = as.db.Exec(query, args...); err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis stores the end time, duration and batch totals of a run.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, summary *schema.AnalysisSummary) error {
	if as.disabled() {
		return nil
	}

	var start timeScanner
	query := rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = ?`, as.table(analysisRunsTable)), as.backend)
	if err := as.db.QueryRow(query, analysisID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	durationMs := endTime.Sub(start.Time).Milliseconds()

	var total, unique int
	var hours float64
	if summary != nil {
		total, unique, hours = summary.ReportCount, summary.UniqueCount, summary.TotalEstimatedHours
	}

	update := rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_reports = ?, unique_reports = ?, total_hours = ? WHERE analysis_id = ?`,
		as.table(analysisRunsTable)), as.backend)
	if _, err := as.db.Exec(update, formatTime(endTime, as.backend), durationMs, total, unique, hours, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordReportScore stores the derived scores of one report.
func (as *AnalysisStoreImpl) RecordReportScore(analysisID int64, report schema.AnalyzedReport) error {
	if as.disabled() {
		return nil
	}
	var owner *string
	if o := strings.TrimSpace(report.Owner); o != "" {
		owner = &o
	}
	query := rebind(fmt.Sprintf(`INSERT INTO %s (analysis_id, report_id, report_name, owner, fingerprint,
		complexity_score, complexity_category, estimated_hours, table_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, as.table(reportScoresTable)), as.backend)

	_, err := as.db.Exec(query, analysisID, report.ID, report.Name, owner, report.Fingerprint,
		report.ComplexityScore, string(report.ComplexityCategory), report.EstimatedHours, len(report.ReferencedTables))
	if err != nil {
		return fmt.Errorf("failed to insert report score: %w", err)
	}
	return nil
}

// RecordDuplicateGroup stores one duplicate group of a run.
func (as *AnalysisStoreImpl) RecordDuplicateGroup(analysisID int64, index int, group schema.DuplicateGroup) error {
	if as.disabled() {
		return nil
	}
	query := rebind(fmt.Sprintf(`INSERT INTO %s (analysis_id, group_index, group_type, similarity_percent, member_names, recommendation)
		VALUES (?, ?, ?, ?, ?, ?)`, as.table(duplicateGroupsTable)), as.backend)

	_, err := as.db.Exec(query, analysisID, index, string(group.Type), group.SimilarityPercent,
		strings.Join(group.MemberNames, "\n"), group.Recommendation)
	if err != nil {
		return fmt.Errorf("failed to insert duplicate group: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus summarizes the stored runs and the row count of every table.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.disabled() {
		return status, nil
	}

	runs := as.table(analysisRunsTable)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest timeScanner
		row := as.db.QueryRow(fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = last.Time

		row = as.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runs))
		if err := row.Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest.Time

		row = as.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_reports), 0) FROM %s", runs))
		if err := row.Scan(&status.TotalReports); err != nil {
			return status, fmt.Errorf("failed to get total reports analyzed: %w", err)
		}
	}

	for _, table := range []string{analysisRunsTable, reportScoresTable, duplicateGroupsTable} {
		var count int64
		if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", as.table(table))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllAnalysisRuns returns every run in ID order.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT analysis_id, run_uuid, start_time, end_time, run_duration_ms, total_reports,
		unique_reports, total_hours, config_params, source_location FROM %s ORDER BY analysis_id`, as.table(analysisRunsTable))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var (
			rec        schema.AnalysisRunRecord
			start, end timeScanner
		)
		if err := rows.Scan(&rec.AnalysisID, &rec.RunUUID, &start, &end, &rec.RunDurationMs, &rec.TotalReports,
			&rec.UniqueReports, &rec.TotalHours, &rec.ConfigParams, &rec.SourceLocation); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		rec.StartTime = start.Time
		rec.EndTime = end.ptr()
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllReportScores returns every stored report score ordered by run.
func (as *AnalysisStoreImpl) GetAllReportScores() ([]schema.ReportScoreRecord, error) {
	if as.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT analysis_id, report_id, report_name, owner, fingerprint, complexity_score,
		complexity_category, estimated_hours, table_count FROM %s ORDER BY analysis_id, report_id`, as.table(reportScoresTable))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query report scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ReportScoreRecord
	for rows.Next() {
		var rec schema.ReportScoreRecord
		if err := rows.Scan(&rec.AnalysisID, &rec.ReportID, &rec.ReportName, &rec.Owner, &rec.Fingerprint,
			&rec.ComplexityScore, &rec.ComplexityCategory, &rec.EstimatedHours, &rec.TableCount); err != nil {
			return nil, fmt.Errorf("failed to scan report score: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report scores: %w", err)
	}
	return results, nil
}

// GetAllDuplicateGroups returns every stored duplicate group ordered by run and index.
func (as *AnalysisStoreImpl) GetAllDuplicateGroups() ([]schema.DuplicateGroupRecord, error) {
	if as.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT analysis_id, group_index, group_type, similarity_percent, member_names, recommendation
		FROM %s ORDER BY analysis_id, group_index`, as.table(duplicateGroupsTable))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query duplicate groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.DuplicateGroupRecord
	for rows.Next() {
		var rec schema.DuplicateGroupRecord
		if err := rows.Scan(&rec.AnalysisID, &rec.GroupIndex, &rec.GroupType, &rec.SimilarityPercent,
			&rec.MemberNames, &rec.Recommendation); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate group: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating duplicate groups: %w", err)
	}
	return results, nil
}
