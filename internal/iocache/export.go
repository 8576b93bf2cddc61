package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/internal/parquet"
	"github.com/huangsam/sqlscope/schema"
)

// analysisReader is implemented by analysis stores that can read their history back.
type analysisReader interface {
	contract.AnalysisStore
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)
	GetAllReportScores() ([]schema.ReportScoreRecord, error)
	GetAllDuplicateGroups() ([]schema.DuplicateGroupRecord, error)
}

// ExecuteAnalysisExport writes the stored analysis history of the global manager to Parquet files.
func ExecuteAnalysisExport(outputFile string) error {
	return exportAnalysis(Manager.GetAnalysisStore(), outputFile)
}

// exportAnalysis writes one Parquet file per table, named after outputFile.
func exportAnalysis(store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is not configured. Set --analysis-backend")
	}
	reader, ok := store.(analysisReader)
	if !ok {
		return fmt.Errorf("analysis store %T does not support export", store)
	}

	status, err := reader.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}
	fmt.Printf("Exporting %d analysis runs from %s backend...\n", status.TotalRuns, status.Backend)

	runs, err := reader.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	scores, err := reader.GetAllReportScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve report scores: %w", err)
	}
	groups, err := reader.GetAllDuplicateGroups()
	if err != nil {
		return fmt.Errorf("failed to retrieve duplicate groups: %w", err)
	}

	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquet.ConvertAnalysisRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	fmt.Printf("Exported %d analysis runs to: %s\n", len(runs), runsFile)

	scoresFile := outputFile + ".report_scores.parquet"
	if err := parquet.WriteReportScoresParquet(parquet.ConvertReportScoreRecords(scores), scoresFile); err != nil {
		return fmt.Errorf("failed to write report scores: %w", err)
	}
	fmt.Printf("Exported %d report scores to: %s\n", len(scores), scoresFile)

	groupsFile := outputFile + ".duplicate_groups.parquet"
	if err := parquet.WriteDuplicateGroupsParquet(parquet.ConvertDuplicateGroupRecords(groups), groupsFile); err != nil {
		return fmt.Errorf("failed to write duplicate groups: %w", err)
	}
	fmt.Printf("Exported %d duplicate groups to: %s\n", len(groups), groupsFile)
	return nil
}
