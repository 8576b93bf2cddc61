package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/huangsam/sqlscope/core/algo"
	"github.com/huangsam/sqlscope/core/cluster"
	"github.com/huangsam/sqlscope/core/lineage"
	"github.com/huangsam/sqlscope/core/sqltext"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
	"github.com/shopspring/decimal"
)

// ErrNilRecords is returned when a batch is requested without a record collection.
var ErrNilRecords = errors.New("report records are required")

// DefaultTopN is the size of the top complexity ranking.
const DefaultTopN = 10

// Options configures one batch analysis.
type Options struct {
	Workers int
	TopN    int
	Weights algo.Weights
	Cluster cluster.Options
}

// DefaultOptions returns the standard weights and thresholds with one worker.
func DefaultOptions() Options {
	return Options{
		Workers: 1,
		TopN:    DefaultTopN,
		Weights: algo.DefaultWeights(),
		Cluster: cluster.DefaultOptions(),
	}
}

// OptionsFromConfig derives batch options from the validated CLI config.
func OptionsFromConfig(cfg *contract.Config) Options {
	opts := DefaultOptions()
	opts.Workers = max(1, cfg.Workers)
	if cfg.ResultLimit > 0 {
		opts.TopN = cfg.ResultLimit
	}
	if cfg.Weights.LinePenalties != nil { // unset on a zero Config
		opts.Weights = cfg.Weights
	}
	opts.Cluster = cfg.ClusterOptions()
	return opts
}

// reportAnalyzer turns one record into its analyzed form.
type reportAnalyzer func(rec schema.ReportRecord) schema.AnalyzedReport

// AnalyzeReport runs tokenizing, scoring, fingerprinting and table extraction on one record.
// It never fails: text the structured lexer rejects is handled by the fallback tier.
func AnalyzeReport(rec schema.ReportRecord, w algo.Weights) schema.AnalyzedReport {
	tokens, tier := sqltext.Stream(rec.SQLText)
	normalized := sqltext.Render(tokens)
	score, breakdown := algo.ScoreStream(rec.SQLText, tokens, w)

	return schema.AnalyzedReport{
		ID:                 rec.ID,
		Name:               rec.Name,
		Owner:              rec.Owner,
		SQLText:            rec.SQLText,
		NormalizedSQL:      normalized,
		TokenSet:           sqltext.NewTokenSet(tokens).Sorted(),
		ComplexityScore:    score,
		ComplexityCategory: algo.Category(score),
		EstimatedHours:     algo.EstimatedHours(score),
		Fingerprint:        algo.FingerprintNormalized(normalized),
		ReferencedTables:   lineage.Tables(rec.SQLText),
		Breakdown:          breakdown,
		Tokenizer:          tier,
	}
}

// AnalyzeBatch analyzes every record and folds the results into one summary.
// A nil records slice is caller misuse and returns ErrNilRecords; an empty
// slice yields an empty summary.
func AnalyzeBatch(ctx context.Context, records []schema.ReportRecord, opts Options) (schema.AnalysisSummary, error) {
	w := opts.Weights
	return analyzeBatchWith(ctx, records, opts, func(rec schema.ReportRecord) schema.AnalyzedReport {
		return AnalyzeReport(rec, w)
	})
}

func analyzeBatchWith(ctx context.Context, records []schema.ReportRecord, opts Options, analyze reportAnalyzer) (schema.AnalysisSummary, error) {
	if records == nil {
		return schema.AnalysisSummary{}, ErrNilRecords
	}
	reports, err := analyzeReports(ctx, records, opts.Workers, analyze)
	if err != nil {
		return schema.AnalysisSummary{}, err
	}
	return Summarize(ctx, reports, opts)
}

// analyzeReports processes all records in parallel using a worker pool.
// Each result lands in the slot of its record, so output order matches input order.
func analyzeReports(ctx context.Context, records []schema.ReportRecord, workers int, analyze reportAnalyzer) ([]schema.AnalyzedReport, error) {
	reports := make([]schema.AnalyzedReport, len(records))
	indexCh := make(chan int, len(records))
	var wg sync.WaitGroup

	for range max(1, workers) {
		wg.Go(func() {
			for i := range indexCh {
				if ctx.Err() != nil {
					continue // drain
				}
				reports[i] = analyze(records[i])
			}
		})
	}

	for i := range records {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Summarize builds the batch summary from already analyzed reports.
func Summarize(ctx context.Context, reports []schema.AnalyzedReport, opts Options) (schema.AnalysisSummary, error) {
	if reports == nil {
		reports = []schema.AnalyzedReport{}
	}
	dups, err := cluster.Detect(ctx, reports, opts.Cluster)
	if err != nil {
		return schema.AnalysisSummary{}, err
	}

	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	totalHours, avgScore := totals(reports)
	groups := dups.Groups()
	return schema.AnalysisSummary{
		ReportCount:            len(reports),
		UniqueCount:            len(dups.Representatives),
		DuplicateCount:         duplicateCount(dups),
		ComplexityDistribution: distribution(reports),
		TotalEstimatedHours:    totalHours,
		AvgComplexity:          avgScore,
		DuplicateGroups:        groups,
		TopComplexReports:      algo.TopReports(reports, topN),
		ReportsByOwner:         ownerHistogram(reports),
		Reports:                reports,
		PotentialSavings:       PotentialSavings(reports, groups),
	}, nil
}

// totals returns the summed hours and the average score, both rounded to 1
// decimal with banker's rounding.
func totals(reports []schema.AnalyzedReport) (float64, float64) {
	if len(reports) == 0 {
		return 0, 0
	}
	hours := decimal.Zero
	score := decimal.Zero
	for _, r := range reports {
		hours = hours.Add(decimal.NewFromFloat(r.EstimatedHours))
		score = score.Add(decimal.NewFromFloat(r.ComplexityScore))
	}
	avg := score.Div(decimal.NewFromInt(int64(len(reports))))
	return hours.RoundBank(1).InexactFloat64(), avg.RoundBank(1).InexactFloat64()
}

// duplicateCount counts every exact member beyond the first plus one per near pair.
func duplicateCount(res cluster.Result) int {
	n := len(res.Near)
	for _, g := range res.Exact {
		n += len(g.Members) - 1
	}
	return n
}

func distribution(reports []schema.AnalyzedReport) map[schema.Category]int {
	dist := make(map[schema.Category]int)
	for _, r := range reports {
		dist[r.ComplexityCategory]++
	}
	return dist
}

func ownerHistogram(reports []schema.AnalyzedReport) map[string]int {
	owners := make(map[string]int)
	for _, r := range reports {
		owners[schema.OwnerOrUnknown(r.Owner)]++
	}
	return owners
}

// PotentialSavings estimates the reports and hours avoided by acting on the groups.
// Exact groups skip every member but the first; near pairs skip their second member.
func PotentialSavings(reports []schema.AnalyzedReport, groups []schema.DuplicateGroup) schema.PotentialSavings {
	var savings schema.PotentialSavings
	hours := decimal.Zero
	for _, g := range groups {
		if len(g.Members) < 2 {
			continue
		}
		for _, idx := range g.Members[1:] {
			savings.ReportsToSkip++
			hours = hours.Add(decimal.NewFromFloat(reports[idx].EstimatedHours))
		}
	}
	savings.HoursSaved = hours.Round(1).InexactFloat64()
	return savings
}

// runAnalysisCore analyzes the records with per-report caching and, when an
// analysis store is configured, records the run.
func runAnalysisCore(ctx context.Context, cfg *contract.Config, records []schema.ReportRecord, mgr contract.CacheManager) (*schema.AnalysisSummary, error) {
	if !shouldSuppressHeader(ctx) {
		logAnalysisHeader(cfg, len(records))
	}

	opts := OptionsFromConfig(cfg)
	var reportStore contract.CacheStore
	var analysisStore contract.AnalysisStore
	if mgr != nil {
		reportStore = mgr.GetReportStore()
		analysisStore = mgr.GetAnalysisStore()
	}

	// --- 0. Begin Analysis Tracking (if configured) ---
	if analysisStore != nil {
		id, err := analysisStore.BeginAnalysis(time.Now(), cfg.InputPath, cfg.FormatConfigParams())
		if err != nil {
			contract.LogWarn("Analysis tracking initialization failed", err)
		} else if id > 0 {
			ctx = withAnalysisID(ctx, id)
		}
	}

	// --- 1. Per-report analysis (with caching) ---
	summary, err := analyzeBatchWith(ctx, records, opts, cachedAnalyzer(reportStore, opts.Weights))
	if err != nil {
		return nil, err
	}

	// --- 2. End Analysis Tracking ---
	if analysisID := analysisIDFrom(ctx); analysisStore != nil && analysisID > 0 {
		recordAnalysis(analysisStore, analysisID, &summary)
		if err := analysisStore.EndAnalysis(analysisID, time.Now(), &summary); err != nil {
			contract.LogWarn("Failed to finalize analysis tracking", err)
		}
	}

	return &summary, nil
}

// recordAnalysis stores per-report scores and duplicate groups of one run.
// Failures are logged and do not abort the run.
func recordAnalysis(store contract.AnalysisStore, analysisID int64, summary *schema.AnalysisSummary) {
	for _, r := range summary.Reports {
		if err := store.RecordReportScore(analysisID, r); err != nil {
			logTrackingError("RecordReportScore", r.Name, err)
		}
	}
	for i, g := range summary.DuplicateGroups {
		if err := store.RecordDuplicateGroup(analysisID, i, g); err != nil {
			logTrackingError("RecordDuplicateGroup", g.Recommendation, err)
		}
	}
}

func logTrackingError(operation, subject string, err error) {
	contract.LogWarn("Analysis tracking "+operation+" failed for "+subject, err)
}
