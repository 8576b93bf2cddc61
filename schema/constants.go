package schema

// Custom string types for type safety.
type (
	// BreakdownKey represents keys used in scoring breakdowns.
	BreakdownKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// Category represents the complexity bucket of a report.
	Category string

	// GroupKind represents the kind of duplicate group.
	GroupKind string

	// MigrationQuality represents the quality label of a comparison.
	MigrationQuality string

	// RiskLevel represents the migration risk of a single query.
	RiskLevel string

	// TokenizerTier records which tokenizer produced a token stream.
	TokenizerTier string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string
)

// Breakdown keys used in the scoring logic.
const (
	BreakdownSelect    BreakdownKey = "select"     // extra SELECT keywords
	BreakdownJoin      BreakdownKey = "join"       // JOIN keywords
	BreakdownSubquery  BreakdownKey = "subquery"   // "( SELECT" patterns
	BreakdownSetOp     BreakdownKey = "set_op"     // UNION, INTERSECT, EXCEPT
	BreakdownCase      BreakdownKey = "case"       // CASE expressions
	BreakdownAggregate BreakdownKey = "aggregate"  // SUM, COUNT, ...
	BreakdownWindow    BreakdownKey = "window"     // ROW_NUMBER, RANK, ...
	BreakdownCTE       BreakdownKey = "cte"        // WITH / WITH RECURSIVE
	BreakdownLines     BreakdownKey = "line_count" // length penalty

	// BreakdownRecursiveCTE only names a weight; recursive points land under BreakdownCTE.
	BreakdownRecursiveCTE BreakdownKey = "recursive_cte"
)

// AllBreakdownKeys lists the weighted features in display order.
var AllBreakdownKeys = []BreakdownKey{
	BreakdownSelect, BreakdownJoin, BreakdownSubquery, BreakdownSetOp, BreakdownCase,
	BreakdownAggregate, BreakdownWindow, BreakdownCTE, BreakdownRecursiveCTE, BreakdownLines,
}

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All complexity categories.
const (
	SimpleCategory      Category = "Simple"
	MediumCategory      Category = "Medium"
	ComplexCategory     Category = "Complex"
	VeryComplexCategory Category = "VeryComplex"
)

// All duplicate group kinds.
const (
	ExactGroup GroupKind = "Exact"
	NearGroup  GroupKind = "Near"
)

// All migration quality labels.
const (
	ExcellentQuality MigrationQuality = "Excellent"
	GoodQuality      MigrationQuality = "Good"
	FairQuality      MigrationQuality = "Fair"
	ReviewQuality    MigrationQuality = "Review"
)

// All risk levels.
const (
	HighRisk   RiskLevel = "HIGH"
	MediumRisk RiskLevel = "MEDIUM"
	LowRisk    RiskLevel = "LOW"
)

// Tokenizer tiers.
const (
	StructuredTier TokenizerTier = "structured"
	FallbackTier   TokenizerTier = "fallback"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// UnknownOwner buckets reports that have no owner.
const UnknownOwner = "Unknown"

// Recommendation texts attached to duplicate groups.
const (
	ExactRecommendation       = "Migrate only one; create aliases for others"
	ConsolidateRecommendation = "Consolidate into single parameterized report"
	ReviewRecommendation      = "Review for consolidation"
)

// AllCategories lists the categories from least to most complex.
var AllCategories = []Category{SimpleCategory, MediumCategory, ComplexCategory, VeryComplexCategory}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
