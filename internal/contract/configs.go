package contract

import (
	"fmt"
	"maps"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/huangsam/sqlscope/core/algo"
	"github.com/huangsam/sqlscope/core/cluster"
	"github.com/huangsam/sqlscope/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 10
	MaxResultLimit     = 1000
	DefaultPrecision   = 1
	DefaultServeAddr   = "127.0.0.1:8080"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// WeightsRawInput holds custom feature weights from the YAML config file.
// Use float64 pointers so that absent keys keep their defaults.
type WeightsRawInput struct {
	ExtraSelect  *float64 `mapstructure:"select"`
	Join         *float64 `mapstructure:"join"`
	Subquery     *float64 `mapstructure:"subquery"`
	SetOperation *float64 `mapstructure:"set_op"`
	Case         *float64 `mapstructure:"case"`
	Aggregate    *float64 `mapstructure:"aggregate"`
	Window       *float64 `mapstructure:"window"`
	CTE          *float64 `mapstructure:"cte"`
	RecursiveCTE *float64 `mapstructure:"recursive_cte"`
	LineCount    *float64 `mapstructure:"line_count"`
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	InputPath   string
	InputFormat string
	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Detail      bool
	Explain     bool
	Owner       bool
	Width       int // Terminal width override (0 = auto-detect)

	NearThreshold float64
	ConsolidateAt float64

	// CustomWeights holds only the overrides read from the config file.
	CustomWeights map[schema.BreakdownKey]float64

	// Weights is the final weight table: defaults plus overrides.
	Weights algo.Weights

	MaxScore          float64
	MaxDuplicateRatio float64

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	ServeAddr string

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile        string  `mapstructure:"output-file"`
	Limit             int     `mapstructure:"limit"`
	Workers           int     `mapstructure:"workers"`
	Precision         int     `mapstructure:"precision"`
	Output            string  `mapstructure:"output"`
	Width             int     `mapstructure:"width"`
	CacheBackend      string  `mapstructure:"cache-backend"`
	CacheDBConnect    string  `mapstructure:"cache-db-connect"`
	AnalysisBackend   string  `mapstructure:"analysis-backend"`
	AnalysisDBConnect string  `mapstructure:"analysis-db-connect"`
	Emoji             string  `mapstructure:"emoji"`
	Color             string  `mapstructure:"color"`
	NearThreshold     float64 `mapstructure:"near-threshold"`
	ConsolidateAt     float64 `mapstructure:"consolidate-at"`

	// --- Fields from analyzeCmd.Flags() ---
	Format  string `mapstructure:"format"`
	Detail  bool   `mapstructure:"detail"`
	Explain bool   `mapstructure:"explain"`
	Owner   bool   `mapstructure:"owner"`

	// --- Fields from checkCmd.Flags() ---
	MaxScore          float64 `mapstructure:"max-score"`
	MaxDuplicateRatio float64 `mapstructure:"max-duplicate-ratio"`

	// --- Fields from serveCmd.Flags() ---
	Addr string `mapstructure:"addr"`

	// --- Custom weights from config file ---
	Weights WeightsRawInput `mapstructure:"weights"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.CustomWeights != nil {
		clone.CustomWeights = make(map[schema.BreakdownKey]float64, len(c.CustomWeights))
		maps.Copy(clone.CustomWeights, c.CustomWeights)
	}
	if c.Weights.LinePenalties != nil {
		clone.Weights.LinePenalties = append([]algo.LinePenalty(nil), c.Weights.LinePenalties...)
	}
	return &clone
}

// ClusterOptions returns the duplicate detection options for this config.
func (c *Config) ClusterOptions() cluster.Options {
	opts := cluster.DefaultOptions()
	if c.NearThreshold > 0 {
		opts.NearThreshold = c.NearThreshold
	}
	if c.ConsolidateAt > 0 {
		opts.ConsolidateAt = c.ConsolidateAt
	}
	opts.Workers = max(1, c.Workers)
	return opts
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processThresholds(cfg, input); err != nil {
		return err
	}
	if err := processCustomWeights(cfg, input); err != nil {
		return err
	}
	if err := resolveInputPath(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidCacheBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	// The two stores migrate different tables, so they cannot share one SQLite file.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Detail = input.Detail
	cfg.Explain = input.Explain
	cfg.Owner = input.Owner
	cfg.Width = input.Width
	cfg.ServeAddr = input.Addr
	if cfg.ServeAddr == "" {
		cfg.ServeAddr = DefaultServeAddr
	}

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	// --- 4. Input format ---
	cfg.InputFormat = strings.ToLower(strings.TrimSpace(input.Format))
	switch cfg.InputFormat {
	case "", "csv", "json", "parquet":
	default:
		return fmt.Errorf("invalid input format '%s'. must be csv, json, parquet", input.Format)
	}

	// --- 5. Backend Validation ---
	return validateBackendConfigs(cfg, input)
}

// processThresholds validates the similarity and check thresholds.
// Zero values fall back to the defaults.
func processThresholds(cfg *Config, input *ConfigRawInput) error {
	cfg.NearThreshold = input.NearThreshold
	if cfg.NearThreshold == 0 {
		cfg.NearThreshold = cluster.DefaultNearThreshold
	}
	cfg.ConsolidateAt = input.ConsolidateAt
	if cfg.ConsolidateAt == 0 {
		cfg.ConsolidateAt = cluster.DefaultConsolidateAt
	}
	if cfg.NearThreshold < 0 || cfg.NearThreshold >= 100 {
		return fmt.Errorf("near-threshold must be in [0, 100) (received %.2f)", cfg.NearThreshold)
	}
	if cfg.ConsolidateAt < cfg.NearThreshold || cfg.ConsolidateAt > 100 {
		return fmt.Errorf("consolidate-at must be between near-threshold (%.2f) and 100 (received %.2f)", cfg.NearThreshold, cfg.ConsolidateAt)
	}

	if input.MaxScore < 0 {
		return fmt.Errorf("max-score cannot be negative (received %.2f)", input.MaxScore)
	}
	cfg.MaxScore = input.MaxScore

	if input.MaxDuplicateRatio < 0 || input.MaxDuplicateRatio > 1 {
		return fmt.Errorf("max-duplicate-ratio must be between 0.0 and 1.0 (received %.2f)", input.MaxDuplicateRatio)
	}
	cfg.MaxDuplicateRatio = input.MaxDuplicateRatio
	return nil
}

// ProcessWeightsRawInput converts WeightsRawInput into a map of overrides.
// Negative weights are rejected.
func ProcessWeightsRawInput(weights WeightsRawInput) (map[schema.BreakdownKey]float64, error) {
	raw := map[schema.BreakdownKey]*float64{
		schema.BreakdownSelect:       weights.ExtraSelect,
		schema.BreakdownJoin:         weights.Join,
		schema.BreakdownSubquery:     weights.Subquery,
		schema.BreakdownSetOp:        weights.SetOperation,
		schema.BreakdownCase:         weights.Case,
		schema.BreakdownAggregate:    weights.Aggregate,
		schema.BreakdownWindow:       weights.Window,
		schema.BreakdownCTE:          weights.CTE,
		schema.BreakdownRecursiveCTE: weights.RecursiveCTE,
		schema.BreakdownLines:        weights.LineCount,
	}

	result := make(map[schema.BreakdownKey]float64)
	for key, v := range raw {
		if v == nil {
			continue
		}
		if *v < 0 {
			return nil, fmt.Errorf("weight %s cannot be negative, got %.3f", key, *v)
		}
		result[key] = *v
	}
	return result, nil
}

// processCustomWeights stores the overrides and computes the final weight table.
func processCustomWeights(cfg *Config, input *ConfigRawInput) error {
	overrides, err := ProcessWeightsRawInput(input.Weights)
	if err != nil {
		return err
	}
	cfg.CustomWeights = overrides
	cfg.Weights = algo.DefaultWeights().WithOverrides(overrides)
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolveInputPath checks that a positional input file exists and is not a directory.
func resolveInputPath(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = strings.TrimSpace(input.InputPathStr)
	if cfg.InputPath == "" {
		return nil
	}
	info, err := os.Stat(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("cannot read input %s: %w", cfg.InputPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input %s is a directory", cfg.InputPath)
	}
	return nil
}

// FormatConfigParams flattens the settings that affect results, for storing alongside a run.
func (c *Config) FormatConfigParams() map[string]any {
	params := map[string]any{
		"input":          c.InputPath,
		"workers":        c.Workers,
		"result_limit":   c.ResultLimit,
		"near_threshold": c.NearThreshold,
		"consolidate_at": c.ConsolidateAt,
	}
	for key, v := range c.CustomWeights {
		params["weight_"+string(key)] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return params
}
