package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/sqlscope/core/algo"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL bounds how long a cached report is trusted.
const cacheTTL = 7 * 24 * time.Hour

// cachedAnalyzer wraps AnalyzeReport with a lookup in the report store.
// A nil store disables caching.
func cachedAnalyzer(store contract.CacheStore, w algo.Weights) reportAnalyzer {
	if store == nil {
		return func(rec schema.ReportRecord) schema.AnalyzedReport {
			return AnalyzeReport(rec, w)
		}
	}
	return func(rec schema.ReportRecord) schema.AnalyzedReport {
		key := generateCacheKey(rec.SQLText, w)
		if cached := checkCacheHit(store, key); cached != nil {
			// Identity fields come from the record; only derived fields are cached.
			cached.ID, cached.Name, cached.Owner, cached.SQLText = rec.ID, rec.Name, rec.Owner, rec.SQLText
			return *cached
		}
		return computeAndStore(store, key, rec, w)
	}
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) *schema.AnalyzedReport {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return nil // stale or version mismatch
	}
	var result schema.AnalyzedReport
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

// computeAndStore computes the result and stores it in cache
func computeAndStore(store contract.CacheStore, key string, rec schema.ReportRecord, w algo.Weights) schema.AnalyzedReport {
	result := AnalyzeReport(rec, w)

	cached := result
	cached.ID, cached.Name, cached.Owner, cached.SQLText = "", "", "", ""
	if data, err := json.Marshal(cached); err == nil {
		_ = store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}
	return result
}

// generateCacheKey derives the key from the SQL text and every weight that affects the score.
func generateCacheKey(sql string, w algo.Weights) string {
	weights, _ := json.Marshal(w)
	key := fmt.Sprintf("%d:%s:%s", currentCacheVersion, weights, sql)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
