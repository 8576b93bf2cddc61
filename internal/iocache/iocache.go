// Package iocache persists analyzed reports and analysis runs.
package iocache

import (
	"sync"

	"github.com/huangsam/sqlscope/internal/contract"
)

// CacheStoreManager manages the report cache and the analysis store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	reports      contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetReportStore returns the report cache, or nil when caching is off.
func (mgr *CacheStoreManager) GetReportStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.reports
}

// GetAnalysisStore returns the analysis store, or nil when tracking is off.
func (mgr *CacheStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
