package iocache

import (
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
)

// reportCacheTable is the name of the table for analyzed report caching.
const reportCacheTable = "report_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager. An empty backend leaves that store off.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, analysisBackend schema.DatabaseBackend, analysisConnStr string) error {
	var initErr error
	initOnce.Do(func() {
		reports, analysis, err := openStores(cacheBackend, cacheConnStr, analysisBackend, analysisConnStr)
		if err != nil {
			initErr = err
			return
		}
		Manager.Lock()
		defer Manager.Unlock()
		Manager.reports = reports
		Manager.analysis = analysis
	})
	return initErr
}

func openStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, analysisBackend schema.DatabaseBackend, analysisConnStr string) (contract.CacheStore, contract.AnalysisStore, error) {
	var reports contract.CacheStore
	if cacheBackend != "" && cacheBackend != schema.NoneBackend {
		store, err := NewCacheStore(reportCacheTable, cacheBackend, cacheConnStr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize report caching: %w", err)
		}
		reports = store
	}

	var analysis contract.AnalysisStore
	if analysisBackend != "" && analysisBackend != schema.NoneBackend {
		store, err := NewAnalysisStore(analysisBackend, analysisConnStr)
		if err != nil {
			if reports != nil {
				_ = reports.Close()
			}
			return nil, nil, fmt.Errorf("failed to initialize analysis store: %w", err)
		}
		analysis = store
	}
	return reports, analysis, nil
}

// CloseStores should be called on application shutdown.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.reports != nil {
			_ = Manager.reports.Close()
		}
		if Manager.analysis != nil {
			_ = Manager.analysis.Close()
		}
	})
}

// ClearCache removes cached reports. SQLite deletes the database file and
// MySQL/PostgreSQL drop the cache table.
func ClearCache(backend schema.DatabaseBackend, connStr string) error {
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetCacheDBFilePath()
	}
	return clearTables(backend, connStr, []string{reportCacheTable})
}

// ClearAnalysis removes all analysis history, including the migration bookkeeping,
// so the next run migrates from scratch.
func ClearAnalysis(backend schema.DatabaseBackend, connStr string) error {
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetAnalysisDBFilePath()
	}
	return clearTables(backend, connStr, append(append([]string{}, analysisTables...), "schema_migrations"))
}

func clearTables(backend schema.DatabaseBackend, connStr string, tables []string) error {
	switch backend {
	case schema.NoneBackend:
		return nil
	case schema.SQLiteBackend:
		if err := os.Remove(connStr); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", connStr, err)
		}
		return nil
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		db, err := openDB(backend, connStr, "")
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		for _, table := range tables {
			if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", table, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}
