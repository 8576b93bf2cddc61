package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
)

// CacheStoreImpl keeps analyzed reports keyed by the hash of their SQL text.
type CacheStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.CacheStore = &CacheStoreImpl{} // Compile-time check

// NewCacheStore opens the backend and creates the cache table if needed.
// The none backend yields a store that never hits.
func NewCacheStore(tableName string, backend schema.DatabaseBackend, connStr string) (*CacheStoreImpl, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}
	if backend == schema.NoneBackend {
		return &CacheStoreImpl{tableName: tableName, backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetCacheDBFilePath())
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createCacheTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	return &CacheStoreImpl{db: db, tableName: tableName, backend: backend, connStr: connStr}, nil
}

func createCacheTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quoted := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			cache_key VARCHAR(64) PRIMARY KEY,
			cache_value MEDIUMBLOB NOT NULL,
			cache_version INT NOT NULL,
			cache_timestamp BIGINT NOT NULL
		)`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			cache_key TEXT PRIMARY KEY,
			cache_value BYTEA NOT NULL,
			cache_version INTEGER NOT NULL,
			cache_timestamp BIGINT NOT NULL
		)`, quoted)
	default:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			cache_key TEXT PRIMARY KEY,
			cache_value BLOB NOT NULL,
			cache_version INTEGER NOT NULL,
			cache_timestamp INTEGER NOT NULL
		)`, quoted)
	}
}

func (cs *CacheStoreImpl) disabled() bool {
	return cs.backend == schema.NoneBackend || cs.db == nil
}

// Get returns the cached value, its version and the unix time it was written.
// A missing key returns sql.ErrNoRows.
func (cs *CacheStoreImpl) Get(key string) ([]byte, int, int64, error) {
	if cs.disabled() {
		return nil, 0, 0, sql.ErrNoRows
	}
	query := rebind(fmt.Sprintf(`SELECT cache_value, cache_version, cache_timestamp FROM %s WHERE cache_key = ?`,
		quoteTableName(cs.tableName, cs.backend)), cs.backend)

	var (
		value   []byte
		version int
		ts      int64
	)
	if err := cs.db.QueryRow(query, key).Scan(&value, &version, &ts); err != nil {
		return nil, 0, 0, err
	}
	return value, version, ts, nil
}

// Set inserts or replaces one entry.
func (cs *CacheStoreImpl) Set(key string, value []byte, version int, timestamp int64) error {
	if cs.disabled() {
		return nil
	}
	_, err := cs.db.Exec(cs.upsertQuery(), key, value, version, timestamp)
	return err
}

func (cs *CacheStoreImpl) upsertQuery() string {
	quoted := quoteTableName(cs.tableName, cs.backend)
	switch cs.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE cache_value = new.cache_value, cache_version = new.cache_version, cache_timestamp = new.cache_timestamp`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES ($1, $2, $3, $4)
			ON CONFLICT (cache_key) DO UPDATE SET cache_value = EXCLUDED.cache_value, cache_version = EXCLUDED.cache_version, cache_timestamp = EXCLUDED.cache_timestamp`, quoted)
	default:
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_key, cache_value, cache_version, cache_timestamp) VALUES (?, ?, ?, ?)`, quoted)
	}
}

// Close closes the underlying DB connection.
func (cs *CacheStoreImpl) Close() error {
	if cs.db != nil {
		return cs.db.Close()
	}
	return nil
}

// GetStatus reports entry counts, entry age and an estimate of the table size.
func (cs *CacheStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(cs.backend),
		Connected: cs.db != nil,
	}
	if cs.disabled() {
		return status, nil
	}

	quoted := quoteTableName(cs.tableName, cs.backend)
	if err := cs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted)).Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}

	var newest, oldest int64
	if err := cs.db.QueryRow(fmt.Sprintf("SELECT MAX(cache_timestamp), MIN(cache_timestamp) FROM %s", quoted)).Scan(&newest, &oldest); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	status.LastEntryTime = time.Unix(newest, 0)
	status.OldestEntryTime = time.Unix(oldest, 0)
	status.TableSizeBytes = cs.tableSize(status.TotalEntries)
	return status, nil
}

// tableSize asks the backend for the table size and falls back to a rough per-row estimate.
func (cs *CacheStoreImpl) tableSize(entries int) int64 {
	estimate := int64(entries) * 1000
	var size int64
	switch cs.backend {
	case schema.SQLiteBackend:
		if err := cs.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&size); err != nil {
			return 0
		}
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(cs.connStr)
		if err != nil || cfg.DBName == "" {
			return estimate
		}
		row := cs.db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?", cfg.DBName, cs.tableName)
		if err := row.Scan(&size); err != nil {
			return estimate
		}
	case schema.PostgreSQLBackend:
		if err := cs.db.QueryRow("SELECT pg_total_relation_size($1)", cs.tableName).Scan(&size); err != nil {
			return estimate
		}
	default:
		return estimate
	}
	return size
}
