package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// migrationDir returns the embedded directory holding the dialect of a backend.
func migrationDir(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "migrations/sqlite", nil
	case schema.MySQLBackend:
		return "migrations/mysql", nil
	case schema.PostgreSQLBackend:
		return "migrations/postgres", nil
	default:
		return "", fmt.Errorf("migrations are not supported for backend: %s", backend)
	}
}

// migrationDriver wraps an open connection in the migrate driver of its backend.
func migrationDriver(db *sql.DB, backend schema.DatabaseBackend) (database.Driver, error) {
	switch backend {
	case schema.SQLiteBackend:
		return migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case schema.MySQLBackend:
		return migratemysql.WithInstance(db, &migratemysql.Config{})
	case schema.PostgreSQLBackend:
		return migratepgx.WithInstance(db, &migratepgx.Config{})
	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}
}

// newMigrator opens its own connection; closing the migrator closes it.
func newMigrator(backend schema.DatabaseBackend, connStr string) (*migrate.Migrate, error) {
	db, err := openDB(backend, connStr, contract.GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}
	m, err := newMigratorWithDB(db, backend)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

// newMigratorWithDB builds a migrator on an open connection.
func newMigratorWithDB(db *sql.DB, backend schema.DatabaseBackend) (*migrate.Migrate, error) {
	dir, err := migrationDir(backend)
	if err != nil {
		return nil, err
	}
	driver, err := migrationDriver(db, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}
	sub, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access migrations directory: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlscope", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

func migrateUp(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate analysis schema: %w", err)
	}
	return nil
}

// applyMigrations brings the analysis schema of db to the latest version.
// SQLite migrates on db itself so that in-memory databases see the tables; the
// server backends migrate on a separate connection that is closed afterwards.
func applyMigrations(db *sql.DB, backend schema.DatabaseBackend, connStr string) error {
	if backend == schema.SQLiteBackend {
		m, err := newMigratorWithDB(db, backend)
		if err != nil {
			return err
		}
		// Closing m would close db.
		return migrateUp(m)
	}

	m, err := newMigrator(backend, connStr)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()
	return migrateUp(m)
}

// MigrateAnalysis moves the analysis schema to a target version.
// A negative target migrates to the latest version and zero rolls everything back.
func MigrateAnalysis(backend schema.DatabaseBackend, connStr string, targetVersion int) error {
	if backend == schema.NoneBackend {
		return fmt.Errorf("migrations are not supported for NoneBackend")
	}
	m, err := newMigrator(backend, connStr)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Printf("No migration needed. Database is already at version %d\n", currentVersion)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to migrate from version %d: %w", currentVersion, err)
	}

	newVersion, _, verr := m.Version()
	if errors.Is(verr, migrate.ErrNilVersion) {
		newVersion = 0
	}
	fmt.Printf("Successfully migrated from version %d to version %d\n", currentVersion, newVersion)
	return nil
}
