package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-folio/pkg/interfaces"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

var (
	ErrDriverUnsupported = errors.New("storage: unsupported driver")
	ErrDSNRequired       = errors.New("storage: dsn is required")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options describes how to open the bun database.
type Options struct {
	Driver string
	DSN    string
	Debug  bool
}

// Open connects to the configured database and wraps it in bun.
func Open(opts Options) (*bun.DB, error) {
	dsn := strings.TrimSpace(opts.DSN)
	if dsn == "" {
		return nil, ErrDSNRequired
	}

	var db *bun.DB
	switch normalizeDriver(opts.Driver) {
	case DriverSQLite:
		sqlDB, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case DriverPostgres:
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	default:
		return nil, fmt.Errorf("%w: %s", ErrDriverUnsupported, opts.Driver)
	}

	if opts.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db, nil
}

// Ping verifies connectivity.
func Ping(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return errors.New("storage: database not configured")
	}
	return db.PingContext(ctx)
}

// MigrationsFS exposes the embedded SQL migrations.
func MigrationsFS() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

func newMigrator(db *bun.DB) (*migrate.Migrator, error) {
	migrations := migrate.NewMigrations()
	if err := migrations.Discover(MigrationsFS()); err != nil {
		return nil, fmt.Errorf("storage: discover migrations: %w", err)
	}
	return migrate.NewMigrator(db, migrations, migrate.WithMarkAppliedOnSuccess(true)), nil
}

// Migrate applies pending migrations and returns the names that ran.
func Migrate(ctx context.Context, db *bun.DB, logger interfaces.Logger) ([]string, error) {
	migrator, err := newMigrator(db)
	if err != nil {
		return nil, err
	}
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("storage: init migrations: %w", err)
	}
	if err := migrator.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if unlockErr := migrator.Unlock(ctx); unlockErr != nil && logger != nil {
			logger.Warn("storage.migrate.unlock_failed", "error", unlockErr)
		}
	}()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: migrate: %w", err)
	}
	if group == nil || group.IsZero() {
		if logger != nil {
			logger.Debug("storage.migrate.up_to_date")
		}
		return nil, nil
	}
	names := make([]string, 0, len(group.Migrations))
	for _, m := range group.Migrations {
		names = append(names, m.Name)
	}
	if logger != nil {
		logger.Info("storage.migrate.applied", "group", group.ID, "migrations", names)
	}
	return names, nil
}

// Rollback reverts the last applied migration group.
func Rollback(ctx context.Context, db *bun.DB, logger interfaces.Logger) ([]string, error) {
	migrator, err := newMigrator(db)
	if err != nil {
		return nil, err
	}
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("storage: init migrations: %w", err)
	}
	if err := migrator.Lock(ctx); err != nil {
		return nil, err
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	group, err := migrator.Rollback(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: rollback: %w", err)
	}
	if group == nil || group.IsZero() {
		return nil, nil
	}
	names := make([]string, 0, len(group.Migrations))
	for _, m := range group.Migrations {
		names = append(names, m.Name)
	}
	if logger != nil {
		logger.Info("storage.migrate.rolled_back", "group", group.ID, "migrations", names)
	}
	return names, nil
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pg":
		return DriverPostgres
	default:
		return ""
	}
}
