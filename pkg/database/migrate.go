package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrator applies the embedded schema migrations.
type Migrator struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewMigrator binds the migrator to the shared pool.
func NewMigrator(db *sqlx.DB, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, logger: logger}
}

// migrationRunner is the part of *migrate.Migrate the migrator drives.
type migrationRunner interface {
	Up() error
	Force(version int) error
	Version() (uint, bool, error)
}

// Up applies pending migrations. Already applied migrations are not an error.
// The driver holds a postgres advisory lock so parallel callers serialise.
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, false)
}

// Reapply forgets the recorded schema version and runs every migration again.
// Used when the version table claims a schema that is no longer there; the
// migrations only create what is missing.
func (m *Migrator) Reapply(ctx context.Context) error {
	return m.run(ctx, true)
}

func (m *Migrator) run(ctx context.Context, reset bool) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	// A dedicated connection keeps migrate from closing the shared pool.
	conn, err := m.db.Conn(ctx)
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("acquire migration connection: %w", err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		_ = src.Close()
		_ = conn.Close()
		return fmt.Errorf("init migration driver: %w", err)
	}

	runner, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = src.Close()
		_ = driver.Close()
		return fmt.Errorf("init migrate: %w", err)
	}
	defer func() {
		if srcErr, dbErr := runner.Close(); srcErr != nil || dbErr != nil {
			m.logger.Warn("close migrate", zap.NamedError("source_error", srcErr), zap.NamedError("db_error", dbErr))
		}
	}()

	return m.apply(runner, src.Prev, reset)
}

// apply runs the migrations. A version left dirty by an interrupted run is
// forced back to the preceding version and retried once.
func (m *Migrator) apply(runner migrationRunner, prev func(uint) (uint, error), reset bool) error {
	if reset {
		m.logger.Warn("resetting recorded schema version")
		if err := runner.Force(migratedb.NilVersion); err != nil {
			return fmt.Errorf("reset migration version: %w", err)
		}
	}

	err := runner.Up()
	var dirty migrate.ErrDirty
	if errors.As(err, &dirty) {
		target := previousVersion(prev, dirty.Version)
		m.logger.Warn("recovering dirty migration", zap.Int("dirty_version", dirty.Version), zap.Int("forced_version", target))
		if ferr := runner.Force(target); ferr != nil {
			return fmt.Errorf("force migration version %d: %w", target, ferr)
		}
		err = runner.Up()
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("schema up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirtyFlag, verr := runner.Version()
	if verr == nil {
		m.logger.Info("schema migrated", zap.Uint("version", version), zap.Bool("dirty", dirtyFlag))
	}
	return nil
}

func previousVersion(prev func(uint) (uint, error), version int) int {
	if version <= 0 || prev == nil {
		return migratedb.NilVersion
	}
	p, err := prev(uint(version))
	if err != nil {
		return migratedb.NilVersion
	}
	return int(p)
}
