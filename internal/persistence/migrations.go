package persistence

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// migrationLockKey serializes migration runners across processes.
const migrationLockKey int64 = 7_311_042_019

var migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

// Migration is one versioned schema change with its inverse.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// MigrationStatus reports whether a migration has been applied.
type MigrationStatus struct {
	Version   int
	Name      string
	AppliedAt *time.Time
}

// LoadMigrations reads NNNN_name.up.sql / NNNN_name.down.sql pairs from fsys.
func LoadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := map[int]*Migration{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			return nil, fmt.Errorf("unexpected migration file %q", entry.Name())
		}
		version, _ := strconv.Atoi(match[1])
		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: match[2]}
			byVersion[version] = m
		} else if m.Name != match[2] {
			return nil, fmt.Errorf("migration %d has conflicting names %q and %q", version, m.Name, match[2])
		}
		if match[3] == "up" {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
	}

	result := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("migration %04d_%s needs both up and down files", m.Version, m.Name)
		}
		result = append(result, *m)
	}
	slices.SortFunc(result, func(a, b Migration) int { return a.Version - b.Version })
	return result, nil
}

// Migrator applies and reverts embedded migrations, tracking them in schema_migrations.
type Migrator struct {
	pool       *pgxpool.Pool
	logger     *zap.Logger
	migrations []Migration
}

// NewMigrator builds a migrator over the embedded migration set.
func NewMigrator(pool *pgxpool.Pool, logger *zap.Logger) (*Migrator, error) {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return nil, err
	}
	migrations, err := LoadMigrations(sub)
	if err != nil {
		return nil, err
	}
	return &Migrator{pool: pool, logger: logger, migrations: migrations}, nil
}

// Latest returns the highest known migration version.
func (m *Migrator) Latest() int {
	if len(m.migrations) == 0 {
		return 0
	}
	return m.migrations[len(m.migrations)-1].Version
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) error {
	return m.UpTo(ctx, m.Latest())
}

// UpTo applies pending migrations with version <= target, in order.
func (m *Migrator) UpTo(ctx context.Context, target int) error {
	applied := 0
	for _, mig := range m.migrations {
		if mig.Version > target {
			break
		}
		ran, err := m.step(ctx, mig, true)
		if err != nil {
			return fmt.Errorf("apply migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
		if ran {
			applied++
		}
	}
	m.logger.Info("migrations applied", zap.Int("count", applied), zap.Int("target", target))
	return nil
}

// Down reverts the most recently applied migrations, newest first.
func (m *Migrator) Down(ctx context.Context, steps int) error {
	if steps <= 0 {
		return errors.New("steps must be positive")
	}
	statuses, err := m.Status(ctx)
	if err != nil {
		return err
	}

	reverted := 0
	for i := len(statuses) - 1; i >= 0 && reverted < steps; i-- {
		if statuses[i].AppliedAt == nil {
			continue
		}
		mig := m.migrations[i]
		ran, err := m.step(ctx, mig, false)
		if err != nil {
			return fmt.Errorf("revert migration %04d_%s: %w", mig.Version, mig.Name, err)
		}
		if ran {
			reverted++
		}
	}
	m.logger.Info("migrations reverted", zap.Int("count", reverted))
	return nil
}

// Status lists known migrations with their applied time, if any.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	rows, err := m.pool.Query(ctx, `SELECT version, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := map[int]time.Time{}
	for rows.Next() {
		var version int
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, err
		}
		applied[version] = at
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]MigrationStatus, 0, len(m.migrations))
	for _, mig := range m.migrations {
		status := MigrationStatus{Version: mig.Version, Name: mig.Name}
		if at, ok := applied[mig.Version]; ok {
			status.AppliedAt = &at
		}
		result = append(result, status)
	}
	return result, nil
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockAndEnsureTable(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func lockAndEnsureTable(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	const ddl = `
        CREATE TABLE IF NOT EXISTS schema_migrations (
            version     INTEGER PRIMARY KEY,
            name        TEXT NOT NULL,
            applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`
	_, err := tx.Exec(ctx, ddl)
	return err
}

// step applies (up) or reverts (down) one migration in its own transaction.
// It reports false when another runner already did the work.
func (m *Migrator) step(ctx context.Context, mig Migration, up bool) (bool, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := lockAndEnsureTable(ctx, tx); err != nil {
		return false, err
	}

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version=$1)`, mig.Version,
	).Scan(&exists); err != nil {
		return false, err
	}
	if exists == up {
		return false, nil
	}

	if up {
		m.logger.Info("applying migration", zap.Int("version", mig.Version), zap.String("name", mig.Name))
		if _, err := tx.Exec(ctx, mig.Up); err != nil {
			return false, err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, mig.Version, mig.Name,
		); err != nil {
			return false, err
		}
	} else {
		m.logger.Info("reverting migration", zap.Int("version", mig.Version), zap.String("name", mig.Name))
		if _, err := tx.Exec(ctx, mig.Down); err != nil {
			return false, err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version=$1`, mig.Version); err != nil {
			return false, err
		}
	}

	return true, tx.Commit(ctx)
}

// RunMigrations applies every embedded migration.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}
	migrator, err := NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	return migrator.Up(ctx)
}
