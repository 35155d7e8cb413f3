package postgresdb

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrazmi/userdir/sdk/logger"
)

// ErrChecksumMismatch is returned when an applied migration file has been
// edited afterwards.
var ErrChecksumMismatch = errors.New("migration checksum mismatch")

// Migrate runs all pending migrations found under dir in migrations.
// Files are applied in lexical order (use numeric prefixes: 001_xxx.sql,
// 002_xxx.sql) and tracked in the schema_migrations table. Forward only.
func Migrate(ctx context.Context, log *logger.Logger, pool *pgxpool.Pool, migrations fs.FS, dir string) error {
	if err := StatusCheck(ctx, pool); err != nil {
		return fmt.Errorf("status check database: %w", err)
	}

	log.InfoContext(ctx, "running database migrations", "dir", dir)

	if err := createMigrationsTable(ctx, pool); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	files, err := MigrationFiles(migrations, dir)
	if err != nil {
		return fmt.Errorf("get migration files: %w", err)
	}

	applied := 0
	for _, file := range files {
		ran, err := applyMigration(ctx, log, pool, migrations, path.Join(dir, file))
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		if ran {
			applied++
		}
	}

	log.InfoContext(ctx, "migrations complete", "applied", applied, "total", len(files))
	return nil
}

func createMigrationsTable(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			checksum VARCHAR(64) NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := pool.Exec(ctx, query)
	return err
}

// MigrationFiles returns the sorted names of the .sql files directly under dir.
func MigrationFiles(migrations fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}

	sort.Strings(files)
	return files, nil
}

// Checksum is the hex sha256 of a migration's content.
func Checksum(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// applyMigration applies a single migration if it hasn't been applied yet and
// reports whether it ran.
func applyMigration(ctx context.Context, log *logger.Logger, pool *pgxpool.Pool, migrations fs.FS, filePath string) (bool, error) {
	version := path.Base(filePath)

	content, err := fs.ReadFile(migrations, filePath)
	if err != nil {
		return false, fmt.Errorf("read migration file: %w", err)
	}
	checksum := Checksum(content)

	var existingChecksum string
	err = pool.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", version).Scan(&existingChecksum)
	switch {
	case err == nil:
		if existingChecksum != checksum {
			return false, fmt.Errorf("%w: %s (expected: %s, got: %s)", ErrChecksumMismatch, version, existingChecksum, checksum)
		}
		log.DebugContext(ctx, "migration already applied", "version", version)
		return false, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return false, fmt.Errorf("lookup migration: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return false, fmt.Errorf("execute migration: %w", err)
	}

	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)", version, checksum); err != nil {
		return false, fmt.Errorf("record migration: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	log.InfoContext(ctx, "migration applied", "version", version, "checksum", checksum[:8])
	return true, nil
}
