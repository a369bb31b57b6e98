// Package database persists the price archive, the download journal
// and the application log in a single SQLite file.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/angas/rotariff-go/hours"
	sqlite "modernc.org/sqlite"
)

//go:embed migrations
var migrationsDir embed.FS

type Database struct {
	logger *slog.Logger
	read   *sql.DB
	write  *sql.DB
	path   string
}

const initSQL = `
	PRAGMA journal_mode = WAL;
	PRAGMA synchronous = NORMAL;
	PRAGMA temp_store = MEMORY;
	PRAGMA busy_timeout = 5000;
	PRAGMA automatic_index = true;
	PRAGMA foreign_keys = ON;
	PRAGMA analysis_limit = 1000;
	PRAGMA trusted_schema = OFF;
`

var migrationName = regexp.MustCompile(`^(\d+)[-_]`)

// New opens the database with separate read and write pools and brings
// the schema up to date. The write pool holds a single connection, so
// statements never contend for SQLite's write lock.
func New(ctx context.Context, path string) (*Database, error) {
	// The hook runs for every connection the pools open over the whole
	// process lifetime, so it must not be tied to the startup context.
	sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, _ string) error {
		_, err := conn.ExecContext(context.Background(), initSQL, nil)
		return err
	})

	read, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error when opening database (read): %w", err)
	}
	read.SetMaxOpenConns(10)
	read.SetConnMaxIdleTime(time.Minute)

	write, err := sql.Open("sqlite", path)
	if err != nil {
		read.Close()
		return nil, fmt.Errorf("error when opening database (write): %w", err)
	}
	write.SetMaxOpenConns(1)
	write.SetConnMaxIdleTime(time.Minute)

	d := &Database{
		logger: slog.Default().With(slog.String("module", "database")),
		read:   read,
		write:  write,
		path:   path,
	}

	if err := d.migrate(ctx); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return d, nil
}

func (d *Database) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

func (d *Database) Close() {
	d.read.Close()
	d.write.Close()
}

// migrate applies the embedded migration files newer than the stored
// schema version, taking a backup before the first one applied.
func (d *Database) migrate(ctx context.Context) error {
	var currVer int
	if err := d.read.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currVer); err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	files, err := migrationsDir.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, f := range files {
		if !f.IsDir() && filepath.Ext(f.Name()) == ".sql" {
			sqlFiles = append(sqlFiles, f.Name())
		}
	}
	slices.Sort(sqlFiles)

	backedUp := false
	for _, name := range sqlFiles {
		nextVer, err := migrationVersion(name)
		if err != nil {
			return err
		}
		if nextVer <= currVer {
			continue
		}

		if !backedUp {
			backedUp = true
			if err := d.Backup(ctx); err != nil {
				return fmt.Errorf("backup database before migration: %w", err)
			}
		}

		if err := d.applyMigration(ctx, name, nextVer); err != nil {
			return err
		}
	}

	return nil
}

func migrationVersion(name string) (int, error) {
	matches := migrationName.FindStringSubmatch(name)
	if len(matches) < 2 {
		return 0, fmt.Errorf("parse version from migration file: %s", name)
	}
	ver, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("convert migration version from file %s: %w", name, err)
	}
	return ver, nil
}

func (d *Database) applyMigration(ctx context.Context, name string, version int) error {
	d.logger.Debug(fmt.Sprintf("applying migration %d", version))

	data, err := migrationsDir.ReadFile(path.Join("migrations", name))
	if err != nil {
		return fmt.Errorf("read migration file %s: %w", name, err)
	}

	tx, err := d.write.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction for migration %d: %w", version, err)
	}

	if _, err := tx.ExecContext(ctx, string(data)); err != nil {
		if err := tx.Rollback(); err != nil {
			return fmt.Errorf("rollback migration %d: %w", version, err)
		}
		return fmt.Errorf("apply migration %d: %w", version, err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d;", version)); err != nil {
		if err := tx.Rollback(); err != nil {
			return fmt.Errorf("rollback migration %d: %w", version, err)
		}
		return fmt.Errorf("update database version for migration %d: %w", version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", version, err)
	}

	return nil
}

// purgeTable deletes rows of a (date, hour) keyed table older than the
// retention window.
func (d *Database) purgeTable(ctx context.Context, table string, retentionDays int) error {
	duration := 24 * time.Hour * time.Duration(retentionDays)
	before := hours.FromTime(time.Now().Add(-duration))
	res, err := d.write.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s
		WHERE (date = ? AND hour < ?) OR date < ?`, table),
		before.Date, before.Hour, before.Date)
	if err != nil {
		return fmt.Errorf("error when purging %s: %w", table, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		d.logger.Warn("can't get rows affected by purge", slog.String("table", table), slog.Any("error", err))
	} else {
		d.logger.Debug(fmt.Sprintf("purged %d rows from %s", rows, table))
	}

	return nil
}
