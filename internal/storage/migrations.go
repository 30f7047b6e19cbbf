package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
)

// ErrNoMigration indicates no migration has been applied yet.
var ErrNoMigration = errors.New("no migration")

// MigrationManager applies plain SQL migrations read from an fs.FS.
// Files are named NNN_name.up.sql / NNN_name.down.sql and the current
// version is tracked in a schema_migrations table. Statements use "?"
// placeholders, so the manager is meant for SQLite databases.
type MigrationManager struct {
	db  *sql.DB
	fs  fs.FS
	dir string
}

type migration struct {
	version  uint
	name     string
	upFile   string
	downFile string
}

// NewMigrationManager creates a MigrationManager reading migrations from dir
// inside fsys (typically an embed.FS).
func NewMigrationManager(db *sql.DB, fsys fs.FS, dir string) (*MigrationManager, error) {
	if db == nil {
		return nil, fmt.Errorf("migrations: database connection is required")
	}
	if fsys == nil {
		return nil, fmt.Errorf("migrations: migration filesystem is required")
	}

	if _, err := fs.Stat(fsys, dir); err != nil {
		return nil, fmt.Errorf("migrations: directory does not exist: %s", dir)
	}

	mgr := &MigrationManager{db: db, fs: fsys, dir: dir}

	if err := mgr.ensureSchemaTable(); err != nil {
		return nil, fmt.Errorf("migrations: failed to create schema table: %w", err)
	}

	return mgr, nil
}

func (mgr *MigrationManager) ensureSchemaTable() error {
	_, err := mgr.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// Up applies all pending migrations in ascending version order and returns
// how many were applied.
func (mgr *MigrationManager) Up() (int, error) {
	migrations, err := mgr.loadMigrations()
	if err != nil {
		return 0, fmt.Errorf("migrations: failed to load migration files: %w", err)
	}

	currentVersion, err := mgr.Version()
	if err != nil && !errors.Is(err, ErrNoMigration) {
		return 0, fmt.Errorf("migrations: failed to get current version: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		stmt, err := fs.ReadFile(mgr.fs, m.upFile)
		if err != nil {
			return applied, fmt.Errorf("migrations: failed to read %s: %w", m.upFile, err)
		}

		if _, err := mgr.db.Exec(string(stmt)); err != nil {
			return applied, fmt.Errorf("migrations: failed to apply version %d (%s): %w", m.version, m.name, err)
		}

		if _, err := mgr.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return applied, fmt.Errorf("migrations: failed to record version %d: %w", m.version, err)
		}

		applied++
	}

	return applied, nil
}

// Down rolls back all applied migrations in descending version order.
// Migrations without a down file are skipped.
func (mgr *MigrationManager) Down() error {
	migrations, err := mgr.loadMigrations()
	if err != nil {
		return fmt.Errorf("migrations: failed to load migration files: %w", err)
	}

	currentVersion, err := mgr.Version()
	if errors.Is(err, ErrNoMigration) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrations: failed to get current version: %w", err)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version > migrations[j].version
	})

	for _, m := range migrations {
		if m.version > currentVersion || m.downFile == "" {
			continue
		}

		stmt, err := fs.ReadFile(mgr.fs, m.downFile)
		if err != nil {
			return fmt.Errorf("migrations: failed to read %s: %w", m.downFile, err)
		}

		if _, err := mgr.db.Exec(string(stmt)); err != nil {
			return fmt.Errorf("migrations: failed to roll back version %d (%s): %w", m.version, m.name, err)
		}

		if _, err := mgr.db.Exec("DELETE FROM schema_migrations WHERE version = ?", m.version); err != nil {
			return fmt.Errorf("migrations: failed to remove version %d: %w", m.version, err)
		}
	}

	return nil
}

// Version returns the highest applied migration version, or ErrNoMigration
// when nothing has been applied.
func (mgr *MigrationManager) Version() (uint, error) {
	var version uint
	err := mgr.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("migrations: failed to query version: %w", err)
	}

	if version == 0 {
		return 0, ErrNoMigration
	}

	return version, nil
}

// loadMigrations returns the migrations found in the directory sorted by
// version ascending. Files with a non-numeric prefix are ignored.
func (mgr *MigrationManager) loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(mgr.fs, mgr.dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: failed to read directory: %w", err)
	}

	byVersion := make(map[uint]*migration)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		underscoreIdx := strings.Index(name, "_")
		if underscoreIdx < 0 {
			continue
		}
		versionInt, err := strconv.ParseUint(name[:underscoreIdx], 10, 64)
		if err != nil {
			continue
		}
		version := uint(versionInt)
		rest := name[underscoreIdx+1:]

		m, ok := byVersion[version]
		if !ok {
			m = &migration{version: version}
			byVersion[version] = m
		}

		fullPath := path.Join(mgr.dir, name)
		switch {
		case strings.HasSuffix(rest, ".up.sql"):
			m.name = strings.TrimSuffix(rest, ".up.sql")
			m.upFile = fullPath
		case strings.HasSuffix(rest, ".down.sql"):
			m.downFile = fullPath
		}
	}

	migrations := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.upFile == "" {
			continue
		}
		migrations = append(migrations, *m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})

	return migrations, nil
}
