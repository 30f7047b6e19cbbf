// Package sqlite provides a SQLite implementation of storage.DocumentStore.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/kbbridge/internal/storage"
	"github.com/scrypster/kbbridge/pkg/types"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DocumentStore implements storage.DocumentStore using SQLite.
type DocumentStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ storage.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore opens a SQLite document store with WAL self-healing.
// If the initial open fails due to stale WAL files (left behind by a crashed
// process), it verifies no other process holds them and retries once after
// removing the stale -shm/-wal files.
func NewDocumentStore(dsn string) (*DocumentStore, error) {
	store, err := openDocumentStore(dsn)
	if err == nil {
		return store, nil
	}

	if !isRecoverableWALError(err) {
		return nil, err
	}

	dbPath := dbPathFromDSN(dsn)
	if dbPath == "" {
		return nil, err
	}

	if !isWALStale(dbPath) {
		return nil, err
	}

	removeStaleWAL(dbPath)

	store, retryErr := openDocumentStore(dsn)
	if retryErr != nil {
		return nil, fmt.Errorf("sqlite: failed after WAL recovery: %w (original: %v)", retryErr, err)
	}

	log.Printf("sqlite: recovered from stale WAL files for %s", dbPath)
	return store, nil
}

func openDocumentStore(dsn string) (*DocumentStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	// One connection serialises writes and keeps ":memory:" databases alive
	// for the lifetime of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	mgr, err := storage.NewMigrationManager(db, migrationFS, "migrations")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to create migration manager: %w", err)
	}
	if _, err := mgr.Up(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to run migrations: %w", err)
	}

	return &DocumentStore{db: db, now: time.Now}, nil
}

// InsertNamed stores body under name and returns the new document ID.
// Earlier documents with the same name are kept; QueryNamed returns the newest.
func (s *DocumentStore) InsertNamed(ctx context.Context, name, docType string, body []byte) (string, error) {
	if err := storage.ValidateInsert(name, docType, body); err != nil {
		return "", err
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, name, type, body, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, docType, string(body), s.now().UTC().UnixNano())
	if err != nil {
		return "", fmt.Errorf("sqlite: failed to insert document %q: %w", name, err)
	}

	return id, nil
}

// QueryNamed returns the newest document stored under name with type docType,
// or (nil, nil) when there is none. An empty docType matches any type.
func (s *DocumentStore) QueryNamed(ctx context.Context, name, docType string) (*types.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, body, created_at
		FROM documents
		WHERE name = ? AND (? = '' OR type = ?)
		ORDER BY seq DESC
		LIMIT 1`, name, docType, docType)

	var (
		doc       types.Document
		body      string
		createdAt int64
	)
	if err := row.Scan(&doc.ID, &doc.Name, &doc.Type, &body, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: failed to query document %q: %w", name, err)
	}

	doc.Body = []byte(body)
	doc.CreatedAt = time.Unix(0, createdAt).UTC()
	return &doc, nil
}

// DeleteNamed removes every document stored under name.
func (s *DocumentStore) DeleteNamed(ctx context.Context, name string) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return 0, fmt.Errorf("sqlite: failed to delete document %q: %w", name, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: failed to get rows affected: %w", err)
	}
	return int(n), nil
}

// Close flushes the WAL into the main database file and releases resources.
func (s *DocumentStore) Close() error {
	if s.db == nil {
		return nil
	}

	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		log.Printf("sqlite: WAL checkpoint on close failed (non-fatal): %v", err)
	}

	return s.db.Close()
}

// dbPathFromDSN extracts the filesystem path from a SQLite DSN.
// Handles bare paths ("/path/to/db.sqlite") and file: URIs ("file:/path/to/db.sqlite?mode=rwc").
// Returns empty string for in-memory databases or unparseable DSNs.
func dbPathFromDSN(dsn string) string {
	if dsn == ":memory:" || dsn == "" {
		return ""
	}

	if strings.HasPrefix(dsn, "file:") {
		u, err := url.Parse(dsn)
		if err != nil {
			return ""
		}
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		if path == ":memory:" || path == "" {
			return ""
		}
		return path
	}

	return dsn
}

// isRecoverableWALError returns true if the error matches patterns caused by
// stale WAL files left behind after a crash (SIGKILL, OOM, etc.).
func isRecoverableWALError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "disk I/O error") ||
		strings.Contains(msg, "database is locked")
}

// isWALStale checks whether -shm/-wal files exist for the given database path
// AND no other process currently holds them open (via lsof).
// Returns false if lsof is unavailable (conservative: no deletion).
func isWALStale(dbPath string) bool {
	shmPath := dbPath + "-shm"
	walPath := dbPath + "-wal"

	if !fileExists(shmPath) && !fileExists(walPath) {
		return false
	}

	lsofPath, err := exec.LookPath("lsof")
	if err != nil {
		return false
	}

	cmd := exec.Command(lsofPath, "-t", dbPath, shmPath, walPath)
	output, err := cmd.Output()
	if err != nil {
		// lsof exits 1 when no process has the files open, so they are stale.
		return true
	}

	// Any PID in the output means another process still holds the files.
	return strings.TrimSpace(string(output)) == ""
}

// removeStaleWAL removes -shm and -wal files for the given database path.
func removeStaleWAL(dbPath string) {
	for _, suffix := range []string{"-shm", "-wal"} {
		path := dbPath + suffix
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("sqlite: failed to remove stale %s: %v", path, err)
		}
	}
}

// fileExists returns true if the path exists on disk.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
