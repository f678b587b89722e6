// Package sqlite provides the persistent session store, a SQLite-backed
// key/value table mirroring the fixed keys the web client keeps in browser
// local storage.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/catalyst-match/identity/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/catalyst-match/identity/internal/core/domain"
	"github.com/catalyst-match/identity/internal/core/ports/driven"
)

// Fixed keys for the persisted session fields.
const (
	keyUserID    = "userId"
	keyUserEmail = "userEmail"
	keyUserType  = "userType"
	keyUserName  = "userName"
)

// Ensure Store implements the interface.
var _ driven.SessionStore = (*Store)(nil)

// Store is a SQLite-backed session store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store in the given data directory.
// If dataDir is empty, defaults to ~/.catalyst/data/identity.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".catalyst", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "identity.db")

	// WAL mode: the session is read by many surfaces but written rarely.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the session from the fixed keys. An absent or unauthenticated
// record is domain.ErrNoSession.
func (s *Store) Load(ctx context.Context) (*domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM session")
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string, 4)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading session rows: %w", err)
	}

	if values[keyUserID] == "" {
		return nil, domain.ErrNoSession
	}
	return &domain.Session{
		UserID:      values[keyUserID],
		Email:       values[keyUserEmail],
		Role:        domain.Role(values[keyUserType]),
		DisplayName: values[keyUserName],
	}, nil
}

// Save replaces the persisted session atomically: the old keys go away and
// the new ones land in a single transaction.
func (s *Store) Save(ctx context.Context, session domain.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM session"); err != nil {
		return fmt.Errorf("clearing previous session: %w", err)
	}

	pairs := map[string]string{
		keyUserID:    session.UserID,
		keyUserEmail: session.Email,
		keyUserType:  string(session.Role),
		keyUserName:  session.DisplayName,
	}
	for key, value := range pairs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO session (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("writing session key %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing session: %w", err)
	}
	return nil
}

// Clear removes the persisted session wholesale.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session"); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
