// Package storage is the classifier service's persistence layer: a SQLite
// database holding every submitted email and its classification outcome,
// doubling as the work queue the background processor claims from.
package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for emails.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used
// by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "mailtriage.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// CreateEmail inserts a new email in the pending status.
func (s *Store) CreateEmail(e Email) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`
		INSERT INTO emails (id, title, content, status, classification, suggested_reply, created_at, updated_at)
		VALUES (?, ?, ?, 'pending', '', '', ?, ?)`,
		e.ID, e.Title, e.Content, now, now,
	)
	return err
}

// GetEmail fetches one email by id.
func (s *Store) GetEmail(id string) (Email, error) {
	row := s.db.QueryRow(`
		SELECT id, title, content, status, classification, suggested_reply, created_at, updated_at
		FROM emails WHERE id = ?`, id)
	return scanEmail(row)
}

// ClaimPending atomically flips up to limit pending emails to processing
// and returns them, oldest first. No email is ever handed to two claimants.
func (s *Store) ClaimPending(limit int) ([]Email, error) {
	if limit <= 0 {
		limit = 1
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning claim transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
		SELECT id, title, content, status, classification, suggested_reply, created_at, updated_at
		FROM emails
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("selecting pending emails: %w", err)
	}

	var claimed []Email
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		claimed = append(claimed, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating pending emails: %w", err)
	}
	rows.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i := range claimed {
		res, err := tx.Exec(`UPDATE emails SET status = 'processing', updated_at = ? WHERE id = ? AND status = 'pending'`,
			now, claimed[i].ID)
		if err != nil {
			return nil, fmt.Errorf("claiming email %s: %w", claimed[i].ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("checking claimed rows: %w", err)
		}
		if n != 1 {
			return nil, fmt.Errorf("email %s claimed elsewhere", claimed[i].ID)
		}
		claimed[i].Status = StatusProcessing
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}
	return claimed, nil
}

// CompleteEmail records the terminal result for an email.
func (s *Store) CompleteEmail(id, classification, suggestedReply string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		UPDATE emails SET status = 'done', classification = ?, suggested_reply = ?, updated_at = ?
		WHERE id = ?`,
		classification, suggestedReply, now, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RequeueEmail puts a processing email back into pending. Used on worker
// shutdown so a claimed but unfinished email is picked up again.
func (s *Store) RequeueEmail(id string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`UPDATE emails SET status = 'pending', updated_at = ? WHERE id = ? AND status = 'processing'`, now, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecent returns the newest emails first, up to limit.
func (s *Store) ListRecent(limit int) ([]Email, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`
		SELECT id, title, content, status, classification, suggested_reply, created_at, updated_at
		FROM emails
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing emails: %w", err)
	}
	defer rows.Close()

	var emails []Email
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

// CountByStatus returns the number of emails per status.
func (s *Store) CountByStatus() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM emails GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting emails: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEmail(row scanner) (Email, error) {
	var e Email
	var createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.Title, &e.Content, &e.Status, &e.Classification, &e.SuggestedReply, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return Email{}, ErrNotFound
	}
	if err != nil {
		return Email{}, fmt.Errorf("scanning email: %w", err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Email{}, fmt.Errorf("parsing created_at for email %s: %w", e.ID, err)
	}
	if e.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Email{}, fmt.Errorf("parsing updated_at for email %s: %w", e.ID, err)
	}
	return e, nil
}
