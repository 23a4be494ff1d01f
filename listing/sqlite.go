package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"
)

// schemaSQL mirrors the host directory's post / postmeta split so that
// metadata keys stay free-form.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS listings (
	id         INTEGER PRIMARY KEY,
	post_type  TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS listing_meta (
	listing_id INTEGER NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
	meta_key   TEXT NOT NULL,
	meta_value TEXT NOT NULL,
	PRIMARY KEY (listing_id, meta_key)
);
`

// SQLiteStore implements Store on SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dsn and applies the schema.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection: writes are rare and this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get returns the listing and all of its meta entries.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*Listing, error) {
	l := &Listing{ID: id, Meta: map[string]string{}}

	err := s.db.QueryRowContext(ctx,
		`SELECT post_type, title FROM listings WHERE id = ?`, id,
	).Scan(&l.PostType, &l.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query listing %d: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT meta_key, meta_value FROM listing_meta WHERE listing_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query meta for listing %d: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan meta: %w", err)
		}
		l.Meta[key] = value
	}
	return l, rows.Err()
}

// Upsert creates or updates the listing and writes its meta entries.
func (s *SQLiteStore) Upsert(ctx context.Context, l *Listing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO listings (id, post_type, title) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			post_type = excluded.post_type,
			title = excluded.title,
			updated_at = CURRENT_TIMESTAMP`,
		l.ID, l.PostType, l.Title)
	if err != nil {
		return fmt.Errorf("failed to upsert listing %d: %w", l.ID, err)
	}

	if err := setMetaTx(ctx, tx, l.ID, l.Meta); err != nil {
		return err
	}
	return tx.Commit()
}

// SetMeta writes values for an existing listing.
func (s *SQLiteStore) SetMeta(ctx context.Context, id int64, values map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM listings WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query listing %d: %w", id, err)
	}

	if err := setMetaTx(ctx, tx, id, values); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE listings SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to touch listing %d: %w", id, err)
	}
	return tx.Commit()
}

func setMetaTx(ctx context.Context, tx *sql.Tx, id int64, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO listing_meta (listing_id, meta_key, meta_value) VALUES (?, ?, ?)
		ON CONFLICT(listing_id, meta_key) DO UPDATE SET meta_value = excluded.meta_value`)
	if err != nil {
		return fmt.Errorf("failed to prepare meta statement: %w", err)
	}
	defer stmt.Close()

	for key, value := range values {
		if _, err := stmt.ExecContext(ctx, id, key, value); err != nil {
			return fmt.Errorf("failed to set meta %s for listing %d: %w", key, id, err)
		}
	}
	return nil
}
