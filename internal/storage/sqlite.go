// Package storage persists labeled expenses in SQLite for training runs
// that read from the application database instead of a CSV export.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/despesalab/categorizer/internal/expense"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store implements labeled-expense persistence using SQLite.
type Store struct {
	db     *sql.DB
	dbPath string
}

// New creates a new SQLite store instance.
func New(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertLabeled stores a batch of labeled expenses in one transaction.
func (s *Store) InsertLabeled(ctx context.Context, rows []expense.Labeled) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO labeled_expenses (name, amount_cents, category_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.Name, r.AmountCents, r.CategoryID); err != nil {
			return fmt.Errorf("failed to insert expense %q: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert: %w", err)
	}
	return nil
}

// ListLabeled returns all labeled expenses in insertion order.
func (s *Store) ListLabeled(ctx context.Context) ([]expense.Labeled, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, amount_cents, category_id FROM labeled_expenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query labeled expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []expense.Labeled
	for rows.Next() {
		var r expense.Labeled
		if err := rows.Scan(&r.Name, &r.AmountCents, &r.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to scan labeled expense: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate labeled expenses: %w", err)
	}

	return out, nil
}

// Count returns the number of labeled expenses in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM labeled_expenses`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count labeled expenses: %w", err)
	}
	return n, nil
}
