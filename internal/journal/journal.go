package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"roomdesk/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// Journal keeps an operator-facing history of submit-all attempts in a
// local sqlite file. It is never read back into the cart.
type Journal struct {
	db *sql.DB
}

func Open(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Journal{db: db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS submissions (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            session_id TEXT NOT NULL,
            customer_id INTEGER NOT NULL,
            group_count INTEGER NOT NULL,
            accepted INTEGER NOT NULL,
            failed INTEGER NOT NULL,
            outcome TEXT NOT NULL,
            detail TEXT,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_session ON submissions(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions(created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Record appends one submit-all attempt.
func (j *Journal) Record(ctx context.Context, rec *models.SubmissionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	res, err := j.db.ExecContext(ctx,
		`INSERT INTO submissions (session_id, customer_id, group_count, accepted, failed, outcome, detail, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.CustomerID, rec.GroupCount, rec.Accepted, rec.Failed, rec.Outcome, rec.Detail, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

// Recent returns the newest submissions, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]models.SubmissionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, session_id, customer_id, group_count, accepted, failed, outcome, COALESCE(detail, ''), created_at
         FROM submissions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var records []models.SubmissionRecord
	for rows.Next() {
		var rec models.SubmissionRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.CustomerID, &rec.GroupCount,
			&rec.Accepted, &rec.Failed, &rec.Outcome, &rec.Detail, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (j *Journal) Close() error {
	return j.db.Close()
}
