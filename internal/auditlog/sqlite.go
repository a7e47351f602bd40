package auditlog

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const maxRecent = 50

// SQLiteStore keeps audit entries in a local sqlite file.
type SQLiteStore struct {
	pool *sql.DB
}

// OpenSQLite opens (and migrates) the audit database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	pool.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(`
CREATE TABLE IF NOT EXISTS claim_log (
  id TEXT PRIMARY KEY,
  timestamp TEXT NOT NULL,
  type TEXT NOT NULL,
  url TEXT NOT NULL DEFAULT '',
  page_title TEXT NOT NULL DEFAULT '',
  reason TEXT NOT NULL DEFAULT '',
  body_preview TEXT NOT NULL DEFAULT '',
  raw_html TEXT NOT NULL DEFAULT '',
  job_address TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_claim_log_timestamp ON claim_log(timestamp DESC);
`); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("auditlog migrate: %w", err)
	}

	return &SQLiteStore{pool: pool}, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Close()
}

func (s *SQLiteStore) Insert(ctx context.Context, e Entry) (string, error) {
	id := newID()
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := s.pool.ExecContext(ctx, `
INSERT INTO claim_log(id, timestamp, type, url, page_title, reason, body_preview, raw_html, job_address)
VALUES(?,?,?,?,?,?,?,?,?);`,
		id, e.Timestamp, e.Type, e.URL, e.PageTitle, e.Reason, e.BodyPreview, e.RawHTML, e.JobAddress,
	)
	if err != nil {
		return "", fmt.Errorf("auditlog insert: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > maxRecent {
		limit = maxRecent
	}
	rows, err := s.pool.QueryContext(ctx, `
SELECT id, timestamp, type, url, page_title, reason, body_preview, raw_html, job_address
FROM claim_log
ORDER BY timestamp DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Type, &e.URL, &e.PageTitle,
			&e.Reason, &e.BodyPreview, &e.RawHTML, &e.JobAddress); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ByID(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	err := s.pool.QueryRowContext(ctx, `
SELECT id, timestamp, type, url, page_title, reason, body_preview, raw_html, job_address
FROM claim_log
WHERE id = ?;`, id).Scan(&e.ID, &e.Timestamp, &e.Type, &e.URL, &e.PageTitle,
		&e.Reason, &e.BodyPreview, &e.RawHTML, &e.JobAddress)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func newID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
