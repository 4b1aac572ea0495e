package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JonMunkholm/dexedit/internal/core"
)

// SQLiteSink stores audit lines in an audit_log table. It usually shares the
// handle of the romdata SQLite store so edits and history live in one file.
type SQLiteSink struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteSink creates the audit_log table if needed.
func NewSQLiteSink(ctx context.Context, db *sql.DB) (*SQLiteSink, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		batch_id TEXT NOT NULL,
		section TEXT NOT NULL,
		line TEXT NOT NULL,
		actor TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create audit_log: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS audit_log_created ON audit_log(created_at)`); err != nil {
		return nil, fmt.Errorf("create audit_log index: %w", err)
	}
	return &SQLiteSink{db: db, now: time.Now}, nil
}

// AddEntries inserts every line of one save in a single transaction.
func (s *SQLiteSink) AddEntries(ctx context.Context, section string, entries []string) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO audit_log
		(id, batch_id, section, line, actor, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare audit insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range newEntries(ctx, section, entries, s.now().UTC()) {
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.BatchID, e.Section, e.Line, e.Actor, e.IPAddress, e.UserAgent, e.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert audit entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit: %w", err)
	}
	return nil
}

// Recent lists stored lines, newest first.
func (s *SQLiteSink) Recent(ctx context.Context, f Filter) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, batch_id, section, line, actor, ip_address, user_agent, created_at
		FROM audit_log
		WHERE (? = '' OR section = ?)
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?`,
		f.Section, f.Section, f.limit(), f.Offset)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.BatchID, &e.Section, &e.Line,
			&e.Actor, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return out, nil
}

var (
	_ core.AuditSink = (*SQLiteSink)(nil)
	_ Reader         = (*SQLiteSink)(nil)
)
