package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/dexedit/internal/core"
)

// PostgresSink stores audit lines in a shared Postgres database.
type PostgresSink struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// PoolOptions tunes the connection pool opened by ConnectPostgres.
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ConnectPostgres opens a pool, verifies it with a ping and ensures the schema.
func ConnectPostgres(ctx context.Context, url string, opts PoolOptions) (*PostgresSink, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := NewPostgresSink(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresSink wraps an existing pool. Call EnsureSchema before first use.
func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool, now: time.Now}
}

// EnsureSchema creates the audit table if needed.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS dex_audit_log (
		id UUID PRIMARY KEY,
		batch_id UUID NOT NULL,
		section TEXT NOT NULL,
		line TEXT NOT NULL,
		actor TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS dex_audit_log_created ON dex_audit_log (created_at DESC);`)
	if err != nil {
		return fmt.Errorf("create dex_audit_log: %w", err)
	}
	return nil
}

// AddEntries inserts one save's lines as a single batch inside a transaction.
func (s *PostgresSink) AddEntries(ctx context.Context, section string, entries []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin audit: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, e := range newEntries(ctx, section, entries, s.now().UTC()) {
		batch.Queue(`INSERT INTO dex_audit_log
			(id, batch_id, section, line, actor, ip_address, user_agent, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.MustParse(e.ID), uuid.MustParse(e.BatchID),
			e.Section, e.Line, e.Actor, e.IPAddress, e.UserAgent, e.CreatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert audit entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit audit: %w", err)
	}
	return nil
}

// Recent lists stored lines, newest first.
func (s *PostgresSink) Recent(ctx context.Context, f Filter) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, batch_id, section, line, actor, ip_address, user_agent, created_at
		FROM dex_audit_log
		WHERE ($1::text = '' OR section = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		f.Section, f.limit(), f.Offset)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			id, batch uuid.UUID
		)
		if err := rows.Scan(&id, &batch, &e.Section, &e.Line,
			&e.Actor, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.ID, e.BatchID = id.String(), batch.String()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return out, nil
}

// Close closes the pool.
func (s *PostgresSink) Close() { s.pool.Close() }

var (
	_ core.AuditSink = (*PostgresSink)(nil)
	_ Reader         = (*PostgresSink)(nil)
)
