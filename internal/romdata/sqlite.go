package romdata

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/JonMunkholm/dexedit/internal/core"
)

// SQLiteStore keeps the tables in a single SQLite table as JSON blobs, one
// bucket per table, and serves reads from an in-memory copy.
type SQLiteStore struct {
	*MemoryStore
	db   *sql.DB
	mu   sync.Mutex
	path string
}

const (
	bucketEntities = "entities"
	bucketMoves    = "moves"
	bucketIcons    = "icons"
	slotsPrefix    = "slots/"
	flagsPrefix    = "flags/"
)

// OpenSQLite opens (creating if needed) a store at path. A new database is
// empty until Seed is called.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "dexedit.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Writes from the audit sink and the store share this handle.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	fx := &Fixture{
		Slots: make(map[core.TableKind]core.SlotTable),
		Flags: make(map[core.TableKind]*core.FlagTable),
	}
	for rows.Next() {
		var (
			bucket  string
			payload []byte
		)
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if err := decodeBucket(fx, bucket, payload); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read state: %w", err)
	}

	s.MemoryStore = NewMemoryStore(fx)
	return nil
}

func decodeBucket(fx *Fixture, bucket string, payload []byte) error {
	var err error
	switch {
	case bucket == bucketEntities:
		err = json.Unmarshal(payload, &fx.Entities)
	case bucket == bucketMoves:
		err = json.Unmarshal(payload, &fx.Moves)
	case bucket == bucketIcons:
		err = json.Unmarshal(payload, &fx.Icons)
	case strings.HasPrefix(bucket, slotsPrefix):
		var table core.SlotTable
		err = json.Unmarshal(payload, &table)
		fx.Slots[core.TableKind(strings.TrimPrefix(bucket, slotsPrefix))] = table
	case strings.HasPrefix(bucket, flagsPrefix):
		var table core.FlagTable
		err = json.Unmarshal(payload, &table)
		fx.Flags[core.TableKind(strings.TrimPrefix(bucket, flagsPrefix))] = &table
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}

// Empty reports whether the database holds no entities yet.
func (s *SQLiteStore) Empty() bool {
	return len(s.Entities()) == 0
}

// Seed replaces the whole database with a fixture in one transaction.
func (s *SQLiteStore) Seed(ctx context.Context, fx *Fixture) (retErr error) {
	if err := fx.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM state`); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}

	buckets := map[string]any{
		bucketEntities: fx.Entities,
		bucketMoves:    fx.Moves,
		bucketIcons:    fx.Icons,
	}
	for kind, table := range fx.Slots {
		buckets[slotsPrefix+string(kind)] = table
	}
	for kind, table := range fx.Flags {
		buckets[flagsPrefix+string(kind)] = table
	}
	for bucket, v := range buckets {
		if err := upsert(ctx, tx, bucket, v); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	s.MemoryStore = NewMemoryStore(fx)
	return nil
}

// SetSlotTable persists a slot table, then updates the in-memory copy.
func (s *SQLiteStore) SetSlotTable(kind core.TableKind, table core.SlotTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := upsert(context.Background(), s.db, slotsPrefix+string(kind), table); err != nil {
		return err
	}
	return s.MemoryStore.SetSlotTable(kind, table)
}

// SetFlagTable persists a compatibility table, then updates the in-memory copy.
func (s *SQLiteStore) SetFlagTable(kind core.TableKind, table *core.FlagTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := upsert(context.Background(), s.db, flagsPrefix+string(kind), table); err != nil {
		return err
	}
	return s.MemoryStore.SetFlagTable(kind, table)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, bucket string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", bucket, err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
		bucket, data,
	); err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	return nil
}

// DB exposes the underlying handle so the audit sink can share the file.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Compile-time interface checks.
var (
	_ core.DataLayer  = (*SQLiteStore)(nil)
	_ core.IconSource = (*SQLiteStore)(nil)
)
