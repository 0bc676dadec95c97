package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore shares entries between processes on one host.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets several dashboard processes read while one writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite cache opened", zap.String("path", dbPath))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
			key        TEXT PRIMARY KEY,
			fetched_at INTEGER NOT NULL,
			ttl_ms     INTEGER NOT NULL,
			result     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cache_fetched ON cache_entries(fetched_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	var (
		fetchedAt int64
		ttlMS     int64
		raw       string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at, ttl_ms, result FROM cache_entries WHERE key = ?`, key,
	).Scan(&fetchedAt, &ttlMS, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("select %s: %w", key, err)
	}

	e := Entry{
		FetchedAt: time.Unix(0, fetchedAt).UTC(),
		TTL:       time.Duration(ttlMS) * time.Millisecond,
	}
	if err := json.Unmarshal([]byte(raw), &e.Result); err != nil {
		return Entry{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return e, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, e Entry) error {
	raw, err := json.Marshal(e.Result)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `INSERT INTO cache_entries (key, fetched_at, ttl_ms, result)
		VALUES (?,?,?,?)
		ON CONFLICT(key) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			ttl_ms     = excluded.ttl_ms,
			result     = excluded.result`,
		key, e.FetchedAt.UnixNano(), e.TTL.Milliseconds(), string(raw),
	)
	return err
}

func (s *SQLiteStore) Close() error {
	s.logger.Info("closing sqlite cache")
	return s.db.Close()
}
