package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"

	"DCFSuite/internal/model"
)

// SQLiteStore persists fetched market data to SQLite as msgpack blobs.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log.With().Str("component", "cache").Logger(), now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.log.Info().Str("path", dbPath).Msg("sqlite cache opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS market_data (
			cache_key  TEXT PRIMARY KEY,
			ticker     TEXT NOT NULL,
			data       BLOB NOT NULL,
			fetched_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_market_data_expires ON market_data(expires_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Get returns the entry for key if it has not expired.
func (s *SQLiteStore) Get(key string) (*model.MarketData, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var blob []byte
	err := s.db.QueryRow(`SELECT data FROM market_data WHERE cache_key = ? AND expires_at > ?`,
		key, s.now().Unix()).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query %s: %w", key, err)
	}

	var md model.MarketData
	if err := msgpack.Unmarshal(blob, &md); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return &md, true, nil
}

// Put stores md under key for ttl.
func (s *SQLiteStore) Put(key string, md *model.MarketData, ttl time.Duration) error {
	blob, err := msgpack.Marshal(md)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	_, err = s.db.Exec(`INSERT OR REPLACE INTO market_data
		(cache_key, ticker, data, fetched_at, expires_at)
		VALUES (?,?,?,?,?)`,
		key, md.Fundamentals.Ticker, blob, now.Unix(), now.Add(ttl).Unix(),
	)
	return err
}

// DeleteExpired removes all rows whose expires_at has passed.
func (s *SQLiteStore) DeleteExpired() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM market_data WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing sqlite cache")
	return s.db.Close()
}
