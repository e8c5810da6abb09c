// Package history persists conversations as one JSON document in a keyed
// text store. SQLite is used when it can be opened; otherwise the store falls
// back to memory and the app keeps working without durability.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/comigor/nexucore/internal/logger"
)

// StorageKey is the key the conversation list is stored under.
const StorageKey = "nexucore_conversations"

// ErrNotFound is returned by Get for a missing key.
var ErrNotFound = errors.New("key not found")

// KV is a keyed text store.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Close() error
}

// Store loads and saves the whole conversation list.
type Store struct {
	kv KV
}

// NewStore wraps kv.
func NewStore(kv KV) *Store { return &Store{kv: kv} }

// Open returns a store backed by the SQLite file at path, or by memory when
// the database can't be opened.
func Open(path string) *Store {
	kv, err := OpenSQLite(path)
	if err != nil {
		logger.L.Warn("sqlite open failed; using in-memory history", "error", err, "path", path)
		return NewStore(NewMemory())
	}
	logger.L.Info("sqlite history DB initialized", "path", path)
	return NewStore(kv)
}

// Load returns the stored conversations. A missing key is an empty list.
func (s *Store) Load(ctx context.Context) ([]Conversation, error) {
	raw, err := s.kv.Get(ctx, StorageKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load conversations: %w", err)
	}
	var convs []Conversation
	if err := json.Unmarshal([]byte(raw), &convs); err != nil {
		return nil, fmt.Errorf("decode conversations: %w", err)
	}
	return convs, nil
}

// Save replaces the stored conversations.
func (s *Store) Save(ctx context.Context, convs []Conversation) error {
	if convs == nil {
		convs = []Conversation{}
	}
	raw, err := json.Marshal(convs)
	if err != nil {
		return fmt.Errorf("encode conversations: %w", err)
	}
	if err := s.kv.Put(ctx, StorageKey, string(raw)); err != nil {
		return fmt.Errorf("save conversations: %w", err)
	}
	return nil
}

// Close releases the underlying store.
func (s *Store) Close() error { return s.kv.Close() }

// SQLite is a KV on a single kv table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_busy_timeout=10000&_fk=1")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?;`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *SQLite) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`,
		key, value, time.Now().UTC())
	return err
}

func (s *SQLite) Close() error { return s.db.Close() }

// Memory is an in-process KV.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemory returns an empty in-memory KV.
func NewMemory() *Memory { return &Memory{data: map[string]string{}} }

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
