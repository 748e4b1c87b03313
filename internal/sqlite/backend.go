package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/leadfunnel/pkg/types"
)

var _ types.LocalStore = (*Backend)(nil)

// Backend implements types.LocalStore using SQLite as the query engine and
// kv.jsonl as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	db       *sql.DB

	syncStrategy  string
	batchSize     int
	batchInterval time.Duration
	pendingWrites int         // writes not yet persisted to kv.jsonl
	batchTimer    *time.Timer // periodic flush for the batch strategy
	batchMu       sync.Mutex  // protects pendingWrites and batchTimer
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if needed, rebuilds the SQLite database, and loads
// kv.jsonl into it.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// The database is a cache of kv.jsonl; start from a fresh file.
	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if err := initJSONLFile(dataDir); err != nil {
		db.Close()
		return err
	}
	if err := loadKVJSONL(db, dataDir); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.dataDir = dataDir
	b.syncStrategy = config.EffectiveSyncStrategy()
	b.batchSize = config.EffectiveBatchSize()
	b.batchInterval = time.Duration(config.EffectiveBatchInterval()) * time.Second
	b.pendingWrites = 0
	b.attached = true

	if b.syncStrategy == types.SyncBatch && b.batchInterval > 0 {
		b.startBatchTimer()
	}
	return nil
}

// Detach flushes pending writes and closes the SQLite connection.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.stopBatchTimer()

	if err := b.flushPendingWritesLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// Get returns the value stored under key.
func (b *Backend) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, types.ErrInvalidKey
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return "", false, types.ErrDetached
	}

	var value string
	err := b.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key and persists according to the sync strategy.
func (b *Backend) Set(key, value string) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := b.db.Exec(
		"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) "+
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at",
		key, value, now,
	)
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return b.afterWrite()
}

// Remove deletes key. Removing an absent key succeeds without a write.
func (b *Backend) Remove(key string) error {
	if key == "" {
		return types.ErrInvalidKey
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrDetached
	}

	res, err := b.db.Exec("DELETE FROM kv WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("removing %q: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	return b.afterWrite()
}

// Keys returns all stored keys in ascending order.
func (b *Backend) Keys() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.db.Query("SELECT key FROM kv ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// afterWrite persists kv.jsonl now or queues the write, depending on the
// sync strategy. The caller must hold b.mu.
func (b *Backend) afterWrite() error {
	if b.shouldPersistImmediately() {
		return persistKVJSONL(b.db, b.dataDir)
	}
	return b.queueWrite()
}

// shouldPersistImmediately returns true for the immediate strategy.
func (b *Backend) shouldPersistImmediately() bool {
	return b.syncStrategy == types.SyncImmediate || b.syncStrategy == ""
}

// queueWrite counts a deferred write. For the batch strategy the queue is
// flushed synchronously once it reaches batchSize.
// The caller must hold b.mu.
func (b *Backend) queueWrite() error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	b.pendingWrites++
	if b.syncStrategy == types.SyncBatch && b.batchSize > 0 && b.pendingWrites >= b.batchSize {
		return b.flushPendingWritesBatchLocked()
	}
	return nil
}

// flushPendingWritesLocked flushes pending writes to kv.jsonl.
// The caller must hold b.mu.
func (b *Backend) flushPendingWritesLocked() error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	return b.flushPendingWritesBatchLocked()
}

// flushPendingWritesBatchLocked rewrites kv.jsonl when writes are pending.
// The caller must hold b.batchMu.
func (b *Backend) flushPendingWritesBatchLocked() error {
	if b.pendingWrites == 0 {
		return nil
	}
	if err := persistKVJSONL(b.db, b.dataDir); err != nil {
		return err
	}
	b.pendingWrites = 0
	return nil
}

// startBatchTimer starts the periodic flush for the batch strategy.
func (b *Backend) startBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		return
	}

	b.batchTimer = time.AfterFunc(b.batchInterval, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if !b.attached {
			return
		}

		_ = b.flushPendingWritesLocked()

		b.batchMu.Lock()
		if b.batchTimer != nil && b.attached {
			b.batchTimer.Reset(b.batchInterval)
		}
		b.batchMu.Unlock()
	})
}

// stopBatchTimer stops the batch flush timer if running.
func (b *Backend) stopBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		b.batchTimer.Stop()
		b.batchTimer = nil
	}
}
