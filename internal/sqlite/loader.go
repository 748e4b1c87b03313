// This file loads kv.jsonl into SQLite on Attach and writes it back.

package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/leadfunnel/internal/jsonl"
)

// initJSONLFile creates an empty kv.jsonl if it does not exist.
func initJSONLFile(dataDir string) error {
	path := filepath.Join(dataDir, kvJSONLFile)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", kvJSONLFile, err)
	}
	return os.WriteFile(path, nil, 0o644)
}

// loadKVJSONL reads kv.jsonl and inserts its records into the kv table.
// Loading is transactional: all records load or the table stays empty.
// Malformed lines and records without a key are skipped; unknown fields are
// ignored. A later line for the same key replaces an earlier one.
func loadKVJSONL(db *sql.DB, dataDir string) error {
	records, err := jsonl.Read(filepath.Join(dataDir, kvJSONLFile))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?) " +
			"ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at")
	if err != nil {
		return fmt.Errorf("preparing kv insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var row kvJSON
		if err := json.Unmarshal(rec, &row); err != nil {
			continue
		}
		if row.Key == "" {
			continue
		}
		if row.UpdatedAt == "" {
			row.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
		}
		if _, err := stmt.Exec(row.Key, row.Value, row.UpdatedAt); err != nil {
			return fmt.Errorf("loading key %q: %w", row.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// persistKVJSONL writes every kv row to kv.jsonl atomically, ordered by key.
func persistKVJSONL(db *sql.DB, dataDir string) error {
	rows, err := db.Query("SELECT key, value, updated_at FROM kv ORDER BY key")
	if err != nil {
		return fmt.Errorf("querying kv: %w", err)
	}
	defer rows.Close()

	var out []kvJSON
	for rows.Next() {
		var row kvJSON
		if err := rows.Scan(&row.Key, &row.Value, &row.UpdatedAt); err != nil {
			return fmt.Errorf("scanning kv row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating kv: %w", err)
	}

	records, err := jsonl.Marshal(out)
	if err != nil {
		return err
	}
	return jsonl.Write(filepath.Join(dataDir, kvJSONLFile), records)
}
