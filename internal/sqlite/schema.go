// Package sqlite implements the SQLite profile store for leadfunnel.
package sqlite

// kvJSONLFile is the source-of-truth file inside DataDir. The SQLite
// database is rebuilt from it on every Attach.
const (
	kvJSONLFile = "kv.jsonl"
	dbFile      = "funnel.db"
)

// Schema DDL.
const (
	createKV = `CREATE TABLE kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxKVUpdated = `CREATE INDEX idx_kv_updated ON kv(updated_at);`
)

// schemaDDL lists all statements executed on a fresh database, in order.
var schemaDDL = []string{
	createKV,
	idxKVUpdated,
}
