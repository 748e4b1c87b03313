package types

import "errors"

// Config holds backend selection and parameters for LocalStore.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// SyncStrategy controls when kv.jsonl is rewritten. Empty means immediate.
	SyncStrategy  string `json:"sync_strategy,omitempty" yaml:"sync_strategy,omitempty"`
	BatchSize     int    `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	BatchInterval int    `json:"batch_interval,omitempty" yaml:"batch_interval,omitempty"` // seconds
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Sync strategies for the SQLite backend.
const (
	SyncImmediate = "immediate"
	SyncOnClose   = "on_close"
	SyncBatch     = "batch"
)

// Default batch parameters used when SyncBatch is selected without values.
const (
	DefaultBatchSize     = 10
	DefaultBatchInterval = 5
)

// Config validation errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrSyncStrategyUnknown  = errors.New("unknown sync strategy")
	ErrBatchSizeInvalid     = errors.New("batch size must be positive")
	ErrBatchIntervalInvalid = errors.New("batch interval must be positive")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
}

var knownSyncStrategies = map[string]bool{
	"":            true,
	SyncImmediate: true,
	SyncOnClose:   true,
	SyncBatch:     true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if !knownSyncStrategies[c.SyncStrategy] {
		return ErrSyncStrategyUnknown
	}
	if c.BatchSize < 0 {
		return ErrBatchSizeInvalid
	}
	if c.BatchInterval < 0 {
		return ErrBatchIntervalInvalid
	}
	return nil
}

// EffectiveSyncStrategy returns the configured strategy, defaulting to
// SyncImmediate.
func (c Config) EffectiveSyncStrategy() string {
	if c.SyncStrategy == "" {
		return SyncImmediate
	}
	return c.SyncStrategy
}

// EffectiveBatchSize returns BatchSize or DefaultBatchSize when unset.
func (c Config) EffectiveBatchSize() int {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

// EffectiveBatchInterval returns BatchInterval in seconds or
// DefaultBatchInterval when unset.
func (c Config) EffectiveBatchInterval() int {
	if c.BatchInterval <= 0 {
		return DefaultBatchInterval
	}
	return c.BatchInterval
}
