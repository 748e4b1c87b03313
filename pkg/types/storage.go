package types

import "errors"

// Storage is a flat string key/value space, the shape of a browser's
// localStorage or sessionStorage. Values are opaque strings; callers own
// serialization.
type Storage interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key succeeds.
	Remove(key string) error

	// Keys returns every stored key in ascending order.
	Keys() ([]string, error)
}

// LocalStore is a Storage that persists across process restarts. Callers
// attach to a backend, use it, and detach when done.
type LocalStore interface {
	Storage

	// Attach connects the store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached
	// if called while already attached.
	Attach(config Config) error

	// Detach flushes pending writes and releases backend resources.
	// Idempotent: multiple calls succeed. After Detach, operations return
	// ErrDetached.
	Detach() error
}

// Keys of the persisted profile key space.
const (
	KeyFormData     = "formData"
	KeySessionID    = "sessionId"
	KeyAbandonEmail = "abandonEmail"
	KeyAbandonPhone = "abandonPhone"
	KeyPartialEmail = "partialEmail"
	KeyConsentLog   = "consentLog"
	KeyExitAttempts = "exitAttempts"
	KeyCurrentStep  = "currentStep"
)

// ProfileKeys lists every key the funnel writes, for enumeration.
var ProfileKeys = []string{
	KeyFormData,
	KeySessionID,
	KeyAbandonEmail,
	KeyAbandonPhone,
	KeyPartialEmail,
	KeyConsentLog,
	KeyExitAttempts,
	KeyCurrentStep,
}

// Storage lifecycle errors.
var (
	ErrDetached        = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrInvalidKey      = errors.New("invalid storage key")
)
