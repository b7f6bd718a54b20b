package storage

import "errors"

var (
	// ErrNotFound is returned by Get when the key has never been written or was deleted.
	ErrNotFound = errors.New("key not found")
	// ErrNotLoaded is returned when a store is used before Init or Load.
	ErrNotLoaded = errors.New("storage not loaded")
)

// Provider is a per-device string key-value store with no expiry.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Key-value access
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	// List returns every entry whose key starts with prefix.
	List(prefix string) (map[string]string, error)

	// Utils
	GetConfigPath() string
}
