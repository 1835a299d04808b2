package cache

import "errors"

// ErrNotFound is returned by Store.Get for a missing key.
var ErrNotFound = errors.New("cache: key not found")

// Store is a persistent byte store behind the in-memory LRU.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, data []byte) error
	Close() error
}
