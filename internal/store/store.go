package store

import "context"

// Store is a flat persistent key-value map. Values are opaque bytes; callers
// choose the encoding.
// Implementations may use an embedded database or an external backend like Redis/Valkey.
type Store interface {
	// Get retrieves a value by key. Returns the value and true if found. A missing
	// key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Returns true when a value was removed.
	Delete(ctx context.Context, key string) (bool, error)

	// Keys lists every key starting with prefix, in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases any resources held by the store (e.g., database handles).
	Close() error
}

// Logger receives error reports from backends that swallow failures.
type Logger interface {
	Error(msg string, err error)
}
