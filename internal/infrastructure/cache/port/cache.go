package port

import (
	"context"
	"time"
)

// Cache is the key-value cache contract exposed to the application.
// Implementations must be safe for concurrent use. Values are plain
// strings; callers own serialization.
type Cache interface {
	// Get fetches the value for key. A missing key yields ErrMiss; any
	// other error is a transport or server failure.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key with the given TTL. Zero or negative TTL
	// means no expiration.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Del removes keys and returns how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// ErrMiss distinguishes an absent key from a backend failure.
var ErrMiss = errMiss{}

type errMiss struct{}

func (errMiss) Error() string { return "cache: miss" }
