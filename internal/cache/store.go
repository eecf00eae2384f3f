// Package cache provides the pluggable match-result cache backends. The
// matching engine treats a Store as best-effort: backend failures are logged
// by the caller and never fail a match.
package cache

import (
	"errors"
	"time"
)

var ErrCacheUnavailable = errors.New("cache backend unavailable")

// Store is the cache backend contract: get-or-miss reads, TTL-bounded writes,
// and a full clear. Entries are never invalidated piecemeal; they expire.
type Store interface {
	Get(key string) (value []byte, found bool, err error)
	Set(key string, value []byte, ttl time.Duration) error
	Clear() error
}
