package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in-process with per-entry TTL eviction. It is the
// default backend and the one single-instance deployments should use.
type MemoryStore struct {
	entries *gocache.Cache
}

func NewMemoryStore(defaultTTL, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: gocache.New(defaultTTL, cleanupInterval),
	}
}

func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	raw, found := s.entries.Get(key)
	if !found {
		return nil, false, nil
	}

	value, ok := raw.([]byte)
	if !ok {
		// A foreign value under our key is treated as a miss and evicted.
		s.entries.Delete(key)
		return nil, false, nil
	}

	return value, true, nil
}

func (s *MemoryStore) Set(key string, value []byte, ttl time.Duration) error {
	s.entries.Set(key, value, ttl)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.entries.Flush()
	return nil
}
