package cache

import "time"

// BreakerStore wraps a Store with a circuit breaker. When the backend keeps
// failing the breaker opens and every operation returns ErrCacheUnavailable
// immediately, so match latency never depends on a dead cache.
type BreakerStore struct {
	store   Store
	breaker *CircuitBreaker
}

func NewBreakerStore(store Store, config CircuitBreakerConfig) *BreakerStore {
	return &BreakerStore{
		store:   store,
		breaker: NewCircuitBreaker(config),
	}
}

func (s *BreakerStore) Get(key string) ([]byte, bool, error) {
	if s.breaker.IsOpen() {
		return nil, false, ErrCacheUnavailable
	}

	value, found, err := s.store.Get(key)
	if err != nil {
		s.breaker.RecordFailure()
		return nil, false, err
	}

	s.breaker.RecordSuccess()
	return value, found, nil
}

func (s *BreakerStore) Set(key string, value []byte, ttl time.Duration) error {
	if s.breaker.IsOpen() {
		return ErrCacheUnavailable
	}

	if err := s.store.Set(key, value, ttl); err != nil {
		s.breaker.RecordFailure()
		return err
	}

	s.breaker.RecordSuccess()
	return nil
}

func (s *BreakerStore) Clear() error {
	if s.breaker.IsOpen() {
		return ErrCacheUnavailable
	}

	if err := s.store.Clear(); err != nil {
		s.breaker.RecordFailure()
		return err
	}

	s.breaker.RecordSuccess()
	return nil
}

// State exposes the breaker state for health reporting
func (s *BreakerStore) State() BreakerState {
	return s.breaker.GetState()
}
