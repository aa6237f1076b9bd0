package session

import (
	"log"
	"sync"
	"time"

	"github.com/carcompare/backend/internal/domain"
)

// entry is a stored value with its idle deadline
type entry[T any] struct {
	value      T
	expiration time.Time
}

// MemoryStore is a thread-safe in-memory store with sliding TTL.
// Every Get or Touch pushes the deadline forward; entries idle for longer than
// the TTL are removed by the cleanup loop and passed to the eviction hook.
type MemoryStore[T any] struct {
	data    map[string]entry[T]
	mutex   sync.RWMutex
	ttl     time.Duration
	onEvict func(key string, value T)
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// Option configures a MemoryStore
type Option[T any] func(*MemoryStore[T])

// WithEvictHook registers fn to run for every entry removed by expiry or Delete
func WithEvictHook[T any](fn func(key string, value T)) Option[T] {
	return func(s *MemoryStore[T]) {
		s.onEvict = fn
	}
}

// NewMemoryStore creates a store whose cleanup loop runs every interval.
// A non-positive interval disables the loop; expired entries are then only
// dropped lazily on access.
func NewMemoryStore[T any](ttl, interval time.Duration, opts ...Option[T]) *MemoryStore[T] {
	s := &MemoryStore[T]{
		data: make(map[string]entry[T]),
		ttl:  ttl,
		now:  time.Now,
		stop: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if interval > 0 {
		go s.cleanupLoop(interval)
	}

	return s
}

// Get retrieves a value and refreshes its deadline
func (s *MemoryStore[T]) Get(key string) (T, error) {
	s.mutex.Lock()
	item, exists := s.data[key]
	if !exists {
		s.mutex.Unlock()
		var zero T
		return zero, domain.ErrSessionNotFound
	}

	now := s.now()
	if now.After(item.expiration) {
		delete(s.data, key)
		s.mutex.Unlock()
		s.evict(key, item.value)
		var zero T
		return zero, domain.ErrSessionNotFound
	}

	item.expiration = now.Add(s.ttl)
	s.data[key] = item
	s.mutex.Unlock()

	return item.value, nil
}

// Set stores a value with a fresh deadline
func (s *MemoryStore[T]) Set(key string, value T) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = entry[T]{
		value:      value,
		expiration: s.now().Add(s.ttl),
	}
}

// Delete removes a value and runs the eviction hook. It reports whether the key existed.
func (s *MemoryStore[T]) Delete(key string) bool {
	s.mutex.Lock()
	item, exists := s.data[key]
	delete(s.data, key)
	s.mutex.Unlock()

	if exists {
		s.evict(key, item.value)
	}
	return exists
}

// Touch refreshes a live entry's deadline without reading it
func (s *MemoryStore[T]) Touch(key string) bool {
	_, err := s.Get(key)
	return err == nil
}

// Len returns the current number of entries, expired ones included until the next sweep
func (s *MemoryStore[T]) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Stop ends the cleanup loop and evicts every remaining entry
func (s *MemoryStore[T]) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)

		s.mutex.Lock()
		remaining := s.data
		s.data = make(map[string]entry[T])
		s.mutex.Unlock()

		for key, item := range remaining {
			s.evict(key, item.value)
		}
	})
}

// Sweep removes expired entries now and returns how many were removed
func (s *MemoryStore[T]) Sweep() int {
	s.mutex.Lock()
	now := s.now()
	expired := make(map[string]T)
	for key, item := range s.data {
		if now.After(item.expiration) {
			expired[key] = item.value
			delete(s.data, key)
		}
	}
	s.mutex.Unlock()

	for key, value := range expired {
		s.evict(key, value)
	}
	return len(expired)
}

// cleanupLoop removes expired entries periodically
func (s *MemoryStore[T]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("[SESSION] expired %d idle sessions", n)
			}
		}
	}
}

// evict runs the hook outside the lock so it may block or call back into the store
func (s *MemoryStore[T]) evict(key string, value T) {
	if s.onEvict != nil {
		s.onEvict(key, value)
	}
}
