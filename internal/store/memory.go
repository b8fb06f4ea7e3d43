package store

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/weather-lookup/internal/weather"
)

type entry struct {
	report  weather.Report
	savedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory report cache.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location query key
	data map[string]entry

	// retention configuration
	maxEntries int           // max number of cached locations
	maxAge     time.Duration // how long a report stays fresh

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxEntries or maxAge is <= 0, it is treated as unlimited.
func NewMemoryStore(maxEntries int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]entry),
		maxEntries: maxEntries,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save stores the report for key and enforces retention.
func (s *MemoryStore) Save(_ context.Context, key string, report weather.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.data[key] = entry{report: report, savedAt: now}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := now.Add(-s.maxAge)
		for k, e := range s.data {
			if e.savedAt.Before(cutoff) {
				delete(s.data, k)
			}
		}
	}

	// Enforce retention by count, oldest first.
	for s.maxEntries > 0 && len(s.data) > s.maxEntries {
		var oldestKey string
		var oldest time.Time
		for k, e := range s.data {
			if oldestKey == "" || e.savedAt.Before(oldest) {
				oldestKey, oldest = k, e.savedAt
			}
		}
		delete(s.data, oldestKey)
	}
	return nil
}

// Get returns the cached report for key, or weather.ErrNotFound when it is
// missing or older than maxAge.
func (s *MemoryStore) Get(_ context.Context, key string) (weather.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[key]
	if !ok {
		return weather.Report{}, weather.ErrNotFound
	}
	if s.maxAge > 0 && s.now().Sub(e.savedAt) > s.maxAge {
		return weather.Report{}, weather.ErrNotFound
	}
	return e.report, nil
}

// Len returns the number of cached reports, fresh or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
