package store

import (
	"errors"
	"sync"
	"time"

	"github.com/weathernow/weathernow/internal/weather"
)

var (
	// ErrNotFound is returned when no cached conditions exist for a location.
	ErrNotFound = errors.New("no cached conditions for location")
)

type entry struct {
	conditions weather.CurrentConditions
	storedAt   time.Time
}

// LastKnown is a concurrency-safe in-memory cache holding the most recent
// successfully fetched conditions per location. It backs the offline
// fallback: when the network is down, the UI can still show the last value
// it saw. Entries older than maxAge are treated as absent.
type LastKnown struct {
	mu sync.RWMutex

	// key: location key, value: latest conditions
	data map[string]entry

	maxAge time.Duration // 0 = entries never expire
}

// NewLastKnown creates a LastKnown cache with an optional entry lifetime.
func NewLastKnown(maxAge time.Duration) *LastKnown {
	return &LastKnown{
		data:   make(map[string]entry),
		maxAge: maxAge,
	}
}

// Put replaces the cached conditions for a location.
func (s *LastKnown) Put(loc weather.Location, cc weather.CurrentConditions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[loc.Key()] = entry{conditions: cc, storedAt: time.Now()}
}

// Get returns the cached conditions for a location and when they were stored.
func (s *LastKnown) Get(loc weather.Location) (weather.CurrentConditions, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[loc.Key()]
	if !ok {
		return weather.CurrentConditions{}, time.Time{}, ErrNotFound
	}
	if s.maxAge > 0 && time.Since(e.storedAt) > s.maxAge {
		return weather.CurrentConditions{}, time.Time{}, ErrNotFound
	}
	return e.conditions, e.storedAt, nil
}
