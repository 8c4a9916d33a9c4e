package store

import (
	"errors"
	"sync"
	"time"

	"github.com/vinelogic/vineyard-telemetry/internal/telemetry"
)

var (
	// ErrNoData is returned when the store holds no readings yet.
	ErrNoData = errors.New("no readings recorded yet")
)

// DefaultCapacity bounds the rolling history when no explicit capacity is
// configured.
const DefaultCapacity = 10000

// MemoryStore is a concurrency-safe, capacity-bounded, append-only sequence
// of readings. Order is strictly insertion order; overflow evicts from the
// front (FIFO). Nothing is persisted across restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	readings []telemetry.Reading
	capacity int
}

// NewMemoryStore creates a store retaining at most capacity readings.
// A capacity <= 0 falls back to DefaultCapacity.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		readings: make([]telemetry.Reading, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a reading at the end and enforces the capacity bound. Eviction
// and insertion happen under one lock so readers never observe a partially
// applied append.
func (s *MemoryStore) Append(r telemetry.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readings = append(s.readings, r)
	if len(s.readings) > s.capacity {
		over := len(s.readings) - s.capacity
		s.readings = s.readings[over:]
	}
}

// Latest returns the most recently appended reading.
func (s *MemoryStore) Latest() (telemetry.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.readings) == 0 {
		return telemetry.Reading{}, ErrNoData
	}
	return s.readings[len(s.readings)-1], nil
}

// Query returns the readings with timestamp >= now-since (all readings when
// since <= 0), truncated to the most recent limit entries, in original
// chronological order.
func (s *MemoryStore) Query(since time.Duration, limit int) []telemetry.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.readings
	if since > 0 {
		cutoff := time.Now().UTC().Add(-since)
		// History is ordered by arrival time, so the first in-window
		// entry marks the start of the match.
		i := 0
		for ; i < len(s.readings); i++ {
			if !s.readings[i].Timestamp.Before(cutoff) {
				break
			}
		}
		matched = s.readings[i:]
	}

	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}

	result := make([]telemetry.Reading, len(matched))
	copy(result, matched)
	return result
}

// All returns a copy of the full history in insertion order.
func (s *MemoryStore) All() []telemetry.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]telemetry.Reading, len(s.readings))
	copy(result, s.readings)
	return result
}

// Len reports the number of retained readings.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.readings)
}
