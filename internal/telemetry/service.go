package telemetry

import (
	"errors"
	"sync"
	"time"
)

// ErrWindowEmpty is returned when readings exist but none fall inside the
// requested trailing window.
var ErrWindowEmpty = errors.New("no readings inside the requested window")

const (
	// DefaultHistoryLimit caps history responses when the caller does not
	// ask for a specific count.
	DefaultHistoryLimit = 100
	// DefaultStatsWindowHours is the trailing window for aggregates.
	DefaultStatsWindowHours = 24
)

// Service is the core ingestion and query facade. All state is constructor
// injected: the bounded store plus a last-raw-payload cache kept for the
// debug endpoint. Both webhook handlers and the background poller deliver
// payloads through Ingest.
type Service struct {
	store Store

	mu      sync.RWMutex
	lastRaw map[string]any
}

// NewService creates a Service around the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Ingest normalizes a raw payload and appends the resulting reading when it
// carries at least one usable metric. The returned flag reports whether a
// reading was stored; payloads without usable metrics are dropped silently
// so chatty gateways are never answered with an error.
func (s *Service) Ingest(raw map[string]any, format SourceFormat) bool {
	s.mu.Lock()
	s.lastRaw = raw
	s.mu.Unlock()

	reading := Normalize(raw, format, time.Now())
	if !reading.HasUsableMetric() {
		return false
	}

	s.store.Append(reading)
	return true
}

// GetLatest returns the most recent reading.
func (s *Service) GetLatest() (Reading, error) {
	return s.store.Latest()
}

// GetHistory returns readings from the trailing window of the given size in
// hours (0 means unbounded), keeping at most limit entries in chronological
// order.
func (s *Service) GetHistory(hours float64, limit int) []Reading {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.Query(WindowDuration(hours), limit)
}

// GetStats aggregates the monitored metrics over the trailing window.
func (s *Service) GetStats(hours float64) (*StatsReport, error) {
	if hours <= 0 {
		hours = DefaultStatsWindowHours
	}
	readings := s.store.Query(WindowDuration(hours), 0)
	report := BuildReport(readings, hours)
	if report == nil {
		if _, err := s.store.Latest(); err != nil {
			return nil, err
		}
		// Readings exist but none fall inside the window.
		return nil, ErrWindowEmpty
	}
	return report, nil
}

// GetAlerts evaluates the latest reading against the vineyard range table.
func (s *Service) GetAlerts() (*AlertReport, error) {
	latest, err := s.store.Latest()
	if err != nil {
		return nil, err
	}
	return &AlertReport{
		Timestamp: latest.Timestamp,
		Alerts:    EvaluateAlerts(latest),
	}, nil
}

// GetDebugSnapshot exposes the last raw payload, the retained reading count
// and the latest reading for operational diagnostics.
func (s *Service) GetDebugSnapshot() DebugSnapshot {
	s.mu.RLock()
	lastRaw := s.lastRaw
	s.mu.RUnlock()

	snap := DebugSnapshot{
		LastRawPayload: lastRaw,
		TotalReadings:  s.store.Len(),
	}
	if latest, err := s.store.Latest(); err == nil {
		snap.LatestReading = &latest
	}
	return snap
}
