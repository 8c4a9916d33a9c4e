package telemetry

import "time"

// Store is the contract the bounded in-memory store (and any future
// implementation) must satisfy.
type Store interface {
	// Append adds a reading at the end, evicting the oldest past capacity.
	Append(r Reading)
	// Latest returns the most recently appended reading.
	Latest() (Reading, error)
	// Query returns readings newer than now-since (since <= 0 means
	// unbounded), keeping the most recent limit entries in chronological
	// order.
	Query(since time.Duration, limit int) []Reading
	// All returns a snapshot of the full history in insertion order.
	All() []Reading
	// Len reports the current number of retained readings.
	Len() int
}
