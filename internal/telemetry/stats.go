package telemetry

import (
	"sort"
	"time"
)

// ComputeStats aggregates one metric across a set of readings. Absent values
// are filtered out first; when none remain the result is nil so callers can
// tell "no data" from a zero-valued aggregate.
func ComputeStats(readings []Reading, extract func(Reading) *float64) *MetricStats {
	values := make([]float64, 0, len(readings))
	for _, r := range readings {
		if v := extract(r); v != nil {
			values = append(values, *v)
		}
	}
	if len(values) == 0 {
		return nil
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return &MetricStats{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(values)),
		// Lower median: for even counts the smaller of the two middle
		// values, never their average.
		Median: sorted[(len(sorted)-1)/2],
		Count:  len(values),
	}
}

// BuildReport computes the per-metric aggregates over readings already
// filtered to the trailing window, plus the window's observed time range.
// Returns nil when the window holds no readings.
func BuildReport(readings []Reading, hours float64) *StatsReport {
	if len(readings) == 0 {
		return nil
	}
	return &StatsReport{
		WindowHours:   hours,
		From:          readings[0].Timestamp,
		To:            readings[len(readings)-1].Timestamp,
		Temperature:   ComputeStats(readings, func(r Reading) *float64 { return r.Temperature }),
		SoilMoisture1: ComputeStats(readings, func(r Reading) *float64 { return r.SoilMoisture1 }),
		SoilMoisture2: ComputeStats(readings, func(r Reading) *float64 { return r.SoilMoisture2 }),
		LeafWetness:   ComputeStats(readings, func(r Reading) *float64 { return r.LeafWetness }),
	}
}

// WindowDuration converts a fractional-hours window into a duration.
func WindowDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
