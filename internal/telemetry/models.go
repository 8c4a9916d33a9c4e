package telemetry

import (
	"time"
)

// SourceFormat identifies the wire shape of an ingested payload.
type SourceFormat string

const (
	// SourceFlat is a single-level key -> scalar mapping, as sent by
	// Ecowitt/Wunderground style push gateways (form or query string).
	SourceFlat SourceFormat = "flat"
	// SourceNested is a category -> channel -> {value, unit} mapping, as
	// returned by the polled cloud API.
	SourceNested SourceFormat = "nested"
)

// Reading is the canonical, immutable sensor snapshot. Temperature is always
// Celsius; webhook Fahrenheit fields are converted at normalization time.
// Nil pointers mean the sensor was absent from the payload; a zero value is a
// real reading, never absence.
type Reading struct {
	Timestamp time.Time `json:"timestamp"` // ingestion instant, UTC

	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`

	// Soil and leaf sensors serialize an explicit null when absent so
	// consumers can tell "sensor not installed" from "field omitted".
	SoilMoisture1 *float64 `json:"soilMoisture1"`
	SoilMoisture2 *float64 `json:"soilMoisture2"`
	LeafWetness   *float64 `json:"leafWetness"`

	StationType      string `json:"stationType,omitempty"`
	Passkey          string `json:"passkey,omitempty"`
	SourceDeviceTime string `json:"sourceDeviceTime,omitempty"`

	// Raw keeps the untransformed payload for diagnostics. Derived
	// computations never look at it.
	Raw map[string]any `json:"-"`
}

// HasUsableMetric reports whether the reading carries at least one monitored
// metric. Readings without one are dropped as noise, not stored.
func (r Reading) HasUsableMetric() bool {
	return r.Temperature != nil || r.SoilMoisture1 != nil ||
		r.SoilMoisture2 != nil || r.LeafWetness != nil
}

// Severity of an alert.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

// Alert describes one metric of the latest reading falling outside its
// configured band.
type Alert struct {
	Metric   string   `json:"metric"`
	Value    float64  `json:"value"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// MetricStats is the windowed aggregate for a single metric.
type MetricStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
	Count  int     `json:"count"`
}

// StatsReport combines per-metric aggregates over a trailing window together
// with the observed time range of the readings that fell inside it.
type StatsReport struct {
	WindowHours float64   `json:"windowHours"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`

	Temperature   *MetricStats `json:"temperature"`
	SoilMoisture1 *MetricStats `json:"soilMoisture1"`
	SoilMoisture2 *MetricStats `json:"soilMoisture2"`
	LeafWetness   *MetricStats `json:"leafWetness"`
}

// AlertReport wraps the evaluated alerts for the latest reading.
type AlertReport struct {
	Timestamp time.Time `json:"timestamp"`
	Alerts    []Alert   `json:"alerts"`
}

// DebugSnapshot exposes operational state for diagnostics. It is the only
// place the stored-vs-dropped distinction and the raw payload surface.
type DebugSnapshot struct {
	LastRawPayload map[string]any `json:"lastRawPayload"`
	TotalReadings  int            `json:"totalReadings"`
	LatestReading  *Reading       `json:"latestReading"`
}
