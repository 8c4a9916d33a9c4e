package telemetry

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// fahrenheitToCelsius converts a Fahrenheit sample to Celsius.
func fahrenheitToCelsius(v float64) float64 {
	return (v - 32) * 5 / 9
}

// flatRule is one entry of an ordered extraction chain: a source field name
// plus an optional unit conversion. Rules are evaluated in priority order and
// the first field that parses wins; synonyms are never averaged.
type flatRule struct {
	key     string
	convert func(float64) float64
}

var (
	flatTemperatureRules = []flatRule{
		{key: "tempf", convert: fahrenheitToCelsius},
		{key: "temp1f", convert: fahrenheitToCelsius},
		{key: "tempinf", convert: fahrenheitToCelsius},
		{key: "temp"}, // already Celsius
	}
	flatHumidityRules = []flatRule{
		{key: "humidity"},
		{key: "humidity1"},
		{key: "humidityin"},
	}
	flatLeafWetnessRules = []flatRule{
		{key: "leafwetness_ch1"},
		{key: "leafwetness1"},
		{key: "leafwet_ch1"},
	}
)

func flatSoilRules(channel int) []flatRule {
	return []flatRule{
		{key: fmt.Sprintf("soilmoisture%d", channel)},
		{key: fmt.Sprintf("soilhum%d", channel)},
	}
}

// Normalize maps a raw gateway payload onto the canonical Reading shape.
// It is a pure function of its inputs: malformed numeric fields degrade to
// absent metrics and never produce an error.
func Normalize(payload map[string]any, format SourceFormat, now time.Time) Reading {
	switch format {
	case SourceNested:
		return normalizeNested(payload, now)
	default:
		return normalizeFlat(payload, now)
	}
}

func normalizeFlat(payload map[string]any, now time.Time) Reading {
	r := Reading{
		Timestamp:   now.UTC(),
		Raw:         payload,
		StationType: firstString(payload, "stationtype"),
		Passkey:     firstString(payload, "PASSKEY", "passkey", "ID"),
	}
	if r.StationType == "" {
		r.StationType = "Unknown"
	}
	if r.Passkey == "" {
		r.Passkey = "Unknown"
	}
	if dt := firstString(payload, "dateutc"); dt != "" {
		r.SourceDeviceTime = dt
	}

	r.Temperature = applyFlatRules(payload, flatTemperatureRules)
	r.Humidity = applyFlatRules(payload, flatHumidityRules)
	r.SoilMoisture1 = applyFlatRules(payload, flatSoilRules(1))
	r.SoilMoisture2 = applyFlatRules(payload, flatSoilRules(2))
	r.LeafWetness = applyFlatRules(payload, flatLeafWetnessRules)

	return r
}

// applyFlatRules walks the chain and returns the first value that parses.
// Flat-shape values are kept at full precision.
func applyFlatRules(payload map[string]any, rules []flatRule) *float64 {
	for _, rule := range rules {
		raw, ok := payload[rule.key]
		if !ok {
			continue
		}
		v, ok := toFloat(raw)
		if !ok {
			continue
		}
		if rule.convert != nil {
			v = rule.convert(v)
		}
		return &v
	}
	return nil
}

func normalizeNested(payload map[string]any, now time.Time) Reading {
	r := Reading{
		Timestamp:   now.UTC(),
		Raw:         payload,
		StationType: "Unknown",
		Passkey:     "Unknown",
	}

	// Outdoor sensors are canonical; indoor is the fallback when the
	// outdoor array is not reporting.
	r.Temperature = nestedValue(payload, "outdoor", "temperature")
	if r.Temperature == nil {
		r.Temperature = nestedValue(payload, "indoor", "temperature")
	}
	r.Humidity = nestedValue(payload, "outdoor", "humidity")
	if r.Humidity == nil {
		r.Humidity = nestedValue(payload, "indoor", "humidity")
	}

	r.SoilMoisture1 = nestedChannelValue(payload, "soil_ch", 1, "soilmoisture")
	r.SoilMoisture2 = nestedChannelValue(payload, "soil_ch", 2, "soilmoisture")
	r.LeafWetness = nestedChannelValue(payload, "leaf_ch", 1, "leaf_wetness")

	return r
}

// nestedValue resolves category.sensor.value and rounds to one decimal.
func nestedValue(payload map[string]any, category, sensor string) *float64 {
	cat, ok := payload[category].(map[string]any)
	if !ok {
		return nil
	}
	return sensorValue(cat[sensor])
}

// nestedChannelValue resolves a numbered sensor channel. The cloud API emits
// either per-channel objects ("soil_ch1") or a positional array under the
// bare prefix ("soil_ch"[channel-1]).
func nestedChannelValue(payload map[string]any, prefix string, channel int, sensor string) *float64 {
	if ch, ok := payload[fmt.Sprintf("%s%d", prefix, channel)].(map[string]any); ok {
		if v := sensorValue(ch[sensor]); v != nil {
			return v
		}
	}
	if arr, ok := payload[prefix].([]any); ok && channel-1 < len(arr) {
		if ch, ok := arr[channel-1].(map[string]any); ok {
			return sensorValue(ch[sensor])
		}
	}
	return nil
}

// sensorValue extracts the "value" field of a {value, unit} record, rounded
// to one decimal place.
func sensorValue(node any) *float64 {
	rec, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	v, ok := toFloat(rec["value"])
	if !ok {
		return nil
	}
	v = math.Round(v*10) / 10
	return &v
}

// toFloat accepts the scalar encodings seen on the wire: JSON numbers and
// numeric strings. Anything unparsable (including NaN) counts as absent.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func firstString(payload map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := payload[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
