package telemetry

import (
	"fmt"
	"math"
	"sort"
)

// band is an inclusive value range; an infinite bound means the direction is
// unmonitored (leaf wetness has no dryness threshold).
type band struct {
	min, max float64
}

func (b band) below(v float64) bool { return v < b.min }
func (b band) above(v float64) bool { return v > b.max }

// metricRange is a two-tier threshold table entry: values outside critical
// are critical, values outside ideal but within critical are warnings.
type metricRange struct {
	metric    string
	ideal     band
	critical  band
	lowLabel  string // e.g. "cold", "dry"
	highLabel string // e.g. "hot", "wet"
	extract   func(Reading) *float64
}

// vineyardRanges holds the monitored metrics in evaluation order. This order
// is also the tie-break for alerts of equal severity.
var vineyardRanges = []metricRange{
	{
		metric:    "temperature",
		ideal:     band{18, 25},
		critical:  band{10, 35},
		lowLabel:  "cold",
		highLabel: "hot",
		extract:   func(r Reading) *float64 { return r.Temperature },
	},
	{
		metric:    "soilMoisture1",
		ideal:     band{30, 60},
		critical:  band{20, 80},
		lowLabel:  "dry",
		highLabel: "wet",
		extract:   func(r Reading) *float64 { return r.SoilMoisture1 },
	},
	{
		metric:    "soilMoisture2",
		ideal:     band{30, 60},
		critical:  band{20, 80},
		lowLabel:  "dry",
		highLabel: "wet",
		extract:   func(r Reading) *float64 { return r.SoilMoisture2 },
	},
	{
		metric:    "leafWetness",
		ideal:     band{math.Inf(-1), 70},
		critical:  band{math.Inf(-1), 85},
		lowLabel:  "dry",
		highLabel: "wet",
		extract:   func(r Reading) *float64 { return r.LeafWetness },
	},
}

var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityWarning:  1,
}

// EvaluateAlerts classifies each present metric of the latest reading against
// the vineyard range table. Critical alerts sort before warnings; within a
// severity the table order (temperature, soil 1, soil 2, leaf wetness) is
// preserved by the stable sort.
func EvaluateAlerts(latest Reading) []Alert {
	alerts := make([]Alert, 0, len(vineyardRanges))

	for _, mr := range vineyardRanges {
		v := mr.extract(latest)
		if v == nil {
			continue
		}
		if a, ok := classify(mr, *v); ok {
			alerts = append(alerts, a)
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank[alerts[i].Severity] < severityRank[alerts[j].Severity]
	})

	return alerts
}

func classify(mr metricRange, v float64) (Alert, bool) {
	switch {
	case mr.critical.below(v):
		return alert(mr, v, SeverityCritical, "critically low", mr.lowLabel), true
	case mr.critical.above(v):
		return alert(mr, v, SeverityCritical, "critically high", mr.highLabel), true
	case mr.ideal.below(v):
		return alert(mr, v, SeverityWarning, "low", mr.lowLabel), true
	case mr.ideal.above(v):
		return alert(mr, v, SeverityWarning, "high", mr.highLabel), true
	default:
		return Alert{}, false
	}
}

func alert(mr metricRange, v float64, sev Severity, level, label string) Alert {
	return Alert{
		Metric:   mr.metric,
		Value:    v,
		Severity: sev,
		Message:  fmt.Sprintf("%s is %s (%s): %.1f", mr.metric, level, label, v),
	}
}
