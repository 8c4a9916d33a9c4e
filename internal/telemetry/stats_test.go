package telemetry

import (
	"testing"
	"time"
)

func fp(v float64) *float64 { return &v }

func readingsWithTemps(values ...float64) []Reading {
	base := time.Date(2026, 8, 26, 8, 0, 0, 0, time.UTC)
	readings := make([]Reading, 0, len(values))
	for i, v := range values {
		readings = append(readings, Reading{
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			Temperature: fp(v),
		})
	}
	return readings
}

func tempOf(r Reading) *float64 { return r.Temperature }

func TestComputeStatsLowerMedianForEvenCount(t *testing.T) {
	stats := ComputeStats(readingsWithTemps(40, 10, 30, 20), tempOf)
	if stats == nil {
		t.Fatal("expected stats")
	}
	// Lower median, never the average of the two middle values.
	if stats.Median != 20 {
		t.Errorf("expected median 20, got %v", stats.Median)
	}
}

func TestComputeStatsOddCount(t *testing.T) {
	stats := ComputeStats(readingsWithTemps(30, 10, 20), tempOf)
	if stats == nil {
		t.Fatal("expected stats")
	}
	if stats.Median != 20 {
		t.Errorf("expected median 20, got %v", stats.Median)
	}
	if stats.Min != 10 || stats.Max != 30 {
		t.Errorf("expected min 10 max 30, got %v / %v", stats.Min, stats.Max)
	}
	if stats.Avg != 20 {
		t.Errorf("expected avg 20, got %v", stats.Avg)
	}
	if stats.Count != 3 {
		t.Errorf("expected count 3, got %d", stats.Count)
	}
}

func TestComputeStatsNilWhenNoValues(t *testing.T) {
	readings := []Reading{
		{Timestamp: time.Now(), SoilMoisture1: fp(40)},
		{Timestamp: time.Now(), SoilMoisture1: fp(50)},
	}
	if stats := ComputeStats(readings, tempOf); stats != nil {
		t.Errorf("expected nil stats when no reading carries the metric, got %+v", stats)
	}
}

func TestComputeStatsSkipsAbsentValues(t *testing.T) {
	readings := readingsWithTemps(10, 20)
	readings = append(readings, Reading{Timestamp: time.Now()}) // no temperature

	stats := ComputeStats(readings, tempOf)
	if stats == nil {
		t.Fatal("expected stats")
	}
	if stats.Count != 2 {
		t.Errorf("expected absent values excluded from count, got %d", stats.Count)
	}
}

func TestBuildReportWindowRange(t *testing.T) {
	readings := readingsWithTemps(18, 22, 26)
	report := BuildReport(readings, 24)
	if report == nil {
		t.Fatal("expected report")
	}
	if !report.From.Equal(readings[0].Timestamp) {
		t.Errorf("expected From %v, got %v", readings[0].Timestamp, report.From)
	}
	if !report.To.Equal(readings[2].Timestamp) {
		t.Errorf("expected To %v, got %v", readings[2].Timestamp, report.To)
	}
	if report.Temperature == nil || report.Temperature.Count != 3 {
		t.Errorf("unexpected temperature aggregate %+v", report.Temperature)
	}
	// Metrics no reading carries come back nil, not zeroed.
	if report.SoilMoisture1 != nil {
		t.Errorf("expected nil soil aggregate, got %+v", report.SoilMoisture1)
	}
}

func TestBuildReportNilOnEmptyWindow(t *testing.T) {
	if report := BuildReport(nil, 24); report != nil {
		t.Errorf("expected nil report for empty window, got %+v", report)
	}
}
