package telemetry

import (
	"testing"
	"time"
)

func TestEvaluateAlertsTemperatureSeverities(t *testing.T) {
	cases := []struct {
		name     string
		value    float64
		want     int
		severity Severity
	}{
		{"below critical min", 5, 1, SeverityCritical},
		{"below ideal min", 15, 1, SeverityWarning},
		{"inside ideal", 21, 0, ""},
		{"above ideal max", 27, 1, SeverityWarning},
		{"above critical max", 38, 1, SeverityCritical},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alerts := EvaluateAlerts(Reading{
				Timestamp:   time.Now(),
				Temperature: fp(tc.value),
			})
			if len(alerts) != tc.want {
				t.Fatalf("expected %d alerts, got %d", tc.want, len(alerts))
			}
			if tc.want == 0 {
				return
			}
			a := alerts[0]
			if a.Metric != "temperature" {
				t.Errorf("expected temperature alert, got %q", a.Metric)
			}
			if a.Severity != tc.severity {
				t.Errorf("expected severity %q, got %q", tc.severity, a.Severity)
			}
			if a.Value != tc.value {
				t.Errorf("expected value %v, got %v", tc.value, a.Value)
			}
		})
	}
}

func TestEvaluateAlertsSoilMoistureDirections(t *testing.T) {
	alerts := EvaluateAlerts(Reading{
		Timestamp:     time.Now(),
		SoilMoisture1: fp(15), // below critical 20: critically dry
		SoilMoisture2: fp(70), // above ideal 60, within critical 80: wet warning
	})
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	if alerts[0].Metric != "soilMoisture1" || alerts[0].Severity != SeverityCritical {
		t.Errorf("expected critical soilMoisture1 first, got %+v", alerts[0])
	}
	if alerts[1].Metric != "soilMoisture2" || alerts[1].Severity != SeverityWarning {
		t.Errorf("expected soilMoisture2 warning second, got %+v", alerts[1])
	}
}

func TestEvaluateAlertsLeafWetnessHighOnly(t *testing.T) {
	// Dry leaves are never alerted; there is no lower bound.
	if alerts := EvaluateAlerts(Reading{Timestamp: time.Now(), LeafWetness: fp(0)}); len(alerts) != 0 {
		t.Errorf("expected no alert for dry leaves, got %+v", alerts)
	}
	alerts := EvaluateAlerts(Reading{Timestamp: time.Now(), LeafWetness: fp(75)})
	if len(alerts) != 1 || alerts[0].Severity != SeverityWarning {
		t.Fatalf("expected leaf wetness warning at 75, got %+v", alerts)
	}
	alerts = EvaluateAlerts(Reading{Timestamp: time.Now(), LeafWetness: fp(90)})
	if len(alerts) != 1 || alerts[0].Severity != SeverityCritical {
		t.Fatalf("expected critical leaf wetness at 90, got %+v", alerts)
	}
}

func TestEvaluateAlertsCriticalPrecedesWarning(t *testing.T) {
	alerts := EvaluateAlerts(Reading{
		Timestamp:   time.Now(),
		Temperature: fp(27), // warning
		LeafWetness: fp(90), // critical
	})
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	if alerts[0].Metric != "leafWetness" || alerts[0].Severity != SeverityCritical {
		t.Errorf("expected the critical alert first, got %+v", alerts[0])
	}
	if alerts[1].Metric != "temperature" || alerts[1].Severity != SeverityWarning {
		t.Errorf("expected the warning second, got %+v", alerts[1])
	}
}

func TestEvaluateAlertsStableOrderWithinSeverity(t *testing.T) {
	alerts := EvaluateAlerts(Reading{
		Timestamp:     time.Now(),
		Temperature:   fp(5),  // critical
		SoilMoisture1: fp(10), // critical
		SoilMoisture2: fp(85), // critical
	})
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	want := []string{"temperature", "soilMoisture1", "soilMoisture2"}
	for i, metric := range want {
		if alerts[i].Metric != metric {
			t.Errorf("position %d: expected %q, got %q", i, metric, alerts[i].Metric)
		}
	}
}

func TestEvaluateAlertsSkipsAbsentMetrics(t *testing.T) {
	alerts := EvaluateAlerts(Reading{Timestamp: time.Now()})
	if len(alerts) != 0 {
		t.Errorf("expected no alerts for a reading with no metrics, got %+v", alerts)
	}
}
