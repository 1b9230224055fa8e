package alerting

import (
	"testing"

	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/aqi"
)

func TestEvaluateCondition(t *testing.T) {
	cases := []struct {
		value     float64
		operator  string
		threshold float64
		want      bool
	}{
		{151, ">", 150, true},
		{150, ">", 150, false},
		{150, ">=", 150, true},
		{10, "<", 15, true},
		{15, "<=", 15, true},
		{100, "??", 50, false},
	}

	for _, c := range cases {
		got := evaluateCondition(c.value, c.operator, c.threshold)
		if got != c.want {
			t.Errorf("evaluateCondition(%.0f %s %.0f) = %v, want %v",
				c.value, c.operator, c.threshold, got, c.want)
		}
	}
}

func TestExtractMetricValue(t *testing.T) {
	e := &Evaluator{}
	reading := aqi.Reading{aqi.PM25: 40.5, aqi.CO: 2.0}
	result := aqi.Aggregate(reading)

	// The "aqi" metric resolves to the aggregated index
	value, ok := e.extractMetricValue(reading, result, MetricAQI)
	if !ok {
		t.Fatal("aqi metric should always resolve")
	}
	if int(value) != result.AQI {
		t.Errorf("aqi metric = %.0f, want %d", value, result.AQI)
	}

	// A measured pollutant resolves to its concentration
	value, ok = e.extractMetricValue(reading, result, "pm25")
	if !ok || value != 40.5 {
		t.Errorf("pm25 metric = %.1f/%v, want 40.5/true", value, ok)
	}

	// An unmeasured pollutant must be skipped, not treated as zero
	if _, ok := e.extractMetricValue(reading, result, "no2"); ok {
		t.Error("unmeasured no2 should not resolve")
	}

	if _, ok := e.extractMetricValue(reading, result, "pollen"); ok {
		t.Error("unknown metric should not resolve")
	}
}
