package aqi

import (
	"testing"
)

func TestIndexFor_PM25Boundaries(t *testing.T) {
	cases := []struct {
		conc float64
		want int
	}{
		{0, 0},
		{12.0, 50},
		{35.4, 100},
		{55.4, 150},
		{150.4, 200},
		{250.4, 300},
		{500.4, 500},
	}

	for _, c := range cases {
		got := IndexFor(PM25, c.conc)
		if got != c.want {
			t.Errorf("IndexFor(pm25, %.1f) = %d, want %d", c.conc, got, c.want)
		}
	}
}

func TestIndexFor_TableEdges(t *testing.T) {
	cases := []struct {
		pollutant Pollutant
		conc      float64
		want      int
	}{
		{PM10, 54, 50},
		{PM10, 154, 100},
		{O3, 54, 50},
		{O3, 70, 100},
		{CO, 4.4, 50},
		{CO, 9.4, 100},
		{SO2, 35, 50},
		{SO2, 75, 100},
		{NO2, 53, 50},
		{NO2, 100, 100},
	}

	for _, c := range cases {
		got := IndexFor(c.pollutant, c.conc)
		if got != c.want {
			t.Errorf("IndexFor(%s, %.1f) = %d, want %d", c.pollutant, c.conc, got, c.want)
		}
	}
}

func TestIndexFor_MidSegmentInterpolation(t *testing.T) {
	// Halfway through the first PM2.5 segment: 6.0 of 0-12 maps to 25 of 0-50.
	got := IndexFor(PM25, 6.0)
	if got != 25 {
		t.Errorf("IndexFor(pm25, 6.0) = %d, want 25", got)
	}
}

func TestIndexFor_ExtrapolatesAboveTable(t *testing.T) {
	// Above the last tabled segment the last slope keeps applying, so the
	// index must exceed the table's top value and keep ordering.
	atCap := IndexFor(PM25, 500.4)
	above := IndexFor(PM25, 600.0)

	if above <= atCap {
		t.Errorf("expected extrapolated index above %d, got %d", atCap, above)
	}

	higher := IndexFor(PM25, 700.0)
	if higher <= above {
		t.Errorf("extrapolation not monotonic: %d then %d", above, higher)
	}
}

func TestIndexFor_UnknownPollutant(t *testing.T) {
	if got := IndexFor(Pollutant("pm1"), 42.0); got != 0 {
		t.Errorf("IndexFor(unknown) = %d, want 0", got)
	}
}

func TestAggregate_MaxRule(t *testing.T) {
	// pm25 21.5 interpolates to 71, o3 63 interpolates to 77. The aggregate
	// must be the maximum, not a sum or average.
	reading := Reading{
		PM25: 21.5,
		O3:   63,
	}

	result := Aggregate(reading)

	if result.AQI != 77 {
		t.Errorf("Aggregate AQI = %d, want 77", result.AQI)
	}
	if result.Dominant != O3 {
		t.Errorf("Dominant = %s, want o3", result.Dominant)
	}
	if len(result.SubIndices) != 2 {
		t.Errorf("expected 2 sub-indices, got %d", len(result.SubIndices))
	}
	if result.SubIndices[PM25] != 71 {
		t.Errorf("pm25 sub-index = %d, want 71", result.SubIndices[PM25])
	}
}

func TestAggregate_EmptyReading(t *testing.T) {
	result := Aggregate(Reading{})

	if result.AQI != 0 {
		t.Errorf("Aggregate of empty reading = %d, want 0", result.AQI)
	}
	if result.Dominant != "" {
		t.Errorf("expected no dominant pollutant, got %s", result.Dominant)
	}
}

func TestAggregate_SkipsZeroAndNegative(t *testing.T) {
	reading := Reading{
		PM25: 0,
		PM10: -3.2,
		CO:   6.0,
	}

	result := Aggregate(reading)

	if _, ok := result.SubIndices[PM25]; ok {
		t.Error("zero pm25 value should be excluded as not measured")
	}
	if _, ok := result.SubIndices[PM10]; ok {
		t.Error("negative pm10 value should be excluded as not measured")
	}
	if result.Dominant != CO {
		t.Errorf("Dominant = %s, want co", result.Dominant)
	}
}

func TestCategory(t *testing.T) {
	cases := []struct {
		aqi  int
		want string
	}{
		{0, "Good"},
		{50, "Good"},
		{51, "Moderate"},
		{150, "Unhealthy for Sensitive Groups"},
		{200, "Unhealthy"},
		{300, "Very Unhealthy"},
		{301, "Hazardous"},
		{612, "Hazardous"},
	}

	for _, c := range cases {
		if got := Category(c.aqi); got != c.want {
			t.Errorf("Category(%d) = %q, want %q", c.aqi, got, c.want)
		}
	}
}
