package forecast

import (
	"math/rand"
	"testing"
)

func constantSeries(n int, value float64, width int) []Point {
	series := make([]Point, n)
	for i := range series {
		point := make(Point, width)
		for j := range point {
			point[j] = value
		}
		series[i] = point
	}
	return series
}

func TestFallback_ForecastLength(t *testing.T) {
	f := NewFallbackForecaster(rand.New(rand.NewSource(1)))

	out := f.Forecast(constantSeries(48, 20, 6), 24, 13)
	if len(out) != 24 {
		t.Fatalf("expected 24 forecast points, got %d", len(out))
	}
	for i, point := range out {
		if len(point) != 6 {
			t.Errorf("point %d has width %d, want 6", i, len(point))
		}
	}
}

func TestFallback_NeverNegative(t *testing.T) {
	f := NewFallbackForecaster(rand.New(rand.NewSource(42)))

	// A strictly declining series extrapolates below zero fast; every
	// output feature must be clamped at 0.
	series := make([]Point, 48)
	for i := range series {
		series[i] = Point{float64(48 - i), float64(96 - 2*i)}
	}

	out := f.Forecast(series, 24, 0)
	for h, point := range out {
		for i, v := range point {
			if v < 0 {
				t.Errorf("step %d feature %d is negative: %f", h+1, i, v)
			}
		}
	}
}

func TestFallback_JitterStaysBounded(t *testing.T) {
	f := NewFallbackForecaster(rand.New(rand.NewSource(7)))

	// Constant series: mean 50, no trend, flat daily pattern. Every
	// forecast value is 50 plus at most 5% jitter.
	out := f.Forecast(constantSeries(72, 50, 1), 24, 5)
	for h, point := range out {
		if point[0] < 47.4 || point[0] > 52.6 {
			t.Errorf("step %d: value %f outside the 5%% jitter band around 50", h+1, point[0])
		}
	}
}

func TestFallback_TrendFollowed(t *testing.T) {
	f := NewFallbackForecaster(rand.New(rand.NewSource(3)))

	// Rising by 1 per step, but shorter than a day so no daily pattern.
	series := make([]Point, 12)
	for i := range series {
		series[i] = Point{float64(10 + i)}
	}

	out := f.Forecast(series, 6, 0)

	// mean 15.5, trend 1: step 6 centers on 21.5. Allow the jitter band.
	got := out[5][0]
	if got < 21.5*0.94 || got > 21.5*1.06 {
		t.Errorf("step 6 = %f, want roughly 21.5", got)
	}
}

func TestFallback_DeterministicWithSeed(t *testing.T) {
	series := constantSeries(30, 33, 2)

	a := NewFallbackForecaster(rand.New(rand.NewSource(99))).Forecast(series, 24, 8)
	b := NewFallbackForecaster(rand.New(rand.NewSource(99))).Forecast(series, 24, 8)

	for h := range a {
		for i := range a[h] {
			if a[h][i] != b[h][i] {
				t.Fatalf("same seed diverged at step %d feature %d", h+1, i)
			}
		}
	}
}

func TestFallback_EmptyWindow(t *testing.T) {
	f := NewFallbackForecaster(rand.New(rand.NewSource(1)))

	if out := f.Forecast(nil, 24, 0); out != nil {
		t.Errorf("expected nil forecast for empty series, got %d points", len(out))
	}
}

func TestFallback_WindowCapped(t *testing.T) {
	f := NewFallbackForecaster(rand.New(rand.NewSource(1)))

	// 100 points of junk followed by 72 points at 10: only the trailing
	// window may influence the forecast.
	series := constantSeries(100, 1000, 1)
	series = append(series, constantSeries(72, 10, 1)...)

	out := f.Forecast(series, 24, 0)
	for h, point := range out {
		if point[0] > 11 {
			t.Errorf("step %d = %f, old points outside the 72-point window leaked in", h+1, point[0])
		}
	}
}
