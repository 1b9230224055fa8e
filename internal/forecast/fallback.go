package forecast

import (
	"math/rand"
)

// DefaultWindowSize caps how much history the fallback looks at: the most
// recent 72 hourly points.
const DefaultWindowSize = 72

// FallbackForecaster extrapolates a series locally when the remote
// predictor is unavailable: overall mean plus linear trend plus an
// hour-of-day pattern, perturbed by bounded jitter so the output is not a
// perfectly straight line. Each call is a pure function of its input window
// and the injected randomness source.
type FallbackForecaster struct {
	windowSize int
	rng        *rand.Rand
}

// NewFallbackForecaster creates a forecaster with the given randomness
// source. Tests pass a fixed-seed rand for reproducible output.
func NewFallbackForecaster(rng *rand.Rand) *FallbackForecaster {
	return &FallbackForecaster{
		windowSize: DefaultWindowSize,
		rng:        rng,
	}
}

// Forecast produces horizon future points from the series, in original
// units. referenceHour is the hour-of-day (0-23) of the last observed
// point; it is passed in rather than read from the clock so the daily
// pattern is deterministic under test.
func (f *FallbackForecaster) Forecast(series []Point, horizon int, referenceHour int) []Point {
	window := series
	if len(window) > f.windowSize {
		window = window[len(window)-f.windowSize:]
	}
	if len(window) == 0 || horizon <= 0 {
		return nil
	}

	width := len(window[0])
	mean := featureMeans(window, width)
	trend := featureTrend(window, width)

	// A daily pattern needs at least one full day of history.
	var pattern [][]float64
	if len(window) >= 24 {
		pattern = dailyPattern(window, mean, width)
	}

	out := make([]Point, 0, horizon)
	for h := 1; h <= horizon; h++ {
		point := make(Point, width)
		for i := 0; i < width; i++ {
			value := mean[i] + trend[i]*float64(h)
			if pattern != nil {
				value += pattern[(referenceHour+h)%24][i]
			}

			// Bounded +/-5% perturbation.
			value += value * (f.rng.Float64()*0.1 - 0.05)

			if value < 0 {
				value = 0
			}
			point[i] = value
		}
		out = append(out, point)
	}

	return out
}

func featureMeans(window []Point, width int) []float64 {
	mean := make([]float64, width)
	for _, point := range window {
		for i := 0; i < width && i < len(point); i++ {
			mean[i] += point[i]
		}
	}
	for i := range mean {
		mean[i] /= float64(len(window))
	}
	return mean
}

// featureTrend is the mean first difference between consecutive points.
func featureTrend(window []Point, width int) []float64 {
	trend := make([]float64, width)
	if len(window) < 2 {
		return trend
	}

	for n := 1; n < len(window); n++ {
		prev, cur := window[n-1], window[n]
		for i := 0; i < width && i < len(prev) && i < len(cur); i++ {
			trend[i] += cur[i] - prev[i]
		}
	}
	for i := range trend {
		trend[i] /= float64(len(window) - 1)
	}
	return trend
}

// dailyPattern buckets the window by index modulo 24 and averages each
// bucket's per-feature deviation from the overall mean.
func dailyPattern(window []Point, mean []float64, width int) [][]float64 {
	sums := make([][]float64, 24)
	counts := make([]int, 24)
	for b := range sums {
		sums[b] = make([]float64, width)
	}

	for n, point := range window {
		bucket := n % 24
		counts[bucket]++
		for i := 0; i < width && i < len(point); i++ {
			sums[bucket][i] += point[i] - mean[i]
		}
	}

	for b := range sums {
		if counts[b] == 0 {
			continue
		}
		for i := range sums[b] {
			sums[b][i] /= float64(counts[b])
		}
	}

	return sums
}
