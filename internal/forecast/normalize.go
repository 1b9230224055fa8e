package forecast

// Point is one time step's feature vector: the six pollutant concentrations
// in aqi.Pollutants order, optionally followed by scaled weather features.
type Point []float64

// FeatureStats holds the observed range of one feature over a series.
type FeatureStats struct {
	Min float64
	Max float64
}

// Stats holds per-feature ranges fitted on one series. Predictions derived
// from a transformed series must be inverted with the same Stats.
type Stats []FeatureStats

// Fit computes per-feature min/max over the series. A single-point series
// yields degenerate (Min == Max) stats for every feature.
func Fit(series []Point) Stats {
	if len(series) == 0 {
		return nil
	}

	stats := make(Stats, len(series[0]))
	for i, v := range series[0] {
		stats[i] = FeatureStats{Min: v, Max: v}
	}

	for _, point := range series[1:] {
		for i, v := range point {
			if i >= len(stats) {
				break
			}
			if v < stats[i].Min {
				stats[i].Min = v
			}
			if v > stats[i].Max {
				stats[i].Max = v
			}
		}
	}

	return stats
}

// Transform min-max scales a point into [0, 1]. A degenerate feature
// (constant over the fitted series) maps to 0.
func (s Stats) Transform(point Point) Point {
	out := make(Point, len(point))
	for i, v := range point {
		if i >= len(s) {
			break
		}
		span := s[i].Max - s[i].Min
		if span == 0 {
			out[i] = 0
			continue
		}
		out[i] = (v - s[i].Min) / span
	}
	return out
}

// Inverse restores original units. A degenerate feature inverts to its Min
// (lossy, the feature carried no information). Each feature is clamped to
// [0, 2*Max] to bound pathological values returned by an external predictor.
func (s Stats) Inverse(point Point) Point {
	out := make(Point, len(point))
	for i, v := range point {
		if i >= len(s) {
			break
		}

		span := s[i].Max - s[i].Min
		restored := s[i].Min
		if span != 0 {
			restored = v*span + s[i].Min
		}

		if restored < 0 {
			restored = 0
		}
		if ceiling := 2 * s[i].Max; restored > ceiling {
			restored = ceiling
		}
		out[i] = restored
	}
	return out
}

// TransformSeries applies Transform to every point.
func (s Stats) TransformSeries(series []Point) []Point {
	out := make([]Point, len(series))
	for i, p := range series {
		out[i] = s.Transform(p)
	}
	return out
}
