package aqi

import (
	"math"
)

// Reading maps pollutant keys to measured concentrations. A missing key
// means the pollutant was not measured.
type Reading map[Pollutant]float64

// Result is an aggregated AQI with its per-pollutant breakdown.
type Result struct {
	AQI        int               `json:"aqi"`
	SubIndices map[Pollutant]int `json:"sub_indices"`
	Dominant   Pollutant         `json:"dominant_pollutant,omitempty"`
}

// IndexFor computes the sub-index for a single pollutant concentration by
// linear interpolation within its breakpoint segment. Concentrations above
// the last tabled segment reuse that segment's slope unbounded: a hazardous
// reading keeps growing instead of saturating, so ordering is preserved.
func IndexFor(p Pollutant, concentration float64) int {
	segs, ok := breakpoints[p]
	if !ok {
		return 0
	}

	seg := segs[len(segs)-1]
	for _, s := range segs {
		if concentration <= s.ConcHigh {
			seg = s
			break
		}
	}

	slope := float64(seg.AQIHigh-seg.AQILow) / (seg.ConcHigh - seg.ConcLow)
	return int(math.Round(slope*(concentration-seg.ConcLow) + float64(seg.AQILow)))
}

// Aggregate computes the overall AQI for a reading: the maximum sub-index
// over all measured pollutants. A pollutant with no entry, or a value of
// zero or below, counts as not measured (a zeroed sensor channel is the
// common hardware failure mode and must not report clean air). An empty
// reading aggregates to 0.
func Aggregate(reading Reading) Result {
	result := Result{
		SubIndices: make(map[Pollutant]int),
	}

	for _, p := range Pollutants {
		value, ok := reading[p]
		if !ok || value <= 0 {
			continue
		}

		sub := IndexFor(p, value)
		result.SubIndices[p] = sub

		if sub > result.AQI || result.Dominant == "" {
			result.AQI = sub
			result.Dominant = p
		}
	}

	return result
}

// Category returns the EPA descriptive band for an AQI value.
func Category(aqi int) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	case aqi <= 200:
		return "Unhealthy"
	case aqi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}
