package database

import (
	"time"

	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/aqi"
)

// Station represents a registered air quality monitoring station
type Station struct {
	StationID string
	Location  string
	Lat       *float64
	Lon       *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RawReading represents one stored multi-pollutant measurement with the
// AQI computed at write time. Pollutant columns are nullable: NULL means
// the channel was not measured.
type RawReading struct {
	ID                int64
	StationID         string
	Timestamp         time.Time
	PM25              *float64
	PM10              *float64
	O3                *float64
	CO                *float64
	SO2               *float64
	NO2               *float64
	Temperature       *float64
	Humidity          *float64
	WindSpeed         *float64
	AQI               int
	DominantPollutant string
	ReceivedAt        time.Time
}

// FeatureVector lays the pollutant columns out in the canonical order used
// by the forecast pipeline. Unmeasured channels become 0.
func (r *RawReading) FeatureVector() []float64 {
	deref := func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	}
	return []float64{
		deref(r.PM25), deref(r.PM10), deref(r.O3),
		deref(r.CO), deref(r.SO2), deref(r.NO2),
	}
}

// Pollutants returns the measured channels as an aqi.Reading. Unmeasured
// channels are absent, not zero.
func (r *RawReading) Pollutants() aqi.Reading {
	reading := make(aqi.Reading)
	set := func(p aqi.Pollutant, v *float64) {
		if v != nil {
			reading[p] = *v
		}
	}
	set(aqi.PM25, r.PM25)
	set(aqi.PM10, r.PM10)
	set(aqi.O3, r.O3)
	set(aqi.CO, r.CO)
	set(aqi.SO2, r.SO2)
	set(aqi.NO2, r.NO2)
	return reading
}

// HourlyAQI represents hourly aggregated air quality data
type HourlyAQI struct {
	ID            int64
	StationID     string
	HourTimestamp time.Time
	AvgPM25       *float64
	AvgPM10       *float64
	AvgO3         *float64
	AvgCO         *float64
	AvgSO2        *float64
	AvgNO2        *float64
	AvgAQI        *float64
	MaxAQI        *int
	SampleCount   int
	CreatedAt     time.Time
}

// DailyAQISummary represents daily min/max air quality data
type DailyAQISummary struct {
	ID        int64
	StationID string
	Date      time.Time
	MinAQI    *int
	MaxAQI    *int
	AvgAQI    *float64
	MinPM25   *float64
	MaxPM25   *float64
	MinPM10   *float64
	MaxPM10   *float64
	MinO3     *float64
	MaxO3     *float64
	MinCO     *float64
	MaxCO     *float64
	MinSO2    *float64
	MaxSO2    *float64
	MinNO2    *float64
	MaxNO2    *float64
	CreatedAt time.Time
}

// AlertThreshold represents an alert configuration. MetricName is either
// "aqi" (the aggregated index) or a pollutant key.
type AlertThreshold struct {
	ID              int
	StationID       string
	MetricName      string
	Operator        string
	ThresholdValue  float64
	DurationMinutes int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AlertLog represents a logged alert event
type AlertLog struct {
	AlertID         int64
	StationID       string
	MetricName      string
	BreachValue     float64
	ThresholdConfig string // JSON
	StartTime       time.Time
	EndTime         *time.Time
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const (
	AlertStatusActive  = "ACTIVE"
	AlertStatusCleared = "CLEARED"
)
