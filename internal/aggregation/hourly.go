package aggregation

import (
	"fmt"
	"time"

	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/database"
)

// HourlyAggregator rolls raw readings up into hourly air quality rows
type HourlyAggregator struct {
	db *database.DB
}

// NewHourlyAggregator creates a new hourly aggregator
func NewHourlyAggregator(db *database.DB) *HourlyAggregator {
	return &HourlyAggregator{db: db}
}

// Aggregate performs hourly aggregation for the specified hour
func (h *HourlyAggregator) Aggregate(targetHour time.Time) error {
	startTime := targetHour.Truncate(time.Hour)
	endTime := startTime.Add(time.Hour)

	fmt.Printf("Running hourly AQI aggregation for %s\n", startTime.Format("2006-01-02 15:04:05"))

	query := `
		INSERT INTO hourly_aqi (
			station_id, hour_timestamp, avg_pm25, avg_pm10, avg_o3,
			avg_co, avg_so2, avg_no2, avg_aqi, max_aqi, sample_count
		)
		SELECT
			station_id,
			$1 AS hour_timestamp,
			AVG(pm25) AS avg_pm25,
			AVG(pm10) AS avg_pm10,
			AVG(o3) AS avg_o3,
			AVG(co) AS avg_co,
			AVG(so2) AS avg_so2,
			AVG(no2) AS avg_no2,
			AVG(aqi) AS avg_aqi,
			MAX(aqi) AS max_aqi,
			COUNT(*) AS sample_count
		FROM
			raw_readings
		WHERE
			timestamp >= $1 AND timestamp < $2
		GROUP BY
			station_id
		ON CONFLICT (station_id, hour_timestamp) DO UPDATE
		SET
			avg_pm25 = EXCLUDED.avg_pm25,
			avg_pm10 = EXCLUDED.avg_pm10,
			avg_o3 = EXCLUDED.avg_o3,
			avg_co = EXCLUDED.avg_co,
			avg_so2 = EXCLUDED.avg_so2,
			avg_no2 = EXCLUDED.avg_no2,
			avg_aqi = EXCLUDED.avg_aqi,
			max_aqi = EXCLUDED.max_aqi,
			sample_count = EXCLUDED.sample_count
	`

	result, err := h.db.Exec(query, startTime, endTime)
	if err != nil {
		return fmt.Errorf("failed to aggregate hourly data: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	fmt.Printf("Hourly aggregation completed: %d stations processed\n", rowsAffected)

	return nil
}

// AggregatePreviousHour aggregates the previous full hour
func (h *HourlyAggregator) AggregatePreviousHour() error {
	now := time.Now()
	previousHour := now.Add(-1 * time.Hour).Truncate(time.Hour)
	return h.Aggregate(previousHour)
}

// CalculateNextRunTime calculates when the hourly aggregation should next
// run: a configurable delay past each full hour, so late readings land.
func (h *HourlyAggregator) CalculateNextRunTime(delay time.Duration) time.Time {
	now := time.Now()

	nextHour := now.Truncate(time.Hour).Add(time.Hour)
	nextRun := nextHour.Add(delay)

	if now.After(nextRun) {
		nextRun = nextRun.Add(time.Hour)
	}

	return nextRun
}
