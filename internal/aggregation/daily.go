package aggregation

import (
	"fmt"
	"time"

	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/database"
)

// DailyAggregator rolls hourly rows up into daily air quality summaries
type DailyAggregator struct {
	db *database.DB
}

// NewDailyAggregator creates a new daily aggregator
func NewDailyAggregator(db *database.DB) *DailyAggregator {
	return &DailyAggregator{db: db}
}

// Aggregate performs daily aggregation for the specified date
func (d *DailyAggregator) Aggregate(targetDate time.Time) error {
	date := targetDate.Truncate(24 * time.Hour)

	fmt.Printf("Running daily AQI aggregation for %s\n", date.Format("2006-01-02"))

	query := `
		INSERT INTO daily_aqi_summary (
			station_id, date,
			min_aqi, max_aqi, avg_aqi,
			min_pm25, max_pm25,
			min_pm10, max_pm10,
			min_o3, max_o3,
			min_co, max_co,
			min_so2, max_so2,
			min_no2, max_no2
		)
		SELECT
			station_id,
			$1::date AS date,
			MIN(max_aqi) AS min_aqi,
			MAX(max_aqi) AS max_aqi,
			AVG(avg_aqi) AS avg_aqi,
			MIN(avg_pm25) AS min_pm25,
			MAX(avg_pm25) AS max_pm25,
			MIN(avg_pm10) AS min_pm10,
			MAX(avg_pm10) AS max_pm10,
			MIN(avg_o3) AS min_o3,
			MAX(avg_o3) AS max_o3,
			MIN(avg_co) AS min_co,
			MAX(avg_co) AS max_co,
			MIN(avg_so2) AS min_so2,
			MAX(avg_so2) AS max_so2,
			MIN(avg_no2) AS min_no2,
			MAX(avg_no2) AS max_no2
		FROM
			hourly_aqi
		WHERE
			DATE(hour_timestamp) = $1::date
		GROUP BY
			station_id
		ON CONFLICT (station_id, date) DO UPDATE
		SET
			min_aqi = EXCLUDED.min_aqi,
			max_aqi = EXCLUDED.max_aqi,
			avg_aqi = EXCLUDED.avg_aqi,
			min_pm25 = EXCLUDED.min_pm25,
			max_pm25 = EXCLUDED.max_pm25,
			min_pm10 = EXCLUDED.min_pm10,
			max_pm10 = EXCLUDED.max_pm10,
			min_o3 = EXCLUDED.min_o3,
			max_o3 = EXCLUDED.max_o3,
			min_co = EXCLUDED.min_co,
			max_co = EXCLUDED.max_co,
			min_so2 = EXCLUDED.min_so2,
			max_so2 = EXCLUDED.max_so2,
			min_no2 = EXCLUDED.min_no2,
			max_no2 = EXCLUDED.max_no2
	`

	result, err := d.db.Exec(query, date)
	if err != nil {
		return fmt.Errorf("failed to aggregate daily data: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	fmt.Printf("Daily aggregation completed: %d stations processed\n", rowsAffected)

	return nil
}

// AggregatePreviousDay aggregates the previous full day
func (d *DailyAggregator) AggregatePreviousDay() error {
	now := time.Now()
	yesterday := now.AddDate(0, 0, -1).Truncate(24 * time.Hour)
	return d.Aggregate(yesterday)
}

// CalculateNextRunTime calculates when the daily aggregation should next
// run (format: "HH:MM" local time).
func (d *DailyAggregator) CalculateNextRunTime(timeOfDay string) (time.Time, error) {
	now := time.Now()

	var hour, minute int
	if _, err := fmt.Sscanf(timeOfDay, "%d:%d", &hour, &minute); err != nil {
		return time.Time{}, fmt.Errorf("invalid time format: %s (expected HH:MM)", timeOfDay)
	}

	todayRun := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())

	if now.After(todayRun) {
		return todayRun.AddDate(0, 0, 1), nil
	}

	return todayRun, nil
}
