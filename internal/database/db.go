package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Connect establishes a connection to the database
func Connect(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &DB{db}, nil
}

// RunMigrations executes all SQL migration files in order
func (db *DB) RunMigrations(migrationsDir string) error {
	files, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			sqlFiles = append(sqlFiles, file.Name())
		}
	}
	sort.Strings(sqlFiles)

	for _, filename := range sqlFiles {
		fmt.Printf("Running migration: %s\n", filename)

		filePath := filepath.Join(migrationsDir, filename)
		content, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
	}

	fmt.Println("All migrations completed successfully")
	return nil
}

// UpsertStation inserts or updates a monitoring station
func (db *DB) UpsertStation(station *Station) error {
	query := `
		INSERT INTO stations (station_id, location, lat, lon)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (station_id) DO UPDATE
		SET location = EXCLUDED.location,
		    lat = EXCLUDED.lat,
		    lon = EXCLUDED.lon,
		    updated_at = CURRENT_TIMESTAMP
	`
	_, err := db.Exec(query, station.StationID, station.Location, station.Lat, station.Lon)
	return err
}

// GetStation retrieves a station by ID
func (db *DB) GetStation(stationID string) (*Station, error) {
	query := `
		SELECT station_id, location, lat, lon, created_at, updated_at
		FROM stations
		WHERE station_id = $1
	`

	var station Station
	err := db.QueryRow(query, stationID).Scan(
		&station.StationID,
		&station.Location,
		&station.Lat,
		&station.Lon,
		&station.CreatedAt,
		&station.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &station, nil
}

// InsertRawReading inserts a raw air quality reading
func (db *DB) InsertRawReading(reading *RawReading) error {
	query := `
		INSERT INTO raw_readings (
			station_id, timestamp, pm25, pm10, o3, co, so2, no2,
			temperature, humidity, wind_speed,
			aqi, dominant_pollutant, received_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`

	return db.QueryRow(
		query,
		reading.StationID,
		reading.Timestamp,
		reading.PM25,
		reading.PM10,
		reading.O3,
		reading.CO,
		reading.SO2,
		reading.NO2,
		reading.Temperature,
		reading.Humidity,
		reading.WindSpeed,
		reading.AQI,
		reading.DominantPollutant,
		reading.ReceivedAt,
	).Scan(&reading.ID)
}

// GetLatestReading retrieves the most recent reading for a station
func (db *DB) GetLatestReading(stationID string) (*RawReading, error) {
	query := `
		SELECT id, station_id, timestamp, pm25, pm10, o3, co, so2, no2,
		       temperature, humidity, wind_speed,
		       aqi, dominant_pollutant, received_at
		FROM raw_readings
		WHERE station_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var r RawReading
	err := db.QueryRow(query, stationID).Scan(
		&r.ID, &r.StationID, &r.Timestamp,
		&r.PM25, &r.PM10, &r.O3, &r.CO, &r.SO2, &r.NO2,
		&r.Temperature, &r.Humidity, &r.WindSpeed,
		&r.AQI, &r.DominantPollutant, &r.ReceivedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// RecentReadings retrieves the most recent readings for a station, ordered
// oldest first. This is the historical series fed to the forecast pipeline.
func (db *DB) RecentReadings(stationID string, limit int) ([]*RawReading, error) {
	query := `
		SELECT id, station_id, timestamp, pm25, pm10, o3, co, so2, no2,
		       temperature, humidity, wind_speed,
		       aqi, dominant_pollutant, received_at
		FROM (
			SELECT id, station_id, timestamp, pm25, pm10, o3, co, so2, no2,
			       temperature, humidity, wind_speed,
			       aqi, dominant_pollutant, received_at
			FROM raw_readings
			WHERE station_id = $1
			ORDER BY timestamp DESC
			LIMIT $2
		) recent
		ORDER BY timestamp ASC
	`

	rows, err := db.Query(query, stationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*RawReading
	for rows.Next() {
		var r RawReading
		if err := rows.Scan(
			&r.ID, &r.StationID, &r.Timestamp,
			&r.PM25, &r.PM10, &r.O3, &r.CO, &r.SO2, &r.NO2,
			&r.Temperature, &r.Humidity, &r.WindSpeed,
			&r.AQI, &r.DominantPollutant, &r.ReceivedAt,
		); err != nil {
			return nil, err
		}
		readings = append(readings, &r)
	}

	return readings, rows.Err()
}

// GetActiveAlertThresholds retrieves all active alert thresholds for a station
func (db *DB) GetActiveAlertThresholds(stationID string) ([]*AlertThreshold, error) {
	query := `
		SELECT id, station_id, metric_name, operator, threshold_value,
		       duration_minutes, is_active, created_at, updated_at
		FROM alert_thresholds
		WHERE station_id = $1 AND is_active = true
		ORDER BY metric_name
	`

	rows, err := db.Query(query, stationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var thresholds []*AlertThreshold
	for rows.Next() {
		var t AlertThreshold
		if err := rows.Scan(
			&t.ID,
			&t.StationID,
			&t.MetricName,
			&t.Operator,
			&t.ThresholdValue,
			&t.DurationMinutes,
			&t.IsActive,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		thresholds = append(thresholds, &t)
	}

	return thresholds, rows.Err()
}

// InsertAlertLog inserts a new alert log entry
func (db *DB) InsertAlertLog(alert *AlertLog) error {
	query := `
		INSERT INTO alerts_log (
			station_id, metric_name, breach_value, threshold_config,
			start_time, status
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING alert_id
	`

	return db.QueryRow(
		query,
		alert.StationID,
		alert.MetricName,
		alert.BreachValue,
		alert.ThresholdConfig,
		alert.StartTime,
		alert.Status,
	).Scan(&alert.AlertID)
}

// UpdateAlertLogCleared updates an alert log to cleared status
func (db *DB) UpdateAlertLogCleared(alertID int64, endTime time.Time) error {
	query := `
		UPDATE alerts_log
		SET status = $1, end_time = $2, updated_at = CURRENT_TIMESTAMP
		WHERE alert_id = $3
	`

	_, err := db.Exec(query, AlertStatusCleared, endTime, alertID)
	return err
}
