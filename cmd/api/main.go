package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/aqi"
	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/database"
	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/forecast"
	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/weather"
	"github.com/aroyy007/Air-Quality-Monitoring-System/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting API Service...")

	// Connect to database
	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	// Remote predictor is optional; without it every forecast uses the
	// local fallback.
	var predictor forecast.Predictor
	if cfg.Forecast.PredictorURL != "" {
		predictor = forecast.NewHTTPPredictor(cfg.Forecast.PredictorURL, cfg.Forecast.PredictorTimeout)
		fmt.Printf("Remote predictor configured: %s\n", cfg.Forecast.PredictorURL)
	} else {
		fmt.Println("No remote predictor configured, forecasts use local fallback")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	fallback := forecast.NewFallbackForecaster(rng)
	pipeline := forecast.NewPipeline(predictor, fallback)

	weatherProvider := weather.NewHTTPProvider(
		cfg.Weather.BaseURL,
		cfg.Weather.APIKey,
		cfg.Weather.City,
		cfg.Weather.Timeout,
	)

	api := &apiServer{
		db:       db,
		pipeline: pipeline,
		weather:  weatherProvider,
		horizon:  cfg.Forecast.Horizon,
		history:  cfg.Forecast.HistoryWindow,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/aqi/current", api.handleCurrent)
	mux.HandleFunc("/api/aqi/forecast", api.handleForecast)
	mux.HandleFunc("/health", api.handleHealth)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		fmt.Printf("\n✓ API Service listening on %s\n", addr)
		fmt.Println("✓ Press Ctrl+C to stop")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpServer.Shutdown(shutdownCtx)
}

type apiServer struct {
	db       *database.DB
	pipeline *forecast.Pipeline
	weather  weather.Provider
	horizon  int
	history  int
}

type currentResponse struct {
	StationID  string      `json:"station_id"`
	Timestamp  time.Time   `json:"timestamp"`
	AQI        int         `json:"aqi"`
	Category   string      `json:"category"`
	Dominant   string      `json:"dominant_pollutant"`
	Pollutants aqi.Reading `json:"pollutants"`
}

func (a *apiServer) handleCurrent(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station")
	if stationID == "" {
		writeError(w, http.StatusBadRequest, "missing station parameter")
		return
	}

	reading, err := a.db.GetLatestReading(stationID)
	if err != nil {
		fmt.Printf("Failed to load latest reading: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load reading")
		return
	}
	if reading == nil {
		writeError(w, http.StatusNotFound, "no readings for station")
		return
	}

	writeJSON(w, http.StatusOK, currentResponse{
		StationID:  reading.StationID,
		Timestamp:  reading.Timestamp,
		AQI:        reading.AQI,
		Category:   aqi.Category(reading.AQI),
		Dominant:   reading.DominantPollutant,
		Pollutants: reading.Pollutants(),
	})
}

type forecastResponse struct {
	StationID string                   `json:"station_id"`
	Source    string                   `json:"source"`
	Forecast  []forecast.ForecastPoint `json:"forecast"`
}

func (a *apiServer) handleForecast(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station")
	if stationID == "" {
		writeError(w, http.StatusBadRequest, "missing station parameter")
		return
	}

	// Fetch weather in parallel with the history load; a failing provider
	// just means no weather features.
	weatherCh := make(chan *forecast.Weather, 1)
	go func() {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		conditions, err := a.weather.Current(ctx)
		if err != nil {
			fmt.Printf("Weather unavailable: %v\n", err)
			weatherCh <- nil
			return
		}
		weatherCh <- &forecast.Weather{
			Temperature: conditions.Temperature,
			Humidity:    conditions.Humidity,
			WindSpeed:   conditions.WindSpeed,
		}
	}()

	readings, err := a.db.RecentReadings(stationID, a.history)
	if err != nil {
		fmt.Printf("Failed to load history: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if len(readings) == 0 {
		writeError(w, http.StatusNotFound, "no readings for station")
		return
	}

	series := make([]forecast.Point, len(readings))
	for i, reading := range readings {
		series[i] = reading.FeatureVector()
	}
	referenceHour := readings[len(readings)-1].Timestamp.Hour()

	prediction := a.pipeline.Predict(r.Context(), series, a.horizon, <-weatherCh, referenceHour)

	writeJSON(w, http.StatusOK, forecastResponse{
		StationID: stationID,
		Source:    prediction.Source,
		Forecast:  prediction.Forecast,
	})
}

func (a *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.db.Ping(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		fmt.Printf("Failed to encode response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
