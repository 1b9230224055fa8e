package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/aqi"
	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/database"
	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/protocol"
	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/queue"
)

// MetricAQI is the threshold metric name for the aggregated index; any
// other metric name is a pollutant key.
const MetricAQI = "aqi"

// Evaluator evaluates readings against thresholds and manages alert state.
// Thresholds can target the aggregated AQI or a single pollutant.
type Evaluator struct {
	db             *database.DB
	stateManager   *StateManager
	alertProducer  *queue.Producer
	thresholdCache map[string][]*database.AlertThreshold
	lastCacheLoad  time.Time
	cacheValidity  time.Duration
}

// NewEvaluator creates a new alert evaluator
func NewEvaluator(db *database.DB, stateManager *StateManager, alertProducer *queue.Producer) *Evaluator {
	return &Evaluator{
		db:             db,
		stateManager:   stateManager,
		alertProducer:  alertProducer,
		thresholdCache: make(map[string][]*database.AlertThreshold),
		cacheValidity:  5 * time.Minute,
	}
}

// EvaluateReading evaluates a station reading against all of its thresholds
func (e *Evaluator) EvaluateReading(ctx context.Context, msg *protocol.StationReadingMessage) error {
	if _, err := msg.Data.Parse(); err != nil {
		return fmt.Errorf("failed to parse reading: %w", err)
	}

	thresholds, err := e.getThresholds(msg.StationID)
	if err != nil {
		return fmt.Errorf("failed to get thresholds: %w", err)
	}
	if len(thresholds) == 0 {
		return nil
	}

	// One aggregation serves every threshold on this reading
	reading := msg.Data.Reading()
	result := aqi.Aggregate(reading)

	for _, threshold := range thresholds {
		value, ok := e.extractMetricValue(reading, result, threshold.MetricName)
		if !ok {
			continue
		}

		if err := e.evaluateThreshold(ctx, msg, threshold, value, result.AQI); err != nil {
			fmt.Printf("Failed to evaluate threshold: %v\n", err)
		}
	}

	return nil
}

func (e *Evaluator) evaluateThreshold(ctx context.Context, msg *protocol.StationReadingMessage, threshold *database.AlertThreshold, value float64, currentAQI int) error {
	breached := evaluateCondition(value, threshold.Operator, threshold.ThresholdValue)

	state, err := e.stateManager.GetState(ctx, msg.StationID, threshold.MetricName)
	if err != nil {
		return err
	}

	now := time.Now()

	if breached {
		return e.handleBreach(ctx, msg, threshold, value, currentAQI, state, now)
	}
	return e.handleNoBreach(ctx, msg, threshold, state, now)
}

func (e *Evaluator) handleBreach(ctx context.Context, msg *protocol.StationReadingMessage, threshold *database.AlertThreshold, value float64, currentAQI int, state *AlertState, now time.Time) error {
	switch state.Status {
	case AlertStateClear:
		// New breach detected
		newState := &AlertState{
			Status:          AlertStatePending,
			BreachStartTime: now,
			LastChecked:     now,
			BreachValue:     value,
		}
		return e.stateManager.SetState(ctx, msg.StationID, threshold.MetricName, newState)

	case AlertStatePending:
		durationMet := now.Sub(state.BreachStartTime) >= time.Duration(threshold.DurationMinutes)*time.Minute

		if durationMet {
			return e.triggerAlert(ctx, msg, threshold, value, currentAQI, state, now)
		}

		state.LastChecked = now
		state.BreachValue = value
		return e.stateManager.SetState(ctx, msg.StationID, threshold.MetricName, state)

	case AlertStateActive:
		// Alert already active, update last checked
		state.LastChecked = now
		return e.stateManager.SetState(ctx, msg.StationID, threshold.MetricName, state)
	}

	return nil
}

func (e *Evaluator) handleNoBreach(ctx context.Context, msg *protocol.StationReadingMessage, threshold *database.AlertThreshold, state *AlertState, now time.Time) error {
	switch state.Status {
	case AlertStateClear:
		return nil

	case AlertStatePending:
		// Breach ended before the alert triggered
		return e.stateManager.DeleteState(ctx, msg.StationID, threshold.MetricName)

	case AlertStateActive:
		return e.clearAlert(ctx, msg, threshold, state, now)
	}

	return nil
}

func (e *Evaluator) triggerAlert(ctx context.Context, msg *protocol.StationReadingMessage, threshold *database.AlertThreshold, value float64, currentAQI int, state *AlertState, now time.Time) error {
	fmt.Printf("ALERT TRIGGERED: %s (station=%s, metric=%s, value=%.2f, threshold=%.2f)\n",
		msg.Location, msg.StationID, threshold.MetricName, value, threshold.ThresholdValue)

	thresholdConfig, _ := json.Marshal(threshold)
	alertLog := &database.AlertLog{
		StationID:       msg.StationID,
		MetricName:      threshold.MetricName,
		BreachValue:     value,
		ThresholdConfig: string(thresholdConfig),
		StartTime:       state.BreachStartTime,
		Status:          database.AlertStatusActive,
	}

	if err := e.db.InsertAlertLog(alertLog); err != nil {
		return fmt.Errorf("failed to insert alert log: %w", err)
	}

	state.Status = AlertStateActive
	state.AlertID = alertLog.AlertID
	state.LastChecked = now
	if err := e.stateManager.SetState(ctx, msg.StationID, threshold.MetricName, state); err != nil {
		return err
	}

	notification := &protocol.AlertNotification{
		Type:      protocol.AlertTypeTriggered,
		StationID: msg.StationID,
		Location:  msg.Location,
		Metric:    threshold.MetricName,
		Value:     value,
		AQI:       currentAQI,
		Threshold: threshold.ThresholdValue,
		Operator:  threshold.Operator,
		Duration:  threshold.DurationMinutes,
		StartTime: state.BreachStartTime,
		AlertID:   alertLog.AlertID,
	}

	return e.sendNotification(ctx, notification)
}

func (e *Evaluator) clearAlert(ctx context.Context, msg *protocol.StationReadingMessage, threshold *database.AlertThreshold, state *AlertState, now time.Time) error {
	fmt.Printf("ALERT CLEARED: %s (station=%s, metric=%s)\n",
		msg.Location, msg.StationID, threshold.MetricName)

	if state.AlertID > 0 {
		if err := e.db.UpdateAlertLogCleared(state.AlertID, now); err != nil {
			return fmt.Errorf("failed to update alert log: %w", err)
		}
	}

	if err := e.stateManager.DeleteState(ctx, msg.StationID, threshold.MetricName); err != nil {
		return err
	}

	notification := &protocol.AlertNotification{
		Type:      protocol.AlertTypeCleared,
		StationID: msg.StationID,
		Location:  msg.Location,
		Metric:    threshold.MetricName,
		Threshold: threshold.ThresholdValue,
		AlertID:   state.AlertID,
	}

	return e.sendNotification(ctx, notification)
}

func (e *Evaluator) sendNotification(ctx context.Context, notification *protocol.AlertNotification) error {
	data, err := protocol.EncodeAlertNotification(notification)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	key := fmt.Sprintf("%s-%s", notification.StationID, notification.Metric)
	return e.alertProducer.Publish(ctx, key, data)
}

func (e *Evaluator) getThresholds(stationID string) ([]*database.AlertThreshold, error) {
	if time.Since(e.lastCacheLoad) < e.cacheValidity {
		if thresholds, ok := e.thresholdCache[stationID]; ok {
			return thresholds, nil
		}
	}

	thresholds, err := e.db.GetActiveAlertThresholds(stationID)
	if err != nil {
		return nil, err
	}

	e.thresholdCache[stationID] = thresholds
	e.lastCacheLoad = time.Now()

	return thresholds, nil
}

// extractMetricValue resolves a threshold metric to its value in the
// reading. A pollutant that was not measured yields ok=false so the
// threshold is skipped rather than evaluated against zero.
func (e *Evaluator) extractMetricValue(reading aqi.Reading, result aqi.Result, metricName string) (float64, bool) {
	if metricName == MetricAQI {
		return float64(result.AQI), true
	}

	value, ok := reading[aqi.Pollutant(metricName)]
	return value, ok
}

func evaluateCondition(value float64, operator string, threshold float64) bool {
	switch operator {
	case ">":
		return value > threshold
	case "<":
		return value < threshold
	case ">=":
		return value >= threshold
	case "<=":
		return value <= threshold
	default:
		return false
	}
}
