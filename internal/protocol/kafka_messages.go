package protocol

import (
	"encoding/json"
	"time"
)

// StationReadingMessage is the internal message format for Kafka
type StationReadingMessage struct {
	ConnectionID string      `json:"connection_id"`
	StationID    string      `json:"station_id"`
	Location     string      `json:"location"`
	ReceivedAt   time.Time   `json:"received_at"`
	Data         ReadingData `json:"data"`
}

// AlertNotification is the message format for AQI alert notifications
type AlertNotification struct {
	Type      string    `json:"type"` // ALERT_TRIGGERED, ALERT_CLEARED
	StationID string    `json:"station_id"`
	Location  string    `json:"location"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	AQI       int       `json:"aqi"`
	Threshold float64   `json:"threshold"`
	Operator  string    `json:"operator"`
	Duration  int       `json:"duration_minutes"`
	StartTime time.Time `json:"start_time"`
	AlertID   int64     `json:"alert_id,omitempty"`
}

const (
	AlertTypeTriggered = "ALERT_TRIGGERED"
	AlertTypeCleared   = "ALERT_CLEARED"
)

// EncodeReadingMessage encodes a StationReadingMessage to JSON
func EncodeReadingMessage(msg *StationReadingMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeReadingMessage decodes JSON to StationReadingMessage
func DecodeReadingMessage(data []byte) (*StationReadingMessage, error) {
	var msg StationReadingMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EncodeAlertNotification encodes an AlertNotification to JSON
func EncodeAlertNotification(alert *AlertNotification) ([]byte, error) {
	return json.Marshal(alert)
}

// DecodeAlertNotification decodes JSON to AlertNotification
func DecodeAlertNotification(data []byte) (*AlertNotification, error) {
	var alert AlertNotification
	if err := json.Unmarshal(data, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}
