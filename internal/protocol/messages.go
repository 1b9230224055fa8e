package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aroyy007/Air-Quality-Monitoring-System/internal/aqi"
)

// MessageType represents the type of message
type MessageType string

const (
	// Client to Server
	MsgTypeIdentify  MessageType = "identify"
	MsgTypeReading   MessageType = "reading"
	MsgTypeKeepalive MessageType = "keepalive"

	// Server to Client
	MsgTypeAck MessageType = "ack"
)

// BaseMessage is the common structure for all messages
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// IdentifyMessage is sent by a monitoring station on connection
type IdentifyMessage struct {
	Type      MessageType `json:"type"`
	StationID string      `json:"station_id"`
	Location  string      `json:"location"`
}

// ReadingData contains one raw multi-pollutant measurement. Pollutant
// fields are pointers: a nil field means the channel was not measured,
// which is different from a measured zero.
type ReadingData struct {
	Timestamp   string   `json:"timestamp"`
	PM25        *float64 `json:"pm25,omitempty"`
	PM10        *float64 `json:"pm10,omitempty"`
	O3          *float64 `json:"o3,omitempty"`
	CO          *float64 `json:"co,omitempty"`
	SO2         *float64 `json:"so2,omitempty"`
	NO2         *float64 `json:"no2,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	WindSpeed   *float64 `json:"wind_speed,omitempty"`
}

// Reading converts the pollutant fields to an aqi.Reading, skipping
// channels that were not measured.
func (d *ReadingData) Reading() aqi.Reading {
	reading := make(aqi.Reading)
	set := func(p aqi.Pollutant, v *float64) {
		if v != nil {
			reading[p] = *v
		}
	}
	set(aqi.PM25, d.PM25)
	set(aqi.PM10, d.PM10)
	set(aqi.O3, d.O3)
	set(aqi.CO, d.CO)
	set(aqi.SO2, d.SO2)
	set(aqi.NO2, d.NO2)
	return reading
}

// ParsedReading is ReadingData with the timestamp parsed.
type ParsedReading struct {
	Timestamp time.Time
	Data      *ReadingData
}

// Parse validates and parses the reading timestamp.
func (d *ReadingData) Parse() (*ParsedReading, error) {
	ts, err := time.Parse(time.RFC3339, d.Timestamp)
	if err != nil {
		return nil, err
	}

	return &ParsedReading{
		Timestamp: ts,
		Data:      d,
	}, nil
}

// ReadingMessage is sent by the station for every sensor sweep
type ReadingMessage struct {
	Type MessageType `json:"type"`
	Data ReadingData `json:"data"`
}

// KeepaliveMessage is sent by the station between readings
type KeepaliveMessage struct {
	Type MessageType `json:"type"`
}

// AckMessage is sent by the server in response to messages
type AckMessage struct {
	Type   MessageType `json:"type"`
	Status string      `json:"status"`
}

// AckStatus constants
const (
	AckStatusIdentified = "identified"
	AckStatusAlive      = "alive"
	AckStatusError      = "error"
)

// ParseMessage parses a JSON line into the appropriate message type
func ParseMessage(data []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	switch base.Type {
	case MsgTypeIdentify:
		var msg IdentifyMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid identify message: %w", err)
		}
		if err := validateIdentify(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MsgTypeReading:
		var msg ReadingMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid reading message: %w", err)
		}
		if err := validateReading(&msg); err != nil {
			return nil, err
		}
		return &msg, nil

	case MsgTypeKeepalive:
		var msg KeepaliveMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("invalid keepalive message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("unknown message type: %s", base.Type)
	}
}

// validateIdentify validates an identify message
func validateIdentify(msg *IdentifyMessage) error {
	if msg.StationID == "" {
		return fmt.Errorf("station_id is required")
	}
	if msg.Location == "" {
		return fmt.Errorf("location is required")
	}
	return nil
}

// validateReading validates a reading message
func validateReading(msg *ReadingMessage) error {
	if msg.Data.Timestamp == "" {
		return fmt.Errorf("timestamp is required")
	}
	if _, err := time.Parse(time.RFC3339, msg.Data.Timestamp); err != nil {
		return fmt.Errorf("invalid timestamp format (must be RFC3339): %w", err)
	}
	return nil
}

// EncodeMessage encodes a message to JSON
func EncodeMessage(msg interface{}) ([]byte, error) {
	return json.Marshal(msg)
}

// NewAckMessage creates a new acknowledgment message
func NewAckMessage(status string) *AckMessage {
	return &AckMessage{
		Type:   MsgTypeAck,
		Status: status,
	}
}
